package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bazarchi/backend/internal/models"
	"github.com/bazarchi/backend/internal/mykafka"
)

func newUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{
		DB:            db,
		AccessSecret:  testAccessSecret,
		RefreshSecret: testRefreshSecret,
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		Validate:      newValidator(),
		Producer:      &mykafka.Producer{},
	}
}

func registerTestUser(t *testing.T, h *UserHandler, phone string) models.User {
	t.Helper()

	c, rec := newJSONContext(t, http.MethodPost, "/users/register", map[string]any{
		"password":    "password",
		"phoneNumber": phone,
		"firstName":   "Иван",
		"lastName":    "Петров",
	})
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var user models.User
	require.NoError(t, h.DB.Where("phone_number = ?", phone).First(&user).Error)
	return user
}

func TestUserRegister(t *testing.T) {
	db := newTestDB(t)
	h := newUserHandler(db)

	user := registerTestUser(t, h, "+79001234567")
	require.Equal(t, "+79001234567", user.Login)
	require.NotEqual(t, "password", user.Password)
	require.True(t, user.IsActive)

	c, rec := newJSONContext(t, http.MethodPost, "/users/register", map[string]any{
		"password":    "password",
		"phoneNumber": "+79001234567",
		"firstName":   "Иван",
		"lastName":    "Петров",
	})
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Пользователь с таким логином уже существует", decodeBody(t, rec)["message"])
}

func TestUserRegisterMissingFields(t *testing.T) {
	db := newTestDB(t)
	h := newUserHandler(db)

	c, rec := newJSONContext(t, http.MethodPost, "/users/register", map[string]any{
		"password": "password",
	})
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Не заполнены обязательные поля", decodeBody(t, rec)["message"])
}

func TestUserLogin(t *testing.T) {
	db := newTestDB(t)
	h := newUserHandler(db)
	registerTestUser(t, h, "+79001234567")

	c, rec := newJSONContext(t, http.MethodPost, "/users/login", map[string]any{
		"phoneNumber": "+70000000000",
		"password":    "password",
	})
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Пользователь не найден", decodeBody(t, rec)["message"])

	c, rec = newJSONContext(t, http.MethodPost, "/users/login", map[string]any{
		"phoneNumber": "+79001234567",
		"password":    "wrong",
	})
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Неверный пароль", decodeBody(t, rec)["message"])

	c, rec = newJSONContext(t, http.MethodPost, "/users/login", map[string]any{
		"phoneNumber": "+79001234567",
		"password":    "password",
	})
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.NotEmpty(t, body["accessToken"])
	require.NotEmpty(t, body["refreshToken"])

	// The refresh token must be stored on the user row.
	var user models.User
	require.NoError(t, db.Where("phone_number = ?", "+79001234567").First(&user).Error)
	require.Equal(t, body["refreshToken"], user.RefreshToken)
}

func loginTestUser(t *testing.T, h *UserHandler, phone string) (string, string) {
	t.Helper()

	c, rec := newJSONContext(t, http.MethodPost, "/users/login", map[string]any{
		"phoneNumber": phone,
		"password":    "password",
	})
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	return body["accessToken"].(string), body["refreshToken"].(string)
}

func TestUserRefresh(t *testing.T) {
	db := newTestDB(t)
	h := newUserHandler(db)
	registerTestUser(t, h, "+79001234567")
	_, refreshToken := loginTestUser(t, h, "+79001234567")

	c, rec := newJSONContext(t, http.MethodPost, "/users/refresh-token", map[string]any{
		"refreshToken": refreshToken,
	})
	require.NoError(t, h.Refresh(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, decodeBody(t, rec)["accessToken"])
}

func TestUserRefreshRejectsGarbage(t *testing.T) {
	db := newTestDB(t)
	h := newUserHandler(db)

	c, rec := newJSONContext(t, http.MethodPost, "/users/refresh-token", map[string]any{})
	require.NoError(t, h.Refresh(c))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Токен не предоставлен", decodeBody(t, rec)["message"])

	c, rec = newJSONContext(t, http.MethodPost, "/users/refresh-token", map[string]any{
		"refreshToken": "not-a-jwt",
	})
	require.NoError(t, h.Refresh(c))
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "Неверный refreshToken", decodeBody(t, rec)["message"])
}

// A second login replaces the stored refresh token, so the first session's
// token stops refreshing even though its signature is still valid.
func TestUserRefreshSingleSession(t *testing.T) {
	db := newTestDB(t)
	h := newUserHandler(db)
	registerTestUser(t, h, "+79001234567")

	_, firstRefresh := loginTestUser(t, h, "+79001234567")
	_, secondRefresh := loginTestUser(t, h, "+79001234567")
	require.NotEqual(t, firstRefresh, secondRefresh)

	c, rec := newJSONContext(t, http.MethodPost, "/users/refresh-token", map[string]any{
		"refreshToken": firstRefresh,
	})
	require.NoError(t, h.Refresh(c))
	require.Equal(t, http.StatusForbidden, rec.Code)

	c, rec = newJSONContext(t, http.MethodPost, "/users/refresh-token", map[string]any{
		"refreshToken": secondRefresh,
	})
	require.NoError(t, h.Refresh(c))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestGetUserByID(t *testing.T) {
	db := newTestDB(t)
	h := newUserHandler(db)
	user := registerTestUser(t, h, "+79001234567")

	c, rec := newJSONContext(t, http.MethodGet, "/users/abc", nil)
	c.SetParamNames("userId")
	c.SetParamValues("abc")
	require.NoError(t, h.GetUserByID(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newJSONContext(t, http.MethodGet, "/users/9999", nil)
	c.SetParamNames("userId")
	c.SetParamValues("9999")
	require.NoError(t, h.GetUserByID(c))
	require.Equal(t, http.StatusNotFound, rec.Code)

	c, rec = newJSONContext(t, http.MethodGet, "/users/1", nil)
	c.SetParamNames("userId")
	c.SetParamValues("1")
	require.NoError(t, h.GetUserByID(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.EqualValues(t, user.ID, body["id"])
	require.NotContains(t, body, "password")
}
