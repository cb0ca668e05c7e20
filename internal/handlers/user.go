package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/bazarchi/backend/internal/hash"
	"github.com/bazarchi/backend/internal/logging"
	authmw "github.com/bazarchi/backend/internal/middleware/auth"
	"github.com/bazarchi/backend/internal/models"
	"github.com/bazarchi/backend/internal/mykafka"
	"github.com/bazarchi/backend/internal/tokens"
	"github.com/bazarchi/backend/internal/transport"
)

const RoleUser = "user"

type UserHandler struct {
	DB            *gorm.DB
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Validate      *validator.Validate
	Producer      *mykafka.Producer
}

func (h *UserHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_register")

	var req transport.RegisterUserRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return message(c, http.StatusBadRequest, "Некорректное тело запроса")
	}
	if err := h.Validate.Struct(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return message(c, http.StatusBadRequest, "Не заполнены обязательные поля")
	}

	var existing models.User
	err := h.DB.WithContext(ctx).Where("phone_number = ?", req.PhoneNumber).First(&existing).Error
	if err == nil {
		l.Warn("register_error", "status", 400, "reason", "phone already registered")
		return message(c, http.StatusBadRequest, "Пользователь с таким логином уже существует")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return serverError(c, "Ошибка регистрации", err)
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return serverError(c, "Ошибка регистрации", err)
	}

	user := models.User{
		Login:       req.PhoneNumber,
		Password:    hashed,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		IsActive:    true,
	}
	if err := h.DB.WithContext(ctx).Create(&user).Error; err != nil {
		l.Error("register_error", "status", 500, "error", err)
		return serverError(c, "Ошибка регистрации", err)
	}

	publish(c, h.Producer, "user_events", fmt.Sprint(user.ID), map[string]any{
		"type":   "user_registered",
		"userID": user.ID,
		"phone":  user.PhoneNumber,
	})

	l.Info("user_registered", "user_id", user.ID)
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Пользователь успешно зарегистрирован",
		"user":    user,
	})
}

func (h *UserHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_login")

	var req transport.LoginUserRequest
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "Некорректное тело запроса")
	}

	var user models.User
	if err := h.DB.WithContext(ctx).Where("phone_number = ?", req.PhoneNumber).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("login_failed", "status", 404, "reason", "user not found")
			return message(c, http.StatusNotFound, "Пользователь не найден")
		}
		return serverError(c, "Ошибка логина", err)
	}

	if !hash.CheckPassword(user.Password, req.Password) {
		l.Warn("login_failed", "status", 400, "reason", "wrong password")
		return message(c, http.StatusBadRequest, "Неверный пароль")
	}

	accessToken, err := tokens.SignAccess(user.ID, RoleUser, h.AccessSecret, h.AccessTTL)
	if err != nil {
		return serverError(c, "Ошибка логина", err)
	}
	refreshToken, err := tokens.SignRefresh(user.ID, RoleUser, h.RefreshSecret, h.RefreshTTL)
	if err != nil {
		return serverError(c, "Ошибка логина", err)
	}

	// Each login overwrites the previous refresh token, so only the most
	// recent session can refresh.
	if err := h.DB.WithContext(ctx).Model(&user).Update("refresh_token", refreshToken).Error; err != nil {
		return serverError(c, "Ошибка логина", err)
	}

	publish(c, h.Producer, "user_events", fmt.Sprint(user.ID), map[string]any{
		"type":   "user_logged_in",
		"userID": user.ID,
	})

	l.Info("login_successful", "user_id", user.ID)
	return c.JSON(http.StatusOK, transport.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

func (h *UserHandler) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_refresh")

	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "Некорректное тело запроса")
	}
	if req.RefreshToken == "" {
		return message(c, http.StatusUnauthorized, "Токен не предоставлен")
	}

	claims, err := tokens.RefreshClaimsFromToken(req.RefreshToken, h.RefreshSecret)
	if err != nil {
		l.Warn("refresh_failed", "status", 403, "error", err)
		return message(c, http.StatusForbidden, "Неверный refreshToken")
	}

	id, err := tokens.SubjectID(claims.Subject)
	if err != nil {
		return message(c, http.StatusForbidden, "Неверный refreshToken")
	}

	var user models.User
	if err := h.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		l.Warn("refresh_failed", "status", 403, "reason", "user not found")
		return message(c, http.StatusForbidden, "Неверный refreshToken")
	}
	if user.RefreshToken != req.RefreshToken {
		l.Warn("refresh_failed", "status", 403, "reason", "stored token mismatch")
		return message(c, http.StatusForbidden, "Неверный refreshToken")
	}

	accessToken, err := tokens.SignAccess(user.ID, RoleUser, h.AccessSecret, h.AccessTTL)
	if err != nil {
		return serverError(c, "Ошибка обновления токена", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"accessToken": accessToken})
}

func (h *UserHandler) CurrentUser(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := c.Get(authmw.CtxUserID).(uint)
	if !ok {
		return message(c, http.StatusForbidden, "Некорректный токен")
	}

	var user models.User
	if err := h.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message(c, http.StatusNotFound, "Пользователь не найден")
		}
		return serverError(c, "Ошибка получения данных пользователя", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) GetUserByID(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := parseID(c.Param("userId"))
	if !ok {
		return message(c, http.StatusBadRequest, "Некорректный ID пользователя")
	}

	var user models.User
	if err := h.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message(c, http.StatusNotFound, "Пользователь не найден")
		}
		return serverError(c, "Ошибка при получении пользователя", err)
	}

	var addresses []models.DeliveryAddress
	if err := h.DB.WithContext(ctx).Where("customer_id = ?", userID).Find(&addresses).Error; err != nil {
		return serverError(c, "Ошибка при получении пользователя", err)
	}
	var orders []models.Order
	if err := h.DB.WithContext(ctx).Where("customer_id = ?", userID).Find(&orders).Error; err != nil {
		return serverError(c, "Ошибка при получении пользователя", err)
	}

	return c.JSON(http.StatusOK, transport.UserDetail{
		User:              user,
		DeliveryAddresses: addresses,
		Orders:            orders,
	})
}
