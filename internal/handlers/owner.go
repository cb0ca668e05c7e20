package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/bazarchi/backend/internal/hash"
	"github.com/bazarchi/backend/internal/logging"
	"github.com/bazarchi/backend/internal/models"
	"github.com/bazarchi/backend/internal/tokens"
	"github.com/bazarchi/backend/internal/transport"
)

const RoleOwner = "owner"

type OwnerHandler struct {
	DB            *gorm.DB
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Validate      *validator.Validate
}

func (h *OwnerHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "owner_register")

	var req transport.RegisterOwnerRequest
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "Некорректное тело запроса")
	}
	if err := h.Validate.Struct(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return message(c, http.StatusBadRequest, "Не заполнены обязательные поля")
	}

	var existing models.Owner
	err := h.DB.WithContext(ctx).Where("login = ?", req.Login).First(&existing).Error
	if err == nil {
		return message(c, http.StatusBadRequest, "Владелец с таким логином уже существует")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return serverError(c, "Ошибка регистрации владельца", err)
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return serverError(c, "Ошибка регистрации владельца", err)
	}

	owner := models.Owner{
		Name:        req.Name,
		Login:       req.Login,
		Password:    hashed,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	}
	if err := h.DB.WithContext(ctx).Create(&owner).Error; err != nil {
		return serverError(c, "Ошибка регистрации владельца", err)
	}

	l.Info("owner_registered", "owner_id", owner.ID)
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Владелец успешно зарегистрирован",
		"owner":   owner,
	})
}

func (h *OwnerHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "owner_login")

	var req transport.LoginOwnerRequest
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "Некорректное тело запроса")
	}

	var owner models.Owner
	if err := h.DB.WithContext(ctx).Where("login = ?", req.Login).First(&owner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("login_failed", "status", 400, "reason", "owner not found")
			return message(c, http.StatusBadRequest, "Неверный логин или пароль")
		}
		return serverError(c, "Ошибка при логине владельца", err)
	}

	if !hash.CheckPassword(owner.Password, req.Password) {
		l.Warn("login_failed", "status", 400, "reason", "wrong password")
		return message(c, http.StatusBadRequest, "Неверный логин или пароль")
	}

	accessToken, err := tokens.SignAccess(owner.ID, RoleOwner, h.AccessSecret, h.AccessTTL)
	if err != nil {
		return serverError(c, "Ошибка при логине владельца", err)
	}
	refreshToken, err := tokens.SignRefresh(owner.ID, RoleOwner, h.RefreshSecret, h.RefreshTTL)
	if err != nil {
		return serverError(c, "Ошибка при логине владельца", err)
	}

	l.Info("login_successful", "owner_id", owner.ID)
	return c.JSON(http.StatusOK, transport.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

// Refresh trusts the token signature alone: unlike user refresh there is no
// stored-token comparison, a signed unexpired token always yields a new
// access token.
func (h *OwnerHandler) Refresh(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "owner_refresh")

	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "Некорректное тело запроса")
	}
	if req.RefreshToken == "" {
		return message(c, http.StatusBadRequest, "Нет токена")
	}

	claims, err := tokens.RefreshClaimsFromToken(req.RefreshToken, h.RefreshSecret)
	if err != nil {
		l.Warn("refresh_failed", "status", 403, "error", err)
		return message(c, http.StatusForbidden, "Некорректный токен")
	}

	id, err := tokens.SubjectID(claims.Subject)
	if err != nil {
		return message(c, http.StatusForbidden, "Некорректный токен")
	}

	accessToken, err := tokens.SignAccess(id, RoleOwner, h.AccessSecret, h.AccessTTL)
	if err != nil {
		return serverError(c, "Ошибка обновления токена", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"accessToken": accessToken})
}
