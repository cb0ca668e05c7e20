package handlers

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/bazarchi/backend/internal/logging"
	"github.com/bazarchi/backend/internal/models"
	"github.com/bazarchi/backend/internal/transport"
)

type CertificateHandler struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

// Create verifies the owner and records the certificate id in the owner's
// list, both inside one transaction.
func (h *CertificateHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "certificate_create")

	var req transport.CreateCertificateRequest
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "Некорректное тело запроса")
	}
	if err := h.Validate.Struct(&req); err != nil {
		l.Warn("create_error", "status", 400, "error", err)
		return message(c, http.StatusBadRequest, "Не заполнены обязательные поля")
	}

	cert := models.Certificate{
		Name:              req.Name,
		CertificateNumber: req.CertificateNumber,
		Files:             req.Files,
		StartedAt:         req.StartedAt,
		EndedAt:           req.EndedAt,
		OwnerID:           req.Owner,
		CreatedBy:         req.CreatedBy,
	}

	err := h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner models.Owner
		if err := tx.First(&owner, req.Owner).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errOwnerNotFound
			}
			return err
		}
		if err := tx.Create(&cert).Error; err != nil {
			return err
		}
		owner.Certificates = append(owner.Certificates, cert.ID)
		return tx.Save(&owner).Error
	})
	if err != nil {
		if errors.Is(err, errOwnerNotFound) {
			return message(c, http.StatusNotFound, "Владелец не найден")
		}
		l.Error("create_error", "status", 500, "error", err)
		return serverError(c, "Ошибка при создании сертификата", err)
	}

	l.Info("certificate_created", "certificate_id", cert.ID)
	return c.JSON(http.StatusCreated, echo.Map{
		"message":     "Сертификат успешно создан",
		"certificate": cert,
	})
}

func (h *CertificateHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	certID, ok := parseID(c.Param("certificateId"))
	if !ok {
		return message(c, http.StatusBadRequest, "Некорректный ID сертификата")
	}

	var req transport.PatchCertificateRequest
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "Некорректное тело запроса")
	}

	var cert models.Certificate
	if err := h.DB.WithContext(ctx).First(&cert, certID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message(c, http.StatusNotFound, "Сертификат не найден")
		}
		return serverError(c, "Ошибка при обновлении сертификата", err)
	}

	if req.Name != nil {
		cert.Name = *req.Name
	}
	if req.CertificateNumber != nil {
		cert.CertificateNumber = *req.CertificateNumber
	}
	if req.Files != nil {
		cert.Files = *req.Files
	}
	if req.StartedAt != nil {
		cert.StartedAt = req.StartedAt
	}
	if req.EndedAt != nil {
		cert.EndedAt = req.EndedAt
	}
	if req.CreatedBy != nil {
		cert.CreatedBy = *req.CreatedBy
	}

	if err := h.DB.WithContext(ctx).Save(&cert).Error; err != nil {
		return serverError(c, "Ошибка при обновлении сертификата", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":     "Сертификат успешно обновлен",
		"certificate": cert,
	})
}

// Delete removes only the certificate row, owner and product references are
// not pruned.
func (h *CertificateHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	certID, ok := parseID(c.Param("certificateId"))
	if !ok {
		return message(c, http.StatusBadRequest, "Некорректный ID сертификата")
	}

	res := h.DB.WithContext(ctx).Delete(&models.Certificate{}, certID)
	if res.Error != nil {
		return serverError(c, "Ошибка при удалении сертификата", res.Error)
	}
	if res.RowsAffected == 0 {
		return message(c, http.StatusNotFound, "Сертификат не найден")
	}

	return message(c, http.StatusOK, "Сертификат удалён")
}

func (h *CertificateHandler) GetAll(c echo.Context) error {
	ctx := c.Request().Context()

	var certs []models.Certificate
	if err := h.DB.WithContext(ctx).Find(&certs).Error; err != nil {
		return serverError(c, "Ошибка при получении сертификатов", err)
	}
	return c.JSON(http.StatusOK, certs)
}

func (h *CertificateHandler) GetByID(c echo.Context) error {
	ctx := c.Request().Context()

	certID, ok := parseID(c.Param("certificateId"))
	if !ok {
		return message(c, http.StatusBadRequest, "Некорректный ID сертификата")
	}

	var cert models.Certificate
	if err := h.DB.WithContext(ctx).First(&cert, certID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message(c, http.StatusNotFound, "Сертификат не найден")
		}
		return serverError(c, "Ошибка при получении сертификата", err)
	}
	return c.JSON(http.StatusOK, cert)
}
