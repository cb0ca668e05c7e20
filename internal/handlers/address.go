package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/bazarchi/backend/internal/logging"
	"github.com/bazarchi/backend/internal/models"
	"github.com/bazarchi/backend/internal/transport"
)

// findOwnedAddress loads the address and checks it belongs to the user. A
// foreign address is reported exactly like a missing one.
func (h *UserHandler) findOwnedAddress(db *gorm.DB, addressID, userID uint) (*models.DeliveryAddress, error) {
	var addr models.DeliveryAddress
	if err := db.First(&addr, addressID).Error; err != nil {
		return nil, err
	}
	if addr.CustomerID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return &addr, nil
}

func (h *UserHandler) AddDeliveryAddress(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address_add")

	userID, ok := parseID(c.Param("userId"))
	if !ok {
		return message(c, http.StatusBadRequest, "Некорректный ID пользователя")
	}

	var req transport.CreateAddressRequest
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "Некорректное тело запроса")
	}
	if err := h.Validate.Struct(&req); err != nil {
		return message(c, http.StatusBadRequest, "Не заполнены обязательные поля")
	}

	addr := models.DeliveryAddress{
		Address:     req.Address,
		Coordinates: req.Coordinates,
		PhoneNumber: req.PhoneNumber,
		CustomerID:  userID,
	}

	err := h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}
		if err := tx.Create(&addr).Error; err != nil {
			return err
		}
		user.DeliveryAddresses = append(user.DeliveryAddresses, addr.ID)
		return tx.Save(&user).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message(c, http.StatusNotFound, "Пользователь не найден")
		}
		l.Error("address_add_error", "status", 500, "error", err)
		return serverError(c, "Ошибка при добавлении адреса", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message":         "Адрес доставки успешно добавлен",
		"deliveryAddress": addr,
	})
}

func (h *UserHandler) UpdateDeliveryAddress(c echo.Context) error {
	ctx := c.Request().Context()

	userID, okUser := parseID(c.Param("userId"))
	addressID, okAddr := parseID(c.Param("addressId"))
	if !okUser || !okAddr {
		return message(c, http.StatusBadRequest, "Некорректный ID пользователя или адреса")
	}

	var req transport.PatchAddressRequest
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "Некорректное тело запроса")
	}

	var user models.User
	if err := h.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message(c, http.StatusNotFound, "Пользователь не найден")
		}
		return serverError(c, "Ошибка при обновлении адреса", err)
	}

	addr, err := h.findOwnedAddress(h.DB.WithContext(ctx), addressID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message(c, http.StatusNotFound, "Адрес доставки не найден")
		}
		return serverError(c, "Ошибка при обновлении адреса", err)
	}

	// Empty values never clear a field.
	if req.Address != nil && *req.Address != "" {
		addr.Address = *req.Address
	}
	if req.Coordinates != nil {
		addr.Coordinates = *req.Coordinates
	}
	if req.PhoneNumber != nil && *req.PhoneNumber != "" {
		addr.PhoneNumber = *req.PhoneNumber
	}

	if err := h.DB.WithContext(ctx).Save(addr).Error; err != nil {
		return serverError(c, "Ошибка при обновлении адреса", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":         "Адрес доставки успешно обновлен",
		"deliveryAddress": addr,
	})
}

func (h *UserHandler) DeleteDeliveryAddress(c echo.Context) error {
	ctx := c.Request().Context()

	userID, okUser := parseID(c.Param("userId"))
	addressID, okAddr := parseID(c.Param("addressId"))
	if !okUser || !okAddr {
		return message(c, http.StatusBadRequest, "Некорректный ID пользователя или адреса")
	}

	var user models.User
	if err := h.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message(c, http.StatusNotFound, "Пользователь не найден")
		}
		return serverError(c, "Ошибка при удалении адреса", err)
	}

	addr, err := h.findOwnedAddress(h.DB.WithContext(ctx), addressID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message(c, http.StatusNotFound, "Адрес доставки не найден")
		}
		return serverError(c, "Ошибка при удалении адреса", err)
	}

	err = h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(addr).Error; err != nil {
			return err
		}

		kept := user.DeliveryAddresses[:0]
		for _, id := range user.DeliveryAddresses {
			if id != addr.ID {
				kept = append(kept, id)
			}
		}
		user.DeliveryAddresses = kept
		return tx.Save(&user).Error
	})
	if err != nil {
		return serverError(c, "Ошибка при удалении адреса", err)
	}

	return message(c, http.StatusOK, "Адрес доставки успешно удален")
}

func (h *UserHandler) GetDeliveryAddresses(c echo.Context) error {
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
		return serverError(c, "Ошибка при получении адресов доставки", err)
	}

	var addresses []models.DeliveryAddress
	if err := h.DB.WithContext(ctx).Where("customer_id = ?", userID).Find(&addresses).Error; err != nil {
		return serverError(c, "Ошибка при получении адресов доставки", err)
	}
	if len(addresses) == 0 {
		return message(c, http.StatusNotFound, "Адреса доставки не найдены")
	}

	return c.JSON(http.StatusOK, addresses)
}
