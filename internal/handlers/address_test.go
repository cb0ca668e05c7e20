package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bazarchi/backend/internal/models"
)

func TestAddDeliveryAddress(t *testing.T) {
	db := newTestDB(t)
	h := newUserHandler(db)

	c, rec := newJSONContext(t, http.MethodPost, "/users/999/deliveryAddresses", map[string]any{
		"address": "ул. Ленина, 1",
	})
	c.SetParamNames("userId")
	c.SetParamValues("999")
	require.NoError(t, h.AddDeliveryAddress(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Пользователь не найден", decodeBody(t, rec)["message"])

	user := registerTestUser(t, h, "+79001234567")

	c, rec = newJSONContext(t, http.MethodPost, "/users/1/deliveryAddresses", map[string]any{
		"address":     "ул. Ленина, 1",
		"phoneNumber": "+79001234567",
		"coordinates": map[string]any{"latitude": 55.75, "longitude": 37.61},
	})
	c.SetParamNames("userId")
	c.SetParamValues(fmt.Sprint(user.ID))
	require.NoError(t, h.AddDeliveryAddress(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var addr models.DeliveryAddress
	require.NoError(t, db.Where("customer_id = ?", user.ID).First(&addr).Error)
	require.Equal(t, "ул. Ленина, 1", addr.Address)
	require.Equal(t, 55.75, addr.Coordinates.Latitude)

	var freshUser models.User
	require.NoError(t, db.First(&freshUser, user.ID).Error)
	require.Contains(t, freshUser.DeliveryAddresses, addr.ID)
}

func TestUpdateDeliveryAddressOwnership(t *testing.T) {
	db := newTestDB(t)
	h := newUserHandler(db)

	user := registerTestUser(t, h, "+79001234567")
	other := registerTestUser(t, h, "+79007654321")

	addr := models.DeliveryAddress{Address: "ул. Ленина, 1", CustomerID: other.ID}
	require.NoError(t, db.Create(&addr).Error)

	// A foreign address looks exactly like a missing one.
	c, rec := newJSONContext(t, http.MethodPut, "/users/1/deliveryAddresses/1", map[string]any{
		"address": "пр. Мира, 2",
	})
	c.SetParamNames("userId", "addressId")
	c.SetParamValues(fmt.Sprint(user.ID), fmt.Sprint(addr.ID))
	require.NoError(t, h.UpdateDeliveryAddress(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Адрес доставки не найден", decodeBody(t, rec)["message"])
}

func TestUpdateDeliveryAddressIgnoresEmpty(t *testing.T) {
	db := newTestDB(t)
	h := newUserHandler(db)
	user := registerTestUser(t, h, "+79001234567")

	addr := models.DeliveryAddress{Address: "ул. Ленина, 1", PhoneNumber: "+79001234567", CustomerID: user.ID}
	require.NoError(t, db.Create(&addr).Error)

	c, rec := newJSONContext(t, http.MethodPut, "/users/1/deliveryAddresses/1", map[string]any{
		"address":     "",
		"phoneNumber": "+79009999999",
	})
	c.SetParamNames("userId", "addressId")
	c.SetParamValues(fmt.Sprint(user.ID), fmt.Sprint(addr.ID))
	require.NoError(t, h.UpdateDeliveryAddress(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var fresh models.DeliveryAddress
	require.NoError(t, db.First(&fresh, addr.ID).Error)
	require.Equal(t, "ул. Ленина, 1", fresh.Address)
	require.Equal(t, "+79009999999", fresh.PhoneNumber)
}

func TestDeleteDeliveryAddressPrunesBackRef(t *testing.T) {
	db := newTestDB(t)
	h := newUserHandler(db)
	user := registerTestUser(t, h, "+79001234567")

	addr := models.DeliveryAddress{Address: "ул. Ленина, 1", CustomerID: user.ID}
	require.NoError(t, db.Create(&addr).Error)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).
		Updates(models.User{DeliveryAddresses: models.IDList{addr.ID}}).Error)

	c, rec := newJSONContext(t, http.MethodDelete, "/users/1/deliveryAddresses/1", nil)
	c.SetParamNames("userId", "addressId")
	c.SetParamValues(fmt.Sprint(user.ID), fmt.Sprint(addr.ID))
	require.NoError(t, h.DeleteDeliveryAddress(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Адрес доставки успешно удален", decodeBody(t, rec)["message"])

	var count int64
	require.NoError(t, db.Model(&models.DeliveryAddress{}).Count(&count).Error)
	require.Zero(t, count)

	var freshUser models.User
	require.NoError(t, db.First(&freshUser, user.ID).Error)
	require.NotContains(t, freshUser.DeliveryAddresses, addr.ID)
}

func TestGetDeliveryAddresses(t *testing.T) {
	db := newTestDB(t)
	h := newUserHandler(db)
	user := registerTestUser(t, h, "+79001234567")

	c, rec := newJSONContext(t, http.MethodGet, "/users/1/deliveryAddresses", nil)
	c.SetParamNames("userId")
	c.SetParamValues(fmt.Sprint(user.ID))
	require.NoError(t, h.GetDeliveryAddresses(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Адреса доставки не найдены", decodeBody(t, rec)["message"])

	require.NoError(t, db.Create(&models.DeliveryAddress{Address: "ул. Ленина, 1", CustomerID: user.ID}).Error)

	c, rec = newJSONContext(t, http.MethodGet, "/users/1/deliveryAddresses", nil)
	c.SetParamNames("userId")
	c.SetParamValues(fmt.Sprint(user.ID))
	require.NoError(t, h.GetDeliveryAddresses(c))
	require.Equal(t, http.StatusOK, rec.Code)
}
