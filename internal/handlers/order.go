package handlers

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/bazarchi/backend/internal/logging"
	"github.com/bazarchi/backend/internal/models"
	"github.com/bazarchi/backend/internal/mykafka"
	"github.com/bazarchi/backend/internal/transport"
)

type OrderHandler struct {
	DB       *gorm.DB
	Validate *validator.Validate
	Producer *mykafka.Producer
}

var orderKeyLetters = []rune("АБВГДЕЖЗИКЛНОПРСТУФХЦЧШЩЭЮЯ")

// newOrderKey builds a human-readable order number: the creation timestamp
// in milliseconds, two Cyrillic letters and four digits.
func newOrderKey(now time.Time) string {
	letters := string([]rune{
		orderKeyLetters[rand.IntN(len(orderKeyLetters))],
		orderKeyLetters[rand.IntN(len(orderKeyLetters))],
	})
	return fmt.Sprintf("%d-%s%d", now.UnixMilli(), letters, 1000+rand.IntN(9000))
}

func (h *OrderHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order_create")

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "Некорректное тело запроса")
	}
	if err := h.Validate.Struct(&req); err != nil {
		l.Warn("create_error", "status", 400, "error", err)
		return message(c, http.StatusBadRequest, "Не заполнены обязательные поля")
	}

	order := models.Order{
		Products:   req.Products,
		CustomerID: req.Customer,
		OwnerID:    req.Owner,
		Status:     models.OrderStatusPending,
		Key:        newOrderKey(time.Now()),
	}
	if err := h.DB.WithContext(ctx).Create(&order).Error; err != nil {
		l.Error("create_error", "status", 500, "error", err)
		return serverError(c, "Ошибка при создании заказа", err)
	}

	publish(c, h.Producer, "order_events", order.Key, map[string]any{
		"type":       "order_created",
		"orderID":    order.ID,
		"key":        order.Key,
		"customerID": order.CustomerID,
		"ownerID":    order.OwnerID,
	})

	l.Info("order_created", "order_id", order.ID, "key", order.Key)
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Заказ успешно создан",
		"order":   order,
	})
}

// expandOrders resolves products, customers and owners for a batch of
// orders with one query per referenced table.
func (h *OrderHandler) expandOrders(ctx context.Context, orders []models.Order) ([]transport.OrderDetail, error) {
	productIDs := make([]uint, 0)
	customerIDs := make([]uint, 0, len(orders))
	ownerIDs := make([]uint, 0, len(orders))
	for _, o := range orders {
		productIDs = append(productIDs, o.Products...)
		customerIDs = append(customerIDs, o.CustomerID)
		ownerIDs = append(ownerIDs, o.OwnerID)
	}

	products := map[uint]models.Product{}
	if len(productIDs) > 0 {
		var rows []models.Product
		if err := h.DB.WithContext(ctx).Where("id IN ?", productIDs).Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, p := range rows {
			products[p.ID] = p
		}
	}

	customers := map[uint]models.User{}
	if len(customerIDs) > 0 {
		var rows []models.User
		if err := h.DB.WithContext(ctx).Where("id IN ?", customerIDs).Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, u := range rows {
			customers[u.ID] = u
		}
	}

	owners := map[uint]models.Owner{}
	if len(ownerIDs) > 0 {
		var rows []models.Owner
		if err := h.DB.WithContext(ctx).Where("id IN ?", ownerIDs).Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, o := range rows {
			owners[o.ID] = o
		}
	}

	details := make([]transport.OrderDetail, 0, len(orders))
	for _, o := range orders {
		detail := transport.OrderDetail{Order: o}
		detail.Products = make([]models.Product, 0, len(o.Products))
		for _, id := range o.Products {
			if p, ok := products[id]; ok {
				detail.Products = append(detail.Products, p)
			}
		}
		if u, ok := customers[o.CustomerID]; ok {
			detail.Customer = &transport.PartyRef{ID: u.ID, Name: u.FirstName + " " + u.LastName}
		}
		if ow, ok := owners[o.OwnerID]; ok {
			detail.Owner = &transport.PartyRef{ID: ow.ID, Name: ow.Name, Email: ow.Email}
		}
		details = append(details, detail)
	}
	return details, nil
}

func (h *OrderHandler) GetAll(c echo.Context) error {
	ctx := c.Request().Context()

	var orders []models.Order
	if err := h.DB.WithContext(ctx).Find(&orders).Error; err != nil {
		return serverError(c, "Ошибка при получении заказов", err)
	}

	details, err := h.expandOrders(ctx, orders)
	if err != nil {
		return serverError(c, "Ошибка при получении заказов", err)
	}
	return c.JSON(http.StatusOK, details)
}

func (h *OrderHandler) GetByID(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, ok := parseID(c.Param("id"))
	if !ok {
		return message(c, http.StatusBadRequest, "Некорректный ID заказа")
	}

	var order models.Order
	if err := h.DB.WithContext(ctx).First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message(c, http.StatusNotFound, "Заказ не найден")
		}
		return serverError(c, "Ошибка при получении заказа", err)
	}

	details, err := h.expandOrders(ctx, []models.Order{order})
	if err != nil {
		return serverError(c, "Ошибка при получении заказа", err)
	}
	return c.JSON(http.StatusOK, details[0])
}

// UpdateStatus sets whatever status string the client sends. Cancelling
// stamps the cancellation time, moving away from cancelled clears it.
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, ok := parseID(c.Param("id"))
	if !ok {
		return message(c, http.StatusBadRequest, "Некорректный ID заказа")
	}

	var req transport.UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "Некорректное тело запроса")
	}

	var order models.Order
	if err := h.DB.WithContext(ctx).First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message(c, http.StatusNotFound, "Заказ не найден")
		}
		return serverError(c, "Ошибка при обновлении заказа", err)
	}

	order.Status = req.Status
	if req.Status == models.OrderStatusCancelled {
		now := time.Now()
		order.CancelledAt = &now
	} else {
		order.CancelledAt = nil
	}

	if err := h.DB.WithContext(ctx).Save(&order).Error; err != nil {
		return serverError(c, "Ошибка при обновлении заказа", err)
	}

	publish(c, h.Producer, "order_events", order.Key, map[string]any{
		"type":    "order_status_updated",
		"orderID": order.ID,
		"status":  order.Status,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Статус заказа обновлен",
		"order":   order,
	})
}

func (h *OrderHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, ok := parseID(c.Param("id"))
	if !ok {
		return message(c, http.StatusBadRequest, "Некорректный ID заказа")
	}

	res := h.DB.WithContext(ctx).Delete(&models.Order{}, orderID)
	if res.Error != nil {
		return serverError(c, "Ошибка при удалении заказа", res.Error)
	}
	if res.RowsAffected == 0 {
		return message(c, http.StatusNotFound, "Заказ не найден")
	}

	return message(c, http.StatusOK, "Заказ удален")
}

func (h *OrderHandler) GetByUser(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := parseID(c.Param("userId"))
	if !ok {
		return message(c, http.StatusBadRequest, "Некорректный ID пользователя")
	}

	var orders []models.Order
	if err := h.DB.WithContext(ctx).Where("customer_id = ?", userID).Find(&orders).Error; err != nil {
		return serverError(c, "Ошибка при получении заказов пользователя", err)
	}

	details, err := h.expandOrders(ctx, orders)
	if err != nil {
		return serverError(c, "Ошибка при получении заказов пользователя", err)
	}
	return c.JSON(http.StatusOK, details)
}

func (h *OrderHandler) GetByOwner(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := parseID(c.Param("ownerId"))
	if !ok {
		return message(c, http.StatusBadRequest, "Некорректный ID владельца")
	}

	var orders []models.Order
	if err := h.DB.WithContext(ctx).Where("owner_id = ?", ownerID).Find(&orders).Error; err != nil {
		return serverError(c, "Ошибка при получении заказов владельца", err)
	}

	details, err := h.expandOrders(ctx, orders)
	if err != nil {
		return serverError(c, "Ошибка при получении заказов владельца", err)
	}
	return c.JSON(http.StatusOK, details)
}
