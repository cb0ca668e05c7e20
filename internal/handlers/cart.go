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

type CartHandler struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

// AddToCart increments the quantity of an existing user/product row or
// creates a new one. Quantity defaults to 1 when omitted.
func (h *CartHandler) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart_add")

	var req transport.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "Некорректное тело запроса")
	}
	if err := h.Validate.Struct(&req); err != nil {
		l.Warn("cart_add_error", "status", 400, "error", err)
		return message(c, http.StatusBadRequest, "Не заполнены обязательные поля")
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	var item models.CartItem
	err := h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND product_id = ?", req.UserID, req.ProductID).First(&item).Error
		switch {
		case err == nil:
			item.Quantity += quantity
			return tx.Save(&item).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = models.CartItem{
				UserID:    req.UserID,
				ProductID: req.ProductID,
				Quantity:  quantity,
			}
			return tx.Create(&item).Error
		default:
			return err
		}
	})
	if err != nil {
		l.Error("cart_add_error", "status", 500, "error", err)
		return serverError(c, "Ошибка при добавлении товара в корзину", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Товар добавлен в корзину",
		"item":    item,
	})
}

// GetCart returns the user's cart rows with their products and product
// owners resolved. An empty cart is a 200 with just a message.
func (h *CartHandler) GetCart(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := parseID(c.Param("userId"))
	if !ok {
		return message(c, http.StatusBadRequest, "Некорректный ID пользователя")
	}

	var items []models.CartItem
	if err := h.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&items).Error; err != nil {
		return serverError(c, "Ошибка при получении корзины", err)
	}
	if len(items) == 0 {
		return message(c, http.StatusOK, "Корзина пуста или не найдена")
	}

	productIDs := make([]uint, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
	}

	var products []models.Product
	if err := h.DB.WithContext(ctx).Where("id IN ?", productIDs).Find(&products).Error; err != nil {
		return serverError(c, "Ошибка при получении корзины", err)
	}
	productByID := map[uint]models.Product{}
	ownerIDs := make([]uint, 0, len(products))
	for _, p := range products {
		productByID[p.ID] = p
		ownerIDs = append(ownerIDs, p.OwnerID)
	}

	owners := map[uint]models.Owner{}
	if len(ownerIDs) > 0 {
		var rows []models.Owner
		if err := h.DB.WithContext(ctx).Where("id IN ?", ownerIDs).Find(&rows).Error; err != nil {
			return serverError(c, "Ошибка при получении корзины", err)
		}
		for _, o := range rows {
			owners[o.ID] = o
		}
	}

	details := make([]transport.CartItemDetail, 0, len(items))
	for _, item := range items {
		detail := transport.CartItemDetail{CartItem: item}
		if p, ok := productByID[item.ProductID]; ok {
			withOwner := transport.ProductWithOwner{Product: p}
			if o, ok := owners[p.OwnerID]; ok {
				owner := o
				withOwner.Owner = &owner
			}
			detail.Product = &withOwner
		}
		details = append(details, detail)
	}

	return c.JSON(http.StatusOK, details)
}

// ClearItems removes the given products from the user's cart and reports
// how many rows went away. Ids that were never in the cart are ignored.
func (h *CartHandler) ClearItems(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := parseID(c.Param("userId"))
	if !ok {
		return message(c, http.StatusBadRequest, "Некорректный ID пользователя")
	}

	var req transport.ClearItemsRequest
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "Некорректное тело запроса")
	}
	if len(req.ProductIDs) == 0 {
		return message(c, http.StatusBadRequest, "Не указаны товары для удаления")
	}

	res := h.DB.WithContext(ctx).
		Where("user_id = ? AND product_id IN ?", userID, []uint(req.ProductIDs)).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return serverError(c, "Ошибка при удалении товаров из корзины", res.Error)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":      true,
		"message":      "Товары удалены из корзины",
		"deletedCount": res.RowsAffected,
	})
}
