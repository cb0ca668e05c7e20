package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bazarchi/backend/internal/models"
	"github.com/bazarchi/backend/internal/transport"
)

func newCartHandler(db *gorm.DB) *CartHandler {
	return &CartHandler{DB: db, Validate: newValidator()}
}

func TestAddToCartIncrements(t *testing.T) {
	db := newTestDB(t)
	h := newCartHandler(db)

	c, rec := newJSONContext(t, http.MethodPost, "/cart/add", map[string]any{
		"userId":    1,
		"productId": 2,
		"quantity":  2,
	})
	require.NoError(t, h.AddToCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	c, rec = newJSONContext(t, http.MethodPost, "/cart/add", map[string]any{
		"userId":    1,
		"productId": 2,
		"quantity":  3,
	})
	require.NoError(t, h.AddToCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var items []models.CartItem
	require.NoError(t, db.Where("user_id = ?", 1).Find(&items).Error)
	require.Len(t, items, 1)
	require.EqualValues(t, 5, items[0].Quantity)
}

func TestAddToCartDefaultsQuantity(t *testing.T) {
	db := newTestDB(t)
	h := newCartHandler(db)

	c, rec := newJSONContext(t, http.MethodPost, "/cart/add", map[string]any{
		"userId":    1,
		"productId": 2,
	})
	require.NoError(t, h.AddToCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var item models.CartItem
	require.NoError(t, db.Where("user_id = ? AND product_id = ?", 1, 2).First(&item).Error)
	require.EqualValues(t, 1, item.Quantity)
}

func TestAddToCartMissingFields(t *testing.T) {
	db := newTestDB(t)
	h := newCartHandler(db)

	c, rec := newJSONContext(t, http.MethodPost, "/cart/add", map[string]any{
		"quantity": 3,
	})
	require.NoError(t, h.AddToCart(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCartEmpty(t *testing.T) {
	db := newTestDB(t)
	h := newCartHandler(db)

	c, rec := newJSONContext(t, http.MethodGet, "/cart/1", nil)
	c.SetParamNames("userId")
	c.SetParamValues("1")
	require.NoError(t, h.GetCart(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Корзина пуста или не найдена", decodeBody(t, rec)["message"])
}

func TestGetCartExpandsProducts(t *testing.T) {
	db := newTestDB(t)
	h := newCartHandler(db)
	owner := seedOwner(t, db)
	category := seedCategory(t, db, "Обувь")

	product := models.Product{Name: "Кроссовки", Price: 4990, OwnerID: owner.ID, CategoryID: category.ID}
	require.NoError(t, db.Create(&product).Error)
	require.NoError(t, db.Create(&models.CartItem{UserID: 1, ProductID: product.ID, Quantity: 2}).Error)

	c, rec := newJSONContext(t, http.MethodGet, "/cart/1", nil)
	c.SetParamNames("userId")
	c.SetParamValues("1")
	require.NoError(t, h.GetCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var details []transport.CartItemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &details))
	require.Len(t, details, 1)
	require.NotNil(t, details[0].Product)
	require.Equal(t, "Кроссовки", details[0].Product.Name)
	require.NotNil(t, details[0].Product.Owner)
	require.Equal(t, owner.Name, details[0].Product.Owner.Name)
}

func TestClearItems(t *testing.T) {
	db := newTestDB(t)
	h := newCartHandler(db)

	for _, productID := range []uint{10, 20, 30} {
		require.NoError(t, db.Create(&models.CartItem{UserID: 1, ProductID: productID, Quantity: 1}).Error)
	}

	c, rec := newJSONContext(t, http.MethodDelete, "/cart/1/remove-items", map[string]any{
		"productIds": []uint{10, 30, 999},
	})
	c.SetParamNames("userId")
	c.SetParamValues("1")
	require.NoError(t, h.ClearItems(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, true, body["success"])
	require.EqualValues(t, 2, body["deletedCount"])

	var remaining []models.CartItem
	require.NoError(t, db.Where("user_id = ?", 1).Find(&remaining).Error)
	require.Len(t, remaining, 1)
	require.EqualValues(t, 20, remaining[0].ProductID)
}

func TestClearItemsNoMatch(t *testing.T) {
	db := newTestDB(t)
	h := newCartHandler(db)

	c, rec := newJSONContext(t, http.MethodDelete, fmt.Sprintf("/cart/%d/remove-items", 1), map[string]any{
		"productIds": []uint{999},
	})
	c.SetParamNames("userId")
	c.SetParamValues("1")
	require.NoError(t, h.ClearItems(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 0, decodeBody(t, rec)["deletedCount"])
}
