package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/bazarchi/backend/internal/logging"
	"github.com/bazarchi/backend/internal/models"
	"github.com/bazarchi/backend/internal/mykafka"
	"github.com/bazarchi/backend/internal/transport"
	"github.com/bazarchi/backend/internal/util"
)

var (
	errOwnerNotFound        = errors.New("owner not found")
	errCategoryNotFound     = errors.New("category not found")
	errCertificatesNotFound = errors.New("certificates not found")
)

// Sortable product columns, keyed by their JSON name.
var productSortColumns = map[string]string{
	"name":      "name",
	"price":     "price",
	"newPrice":  "new_price",
	"minAmount": "min_amount",
	"createdAt": "created_at",
}

type ProductHandler struct {
	DB       *gorm.DB
	Validate *validator.Validate
	Producer *mykafka.Producer
}

// Create verifies every referenced document before persisting and appends
// the new product id to the owner's, the category's and each certificate's
// product list. The whole sequence runs in one transaction, so a missing
// reference persists nothing.
func (h *ProductHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product_create")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "Некорректное тело запроса")
	}
	if err := h.Validate.Struct(&req); err != nil {
		l.Warn("create_error", "status", 400, "error", err)
		return message(c, http.StatusBadRequest, "Не заполнены обязательные поля")
	}

	product := models.Product{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		NewPrice:     req.NewPrice,
		Images:       req.Images,
		Sizes:        req.Sizes,
		OwnerID:      req.Owner,
		CategoryID:   req.Category,
		CreatedBy:    req.CreatedBy,
		Certificates: req.Certificates,
	}

	err := h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner models.Owner
		if err := tx.First(&owner, req.Owner).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errOwnerNotFound
			}
			return err
		}

		var category models.Category
		if err := tx.First(&category, req.Category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errCategoryNotFound
			}
			return err
		}

		var certs []models.Certificate
		if len(req.Certificates) > 0 {
			if err := tx.Where("id IN ?", []uint(req.Certificates)).Find(&certs).Error; err != nil {
				return err
			}
			if len(certs) != len(req.Certificates) {
				return errCertificatesNotFound
			}
		}

		if err := tx.Create(&product).Error; err != nil {
			return err
		}

		owner.Products = append(owner.Products, product.ID)
		if err := tx.Save(&owner).Error; err != nil {
			return err
		}

		category.Products = append(category.Products, product.ID)
		if err := tx.Save(&category).Error; err != nil {
			return err
		}

		for i := range certs {
			certs[i].Products = append(certs[i].Products, product.ID)
			if err := tx.Save(&certs[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, errOwnerNotFound):
			return message(c, http.StatusNotFound, "Владелец не найден")
		case errors.Is(err, errCategoryNotFound):
			return message(c, http.StatusNotFound, "Категория не найдена")
		case errors.Is(err, errCertificatesNotFound):
			return message(c, http.StatusNotFound, "Некоторые сертификаты не найдены")
		default:
			l.Error("create_error", "status", 500, "error", err)
			return serverError(c, "Ошибка при создании продукта", err)
		}
	}

	publish(c, h.Producer, "product_events", fmt.Sprint(product.ID), map[string]any{
		"type":      "product_created",
		"productID": product.ID,
		"name":      product.Name,
	})

	l.Info("product_created", "product_id", product.ID)
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Продукт успешно создан",
		"product": product,
	})
}

func (h *ProductHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	productID, ok := parseID(c.Param("productId"))
	if !ok {
		return message(c, http.StatusBadRequest, "Некорректный ID продукта")
	}

	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "Некорректное тело запроса")
	}

	var product models.Product
	if err := h.DB.WithContext(ctx).First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message(c, http.StatusNotFound, "Продукт не найден")
		}
		return serverError(c, "Ошибка при обновлении продукта", err)
	}

	// Any present field overwrites, reference bookkeeping is not redone.
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.NewPrice != nil {
		product.NewPrice = *req.NewPrice
	}
	if req.Images != nil {
		product.Images = *req.Images
	}
	if req.Sizes != nil {
		product.Sizes = *req.Sizes
	}
	if req.Owner != nil {
		product.OwnerID = *req.Owner
	}
	if req.Category != nil {
		product.CategoryID = *req.Category
	}
	if req.MinAmount != nil {
		product.MinAmount = *req.MinAmount
	}
	if req.CreatedBy != nil {
		product.CreatedBy = *req.CreatedBy
	}
	if req.Certificates != nil {
		product.Certificates = *req.Certificates
	}

	if err := h.DB.WithContext(ctx).Save(&product).Error; err != nil {
		return serverError(c, "Ошибка при обновлении продукта", err)
	}

	publish(c, h.Producer, "product_events", fmt.Sprint(product.ID), map[string]any{
		"type":      "product_updated",
		"productID": product.ID,
		"name":      product.Name,
	})

	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) GetAll(c echo.Context) error {
	ctx := c.Request().Context()

	query := h.DB.WithContext(ctx).Model(&models.Product{})

	if v := c.QueryParam("minPrice"); v != "" {
		if min, err := strconv.ParseFloat(v, 64); err == nil {
			query = query.Where("price >= ?", min)
		}
	}
	if v := c.QueryParam("maxPrice"); v != "" {
		if max, err := strconv.ParseFloat(v, 64); err == nil {
			query = query.Where("price <= ?", max)
		}
	}
	if v := c.QueryParam("category"); v != "" {
		if id, ok := parseID(v); ok {
			query = query.Where("category_id = ?", id)
		}
	}
	if v := c.QueryParam("owner"); v != "" {
		if id, ok := parseID(v); ok {
			query = query.Where("owner_id = ?", id)
		}
	}

	if sortBy := c.QueryParam("sortBy"); sortBy != "" {
		if column, ok := productSortColumns[sortBy]; ok {
			direction := "ASC"
			if c.QueryParam("order") == "desc" {
				direction = "DESC"
			}
			query = query.Order(column + " " + direction)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return serverError(c, "Ошибка при получении продуктов", err)
	}

	page := 1
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		page = v
	}
	limit := util.DefaultPageSize
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 {
		limit = v
	}
	offset, limit := util.Calculate(page, limit)

	var products []models.Product
	if err := query.Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return serverError(c, "Ошибка при получении продуктов", err)
	}

	items, err := h.expandList(ctx, products)
	if err != nil {
		return serverError(c, "Ошибка при получении продуктов", err)
	}

	return c.JSON(http.StatusOK, transport.ProductList{
		Products:   items,
		Total:      total,
		Page:       page,
		TotalPages: util.TotalPages(total, limit),
	})
}

// expandList resolves owner (name only) and category references for a page
// of products.
func (h *ProductHandler) expandList(ctx context.Context, products []models.Product) ([]transport.ProductListItem, error) {
	ownerIDs := make([]uint, 0, len(products))
	categoryIDs := make([]uint, 0, len(products))
	for _, p := range products {
		ownerIDs = append(ownerIDs, p.OwnerID)
		categoryIDs = append(categoryIDs, p.CategoryID)
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

	categories := map[uint]models.Category{}
	if len(categoryIDs) > 0 {
		var rows []models.Category
		if err := h.DB.WithContext(ctx).Where("id IN ?", categoryIDs).Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, cat := range rows {
			categories[cat.ID] = cat
		}
	}

	items := make([]transport.ProductListItem, 0, len(products))
	for _, p := range products {
		item := transport.ProductListItem{Product: p}
		if o, ok := owners[p.OwnerID]; ok {
			item.Owner = &transport.PartyRef{ID: o.ID, Name: o.Name}
		}
		if cat, ok := categories[p.CategoryID]; ok {
			c := cat
			item.Category = &c
		}
		items = append(items, item)
	}
	return items, nil
}

func (h *ProductHandler) GetByID(c echo.Context) error {
	ctx := c.Request().Context()

	productID, ok := parseID(c.Param("productId"))
	if !ok {
		return message(c, http.StatusBadRequest, "Некорректный ID продукта")
	}

	var product models.Product
	if err := h.DB.WithContext(ctx).First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message(c, http.StatusNotFound, "Продукт не найден")
		}
		return serverError(c, "Ошибка при получении продукта", err)
	}

	detail := transport.ProductDetail{Product: product}
	var category models.Category
	if err := h.DB.WithContext(ctx).First(&category, product.CategoryID).Error; err == nil {
		detail.Category = &transport.CategoryRef{ID: category.ID, Name: category.Name}
	}

	return c.JSON(http.StatusOK, detail)
}

func (h *ProductHandler) GetByOwner(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := parseID(c.Param("ownerId"))
	if !ok {
		return message(c, http.StatusBadRequest, "Некорректный ID владельца")
	}

	var products []models.Product
	if err := h.DB.WithContext(ctx).Where("owner_id = ?", ownerID).Find(&products).Error; err != nil {
		return serverError(c, "Ошибка при получении продуктов владельца", err)
	}

	return c.JSON(http.StatusOK, products)
}
