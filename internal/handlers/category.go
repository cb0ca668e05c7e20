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

type CategoryHandler struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

// Create persists the category and, when a parent is given, registers the
// new id in the parent's subcategory list inside the same transaction.
func (h *CategoryHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category_create")

	var req transport.CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "Некорректное тело запроса")
	}
	if err := h.Validate.Struct(&req); err != nil {
		l.Warn("create_error", "status", 400, "error", err)
		return message(c, http.StatusBadRequest, "Не заполнены обязательные поля")
	}

	category := models.Category{
		Name:             req.Name,
		ParentCategoryID: req.ParentCategory,
		CategoryIcon:     req.CategoryIcon,
	}

	err := h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var parent models.Category
		if req.ParentCategory != nil {
			if err := tx.First(&parent, *req.ParentCategory).Error; err != nil {
				return err
			}
		}
		if err := tx.Create(&category).Error; err != nil {
			return err
		}
		if req.ParentCategory != nil {
			parent.Subcategories = append(parent.Subcategories, category.ID)
			return tx.Save(&parent).Error
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message(c, http.StatusNotFound, "Родительская категория не найдена")
		}
		l.Error("create_error", "status", 500, "error", err)
		return serverError(c, "Ошибка при создании категории", err)
	}

	l.Info("category_created", "category_id", category.ID)
	return c.JSON(http.StatusCreated, echo.Map{
		"message":  "Категория успешно создана",
		"category": category,
	})
}

func (h *CategoryHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	categoryID, ok := parseID(c.Param("categoryId"))
	if !ok {
		return message(c, http.StatusBadRequest, "Некорректный ID категории")
	}

	var req transport.PatchCategoryRequest
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "Некорректное тело запроса")
	}

	var category models.Category
	if err := h.DB.WithContext(ctx).First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message(c, http.StatusNotFound, "Категория не найдена")
		}
		return serverError(c, "Ошибка при обновлении категории", err)
	}

	// Empty strings never clear a field.
	if req.Name != nil && *req.Name != "" {
		category.Name = *req.Name
	}
	if req.CategoryIcon != nil && *req.CategoryIcon != "" {
		category.CategoryIcon = *req.CategoryIcon
	}
	if req.ParentCategory != nil {
		category.ParentCategoryID = req.ParentCategory
	}

	if err := h.DB.WithContext(ctx).Save(&category).Error; err != nil {
		return serverError(c, "Ошибка при обновлении категории", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":  "Категория успешно обновлена",
		"category": category,
	})
}

// Delete removes only the category row. Subcategories and products keep
// their references and are cleaned up lazily by readers.
func (h *CategoryHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	categoryID, ok := parseID(c.Param("categoryId"))
	if !ok {
		return message(c, http.StatusBadRequest, "Некорректный ID категории")
	}

	res := h.DB.WithContext(ctx).Delete(&models.Category{}, categoryID)
	if res.Error != nil {
		return serverError(c, "Ошибка при удалении категории", res.Error)
	}
	if res.RowsAffected == 0 {
		return message(c, http.StatusNotFound, "Категория не найдена")
	}

	return message(c, http.StatusOK, "Категория успешно удалена")
}

func (h *CategoryHandler) GetAll(c echo.Context) error {
	ctx := c.Request().Context()

	var categories []models.Category
	if err := h.DB.WithContext(ctx).Find(&categories).Error; err != nil {
		return serverError(c, "Ошибка при получении категорий", err)
	}

	details, err := h.expand(c, categories)
	if err != nil {
		return serverError(c, "Ошибка при получении категорий", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":    "Категории успешно получены",
		"categories": details,
	})
}

func (h *CategoryHandler) GetByID(c echo.Context) error {
	ctx := c.Request().Context()

	categoryID, ok := parseID(c.Param("categoryId"))
	if !ok {
		return message(c, http.StatusBadRequest, "Некорректный ID категории")
	}

	var category models.Category
	if err := h.DB.WithContext(ctx).First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message(c, http.StatusNotFound, "Категория не найдена")
		}
		return serverError(c, "Ошибка при получении категории", err)
	}

	details, err := h.expand(c, []models.Category{category})
	if err != nil {
		return serverError(c, "Ошибка при получении категории", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":  "Категория успешно получена",
		"category": details[0],
	})
}

// expand resolves parent and direct subcategories one level deep. Stale
// subcategory ids (deleted rows) are silently dropped from the view.
func (h *CategoryHandler) expand(c echo.Context, categories []models.Category) ([]transport.CategoryDetail, error) {
	ctx := c.Request().Context()

	refIDs := make([]uint, 0, len(categories)*2)
	for _, cat := range categories {
		if cat.ParentCategoryID != nil {
			refIDs = append(refIDs, *cat.ParentCategoryID)
		}
		refIDs = append(refIDs, cat.Subcategories...)
	}

	refs := map[uint]models.Category{}
	if len(refIDs) > 0 {
		var rows []models.Category
		if err := h.DB.WithContext(ctx).Where("id IN ?", refIDs).Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, row := range rows {
			refs[row.ID] = row
		}
	}

	details := make([]transport.CategoryDetail, 0, len(categories))
	for _, cat := range categories {
		detail := transport.CategoryDetail{Category: cat}
		if cat.ParentCategoryID != nil {
			if parent, ok := refs[*cat.ParentCategoryID]; ok {
				p := parent
				detail.ParentCategory = &p
			}
		}
		subs := make([]models.Category, 0, len(cat.Subcategories))
		for _, id := range cat.Subcategories {
			if sub, ok := refs[id]; ok {
				subs = append(subs, sub)
			}
		}
		detail.Subcategories = subs
		details = append(details, detail)
	}
	return details, nil
}
