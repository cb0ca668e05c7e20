package transport

import (
	"time"

	"github.com/bazarchi/backend/internal/models"
)

// Requests.

type RegisterUserRequest struct {
	Password    string `json:"password"    validate:"required"`
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	FirstName   string `json:"firstName"   validate:"required"`
	LastName    string `json:"lastName"    validate:"required"`
}

type LoginUserRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
}

type RegisterOwnerRequest struct {
	Name        string `json:"name"     validate:"required"`
	Login       string `json:"login"    validate:"required"`
	Password    string `json:"password" validate:"required"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
}

type LoginOwnerRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type CreateProductRequest struct {
	Name         string            `json:"name"        validate:"required"`
	Description  string            `json:"description"`
	Price        float64           `json:"price"       validate:"required"`
	NewPrice     float64           `json:"newPrice"`
	Images       models.StringList `json:"images"`
	Sizes        models.StringList `json:"sizes"`
	Owner        uint              `json:"owner"       validate:"required"`
	Category     uint              `json:"category"    validate:"required"`
	CreatedBy    string            `json:"createdBy"`
	Certificates models.IDList     `json:"certificates"`
}

// Patch requests use pointers so that an absent field can be told apart
// from a zero value.
type PatchProductRequest struct {
	Name         *string            `json:"name"`
	Description  *string            `json:"description"`
	Price        *float64           `json:"price"`
	NewPrice     *float64           `json:"newPrice"`
	Images       *models.StringList `json:"images"`
	Sizes        *models.StringList `json:"sizes"`
	Owner        *uint              `json:"owner"`
	Category     *uint              `json:"category"`
	MinAmount    *uint              `json:"minAmount"`
	CreatedBy    *string            `json:"createdBy"`
	Certificates *models.IDList     `json:"certificates"`
}

type CreateCertificateRequest struct {
	Owner             uint              `json:"owner"             validate:"required"`
	Name              string            `json:"name"              validate:"required"`
	CertificateNumber string            `json:"certificateNumber" validate:"required"`
	Files             models.StringList `json:"files"`
	StartedAt         *time.Time        `json:"startedAt"`
	EndedAt           *time.Time        `json:"endedAt"`
	CreatedBy         string            `json:"createdBy"`
}

type PatchCertificateRequest struct {
	Name              *string            `json:"name"`
	CertificateNumber *string            `json:"certificateNumber"`
	Files             *models.StringList `json:"files"`
	StartedAt         *time.Time         `json:"startedAt"`
	EndedAt           *time.Time         `json:"endedAt"`
	CreatedBy         *string            `json:"createdBy"`
}

type CreateCategoryRequest struct {
	Name           string `json:"name" validate:"required"`
	ParentCategory *uint  `json:"parentCategory"`
	CategoryIcon   string `json:"categoryIcon"`
}

type PatchCategoryRequest struct {
	Name           *string `json:"name"`
	ParentCategory *uint   `json:"parentCategory"`
	CategoryIcon   *string `json:"categoryIcon"`
}

type CreateOrderRequest struct {
	Products models.IDList `json:"products" validate:"required,min=1"`
	Customer uint          `json:"customer" validate:"required"`
	Owner    uint          `json:"owner"    validate:"required"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

type AddToCartRequest struct {
	UserID    uint `json:"userId"    validate:"required"`
	ProductID uint `json:"productId" validate:"required"`
	Quantity  uint `json:"quantity"`
}

type ClearItemsRequest struct {
	ProductIDs models.IDList `json:"productIds"`
}

type CreateAddressRequest struct {
	Address     string             `json:"address" validate:"required"`
	Coordinates models.Coordinates `json:"coordinates"`
	PhoneNumber string             `json:"phoneNumber"`
}

type PatchAddressRequest struct {
	Address     *string             `json:"address"`
	Coordinates *models.Coordinates `json:"coordinates"`
	PhoneNumber *string             `json:"phoneNumber"`
}

// Responses. Outer fields shadow the embedded reference columns of the
// same JSON name, so the populated object replaces the raw id in the body.

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type PartyRef struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type CategoryRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type ProductListItem struct {
	models.Product
	Owner    *PartyRef        `json:"owner"`
	Category *models.Category `json:"category"`
}

type ProductList struct {
	Products   []ProductListItem `json:"products"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	TotalPages int64             `json:"totalPages"`
}

type ProductDetail struct {
	models.Product
	Category *CategoryRef `json:"category"`
}

type CategoryDetail struct {
	models.Category
	ParentCategory *models.Category  `json:"parentCategory,omitempty"`
	Subcategories  []models.Category `json:"subcategories"`
}

type ProductWithOwner struct {
	models.Product
	Owner *models.Owner `json:"owner"`
}

type CartItemDetail struct {
	models.CartItem
	Product *ProductWithOwner `json:"productId"`
}

type OrderDetail struct {
	models.Order
	Products []models.Product `json:"products"`
	Customer *PartyRef        `json:"customer"`
	Owner    *PartyRef        `json:"owner"`
}

type UserDetail struct {
	models.User
	DeliveryAddresses []models.DeliveryAddress `json:"deliveryAddresses"`
	Orders            []models.Order           `json:"orders"`
}
