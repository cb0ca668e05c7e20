package models

import (
	"time"
)

// IDList and StringList are denormalized reference arrays stored as one
// JSON column, so the same schema works on postgres and the sqlite test DB.
type IDList []uint

type StringList []string

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// MonthlyBuckets keeps the owner dashboard numbers for the first half year.
type MonthlyBuckets struct {
	January  float64 `json:"January"`
	February float64 `json:"February"`
	March    float64 `json:"March"`
	April    float64 `json:"April"`
	May      float64 `json:"May"`
	June     float64 `json:"June"`
}

type CostBuckets struct {
	Day        float64 `json:"day"`
	Week       float64 `json:"week"`
	Month      float64 `json:"month"`
	ThreeMonth float64 `json:"threeMonth"`
}

type Product struct {
	ID           uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string     `gorm:"not null"                 json:"name"`
	Description  string     `json:"description"`
	Certificates IDList     `gorm:"serializer:json"          json:"certificates"`
	Price        float64    `gorm:"not null;index"           json:"price"`
	NewPrice     float64    `json:"newPrice"`
	Images       StringList `gorm:"serializer:json"          json:"images"`
	Sizes        StringList `gorm:"serializer:json"          json:"sizes"`
	OwnerID      uint       `gorm:"index;not null"           json:"owner"`
	CategoryID   uint       `gorm:"index;not null"           json:"category"`
	MinAmount    uint       `gorm:"default:1"                json:"minAmount"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	CreatedBy    string     `json:"createdBy"`
}

type Certificate struct {
	ID                uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name              string     `gorm:"not null"                 json:"name"`
	CertificateNumber string     `gorm:"not null"                 json:"certificateNumber"`
	Files             StringList `gorm:"serializer:json"          json:"files"`
	StartedAt         *time.Time `json:"startedAt"`
	EndedAt           *time.Time `json:"endedAt"`
	OwnerID           uint       `gorm:"index;not null"           json:"owner"`
	Products          IDList     `gorm:"serializer:json"          json:"products"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
	CreatedBy         string     `json:"createdBy"`
}

type Owner struct {
	ID           uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string         `gorm:"not null"                 json:"name"`
	Products     IDList         `gorm:"serializer:json"          json:"products"`
	Certificates IDList         `gorm:"serializer:json"          json:"certificates"`
	Login        string         `gorm:"uniqueIndex;not null"     json:"login"`
	Password     string         `gorm:"not null"                 json:"-"`
	Users        StringList     `gorm:"serializer:json"          json:"users"`
	Email        string         `json:"email"`
	Address      string         `json:"address"`
	PhoneNumber  string         `json:"phoneNumber"`
	Sales        MonthlyBuckets `gorm:"serializer:json"          json:"sales"`
	Expenses     MonthlyBuckets `gorm:"serializer:json"          json:"expenses"`
	Promotions   IDList         `gorm:"serializer:json"          json:"promotions"`
	Ads          IDList         `gorm:"serializer:json"          json:"ads"`
	Rating       float64        `gorm:"default:0"                json:"rating"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

type User struct {
	ID                uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	Login             string      `gorm:"uniqueIndex;not null"     json:"login"`
	Password          string      `gorm:"not null"                 json:"-"`
	PhoneNumber       string      `gorm:"uniqueIndex"              json:"phoneNumber"`
	LastName          string      `gorm:"not null"                 json:"lastName"`
	FirstName         string      `gorm:"not null"                 json:"firstName"`
	RefreshToken      string      `json:"-"`
	DeliveryAddresses IDList      `gorm:"serializer:json"          json:"deliveryAddresses"`
	Orders            IDList      `gorm:"serializer:json"          json:"orders"`
	CartProducts      IDList      `gorm:"serializer:json"          json:"cartProducts"`
	SavedProducts     IDList      `gorm:"serializer:json"          json:"savedProducts"`
	Avatar            string      `json:"avatar"`
	Costs             CostBuckets `gorm:"serializer:json"          json:"costs"`
	IsActive          bool        `gorm:"default:true"             json:"isActive"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
}

type DeliveryAddress struct {
	ID          uint        `gorm:"primaryKey;autoIncrement"       json:"id"`
	Address     string      `gorm:"not null"                       json:"address"`
	Coordinates Coordinates `gorm:"embedded;embeddedPrefix:coord_" json:"coordinates"`
	PhoneNumber string      `json:"phoneNumber"`
	CustomerID  uint        `gorm:"index;not null"                 json:"customer"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type Category struct {
	ID               uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name             string `gorm:"not null"                 json:"name"`
	ParentCategoryID *uint  `gorm:"index"                    json:"parentCategory,omitempty"`
	Subcategories    IDList `gorm:"serializer:json"          json:"subcategories"`
	Products         IDList `gorm:"serializer:json"          json:"products"`
	CategoryIcon     string `json:"categoryIcon"`
}

const (
	OrderStatusPending   = "pending"
	OrderStatusStarted   = "started"
	OrderStatusFinished  = "finished"
	OrderStatusCancelled = "cancelled"
)

type Order struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Products    IDList     `gorm:"serializer:json"          json:"products"`
	CustomerID  uint       `gorm:"index;not null"           json:"customer"`
	OwnerID     uint       `gorm:"index;not null"           json:"owner"`
	Status      string     `gorm:"not null;default:pending" json:"status"`
	Key         string     `gorm:"index"                    json:"key"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`
}

type CartItem struct {
	ID        uint `gorm:"primaryKey;autoIncrement"              json:"id"`
	UserID    uint `gorm:"uniqueIndex:idx_user_product;not null" json:"userId"`
	ProductID uint `gorm:"uniqueIndex:idx_user_product;not null" json:"productId"`
	Quantity  uint `gorm:"default:1;check:quantity>0"            json:"quantity"`
}

type Promotion struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Link        string    `json:"link"`
	ProductID   uint      `gorm:"index"                    json:"product"`
	Name        string    `gorm:"not null"                 json:"name"`
	Description string    `json:"description"`
	OwnerID     uint      `gorm:"index"                    json:"owner"`
	NewPrice    float64   `gorm:"not null"                 json:"newPrice"`
	EndedAt     time.Time `gorm:"not null"                 json:"endedAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

type News struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Img         string    `json:"img"`
	Title       string    `gorm:"not null"                 json:"title"`
	Description string    `json:"description"`
	Link        string    `json:"link"`
	CreatedAt   time.Time `json:"createdAt"`
}
