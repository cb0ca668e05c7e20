package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/bazarchi/backend/internal/handlers"
	authmw "github.com/bazarchi/backend/internal/middleware/auth"
	loggingmw "github.com/bazarchi/backend/internal/middleware/logging"
	"github.com/bazarchi/backend/internal/mykafka"
)

// Deps carries everything the route handlers need.
type Deps struct {
	DB            *gorm.DB
	Logger        *slog.Logger
	Producer      *mykafka.Producer
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// New builds the echo instance with all middleware and routes attached.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(loggingmw.RequestLogger(d.Logger))

	Register(e, d)
	return e
}

// Register attaches every route group to e.
func Register(e *echo.Echo, d Deps) {
	validate := validator.New()

	userHandler := &handlers.UserHandler{
		DB:            d.DB,
		AccessSecret:  d.AccessSecret,
		RefreshSecret: d.RefreshSecret,
		AccessTTL:     d.AccessTTL,
		RefreshTTL:    d.RefreshTTL,
		Validate:      validate,
		Producer:      d.Producer,
	}
	ownerHandler := &handlers.OwnerHandler{
		DB:            d.DB,
		AccessSecret:  d.AccessSecret,
		RefreshSecret: d.RefreshSecret,
		AccessTTL:     d.AccessTTL,
		RefreshTTL:    d.RefreshTTL,
		Validate:      validate,
	}
	productHandler := &handlers.ProductHandler{DB: d.DB, Validate: validate, Producer: d.Producer}
	categoryHandler := &handlers.CategoryHandler{DB: d.DB, Validate: validate}
	certificateHandler := &handlers.CertificateHandler{DB: d.DB, Validate: validate}
	cartHandler := &handlers.CartHandler{DB: d.DB, Validate: validate}
	orderHandler := &handlers.OrderHandler{DB: d.DB, Validate: validate, Producer: d.Producer}

	e.GET("/health/live", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/health/ready", func(c echo.Context) error {
		sqlDB, err := d.DB.DB()
		if err != nil || sqlDB.PingContext(c.Request().Context()) != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "degraded"})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	users := e.Group("/users")
	users.POST("/register", userHandler.Register)
	users.POST("/login", userHandler.Login)
	users.POST("/refresh-token", userHandler.Refresh)
	users.GET("/current-user", userHandler.CurrentUser, authmw.RequireAuth(d.AccessSecret))
	users.GET("/:userId", userHandler.GetUserByID)
	users.POST("/:userId/deliveryAddresses", userHandler.AddDeliveryAddress)
	users.GET("/:userId/deliveryAddresses", userHandler.GetDeliveryAddresses)
	users.PUT("/:userId/deliveryAddresses/:addressId", userHandler.UpdateDeliveryAddress)
	users.DELETE("/:userId/deliveryAddresses/:addressId", userHandler.DeleteDeliveryAddress)

	owners := e.Group("/owners")
	owners.POST("/register", ownerHandler.Register)
	owners.POST("/login", ownerHandler.Login)
	owners.POST("/refresh-token", ownerHandler.Refresh)

	products := e.Group("/products")
	products.POST("", productHandler.Create)
	products.GET("", productHandler.GetAll)
	products.GET("/:productId", productHandler.GetByID)
	products.PUT("/:productId", productHandler.Update)
	products.GET("/owner/:ownerId", productHandler.GetByOwner)

	categories := e.Group("/categories")
	categories.POST("", categoryHandler.Create)
	categories.GET("", categoryHandler.GetAll)
	categories.GET("/:categoryId", categoryHandler.GetByID)
	categories.PUT("/:categoryId", categoryHandler.Update)
	categories.DELETE("/:categoryId", categoryHandler.Delete)

	certificates := e.Group("/certificates")
	certificates.POST("", certificateHandler.Create)
	certificates.GET("", certificateHandler.GetAll)
	certificates.GET("/:certificateId", certificateHandler.GetByID)
	certificates.PUT("/:certificateId", certificateHandler.Update)
	certificates.DELETE("/:certificateId", certificateHandler.Delete)

	cart := e.Group("/cart")
	cart.POST("/add", cartHandler.AddToCart)
	cart.GET("/:userId", cartHandler.GetCart)
	cart.DELETE("/:userId/remove-items", cartHandler.ClearItems)

	orders := e.Group("/orders")
	orders.POST("", orderHandler.Create)
	orders.GET("", orderHandler.GetAll)
	orders.GET("/:id", orderHandler.GetByID)
	orders.PUT("/:id", orderHandler.UpdateStatus)
	orders.DELETE("/:id", orderHandler.Delete)
	orders.GET("/user/:userId", orderHandler.GetByUser)
	orders.GET("/owner/:ownerId", orderHandler.GetByOwner)
}
