package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/urbanstyle/tienda/internal/handlers"
	"github.com/urbanstyle/tienda/internal/middleware/auth"
)

type Deps struct {
	AuthHandler    *handlers.AuthHandler
	ProductHandler *handlers.ProductHandler
	OrderHandler   *handlers.OrderHandler
	SearchHandler  *handlers.SearchHandler
	Gate           *auth.Gate
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	api := e.Group("/api")

	api.POST("/register", d.AuthHandler.Register)
	api.POST("/login", d.AuthHandler.Login)

	api.GET("/products", d.ProductHandler.GetProducts)
	if d.SearchHandler != nil {
		api.GET("/products/search", d.SearchHandler.Search)
	}

	admin := api.Group("/products", d.Gate.RequireAdmin)
	admin.POST("", d.ProductHandler.CreateProduct)
	admin.PUT("/:id", d.ProductHandler.UpdateProduct)
	admin.DELETE("/:id", d.ProductHandler.DeleteProduct)

	orders := api.Group("", d.Gate.RequireLogin)
	orders.GET("/orden_compra", d.OrderHandler.GetOrders)
	orders.POST("/orden_compra", d.OrderHandler.CreateOrder)
	orders.GET("/detalle_compra", d.OrderHandler.GetOrderDetails)
}
