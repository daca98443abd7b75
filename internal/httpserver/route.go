package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lvcu04/fashion_shop/internal/idempotency"
	authmw "github.com/lvcu04/fashion_shop/pkg/middleware/auth"
)

type Deps struct {
	AuthHandler      *AuthHTTP
	CatalogHandler   *CatalogHTTP
	SearchHandler    *SearchHTTP
	CartHandler      *CartHTTP
	OrderHandler     *OrderHTTP
	ReviewHandler    *ReviewHTTP
	PaymentHandler   *PaymentHTTP
	DashboardHandler *DashboardHTTP

	JWTSecret []byte
	// Idempotency is optional; without it checkout ignores Idempotency-Key.
	Idempotency idempotency.Store
	// Ready reports whether dependencies are reachable. Nil means always ready.
	Ready func() error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready")
			}
		}
		return c.NoContent(http.StatusOK)
	})

	authMW := authmw.NewAuth(d.JWTSecret)
	checkout := func(scope string) []echo.MiddlewareFunc {
		if d.Idempotency == nil {
			return nil
		}
		return []echo.MiddlewareFunc{idempotency.Middleware(d.Idempotency, scope)}
	}

	api := e.Group("/api/v1")

	api.POST("/auth/register", d.AuthHandler.Register)
	api.POST("/auth/login", d.AuthHandler.Login)
	api.GET("/users/me", d.AuthHandler.Me, authMW.RequireAuth)

	api.GET("/categories", d.CatalogHandler.ListCategories)
	api.GET("/products", d.CatalogHandler.ListProducts)
	api.GET("/products/search", d.SearchHandler.Search)
	api.GET("/products/:id", d.CatalogHandler.GetProduct)
	api.GET("/products/:id/reviews", d.ReviewHandler.List)
	api.GET("/products/:id/reviews/stats", d.ReviewHandler.Stats)
	api.POST("/products/:id/reviews", d.ReviewHandler.Create, authMW.RequireAuth)

	cart := api.Group("/cart", authMW.RequireAuth)
	cart.GET("", d.CartHandler.Get)
	cart.POST("", d.CartHandler.Add)
	cart.DELETE("", d.CartHandler.Clear)
	cart.DELETE("/items/:id", d.CartHandler.RemoveOne)

	orders := api.Group("/orders", authMW.RequireAuth)
	orders.POST("/create-from-cart", d.OrderHandler.CreateFromCart, checkout("create_from_cart")...)
	orders.POST("/create-single", d.OrderHandler.CreateSingle, checkout("create_single")...)
	orders.GET("", d.OrderHandler.ListMine)
	orders.GET("/:id", d.OrderHandler.GetMine)

	payments := api.Group("/payments")
	payments.POST("/create-payment-intent", d.PaymentHandler.CreateIntent, authMW.RequireAuth)
	payments.POST("/webhook", d.PaymentHandler.Webhook)

	admin := api.Group("/admin", authMW.RequireAdmin)
	admin.POST("/categories", d.CatalogHandler.CreateCategory)
	admin.PATCH("/categories/:id", d.CatalogHandler.RenameCategory)
	admin.DELETE("/categories/:id", d.CatalogHandler.DeleteCategory)
	admin.POST("/products", d.CatalogHandler.CreateProduct)
	admin.PATCH("/products/:id", d.CatalogHandler.PatchProduct)
	admin.DELETE("/products/:id", d.CatalogHandler.DeleteProduct)
	admin.POST("/products/:id/restock", d.CatalogHandler.Restock)
	admin.GET("/orders", d.OrderHandler.AdminList)
	admin.GET("/orders/:id", d.OrderHandler.AdminGet)
	admin.PATCH("/orders/:id/status", d.OrderHandler.UpdateStatus)
	admin.GET("/dashboard/stats", d.DashboardHandler.Stats)
}
