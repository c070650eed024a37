package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/hanayashop/backend/internal/middleware/auth"
)

type Deps struct {
	Auth      *AuthHTTP
	Catalog   *CatalogHTTP
	Cart      *CartHTTP
	Orders    *OrderHTTP
	Admin     *AdminHTTP
	Account   *AccountHTTP
	Dashboard *DashboardHTTP

	JWTSecret []byte
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	requireLogin := authmw.RequireLogin(d.JWTSecret)

	e.POST("/auth/register", d.Auth.Register)
	e.POST("/auth/login", d.Auth.Login)
	e.POST("/auth/refresh", d.Auth.Refresh)

	products := e.Group("/products")
	products.GET("", d.Catalog.GetProducts)
	products.GET("/search", d.Catalog.SearchProducts)
	products.GET("/:id", d.Catalog.GetProduct)
	products.GET("/:id/reviews", d.Catalog.GetReviews)
	products.POST("/:id/reviews", d.Catalog.CreateReview, requireLogin)

	e.GET("/categories", d.Account.GetCategories)
	e.GET("/posts", d.Account.GetPosts)
	e.GET("/posts/:slug", d.Account.GetPost)

	cart := e.Group("/cart", requireLogin)
	cart.GET("", d.Cart.GetCart)
	cart.POST("", d.Cart.AddToCart)
	cart.DELETE("/:id", d.Cart.RemoveItem)
	cart.POST("/checkout", d.Cart.Checkout)

	orders := e.Group("/orders", requireLogin)
	orders.GET("", d.Orders.ListOrders)
	orders.GET("/:id", d.Orders.GetOrder)
	orders.POST("/:id/receive", d.Orders.Receive)
	orders.POST("/:id/cancel", d.Orders.Cancel)

	account := e.Group("/account", requireLogin)
	account.GET("/addresses", d.Account.GetAddresses)
	account.POST("/addresses", d.Account.CreateAddress)
	account.GET("/notifications", d.Account.GetNotifications)
	account.PATCH("/notifications/:id", d.Account.MarkNotificationRead)

	admin := e.Group("/admin", requireLogin, authmw.RequireAdmin)
	admin.GET("/orders", d.Admin.ListOrders)
	admin.POST("/orders/:id/confirm", d.Admin.ConfirmOrder)
	admin.POST("/orders/:id/ship", d.Admin.ShipOrder)
	admin.POST("/orders/:id/cancel", d.Admin.CancelOrder)
	admin.GET("/users", d.Admin.ListUsers)
	admin.POST("/products", d.Catalog.CreateProduct)
	admin.PATCH("/products/:id", d.Catalog.PatchProduct)
	admin.DELETE("/products/:id", d.Catalog.DeleteProduct)
	admin.POST("/categories", d.Admin.CreateCategory)
	admin.PATCH("/categories/:id", d.Admin.UpdateCategory)
	admin.DELETE("/categories/:id", d.Admin.DeleteCategory)
	admin.POST("/posts", d.Admin.CreatePost)
	admin.PATCH("/posts/:slug", d.Admin.UpdatePost)
	admin.DELETE("/posts/:slug", d.Admin.DeletePost)

	dashboard := e.Group("/api/dashboard", requireLogin, authmw.RequireAdmin)
	dashboard.GET("/summary", d.Dashboard.Summary)
	dashboard.GET("/revenue", d.Dashboard.Revenue)
	dashboard.GET("/orders/status", d.Dashboard.OrdersByStatus)
	dashboard.GET("/orders/histogram", d.Dashboard.OrderHistogram)
	dashboard.GET("/orders/cancellations", d.Dashboard.Cancellations)
	dashboard.GET("/products/top", d.Dashboard.TopProducts)
	dashboard.GET("/categories/performance", d.Dashboard.CategoryPerformance)
	dashboard.GET("/products/stock", d.Dashboard.StockLevels)
	dashboard.GET("/customers", d.Dashboard.Customers)
	dashboard.GET("/customers/retention", d.Dashboard.Retention)
	dashboard.GET("/reviews/ratings", d.Dashboard.ReviewRatings)
	dashboard.POST("/cache/clear", d.Dashboard.ClearCache)
}
