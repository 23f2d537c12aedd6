package routes

import (
	"github.com/gin-gonic/gin"
	cartControllers "github.com/junaidrashid-git/storefront/controllers/cart"
	orderControllers "github.com/junaidrashid-git/storefront/controllers/order"
	productControllers "github.com/junaidrashid-git/storefront/controllers/product"
	userControllers "github.com/junaidrashid-git/storefront/controllers/user"
	"github.com/junaidrashid-git/storefront/middleware"
)

// SetupAdminRoutes registers all "/admin/*" endpoints. Requires API-Key middleware.
func SetupAdminRoutes(r *gin.Engine, d Deps) {
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.ValidateAPIKey(d.AdminAPIKey))
	{
		// ─────────── User Management ───────────
		adminGroup.GET("/users", userControllers.GetAllUsers(d.DB))
		adminGroup.GET("/carts/:user_id", cartControllers.GetAdminUserCart(d.DB))

		// ─────────── Product Management ───────────
		productAdmin := adminGroup.Group("/products")
		{
			productAdmin.POST("", productControllers.CreateProduct(d.DB))
			productAdmin.PUT("/:id", productControllers.UpdateProduct(d.DB))
			productAdmin.DELETE("/:id", productControllers.DeleteProduct(d.DB))
			productAdmin.GET("/export", productControllers.ExportProductsToExcel(d.DB))
		}

		// ─────────── Orders ───────────
		orderAdmin := adminGroup.Group("/orders")
		{
			orderAdmin.GET("", orderControllers.GetAllOrdersHandler(d.DB))
			orderAdmin.GET("/export", orderControllers.ExportOrdersToExcel(d.DB))
			orderAdmin.GET("/ws", d.Orders.OrderWebSocketHandler)
		}
	}
}
