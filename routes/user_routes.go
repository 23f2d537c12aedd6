package routes

import (
	"github.com/gin-gonic/gin"
	addressControllers "github.com/junaidrashid-git/storefront/controllers/address"
	cartControllers "github.com/junaidrashid-git/storefront/controllers/cart"
	orderControllers "github.com/junaidrashid-git/storefront/controllers/order"
	userControllers "github.com/junaidrashid-git/storefront/controllers/user"
	wishlistControllers "github.com/junaidrashid-git/storefront/controllers/wishlist"
	"github.com/junaidrashid-git/storefront/middleware"
)

// SetupUserRoutes registers the signed-in endpoints. Requires JWT middleware.
func SetupUserRoutes(api *gin.RouterGroup, d Deps) {
	userGroup := api.Group("")
	userGroup.Use(middleware.ValidateToken(d.JWTSecret))
	{
		// ──────────────── User Profile ────────────────
		userGroup.GET("/user", userControllers.GetUser(d.DB))    // GET /api/user
		userGroup.PUT("/user", userControllers.UpdateUser(d.DB)) // PUT /api/user

		// ──────────────── Shopping Cart ────────────────
		cartGroup := userGroup.Group("/cart")
		{
			cartGroup.GET("", cartControllers.GetUserCart(d.DB))                   // GET /api/cart
			cartGroup.POST("", cartControllers.AddCartItem(d.DB))                  // POST /api/cart
			cartGroup.DELETE("", cartControllers.ClearUserCart(d.DB))              // DELETE /api/cart
			cartGroup.PUT("/:product_id", cartControllers.UpdateCartItem(d.DB))    // PUT /api/cart/:product_id
			cartGroup.DELETE("/:product_id", cartControllers.DeleteCartItem(d.DB)) // DELETE /api/cart/:product_id
		}

		// ──────────────── Wishlist ────────────────
		wishlistGroup := userGroup.Group("/wishlist")
		{
			wishlistGroup.GET("", wishlistControllers.GetWishlist(d.DB))
			wishlistGroup.POST("/:product_id", wishlistControllers.AddToWishlist(d.DB))
			wishlistGroup.DELETE("/:product_id", wishlistControllers.RemoveFromWishlist(d.DB))
		}

		// ──────────────── Addresses ────────────────
		userGroup.GET("/addresses", addressControllers.GetAddresses(d.DB))
		userGroup.POST("/addresses", addressControllers.CreateAddress(d.DB))

		// ──────────────── Orders ────────────────
		orderGroup := userGroup.Group("/orders")
		{
			orderGroup.POST("", orderControllers.PlaceOrderHandler(d.DB, d.Orders))
			orderGroup.GET("", orderControllers.GetUserOrdersHandler(d.DB))
			orderGroup.GET("/:order_id", orderControllers.GetOrderByIDHandler(d.DB))
		}
	}
}
