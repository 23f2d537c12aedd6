package routes

import (
	"github.com/gin-gonic/gin"
	productControllers "github.com/junaidrashid-git/storefront/controllers/product"
)

// SetupProductRoutes registers public catalogue reads.
func SetupProductRoutes(api *gin.RouterGroup, d Deps) {
	products := api.Group("/products")
	{
		products.GET("", productControllers.GetProducts(d.DB))        // GET /api/products
		products.GET("/:id", productControllers.GetProductByID(d.DB)) // GET /api/products/:id
	}
}
