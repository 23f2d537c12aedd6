package productcontroller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/models"
	"gorm.io/gorm"
)

// ProductInput is the admin payload for creating a product. Image URLs are
// stored as given; uploads are handled elsewhere.
type ProductInput struct {
	Name          string   `json:"name" binding:"required"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	Price         int64    `json:"price" binding:"min=0"`
	OriginalPrice *int64   `json:"originalPrice"`
	Images        []string `json:"images"`
	Fabric        string   `json:"fabric"`
	Color         string   `json:"color"`
	Occasion      string   `json:"occasion"`
	IsNew         bool     `json:"isNew"`
	InStock       *bool    `json:"inStock"`
}

// POST /admin/products
func CreateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if input.OriginalPrice != nil && *input.OriginalPrice < input.Price {
			c.JSON(http.StatusBadRequest, gin.H{"error": "originalPrice cannot be below price"})
			return
		}

		product := models.Product{
			Name:          strings.TrimSpace(input.Name),
			Description:   input.Description,
			Category:      input.Category,
			Price:         input.Price,
			OriginalPrice: input.OriginalPrice,
			Images:        input.Images,
			Fabric:        input.Fabric,
			Color:         input.Color,
			Occasion:      input.Occasion,
			IsNew:         input.IsNew,
			InStock:       input.InStock == nil || *input.InStock,
		}
		if product.Images == nil {
			product.Images = []string{}
		}

		if err := db.Create(&product).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
			return
		}

		c.JSON(http.StatusCreated, product)
	}
}
