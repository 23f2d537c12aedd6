package productcontroller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/models"
	"gorm.io/gorm"
)

// ProductUpdate carries optional fields; nil leaves the column unchanged.
type ProductUpdate struct {
	Name          *string   `json:"name"`
	Description   *string   `json:"description"`
	Category      *string   `json:"category"`
	Price         *int64    `json:"price"`
	OriginalPrice *int64    `json:"originalPrice"`
	Images        *[]string `json:"images"`
	Fabric        *string   `json:"fabric"`
	Color         *string   `json:"color"`
	Occasion      *string   `json:"occasion"`
	IsNew         *bool     `json:"isNew"`
	InStock       *bool     `json:"inStock"`
}

// PUT /admin/products/:id
//
// Carts keep referencing the product, so a price change here is what the
// next cart read and the next order see.
func UpdateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var product models.Product
		if err := db.First(&product, "id = ?", c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve product"})
			}
			return
		}

		var input ProductUpdate
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		if input.Name != nil {
			product.Name = *input.Name
		}
		if input.Description != nil {
			product.Description = *input.Description
		}
		if input.Category != nil {
			product.Category = *input.Category
		}
		if input.Price != nil {
			if *input.Price < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "price cannot be negative"})
				return
			}
			product.Price = *input.Price
		}
		if input.OriginalPrice != nil {
			product.OriginalPrice = input.OriginalPrice
		}
		if input.Images != nil {
			product.Images = *input.Images
		}
		if input.Fabric != nil {
			product.Fabric = *input.Fabric
		}
		if input.Color != nil {
			product.Color = *input.Color
		}
		if input.Occasion != nil {
			product.Occasion = *input.Occasion
		}
		if input.IsNew != nil {
			product.IsNew = *input.IsNew
		}
		if input.InStock != nil {
			product.InStock = *input.InStock
		}

		if err := db.Save(&product).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
			return
		}

		c.JSON(http.StatusOK, product)
	}
}
