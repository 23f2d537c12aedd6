package productcontroller

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/models"
	"gorm.io/gorm"
)

const maxListLimit = 100

// sortColumns maps the sort parameter to a column.
var sortColumns = map[string]string{
	"createdAt":  "created_at",
	"created_at": "created_at",
	"price":      "price",
	"name":       "name",
}

// GET /api/products?search=&category=&fabric=&color=&occasion=&isNew=&min_price=&max_price=&sort=&order=&limit=
//
// fabric, color and occasion take comma-separated values and match any of
// them, ignoring case.
func GetProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		search := strings.TrimSpace(c.Query("search"))
		category := c.Query("category")
		minPriceStr := c.Query("min_price")
		maxPriceStr := c.Query("max_price")

		sortBy, ok := sortColumns[c.DefaultQuery("sort", "createdAt")]
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sort"})
			return
		}
		sortOrder := strings.ToLower(c.DefaultQuery("order", "desc"))
		if sortOrder != "asc" && sortOrder != "desc" {
			sortOrder = "desc"
		}

		query := db.Model(&models.Product{})

		if search != "" {
			likePattern := "%" + strings.ToLower(search) + "%"
			query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", likePattern, likePattern)
		}

		if minPriceStr != "" {
			mp, err := strconv.ParseInt(minPriceStr, 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid min_price"})
				return
			}
			query = query.Where("price >= ?", mp)
		}
		if maxPriceStr != "" {
			mp, err := strconv.ParseInt(maxPriceStr, 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid max_price"})
				return
			}
			query = query.Where("price <= ?", mp)
		}

		if category != "" {
			query = query.Where("category = ?", category)
		}
		for param, column := range map[string]string{"fabric": "fabric", "color": "color", "occasion": "occasion"} {
			if values := splitList(c.Query(param)); len(values) > 0 {
				query = query.Where(fmt.Sprintf("LOWER(%s) IN ?", column), values)
			}
		}

		if isNew := c.Query("isNew"); isNew != "" {
			b, err := strconv.ParseBool(isNew)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid isNew"})
				return
			}
			query = query.Where("is_new = ?", b)
		}

		if limitStr := c.Query("limit"); limitStr != "" {
			limit, err := strconv.Atoi(limitStr)
			if err != nil || limit < 1 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
				return
			}
			query = query.Limit(min(limit, maxListLimit))
		}

		products := []models.Product{}
		if err := query.Order(fmt.Sprintf("%s %s, id", sortBy, sortOrder)).Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

// splitList lowercases and trims a comma-separated filter value.
func splitList(raw string) []string {
	var out []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}
