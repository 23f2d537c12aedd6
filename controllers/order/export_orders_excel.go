package orderControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/models"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

// GET /admin/orders/export
//
// One row per order line; order-level columns repeat on each line.
func ExportOrdersToExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := listOrders(db, c.Query("status"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}

		file, err := buildOrdersWorkbook(orders)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel sheet"})
			return
		}

		// Set response headers for download
		c.Header("Content-Disposition", "attachment; filename=orders.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")

		if err := file.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
			return
		}
	}
}

var orderExportHeaders = []string{
	"OrderRef", "CreatedAt", "Status", "PaymentMethod", "PaymentStatus",
	"Customer", "Phone", "City", "Pincode",
	"ProductID", "Product", "Price", "Quantity",
	"Subtotal", "ShippingCharges", "Total",
}

func buildOrdersWorkbook(orders []models.Order) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return nil, err
	}

	headerRow := sheet.AddRow()
	for _, h := range orderExportHeaders {
		headerRow.AddCell().SetValue(h)
	}

	for _, o := range orders {
		for _, item := range o.Items {
			row := sheet.AddRow()
			row.AddCell().SetValue(o.OrderRef)
			row.AddCell().SetValue(o.CreatedAt.Format("2006-01-02 15:04:05"))
			row.AddCell().SetValue(string(o.Status))
			row.AddCell().SetValue(string(o.PaymentMethod))
			row.AddCell().SetValue(string(o.PaymentStatus))
			row.AddCell().SetValue(o.ShippingAddress.FullName)
			row.AddCell().SetValue(o.ShippingAddress.Phone)
			row.AddCell().SetValue(o.ShippingAddress.City)
			row.AddCell().SetValue(o.ShippingAddress.Pincode)
			row.AddCell().SetValue(item.ProductID)
			row.AddCell().SetValue(item.Name)
			row.AddCell().SetValue(item.Price)
			row.AddCell().SetValue(item.Quantity)
			row.AddCell().SetValue(o.Subtotal)
			row.AddCell().SetValue(o.ShippingCharges)
			row.AddCell().SetValue(o.Total)
		}
	}
	return file, nil
}
