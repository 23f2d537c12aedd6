package orderControllers

import (
	"testing"
	"time"

	"github.com/junaidrashid-git/storefront/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildOrdersWorkbook_OneRowPerLine(t *testing.T) {
	orders := []models.Order{
		{
			OrderRef:        "20250908130500-a",
			CreatedAt:       time.Date(2025, 9, 8, 13, 5, 0, 0, time.UTC),
			Status:          models.OrderStatusPending,
			PaymentMethod:   models.PaymentCOD,
			PaymentStatus:   models.PaymentStatusPending,
			ShippingAddress: models.AddressFields{FullName: "Asha Rao", City: "Bengaluru", Pincode: "560038"},
			Items: []models.OrderItem{
				{ProductID: "p1", Name: "Kurta", Price: 400, Quantity: 2},
				{ProductID: "p2", Name: "Dupatta", Price: 250, Quantity: 1},
			},
			Subtotal: 1050,
			Total:    1050,
		},
		{OrderRef: "no-lines"},
	}

	file, err := buildOrdersWorkbook(orders)
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)

	rows := file.Sheets[0].Rows
	require.Len(t, rows, 3)
	require.Len(t, rows[0].Cells, len(orderExportHeaders))
	assert.Equal(t, "OrderRef", rows[0].Cells[0].Value)

	line := rows[2].Cells
	assert.Equal(t, "20250908130500-a", line[0].Value)
	assert.Equal(t, "2025-09-08 13:05:00", line[1].Value)
	assert.Equal(t, "Asha Rao", line[5].Value)
	assert.Equal(t, "Dupatta", line[10].Value)
	assert.Equal(t, "250", line[11].Value)
	assert.Equal(t, "1050", line[15].Value)
}
