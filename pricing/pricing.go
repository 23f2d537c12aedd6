// Package pricing derives cart and order totals. All amounts are integers in
// the smallest currency unit.
package pricing

import "github.com/junaidrashid-git/storefront/models"

const (
	// FreeShippingThreshold is inclusive: a subtotal of exactly this amount ships free.
	FreeShippingThreshold int64 = 999
	FlatShippingFee       int64 = 99
)

type Line struct {
	Price    int64
	Quantity int
}

type Totals struct {
	Subtotal        int64 `json:"subtotal"`
	ShippingCharges int64 `json:"shippingCharges"`
	Total           int64 `json:"total"`
}

// ComputeTotals sums price*quantity over lines and applies the shipping rule.
// An empty list still pays the flat fee.
func ComputeTotals(lines []Line) Totals {
	var subtotal int64
	for _, l := range lines {
		subtotal += l.Price * int64(l.Quantity)
	}

	shipping := FlatShippingFee
	if subtotal >= FreeShippingThreshold {
		shipping = 0
	}

	return Totals{
		Subtotal:        subtotal,
		ShippingCharges: shipping,
		Total:           subtotal + shipping,
	}
}

// FromCart maps server cart lines to pricing lines. A line whose product did
// not resolve is priced at 0.
func FromCart(items []models.CartItem) []Line {
	lines := make([]Line, 0, len(items))
	for _, item := range items {
		var price int64
		if item.Product != nil {
			price = item.Product.Price
		}
		lines = append(lines, Line{Price: price, Quantity: item.Quantity})
	}
	return lines
}

// CartTotals prices a server cart.
func CartTotals(items []models.CartItem) Totals {
	return ComputeTotals(FromCart(items))
}
