package models

// GuestCart is the device-local cart of an unauthenticated visitor. Items keep
// insertion order and hold at most one entry per product.
type GuestCart struct {
	Items []GuestCartItem `json:"items"`
}

type GuestCartItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// GuestWishlist is the device-local wishlist; Products holds unique ids.
type GuestWishlist struct {
	Products []string `json:"products"`
}

func (c GuestCart) Find(productID string) (int, bool) {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i, true
		}
	}
	return -1, false
}

func (w GuestWishlist) Contains(productID string) bool {
	for _, id := range w.Products {
		if id == productID {
			return true
		}
	}
	return false
}
