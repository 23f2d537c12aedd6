package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderStatus string
type PaymentStatus string
type PaymentMethod string

const (
	// Order statuses
	OrderStatusPending   OrderStatus = "pending"   // Order placed, awaiting confirmation
	OrderStatusConfirmed OrderStatus = "confirmed" // Confirmed by seller
	OrderStatusShipped   OrderStatus = "shipped"   // Out for delivery
	OrderStatusDelivered OrderStatus = "delivered" // Customer received the item

	// Payment statuses
	PaymentStatusPending PaymentStatus = "pending" // Payment not completed yet
	PaymentStatusPaid    PaymentStatus = "paid"    // Payment completed successfully

	// Payment methods
	PaymentCOD    PaymentMethod = "cod"
	PaymentOnline PaymentMethod = "online" // accepted, no gateway wired
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCOD || m == PaymentOnline
}

// Order is an immutable snapshot of a cart and a delivery address.
type Order struct {
	ID              string        `gorm:"primaryKey" json:"id"`
	OrderRef        string        `gorm:"uniqueIndex" json:"orderRef"`
	UserID          string        `gorm:"index;not null" json:"userId"`
	Items           []OrderItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	ShippingAddress AddressFields `gorm:"embedded;embeddedPrefix:ship_" json:"shippingAddress"`
	Subtotal        int64         `json:"subtotal"`
	ShippingCharges int64         `json:"shippingCharges"`
	Total           int64         `json:"total"`
	PaymentMethod   PaymentMethod `gorm:"type:VARCHAR(20)" json:"paymentMethod"`
	Status          OrderStatus   `gorm:"type:VARCHAR(20);default:'pending'" json:"status"`
	PaymentStatus   PaymentStatus `gorm:"type:VARCHAR(20);default:'pending'" json:"paymentStatus"`
	CreatedAt       time.Time     `json:"createdAt"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

type OrderItem struct {
	ID        uint   `gorm:"primaryKey" json:"-"`
	OrderID   string `gorm:"index" json:"-"`
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	Image     string `json:"image,omitempty"`
}

// OrderRequest is the checkout payload. The server re-prices the cart and
// rejects the request when the totals sent here no longer match.
type OrderRequest struct {
	Items           []OrderItem   `json:"items"`
	AddressID       string        `json:"addressId"`
	ShippingAddress AddressFields `json:"shippingAddress"`
	Subtotal        int64         `json:"subtotal"`
	ShippingCharges int64         `json:"shippingCharges"`
	Total           int64         `json:"total"`
	PaymentMethod   PaymentMethod `json:"paymentMethod"`
}
