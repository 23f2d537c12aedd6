package models

import "time"

type WishlistItem struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    string    `gorm:"uniqueIndex:idx_user_product;not null" json:"-"`
	ProductID string    `gorm:"uniqueIndex:idx_user_product;not null" json:"productId"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
