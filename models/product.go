package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product prices are in the smallest currency unit. Optional fields are empty
// strings or nil; a product that fails to resolve prices as 0.
type Product struct {
	ID            string         `gorm:"primaryKey" json:"id"`
	Name          string         `gorm:"not null" json:"name"`
	Description   string         `json:"description,omitempty"`
	Category      string         `gorm:"index" json:"category,omitempty"`
	Price         int64          `gorm:"not null" json:"price"`
	OriginalPrice *int64         `json:"originalPrice,omitempty"`
	Images        []string       `gorm:"serializer:json" json:"images"`
	Fabric        string         `json:"fabric,omitempty"`
	Color         string         `json:"color,omitempty"`
	Occasion      string         `json:"occasion,omitempty"`
	IsNew         bool           `gorm:"index" json:"isNew"`
	InStock       bool           `json:"inStock"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// FirstImage returns the lead image or "" when the product has none.
func (p *Product) FirstImage() string {
	if p == nil || len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
