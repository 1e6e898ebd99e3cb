package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category groups products. Products reference it through a nullable
// foreign key; deleting a category is not exposed by the API.
type Category struct {
	gorm.Model
	Name        string `gorm:"uniqueIndex;size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}

// Product is a catalogue entry. Stock is mutated only by order placement
// (decrement inside the order transaction) and administrative update.
type Product struct {
	gorm.Model
	SKU         string          `gorm:"uniqueIndex;size:100;not null" json:"sku"`
	Name        string          `gorm:"size:255;not null;index" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock       int             `gorm:"not null;default:0" json:"stock"`
	CategoryID  *uint           `gorm:"index" json:"category_id"`
	ImageURL    string          `gorm:"size:512" json:"image_url,omitempty"`

	Category *Category `json:"category,omitempty"`
}
