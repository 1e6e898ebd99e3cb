package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order statuses. The only modelled transition is pending → paid, driven
// by the payment webhook.
const (
	OrderStatusPending = "pending"
	OrderStatusPaid    = "paid"
)

// Order is the durable record of a checkout: a total computed once at
// creation plus immutable line items.
type Order struct {
	gorm.Model
	UserID          uint            `gorm:"not null;index" json:"user_id"`
	OrderNumber     string          `gorm:"uniqueIndex;size:64;not null" json:"order_number"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	Status          string          `gorm:"size:50;not null;default:pending" json:"status"`
	PaymentIntentID string          `gorm:"size:255" json:"payment_intent_id,omitempty"`

	Items []OrderItem `json:"items"`
}

// OrderItem snapshots one cart line at order-creation time. UnitPrice is
// captured then, never recomputed, so historical orders are decoupled from
// future price changes.
type OrderItem struct {
	gorm.Model
	OrderID   uint            `gorm:"not null;index" json:"order_id"`
	ProductID uint            `gorm:"not null;index" json:"product_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
}
