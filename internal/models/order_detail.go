package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderDetail struct {
	ID      uint `gorm:"column:order_detail_id;primaryKey" json:"order_detail_id"`
	OrderID uint `gorm:"not null;index" json:"order_id"`

	VariantID uint            `gorm:"not null;index" json:"variant_id"`
	Variant   *ProductVariant `gorm:"foreignKey:VariantID;references:ID" json:"variant,omitempty"`

	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
