package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductVariant struct {
	ID        uint     `gorm:"column:variant_id;primaryKey" json:"variant_id"`
	ProductID uint     `gorm:"not null;index" json:"product_id"`
	Product   *Product `gorm:"foreignKey:ProductID;references:ID" json:"product,omitempty"`

	SizeID *uint `gorm:"index" json:"size_id"`
	Size   *Size `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"size,omitempty"`

	SKU           string          `gorm:"column:sku;size:64;uniqueIndex;not null" json:"sku"`
	Color         string          `gorm:"size:50" json:"color"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	StockQuantity int             `gorm:"not null" json:"stock_quantity"`
	ImageURL      string          `gorm:"size:500" json:"image_url"`
	IsActive      bool            `gorm:"not null" json:"is_active"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
