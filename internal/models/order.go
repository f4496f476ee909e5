package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID     uint  `gorm:"column:order_id;primaryKey" json:"order_id"`
	UserID uint  `gorm:"not null;index" json:"user_id"`
	User   *User `json:"user,omitempty"`

	ShippingAddressID uint             `gorm:"not null;index" json:"shipping_address_id"`
	ShippingAddress   *ShippingAddress `gorm:"foreignKey:ShippingAddressID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"shipping_address,omitempty"`

	Status           string          `gorm:"size:20;not null;index" json:"status"`
	PaymentStatus    string          `gorm:"size:20;not null" json:"payment_status"`
	PaymentReference string          `gorm:"size:100;index" json:"payment_reference"`
	TotalAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	Note             string          `gorm:"size:500" json:"note"`

	Details []OrderDetail `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE;" json:"details,omitempty"`

	CancelledAt *time.Time `json:"cancelled_at"`
	PaidAt      *time.Time `json:"paid_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
