package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ShippingAddress struct {
	ID     uint  `gorm:"column:address_id;primaryKey" json:"address_id"`
	UserID uint  `gorm:"not null;index" json:"user_id"`
	User   *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user,omitempty"`

	RecipientName string `gorm:"size:255;not null" json:"recipient_name"`
	Phone         string `gorm:"size:20;not null" json:"phone"`
	Province      string `gorm:"size:100;not null" json:"province"`
	District      string `gorm:"size:100;not null" json:"district"`
	Ward          string `gorm:"size:100" json:"ward"`
	StreetAddress string `gorm:"size:255;not null" json:"street_address"`
	IsDefault     bool   `gorm:"not null" json:"is_default"`

	Latitude  decimal.NullDecimal `gorm:"type:decimal(10,8)" json:"latitude"`
	Longitude decimal.NullDecimal `gorm:"type:decimal(11,8)" json:"longitude"`

	Orders []Order `gorm:"foreignKey:ShippingAddressID;references:ID" json:"orders,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GeocodeQuery is the free-form address line used for geocoding.
func (a *ShippingAddress) GeocodeQuery() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.StreetAddress, a.Ward, a.District, a.Province} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}

func (a *ShippingAddress) HasCoordinates() bool {
	return a.Latitude.Valid && a.Longitude.Valid
}
