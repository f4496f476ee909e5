package models

import "time"

const (
	RoleCustomer = "Customer"
	RoleAdmin    = "Admin"
)

type Role struct {
	ID   uint   `gorm:"column:role_id;primaryKey" json:"role_id"`
	Name string `gorm:"size:50;uniqueIndex;not null" json:"name"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
