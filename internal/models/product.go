package models

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID         uint      `gorm:"column:product_id;primaryKey" json:"product_id"`
	CategoryID uint      `gorm:"not null;index" json:"category_id"`
	Category   *Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category,omitempty"`

	Name        string `gorm:"size:255;not null" json:"name"`
	Slug        string `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	IsActive    bool   `gorm:"not null" json:"is_active"`
	ImageURL    string `gorm:"size:500" json:"image_url"`

	Variants []ProductVariant `gorm:"foreignKey:ProductID;references:ID" json:"variants,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
