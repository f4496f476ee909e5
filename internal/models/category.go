package models

import "time"

type Category struct {
	ID       uint       `gorm:"primaryKey" json:"id"`
	ParentID *uint      `gorm:"index" json:"parent_id"`
	Children []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"`

	Name        string `gorm:"size:255;not null" json:"name"`
	Slug        string `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	IsActive    bool   `gorm:"not null" json:"is_active"`
	ImageURL    string `gorm:"size:500" json:"image_url"`

	Sizes []Size `gorm:"many2many:category_sizes;" json:"sizes,omitempty"`

	ProductsCount int64 `gorm:"-" json:"products_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
