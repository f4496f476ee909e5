package models

import (
	"time"

	"gorm.io/datatypes"
)

type AuditLog struct {
	ID uint `gorm:"primaryKey" json:"id"`

	UserID *uint  `gorm:"index" json:"user_id"`
	Action string `gorm:"size:50;not null;index" json:"action"`

	Entity   string         `gorm:"size:50;index" json:"entity"`
	EntityID *uint          `json:"entity_id"`
	Metadata datatypes.JSON `json:"metadata"`

	CreatedAt time.Time `json:"created_at"`
}
