package models

import "time"

type User struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name         string `gorm:"size:255;not null" json:"name"`
	Email        string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`

	RoleID *uint `json:"role_id"`
	Role   *Role `gorm:"foreignKey:RoleID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"role,omitempty"`

	IsActive        bool       `gorm:"not null" json:"is_active"`
	LastLogin       *time.Time `json:"last_login"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`

	// Subject of a linked Google account.
	GoogleSubject *string `gorm:"size:255;uniqueIndex" json:"-"`

	Wishlist []Product `gorm:"many2many:wishlists;" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) RoleName() string {
	if u.Role == nil {
		return ""
	}
	return u.Role.Name
}

func (u *User) IsAdmin() bool {
	return u.RoleName() == RoleAdmin
}

func (u *User) HasVerifiedEmail() bool {
	return u.EmailVerifiedAt != nil
}
