package db

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/storefront/internal/config"
	"github.com/BruksfildServices01/storefront/internal/models"
)

var baselineSizes = []models.Size{
	{Name: "S", Description: "Small"},
	{Name: "M", Description: "Medium"},
	{Name: "L", Description: "Large"},
	{Name: "XL", Description: "Extra large"},
}

// Seed inserts roles, baseline sizes and, when ADMIN_PASSWORD is set, an
// admin account. Running it twice is a no-op.
func Seed(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, name := range []string{models.RoleCustomer, models.RoleAdmin} {
			role := models.Role{Name: name}
			if err := tx.Where("name = ?", name).FirstOrCreate(&role).Error; err != nil {
				return fmt.Errorf("seed role %s: %w", name, err)
			}
		}

		for _, s := range baselineSizes {
			size := s
			if err := tx.Where("name = ?", size.Name).FirstOrCreate(&size).Error; err != nil {
				return fmt.Errorf("seed size %s: %w", size.Name, err)
			}
		}

		if cfg.AdminPassword == "" {
			slog.Info("ADMIN_PASSWORD not set, skipping admin account")
			return nil
		}
		return seedAdmin(tx, cfg)
	})
}

func seedAdmin(tx *gorm.DB, cfg *config.Config) error {
	var role models.Role
	if err := tx.Where("name = ?", models.RoleAdmin).First(&role).Error; err != nil {
		return fmt.Errorf("load admin role: %w", err)
	}

	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))

	var count int64
	if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	now := time.Now()
	admin := models.User{
		Name:            "Administrator",
		Email:           email,
		PasswordHash:    string(hash),
		RoleID:          &role.ID,
		IsActive:        true,
		EmailVerifiedAt: &now,
	}
	if err := tx.Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	slog.Info("admin account created", "email", email)
	return nil
}
