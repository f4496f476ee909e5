// Package testutil builds throwaway sqlite databases for package tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/storefront/internal/config"
	"github.com/BruksfildServices01/storefront/internal/db"
	"github.com/BruksfildServices01/storefront/internal/models"
)

const Password = "password123"

// Config returns a config pointing at a fresh in-memory sqlite database.
func Config() *config.Config {
	return &config.Config{
		AppEnv:          "test",
		AppURL:          "http://localhost:8080",
		ServerPort:      "8080",
		Timezone:        "Asia/Ho_Chi_Minh",
		DBDriver:        "sqlite",
		DBUrl:           fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		JWTSecret:       "test-secret",
		JWTTTL:          time.Hour,
		SessionCookie:   "storefront_session",
		CacheTTL:        time.Minute,
		PaymentCurrency: "VND",
		AdminEmail:      "admin@storefront.local",
	}
}

// NewDB opens, migrates and seeds roles and sizes.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	return NewDBWith(t, Config())
}

func NewDBWith(t testing.TB, cfg *config.Config) *gorm.DB {
	t.Helper()

	gdb, err := db.NewDB(cfg)
	require.NoError(t, err)
	require.NoError(t, db.Seed(context.Background(), gdb, cfg))

	t.Cleanup(func() { _ = db.Close(gdb) })
	return gdb
}

func Role(t testing.TB, gdb *gorm.DB, name string) models.Role {
	t.Helper()
	var role models.Role
	require.NoError(t, gdb.Where("name = ?", name).First(&role).Error)
	return role
}

// User creates an active user with Password. verified controls email_verified_at.
func User(t testing.TB, gdb *gorm.DB, email, role string, verified bool) models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)

	r := Role(t, gdb, role)
	u := models.User{
		Name:         "User " + email,
		Email:        email,
		PasswordHash: string(hash),
		RoleID:       &r.ID,
		IsActive:     true,
	}
	if verified {
		now := time.Now()
		u.EmailVerifiedAt = &now
	}
	require.NoError(t, gdb.Create(&u).Error)
	u.Role = &r
	return u
}

func Category(t testing.TB, gdb *gorm.DB, name, slug string) models.Category {
	t.Helper()
	c := models.Category{Name: name, Slug: slug, IsActive: true}
	require.NoError(t, gdb.Create(&c).Error)
	return c
}

func Product(t testing.TB, gdb *gorm.DB, categoryID uint, name, slug string) models.Product {
	t.Helper()
	p := models.Product{CategoryID: categoryID, Name: name, Slug: slug, IsActive: true}
	require.NoError(t, gdb.Create(&p).Error)
	return p
}

func Variant(t testing.TB, gdb *gorm.DB, productID uint, sku, price string, stock int) models.ProductVariant {
	t.Helper()
	v := models.ProductVariant{
		ProductID:     productID,
		SKU:           sku,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		IsActive:      true,
	}
	require.NoError(t, gdb.Create(&v).Error)
	return v
}

func Address(t testing.TB, gdb *gorm.DB, userID uint, isDefault bool) models.ShippingAddress {
	t.Helper()
	a := models.ShippingAddress{
		UserID:        userID,
		RecipientName: "Nguyen Van A",
		Phone:         "0901234567",
		Province:      "Ho Chi Minh",
		District:      "District 1",
		Ward:          "Ben Nghe",
		StreetAddress: "1 Le Loi",
		IsDefault:     isDefault,
	}
	require.NoError(t, gdb.Create(&a).Error)
	return a
}
