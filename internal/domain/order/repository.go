package order

import (
	"context"

	"github.com/BruksfildServices01/storefront/internal/models"
)

type Repository interface {
	// -------- Transactions --------
	WithinTx(
		ctx context.Context,
		fn func(repo Repository) error,
	) error

	// -------- Address --------
	GetAddressForUser(
		ctx context.Context,
		addressID uint,
		userID uint,
	) (*models.ShippingAddress, error)

	// -------- Stock --------
	GetOrderableVariant(
		ctx context.Context,
		variantID uint,
	) (*models.ProductVariant, error)

	// DecrementStock reports false when fewer than quantity units are left.
	DecrementStock(
		ctx context.Context,
		variantID uint,
		quantity int,
	) (bool, error)

	IncrementStock(
		ctx context.Context,
		variantID uint,
		quantity int,
	) error

	// -------- Order --------
	CreateOrder(
		ctx context.Context,
		o *models.Order,
	) error

	GetOrder(
		ctx context.Context,
		orderID uint,
	) (*models.Order, error)

	GetOrderForUser(
		ctx context.Context,
		orderID uint,
		userID uint,
	) (*models.Order, error)

	// GetOrderForUpdate must run inside WithinTx; the row stays locked
	// until the transaction ends.
	GetOrderForUpdate(
		ctx context.Context,
		orderID uint,
	) (*models.Order, error)

	UpdateOrder(
		ctx context.Context,
		o *models.Order,
	) error
}
