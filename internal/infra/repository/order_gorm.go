package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/storefront/internal/domain/order"
	"github.com/BruksfildServices01/storefront/internal/models"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

// --------------------------------------------------
// Transactions
// --------------------------------------------------

func (r *OrderGormRepository) WithinTx(
	ctx context.Context,
	fn func(repo domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&OrderGormRepository{db: tx})
	})
}

// --------------------------------------------------
// Address
// --------------------------------------------------

func (r *OrderGormRepository) GetAddressForUser(
	ctx context.Context,
	addressID uint,
	userID uint,
) (*models.ShippingAddress, error) {

	var addr models.ShippingAddress
	if err := r.db.WithContext(ctx).
		Where("address_id = ? AND user_id = ?", addressID, userID).
		First(&addr).Error; err != nil {
		return nil, err
	}
	return &addr, nil
}

// --------------------------------------------------
// Stock
// --------------------------------------------------

func (r *OrderGormRepository) GetOrderableVariant(
	ctx context.Context,
	variantID uint,
) (*models.ProductVariant, error) {

	var v models.ProductVariant
	if err := r.db.WithContext(ctx).
		Preload("Product").
		Joins("JOIN products ON products.product_id = product_variants.product_id AND products.deleted_at IS NULL").
		Where("product_variants.variant_id = ?", variantID).
		Where("product_variants.is_active = ? AND products.is_active = ?", true, true).
		First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *OrderGormRepository) DecrementStock(
	ctx context.Context,
	variantID uint,
	quantity int,
) (bool, error) {

	res := r.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Where("variant_id = ? AND stock_quantity >= ?", variantID, quantity).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *OrderGormRepository) IncrementStock(
	ctx context.Context,
	variantID uint,
	quantity int,
) error {

	// soft-deleted variants are restocked too
	return r.db.WithContext(ctx).
		Unscoped().
		Model(&models.ProductVariant{}).
		Where("variant_id = ?", variantID).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", quantity)).Error
}

// --------------------------------------------------
// Order
// --------------------------------------------------

func (r *OrderGormRepository) CreateOrder(
	ctx context.Context,
	o *models.Order,
) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *OrderGormRepository) GetOrder(
	ctx context.Context,
	orderID uint,
) (*models.Order, error) {

	var o models.Order
	if err := r.withDetails(r.db.WithContext(ctx)).
		Where("order_id = ?", orderID).
		First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderGormRepository) GetOrderForUser(
	ctx context.Context,
	orderID uint,
	userID uint,
) (*models.Order, error) {

	var o models.Order
	if err := r.withDetails(r.db.WithContext(ctx)).
		Where("order_id = ? AND user_id = ?", orderID, userID).
		First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// GetOrderForUpdate locks the order row until the transaction ends, so
// status and payment changes to the same order are serialised.
func (r *OrderGormRepository) GetOrderForUpdate(
	ctx context.Context,
	orderID uint,
) (*models.Order, error) {

	var o models.Order
	if err := r.withDetails(r.db.WithContext(ctx)).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_id = ?", orderID).
		First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderGormRepository) UpdateOrder(
	ctx context.Context,
	o *models.Order,
) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(o).Error
}

func (r *OrderGormRepository) withDetails(q *gorm.DB) *gorm.DB {
	return WithOrderRelations(q)
}

// WithOrderRelations preloads what an order response shows. Variants and
// products are loaded unscoped so soft-deleted catalog rows still resolve.
func WithOrderRelations(q *gorm.DB) *gorm.DB {
	return q.
		Preload("User").
		Preload("ShippingAddress").
		Preload("Details", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_detail_id ASC")
		}).
		Preload("Details.Variant", func(db *gorm.DB) *gorm.DB {
			return db.Unscoped()
		}).
		Preload("Details.Variant.Product", func(db *gorm.DB) *gorm.DB {
			return db.Unscoped()
		}).
		Preload("Details.Variant.Size")
}

// Compile-time check
var _ domain.Repository = (*OrderGormRepository)(nil)
