package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/storefront/internal/domain/account"
	"github.com/BruksfildServices01/storefront/internal/models"
)

type AccountGormRepository struct {
	db *gorm.DB
}

func NewAccountGormRepository(db *gorm.DB) *AccountGormRepository {
	return &AccountGormRepository{db: db}
}

func (r *AccountGormRepository) FindRoleByName(
	ctx context.Context,
	name string,
) (*models.Role, error) {

	var role models.Role
	if err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *AccountGormRepository) EmailTaken(
	ctx context.Context,
	email string,
) (bool, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *AccountGormRepository) CreateUser(
	ctx context.Context,
	u *models.User,
) error {
	return r.db.WithContext(ctx).Omit("Role", "Wishlist").Create(u).Error
}

func (r *AccountGormRepository) GetUser(
	ctx context.Context,
	id uint,
) (*models.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *AccountGormRepository) FindUserByEmail(
	ctx context.Context,
	email string,
) (*models.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *AccountGormRepository) FindUserByGoogleSubject(
	ctx context.Context,
	subject string,
) (*models.User, error) {
	return r.findOne(ctx, "google_subject = ?", subject)
}

func (r *AccountGormRepository) UpdateUser(
	ctx context.Context,
	u *models.User,
) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(u).Error
}

func (r *AccountGormRepository) findOne(ctx context.Context, cond string, arg any) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).
		Preload("Role").
		Where(cond, arg).
		First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// Compile-time check
var _ domain.Repository = (*AccountGormRepository)(nil)
