package account

import (
	"context"

	"github.com/BruksfildServices01/storefront/internal/models"
)

type Repository interface {
	FindRoleByName(ctx context.Context, name string) (*models.Role, error)

	EmailTaken(ctx context.Context, email string) (bool, error)

	CreateUser(ctx context.Context, u *models.User) error

	GetUser(ctx context.Context, id uint) (*models.User, error)

	FindUserByEmail(ctx context.Context, email string) (*models.User, error)

	FindUserByGoogleSubject(ctx context.Context, subject string) (*models.User, error)

	UpdateUser(ctx context.Context, u *models.User) error
}
