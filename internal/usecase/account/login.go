package account

import (
	"context"
	"time"

	"github.com/BruksfildServices01/storefront/internal/auth"
	domain "github.com/BruksfildServices01/storefront/internal/domain/account"
	"github.com/BruksfildServices01/storefront/internal/httperr"
	"github.com/BruksfildServices01/storefront/internal/models"
)

type Login struct {
	repo domain.Repository
	now  func() time.Time
}

func NewLogin(repo domain.Repository) *Login {
	return &Login{repo: repo, now: time.Now}
}

func (uc *Login) Execute(
	ctx context.Context,
	email string,
	password string,
) (*models.User, error) {

	user, err := uc.repo.FindUserByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if httperr.IsNotFound(err) {
			return nil, httperr.ErrBusiness("invalid_credentials")
		}
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, httperr.ErrBusiness("invalid_credentials")
	}

	if !user.IsActive {
		return nil, httperr.ErrBusiness("account_disabled")
	}

	return uc.touch(ctx, user)
}

func (uc *Login) touch(ctx context.Context, user *models.User) (*models.User, error) {
	now := uc.now()
	user.LastLogin = &now
	if err := uc.repo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
