package account

import (
	"context"
	"time"

	"github.com/BruksfildServices01/storefront/internal/audit"
	"github.com/BruksfildServices01/storefront/internal/auth"
	domain "github.com/BruksfildServices01/storefront/internal/domain/account"
	"github.com/BruksfildServices01/storefront/internal/httperr"
	"github.com/BruksfildServices01/storefront/internal/models"
)

type VerifyEmail struct {
	repo   domain.Repository
	tokens *auth.Tokens
	audit  audit.Recorder
	now    func() time.Time
}

func NewVerifyEmail(repo domain.Repository, tokens *auth.Tokens, audit audit.Recorder) *VerifyEmail {
	return &VerifyEmail{repo: repo, tokens: tokens, audit: audit, now: time.Now}
}

// Execute marks the address verified. Verifying twice is not an error.
func (uc *VerifyEmail) Execute(ctx context.Context, token string) (*models.User, error) {
	claims, err := uc.tokens.Parse(token, auth.PurposeVerifyEmail)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_verification_link")
	}

	user, err := uc.repo.GetUser(ctx, claims.UserID)
	if err != nil {
		if httperr.IsNotFound(err) {
			return nil, httperr.ErrBusiness("invalid_verification_link")
		}
		return nil, err
	}

	// the link is bound to the address it was sent to
	if user.Email != claims.Email {
		return nil, httperr.ErrBusiness("invalid_verification_link")
	}

	if user.HasVerifiedEmail() {
		return user, nil
	}

	now := uc.now()
	user.EmailVerifiedAt = &now
	if err := uc.repo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &user.ID,
		Action:   "user.email_verified",
		Entity:   "user",
		EntityID: &user.ID,
	})

	return user, nil
}
