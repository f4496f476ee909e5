package account

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/BruksfildServices01/storefront/internal/audit"
	"github.com/BruksfildServices01/storefront/internal/auth"
	domain "github.com/BruksfildServices01/storefront/internal/domain/account"
	"github.com/BruksfildServices01/storefront/internal/httperr"
	"github.com/BruksfildServices01/storefront/internal/models"
)

type GoogleSignIn struct {
	repo     domain.Repository
	verifier auth.IDTokenVerifier
	audit    audit.Recorder
	now      func() time.Time
}

func NewGoogleSignIn(repo domain.Repository, verifier auth.IDTokenVerifier, audit audit.Recorder) *GoogleSignIn {
	return &GoogleSignIn{repo: repo, verifier: verifier, audit: audit, now: time.Now}
}

// Execute finds the user by Google subject, then by verified email (linking
// the account), and otherwise creates a verified customer.
func (uc *GoogleSignIn) Execute(ctx context.Context, idToken string) (*models.User, error) {
	if uc.verifier == nil {
		return nil, httperr.ErrBusiness("google_disabled")
	}

	id, err := uc.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_google_token")
	}
	if !id.EmailVerified || id.Email == "" {
		return nil, httperr.ErrBusinessf("google_email_unverified", "Your Google account email is not verified.")
	}

	now := uc.now()

	user, err := uc.repo.FindUserByGoogleSubject(ctx, id.Subject)
	if err != nil && !httperr.IsNotFound(err) {
		return nil, err
	}

	if user == nil {
		user, err = uc.repo.FindUserByEmail(ctx, domain.NormalizeEmail(id.Email))
		if err != nil && !httperr.IsNotFound(err) {
			return nil, err
		}
		if user != nil {
			user.GoogleSubject = &id.Subject
		}
	}

	if user == nil {
		return uc.create(ctx, id, now)
	}

	if !user.IsActive {
		return nil, httperr.ErrBusiness("account_disabled")
	}

	if user.EmailVerifiedAt == nil {
		user.EmailVerifiedAt = &now
	}
	user.LastLogin = &now
	if err := uc.repo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (uc *GoogleSignIn) create(ctx context.Context, id *auth.GoogleIdentity, now time.Time) (*models.User, error) {
	var roleID *uint
	var role *models.Role
	if r, err := uc.repo.FindRoleByName(ctx, models.RoleCustomer); err == nil {
		roleID = &r.ID
		role = r
	}

	// the account has no usable password until the user sets one
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(hex.EncodeToString(secret))
	if err != nil {
		return nil, err
	}

	name := id.Name
	if name == "" {
		name = id.Email
	}

	subject := id.Subject
	user := &models.User{
		Name:            name,
		Email:           domain.NormalizeEmail(id.Email),
		PasswordHash:    hash,
		RoleID:          roleID,
		IsActive:        true,
		LastLogin:       &now,
		EmailVerifiedAt: &now,
		GoogleSubject:   &subject,
	}
	if err := uc.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	user.Role = role

	uc.audit.Dispatch(audit.Event{
		UserID:   &user.ID,
		Action:   "user.registered",
		Entity:   "user",
		EntityID: &user.ID,
		Metadata: map[string]any{"provider": "google"},
	})

	return user, nil
}
