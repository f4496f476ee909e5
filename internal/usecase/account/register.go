package account

import (
	"context"
	"time"

	"github.com/BruksfildServices01/storefront/internal/audit"
	"github.com/BruksfildServices01/storefront/internal/auth"
	domain "github.com/BruksfildServices01/storefront/internal/domain/account"
	"github.com/BruksfildServices01/storefront/internal/httperr"
	"github.com/BruksfildServices01/storefront/internal/logging"
	"github.com/BruksfildServices01/storefront/internal/models"
)

// ======================================================
// INPUT
// ======================================================

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// EmailChecker rejects addresses whose domain cannot receive mail.
type EmailChecker func(ctx context.Context, email string) bool

// ======================================================
// USE CASE
// ======================================================

type Register struct {
	repo         domain.Repository
	verification *Verification
	audit        audit.Recorder
	checkDomain  EmailChecker
	now          func() time.Time
}

func NewRegister(
	repo domain.Repository,
	verification *Verification,
	audit audit.Recorder,
	checkDomain EmailChecker,
) *Register {
	return &Register{
		repo:         repo,
		verification: verification,
		audit:        audit,
		checkDomain:  checkDomain,
		now:          time.Now,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *Register) Execute(
	ctx context.Context,
	in RegisterInput,
) (*models.User, error) {

	email := domain.NormalizeEmail(in.Email)

	if uc.checkDomain != nil && !uc.checkDomain(ctx, email) {
		return nil, httperr.ErrBusinessf("invalid_email_domain", "The email domain does not accept mail.")
	}

	taken, err := uc.repo.EmailTaken(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, httperr.ErrBusinessf("email_taken", "The email has already been taken.")
	}

	// --------------------------------------------------
	// Customer role; a missing role leaves role_id null
	// --------------------------------------------------
	var roleID *uint
	var role *models.Role
	if r, err := uc.repo.FindRoleByName(ctx, models.RoleCustomer); err == nil {
		roleID = &r.ID
		role = r
	} else if !httperr.IsNotFound(err) {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	user := &models.User{
		Name:         in.Name,
		Email:        email,
		PasswordHash: hash,
		RoleID:       roleID,
		IsActive:     true,
		LastLogin:    &now,
	}

	if err := uc.repo.CreateUser(ctx, user); err != nil {
		if httperr.IsUniqueViolation(err) {
			return nil, httperr.ErrBusinessf("email_taken", "The email has already been taken.")
		}
		return nil, err
	}
	user.Role = role

	// Registered event: verification mail
	if err := uc.verification.Send(user); err != nil {
		logging.FromContext(ctx).Error("verification mail not queued", "user_id", user.ID, "error", err)
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &user.ID,
		Action:   "user.registered",
		Entity:   "user",
		EntityID: &user.ID,
	})

	return user, nil
}
