package account_test

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/storefront/internal/audit"
	"github.com/BruksfildServices01/storefront/internal/auth"
	"github.com/BruksfildServices01/storefront/internal/httperr"
	"github.com/BruksfildServices01/storefront/internal/infra/repository"
	"github.com/BruksfildServices01/storefront/internal/mail"
	"github.com/BruksfildServices01/storefront/internal/models"
	"github.com/BruksfildServices01/storefront/internal/testutil"
	ucAccount "github.com/BruksfildServices01/storefront/internal/usecase/account"
)

type mailSpy struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (m *mailSpy) Dispatch(msg mail.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
}

type nopAudit struct{}

func (nopAudit) Dispatch(audit.Event) {}

type fakeGoogle struct {
	id  *auth.GoogleIdentity
	err error
}

func (f fakeGoogle) Verify(context.Context, string) (*auth.GoogleIdentity, error) {
	return f.id, f.err
}

type env struct {
	db     *gorm.DB
	repo   *repository.AccountGormRepository
	tokens *auth.Tokens
	mail   *mailSpy
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return &env{
		db:     testutil.NewDB(t),
		tokens: auth.NewTokens("secret", time.Hour),
		mail:   &mailSpy{},
	}
}

func (e *env) register(t *testing.T) *ucAccount.Register {
	t.Helper()
	e.repo = repository.NewAccountGormRepository(e.db)
	verification := ucAccount.NewVerification(e.tokens, e.mail, "https://shop.example/")
	return ucAccount.NewRegister(e.repo, verification, nopAudit{}, nil)
}

func tokenFromLink(t *testing.T, body string) string {
	t.Helper()
	i := strings.Index(body, "https://shop.example/api/auth/verify-email?token=")
	require.GreaterOrEqual(t, i, 0)
	link := strings.Fields(body[i:])[0]
	u, err := url.Parse(link)
	require.NoError(t, err)
	return u.Query().Get("token")
}

func TestRegisterCreatesCustomerAndSendsVerification(t *testing.T) {
	e := newEnv(t)

	user, err := e.register(t).Execute(context.Background(), ucAccount.RegisterInput{
		Name:     "Ana",
		Email:    "  Ana@Example.com ",
		Password: "password123",
	})
	require.NoError(t, err)

	assert.Equal(t, "ana@example.com", user.Email)
	assert.True(t, user.IsActive)
	assert.NotNil(t, user.LastLogin)
	assert.Nil(t, user.EmailVerifiedAt)
	assert.Equal(t, models.RoleCustomer, user.RoleName())
	assert.NotEqual(t, "password123", user.PasswordHash)
	assert.True(t, auth.CheckPassword(user.PasswordHash, "password123"))

	require.Len(t, e.mail.sent, 1)
	assert.Equal(t, "ana@example.com", e.mail.sent[0].To)

	verify := ucAccount.NewVerifyEmail(e.repo, e.tokens, nopAudit{})
	verified, err := verify.Execute(context.Background(), tokenFromLink(t, e.mail.sent[0].Body))
	require.NoError(t, err)
	assert.NotNil(t, verified.EmailVerifiedAt)

	_, err = verify.Execute(context.Background(), tokenFromLink(t, e.mail.sent[0].Body))
	assert.NoError(t, err)

	_, err = verify.Execute(context.Background(), "garbage")
	assert.True(t, httperr.IsBusiness(err, "invalid_verification_link"))
}

func TestRegisterWithoutCustomerRoleLeavesRoleNull(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.db.Where("name = ?", models.RoleCustomer).Delete(&models.Role{}).Error)

	user, err := e.register(t).Execute(context.Background(), ucAccount.RegisterInput{
		Name: "Ana", Email: "ana@example.com", Password: "password123",
	})
	require.NoError(t, err)
	assert.Nil(t, user.RoleID)
	assert.Equal(t, "", user.RoleName())
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	e := newEnv(t)
	uc := e.register(t)

	_, err := uc.Execute(context.Background(), ucAccount.RegisterInput{Name: "A", Email: "dup@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), ucAccount.RegisterInput{Name: "B", Email: "DUP@example.com", Password: "password123"})
	assert.True(t, httperr.IsBusiness(err, "email_taken"))

	var count int64
	require.NoError(t, e.db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRegisterChecksEmailDomain(t *testing.T) {
	e := newEnv(t)
	e.repo = repository.NewAccountGormRepository(e.db)
	uc := ucAccount.NewRegister(e.repo, ucAccount.NewVerification(e.tokens, e.mail, "https://shop.example"), nopAudit{},
		func(context.Context, string) bool { return false })

	_, err := uc.Execute(context.Background(), ucAccount.RegisterInput{Name: "A", Email: "a@nowhere.invalid", Password: "password123"})
	assert.True(t, httperr.IsBusiness(err, "invalid_email_domain"))
}

func TestLogin(t *testing.T) {
	e := newEnv(t)
	repo := repository.NewAccountGormRepository(e.db)
	u := testutil.User(t, e.db, "ana@example.com", models.RoleCustomer, true)

	login := ucAccount.NewLogin(repo)

	got, err := login.Execute(context.Background(), "ANA@example.com", testutil.Password)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.NotNil(t, got.LastLogin)

	_, err = login.Execute(context.Background(), "ana@example.com", "wrong-password")
	assert.True(t, httperr.IsBusiness(err, "invalid_credentials"))

	_, err = login.Execute(context.Background(), "nobody@example.com", testutil.Password)
	assert.True(t, httperr.IsBusiness(err, "invalid_credentials"))

	require.NoError(t, e.db.Model(&models.User{}).Where("id = ?", u.ID).Update("is_active", false).Error)
	_, err = login.Execute(context.Background(), "ana@example.com", testutil.Password)
	assert.True(t, httperr.IsBusiness(err, "account_disabled"))
}

func TestGoogleSignIn(t *testing.T) {
	e := newEnv(t)
	repo := repository.NewAccountGormRepository(e.db)

	id := &auth.GoogleIdentity{Subject: "g-123", Email: "Gina@Example.com", EmailVerified: true, Name: "Gina"}
	uc := ucAccount.NewGoogleSignIn(repo, fakeGoogle{id: id}, nopAudit{})

	created, err := uc.Execute(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Equal(t, "gina@example.com", created.Email)
	assert.NotNil(t, created.EmailVerifiedAt)
	assert.Equal(t, models.RoleCustomer, created.RoleName())

	again, err := uc.Execute(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	existing := testutil.User(t, e.db, "linked@example.com", models.RoleCustomer, false)
	link := ucAccount.NewGoogleSignIn(repo, fakeGoogle{id: &auth.GoogleIdentity{
		Subject: "g-456", Email: "linked@example.com", EmailVerified: true,
	}}, nopAudit{})
	linked, err := link.Execute(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, linked.ID)
	require.NotNil(t, linked.GoogleSubject)
	assert.Equal(t, "g-456", *linked.GoogleSubject)
	assert.NotNil(t, linked.EmailVerifiedAt)

	bad := ucAccount.NewGoogleSignIn(repo, fakeGoogle{err: errors.New("bad signature")}, nopAudit{})
	_, err = bad.Execute(context.Background(), "id-token")
	assert.True(t, httperr.IsBusiness(err, "invalid_google_token"))

	off := ucAccount.NewGoogleSignIn(repo, nil, nopAudit{})
	_, err = off.Execute(context.Background(), "id-token")
	assert.True(t, httperr.IsBusiness(err, "google_disabled"))
}
