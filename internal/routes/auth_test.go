package routes_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/storefront/internal/models"
	"github.com/BruksfildServices01/storefront/internal/testutil"
)

func registerBody(email string) map[string]any {
	return map[string]any{
		"name":                  "Tran Thi B",
		"email":                 email,
		"password":              "secret-pass",
		"password_confirmation": "secret-pass",
	}
}

func TestRegisterJSONReturnsSession(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, "/api/auth/register", "", registerBody("new@example.com"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decode(t, w)
	assert.NotEmpty(t, body["token"])
	assert.Equal(t, "/verify-email", body["redirect_to"])
	assert.Contains(t, w.Header().Get("Set-Cookie"), e.cfg.SessionCookie+"=")

	var u models.User
	require.NoError(t, e.db.Preload("Role").Where("email = ?", "new@example.com").First(&u).Error)
	assert.True(t, u.IsActive)
	assert.NotNil(t, u.LastLogin)
	assert.Nil(t, u.EmailVerifiedAt)
	assert.Equal(t, models.RoleCustomer, u.RoleName())
	assert.NotEqual(t, "secret-pass", u.PasswordHash)

	assert.Equal(t, []string{"Verify Email Address"}, e.mail.subjects())
}

func TestRegisterFormRedirectsToVerificationNotice(t *testing.T) {
	e := newEnv(t)

	w := e.form("/api/auth/register", url.Values{
		"name":                  {"Le Van C"},
		"email":                 {"form@example.com"},
		"password":              {"secret-pass"},
		"password_confirmation": {"secret-pass"},
	})

	assert.Equal(t, http.StatusFound, w.Code, w.Body.String())
	assert.Equal(t, "/verify-email", w.Header().Get("Location"))
	assert.NotEmpty(t, w.Header().Get("Set-Cookie"))
}

func TestRegisterValidation(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, "/api/auth/register", "", map[string]any{
		"name":                  "",
		"email":                 "Upper@Example.com",
		"password":              "short",
		"password_confirmation": "different",
	})

	errs := fieldErrors(t, w)
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")
	assert.NotEmpty(t, decode(t, w)["message"])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	e := newEnv(t)
	testutil.User(t, e.db, "taken@example.com", models.RoleCustomer, true)

	w := e.do(http.MethodPost, "/api/auth/register", "", registerBody("taken@example.com"))

	errs := fieldErrors(t, w)
	assert.Equal(t, []any{"The email has already been taken."}, errs["email"])
}

func TestLogin(t *testing.T) {
	e := newEnv(t)
	u := testutil.User(t, e.db, "buyer@example.com", models.RoleCustomer, true)

	w := e.do(http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "buyer@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_credentials", decode(t, w)["error_code"])

	w = e.do(http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "buyer@example.com", "password": testutil.Password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, decode(t, w)["token"])

	require.NoError(t, e.db.Model(&u).Update("is_active", false).Error)
	w = e.do(http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "buyer@example.com", "password": testutil.Password,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "account_disabled", decode(t, w)["error_code"])
}

func TestSessionCookieAuthenticates(t *testing.T) {
	e := newEnv(t)
	testutil.User(t, e.db, "buyer@example.com", models.RoleCustomer, true)

	login := e.do(http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "buyer@example.com", "password": testutil.Password,
	})
	require.Equal(t, http.StatusOK, login.Code)

	req, _ := http.NewRequest(http.MethodGet, "/api/me", nil)
	for _, c := range login.Result().Cookies() {
		req.AddCookie(c)
	}
	w := recordRequest(e, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, models.RoleCustomer, body["role"])
	assert.Equal(t, false, body["is_admin"])
	assert.Equal(t, "buyer@example.com", body["user"].(map[string]any)["email"])
}

func TestMeRequiresAuthentication(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(http.MethodGet, "/api/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_token", decode(t, w)["error_code"])
}

func TestVerifyEmail(t *testing.T) {
	e := newEnv(t)
	u := testutil.User(t, e.db, "buyer@example.com", models.RoleCustomer, false)

	link, err := e.tokens.IssueVerification(&u)
	require.NoError(t, err)

	w := e.do(http.MethodGet, "/api/auth/verify-email?token="+url.QueryEscape(link), "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var reloaded models.User
	require.NoError(t, e.db.First(&reloaded, u.ID).Error)
	assert.NotNil(t, reloaded.EmailVerifiedAt)

	// a session token is not a verification link
	w = e.do(http.MethodGet, "/api/auth/verify-email?token="+e.token(u), "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "invalid_verification_link", decode(t, w)["error_code"])
}

func TestResendVerification(t *testing.T) {
	e := newEnv(t)
	_, tok := e.customer("buyer@example.com", false)

	w := e.do(http.MethodPost, "/api/auth/verify-email/resend", tok, nil)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, []string{"Verify Email Address"}, e.mail.subjects())
}

func TestGoogleSignInDisabled(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, "/api/auth/google", "", map[string]any{"credential": "id-token"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "google_disabled", decode(t, w)["error_code"])
}

func TestLogoutClearsCookie(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, "/api/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")
}
