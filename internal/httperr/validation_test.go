package httperr_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/storefront/internal/httperr"
	"github.com/BruksfildServices01/storefront/internal/validators"
)

type registerForm struct {
	Name                 string `json:"name" binding:"required,max=255"`
	Email                string `json:"email" binding:"required,email"`
	Password             string `json:"password" binding:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" binding:"eqfield=Password"`
}

func bindAndRespond(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validators.Register()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var form registerForm
	err := c.ShouldBindJSON(&form)
	require.Error(t, err)
	httperr.Validation(c, err)
	return w
}

func TestValidationFieldErrors(t *testing.T) {
	w := bindAndRespond(t, `{"email":"nope","password":"short","password_confirmation":"other"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp httperr.ValidationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, []string{"The name field is required."}, resp.Errors["name"])
	assert.Equal(t, []string{"The email field must be a valid email address."}, resp.Errors["email"])
	assert.Contains(t, resp.Errors["password"], "The password field must be at least 8 characters.")
	assert.Contains(t, resp.Errors["password"], "The password field confirmation does not match.")
	assert.NotEmpty(t, resp.Message)
}

func TestValidationMalformedBody(t *testing.T) {
	w := bindAndRespond(t, `{"name":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_request")
}

func TestBusinessErrors(t *testing.T) {
	err := errors.Join(errors.New("ctx"), httperr.ErrBusiness("insufficient_stock"))

	assert.True(t, httperr.IsBusiness(err, "insufficient_stock"))
	assert.False(t, httperr.IsBusiness(err, "order_not_found"))

	code, ok := httperr.BusinessCode(err)
	assert.True(t, ok)
	assert.Equal(t, "insufficient_stock", code)
}
