package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/storefront/internal/auth"
	"github.com/BruksfildServices01/storefront/internal/httperr"
	"github.com/BruksfildServices01/storefront/internal/logging"
	"github.com/BruksfildServices01/storefront/internal/middleware"
	"github.com/BruksfildServices01/storefront/internal/models"
	ucAccount "github.com/BruksfildServices01/storefront/internal/usecase/account"
)

// VerifyNoticePath is where a freshly registered browser session lands.
const VerifyNoticePath = "/verify-email"

type AuthHandler struct {
	register     *ucAccount.Register
	login        *ucAccount.Login
	verify       *ucAccount.VerifyEmail
	google       *ucAccount.GoogleSignIn
	verification *ucAccount.Verification
	tokens       *auth.Tokens
	cookie       auth.SessionCookie
}

func NewAuthHandler(
	register *ucAccount.Register,
	login *ucAccount.Login,
	verify *ucAccount.VerifyEmail,
	google *ucAccount.GoogleSignIn,
	verification *ucAccount.Verification,
	tokens *auth.Tokens,
	cookie auth.SessionCookie,
) *AuthHandler {
	return &AuthHandler{
		register:     register,
		login:        login,
		verify:       verify,
		google:       google,
		verification: verification,
		tokens:       tokens,
		cookie:       cookie,
	}
}

// --------- Requests ---------

type RegisterRequest struct {
	Name                 string `json:"name" form:"name" binding:"required,max=255"`
	Email                string `json:"email" form:"email" binding:"required,lowercase,email,max=255"`
	Password             string `json:"password" form:"password" binding:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" form:"password_confirmation" binding:"eqfield=Password"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

type GoogleRequest struct {
	Credential string `json:"credential" binding:"required"`
}

// --------- Handlers ---------

// Register accepts JSON or form posts. Browsers are redirected to the
// verification notice; API clients get the session token in the body.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bind(c, &req) {
		return
	}

	user, err := h.register.Execute(c.Request.Context(), ucAccount.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	token, ok := h.startSession(c, user)
	if !ok {
		return
	}

	if c.ContentType() != gin.MIMEJSON {
		c.Redirect(http.StatusFound, VerifyNoticePath)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":        user,
		"token":       token,
		"redirect_to": VerifyNoticePath,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bind(c, &req) {
		return
	}

	user, err := h.login.Execute(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	token, ok := h.startSession(c, user)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.cookie.Clear(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out."})
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	user, err := h.verify.Execute(c.Request.Context(), c.Query("token"))
	if err != nil {
		respondError(c, err)
		return
	}

	if !wantsJSON(c) {
		c.Redirect(http.StatusFound, "/?verified=1")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "message": "Email verified."})
}

func (h *AuthHandler) ResendVerification(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user.HasVerifiedEmail() {
		c.JSON(http.StatusOK, gin.H{"message": "Email already verified."})
		return
	}

	if err := h.verification.Send(user); err != nil {
		serverError(c, "verification_send_failed", "Failed to send the verification link.", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "A new verification link has been sent to your email address."})
}

func (h *AuthHandler) Google(c *gin.Context) {
	var req GoogleRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.google.Execute(c.Request.Context(), req.Credential)
	if err != nil {
		respondError(c, err)
		return
	}

	token, ok := h.startSession(c, user)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

// --------- helpers ---------

func (h *AuthHandler) startSession(c *gin.Context, user *models.User) (string, bool) {
	token, err := h.tokens.Issue(user)
	if err != nil {
		logging.FromContext(c.Request.Context()).Error("issue token", "user_id", user.ID, "error", err)
		httperr.Internal(c, "failed_to_generate_token", "Failed to start the session.")
		return "", false
	}
	h.cookie.Set(c, token)
	return token, true
}
