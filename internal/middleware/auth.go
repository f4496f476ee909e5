package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/storefront/internal/auth"
	"github.com/BruksfildServices01/storefront/internal/httperr"
	"github.com/BruksfildServices01/storefront/internal/logging"
	"github.com/BruksfildServices01/storefront/internal/models"
)

const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
	ContextUser     = "user"
)

// AuthMiddleware accepts "Authorization: Bearer <jwt>" or the session cookie,
// then loads the user so role and active flag are always current.
func AuthMiddleware(db *gorm.DB, tokens *auth.Tokens, cookie auth.SessionCookie) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, code := tokenFromRequest(c, cookie)
		if raw == "" {
			httperr.Abort(c, http.StatusUnauthorized, code, "Unauthenticated.")
			return
		}

		claims, err := tokens.Parse(raw, auth.PurposeSession)
		if err != nil {
			httperr.Abort(c, http.StatusUnauthorized, "invalid_token", "Unauthenticated.")
			return
		}

		var user models.User
		if err := db.WithContext(c.Request.Context()).
			Preload("Role").
			First(&user, claims.UserID).Error; err != nil {
			httperr.Abort(c, http.StatusUnauthorized, "user_not_found", "Unauthenticated.")
			return
		}

		if !user.IsActive {
			httperr.Abort(c, http.StatusForbidden, "account_disabled", "Your account has been disabled.")
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextUserRole, user.RoleName())
		c.Set(ContextUser, &user)

		ctx := c.Request.Context()
		c.Request = c.Request.WithContext(
			logging.WithLogger(ctx, logging.FromContext(ctx).With("user_id", user.ID)),
		)

		c.Next()
	}
}

func tokenFromRequest(c *gin.Context, cookie auth.SessionCookie) (string, string) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", "invalid_authorization_header"
		}
		return strings.TrimSpace(parts[1]), ""
	}

	if v := cookie.Read(c); v != "" {
		return v, ""
	}
	return "", "missing_credentials"
}

// RequireRole must run after AuthMiddleware.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextUserRole) != role {
			httperr.Abort(c, http.StatusForbidden, "forbidden", "This action is unauthorized.")
			return
		}
		c.Next()
	}
}

// RequireVerified blocks users whose email address is not verified yet.
func RequireVerified() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil || !u.HasVerifiedEmail() {
			httperr.Abort(c, http.StatusForbidden, "email_not_verified", "Your email address is not verified.")
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}

func CurrentUserID(c *gin.Context) uint {
	return c.GetUint(ContextUserID)
}
