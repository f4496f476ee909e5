package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/storefront/internal/httperr"
	"github.com/BruksfildServices01/storefront/internal/middleware"
)

type MeHandler struct{}

func NewMeHandler() *MeHandler {
	return &MeHandler{}
}

// GetMe returns the authenticated user with its role.
func (h *MeHandler) GetMe(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		httperr.Unauthorized(c, "unauthenticated", "Unauthenticated.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":     user,
		"role":     user.RoleName(),
		"is_admin": user.IsAdmin(),
	})
}
