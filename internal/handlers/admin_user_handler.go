package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/storefront/internal/audit"
	"github.com/BruksfildServices01/storefront/internal/httperr"
	"github.com/BruksfildServices01/storefront/internal/httpresp"
	"github.com/BruksfildServices01/storefront/internal/middleware"
	"github.com/BruksfildServices01/storefront/internal/models"
	"github.com/BruksfildServices01/storefront/internal/pagination"
)

type AdminUserHandler struct {
	db    *gorm.DB
	audit audit.Recorder
}

func NewAdminUserHandler(db *gorm.DB, rec audit.Recorder) *AdminUserHandler {
	return &AdminUserHandler{db: db, audit: rec}
}

var userSpec = pagination.Spec{
	Sortable: map[string]string{
		"name":       "users.name",
		"email":      "users.email",
		"is_active":  "users.is_active",
		"last_login": "users.last_login",
		"created_at": "users.created_at",
	},
	Searchable:  []string{"users.name", "users.email"},
	DefaultSort: "name",
	TieBreaker:  "users.id",
}

type UserActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// List filters by ?role=<name> and ?is_active.
func (h *AdminUserHandler) List(c *gin.Context) {
	q := h.db.Model(&models.User{})
	if role := c.Query("role"); role != "" {
		q = q.Joins("JOIN roles ON roles.role_id = users.role_id").Where("roles.name = ?", role)
	}
	if active, ok := boolQuery(c, "is_active"); ok {
		q = q.Where("users.is_active = ?", active)
	}

	p := pagination.Parse(c, userSpec)
	page, err := pagination.Paginate[models.User](c.Request.Context(), q, userSpec, p,
		pagination.Preload("Role"),
	)
	if err != nil {
		serverError(c, "user_list_failed", "Failed to load users.", err)
		return
	}
	httpresp.OK(c, page)
}

// SetActive switches a user on or off. Admins cannot lock themselves out.
func (h *AdminUserHandler) SetActive(c *gin.Context) {
	id, ok := idParam(c, "id", "user_not_found")
	if !ok {
		return
	}

	var req UserActiveRequest
	if !bindJSON(c, &req) {
		return
	}

	if id == middleware.CurrentUserID(c) && !*req.IsActive {
		httperr.Conflict(c, "cannot_deactivate_self", "You cannot deactivate your own account.")
		return
	}

	var u models.User
	if err := h.db.WithContext(c.Request.Context()).Preload("Role").First(&u, id).Error; err != nil {
		if httperr.IsNotFound(err) {
			httperr.NotFound(c, "user_not_found", "User not found.")
			return
		}
		serverError(c, "user_load_failed", "Failed to load the user.", err)
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Model(&u).Update("is_active", *req.IsActive).Error; err != nil {
		serverError(c, "user_update_failed", "Failed to update the user.", err)
		return
	}
	u.IsActive = *req.IsActive

	h.audit.Dispatch(audit.Event{
		UserID:   actorID(c),
		Action:   "user.active_changed",
		Entity:   "user",
		EntityID: &u.ID,
		Metadata: map[string]any{"is_active": u.IsActive},
	})

	httpresp.OK(c, gin.H{"data": u, "message": "User updated successfully."})
}
