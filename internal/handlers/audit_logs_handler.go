package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/storefront/internal/httpresp"
	"github.com/BruksfildServices01/storefront/internal/models"
	"github.com/BruksfildServices01/storefront/internal/pagination"
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	db       *gorm.DB
	timezone string
}

func NewAuditLogsHandler(db *gorm.DB, timezone string) *AuditLogsHandler {
	return &AuditLogsHandler{db: db, timezone: timezone}
}

var auditSpec = pagination.Spec{
	Sortable: map[string]string{
		"created_at": "created_at",
		"action":     "action",
		"entity":     "entity",
	},
	Searchable:  []string{"action", "entity"},
	DefaultSort: "created_at",
	DefaultDesc: true,
	TieBreaker:  "id",
}

// List filters on action, entity, entity_id, user_id and a from/to day range
// in the store timezone.
func (h *AuditLogsHandler) List(c *gin.Context) {
	q := h.db.Model(&models.AuditLog{})

	// --------------------------------------------------
	// Optional filters
	// --------------------------------------------------

	if action := c.Query("action"); action != "" {
		q = q.Where("action = ?", action)
	}
	if entity := c.Query("entity"); entity != "" {
		q = q.Where("entity = ?", entity)
	}
	if id := c.Query("entity_id"); id != "" {
		q = q.Where("entity_id = ?", id)
	}
	if uid := c.Query("user_id"); uid != "" {
		q = q.Where("user_id = ?", uid)
	}

	from, to := dateRange(h.timezone, c.Query("from"), c.Query("to"))
	if from != nil {
		q = q.Where("created_at >= ?", *from)
	}
	if to != nil {
		q = q.Where("created_at < ?", *to)
	}

	p := pagination.Parse(c, auditSpec)
	page, err := pagination.Paginate[models.AuditLog](c.Request.Context(), q, auditSpec, p)
	if err != nil {
		serverError(c, "audit_list_failed", "Failed to load audit logs.", err)
		return
	}
	httpresp.OK(c, page)
}
