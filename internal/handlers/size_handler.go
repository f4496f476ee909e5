package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/storefront/internal/audit"
	"github.com/BruksfildServices01/storefront/internal/cache"
	"github.com/BruksfildServices01/storefront/internal/httperr"
	"github.com/BruksfildServices01/storefront/internal/httpresp"
	"github.com/BruksfildServices01/storefront/internal/models"
	"github.com/BruksfildServices01/storefront/internal/pagination"
)

type SizeHandler struct {
	db    *gorm.DB
	cache cache.Cache
	audit audit.Recorder
}

func NewSizeHandler(db *gorm.DB, c cache.Cache, rec audit.Recorder) *SizeHandler {
	return &SizeHandler{db: db, cache: c, audit: rec}
}

var sizeSpec = pagination.Spec{
	Sortable: map[string]string{
		"name":       "name",
		"created_at": "created_at",
	},
	Searchable:  []string{"name", "description"},
	DefaultSort: "name",
	TieBreaker:  "id",
}

type SizeRequest struct {
	Name        string `json:"name" form:"name" binding:"required,max=50"`
	Description string `json:"description" form:"description" binding:"omitempty,max=1000"`
}

func (h *SizeHandler) List(c *gin.Context) {
	p := pagination.Parse(c, sizeSpec)
	page, err := pagination.Paginate[models.Size](c.Request.Context(), h.db, sizeSpec, p)
	if err != nil {
		serverError(c, "size_list_failed", "Failed to load sizes.", err)
		return
	}
	httpresp.OK(c, page)
}

func (h *SizeHandler) Create(c *gin.Context) {
	var req SizeRequest
	if !bind(c, &req) {
		return
	}

	size := models.Size{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&size).Error; err != nil {
		if httperr.IsUniqueViolation(err) {
			httperr.Invalid(c, httperr.Field("name", "The name has already been taken."))
			return
		}
		serverError(c, "size_create_failed", "Failed to create the size.", err)
		return
	}

	h.changed(c, "size.created", size.ID, size.Name)
	httpresp.Created(c, gin.H{"data": size, "message": "Size created successfully."})
}

func (h *SizeHandler) Update(c *gin.Context) {
	size, ok := h.find(c)
	if !ok {
		return
	}

	var req SizeRequest
	if !bind(c, &req) {
		return
	}

	size.Name = strings.TrimSpace(req.Name)
	size.Description = req.Description
	if err := h.db.WithContext(c.Request.Context()).Save(size).Error; err != nil {
		if httperr.IsUniqueViolation(err) {
			httperr.Invalid(c, httperr.Field("name", "The name has already been taken."))
			return
		}
		serverError(c, "size_update_failed", "Failed to update the size.", err)
		return
	}

	h.changed(c, "size.updated", size.ID, size.Name)
	httpresp.OK(c, gin.H{"data": size, "message": "Size updated successfully."})
}

// Delete refuses sizes still referenced by variants, soft-deleted ones included.
func (h *SizeHandler) Delete(c *gin.Context) {
	size, ok := h.find(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var variants int64
	if err := h.db.WithContext(ctx).Unscoped().
		Model(&models.ProductVariant{}).
		Where("size_id = ?", size.ID).
		Count(&variants).Error; err != nil {
		serverError(c, "size_delete_failed", "Failed to delete the size.", err)
		return
	}
	if variants > 0 {
		httperr.Conflict(c, "size_in_use", "Cannot delete a size used by product variants.")
		return
	}

	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM category_sizes WHERE size_id = ?", size.ID).Error; err != nil {
			return err
		}
		return tx.Delete(size).Error
	})
	if err != nil {
		serverError(c, "size_delete_failed", "Failed to delete the size.", err)
		return
	}

	h.changed(c, "size.deleted", size.ID, size.Name)
	httpresp.Message(c, "Size deleted successfully.")
}

func (h *SizeHandler) find(c *gin.Context) (*models.Size, bool) {
	id, ok := idParam(c, "id", "size_not_found")
	if !ok {
		return nil, false
	}

	var size models.Size
	if err := h.db.WithContext(c.Request.Context()).First(&size, id).Error; err != nil {
		if httperr.IsNotFound(err) {
			httperr.NotFound(c, "size_not_found", "Size not found.")
			return nil, false
		}
		serverError(c, "size_load_failed", "Failed to load the size.", err)
		return nil, false
	}
	return &size, true
}

func (h *SizeHandler) changed(c *gin.Context, action string, id uint, name string) {
	forgetCatalog(c.Request.Context(), h.cache)
	h.audit.Dispatch(audit.Event{
		UserID:   actorID(c),
		Action:   action,
		Entity:   "size",
		EntityID: &id,
		Metadata: map[string]any{"name": name},
	})
}
