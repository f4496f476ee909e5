package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/storefront/internal/audit"
	"github.com/BruksfildServices01/storefront/internal/cache"
	"github.com/BruksfildServices01/storefront/internal/httperr"
	"github.com/BruksfildServices01/storefront/internal/httpresp"
	"github.com/BruksfildServices01/storefront/internal/middleware"
	"github.com/BruksfildServices01/storefront/internal/models"
	"github.com/BruksfildServices01/storefront/internal/pagination"
	"github.com/BruksfildServices01/storefront/internal/slug"
	"github.com/BruksfildServices01/storefront/internal/storage"
)

// ======================================================
// HANDLER
// ======================================================

type CategoryHandler struct {
	db      *gorm.DB
	cache   cache.Cache
	audit   audit.Recorder
	images  *imageUploader
	menuTTL time.Duration
}

func NewCategoryHandler(
	db *gorm.DB,
	c cache.Cache,
	rec audit.Recorder,
	store storage.Storage,
	menuTTL time.Duration,
) *CategoryHandler {
	return &CategoryHandler{
		db:      db,
		cache:   c,
		audit:   rec,
		images:  newImageUploader(store),
		menuTTL: menuTTL,
	}
}

var categorySpec = pagination.Spec{
	Sortable: map[string]string{
		"name":       "name",
		"slug":       "slug",
		"is_active":  "is_active",
		"created_at": "created_at",
	},
	Searchable:  []string{"name", "slug", "description"},
	DefaultSort: "name",
	TieBreaker:  "id",
}

// --------- Requests ---------

type CategoryRequest struct {
	Name        string `json:"name" form:"name" binding:"required,max=255"`
	Slug        string `json:"slug" form:"slug" binding:"omitempty,max=255,slug"`
	Description string `json:"description" form:"description" binding:"omitempty,max=5000"`
	IsActive    *bool  `json:"is_active" form:"is_active"`
	ParentID    *uint  `json:"parent_id" form:"parent_id"`
	SizeIDs     []uint `json:"size_ids" form:"size_ids"`
}

// --------- Public ---------

// List is the admin table feed: every category, optionally filtered by
// ?is_active=1|0 and ?parent_id=<id>|root.
func (h *CategoryHandler) List(c *gin.Context) {
	q := h.db.Model(&models.Category{})

	if active, ok := boolQuery(c, "is_active"); ok {
		q = q.Where("is_active = ?", active)
	}
	switch parent := c.Query("parent_id"); parent {
	case "":
	case "root":
		q = q.Where("parent_id IS NULL")
	default:
		q = q.Where("parent_id = ?", parent)
	}

	p := pagination.Parse(c, categorySpec)
	page, err := pagination.Paginate[models.Category](c.Request.Context(), q, categorySpec, p)
	if err != nil {
		serverError(c, "category_list_failed", "Failed to load categories.", err)
		return
	}

	if err := attachProductCounts(c.Request.Context(), h.db, page.Data, false); err != nil {
		serverError(c, "category_list_failed", "Failed to load categories.", err)
		return
	}

	httpresp.OK(c, page)
}

// Menu lists active categories for storefront navigation.
func (h *CategoryHandler) Menu(c *gin.Context) {
	ctx := c.Request.Context()

	cats, err := cache.Remember(ctx, h.cache, menuCacheKey, h.menuTTL, func() ([]models.Category, error) {
		var cats []models.Category
		if err := h.db.WithContext(ctx).
			Where("is_active = ?", true).
			Order("name ASC").
			Find(&cats).Error; err != nil {
			return nil, err
		}
		if err := attachProductCounts(ctx, h.db, cats, true); err != nil {
			return nil, err
		}
		return cats, nil
	})
	if err != nil {
		serverError(c, "category_menu_failed", "Failed to load categories.", err)
		return
	}

	httpresp.List(c, cats)
}

func (h *CategoryHandler) Show(c *gin.Context) {
	var cat models.Category
	err := h.db.WithContext(c.Request.Context()).
		Preload("Children", "is_active = ?", true).
		Preload("Sizes").
		Where("slug = ? AND is_active = ?", c.Param("slug"), true).
		First(&cat).Error
	if err != nil {
		if httperr.IsNotFound(err) {
			httperr.NotFound(c, "category_not_found", "Category not found.")
			return
		}
		serverError(c, "category_load_failed", "Failed to load the category.", err)
		return
	}

	cats := []models.Category{cat}
	if err := attachProductCounts(c.Request.Context(), h.db, cats, true); err != nil {
		serverError(c, "category_load_failed", "Failed to load the category.", err)
		return
	}

	httpresp.OK(c, gin.H{"data": cats[0]})
}

// --------- Admin ---------

func (h *CategoryHandler) Create(c *gin.Context) {
	var req CategoryRequest
	if !bind(c, &req) {
		return
	}

	cat := models.Category{IsActive: true}
	if !h.apply(c, &cat, req) {
		return
	}

	sizes, ok := h.loadSizes(c, req.SizeIDs)
	if !ok {
		return
	}
	cat.Sizes = sizes

	if err := h.db.WithContext(c.Request.Context()).Create(&cat).Error; err != nil {
		if httperr.IsUniqueViolation(err) {
			httperr.Invalid(c, httperr.Field("slug", "The slug has already been taken."))
			return
		}
		serverError(c, "category_create_failed", "Failed to create the category.", err)
		return
	}

	h.changed(c, "category.created", cat.ID, map[string]any{"slug": cat.Slug})
	httpresp.Created(c, gin.H{"data": cat, "message": "Category created successfully."})
}

func (h *CategoryHandler) Update(c *gin.Context) {
	cat, ok := h.find(c)
	if !ok {
		return
	}

	var req CategoryRequest
	if !bind(c, &req) {
		return
	}

	if req.ParentID != nil && !h.validParent(c, cat.ID, *req.ParentID) {
		return
	}
	if !h.apply(c, cat, req) {
		return
	}

	sizes, ok := h.loadSizes(c, req.SizeIDs)
	if !ok {
		return
	}

	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Sizes", "Children").Save(cat).Error; err != nil {
			return err
		}
		if req.SizeIDs != nil {
			return tx.Model(cat).Association("Sizes").Replace(sizes)
		}
		return nil
	})
	if err != nil {
		if httperr.IsUniqueViolation(err) {
			httperr.Invalid(c, httperr.Field("slug", "The slug has already been taken."))
			return
		}
		serverError(c, "category_update_failed", "Failed to update the category.", err)
		return
	}

	h.changed(c, "category.updated", cat.ID, map[string]any{"slug": cat.Slug})
	httpresp.OK(c, gin.H{"data": cat, "message": "Category updated successfully."})
}

// Delete refuses categories that still have products (including soft
// deleted ones, which keep order history resolvable) or children.
func (h *CategoryHandler) Delete(c *gin.Context) {
	cat, ok := h.find(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var products int64
	if err := h.db.WithContext(ctx).Unscoped().
		Model(&models.Product{}).
		Where("category_id = ?", cat.ID).
		Count(&products).Error; err != nil {
		serverError(c, "category_delete_failed", "Failed to delete the category.", err)
		return
	}
	if products > 0 {
		httperr.Conflict(c, "category_has_products", "Cannot delete a category that still has products.")
		return
	}

	var children int64
	if err := h.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("parent_id = ?", cat.ID).
		Count(&children).Error; err != nil {
		serverError(c, "category_delete_failed", "Failed to delete the category.", err)
		return
	}
	if children > 0 {
		httperr.Conflict(c, "category_has_children", "Cannot delete a category that has subcategories.")
		return
	}

	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(cat).Association("Sizes").Clear(); err != nil {
			return err
		}
		return tx.Delete(cat).Error
	})
	if err != nil {
		serverError(c, "category_delete_failed", "Failed to delete the category.", err)
		return
	}

	if cat.ImageURL != "" {
		h.images.remove(ctx, cat.ImageURL)
	}

	h.changed(c, "category.deleted", cat.ID, map[string]any{"slug": cat.Slug})
	httpresp.Message(c, "Category deleted successfully.")
}

func (h *CategoryHandler) UploadImage(c *gin.Context) {
	cat, ok := h.find(c)
	if !ok {
		return
	}

	url, ok := h.images.upload(c, "categories")
	if !ok {
		return
	}

	old := cat.ImageURL
	if err := h.db.WithContext(c.Request.Context()).
		Model(cat).
		Update("image_url", url).Error; err != nil {
		h.images.remove(c.Request.Context(), url)
		serverError(c, "category_update_failed", "Failed to update the category.", err)
		return
	}
	if old != "" {
		h.images.remove(c.Request.Context(), old)
	}

	cat.ImageURL = url
	h.changed(c, "category.image_updated", cat.ID, map[string]any{"image_url": url})
	httpresp.OK(c, gin.H{"data": cat, "message": "Image uploaded successfully."})
}

// --------- helpers ---------

func (h *CategoryHandler) find(c *gin.Context) (*models.Category, bool) {
	id, ok := idParam(c, "id", "category_not_found")
	if !ok {
		return nil, false
	}

	var cat models.Category
	if err := h.db.WithContext(c.Request.Context()).First(&cat, id).Error; err != nil {
		if httperr.IsNotFound(err) {
			httperr.NotFound(c, "category_not_found", "Category not found.")
			return nil, false
		}
		serverError(c, "category_load_failed", "Failed to load the category.", err)
		return nil, false
	}
	return &cat, true
}

func (h *CategoryHandler) apply(c *gin.Context, cat *models.Category, req CategoryRequest) bool {
	s := req.Slug
	if s == "" {
		s = slug.Make(req.Name)
	}
	if s == "" {
		httperr.Invalid(c, httperr.Field("name", "The name field must contain letters or numbers."))
		return false
	}

	if req.ParentID != nil {
		var exists int64
		if err := h.db.WithContext(c.Request.Context()).
			Model(&models.Category{}).
			Where("id = ?", *req.ParentID).
			Count(&exists).Error; err != nil {
			serverError(c, "category_load_failed", "Failed to load the parent category.", err)
			return false
		}
		if exists == 0 {
			httperr.Invalid(c, httperr.Field("parent_id", "The selected parent id is invalid."))
			return false
		}
	}

	cat.Name = strings.TrimSpace(req.Name)
	cat.Slug = s
	cat.Description = req.Description
	cat.ParentID = req.ParentID
	if req.IsActive != nil {
		cat.IsActive = *req.IsActive
	}
	return true
}

// validParent rejects self references and cycles.
func (h *CategoryHandler) validParent(c *gin.Context, id, parentID uint) bool {
	seen := map[uint]bool{}
	for cur := &parentID; cur != nil; {
		if *cur == id {
			httperr.Invalid(c, httperr.Field("parent_id", "A category cannot be its own ancestor."))
			return false
		}
		if seen[*cur] {
			break
		}
		seen[*cur] = true

		var parent models.Category
		if err := h.db.WithContext(c.Request.Context()).Select("id", "parent_id").First(&parent, *cur).Error; err != nil {
			break
		}
		cur = parent.ParentID
	}
	return true
}

func (h *CategoryHandler) loadSizes(c *gin.Context, ids []uint) ([]models.Size, bool) {
	if len(ids) == 0 {
		return []models.Size{}, true
	}

	var sizes []models.Size
	if err := h.db.WithContext(c.Request.Context()).Where("id IN ?", ids).Find(&sizes).Error; err != nil {
		serverError(c, "size_load_failed", "Failed to load sizes.", err)
		return nil, false
	}
	if len(sizes) != len(uniqueIDs(ids)) {
		httperr.Invalid(c, httperr.Field("size_ids", "The selected size ids are invalid."))
		return nil, false
	}
	return sizes, true
}

func (h *CategoryHandler) changed(c *gin.Context, action string, id uint, meta map[string]any) {
	forgetCatalog(c.Request.Context(), h.cache)
	h.audit.Dispatch(audit.Event{
		UserID:   actorID(c),
		Action:   action,
		Entity:   "category",
		EntityID: &id,
		Metadata: meta,
	})
}

func uniqueIDs(ids []uint) map[uint]struct{} {
	out := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

func actorID(c *gin.Context) *uint {
	id := middleware.CurrentUserID(c)
	if id == 0 {
		return nil
	}
	return &id
}

