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
	"github.com/BruksfildServices01/storefront/internal/slug"
	"github.com/BruksfildServices01/storefront/internal/storage"
)

// ======================================================
// HANDLER
// ======================================================

type ProductHandler struct {
	db     *gorm.DB
	cache  cache.Cache
	audit  audit.Recorder
	images *imageUploader
}

func NewProductHandler(db *gorm.DB, c cache.Cache, rec audit.Recorder, store storage.Storage) *ProductHandler {
	return &ProductHandler{db: db, cache: c, audit: rec, images: newImageUploader(store)}
}

var productSpec = pagination.Spec{
	Sortable: map[string]string{
		"name":       "products.name",
		"slug":       "products.slug",
		"is_active":  "products.is_active",
		"created_at": "products.created_at",
	},
	Searchable:  []string{"products.name", "products.slug", "products.description"},
	DefaultSort: "name",
	TieBreaker:  "products.product_id",
}

// --------- Requests ---------

type ProductRequest struct {
	CategoryID  uint   `json:"category_id" binding:"required"`
	Name        string `json:"name" binding:"required,max=255"`
	Slug        string `json:"slug" binding:"omitempty,max=255,slug"`
	Description string `json:"description" binding:"omitempty,max=10000"`
	IsActive    *bool  `json:"is_active"`
}

func activeVariants(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true).Order("variant_id ASC")
}

// --------- Public ---------

// List shows active products of active categories, filtered by ?category=<slug>.
func (h *ProductHandler) List(c *gin.Context) {
	q := h.db.Model(&models.Product{}).
		Joins("JOIN categories ON categories.id = products.category_id").
		Where("products.is_active = ? AND categories.is_active = ?", true, true)

	if cat := strings.TrimSpace(c.Query("category")); cat != "" {
		q = q.Where("categories.slug = ?", cat)
	}

	p := pagination.Parse(c, productSpec)
	page, err := pagination.Paginate[models.Product](c.Request.Context(), q, productSpec, p,
		pagination.Preload("Category"),
		pagination.Preload("Variants", activeVariants),
		pagination.Preload("Variants.Size"),
	)
	if err != nil {
		serverError(c, "product_list_failed", "Failed to load products.", err)
		return
	}
	httpresp.OK(c, page)
}

func (h *ProductHandler) Show(c *gin.Context) {
	var p models.Product
	err := h.db.WithContext(c.Request.Context()).
		Preload("Category").
		Preload("Variants", activeVariants).
		Preload("Variants.Size").
		Joins("JOIN categories ON categories.id = products.category_id AND categories.is_active = ?", true).
		Where("products.slug = ? AND products.is_active = ?", c.Param("slug"), true).
		First(&p).Error
	if err != nil {
		if httperr.IsNotFound(err) {
			httperr.NotFound(c, "product_not_found", "Product not found.")
			return
		}
		serverError(c, "product_load_failed", "Failed to load the product.", err)
		return
	}
	httpresp.OK(c, gin.H{"data": p})
}

// --------- Admin ---------

// AdminList includes inactive products; ?category_id and ?is_active filter.
func (h *ProductHandler) AdminList(c *gin.Context) {
	q := h.db.Model(&models.Product{})
	if id := c.Query("category_id"); id != "" {
		q = q.Where("products.category_id = ?", id)
	}
	if active, ok := boolQuery(c, "is_active"); ok {
		q = q.Where("products.is_active = ?", active)
	}

	p := pagination.Parse(c, productSpec)
	page, err := pagination.Paginate[models.Product](c.Request.Context(), q, productSpec, p,
		pagination.Preload("Category"),
		pagination.Preload("Variants"),
	)
	if err != nil {
		serverError(c, "product_list_failed", "Failed to load products.", err)
		return
	}
	httpresp.OK(c, page)
}

func (h *ProductHandler) AdminShow(c *gin.Context) {
	p, ok := h.find(c, true)
	if !ok {
		return
	}
	httpresp.OK(c, gin.H{"data": p})
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req ProductRequest
	if !bindJSON(c, &req) {
		return
	}

	p := models.Product{IsActive: true}
	if !h.apply(c, &p, req) {
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Omit("Category", "Variants").Create(&p).Error; err != nil {
		if httperr.IsUniqueViolation(err) {
			httperr.Invalid(c, httperr.Field("slug", "The slug has already been taken."))
			return
		}
		serverError(c, "product_create_failed", "Failed to create the product.", err)
		return
	}

	h.changed(c, "product.created", p.ID, map[string]any{"slug": p.Slug})
	httpresp.Created(c, gin.H{"data": p, "message": "Product created successfully."})
}

func (h *ProductHandler) Update(c *gin.Context) {
	p, ok := h.find(c, false)
	if !ok {
		return
	}

	var req ProductRequest
	if !bindJSON(c, &req) {
		return
	}
	if !h.apply(c, p, req) {
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Omit("Category", "Variants").Save(p).Error; err != nil {
		if httperr.IsUniqueViolation(err) {
			httperr.Invalid(c, httperr.Field("slug", "The slug has already been taken."))
			return
		}
		serverError(c, "product_update_failed", "Failed to update the product.", err)
		return
	}

	h.changed(c, "product.updated", p.ID, map[string]any{"slug": p.Slug})
	httpresp.OK(c, gin.H{"data": p, "message": "Product updated successfully."})
}

// Delete is a soft delete; order lines keep resolving the product.
func (h *ProductHandler) Delete(c *gin.Context) {
	p, ok := h.find(c, false)
	if !ok {
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Delete(p).Error; err != nil {
		serverError(c, "product_delete_failed", "Failed to delete the product.", err)
		return
	}

	h.changed(c, "product.deleted", p.ID, map[string]any{"slug": p.Slug})
	httpresp.Message(c, "Product deleted successfully.")
}

func (h *ProductHandler) UploadImage(c *gin.Context) {
	p, ok := h.find(c, false)
	if !ok {
		return
	}

	url, ok := h.images.upload(c, "products")
	if !ok {
		return
	}

	old := p.ImageURL
	if err := h.db.WithContext(c.Request.Context()).Model(p).Update("image_url", url).Error; err != nil {
		h.images.remove(c.Request.Context(), url)
		serverError(c, "product_update_failed", "Failed to update the product.", err)
		return
	}
	if old != "" {
		h.images.remove(c.Request.Context(), old)
	}

	p.ImageURL = url
	h.changed(c, "product.image_updated", p.ID, map[string]any{"image_url": url})
	httpresp.OK(c, gin.H{"data": p, "message": "Image uploaded successfully."})
}

// --------- helpers ---------

func (h *ProductHandler) find(c *gin.Context, withRelations bool) (*models.Product, bool) {
	id, ok := idParam(c, "id", "product_not_found")
	if !ok {
		return nil, false
	}

	q := h.db.WithContext(c.Request.Context())
	if withRelations {
		q = q.Preload("Category").Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("variant_id ASC")
		}).Preload("Variants.Size")
	}

	var p models.Product
	if err := q.First(&p, id).Error; err != nil {
		if httperr.IsNotFound(err) {
			httperr.NotFound(c, "product_not_found", "Product not found.")
			return nil, false
		}
		serverError(c, "product_load_failed", "Failed to load the product.", err)
		return nil, false
	}
	return &p, true
}

func (h *ProductHandler) apply(c *gin.Context, p *models.Product, req ProductRequest) bool {
	s := req.Slug
	if s == "" {
		s = slug.Make(req.Name)
	}
	if s == "" {
		httperr.Invalid(c, httperr.Field("name", "The name field must contain letters or numbers."))
		return false
	}

	var exists int64
	if err := h.db.WithContext(c.Request.Context()).
		Model(&models.Category{}).
		Where("id = ?", req.CategoryID).
		Count(&exists).Error; err != nil {
		serverError(c, "category_load_failed", "Failed to load the category.", err)
		return false
	}
	if exists == 0 {
		httperr.Invalid(c, httperr.Field("category_id", "The selected category id is invalid."))
		return false
	}

	p.CategoryID = req.CategoryID
	p.Name = strings.TrimSpace(req.Name)
	p.Slug = s
	p.Description = req.Description
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	return true
}

func (h *ProductHandler) changed(c *gin.Context, action string, id uint, meta map[string]any) {
	forgetCatalog(c.Request.Context(), h.cache)
	h.audit.Dispatch(audit.Event{
		UserID:   actorID(c),
		Action:   action,
		Entity:   "product",
		EntityID: &id,
		Metadata: meta,
	})
}
