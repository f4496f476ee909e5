package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/storefront/internal/audit"
	"github.com/BruksfildServices01/storefront/internal/httperr"
	"github.com/BruksfildServices01/storefront/internal/httpresp"
	"github.com/BruksfildServices01/storefront/internal/models"
)

type VariantHandler struct {
	db    *gorm.DB
	audit audit.Recorder
}

func NewVariantHandler(db *gorm.DB, rec audit.Recorder) *VariantHandler {
	return &VariantHandler{db: db, audit: rec}
}

type VariantRequest struct {
	SizeID        *uint            `json:"size_id"`
	SKU           string           `json:"sku" binding:"required,max=64"`
	Color         string           `json:"color" binding:"omitempty,max=50"`
	Price         *decimal.Decimal `json:"price" binding:"required"`
	StockQuantity *int             `json:"stock_quantity" binding:"required,min=0"`
	ImageURL      string           `json:"image_url" binding:"omitempty,url,max=500"`
	IsActive      *bool            `json:"is_active"`
}

var maxPrice = decimal.RequireFromString("9999999999.99")

func (h *VariantHandler) List(c *gin.Context) {
	p, ok := h.product(c)
	if !ok {
		return
	}

	var variants []models.ProductVariant
	if err := h.db.WithContext(c.Request.Context()).
		Preload("Size").
		Where("product_id = ?", p.ID).
		Order("variant_id ASC").
		Find(&variants).Error; err != nil {
		serverError(c, "variant_list_failed", "Failed to load variants.", err)
		return
	}
	httpresp.List(c, variants)
}

func (h *VariantHandler) Create(c *gin.Context) {
	p, ok := h.product(c)
	if !ok {
		return
	}

	var req VariantRequest
	if !bindJSON(c, &req) {
		return
	}

	v := models.ProductVariant{ProductID: p.ID, IsActive: true}
	if !h.apply(c, &v, req) {
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Omit("Product", "Size").Create(&v).Error; err != nil {
		h.writeFailed(c, err, "variant_create_failed", "Failed to create the variant.")
		return
	}

	h.changed(c, "variant.created", v.ID, v.SKU)
	httpresp.Created(c, gin.H{"data": v, "message": "Variant created successfully."})
}

func (h *VariantHandler) Update(c *gin.Context) {
	v, ok := h.find(c)
	if !ok {
		return
	}

	var req VariantRequest
	if !bindJSON(c, &req) {
		return
	}
	if !h.apply(c, v, req) {
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Omit("Product", "Size").Save(v).Error; err != nil {
		h.writeFailed(c, err, "variant_update_failed", "Failed to update the variant.")
		return
	}

	h.changed(c, "variant.updated", v.ID, v.SKU)
	httpresp.OK(c, gin.H{"data": v, "message": "Variant updated successfully."})
}

// Delete is a soft delete; the SKU stays reserved for order history.
func (h *VariantHandler) Delete(c *gin.Context) {
	v, ok := h.find(c)
	if !ok {
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Delete(v).Error; err != nil {
		serverError(c, "variant_delete_failed", "Failed to delete the variant.", err)
		return
	}

	h.changed(c, "variant.deleted", v.ID, v.SKU)
	httpresp.Message(c, "Variant deleted successfully.")
}

// --------- helpers ---------

func (h *VariantHandler) product(c *gin.Context) (*models.Product, bool) {
	id, ok := idParam(c, "id", "product_not_found")
	if !ok {
		return nil, false
	}

	var p models.Product
	if err := h.db.WithContext(c.Request.Context()).First(&p, id).Error; err != nil {
		if httperr.IsNotFound(err) {
			httperr.NotFound(c, "product_not_found", "Product not found.")
			return nil, false
		}
		serverError(c, "product_load_failed", "Failed to load the product.", err)
		return nil, false
	}
	return &p, true
}

func (h *VariantHandler) find(c *gin.Context) (*models.ProductVariant, bool) {
	p, ok := h.product(c)
	if !ok {
		return nil, false
	}
	id, ok := idParam(c, "variant_id", "variant_not_found")
	if !ok {
		return nil, false
	}

	var v models.ProductVariant
	if err := h.db.WithContext(c.Request.Context()).
		Where("variant_id = ? AND product_id = ?", id, p.ID).
		First(&v).Error; err != nil {
		if httperr.IsNotFound(err) {
			httperr.NotFound(c, "variant_not_found", "Variant not found.")
			return nil, false
		}
		serverError(c, "variant_load_failed", "Failed to load the variant.", err)
		return nil, false
	}
	return &v, true
}

func (h *VariantHandler) apply(c *gin.Context, v *models.ProductVariant, req VariantRequest) bool {
	fields := map[string][]string{}

	if req.Price.IsNegative() {
		fields["price"] = append(fields["price"], "The price field must be at least 0.")
	} else if req.Price.GreaterThan(maxPrice) {
		fields["price"] = append(fields["price"], "The price field is too large.")
	}

	if req.SizeID != nil {
		var exists int64
		if err := h.db.WithContext(c.Request.Context()).
			Model(&models.Size{}).
			Where("id = ?", *req.SizeID).
			Count(&exists).Error; err != nil {
			serverError(c, "size_load_failed", "Failed to load the size.", err)
			return false
		}
		if exists == 0 {
			fields["size_id"] = append(fields["size_id"], "The selected size id is invalid.")
		}
	}

	if len(fields) > 0 {
		httperr.Invalid(c, fields)
		return false
	}

	v.SizeID = req.SizeID
	v.SKU = strings.ToUpper(strings.TrimSpace(req.SKU))
	v.Color = req.Color
	v.Price = req.Price.Round(2)
	v.StockQuantity = *req.StockQuantity
	v.ImageURL = req.ImageURL
	if req.IsActive != nil {
		v.IsActive = *req.IsActive
	}
	return true
}

func (h *VariantHandler) writeFailed(c *gin.Context, err error, code, message string) {
	if httperr.IsUniqueViolation(err) {
		httperr.Invalid(c, httperr.Field("sku", "The sku has already been taken."))
		return
	}
	serverError(c, code, message, err)
}

func (h *VariantHandler) changed(c *gin.Context, action string, id uint, sku string) {
	h.audit.Dispatch(audit.Event{
		UserID:   actorID(c),
		Action:   action,
		Entity:   "variant",
		EntityID: &id,
		Metadata: map[string]any{"sku": sku},
	})
}
