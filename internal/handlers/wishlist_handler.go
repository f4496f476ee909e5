package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/storefront/internal/httperr"
	"github.com/BruksfildServices01/storefront/internal/httpresp"
	"github.com/BruksfildServices01/storefront/internal/middleware"
	"github.com/BruksfildServices01/storefront/internal/models"
)

type WishlistHandler struct {
	db *gorm.DB
}

func NewWishlistHandler(db *gorm.DB) *WishlistHandler {
	return &WishlistHandler{db: db}
}

func (h *WishlistHandler) List(c *gin.Context) {
	var products []models.Product
	if err := h.db.WithContext(c.Request.Context()).
		Joins("JOIN wishlists ON wishlists.product_id = products.product_id").
		Where("wishlists.user_id = ?", middleware.CurrentUserID(c)).
		Preload("Variants", activeVariants).
		Preload("Variants.Size").
		Order("products.name ASC").
		Find(&products).Error; err != nil {
		serverError(c, "wishlist_load_failed", "Failed to load the wishlist.", err)
		return
	}
	httpresp.List(c, products)
}

// Add is idempotent.
func (h *WishlistHandler) Add(c *gin.Context) {
	p, ok := h.product(c, true)
	if !ok {
		return
	}

	user := models.User{ID: middleware.CurrentUserID(c)}
	if err := h.db.WithContext(c.Request.Context()).
		Model(&user).
		Omit("Wishlist.*").
		Association("Wishlist").
		Append(p); err != nil {
		serverError(c, "wishlist_update_failed", "Failed to update the wishlist.", err)
		return
	}
	httpresp.Message(c, "Product added to your wishlist.")
}

func (h *WishlistHandler) Remove(c *gin.Context) {
	p, ok := h.product(c, false)
	if !ok {
		return
	}

	user := models.User{ID: middleware.CurrentUserID(c)}
	if err := h.db.WithContext(c.Request.Context()).
		Model(&user).
		Association("Wishlist").
		Delete(p); err != nil {
		serverError(c, "wishlist_update_failed", "Failed to update the wishlist.", err)
		return
	}
	httpresp.Message(c, "Product removed from your wishlist.")
}

// product resolves :product_id. Removal also accepts products that were
// deactivated after being saved.
func (h *WishlistHandler) product(c *gin.Context, onlyActive bool) (*models.Product, bool) {
	id, ok := idParam(c, "product_id", "product_not_found")
	if !ok {
		return nil, false
	}

	q := h.db.WithContext(c.Request.Context())
	if onlyActive {
		q = q.Where("is_active = ?", true)
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
