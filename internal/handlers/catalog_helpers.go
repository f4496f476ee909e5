package handlers

import (
	"context"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/storefront/internal/cache"
	"github.com/BruksfildServices01/storefront/internal/logging"
	"github.com/BruksfildServices01/storefront/internal/models"
)

const menuCacheKey = "catalog:menu"

// forgetCatalog drops cached storefront navigation after catalog writes.
func forgetCatalog(ctx context.Context, c cache.Cache) {
	if err := c.Delete(ctx, menuCacheKey); err != nil {
		logging.FromContext(ctx).Warn("cache invalidation failed", "key", menuCacheKey, "error", err)
	}
}

// attachProductCounts fills Category.ProductsCount with one grouped query.
func attachProductCounts(ctx context.Context, db *gorm.DB, cats []models.Category, onlyActive bool) error {
	if len(cats) == 0 {
		return nil
	}

	ids := make([]uint, len(cats))
	for i, c := range cats {
		ids[i] = c.ID
	}

	q := db.WithContext(ctx).
		Model(&models.Product{}).
		Select("category_id, COUNT(*) AS total").
		Where("category_id IN ?", ids)
	if onlyActive {
		q = q.Where("is_active = ?", true)
	}

	var rows []struct {
		CategoryID uint
		Total      int64
	}
	if err := q.Group("category_id").Scan(&rows).Error; err != nil {
		return err
	}

	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.CategoryID] = r.Total
	}
	for i := range cats {
		cats[i].ProductsCount = counts[cats[i].ID]
	}
	return nil
}
