package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/storefront/internal/domain/order"
	"github.com/BruksfildServices01/storefront/internal/httpresp"
	"github.com/BruksfildServices01/storefront/internal/models"
	"github.com/BruksfildServices01/storefront/internal/timezone"
)

type DashboardHandler struct {
	db       *gorm.DB
	timezone string
}

func NewDashboardHandler(db *gorm.DB, timezone string) *DashboardHandler {
	return &DashboardHandler{db: db, timezone: timezone}
}

type DashboardStats struct {
	Users         int64           `json:"users"`
	Products      int64           `json:"products"`
	Orders        int64           `json:"orders"`
	PendingOrders int64           `json:"pending_orders"`
	Revenue       decimal.Decimal `json:"revenue"`
	OrdersToday   int64           `json:"orders_today"`
	RevenueToday  decimal.Decimal `json:"revenue_today"`
}

// Show counts revenue from paid orders only; "today" is the store's day.
func (h *DashboardHandler) Show(c *gin.Context) {
	ctx := c.Request.Context()
	db := h.db.WithContext(ctx)

	var s DashboardStats
	counts := []struct {
		model any
		where func(*gorm.DB) *gorm.DB
		dest  *int64
	}{
		{&models.User{}, nil, &s.Users},
		{&models.Product{}, nil, &s.Products},
		{&models.Order{}, nil, &s.Orders},
		{&models.Order{}, func(q *gorm.DB) *gorm.DB {
			return q.Where("status = ?", string(domain.StatusPending))
		}, &s.PendingOrders},
	}
	for _, cnt := range counts {
		q := db.Model(cnt.model)
		if cnt.where != nil {
			q = cnt.where(q)
		}
		if err := q.Count(cnt.dest).Error; err != nil {
			serverError(c, "dashboard_failed", "Failed to load the dashboard.", err)
			return
		}
	}

	day := timezone.StartOfDay(timezone.NowIn(h.timezone))
	start, end := day.UTC(), day.AddDate(0, 0, 1).UTC()

	var err error
	if s.Revenue, err = revenue(ctx, db, time.Time{}, time.Time{}); err != nil {
		serverError(c, "dashboard_failed", "Failed to load the dashboard.", err)
		return
	}
	if s.RevenueToday, err = revenue(ctx, db, start, end); err != nil {
		serverError(c, "dashboard_failed", "Failed to load the dashboard.", err)
		return
	}
	if err := db.Model(&models.Order{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&s.OrdersToday).Error; err != nil {
		serverError(c, "dashboard_failed", "Failed to load the dashboard.", err)
		return
	}

	httpresp.OK(c, gin.H{"data": s})
}

// revenue sums paid orders, optionally within [from, to).
func revenue(ctx context.Context, db *gorm.DB, from, to time.Time) (decimal.Decimal, error) {
	q := db.WithContext(ctx).
		Model(&models.Order{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("payment_status = ? AND status <> ?", domain.PaymentPaid, string(domain.StatusCancelled))
	if !from.IsZero() {
		q = q.Where("created_at >= ? AND created_at < ?", from, to)
	}

	var total decimal.Decimal
	if err := q.Row().Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total.Round(2), nil
}
