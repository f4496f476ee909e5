package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/storefront/internal/domain/order"
	"github.com/BruksfildServices01/storefront/internal/httperr"
	"github.com/BruksfildServices01/storefront/internal/httpresp"
	"github.com/BruksfildServices01/storefront/internal/infra/repository"
	"github.com/BruksfildServices01/storefront/internal/middleware"
	"github.com/BruksfildServices01/storefront/internal/models"
	"github.com/BruksfildServices01/storefront/internal/pagination"
	ucOrder "github.com/BruksfildServices01/storefront/internal/usecase/order"
)

// ======================================================
// HANDLER
// ======================================================

type OrderHandler struct {
	db       *gorm.DB
	timezone string

	place    *ucOrder.PlaceOrder
	status   *ucOrder.UpdateStatus
	checkout *ucOrder.Checkout
}

func NewOrderHandler(
	db *gorm.DB,
	timezone string,
	place *ucOrder.PlaceOrder,
	status *ucOrder.UpdateStatus,
	checkout *ucOrder.Checkout,
) *OrderHandler {
	return &OrderHandler{
		db:       db,
		timezone: timezone,
		place:    place,
		status:   status,
		checkout: checkout,
	}
}

var orderSpec = pagination.Spec{
	Sortable: map[string]string{
		"created_at":   "orders.created_at",
		"total_amount": "orders.total_amount",
		"status":       "orders.status",
	},
	Searchable:  []string{"orders.note", "orders.payment_reference"},
	DefaultSort: "created_at",
	DefaultDesc: true,
	TieBreaker:  "orders.order_id",
}

// --------- Requests ---------

type OrderItemRequest struct {
	VariantID uint `json:"variant_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

type PlaceOrderRequest struct {
	ShippingAddressID uint               `json:"shipping_address_id" binding:"required"`
	Items             []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Note              string             `json:"note" binding:"omitempty,max=500"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending processing shipped delivered cancelled"`
}

// --------- Customer ---------

func (h *OrderHandler) MyList(c *gin.Context) {
	q := h.db.Model(&models.Order{}).Where("orders.user_id = ?", middleware.CurrentUserID(c))
	h.list(c, q)
}

func (h *OrderHandler) MyShow(c *gin.Context) {
	id, ok := idParam(c, "id", "order_not_found")
	if !ok {
		return
	}

	var o models.Order
	err := repository.WithOrderRelations(h.db.WithContext(c.Request.Context())).
		Where("order_id = ? AND user_id = ?", id, middleware.CurrentUserID(c)).
		First(&o).Error
	if err != nil {
		h.loadFailed(c, err)
		return
	}
	httpresp.OK(c, gin.H{"data": o})
}

func (h *OrderHandler) Place(c *gin.Context) {
	var req PlaceOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	lines := make([]domain.Line, len(req.Items))
	for i, it := range req.Items {
		lines[i] = domain.Line{VariantID: it.VariantID, Quantity: it.Quantity}
	}

	o, err := h.place.Execute(c.Request.Context(), ucOrder.PlaceOrderInput{
		UserID:            middleware.CurrentUserID(c),
		ShippingAddressID: req.ShippingAddressID,
		Items:             lines,
		Note:              strings.TrimSpace(req.Note),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	httpresp.Created(c, gin.H{"data": o, "message": "Order placed successfully."})
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := idParam(c, "id", "order_not_found")
	if !ok {
		return
	}

	userID := middleware.CurrentUserID(c)
	o, err := h.status.Execute(c.Request.Context(), ucOrder.UpdateStatusInput{
		OrderID: id,
		ActorID: userID,
		Status:  domain.StatusCancelled,
		OwnerID: &userID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	httpresp.OK(c, gin.H{"data": o, "message": "Order cancelled."})
}

func (h *OrderHandler) Checkout(c *gin.Context) {
	id, ok := idParam(c, "id", "order_not_found")
	if !ok {
		return
	}

	out, err := h.checkout.Execute(c.Request.Context(), ucOrder.CheckoutInput{
		OrderID: id,
		UserID:  middleware.CurrentUserID(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	httpresp.OK(c, gin.H{"data": out})
}

// --------- Admin ---------

// AdminList filters by ?status, ?user_id and a from/to day range.
func (h *OrderHandler) AdminList(c *gin.Context) {
	q := h.db.Model(&models.Order{})

	if s := c.Query("status"); s != "" {
		status, ok := domain.ParseStatus(s)
		if !ok {
			httperr.Invalid(c, httperr.Field("status", "The selected status is invalid."))
			return
		}
		q = q.Where("orders.status = ?", string(status))
	}
	if uid := c.Query("user_id"); uid != "" {
		q = q.Where("orders.user_id = ?", uid)
	}

	from, to := dateRange(h.timezone, c.Query("from"), c.Query("to"))
	if from != nil {
		q = q.Where("orders.created_at >= ?", *from)
	}
	if to != nil {
		q = q.Where("orders.created_at < ?", *to)
	}

	h.list(c, q)
}

func (h *OrderHandler) AdminShow(c *gin.Context) {
	id, ok := idParam(c, "id", "order_not_found")
	if !ok {
		return
	}

	var o models.Order
	if err := repository.WithOrderRelations(h.db.WithContext(c.Request.Context())).
		First(&o, id).Error; err != nil {
		h.loadFailed(c, err)
		return
	}
	httpresp.OK(c, gin.H{"data": o})
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := idParam(c, "id", "order_not_found")
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	o, err := h.status.Execute(c.Request.Context(), ucOrder.UpdateStatusInput{
		OrderID: id,
		ActorID: middleware.CurrentUserID(c),
		Status:  domain.Status(req.Status),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	httpresp.OK(c, gin.H{"data": o, "message": "Order status updated."})
}

// --------- helpers ---------

func (h *OrderHandler) list(c *gin.Context, q *gorm.DB) {
	p := pagination.Parse(c, orderSpec)
	page, err := pagination.Paginate[models.Order](c.Request.Context(), q, orderSpec, p,
		pagination.Preload("User"),
		pagination.Preload("Details"),
	)
	if err != nil {
		serverError(c, "order_list_failed", "Failed to load orders.", err)
		return
	}
	httpresp.OK(c, page)
}

func (h *OrderHandler) loadFailed(c *gin.Context, err error) {
	if httperr.IsNotFound(err) {
		httperr.NotFound(c, "order_not_found", "Order not found.")
		return
	}
	serverError(c, "order_load_failed", "Failed to load the order.", err)
}
