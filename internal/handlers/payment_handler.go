package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/storefront/internal/httperr"
	"github.com/BruksfildServices01/storefront/internal/logging"
	ucOrder "github.com/BruksfildServices01/storefront/internal/usecase/order"
)

type PaymentHandler struct {
	reconcile *ucOrder.ReconcilePayment
}

func NewPaymentHandler(reconcile *ucOrder.ReconcilePayment) *PaymentHandler {
	return &PaymentHandler{reconcile: reconcile}
}

type webhookBody struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	Data   struct {
		ID json.Number `json:"id"`
	} `json:"data"`
}

// Webhook reconciles a payment notification. The id comes from the body
// (data.id) or from the query (data.id, id); anything but a payment
// notification is acknowledged and ignored.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	var body webhookBody
	raw, err := c.GetRawData()
	if err != nil {
		httperr.BadRequest(c, "invalid_request", "The notification body could not be read.")
		return
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			httperr.BadRequest(c, "invalid_request", "The notification body could not be parsed.")
			return
		}
	}

	kind := firstNonEmpty(body.Type, c.Query("type"), c.Query("topic"))
	if kind != "payment" {
		c.JSON(http.StatusOK, gin.H{"message": "Ignored."})
		return
	}

	id := firstNonEmpty(body.Data.ID.String(), c.Query("data.id"), c.Query("id"))
	if id == "" {
		httperr.BadRequest(c, "missing_payment_id", "The notification does not name a payment.")
		return
	}

	o, err := h.reconcile.Execute(c.Request.Context(), id)
	if err != nil {
		// unknown orders are acknowledged so the provider stops retrying
		if be, ok := httperr.AsBusiness(err); ok && be.Code == "order_not_found" {
			logging.FromContext(c.Request.Context()).Warn("payment for unknown order", "payment_id", id)
			c.JSON(http.StatusOK, gin.H{"message": "Ignored."})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Processed.",
		"order_id":       o.ID,
		"payment_status": o.PaymentStatus,
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
