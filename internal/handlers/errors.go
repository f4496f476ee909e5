package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/storefront/internal/httperr"
	"github.com/BruksfildServices01/storefront/internal/logging"
	"github.com/BruksfildServices01/storefront/internal/payment"
)

var businessStatus = map[string]int{
	"invalid_credentials":       http.StatusUnauthorized,
	"invalid_google_token":      http.StatusUnauthorized,
	"account_disabled":          http.StatusForbidden,
	"invalid_verification_link": http.StatusForbidden,
	"order_not_found":           http.StatusNotFound,
	"google_disabled":           http.StatusNotFound,
	"invalid_status_transition": http.StatusConflict,
	"order_not_cancellable":     http.StatusConflict,
	"order_not_payable":         http.StatusConflict,
}

// codes reported as 422 field errors
var businessField = map[string]string{
	"email_taken":             "email",
	"invalid_email_domain":    "email",
	"address_not_found":       "shipping_address_id",
	"empty_order":             "items",
	"invalid_quantity":        "items",
	"variant_unavailable":     "items",
	"insufficient_stock":      "items",
	"google_email_unverified": "credential",
}

var businessMessage = map[string]string{
	"invalid_credentials":       "These credentials do not match our records.",
	"invalid_google_token":      "The Google credential could not be verified.",
	"account_disabled":          "Your account has been disabled.",
	"invalid_verification_link": "Invalid or expired verification link.",
	"order_not_found":           "Order not found.",
	"google_disabled":           "Google sign-in is not available.",
}

// respondError translates use case errors to HTTP.
func respondError(c *gin.Context, err error) {
	if be, ok := httperr.AsBusiness(err); ok {
		msg := be.Message
		if msg == "" {
			msg = businessMessage[be.Code]
		}
		if msg == "" {
			msg = "The request could not be completed."
		}

		if field, ok := businessField[be.Code]; ok {
			httperr.Invalid(c, httperr.Field(field, msg))
			return
		}

		status, ok := businessStatus[be.Code]
		if !ok {
			status = http.StatusUnprocessableEntity
		}
		httperr.Write(c, status, be.Code, msg)
		return
	}

	if errors.Is(err, payment.ErrDisabled) {
		httperr.Unavailable(c, "payments_unavailable", "Online payment is not available.")
		return
	}

	serverError(c, "internal_error", "Something went wrong. Please try again.", err)
}

// serverError logs err and writes a 500 with a message the client can show.
func serverError(c *gin.Context, code, message string, err error) {
	logging.FromContext(c.Request.Context()).Error(message, "error_code", code, "error", err)
	_ = c.Error(err)
	httperr.Internal(c, code, message)
}
