// Package payment creates hosted checkouts and looks up payment results.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrDisabled = errors.New("payments are not configured")

// Provider statuses.
const (
	StatusApproved   = "approved"
	StatusPending    = "pending"
	StatusInProcess  = "in_process"
	StatusRejected   = "rejected"
	StatusCancelled  = "cancelled"
	StatusRefunded   = "refunded"
	StatusChargeback = "charged_back"
)

type Item struct {
	Title     string
	Quantity  int
	UnitPrice decimal.Decimal
}

type CheckoutRequest struct {
	OrderID    uint
	PayerEmail string
	Currency   string
	Items      []Item

	SuccessURL      string
	FailureURL      string
	PendingURL      string
	NotificationURL string
}

type Checkout struct {
	PreferenceID string `json:"preference_id"`
	URL          string `json:"checkout_url"`
}

type Result struct {
	PaymentID string
	Status    string
	OrderID   uint
}

type Gateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error)
	Lookup(ctx context.Context, paymentID string) (*Result, error)
}

// ExternalReference ties a provider payment back to an order.
func ExternalReference(orderID uint) string {
	return fmt.Sprintf("order-%d", orderID)
}

func ParseExternalReference(ref string) (uint, error) {
	raw, ok := strings.CutPrefix(ref, "order-")
	if !ok {
		return 0, fmt.Errorf("unexpected external reference %q", ref)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("unexpected external reference %q", ref)
	}
	return uint(id), nil
}

type Disabled struct{}

func (Disabled) CreateCheckout(context.Context, CheckoutRequest) (*Checkout, error) {
	return nil, ErrDisabled
}

func (Disabled) Lookup(context.Context, string) (*Result, error) {
	return nil, ErrDisabled
}
