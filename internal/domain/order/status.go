package order

import (
	"time"

	"github.com/BruksfildServices01/storefront/internal/httperr"
	"github.com/BruksfildServices01/storefront/internal/models"
)

// ===============================
// Order Status
// ===============================

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
}

func AllStatuses() []Status {
	return []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}
}

func ParseStatus(s string) (Status, bool) {
	for _, st := range AllStatuses() {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

func InitialStatus() Status {
	return StatusPending
}

// ===============================
// Validations
// ===============================

func CanTransition(from, to Status) error {
	for _, next := range transitions[from] {
		if next == to {
			return nil
		}
	}
	return httperr.ErrBusinessf(
		"invalid_status_transition",
		"An order cannot move from %s to %s.", from, to,
	)
}

// CanCustomerCancel allows customers to cancel only before processing starts.
func CanCustomerCancel(current Status) error {
	if current != StatusPending {
		return httperr.ErrBusinessf(
			"order_not_cancellable",
			"Only pending orders can be cancelled.",
		)
	}
	return nil
}

// ===============================
// Domain Actions
// ===============================

func Transition(o *models.Order, to Status, now time.Time) error {
	if err := CanTransition(Status(o.Status), to); err != nil {
		return err
	}

	o.Status = string(to)
	if to == StatusCancelled {
		o.CancelledAt = &now
	}
	return nil
}

// ReleasesStock reports whether moving to "to" puts reserved stock back.
func ReleasesStock(to Status) bool {
	return to == StatusCancelled
}
