package order

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/storefront/internal/httperr"
	"github.com/BruksfildServices01/storefront/internal/models"
)

func TestTransitions(t *testing.T) {
	allowed := map[Status][]Status{
		StatusPending:    {StatusProcessing, StatusCancelled},
		StatusProcessing: {StatusShipped, StatusCancelled},
		StatusShipped:    {StatusDelivered},
		StatusDelivered:  {},
		StatusCancelled:  {},
	}

	for from, ok := range allowed {
		for _, to := range AllStatuses() {
			err := CanTransition(from, to)
			if contains(ok, to) {
				assert.NoError(t, err, "%s -> %s", from, to)
			} else {
				assert.True(t, httperr.IsBusiness(err, "invalid_status_transition"), "%s -> %s", from, to)
			}
		}
	}
}

func contains(list []Status, s Status) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

func TestTransitionStampsCancellation(t *testing.T) {
	o := &models.Order{Status: string(StatusProcessing)}
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, Transition(o, StatusCancelled, now))
	assert.Equal(t, "cancelled", o.Status)
	require.NotNil(t, o.CancelledAt)
	assert.Equal(t, now, *o.CancelledAt)

	assert.Error(t, Transition(o, StatusPending, now))
}

func TestCustomerCancelOnlyPending(t *testing.T) {
	assert.NoError(t, CanCustomerCancel(StatusPending))
	assert.True(t, httperr.IsBusiness(CanCustomerCancel(StatusProcessing), "order_not_cancellable"))
}

func TestMergeLines(t *testing.T) {
	got := MergeLines([]Line{
		{VariantID: 3, Quantity: 1},
		{VariantID: 1, Quantity: 2},
		{VariantID: 3, Quantity: 4},
	})
	assert.Equal(t, []Line{{VariantID: 3, Quantity: 5}, {VariantID: 1, Quantity: 2}}, got)
}

func TestSubtotalAndTotal(t *testing.T) {
	a := NewDetail(&models.ProductVariant{ID: 1, Price: decimal.RequireFromString("199000.50")}, 3)
	b := NewDetail(&models.ProductVariant{ID: 2, Price: decimal.RequireFromString("0.10")}, 3)

	assert.True(t, a.Subtotal.Equal(decimal.RequireFromString("597001.50")))
	assert.True(t, b.Subtotal.Equal(decimal.RequireFromString("0.30")))
	assert.True(t, Total([]models.OrderDetail{a, b}).Equal(decimal.RequireFromString("597001.80")))
}

func TestPaymentStatusFor(t *testing.T) {
	assert.Equal(t, PaymentPaid, PaymentStatusFor("approved"))
	assert.Equal(t, PaymentPending, PaymentStatusFor("in_process"))
	assert.Equal(t, PaymentFailed, PaymentStatusFor("rejected"))
	assert.Equal(t, PaymentRefunded, PaymentStatusFor("refunded"))

	assert.True(t, CanCheckout(StatusPending, PaymentUnpaid))
	assert.False(t, CanCheckout(StatusPending, PaymentPaid))
	assert.False(t, CanCheckout(StatusShipped, PaymentUnpaid))
}
