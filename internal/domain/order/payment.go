package order

import "github.com/BruksfildServices01/storefront/internal/payment"

const (
	PaymentUnpaid   = "unpaid"
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentFailed   = "failed"
	PaymentRefunded = "refunded"
)

// PaymentStatusFor maps a provider status onto the order's payment_status.
func PaymentStatusFor(providerStatus string) string {
	switch providerStatus {
	case payment.StatusApproved:
		return PaymentPaid
	case payment.StatusPending, payment.StatusInProcess:
		return PaymentPending
	case payment.StatusRefunded, payment.StatusChargeback:
		return PaymentRefunded
	case payment.StatusRejected, payment.StatusCancelled:
		return PaymentFailed
	default:
		return PaymentPending
	}
}

// CanCheckout allows a new hosted checkout for pending, not yet paid orders.
func CanCheckout(status Status, paymentStatus string) bool {
	return status == StatusPending && paymentStatus != PaymentPaid
}
