package order

import (
	"context"
	"time"

	"github.com/BruksfildServices01/storefront/internal/audit"
	domain "github.com/BruksfildServices01/storefront/internal/domain/order"
	"github.com/BruksfildServices01/storefront/internal/httperr"
	"github.com/BruksfildServices01/storefront/internal/logging"
	"github.com/BruksfildServices01/storefront/internal/models"
	"github.com/BruksfildServices01/storefront/internal/payment"
)

// ReconcilePayment applies a provider notification. The provider is asked
// for the payment itself, so the notification body is never trusted.
type ReconcilePayment struct {
	repo    domain.Repository
	gateway payment.Gateway
	audit   audit.Recorder
	now     func() time.Time
}

func NewReconcilePayment(
	repo domain.Repository,
	gateway payment.Gateway,
	audit audit.Recorder,
) *ReconcilePayment {
	return &ReconcilePayment{
		repo:    repo,
		gateway: gateway,
		audit:   audit,
		now:     time.Now,
	}
}

func (uc *ReconcilePayment) Execute(
	ctx context.Context,
	paymentID string,
) (*models.Order, error) {

	res, err := uc.gateway.Lookup(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	var changed bool
	err = uc.repo.WithinTx(ctx, func(repo domain.Repository) error {
		o, err := repo.GetOrderForUpdate(ctx, res.OrderID)
		if err != nil {
			if httperr.IsNotFound(err) {
				return httperr.ErrBusiness("order_not_found")
			}
			return err
		}

		// a settled payment is never downgraded by a late notification
		if o.PaymentStatus == domain.PaymentPaid && res.Status != payment.StatusRefunded && res.Status != payment.StatusChargeback {
			return nil
		}

		next := domain.PaymentStatusFor(res.Status)
		if next == o.PaymentStatus && o.PaymentReference == res.PaymentID {
			return nil
		}

		o.PaymentStatus = next
		o.PaymentReference = res.PaymentID
		if next == domain.PaymentPaid {
			now := uc.now()
			o.PaidAt = &now
			if domain.Status(o.Status) == domain.StatusPending {
				if err := domain.Transition(o, domain.StatusProcessing, now); err != nil {
					return err
				}
			}
		}

		changed = true
		return repo.UpdateOrder(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	o, err := uc.repo.GetOrder(ctx, res.OrderID)
	if err != nil {
		return nil, err
	}

	if changed {
		logging.FromContext(ctx).Info("payment reconciled",
			"order_id", o.ID, "payment_id", res.PaymentID, "payment_status", o.PaymentStatus)

		uc.audit.Dispatch(audit.Event{
			Action:   "order.payment_updated",
			Entity:   "order",
			EntityID: &o.ID,
			Metadata: map[string]any{"payment_id": res.PaymentID, "provider_status": res.Status},
		})
	}

	return o, nil
}
