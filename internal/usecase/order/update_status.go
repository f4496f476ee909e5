package order

import (
	"context"
	"time"

	"github.com/BruksfildServices01/storefront/internal/audit"
	domain "github.com/BruksfildServices01/storefront/internal/domain/order"
	"github.com/BruksfildServices01/storefront/internal/httperr"
	"github.com/BruksfildServices01/storefront/internal/mail"
	"github.com/BruksfildServices01/storefront/internal/models"
)

type UpdateStatusInput struct {
	OrderID uint
	ActorID uint
	Status  domain.Status

	// OwnerID restricts the change to the customer's own orders, with the
	// customer cancellation rules.
	OwnerID *uint
}

type UpdateStatus struct {
	repo  domain.Repository
	audit audit.Recorder
	mail  MailQueue
	now   func() time.Time
}

func NewUpdateStatus(
	repo domain.Repository,
	audit audit.Recorder,
	mail MailQueue,
) *UpdateStatus {
	return &UpdateStatus{
		repo:  repo,
		audit: audit,
		mail:  mail,
		now:   time.Now,
	}
}

func (uc *UpdateStatus) Execute(
	ctx context.Context,
	in UpdateStatusInput,
) (*models.Order, error) {

	var from string
	err := uc.repo.WithinTx(ctx, func(repo domain.Repository) error {
		o, err := repo.GetOrderForUpdate(ctx, in.OrderID)
		if err != nil {
			if httperr.IsNotFound(err) {
				return httperr.ErrBusiness("order_not_found")
			}
			return err
		}
		if in.OwnerID != nil && o.UserID != *in.OwnerID {
			return httperr.ErrBusiness("order_not_found")
		}

		if in.OwnerID != nil {
			if err := domain.CanCustomerCancel(domain.Status(o.Status)); err != nil {
				return err
			}
		}

		from = o.Status
		if err := domain.Transition(o, in.Status, uc.now()); err != nil {
			return err
		}

		if domain.ReleasesStock(in.Status) {
			for _, d := range o.Details {
				if err := repo.IncrementStock(ctx, d.VariantID, d.Quantity); err != nil {
					return err
				}
			}
		}

		return repo.UpdateOrder(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	o, err := uc.repo.GetOrder(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &in.ActorID,
		Action:   "order.status_changed",
		Entity:   "order",
		EntityID: &o.ID,
		Metadata: map[string]any{"from": from, "to": o.Status},
	})

	if o.User != nil {
		uc.mail.Dispatch(mail.OrderStatusChanged(o.User.Email, o.User.Name, o.ID, o.Status))
	}

	return o, nil
}
