package order

import (
	"context"
	"fmt"
	"time"

	"github.com/BruksfildServices01/storefront/internal/audit"
	domain "github.com/BruksfildServices01/storefront/internal/domain/order"
	"github.com/BruksfildServices01/storefront/internal/httperr"
	"github.com/BruksfildServices01/storefront/internal/logging"
	"github.com/BruksfildServices01/storefront/internal/mail"
	"github.com/BruksfildServices01/storefront/internal/metrics"
	"github.com/BruksfildServices01/storefront/internal/models"
)

// MailQueue is satisfied by *mail.Dispatcher.
type MailQueue interface {
	Dispatch(msg mail.Message)
}

// ======================================================
// INPUT
// ======================================================

type PlaceOrderInput struct {
	UserID            uint
	ShippingAddressID uint
	Items             []domain.Line
	Note              string
}

// ======================================================
// USE CASE
// ======================================================

type PlaceOrder struct {
	repo  domain.Repository
	audit audit.Recorder
	mail  MailQueue
	now   func() time.Time
}

func NewPlaceOrder(
	repo domain.Repository,
	audit audit.Recorder,
	mail MailQueue,
) *PlaceOrder {
	return &PlaceOrder{
		repo:  repo,
		audit: audit,
		mail:  mail,
		now:   time.Now,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *PlaceOrder) Execute(
	ctx context.Context,
	in PlaceOrderInput,
) (*models.Order, error) {

	lines := domain.MergeLines(in.Items)
	if len(lines) == 0 {
		return nil, httperr.ErrBusinessf("empty_order", "The order must contain at least one item.")
	}
	for _, l := range lines {
		if l.Quantity < 1 {
			return nil, httperr.ErrBusinessf("invalid_quantity", "Quantities must be at least 1.")
		}
	}

	var orderID uint
	err := uc.repo.WithinTx(ctx, func(repo domain.Repository) error {

		// --------------------------------------------------
		// 1. Address must belong to the customer
		// --------------------------------------------------
		addr, err := repo.GetAddressForUser(ctx, in.ShippingAddressID, in.UserID)
		if err != nil {
			if httperr.IsNotFound(err) {
				return httperr.ErrBusinessf("address_not_found", "The selected shipping address is invalid.")
			}
			return err
		}

		// --------------------------------------------------
		// 2. Reserve stock and snapshot prices
		// --------------------------------------------------
		details := make([]models.OrderDetail, 0, len(lines))
		for _, l := range lines {
			v, err := repo.GetOrderableVariant(ctx, l.VariantID)
			if err != nil {
				if httperr.IsNotFound(err) {
					return httperr.ErrBusinessf("variant_unavailable", "Variant %d is not available.", l.VariantID)
				}
				return err
			}

			ok, err := repo.DecrementStock(ctx, v.ID, l.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return httperr.ErrBusinessf("insufficient_stock", "Not enough stock for %s.", v.SKU)
			}

			details = append(details, domain.NewDetail(v, l.Quantity))
		}

		// --------------------------------------------------
		// 3. Persist order and lines
		// --------------------------------------------------
		o := &models.Order{
			UserID:            in.UserID,
			ShippingAddressID: addr.ID,
			Status:            string(domain.InitialStatus()),
			PaymentStatus:     domain.PaymentUnpaid,
			TotalAmount:       domain.Total(details),
			Note:              in.Note,
			Details:           details,
		}
		if err := repo.CreateOrder(ctx, o); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		orderID = o.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	o, err := uc.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	metrics.OrdersPlaced.Inc()
	logging.FromContext(ctx).Info("order placed", "order_id", o.ID, "total", o.TotalAmount.String())

	uc.audit.Dispatch(audit.Event{
		UserID:   &in.UserID,
		Action:   "order.placed",
		Entity:   "order",
		EntityID: &o.ID,
		Metadata: map[string]any{"total_amount": o.TotalAmount.String(), "lines": len(o.Details)},
	})

	if o.User != nil {
		uc.mail.Dispatch(mail.OrderPlaced(o.User.Email, o.User.Name, o.ID, o.TotalAmount.StringFixed(2)))
	}

	return o, nil
}
