package order

import (
	"context"
	"fmt"
	"strings"

	"github.com/BruksfildServices01/storefront/internal/audit"
	domain "github.com/BruksfildServices01/storefront/internal/domain/order"
	"github.com/BruksfildServices01/storefront/internal/httperr"
	"github.com/BruksfildServices01/storefront/internal/payment"
)

type CheckoutInput struct {
	OrderID uint
	UserID  uint
}

type CheckoutURLs struct {
	AppURL   string
	Currency string
}

type Checkout struct {
	repo    domain.Repository
	gateway payment.Gateway
	audit   audit.Recorder
	urls    CheckoutURLs
}

func NewCheckout(
	repo domain.Repository,
	gateway payment.Gateway,
	audit audit.Recorder,
	urls CheckoutURLs,
) *Checkout {
	return &Checkout{
		repo:    repo,
		gateway: gateway,
		audit:   audit,
		urls:    urls,
	}
}

func (uc *Checkout) Execute(
	ctx context.Context,
	in CheckoutInput,
) (*payment.Checkout, error) {

	o, err := uc.repo.GetOrderForUser(ctx, in.OrderID, in.UserID)
	if err != nil {
		if httperr.IsNotFound(err) {
			return nil, httperr.ErrBusiness("order_not_found")
		}
		return nil, err
	}

	if !domain.CanCheckout(domain.Status(o.Status), o.PaymentStatus) {
		return nil, httperr.ErrBusinessf("order_not_payable", "This order can no longer be paid.")
	}

	items := make([]payment.Item, 0, len(o.Details))
	for _, d := range o.Details {
		title := fmt.Sprintf("Item #%d", d.VariantID)
		if d.Variant != nil {
			title = d.Variant.SKU
			if d.Variant.Product != nil {
				title = d.Variant.Product.Name + " (" + d.Variant.SKU + ")"
			}
		}
		items = append(items, payment.Item{
			Title:     title,
			Quantity:  d.Quantity,
			UnitPrice: d.UnitPrice,
		})
	}

	payerEmail := ""
	if o.User != nil {
		payerEmail = o.User.Email
	}

	base := strings.TrimRight(uc.urls.AppURL, "/")
	orderURL := fmt.Sprintf("%s/orders/%d", base, o.ID)

	co, err := uc.gateway.CreateCheckout(ctx, payment.CheckoutRequest{
		OrderID:         o.ID,
		PayerEmail:      payerEmail,
		Currency:        uc.urls.Currency,
		Items:           items,
		SuccessURL:      orderURL + "?payment=success",
		FailureURL:      orderURL + "?payment=failure",
		PendingURL:      orderURL + "?payment=pending",
		NotificationURL: base + "/api/payments/webhook",
	})
	if err != nil {
		return nil, err
	}

	o.PaymentStatus = domain.PaymentPending
	o.PaymentReference = co.PreferenceID
	if err := uc.repo.UpdateOrder(ctx, o); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &in.UserID,
		Action:   "order.checkout_started",
		Entity:   "order",
		EntityID: &o.ID,
		Metadata: map[string]any{"preference_id": co.PreferenceID},
	})

	return co, nil
}
