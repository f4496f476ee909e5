package payment

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mercadopago/sdk-go/pkg/config"
	mppayment "github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"
)

type MercadoPago struct {
	preferences preference.Client
	payments    mppayment.Client
	sandbox     bool
}

func NewMercadoPago(accessToken string, sandbox bool) (*MercadoPago, error) {
	cfg, err := config.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}

	return &MercadoPago{
		preferences: preference.NewClient(cfg),
		payments:    mppayment.NewClient(cfg),
		sandbox:     sandbox,
	}, nil
}

func (m *MercadoPago) CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error) {
	items := make([]preference.ItemRequest, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, preference.ItemRequest{
			Title:      it.Title,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice.InexactFloat64(),
			CurrencyID: req.Currency,
		})
	}

	request := preference.Request{
		Items:             items,
		ExternalReference: ExternalReference(req.OrderID),
		NotificationURL:   req.NotificationURL,
		Payer: &preference.PayerRequest{
			Email: req.PayerEmail,
		},
		BackURLs: &preference.BackURLsRequest{
			Success: req.SuccessURL,
			Failure: req.FailureURL,
			Pending: req.PendingURL,
		},
		AutoReturn: "approved",
	}

	res, err := m.preferences.Create(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("create preference: %w", err)
	}

	url := res.InitPoint
	if m.sandbox && res.SandboxInitPoint != "" {
		url = res.SandboxInitPoint
	}

	return &Checkout{PreferenceID: res.ID, URL: url}, nil
}

func (m *MercadoPago) Lookup(ctx context.Context, paymentID string) (*Result, error) {
	id, err := strconv.Atoi(paymentID)
	if err != nil {
		return nil, fmt.Errorf("invalid payment id %q", paymentID)
	}

	res, err := m.payments.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get payment %d: %w", id, err)
	}

	orderID, err := ParseExternalReference(res.ExternalReference)
	if err != nil {
		return nil, err
	}

	return &Result{
		PaymentID: strconv.Itoa(res.ID),
		Status:    res.Status,
		OrderID:   orderID,
	}, nil
}
