package order_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/storefront/internal/audit"
	domain "github.com/BruksfildServices01/storefront/internal/domain/order"
	"github.com/BruksfildServices01/storefront/internal/httperr"
	"github.com/BruksfildServices01/storefront/internal/infra/repository"
	"github.com/BruksfildServices01/storefront/internal/mail"
	"github.com/BruksfildServices01/storefront/internal/models"
	"github.com/BruksfildServices01/storefront/internal/payment"
	"github.com/BruksfildServices01/storefront/internal/testutil"
	ucOrder "github.com/BruksfildServices01/storefront/internal/usecase/order"
)

type mailSpy struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (m *mailSpy) Dispatch(msg mail.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
}

type auditSpy struct {
	events []audit.Event
}

func (a *auditSpy) Dispatch(ev audit.Event) {
	a.events = append(a.events, ev)
}

type fakeGateway struct {
	created []payment.CheckoutRequest
	results map[string]*payment.Result
}

func (g *fakeGateway) CreateCheckout(_ context.Context, req payment.CheckoutRequest) (*payment.Checkout, error) {
	g.created = append(g.created, req)
	return &payment.Checkout{PreferenceID: "pref-1", URL: "https://pay.example/pref-1"}, nil
}

func (g *fakeGateway) Lookup(_ context.Context, id string) (*payment.Result, error) {
	r, ok := g.results[id]
	if !ok {
		return nil, payment.ErrDisabled
	}
	return r, nil
}

type fixture struct {
	db      *gorm.DB
	repo    *repository.OrderGormRepository
	mail    *mailSpy
	audit   *auditSpy
	user    models.User
	address models.ShippingAddress
	shirt   models.ProductVariant
	cap     models.ProductVariant
}

func setup(t *testing.T) *fixture {
	t.Helper()
	gdb := testutil.NewDB(t)

	user := testutil.User(t, gdb, "buyer@example.com", models.RoleCustomer, true)
	cat := testutil.Category(t, gdb, "Tops", "tops")
	shirtProduct := testutil.Product(t, gdb, cat.ID, "Linen Shirt", "linen-shirt")
	capProduct := testutil.Product(t, gdb, cat.ID, "Cap", "cap")

	return &fixture{
		db:      gdb,
		repo:    repository.NewOrderGormRepository(gdb),
		mail:    &mailSpy{},
		audit:   &auditSpy{},
		user:    user,
		address: testutil.Address(t, gdb, user.ID, true),
		shirt:   testutil.Variant(t, gdb, shirtProduct.ID, "SHIRT-M", "250000.00", 5),
		cap:     testutil.Variant(t, gdb, capProduct.ID, "CAP-1", "99000.50", 2),
	}
}

func (f *fixture) stock(t *testing.T, id uint) int {
	t.Helper()
	var v models.ProductVariant
	require.NoError(t, f.db.Unscoped().First(&v, id).Error)
	return v.StockQuantity
}

// lockedReads records the tables read with a row lock. The sqlite dialect
// drops the FOR UPDATE text, so the clause is checked on the statement.
func (f *fixture) lockedReads(t *testing.T) *[]string {
	t.Helper()
	var tables []string
	require.NoError(t, f.db.Callback().Query().Before("gorm:query").
		Register("test:locked_reads", func(tx *gorm.DB) {
			if _, ok := tx.Statement.Clauses["FOR"]; ok {
				tables = append(tables, tx.Statement.Table)
			}
		}))
	return &tables
}

func (f *fixture) place(t *testing.T, lines ...domain.Line) (*models.Order, error) {
	t.Helper()
	uc := ucOrder.NewPlaceOrder(f.repo, f.audit, f.mail)
	return uc.Execute(context.Background(), ucOrder.PlaceOrderInput{
		UserID:            f.user.ID,
		ShippingAddressID: f.address.ID,
		Items:             lines,
		Note:              "leave at the door",
	})
}

func TestPlaceOrderComputesTotalsAndReservesStock(t *testing.T) {
	f := setup(t)

	o, err := f.place(t,
		domain.Line{VariantID: f.shirt.ID, Quantity: 1},
		domain.Line{VariantID: f.cap.ID, Quantity: 2},
		domain.Line{VariantID: f.shirt.ID, Quantity: 1},
	)
	require.NoError(t, err)

	assert.Equal(t, "pending", o.Status)
	assert.Equal(t, domain.PaymentUnpaid, o.PaymentStatus)
	require.Len(t, o.Details, 2)

	shirt := o.Details[0]
	assert.Equal(t, f.shirt.ID, shirt.VariantID)
	assert.Equal(t, 2, shirt.Quantity)
	assert.True(t, shirt.Subtotal.Equal(decimal.RequireFromString("500000")))
	assert.True(t, o.Details[1].Subtotal.Equal(decimal.RequireFromString("198001")))
	assert.True(t, o.TotalAmount.Equal(decimal.RequireFromString("698001")))

	assert.Equal(t, 3, f.stock(t, f.shirt.ID))
	assert.Equal(t, 0, f.stock(t, f.cap.ID))

	require.Len(t, f.mail.sent, 1)
	assert.Equal(t, "buyer@example.com", f.mail.sent[0].To)
	require.Len(t, f.audit.events, 1)
	assert.Equal(t, "order.placed", f.audit.events[0].Action)
}

func TestPlaceOrderRollsBackOnInsufficientStock(t *testing.T) {
	f := setup(t)

	_, err := f.place(t,
		domain.Line{VariantID: f.shirt.ID, Quantity: 2},
		domain.Line{VariantID: f.cap.ID, Quantity: 3},
	)
	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, "insufficient_stock"))

	assert.Equal(t, 5, f.stock(t, f.shirt.ID))
	assert.Equal(t, 2, f.stock(t, f.cap.ID))

	var count int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, f.mail.sent)
}

func TestPlaceOrderRejectsForeignAddressAndBadLines(t *testing.T) {
	f := setup(t)

	other := testutil.User(t, f.db, "other@example.com", models.RoleCustomer, true)
	otherAddr := testutil.Address(t, f.db, other.ID, true)

	uc := ucOrder.NewPlaceOrder(f.repo, f.audit, f.mail)
	_, err := uc.Execute(context.Background(), ucOrder.PlaceOrderInput{
		UserID:            f.user.ID,
		ShippingAddressID: otherAddr.ID,
		Items:             []domain.Line{{VariantID: f.shirt.ID, Quantity: 1}},
	})
	assert.True(t, httperr.IsBusiness(err, "address_not_found"))

	_, err = f.place(t)
	assert.True(t, httperr.IsBusiness(err, "empty_order"))

	_, err = f.place(t, domain.Line{VariantID: f.shirt.ID, Quantity: 0})
	assert.True(t, httperr.IsBusiness(err, "invalid_quantity"))

	_, err = f.place(t, domain.Line{VariantID: 9999, Quantity: 1})
	assert.True(t, httperr.IsBusiness(err, "variant_unavailable"))
}

func TestPlaceOrderSkipsInactiveAndDeletedVariants(t *testing.T) {
	f := setup(t)

	require.NoError(t, f.db.Model(&models.ProductVariant{}).
		Where("variant_id = ?", f.cap.ID).Update("is_active", false).Error)
	require.NoError(t, f.db.Delete(&models.ProductVariant{}, f.shirt.ID).Error)

	_, err := f.place(t, domain.Line{VariantID: f.cap.ID, Quantity: 1})
	assert.True(t, httperr.IsBusiness(err, "variant_unavailable"))

	_, err = f.place(t, domain.Line{VariantID: f.shirt.ID, Quantity: 1})
	assert.True(t, httperr.IsBusiness(err, "variant_unavailable"))
}

func TestCancellationRestocks(t *testing.T) {
	f := setup(t)

	o, err := f.place(t, domain.Line{VariantID: f.shirt.ID, Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, 1, f.stock(t, f.shirt.ID))

	uc := ucOrder.NewUpdateStatus(f.repo, f.audit, f.mail)
	cancelled, err := uc.Execute(context.Background(), ucOrder.UpdateStatusInput{
		OrderID: o.ID,
		ActorID: f.user.ID,
		OwnerID: &f.user.ID,
		Status:  domain.StatusCancelled,
	})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, 5, f.stock(t, f.shirt.ID))

	_, err = uc.Execute(context.Background(), ucOrder.UpdateStatusInput{
		OrderID: o.ID,
		ActorID: f.user.ID,
		Status:  domain.StatusProcessing,
	})
	assert.True(t, httperr.IsBusiness(err, "invalid_status_transition"))
	assert.Equal(t, 5, f.stock(t, f.shirt.ID))
}

func TestCustomerCannotCancelProcessingOrSomeoneElsesOrder(t *testing.T) {
	f := setup(t)

	o, err := f.place(t, domain.Line{VariantID: f.shirt.ID, Quantity: 1})
	require.NoError(t, err)

	uc := ucOrder.NewUpdateStatus(f.repo, f.audit, f.mail)

	stranger := uint(9999)
	_, err = uc.Execute(context.Background(), ucOrder.UpdateStatusInput{
		OrderID: o.ID, ActorID: stranger, OwnerID: &stranger, Status: domain.StatusCancelled,
	})
	assert.True(t, httperr.IsBusiness(err, "order_not_found"))

	_, err = uc.Execute(context.Background(), ucOrder.UpdateStatusInput{
		OrderID: o.ID, ActorID: 1, Status: domain.StatusProcessing,
	})
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), ucOrder.UpdateStatusInput{
		OrderID: o.ID, ActorID: f.user.ID, OwnerID: &f.user.ID, Status: domain.StatusCancelled,
	})
	assert.True(t, httperr.IsBusiness(err, "order_not_cancellable"))
}

func TestCheckoutAndReconcile(t *testing.T) {
	f := setup(t)

	o, err := f.place(t, domain.Line{VariantID: f.shirt.ID, Quantity: 2})
	require.NoError(t, err)

	gw := &fakeGateway{results: map[string]*payment.Result{
		"555": {PaymentID: "555", Status: payment.StatusApproved, OrderID: o.ID},
	}}

	checkout := ucOrder.NewCheckout(f.repo, gw, f.audit, ucOrder.CheckoutURLs{
		AppURL:   "https://shop.example/",
		Currency: "VND",
	})
	co, err := checkout.Execute(context.Background(), ucOrder.CheckoutInput{OrderID: o.ID, UserID: f.user.ID})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/pref-1", co.URL)

	require.Len(t, gw.created, 1)
	req := gw.created[0]
	assert.Equal(t, "https://shop.example/api/payments/webhook", req.NotificationURL)
	assert.Equal(t, "buyer@example.com", req.PayerEmail)
	require.Len(t, req.Items, 1)
	assert.Equal(t, "Linen Shirt (SHIRT-M)", req.Items[0].Title)
	assert.Equal(t, 2, req.Items[0].Quantity)

	reconcile := ucOrder.NewReconcilePayment(f.repo, gw, f.audit)
	paid, err := reconcile.Execute(context.Background(), "555")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, paid.PaymentStatus)
	assert.Equal(t, "processing", paid.Status)
	assert.NotNil(t, paid.PaidAt)

	again, err := reconcile.Execute(context.Background(), "555")
	require.NoError(t, err)
	assert.Equal(t, "processing", again.Status)

	_, err = checkout.Execute(context.Background(), ucOrder.CheckoutInput{OrderID: o.ID, UserID: f.user.ID})
	assert.True(t, httperr.IsBusiness(err, "order_not_payable"))
}

func TestStatusChangeLocksTheOrder(t *testing.T) {
	f := setup(t)

	o, err := f.place(t, domain.Line{VariantID: f.shirt.ID, Quantity: 2})
	require.NoError(t, err)

	locked := f.lockedReads(t)
	uc := ucOrder.NewUpdateStatus(f.repo, f.audit, f.mail)
	_, err = uc.Execute(context.Background(), ucOrder.UpdateStatusInput{
		OrderID: o.ID, ActorID: f.user.ID, OwnerID: &f.user.ID, Status: domain.StatusCancelled,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"orders"}, *locked)

	// a second cancel sees the committed status and restocks nothing
	_, err = uc.Execute(context.Background(), ucOrder.UpdateStatusInput{
		OrderID: o.ID, ActorID: f.user.ID, OwnerID: &f.user.ID, Status: domain.StatusCancelled,
	})
	assert.True(t, httperr.IsBusiness(err, "order_not_cancellable"))
	assert.Equal(t, 5, f.stock(t, f.shirt.ID))
}

func TestReconcileLocksTheOrder(t *testing.T) {
	f := setup(t)

	o, err := f.place(t, domain.Line{VariantID: f.cap.ID, Quantity: 1})
	require.NoError(t, err)

	gw := &fakeGateway{results: map[string]*payment.Result{
		"777": {PaymentID: "777", Status: payment.StatusApproved, OrderID: o.ID},
	}}

	locked := f.lockedReads(t)
	_, err = ucOrder.NewReconcilePayment(f.repo, gw, f.audit).Execute(context.Background(), "777")
	require.NoError(t, err)
	assert.Equal(t, []string{"orders"}, *locked)
}
