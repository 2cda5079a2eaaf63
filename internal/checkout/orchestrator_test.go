package checkout

import (
	"context"
	"testing"

	"storefront-service/internal/account"
	"storefront-service/internal/cart"
	"storefront-service/internal/models"
	"storefront-service/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	placed []*models.OrderPlacedEvent
	failed []*models.PaymentFailedEvent
}

func (p *recordingPublisher) PublishOrderPlaced(_ context.Context, event *models.OrderPlacedEvent) error {
	p.placed = append(p.placed, event)
	return nil
}

func (p *recordingPublisher) PublishPaymentFailed(_ context.Context, event *models.PaymentFailedEvent) error {
	p.failed = append(p.failed, event)
	return nil
}

func (p *recordingPublisher) PublishUserSignedUp(context.Context, *models.UserSignedUpEvent) error {
	return nil
}

type fixture struct {
	cart         *cart.Engine
	account      *account.Engine
	orchestrator *Orchestrator
	publisher    *recordingPublisher
	gateway      *MockGateway
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := storage.NewMemStore()
	cartEngine := cart.NewEngine(store)
	accountEngine := account.NewEngine(store, 0)
	publisher := &recordingPublisher{}
	gateway := NewMockGateway(0)

	return &fixture{
		cart:         cartEngine,
		account:      accountEngine,
		orchestrator: NewOrchestrator(cartEngine, accountEngine, gateway, publisher, DefaultPricing()),
		publisher:    publisher,
		gateway:      gateway,
	}
}

func palliChekkalu() *models.Product {
	return &models.Product{
		ID:       "palli-chekkalu",
		Slug:     "palli-chekkalu",
		Category: "snacks",
		Name:     "PALLI CHEKKALU",
		Variants: []models.Variant{
			{Weight: "250g", Price: 180, Stock: 50},
		},
	}
}

func (f *fixture) loginAndFill(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	_, err := f.account.Login(ctx, "demo@vamifoods.com", "demo123")
	require.NoError(t, err)
	require.NoError(t, f.cart.Add(ctx, palliChekkalu(), "250g", 2))
}

func TestPlaceOrderEndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.loginAndFill(t)

	state := f.cart.State()
	assert.Equal(t, int64(360), state.Total)
	assert.Equal(t, 2, state.ItemCount)

	flow := f.orchestrator.NewFlow()
	assert.Equal(t, "1", flow.AddressID(), "default address preselected")

	quote, err := f.orchestrator.ApplyCoupon(flow, "WELCOME10")
	require.NoError(t, err)
	assert.Equal(t, int64(36), quote.Discount)

	result := f.orchestrator.PlaceOrder(ctx, flow)
	require.True(t, result.Placed(), "expected order to be placed: %s", result.Message)

	order := result.Order
	assert.Equal(t, int64(360+50+65-36), order.Total)
	assert.Equal(t, models.OrderStatusConfirmed, order.Status)
	assert.Equal(t, "UPI", order.PaymentMethod)
	assert.Contains(t, order.ID, "ORD")
	assert.Contains(t, order.TrackingNumber, "VF")
	require.Len(t, order.Items, 1)
	assert.Equal(t, "palli-chekkalu", order.Items[0].ProductID)
	assert.Equal(t, 2, order.Items[0].Quantity)

	// Newest-first on the account, cart cleared afterwards.
	user := f.account.Current()
	require.NotEmpty(t, user.Orders)
	assert.Equal(t, order.ID, user.Orders[0].ID)
	assert.Empty(t, f.cart.State().Items)

	require.Len(t, f.publisher.placed, 1)
	assert.Equal(t, order.ID, f.publisher.placed[0].OrderID)
}

func TestPlaceOrderRequiresAuthentication(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.cart.Add(ctx, palliChekkalu(), "250g", 1))

	result := f.orchestrator.PlaceOrder(ctx, f.orchestrator.NewFlow())
	assert.False(t, result.Placed())
	assert.Equal(t, FailureNotAuthenticated, result.Failure)
	assert.NotEmpty(t, f.cart.State().Items, "cart must survive a blocked checkout")
}

func TestPlaceOrderRequiresNonEmptyCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.account.Login(ctx, "demo@vamifoods.com", "demo123")
	require.NoError(t, err)

	result := f.orchestrator.PlaceOrder(ctx, f.orchestrator.NewFlow())
	assert.False(t, result.Placed())
	assert.Equal(t, FailureEmptyCart, result.Failure)
}

func TestPlaceOrderRequiresSelectedAddress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Fresh signup has no saved addresses, so nothing is preselected.
	_, err := f.account.Signup(ctx, "New User", "new@example.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, f.cart.Add(ctx, palliChekkalu(), "250g", 1))

	result := f.orchestrator.PlaceOrder(ctx, f.orchestrator.NewFlow())
	assert.False(t, result.Placed())
	assert.Equal(t, FailureNoAddress, result.Failure)
	assert.Equal(t, "Please select a delivery address", result.Message)
}

func TestPlaceOrderPaymentDeclined(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.loginAndFill(t)
	f.gateway.WithSuccessRate(0)

	ordersBefore := len(f.account.Current().Orders)

	result := f.orchestrator.PlaceOrder(ctx, f.orchestrator.NewFlow())
	assert.False(t, result.Placed())
	assert.Equal(t, FailurePaymentDeclined, result.Failure)

	// No order recorded, cart untouched, failure event published.
	assert.Len(t, f.account.Current().Orders, ordersBefore)
	assert.NotEmpty(t, f.cart.State().Items)
	assert.Len(t, f.publisher.failed, 1)
}

func TestApplyCouponInvalidCodeLeavesFlowUnchanged(t *testing.T) {
	f := newFixture(t)
	f.loginAndFill(t)

	flow := f.orchestrator.NewFlow()
	_, err := f.orchestrator.ApplyCoupon(flow, "BOGUS")
	assert.ErrorIs(t, err, ErrInvalidCoupon)
	assert.Zero(t, flow.Discount())
}

func TestQuoteForRecomputesFromCurrentCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.loginAndFill(t)

	flow := f.orchestrator.NewFlow()
	first := f.orchestrator.QuoteFor(flow)
	assert.Equal(t, int64(360), first.Subtotal)

	require.NoError(t, f.cart.Add(ctx, palliChekkalu(), "250g", 1))
	second := f.orchestrator.QuoteFor(flow)
	assert.Equal(t, int64(540), second.Subtotal)
	assert.Equal(t, int64(0), second.Shipping, "subtotal over threshold ships free")
}
