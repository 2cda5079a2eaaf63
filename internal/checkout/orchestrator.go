package checkout

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"storefront-service/internal/account"
	"storefront-service/internal/broker"
	"storefront-service/internal/cart"
	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FailureReason discriminates why an order could not be placed.
type FailureReason string

const (
	FailureNotAuthenticated  FailureReason = "not_authenticated"
	FailureEmptyCart         FailureReason = "empty_cart"
	FailureNoAddress         FailureReason = "no_address"
	FailurePaymentDeclined   FailureReason = "payment_declined"
	FailureAlreadyProcessing FailureReason = "already_processing"
)

// PlaceOrderResult is the outcome of a place-order attempt. Exactly one
// of Order or Failure is set.
type PlaceOrderResult struct {
	Order   *models.Order
	Quote   Quote
	Failure FailureReason
	Message string
}

// Placed reports whether the order was committed.
func (r *PlaceOrderResult) Placed() bool {
	return r.Order != nil
}

func blocked(reason FailureReason, message string) *PlaceOrderResult {
	util.OrdersBlockedTotal.WithLabelValues(string(reason)).Inc()
	return &PlaceOrderResult{Failure: reason, Message: message}
}

// Orchestrator coordinates the checkout flow across the cart and account
// engines: it validates preconditions, charges the gateway, commits the
// order and resets the cart.
type Orchestrator struct {
	cart       *cart.Engine
	account    *account.Engine
	gateway    PaymentGateway
	publisher  broker.Publisher
	pricing    PricingConfig
	logger     *zap.Logger
	processing atomic.Bool
}

// NewOrchestrator wires a checkout orchestrator.
func NewOrchestrator(
	cartEngine *cart.Engine,
	accountEngine *account.Engine,
	gateway PaymentGateway,
	publisher broker.Publisher,
	pricing PricingConfig,
) *Orchestrator {
	return &Orchestrator{
		cart:      cartEngine,
		account:   accountEngine,
		gateway:   gateway,
		publisher: publisher,
		pricing:   pricing,
		logger:    util.GetLogger(),
	}
}

// NewFlow starts a checkout flow with the user's default address
// preselected, when one exists.
func (o *Orchestrator) NewFlow() *Flow {
	defaultAddressID := ""
	if user := o.account.Current(); user != nil {
		if addr := user.DefaultAddress(); addr != nil {
			defaultAddressID = addr.ID
		}
	}
	return NewFlow(defaultAddressID)
}

// QuoteFor prices the current cart against the flow's discount.
func (o *Orchestrator) QuoteFor(flow *Flow) Quote {
	state := o.cart.State()
	return o.pricing.Price(state.Total, flow.Discount())
}

// ApplyCoupon resolves the code against the current subtotal and records
// the discount on the flow. Unknown codes return ErrInvalidCoupon and
// leave the flow unchanged.
func (o *Orchestrator) ApplyCoupon(flow *Flow, code string) (Quote, error) {
	state := o.cart.State()
	discount, err := CouponDiscount(code, state.Total)
	if err != nil {
		return o.pricing.Price(state.Total, flow.Discount()), err
	}

	flow.ApplyDiscount(code, discount)
	util.CouponsAppliedTotal.WithLabelValues(code).Inc()
	o.logger.Info("Coupon applied",
		zap.String("code", code),
		zap.Int64("discount", discount))
	return o.pricing.Price(state.Total, discount), nil
}

// IsProcessing reports whether a place-order attempt is in flight.
func (o *Orchestrator) IsProcessing() bool {
	return o.processing.Load()
}

// PlaceOrder commits the checkout: it verifies the preconditions, charges
// the gateway, records the order on the account and only then clears the
// cart, so a failed commit never loses the in-flight order data.
func (o *Orchestrator) PlaceOrder(ctx context.Context, flow *Flow) *PlaceOrderResult {
	ctx, span := util.StartSpan(ctx, "Orchestrator.PlaceOrder")
	defer span.End()

	if !o.processing.CompareAndSwap(false, true) {
		return blocked(FailureAlreadyProcessing, "An order is already being placed")
	}
	defer o.processing.Store(false)

	user := o.account.Current()
	if user == nil {
		return blocked(FailureNotAuthenticated, "Sign in to place your order")
	}

	state := o.cart.State()
	if len(state.Items) == 0 {
		return blocked(FailureEmptyCart, "Your cart is empty")
	}

	addr := user.AddressByID(flow.AddressID())
	if addr == nil {
		return blocked(FailureNoAddress, "Please select a delivery address")
	}

	quote := o.pricing.Price(state.Total, flow.Discount())
	method := MethodLabel(flow.PaymentMethod())

	txID, err := o.gateway.Charge(ctx, quote.Total, flow.PaymentMethod())
	if err != nil {
		o.logger.Warn("Payment failed during checkout",
			zap.String("user_id", user.ID),
			zap.Int64("amount", quote.Total),
			zap.Error(err))
		o.publishPaymentFailed(ctx, user.ID, quote.Total, err)
		return blocked(FailurePaymentDeclined, "Payment failed. Please try again.")
	}

	lines := make([]models.OrderLine, 0, len(state.Items))
	for _, item := range state.Items {
		lines = append(lines, models.OrderLine{
			ProductID:   item.Product.ID,
			ProductName: item.Product.Name,
			Variant:     item.Variant,
			Quantity:    item.Quantity,
			Price:       item.Price,
		})
	}

	order := models.Order{
		Status:         models.OrderStatusConfirmed,
		Items:          lines,
		Total:          quote.Total,
		Address:        *addr,
		PaymentMethod:  method,
		TrackingNumber: fmt.Sprintf("VF%d", time.Now().UnixMilli()),
		Notes:          flow.Notes(),
	}

	// The order must be durably recorded before the cart is cleared.
	placed := o.account.AddOrder(ctx, order)
	if placed == nil {
		return blocked(FailureNotAuthenticated, "Sign in to place your order")
	}
	o.cart.Clear(ctx)

	util.OrdersPlacedTotal.Inc()
	o.logger.Info("Order placed",
		zap.String("order_id", placed.ID),
		zap.String("tx_id", txID),
		zap.Int64("total", placed.Total))

	o.publishOrderPlaced(ctx, user.ID, placed)

	return &PlaceOrderResult{Order: placed, Quote: quote}
}

func (o *Orchestrator) publishOrderPlaced(ctx context.Context, userID string, order *models.Order) {
	event := &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderPlaced,
			Timestamp: time.Now(),
		},
		OrderID:        order.ID,
		UserID:         userID,
		Total:          order.Total,
		PaymentMethod:  order.PaymentMethod,
		TrackingNumber: order.TrackingNumber,
		Items:          order.Items,
	}
	if err := o.publisher.PublishOrderPlaced(ctx, event); err != nil {
		o.logger.Error("Failed to publish OrderPlaced event", zap.Error(err))
	}
}

func (o *Orchestrator) publishPaymentFailed(ctx context.Context, userID string, amount int64, cause error) {
	event := &models.PaymentFailedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypePaymentFailed,
			Timestamp: time.Now(),
		},
		UserID: userID,
		Amount: amount,
		Reason: cause.Error(),
	}
	if err := o.publisher.PublishPaymentFailed(ctx, event); err != nil {
		o.logger.Error("Failed to publish PaymentFailed event", zap.Error(err))
	}
}
