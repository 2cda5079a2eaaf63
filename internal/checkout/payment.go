package checkout

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrPaymentDeclined is returned by a gateway when a charge is refused.
var ErrPaymentDeclined = errors.New("payment declined")

// PaymentGateway charges the customer. The contract is fallible even
// though the mock implementation is configured to always succeed, so the
// failure branch stays testable and a real provider can slot in.
type PaymentGateway interface {
	Charge(ctx context.Context, amount int64, method string) (txID string, err error)
}

// MockGateway simulates a payment provider with a processing delay and a
// configurable success rate.
type MockGateway struct {
	delay       time.Duration
	successRate float64
	logger      *zap.Logger
}

// NewMockGateway creates a gateway that always succeeds after the given
// delay.
func NewMockGateway(delay time.Duration) *MockGateway {
	return &MockGateway{
		delay:       delay,
		successRate: 1.0,
		logger:      util.GetLogger(),
	}
}

// WithSuccessRate overrides the success rate (0.0 - 1.0).
func (g *MockGateway) WithSuccessRate(rate float64) *MockGateway {
	g.successRate = rate
	return g
}

// Charge simulates processing a payment. No cancellation mid-charge: once
// started it always resolves.
func (g *MockGateway) Charge(ctx context.Context, amount int64, method string) (string, error) {
	ctx, span := util.StartSpan(ctx, "MockGateway.Charge")
	defer span.End()

	util.PaymentAttemptsTotal.Inc()
	start := time.Now()
	defer func() {
		util.PaymentProcessingLatency.Observe(time.Since(start).Seconds())
	}()

	if g.delay > 0 {
		time.Sleep(g.delay)
	}

	if rand.Float64() >= g.successRate {
		util.PaymentFailedTotal.Inc()
		g.logger.Warn("Payment declined",
			zap.Int64("amount", amount),
			zap.String("method", method))
		return "", ErrPaymentDeclined
	}

	txID := fmt.Sprintf("TXN-%s", uuid.New().String()[:8])
	g.logger.Info("Payment processed",
		zap.Int64("amount", amount),
		zap.String("method", method),
		zap.String("tx_id", txID))
	return txID, nil
}
