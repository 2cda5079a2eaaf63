package checkout

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidCoupon is returned for codes missing from the coupon table.
// The source of this storefront swallowed unknown codes silently; an
// explicit signal lets the caller tell the customer.
var ErrInvalidCoupon = errors.New("invalid coupon code")

// PricingConfig holds the charge rules applied on top of the cart
// subtotal.
type PricingConfig struct {
	FreeShippingThreshold int64
	ShippingFee           int64
	TaxRate               float64
}

// DefaultPricing matches the storefront's published rules: free shipping
// above 500, flat 50 otherwise, 18% tax.
func DefaultPricing() PricingConfig {
	return PricingConfig{
		FreeShippingThreshold: 500,
		ShippingFee:           50,
		TaxRate:               0.18,
	}
}

// Quote is the charge breakdown for the current cart and discount.
type Quote struct {
	Subtotal int64 `json:"subtotal"`
	Shipping int64 `json:"shipping"`
	Tax      int64 `json:"tax"`
	Discount int64 `json:"discount"`
	Total    int64 `json:"total"`
}

// Price computes the quote for a subtotal and discount. Pure; recomputed
// on every read from current cart state.
func (c PricingConfig) Price(subtotal, discount int64) Quote {
	shipping := c.ShippingFee
	if subtotal > c.FreeShippingThreshold {
		shipping = 0
	}

	tax := decimal.NewFromInt(subtotal).
		Mul(decimal.NewFromFloat(c.TaxRate)).
		Round(0).
		IntPart()

	return Quote{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Discount: discount,
		Total:    subtotal + shipping + tax - discount,
	}
}

type couponKind int

const (
	couponPercent couponKind = iota
	couponFlat
)

type couponRule struct {
	kind  couponKind
	value int64
}

// Fixed coupon table. Codes are matched case-insensitively.
var coupons = map[string]couponRule{
	"welcome10": {kind: couponPercent, value: 10},
	"first50":   {kind: couponFlat, value: 50},
}

// CouponDiscount resolves a coupon code against the subtotal. Percentage
// coupons round to whole rupees.
func CouponDiscount(code string, subtotal int64) (int64, error) {
	rule, ok := coupons[strings.ToLower(strings.TrimSpace(code))]
	if !ok {
		return 0, ErrInvalidCoupon
	}

	switch rule.kind {
	case couponPercent:
		discount := decimal.NewFromInt(subtotal).
			Mul(decimal.NewFromInt(rule.value)).
			Div(decimal.NewFromInt(100)).
			Round(0).
			IntPart()
		return discount, nil
	default:
		return rule.value, nil
	}
}

// MethodLabel maps a payment method key to its customer-facing label.
func MethodLabel(method string) string {
	switch method {
	case "upi":
		return "UPI"
	case "card":
		return "Credit/Debit Card"
	case "netbanking":
		return "Net Banking"
	default:
		return method
	}
}
