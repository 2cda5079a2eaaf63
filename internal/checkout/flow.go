package checkout

import (
	"errors"
	"sync"
)

// Step is a stage of the checkout flow.
type Step int

const (
	StepAddress Step = iota + 1
	StepPayment
	StepReview
)

var (
	// ErrAddressRequired blocks advancing past the address step without
	// a selection.
	ErrAddressRequired = errors.New("select a delivery address")

	// ErrPaymentMethodRequired blocks advancing past the payment step
	// without a selection.
	ErrPaymentMethodRequired = errors.New("select a payment method")
)

// Flow is one checkout instance: a linear three-stage state machine.
// Transitions are forward-only; moving back never discards later-stage
// selections.
type Flow struct {
	mu            sync.Mutex
	step          Step
	addressID     string
	paymentMethod string
	couponCode    string
	discount      int64
	notes         string
}

// NewFlow starts a checkout at the address step. The default address, if
// any, is preselected.
func NewFlow(defaultAddressID string) *Flow {
	return &Flow{
		step:          StepAddress,
		addressID:     defaultAddressID,
		paymentMethod: "upi",
	}
}

// Step returns the current stage.
func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// SelectAddress records the chosen delivery address.
func (f *Flow) SelectAddress(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addressID = id
}

// AddressID returns the selected address id, empty if none.
func (f *Flow) AddressID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addressID
}

// SelectPayment records the chosen payment method key.
func (f *Flow) SelectPayment(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paymentMethod = method
}

// PaymentMethod returns the selected payment method key.
func (f *Flow) PaymentMethod() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paymentMethod
}

// SetNotes records free-form order notes.
func (f *Flow) SetNotes(notes string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notes = notes
}

// Notes returns the order notes.
func (f *Flow) Notes() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.notes
}

// ApplyDiscount records the resolved coupon code and discount amount.
func (f *Flow) ApplyDiscount(code string, discount int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.couponCode = code
	f.discount = discount
}

// Discount returns the applied discount amount.
func (f *Flow) Discount() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.discount
}

// Advance moves one step forward. Each step requires its selection before
// the flow moves on; steps cannot be skipped.
func (f *Flow) Advance() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.step {
	case StepAddress:
		if f.addressID == "" {
			return ErrAddressRequired
		}
		f.step = StepPayment
	case StepPayment:
		if f.paymentMethod == "" {
			return ErrPaymentMethodRequired
		}
		f.step = StepReview
	case StepReview:
		// terminal within the flow; PlaceOrder ends it
	}
	return nil
}

// Back moves one step backward, keeping all selections.
func (f *Flow) Back() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step > StepAddress {
		f.step--
	}
}
