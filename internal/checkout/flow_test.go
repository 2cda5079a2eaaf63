package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlowStartsAtAddressStep(t *testing.T) {
	flow := NewFlow("")
	assert.Equal(t, StepAddress, flow.Step())
}

func TestFlowPreselectsDefaultAddress(t *testing.T) {
	flow := NewFlow("addr-1")
	assert.Equal(t, "addr-1", flow.AddressID())
}

func TestAdvanceRequiresAddress(t *testing.T) {
	flow := NewFlow("")

	err := flow.Advance()
	assert.ErrorIs(t, err, ErrAddressRequired)
	assert.Equal(t, StepAddress, flow.Step())

	flow.SelectAddress("addr-1")
	require.NoError(t, flow.Advance())
	assert.Equal(t, StepPayment, flow.Step())
}

func TestAdvanceWalksAllSteps(t *testing.T) {
	flow := NewFlow("addr-1")

	require.NoError(t, flow.Advance())
	assert.Equal(t, StepPayment, flow.Step())

	flow.SelectPayment("card")
	require.NoError(t, flow.Advance())
	assert.Equal(t, StepReview, flow.Step())

	// Review is the last stage; advancing again stays put.
	require.NoError(t, flow.Advance())
	assert.Equal(t, StepReview, flow.Step())
}

func TestBackPreservesLaterSelections(t *testing.T) {
	flow := NewFlow("addr-1")
	require.NoError(t, flow.Advance())
	flow.SelectPayment("netbanking")
	require.NoError(t, flow.Advance())

	flow.Back()
	flow.Back()
	assert.Equal(t, StepAddress, flow.Step())
	assert.Equal(t, "netbanking", flow.PaymentMethod())
	assert.Equal(t, "addr-1", flow.AddressID())

	// Backing past the first step stays put.
	flow.Back()
	assert.Equal(t, StepAddress, flow.Step())
}

func TestApplyDiscountRecordsCode(t *testing.T) {
	flow := NewFlow("")
	flow.ApplyDiscount("WELCOME10", 36)
	assert.Equal(t, int64(36), flow.Discount())
}
