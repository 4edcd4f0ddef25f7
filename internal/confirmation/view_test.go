package confirmation

import (
	"testing"

	"zignasa/internal/handoff"
	"zignasa/internal/verification"

	"github.com/stretchr/testify/assert"
)

func TestNewView_Verified(t *testing.T) {
	v := NewView(Outcome{
		State: StateVerified,
		Data: &verification.Data{
			TeamID: 42, TeamName: "Byte Bandits", Domain: "Web Dev", MemberCount: 3,
			PaymentID: "pay_ABCDEFGHIJKLMNOP", Amount: 60000,
		},
	})

	assert.Equal(t, "Byte Bandits", v.TeamName)
	assert.Equal(t, "Web Dev", v.Domain)
	assert.Equal(t, "3", v.MemberCount)
	assert.Equal(t, "₹600.00", v.Amount)
	assert.Equal(t, "42", v.TeamID)
	assert.Equal(t, "pay_ABCDEFGHIJ…", v.PaymentID)
	assert.False(t, v.Loading)
}

func TestNewView_FallsBackToHandoffThenNA(t *testing.T) {
	v := NewView(Outcome{
		State:   StateVerified,
		Data:    &verification.Data{PaymentID: "P1"},
		Handoff: &handoff.Handoff{TeamID: 7, TeamName: "Null Pointers", MemberCount: 2},
	})

	assert.Equal(t, "Null Pointers", v.TeamName)
	assert.Equal(t, "N/A", v.Domain)
	assert.Equal(t, "2", v.MemberCount)
	assert.Equal(t, "N/A", v.Amount)
	assert.Equal(t, "7", v.TeamID)
	assert.Equal(t, "P1", v.PaymentID)

	empty := NewView(Outcome{State: StateVerified})
	assert.Equal(t, "N/A", empty.TeamName)
	assert.Equal(t, "N/A", empty.MemberCount)
	assert.Equal(t, "N/A", empty.PaymentID)
}

func TestNewView_FailedShowsIdentifiers(t *testing.T) {
	v := NewView(Outcome{
		State:   StateFailed,
		Message: "Invalid payment signature",
		Params:  Params{OrderID: "order_1", PaymentID: "pay_1234567890abcdef"},
	})

	assert.Equal(t, "order_1", v.OrderID)
	assert.Equal(t, "pay_1234567890abcdef", v.RawPaymentID)
	assert.Equal(t, "Invalid payment signature", v.Message)
}

func TestNewView_PendingRendersAsLoading(t *testing.T) {
	assert.True(t, NewView(Outcome{State: StatePending}).Loading)
	assert.True(t, NewView(Outcome{State: StateLoading}).Loading)
}
