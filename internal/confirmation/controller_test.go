package confirmation

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"zignasa/internal/handoff"
	"zignasa/internal/logger"
	"zignasa/internal/metrics"
	"zignasa/internal/team"
	"zignasa/internal/verification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	calls []verification.Request
	resp  *verification.Response
	err   error
}

func (s *stubVerifier) Verify(ctx context.Context, req verification.Request) (*verification.Response, error) {
	s.calls = append(s.calls, req)
	return s.resp, s.err
}

func byteBanditsData() *verification.Data {
	return &verification.Data{TeamID: 42, TeamName: "Byte Bandits", Domain: "Web Dev", MemberCount: 3, PaymentID: "P1"}
}

func validParams() Params {
	return Params{OrderID: "O1", PaymentID: "P1", Signature: "S1", TeamID: "42"}
}

func storedHandoff(t *testing.T, store handoff.Store) *handoff.Handoff {
	t.Helper()
	h := handoff.New(42, "Byte Bandits", "Web Dev", 60000, []team.Member{
		{Name: "Asha", Email: "asha@example.com", Phone: "9876543210", College: "KLU", RollNumber: "1"},
		{Name: "Ravi", Email: "ravi@example.com", Phone: "9876543211", College: "KLU", RollNumber: "2"},
		{Name: "Meera", Email: "meera@example.com", Phone: "9876543212", College: "KLU", RollNumber: "3"},
	})
	require.NoError(t, store.Put(context.Background(), h, 30*time.Minute))
	return h
}

func newTestController(v verification.Verifier, store handoff.Store) *Controller {
	return NewController(v, store, logger.Discard(), metrics.NewMock())
}

func TestVerify_MissingParameters(t *testing.T) {
	for name, p := range map[string]Params{
		"NoOrderID":   {PaymentID: "P1", Signature: "S1"},
		"NoPaymentID": {OrderID: "O1", Signature: "S1"},
		"NoSignature": {OrderID: "O1", PaymentID: "P1"},
	} {
		t.Run(name, func(t *testing.T) {
			verifier := &stubVerifier{}
			out := newTestController(verifier, handoff.NewMemoryStore()).Verify(context.Background(), p, nil)

			assert.Equal(t, StateFailed, out.State)
			assert.Equal(t, MsgMissingParams, out.Message)
			assert.Empty(t, verifier.calls)
		})
	}
}

func TestVerify_Success(t *testing.T) {
	store := handoff.NewMemoryStore()
	h := storedHandoff(t, store)
	verifier := &stubVerifier{resp: &verification.Response{Success: true, Data: byteBanditsData()}}

	out := newTestController(verifier, store).Verify(context.Background(), validParams(), h)

	assert.Equal(t, StateVerified, out.State)
	assert.Equal(t, "Byte Bandits", out.Data.TeamName)

	require.Len(t, verifier.calls, 1)
	req := verifier.calls[0]
	assert.Equal(t, int64(42), req.TeamID)
	assert.Equal(t, "O1", req.RazorpayOrderID)
	assert.Equal(t, "P1", req.RazorpayPaymentID)
	assert.Equal(t, "S1", req.RazorpaySignature)
	assert.Len(t, req.Members, 3)

	_, err := store.Get(context.Background(), h.ID)
	assert.ErrorIs(t, err, handoff.ErrNotFound, "handoff cleared on success")
}

func TestVerify_TeamIDFallsBackToHandoff(t *testing.T) {
	store := handoff.NewMemoryStore()
	h := storedHandoff(t, store)
	verifier := &stubVerifier{resp: &verification.Response{Success: true}}

	p := validParams()
	p.TeamID = ""
	newTestController(verifier, store).Verify(context.Background(), p, h)

	require.Len(t, verifier.calls, 1)
	assert.Equal(t, int64(42), verifier.calls[0].TeamID)
}

func TestVerify_ConflictIsVerified(t *testing.T) {
	store := handoff.NewMemoryStore()
	h := storedHandoff(t, store)
	verifier := &stubVerifier{err: &verification.StatusError{Code: http.StatusConflict, Message: "Payment already verified", Data: byteBanditsData()}}

	out := newTestController(verifier, store).Verify(context.Background(), validParams(), h)

	assert.Equal(t, StateVerified, out.State)
	require.NotNil(t, out.Data)
	assert.Equal(t, 3, out.Data.MemberCount)

	_, err := store.Get(context.Background(), h.ID)
	assert.NoError(t, err, "handoff kept on conflict")
}

func TestVerify_Failures(t *testing.T) {
	tests := []struct {
		name    string
		resp    *verification.Response
		err     error
		message string
	}{
		{
			name:    "ExplicitFailure",
			resp:    &verification.Response{Success: false, Message: "Invalid payment signature"},
			message: "Invalid payment signature",
		},
		{
			name:    "StatusWithMessage",
			err:     &verification.StatusError{Code: http.StatusNotFound, Message: "Team not found"},
			message: "Team not found",
		},
		{
			name:    "StatusWithoutMessage",
			err:     &verification.StatusError{Code: http.StatusBadGateway},
			message: MsgFallback,
		},
		{
			name:    "Transport",
			err:     errors.New("context deadline exceeded"),
			message: MsgFallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := handoff.NewMemoryStore()
			h := storedHandoff(t, store)
			verifier := &stubVerifier{resp: tt.resp, err: tt.err}

			out := newTestController(verifier, store).Verify(context.Background(), validParams(), h)

			assert.Equal(t, StateFailed, out.State)
			assert.Equal(t, tt.message, out.Message)
			assert.Len(t, verifier.calls, 1)

			_, err := store.Get(context.Background(), h.ID)
			assert.NoError(t, err)
		})
	}
}
