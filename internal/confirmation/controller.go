// Package confirmation verifies a payment when the gateway sends the browser
// back, and renders the outcome.
package confirmation

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"zignasa/internal/handoff"
	"zignasa/internal/metrics"
	"zignasa/internal/verification"
)

type State string

const (
	StateLoading  State = "loading"
	StateVerified State = "verified"
	StateFailed   State = "failed"
	// StatePending renders like StateLoading.
	StatePending State = "pending"
)

const (
	MsgMissingParams = "Missing payment parameters"
	MsgFallback      = "Payment verification failed. Please contact support with your payment details."
)

// Params are the query parameters the gateway appends to the return URL.
type Params struct {
	OrderID   string
	PaymentID string
	Signature string
	TeamID    string
}

func ParamsFromQuery(q url.Values) Params {
	return Params{
		OrderID:   strings.TrimSpace(q.Get("order_id")),
		PaymentID: strings.TrimSpace(q.Get("payment_id")),
		Signature: strings.TrimSpace(q.Get("signature")),
		TeamID:    strings.TrimSpace(q.Get("team_id")),
	}
}

func (p Params) complete() bool {
	return p.OrderID != "" && p.PaymentID != "" && p.Signature != ""
}

type Outcome struct {
	State   State
	Message string
	Data    *verification.Data
	Params  Params
	Handoff *handoff.Handoff
}

type Controller struct {
	verifier verification.Verifier
	handoffs handoff.Store
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewController(verifier verification.Verifier, handoffs handoff.Store, logger *slog.Logger, m *metrics.Metrics) *Controller {
	return &Controller{
		verifier: verifier,
		handoffs: handoffs,
		logger:   logger,
		metrics:  m,
	}
}

// Verify runs one verification attempt. h may be nil.
func (c *Controller) Verify(ctx context.Context, p Params, h *handoff.Handoff) Outcome {
	out := c.verify(ctx, p, h)
	c.metrics.RecordConfirmationOutcome(ctx, string(out.State))
	return out
}

func (c *Controller) verify(ctx context.Context, p Params, h *handoff.Handoff) Outcome {
	out := Outcome{State: StateLoading, Params: p, Handoff: h}

	if !p.complete() {
		out.State = StateFailed
		out.Message = MsgMissingParams
		return out
	}

	req := verification.Request{
		TeamID:            teamIDFor(p, h),
		RazorpayOrderID:   p.OrderID,
		RazorpayPaymentID: p.PaymentID,
		RazorpaySignature: p.Signature,
	}
	if h != nil {
		req.Members = h.Members
	}

	resp, err := c.verifier.Verify(ctx, req)
	if err != nil {
		var statusErr *verification.StatusError
		if errors.As(err, &statusErr) && statusErr.Conflict() {
			c.logger.InfoContext(ctx, "payment already verified", "team_id", req.TeamID, "payment_id", p.PaymentID)
			out.State = StateVerified
			out.Data = statusErr.Data
			return out
		}

		c.logger.WarnContext(ctx, "payment verification failed", "team_id", req.TeamID, "order_id", p.OrderID, "error", err)
		out.State = StateFailed
		out.Message = MsgFallback
		if statusErr != nil && statusErr.Message != "" {
			out.Message = statusErr.Message
		}
		return out
	}

	if !resp.Success {
		out.State = StateFailed
		out.Message = resp.Message
		if out.Message == "" {
			out.Message = MsgFallback
		}
		return out
	}

	out.State = StateVerified
	out.Data = resp.Data
	if h != nil {
		if err := c.handoffs.Delete(ctx, h.ID); err != nil && !errors.Is(err, handoff.ErrNotFound) {
			c.logger.WarnContext(ctx, "failed to delete handoff", "team_id", h.TeamID, "error", err)
		}
	}
	c.logger.InfoContext(ctx, "payment confirmed", "team_id", req.TeamID, "payment_id", p.PaymentID)
	return out
}

// teamIDFor prefers the gateway's team_id and falls back to the handoff.
func teamIDFor(p Params, h *handoff.Handoff) int64 {
	if id, err := strconv.ParseInt(p.TeamID, 10, 64); err == nil && id > 0 {
		return id
	}
	if h != nil {
		return h.TeamID
	}
	return 0
}
