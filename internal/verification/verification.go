// Package verification confirms payments returned by the gateway.
//
// The server side checks the Razorpay signature and moves the team to
// Completed. The client side is what the confirmation page calls: either an
// HTTP Client for a remote endpoint or Local for the in-process service.
package verification

import (
	"context"
	"fmt"
	"net/http"

	"zignasa/internal/team"
)

type Request struct {
	TeamID            int64         `json:"teamId" validate:"required,gt=0"`
	RazorpayOrderID   string        `json:"razorpayOrderId" validate:"required"`
	RazorpayPaymentID string        `json:"razorpayPaymentId" validate:"required"`
	RazorpaySignature string        `json:"razorpaySignature" validate:"required"`
	Members           []team.Member `json:"members" validate:"dive"`
}

type Data struct {
	TeamID      int64  `json:"teamId"`
	TeamName    string `json:"teamName,omitempty"`
	Domain      string `json:"domain,omitempty"`
	MemberCount int    `json:"memberCount"`
	PaymentID   string `json:"paymentId"`
	OrderID     string `json:"orderId,omitempty"`
	// Amount is in paise.
	Amount int64 `json:"amount,omitempty"`
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    *Data  `json:"data,omitempty"`
}

// StatusError is a non-2xx answer from the endpoint.
type StatusError struct {
	Code    int
	Message string
	Data    *Data
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("verification endpoint returned %d", e.Code)
	}
	return fmt.Sprintf("verification endpoint returned %d: %s", e.Code, e.Message)
}

// Conflict reports the "already verified" answer.
func (e *StatusError) Conflict() bool { return e.Code == http.StatusConflict }

type Verifier interface {
	Verify(ctx context.Context, req Request) (*Response, error)
}
