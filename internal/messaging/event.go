// Package messaging publishes registration workflow events to NATS or Kafka.
// Publishing is best effort: callers log failures and carry on.
package messaging

import (
	"context"
	"time"
)

const (
	EventRegistrationSubmitted = "registration.submitted"
	EventPaymentVerified       = "payment.verified"
)

type Event struct {
	Type          string    `json:"type"`
	TeamID        int64     `json:"teamId"`
	TeamName      string    `json:"teamName"`
	Domain        string    `json:"domain"`
	MemberCount   int       `json:"memberCount"`
	AmountInPaise int64     `json:"amountInPaise"`
	OrderID       string    `json:"orderId,omitempty"`
	PaymentID     string    `json:"paymentId,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(ctx context.Context, event Event) error { return nil }

func (Nop) Close() error { return nil }
