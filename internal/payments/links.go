package payments

import (
	"context"
	"fmt"
)

// Links sends every team of a track to the same hosted Razorpay payment link.
type Links struct {
	keySecret string
}

func NewLinks(keySecret string) *Links {
	return &Links{keySecret: keySecret}
}

func (l *Links) Name() string { return "links" }

func (l *Links) CheckoutURL(ctx context.Context, c Checkout) (string, error) {
	if c.Track.PaymentLink == "" {
		return "", fmt.Errorf("%w: %s", ErrNoPaymentLink, c.Track.Track)
	}
	return c.Track.PaymentLink, nil
}

func (l *Links) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifySignature(l.keySecret, orderID, paymentID, signature)
}
