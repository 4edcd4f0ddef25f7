package payments

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

// Stub is a local stand-in for the hosted gateway. Checkout happens on
// /pay/stub of this service; see StubHandler.
type Stub struct {
	keySecret string
	baseURL   string
}

func NewStub(keySecret, baseURL string) *Stub {
	return &Stub{keySecret: keySecret, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *Stub) Name() string { return "stub" }

func (s *Stub) CheckoutURL(ctx context.Context, c Checkout) (string, error) {
	q := url.Values{}
	q.Set("team_id", strconv.FormatInt(c.TeamID, 10))
	q.Set("amount", strconv.FormatInt(c.AmountInPaise, 10))

	return s.baseURL + "/pay/stub?" + q.Encode(), nil
}

func (s *Stub) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifySignature(s.keySecret, orderID, paymentID, signature)
}
