// Package payments hands a registered team over to the payment gateway and
// checks the signature the gateway returns with a completed payment.
package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"zignasa/internal/track"
)

var ErrNoPaymentLink = errors.New("no payment link configured for track")

// Checkout describes the payment a team is about to make.
type Checkout struct {
	Track         track.Settings
	TeamID        int64
	AmountInPaise int64
}

type Gateway interface {
	Name() string
	// CheckoutURL is where the browser is sent to pay.
	CheckoutURL(ctx context.Context, c Checkout) (string, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

// Sign computes the Razorpay payment signature:
// hex(HMAC-SHA256(secret, orderID + "|" + paymentID)).
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature compares in constant time.
func VerifySignature(secret, orderID, paymentID, signature string) bool {
	if orderID == "" || paymentID == "" || signature == "" {
		return false
	}
	expected := Sign(secret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// FormatAmount renders paise as rupees with two decimals,
// e.g. 60000 → "₹600.00".
func FormatAmount(paise int64) string {
	sign := ""
	if paise < 0 {
		sign = "-"
		paise = -paise
	}
	return fmt.Sprintf("%s₹%d.%02d", sign, paise/100, paise%100)
}
