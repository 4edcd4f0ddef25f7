package payments

import (
	"context"
	"testing"

	"zignasa/internal/config"
	"zignasa/internal/track"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSign(t *testing.T) {
	sig := Sign("secret", "order_1", "pay_1")
	assert.Len(t, sig, 64)
	assert.Equal(t, sig, Sign("secret", "order_1", "pay_1"))
	assert.NotEqual(t, sig, Sign("secret", "order_1", "pay_2"))
	assert.NotEqual(t, sig, Sign("other", "order_1", "pay_1"))
}

func TestVerifySignature(t *testing.T) {
	sig := Sign("secret", "order_1", "pay_1")

	assert.True(t, VerifySignature("secret", "order_1", "pay_1", sig))
	assert.False(t, VerifySignature("secret", "order_1", "pay_1", "deadbeef"))
	assert.False(t, VerifySignature("secret", "order_2", "pay_1", sig))
	assert.False(t, VerifySignature("secret", "", "", Sign("secret", "", "")))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "₹600.00", FormatAmount(60000))
	assert.Equal(t, "₹0.05", FormatAmount(5))
	assert.Equal(t, "₹1234.50", FormatAmount(123450))
}

func TestLinks_CheckoutURL(t *testing.T) {
	gw := NewLinks("secret")
	ctx := context.Background()

	url, err := gw.CheckoutURL(ctx, Checkout{
		Track:  track.Settings{Track: track.WebDev, PaymentLink: "https://rzp.io/l/webdev"},
		TeamID: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://rzp.io/l/webdev", url)

	_, err = gw.CheckoutURL(ctx, Checkout{Track: track.Settings{Track: track.UIUX}})
	assert.ErrorIs(t, err, ErrNoPaymentLink)
}

func TestStub_CheckoutURL(t *testing.T) {
	gw := NewStub("secret", "http://localhost:8080/")

	url, err := gw.CheckoutURL(context.Background(), Checkout{TeamID: 42, AmountInPaise: 60000})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/pay/stub?amount=60000&team_id=42", url)
}

func TestNewGateway(t *testing.T) {
	cfg := config.Config{}
	cfg.Payments.KeySecret = "secret"

	gw, err := NewGateway(cfg)
	require.NoError(t, err)
	assert.Equal(t, "links", gw.Name())

	cfg.Payments.Provider = "stub"
	gw, err = NewGateway(cfg)
	require.NoError(t, err)
	assert.Equal(t, "stub", gw.Name())

	cfg.Payments.Provider = "paypal"
	_, err = NewGateway(cfg)
	assert.Error(t, err)
}
