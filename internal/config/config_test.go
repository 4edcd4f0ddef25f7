package config_test

import (
	"testing"
	"time"

	"zignasa/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("ENV", "test-no-file")
	t.Setenv("HANDOFF_SECRET", "handoff-secret")
	t.Setenv("RAZORPAY_KEY_SECRET", "rzp-secret")
	t.Setenv("DB_USER", "zig")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "test-no-file", cfg.Env)
	assert.Equal(t, "handoff-secret", cfg.Handoff.Secret)
	assert.Equal(t, "rzp-secret", cfg.Payments.KeySecret)
	assert.Equal(t, "zig", cfg.Database.User)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "links", cfg.Payments.Provider)
	assert.Equal(t, 10*time.Second, cfg.Verification.Timeout())
	assert.Equal(t, 30*time.Minute, cfg.Handoff.TTL())
}

func TestLoad_MissingSecrets(t *testing.T) {
	t.Setenv("ENV", "test-no-file")
	t.Setenv("HANDOFF_SECRET", "")
	t.Setenv("RAZORPAY_KEY_SECRET", "rzp-secret")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "handoff.secret")
}

func TestValidate(t *testing.T) {
	valid := func() config.Config {
		return config.Config{
			Server:       config.ServerConfig{PublicURL: "https://zignasa.in/"},
			Handoff:      config.HandoffConfig{Secret: "s", TTLMinutes: 30},
			Payments:     config.PaymentsConfig{KeySecret: "k"},
			Verification: config.VerificationConfig{TimeoutSeconds: 10},
		}
	}

	t.Run("TrimsPublicURL", func(t *testing.T) {
		cfg := valid()
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "https://zignasa.in", cfg.Server.PublicURL)
	})

	t.Run("UnknownMessagingDriver", func(t *testing.T) {
		cfg := valid()
		cfg.Messaging.Driver = "rabbit"
		assert.Error(t, cfg.Validate())
	})

	t.Run("ZeroTimeout", func(t *testing.T) {
		cfg := valid()
		cfg.Verification.TimeoutSeconds = 0
		assert.Error(t, cfg.Validate())
	})
}
