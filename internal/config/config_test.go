package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "http://localhost:8080", cfg.BaseURL)
	require.Equal(t, 23, cfg.TokenTTLHours)
	require.Equal(t, "account.events", cfg.RabbitExchange)
	require.Equal(t, "https://openapi.keycrm.app/v1/order", cfg.OrdersAPIURL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("TOKEN_TTL_HOURS", "1")
	t.Setenv("RATE_LIMIT_PER_MIN", "not-a-number")

	cfg := Load()
	require.Equal(t, "9000", cfg.Port)
	require.Equal(t, 1, cfg.TokenTTLHours)
	require.Equal(t, 0, cfg.RateLimitPerMin)
}
