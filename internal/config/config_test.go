package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads all config from env", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/test")
		t.Setenv("LISTEN_ADDR", ":9090")
		t.Setenv("LOG_LEVEL", "warn")
		t.Setenv("LOG_FORMAT", "json")
		t.Setenv("DEFAULT_CURRENCY", "USD")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, "postgres://localhost/test", cfg.DatabaseURL)
		require.Equal(t, ":9090", cfg.ListenAddr)
		require.Equal(t, "warn", cfg.LogLevel)
		require.Equal(t, "json", cfg.LogFormat)
		require.Equal(t, "USD", cfg.DefaultCurrency)
	})

	t.Run("applies defaults", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/test")
		t.Setenv("LISTEN_ADDR", "")
		t.Setenv("LOG_FORMAT", "")
		t.Setenv("DEFAULT_CURRENCY", "")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, ":8080", cfg.ListenAddr)
		require.Equal(t, "SGD", cfg.DefaultCurrency)
	})

	t.Run("uppercases the currency code", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/test")
		t.Setenv("DEFAULT_CURRENCY", "usd")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, "USD", cfg.DefaultCurrency)
	})

	t.Run("fails without database URL", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		t.Setenv("DEFAULT_CURRENCY", "")

		_, err := Load()
		require.Error(t, err)
		require.Contains(t, err.Error(), "DATABASE_URL is required")
	})

	t.Run("fails on unsupported currency", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/test")
		t.Setenv("DEFAULT_CURRENCY", "XYZ")

		_, err := Load()
		require.Error(t, err)
		require.Contains(t, err.Error(), "not a supported currency")
	})

	t.Run("fails on unknown log format", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/test")
		t.Setenv("DEFAULT_CURRENCY", "")
		t.Setenv("LOG_FORMAT", "xml")

		_, err := Load()
		require.Error(t, err)
		require.Contains(t, err.Error(), "LOG_FORMAT")
	})

	t.Run("collects multiple validation errors", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		t.Setenv("DEFAULT_CURRENCY", "XYZ")

		_, err := Load()
		require.Error(t, err)
		require.Contains(t, err.Error(), "DATABASE_URL is required")
		require.Contains(t, err.Error(), "not a supported currency")
	})
}
