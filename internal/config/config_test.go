package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/config"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/order"
)

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	unsetEnv(t, "APP_PORT", "APP_ENV", "LOG_LEVEL", "SETTINGS_PATH", "SEED_SAMPLE_DATA")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Empty(t, cfg.SettingsPath)
	assert.True(t, cfg.SeedSampleData)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvFileAndOverrides(t *testing.T) {
	unsetEnv(t, "APP_PORT", "APP_ENV", "LOG_LEVEL", "SETTINGS_PATH", "SEED_SAMPLE_DATA")
	t.Setenv("LOG_LEVEL", "warn")

	path := writeFile(t, ".env", "APP_PORT=9090\nAPP_ENV=production\nLOG_LEVEL=info\nSEED_SAMPLE_DATA=false\n")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "warn", cfg.Log.Level, "process environment wins over .env")
	assert.False(t, cfg.SeedSampleData)
}

func TestLoad_InvalidSeedFlag(t *testing.T) {
	t.Setenv("SEED_SAMPLE_DATA", "sometimes")

	_, err := config.Load("")
	require.Error(t, err)
}

func TestLoadSettings(t *testing.T) {
	t.Run("empty_path", func(t *testing.T) {
		s, err := config.LoadSettings("")
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(5).Equal(s.POS.TaxRate))
		assert.Equal(t, order.PaymentCash, s.POS.DefaultPaymentMethod)
		assert.False(t, s.POS.FreeStatusTransitions)
		assert.Equal(t, 10, s.Inventory.LowStockThreshold)
		assert.Equal(t, "Asia/Kolkata", s.Location().String())
	})

	t.Run("missing_file", func(t *testing.T) {
		s, err := config.LoadSettings(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, config.DefaultSettings(), s)
	})

	t.Run("partial_file_keeps_defaults", func(t *testing.T) {
		path := writeFile(t, "pos.yaml", "store:\n  name: Siri Millets\npos:\n  tax_rate: 12.5\n  default_payment_method: upi\n  free_status_transitions: true\n")

		s, err := config.LoadSettings(path)
		require.NoError(t, err)
		assert.Equal(t, "Siri Millets", s.Store.Name)
		assert.Equal(t, "INR", s.Store.Currency)
		assert.True(t, decimal.RequireFromString("12.5").Equal(s.POS.TaxRate))
		assert.Equal(t, order.PaymentUPI, s.POS.DefaultPaymentMethod)
		assert.True(t, s.POS.FreeStatusTransitions)
		assert.Equal(t, 10, s.Inventory.LowStockThreshold)
	})

	t.Run("shipped_pos_yaml", func(t *testing.T) {
		s, err := config.LoadSettings(filepath.Join("..", "..", "configs", "pos.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "Millet Store", s.Store.Name)
	})

	invalid := []struct {
		name    string
		content string
	}{
		{name: "negative_tax", content: "pos:\n  tax_rate: -1\n"},
		{name: "unknown_payment", content: "pos:\n  default_payment_method: cheque\n"},
		{name: "negative_threshold", content: "inventory:\n  low_stock_threshold: -3\n"},
		{name: "unknown_timezone", content: "store:\n  timezone: Mars/Olympus\n"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.LoadSettings(writeFile(t, "pos.yaml", tt.content))
			require.ErrorIs(t, err, config.ErrInvalidSettings)
		})
	}

	t.Run("malformed_yaml", func(t *testing.T) {
		_, err := config.LoadSettings(writeFile(t, "pos.yaml", "pos: [unclosed"))
		require.Error(t, err)
		assert.NotErrorIs(t, err, config.ErrInvalidSettings)
	})
}
