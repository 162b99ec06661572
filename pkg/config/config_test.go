package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "data", cfg.DataDir)
	assert.False(t, cfg.Database.Enabled)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 5*time.Second, cfg.PriceFeed.LookupTimeout)
	assert.Equal(t, 10*time.Second, cfg.PriceFeed.CacheTTL)
}

func TestLoad_SymbolsFromEnv(t *testing.T) {
	t.Setenv("ARGOS_SYMBOLS", "BTCUSDT, SOLUSDT ,XRPUSDT")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"BTCUSDT", "SOLUSDT", "XRPUSDT"}, cfg.Symbols)
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("ENV", "nonsense")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_DatabaseRequiresURL(t *testing.T) {
	t.Setenv("DB_ENABLED", "true")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_LookupTimeoutBounds(t *testing.T) {
	t.Setenv("PRICE_LOOKUP_TIMEOUT", "30s")

	_, err := Load()
	require.Error(t, err, "lookup timeout above 10s must be rejected")
}
