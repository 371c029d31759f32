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

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 1620, cfg.Merge.FSAUniverseSize)
	assert.InDelta(t, 0.8, cfg.Merge.MinCompleteness, 1e-9)
	assert.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("FSA_UNIVERSE_SIZE", "100")
	t.Setenv("RISK_SLOW_MARKET_DAYS", "60")
	t.Setenv("SERVER_READ_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 100, cfg.Merge.FSAUniverseSize)
	assert.InDelta(t, 60.0, cfg.Merge.SlowMarketDays, 1e-9)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
}

func TestLoad_RejectsInvalidCompleteness(t *testing.T) {
	t.Setenv("RISK_MIN_COMPLETENESS", "1.5")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RISK_MIN_COMPLETENESS")
}
