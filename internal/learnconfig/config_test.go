package learnconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_PassesValidation(t *testing.T) {
	require.NoError(t, Validate(Default()))
}

func TestValidate_Bounds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative min samples", func(c *Config) { c.Weights.MinSamples = 0 }},
		{"adjustment above half", func(c *Config) { c.Weights.MaxAdjustmentPct = 0.8 }},
		{"floor too high", func(c *Config) { c.Weights.Floor = 0.6 }},
		{"gate bands inverted", func(c *Config) { c.Gates.TightenWinRate = 0.7 }},
		{"kill win rate out of range", func(c *Config) { c.KillCombos.MaxWinRate = 1.5 }},
		{"sizing max below min", func(c *Config) { c.Sizing.MaxMultiplier = -1 }},
		{"zero lookback", func(c *Config) { c.Capture.LookbackDays = 0 }},
		{"damping multiplier above one", func(c *Config) {
			c.Damping.Enable = true
			c.Damping.Multiplier = 1.5
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, Validate(cfg))
		})
	}
}

func TestLoad_UnknownFieldFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "learning.yaml")
	yaml := `
meta:
  profile_id: test
  version: "1"
weights:
  min_samples: 50
  max_adjustment_pct: 0.2
  typo_field: true
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	_, _, err := Load(path)
	require.Error(t, err, "KnownFields must reject unknown keys")
}

func TestLoad_ShippedProfile(t *testing.T) {
	// 저장소에 포함된 프로필이 그대로 로드되어야 한다
	cfg, raw, err := Load(filepath.Join("..", "..", "config", "learning.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	// 기간 필드는 "1m"/"72h" 표기 그대로 디코딩된다
	assert.Equal(t, time.Minute, cfg.Weights.PairWindow)
	assert.Equal(t, 72*time.Hour, cfg.Damping.Period)
	assert.Equal(t, Default().Weights, cfg.Weights)
	assert.Equal(t, Default().Sizing, cfg.Sizing)
}

func TestLoadOrDefault_MissingFileUsesDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Weights.MinSamples)
	assert.Equal(t, 7, cfg.Capture.LookbackDays)
}

func TestHash_Deterministic(t *testing.T) {
	a, err := Hash(Default())
	require.NoError(t, err)
	b, err := Hash(Default())
	require.NoError(t, err)
	assert.Equal(t, a, b)

	changed := Default()
	changed.Weights.MinSamples = 51
	c, err := Hash(changed)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestDamping_ActiveMultiplier(t *testing.T) {
	started := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	d := Damping{Enable: true, Multiplier: 0.5, Period: 72 * time.Hour, StartedAt: started}

	assert.Equal(t, 0.5, d.ActiveMultiplier(started.Add(time.Hour)))
	assert.Equal(t, 1.0, d.ActiveMultiplier(started.Add(100*time.Hour)), "outside initial period")

	off := Damping{Enable: false}
	assert.Equal(t, 1.0, off.ActiveMultiplier(started))
}
