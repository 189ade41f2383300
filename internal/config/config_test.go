package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, 365, cfg.Days)
	assert.Equal(t, int64(42), cfg.Seed)
	require.Len(t, cfg.Pools, 1)
	assert.Equal(t, PoolSpec{ID: "pool-standard", Type: "standard"}, cfg.Pools[0])
	assert.Equal(t, SourceGBM, cfg.PriceSource)
	assert.Equal(t, 3000.0, cfg.InitialPrice)
	assert.Equal(t, 0.001, cfg.ExternalFee)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.MetricsAddr)
}

func TestLoad_FlagsOverrideDefaults(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("days", 0, "")
	flags.Int64("seed", 0, "")
	flags.StringSlice("pools", nil, "")
	require.NoError(t, flags.Parse([]string{
		"--days=30",
		"--seed=7",
		"--pools=a:stable,b:volatile",
	}))

	cfg, err := Load("", flags)
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Days)
	assert.Equal(t, int64(7), cfg.Seed)
	require.Len(t, cfg.Pools, 2)
	assert.Equal(t, PoolSpec{ID: "a", Type: "stable"}, cfg.Pools[0])
	assert.Equal(t, PoolSpec{ID: "b", Type: "volatile"}, cfg.Pools[1])
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "simlab.yaml")
	content := "days: 90\npools:\n  - main:standard\n  - alt:stable\nsigma: 0.4\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, 90, cfg.Days)
	require.Len(t, cfg.Pools, 2)
	assert.Equal(t, "alt", cfg.Pools[1].ID)
	assert.Equal(t, 0.4, cfg.Sigma)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load("/nonexistent/simlab.yaml", nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Days:         10,
			Pools:        []PoolSpec{{ID: "p", Type: "standard"}},
			ReserveA:     1000,
			ReserveB:     3_000_000,
			PriceSource:  SourceGBM,
			InitialPrice: 3000,
			Sigma:        0.8,
			ExternalFee:  0.001,
			MaxCapital:   1e6,
			LPCapital:    1e5,
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero days", func(c *Config) { c.Days = 0 }},
		{"no pools", func(c *Config) { c.Pools = nil }},
		{"duplicate pool id", func(c *Config) {
			c.Pools = append(c.Pools, PoolSpec{ID: "p", Type: "stable"})
		}},
		{"unknown pool type", func(c *Config) { c.Pools[0].Type = "exotic" }},
		{"negative reserve", func(c *Config) { c.ReserveA = -1 }},
		{"zero initial price", func(c *Config) { c.InitialPrice = 0 }},
		{"negative sigma", func(c *Config) { c.Sigma = -0.1 }},
		{"csv without file", func(c *Config) { c.PriceSource = SourceCSV }},
		{"ws without url", func(c *Config) { c.PriceSource = SourceWS }},
		{"unknown source", func(c *Config) { c.PriceSource = "random" }},
		{"external fee too high", func(c *Config) { c.ExternalFee = 1.0 }},
		{"zero max capital", func(c *Config) { c.MaxCapital = 0 }},
		{"negative min profit", func(c *Config) { c.MinArbProfit = -1 }},
		{"negative traders", func(c *Config) { c.RetailTraders = -1 }},
	}

	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestParsePoolSpecs_Malformed(t *testing.T) {
	for _, bad := range []string{"no-type", ":standard", "id:"} {
		t.Run(bad, func(t *testing.T) {
			_, err := parsePoolSpecs([]string{bad})
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}
