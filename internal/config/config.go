// Package config loads simulation parameters from config file,
// environment variables, and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"amm-fee-lab/internal/dynfee"
)

// ErrInvalidConfig is returned when loaded parameters fail validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Price source modes.
const (
	SourceGBM = "gbm"
	SourceCSV = "csv"
	SourceWS  = "ws"
)

// PoolSpec declares one simulated pool and its fee profile.
type PoolSpec struct {
	ID   string
	Type string // stable | standard | volatile
}

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	// Run shape
	Days int
	Seed int64

	// Pools
	Pools    []PoolSpec
	ReserveA float64
	ReserveB float64

	// External market
	PriceSource  string // gbm | csv | ws
	InitialPrice float64
	Mu           float64
	Sigma        float64
	BarsFile     string // csv mode
	WSURL        string // ws mode
	WSSymbol     string

	// Arbitrage
	ExternalFee  float64
	MaxCapital   float64
	MinArbProfit float64

	// Agents
	RetailTraders int
	WhaleTraders  int
	PassiveLPs    int
	ActiveLPs     int
	LPCapital     float64

	// Outputs and ops
	ReportDir   string
	LogLevel    string
	MetricsAddr string // empty disables the metrics endpoint
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SIMLAB")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("days", 365)
	v.SetDefault("seed", int64(42))
	v.SetDefault("pools", []string{"pool-standard:standard"})
	v.SetDefault("reserve-a", 1_000.0)
	v.SetDefault("reserve-b", 3_000_000.0)
	v.SetDefault("price-source", SourceGBM)
	v.SetDefault("initial-price", 3_000.0)
	v.SetDefault("mu", 0.05)
	v.SetDefault("sigma", 0.8)
	v.SetDefault("ws-symbol", "ETHUSD")
	v.SetDefault("external-fee", 0.001)
	v.SetDefault("max-capital", 1_000_000.0)
	v.SetDefault("min-arb-profit", 1.0)
	v.SetDefault("retail-traders", 100)
	v.SetDefault("whale-traders", 5)
	v.SetDefault("passive-lps", 20)
	v.SetDefault("active-lps", 5)
	v.SetDefault("lp-capital", 100_000.0)
	v.SetDefault("report-dir", "./reports")
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("simlab")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	pools, err := parsePoolSpecs(getStringSlice(v, "pools"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Days:          v.GetInt("days"),
		Seed:          v.GetInt64("seed"),
		Pools:         pools,
		ReserveA:      v.GetFloat64("reserve-a"),
		ReserveB:      v.GetFloat64("reserve-b"),
		PriceSource:   v.GetString("price-source"),
		InitialPrice:  v.GetFloat64("initial-price"),
		Mu:            v.GetFloat64("mu"),
		Sigma:         v.GetFloat64("sigma"),
		BarsFile:      v.GetString("bars-file"),
		WSURL:         v.GetString("ws-url"),
		WSSymbol:      v.GetString("ws-symbol"),
		ExternalFee:   v.GetFloat64("external-fee"),
		MaxCapital:    v.GetFloat64("max-capital"),
		MinArbProfit:  v.GetFloat64("min-arb-profit"),
		RetailTraders: v.GetInt("retail-traders"),
		WhaleTraders:  v.GetInt("whale-traders"),
		PassiveLPs:    v.GetInt("passive-lps"),
		ActiveLPs:     v.GetInt("active-lps"),
		LPCapital:     v.GetFloat64("lp-capital"),
		ReportDir:     v.GetString("report-dir"),
		LogLevel:      v.GetString("log-level"),
		MetricsAddr:   v.GetString("metrics-addr"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the loaded parameters for consistency.
func (c Config) Validate() error {
	if c.Days <= 0 {
		return fmt.Errorf("%w: days must be positive, got %d", ErrInvalidConfig, c.Days)
	}
	if len(c.Pools) == 0 {
		return fmt.Errorf("%w: at least one pool required", ErrInvalidConfig)
	}
	seen := make(map[string]bool, len(c.Pools))
	for _, p := range c.Pools {
		if seen[p.ID] {
			return fmt.Errorf("%w: duplicate pool id %q", ErrInvalidConfig, p.ID)
		}
		seen[p.ID] = true
		if _, err := dynfee.ConfigByType(p.Type); err != nil {
			return fmt.Errorf("%w: pool %q: %v", ErrInvalidConfig, p.ID, err)
		}
	}
	if c.ReserveA <= 0 || c.ReserveB <= 0 {
		return fmt.Errorf("%w: reserves must be positive", ErrInvalidConfig)
	}
	switch c.PriceSource {
	case SourceGBM:
		if c.InitialPrice <= 0 {
			return fmt.Errorf("%w: initial price must be positive", ErrInvalidConfig)
		}
		if c.Sigma < 0 {
			return fmt.Errorf("%w: sigma must be non-negative", ErrInvalidConfig)
		}
	case SourceCSV:
		if c.BarsFile == "" {
			return fmt.Errorf("%w: csv price source requires bars-file", ErrInvalidConfig)
		}
	case SourceWS:
		if c.WSURL == "" {
			return fmt.Errorf("%w: ws price source requires ws-url", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown price source %q", ErrInvalidConfig, c.PriceSource)
	}
	if c.ExternalFee < 0 || c.ExternalFee >= 1 {
		return fmt.Errorf("%w: external fee must be in [0,1)", ErrInvalidConfig)
	}
	if c.MaxCapital <= 0 {
		return fmt.Errorf("%w: max capital must be positive", ErrInvalidConfig)
	}
	if c.MinArbProfit < 0 {
		return fmt.Errorf("%w: min arb profit must be non-negative", ErrInvalidConfig)
	}
	if c.RetailTraders < 0 || c.WhaleTraders < 0 || c.PassiveLPs < 0 || c.ActiveLPs < 0 {
		return fmt.Errorf("%w: agent counts must be non-negative", ErrInvalidConfig)
	}
	if c.LPCapital <= 0 && c.PassiveLPs+c.ActiveLPs > 0 {
		return fmt.Errorf("%w: lp capital must be positive", ErrInvalidConfig)
	}
	return nil
}

// parsePoolSpecs parses "id:type" entries.
func parsePoolSpecs(entries []string) ([]PoolSpec, error) {
	specs := make([]PoolSpec, 0, len(entries))
	for _, e := range entries {
		parts := strings.SplitN(e, ":", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("%w: pool spec %q, want id:type", ErrInvalidConfig, e)
		}
		specs = append(specs, PoolSpec{ID: strings.TrimSpace(parts[0]), Type: strings.TrimSpace(parts[1])})
	}
	return specs, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
