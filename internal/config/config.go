// Package config loads and validates the YAML document that parameterizes
// the engine: venue endpoints and credentials, strategy thresholds, risk
// limits, and traded symbols across all four venues.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// VenueConfig holds one venue's connection and credential settings.
type VenueConfig struct {
	Enabled    bool     `yaml:"enabled"`
	WSURL      string   `yaml:"ws_url"`
	RestURL    string   `yaml:"rest_url"`
	AccessKey  string   `yaml:"access_key"`
	SecretKey  string   `yaml:"secret_key"`
	// Passphrase is used only by venues whose REST auth requires one.
	Passphrase string   `yaml:"passphrase"`
	Symbols    []string `yaml:"symbols"`

	RateLimit struct {
		RequestsPerSecond int `yaml:"requests_per_second"`
		Burst             int `yaml:"burst"`
	} `yaml:"rate_limit"`
}

// StrategyConfig holds the premium thresholds and order sizing bounds
// the planner uses to decide whether an opportunity is actionable.
type StrategyConfig struct {
	MinPremiumPct float64 `yaml:"min_premium_pct"`
	MaxPremiumPct float64 `yaml:"max_premium_pct"`
	MinOrderQty   float64 `yaml:"min_order_qty"`
	MaxOrderQty   float64 `yaml:"max_order_qty"`
}

// RiskConfig holds the account-level guardrails.
type RiskConfig struct {
	DailyLossLimit float64 `yaml:"daily_loss_limit"`
	MaxTransfer    float64 `yaml:"max_transfer"`
	KillSwitch     bool    `yaml:"kill_switch"`
}

// SymbolConfig names the primary and secondary coin pairs traded, plus
// each venue's symbol string for them (venues disagree on separator
// and ordering, e.g. "KRW-XRP" vs "XRP_KRW" vs "XRPUSDT").
type SymbolConfig struct {
	Primary      string            `yaml:"primary"`
	Secondary    string            `yaml:"secondary"`
	VenueSymbols map[string]string `yaml:"venue_symbols"`
}

// FxConfig configures the external FX rate source.
type FxConfig struct {
	URL             string `yaml:"url"`
	PollIntervalSec int    `yaml:"poll_interval_sec"`
}

// Config is the fully parsed application configuration.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Trading struct {
		Mode string `yaml:"mode"` // "paper" or "live"
	} `yaml:"trading"`

	Venues struct {
		Upbit   VenueConfig `yaml:"upbit"`
		Bithumb VenueConfig `yaml:"bithumb"`
		Binance VenueConfig `yaml:"binance"`
		Mexc    VenueConfig `yaml:"mexc"`
	} `yaml:"venues"`

	Fx       FxConfig       `yaml:"fx"`
	Strategy StrategyConfig `yaml:"strategy"`
	Risk     RiskConfig     `yaml:"risk"`
	Symbols  SymbolConfig   `yaml:"symbols"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// Load reads and parses the YAML file at path, applies environment
// variable credential overrides, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks structural invariants across all four venues and
// the strategy/risk sections.
func (c *Config) Validate() error {
	venues := map[string]VenueConfig{
		"upbit":   c.Venues.Upbit,
		"bithumb": c.Venues.Bithumb,
		"binance": c.Venues.Binance,
		"mexc":    c.Venues.Mexc,
	}
	for name, v := range venues {
		if !v.Enabled {
			continue
		}
		if v.WSURL == "" || !(strings.HasPrefix(v.WSURL, "ws://") || strings.HasPrefix(v.WSURL, "wss://")) {
			return fmt.Errorf("invalid %s WS URL: %s", name, v.WSURL)
		}
		if len(v.Symbols) == 0 {
			return fmt.Errorf("at least one symbol is required for enabled venue %s", name)
		}
	}

	if c.Strategy.MinPremiumPct < 0 {
		return fmt.Errorf("strategy.min_premium_pct must be non-negative")
	}
	if c.Strategy.MaxPremiumPct != 0 && c.Strategy.MaxPremiumPct < c.Strategy.MinPremiumPct {
		return fmt.Errorf("strategy.max_premium_pct must be >= min_premium_pct")
	}
	if c.Strategy.MinOrderQty < 0 || c.Strategy.MaxOrderQty < 0 {
		return fmt.Errorf("strategy order quantity bounds must be non-negative")
	}
	if c.Strategy.MaxOrderQty != 0 && c.Strategy.MaxOrderQty < c.Strategy.MinOrderQty {
		return fmt.Errorf("strategy.max_order_qty must be >= min_order_qty")
	}

	if c.Risk.DailyLossLimit < 0 {
		return fmt.Errorf("risk.daily_loss_limit must be non-negative")
	}
	if c.Risk.MaxTransfer < 0 {
		return fmt.Errorf("risk.max_transfer must be non-negative")
	}

	return nil
}

// overrideWithEnv applies CRYPTO_<VENUE>_KEY / _SECRET / _PASSPHRASE
// environment variables on top of whatever credentials were parsed
// from the config file, so secrets never need to live on disk.
func overrideWithEnv(cfg *Config) {
	if hasAnySecret(cfg) {
		fmt.Println("WARNING: API secrets found in config file.")
		fmt.Println("Prefer environment variables: CRYPTO_<VENUE>_KEY / _SECRET / _PASSPHRASE")
	}

	apply := func(v *VenueConfig, prefix string) {
		if key := os.Getenv(prefix + "_KEY"); key != "" {
			v.AccessKey = key
		}
		if secret := os.Getenv(prefix + "_SECRET"); secret != "" {
			v.SecretKey = secret
		}
		if pass := os.Getenv(prefix + "_PASSPHRASE"); pass != "" {
			v.Passphrase = pass
		}
	}

	apply(&cfg.Venues.Upbit, "CRYPTO_UPBIT")
	apply(&cfg.Venues.Bithumb, "CRYPTO_BITHUMB")
	apply(&cfg.Venues.Binance, "CRYPTO_BINANCE")
	apply(&cfg.Venues.Mexc, "CRYPTO_MEXC")
}

func hasAnySecret(cfg *Config) bool {
	return cfg.Venues.Upbit.SecretKey != "" ||
		cfg.Venues.Bithumb.SecretKey != "" ||
		cfg.Venues.Binance.SecretKey != "" ||
		cfg.Venues.Mexc.SecretKey != ""
}
