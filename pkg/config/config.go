package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"production" validate:"required"`
	Log         struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=json console"`
		Output string `yaml:"output" default:"stderr"`
	} `yaml:"log"`
	TradingView struct {
		SessionID  string        `yaml:"session_id"`
		ScannerURL string        `yaml:"scanner_url" default:"https://scanner.tradingview.com" validate:"url"`
		SearchURL  string        `yaml:"search_url" default:"https://symbol-search.tradingview.com" validate:"url"`
		AccountURL string        `yaml:"account_url" default:"https://www.tradingview.com" validate:"url"`
		Exchange   string        `yaml:"exchange" default:"BLOFIN" validate:"required"`
		Timeout    time.Duration `yaml:"timeout" default:"15s" validate:"gt=0"`
	} `yaml:"tradingview"`
	Watchlist struct {
		File             string  `yaml:"file" default:"watchlist.json"`
		MinChangePercent float64 `yaml:"min_change_percent" default:"5.0" validate:"gte=0"`
		SyncLimit        int     `yaml:"sync_limit" default:"50" validate:"gt=0"`
	} `yaml:"watchlist"`
	Scan struct {
		MaxCandidates     int     `yaml:"max_candidates" default:"15" validate:"gt=0"`
		RequestsPerSecond float64 `yaml:"requests_per_second" default:"2" validate:"gt=0"`
		FastTimeframe     string  `yaml:"fast_timeframe" default:"4h" validate:"oneof=1h 4h"`
		SlowTimeframe     string  `yaml:"slow_timeframe" default:"1d" validate:"oneof=1d"`
	} `yaml:"scan"`
}

var validate = validator.New()

// Load reads the optional YAML file at path, fills defaults, applies
// environment overrides and validates the result. An empty path or a
// missing file is not an error; defaults plus environment apply.
func Load(path string) (*Config, error) {
	var c Config

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	c.applyEnv()

	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// applyEnv overrides config values from the environment. A local .env
// file is loaded first if present.
func (c *Config) applyEnv() {
	_ = godotenv.Load()

	if v := os.Getenv("TVTOOLS_SESSION_ID"); v != "" {
		c.TradingView.SessionID = v
	}
	if v := os.Getenv("TVTOOLS_EXCHANGE"); v != "" {
		c.TradingView.Exchange = v
	}
	if v := os.Getenv("TVTOOLS_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("TVTOOLS_MIN_CHANGE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Watchlist.MinChangePercent = f
		}
	}
}
