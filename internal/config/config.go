package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"TrendSentry/internal/model"
	"TrendSentry/internal/signal"
)

// Config holds all application configuration.
type Config struct {
	Symbols    []string `yaml:"symbols"`
	DataSource struct {
		Provider string `yaml:"provider"` // alphavantage | mock
		BaseURL  string `yaml:"base_url"`
		APIKey   string `yaml:"api_key"`
		Interval string `yaml:"interval"`
	} `yaml:"data_source"`
	Schedule struct {
		PollCron string `yaml:"poll_cron"`
	} `yaml:"schedule"`
	Signal struct {
		ShortWindow        int     `yaml:"short_window"`
		LongWindow         int     `yaml:"long_window"`
		VolatilityWindow   int     `yaml:"volatility_window"`
		MomentumLookback   int     `yaml:"momentum_lookback"`
		HighVolatility     float64 `yaml:"high_volatility"`
		ModerateVolatility float64 `yaml:"moderate_volatility"`
		StrongMomentum     float64 `yaml:"strong_momentum"`
	} `yaml:"signal"`
	Forecast struct {
		Method  string `yaml:"method"` // linear | lastvalue
		Horizon int    `yaml:"horizon"`
	} `yaml:"forecast"`
	Alerts []struct {
		Symbol    string  `yaml:"symbol"`
		Threshold float64 `yaml:"threshold"`
		Direction string  `yaml:"direction"` // above | below
	} `yaml:"alerts"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level      string `yaml:"level"`
		FilePath   string `yaml:"file_path"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
		Compress   bool   `yaml:"compress"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SYMBOLS"); v != "" {
		cfg.Symbols = splitSymbols(v)
	}
	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("POLL_CRON"); v != "" {
		cfg.Schedule.PollCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if len(cfg.Symbols) == 0 {
		cfg.Symbols = []string{"AAPL"}
	}
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "alphavantage"
	}
	if cfg.DataSource.Interval == "" {
		cfg.DataSource.Interval = "5min"
	}
	if cfg.Schedule.PollCron == "" {
		cfg.Schedule.PollCron = "0 */5 * * * *"
	}
	def := signal.DefaultConfig()
	if cfg.Signal.ShortWindow == 0 {
		cfg.Signal.ShortWindow = def.ShortWindow
	}
	if cfg.Signal.LongWindow == 0 {
		cfg.Signal.LongWindow = def.LongWindow
	}
	if cfg.Signal.VolatilityWindow == 0 {
		cfg.Signal.VolatilityWindow = def.VolatilityWindow
	}
	if cfg.Signal.MomentumLookback == 0 {
		cfg.Signal.MomentumLookback = def.MomentumLookback
	}
	if cfg.Signal.HighVolatility == 0 {
		cfg.Signal.HighVolatility = def.HighVolatility
	}
	if cfg.Signal.ModerateVolatility == 0 {
		cfg.Signal.ModerateVolatility = def.ModerateVolatility
	}
	if cfg.Signal.StrongMomentum == 0 {
		cfg.Signal.StrongMomentum = def.StrongMomentum
	}
	if cfg.Forecast.Method == "" {
		cfg.Forecast.Method = "linear"
	}
	if cfg.Forecast.Horizon == 0 {
		cfg.Forecast.Horizon = 5
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/trendsentry.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.MaxSizeMB == 0 {
		cfg.Log.MaxSizeMB = 100
	}
	if cfg.Log.MaxBackups == 0 {
		cfg.Log.MaxBackups = 7
	}
	if cfg.Log.MaxAgeDays == 0 {
		cfg.Log.MaxAgeDays = 30
	}

	return cfg, nil
}

// Validate checks that all required fields are set and coherent.
func (c *Config) Validate() error {
	if len(c.Symbols) == 0 {
		return fmt.Errorf("at least one symbol is required")
	}
	if c.DataSource.Provider == "alphavantage" && c.DataSource.APIKey == "" {
		return fmt.Errorf("data_source.api_key is required for the alphavantage provider")
	}
	if err := c.SignalConfig().Validate(); err != nil {
		return fmt.Errorf("signal config: %w", err)
	}
	if c.Forecast.Horizon <= 0 {
		return fmt.Errorf("forecast.horizon must be positive")
	}
	for i, a := range c.Alerts {
		if a.Symbol == "" {
			return fmt.Errorf("alerts[%d]: symbol is required", i)
		}
		if _, err := model.ParseDirection(a.Direction); err != nil {
			return fmt.Errorf("alerts[%d]: %w", i, err)
		}
	}
	return nil
}

// SignalConfig maps the config block onto the classifier configuration.
func (c *Config) SignalConfig() signal.Config {
	return signal.Config{
		ShortWindow:        c.Signal.ShortWindow,
		LongWindow:         c.Signal.LongWindow,
		VolatilityWindow:   c.Signal.VolatilityWindow,
		MomentumLookback:   c.Signal.MomentumLookback,
		HighVolatility:     c.Signal.HighVolatility,
		ModerateVolatility: c.Signal.ModerateVolatility,
		StrongMomentum:     c.Signal.StrongMomentum,
	}
}

func splitSymbols(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if sym := strings.TrimSpace(part); sym != "" {
			out = append(out, sym)
		}
	}
	return out
}
