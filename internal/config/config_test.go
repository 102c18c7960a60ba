package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SYMBOLS", "ALPHAVANTAGE_API_KEY", "DATA_PROVIDER",
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID",
		"POLL_CRON", "SQLITE_PATH", "HTTPS_PROXY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	if len(cfg.Symbols) != 1 || cfg.Symbols[0] != "AAPL" {
		t.Errorf("unexpected default symbols %v", cfg.Symbols)
	}
	if cfg.DataSource.Provider != "alphavantage" || cfg.DataSource.Interval != "5min" {
		t.Errorf("unexpected data source defaults %+v", cfg.DataSource)
	}
	if cfg.Schedule.PollCron == "" {
		t.Error("expected a default poll cron")
	}
	if cfg.Signal.ShortWindow != 50 || cfg.Signal.LongWindow != 200 {
		t.Errorf("unexpected signal window defaults %+v", cfg.Signal)
	}
	if cfg.Signal.HighVolatility != 3.0 || cfg.Signal.ModerateVolatility != 1.5 || cfg.Signal.StrongMomentum != 2.0 {
		t.Errorf("unexpected threshold defaults %+v", cfg.Signal)
	}
	if cfg.Forecast.Method != "linear" || cfg.Forecast.Horizon != 5 {
		t.Errorf("unexpected forecast defaults %+v", cfg.Forecast)
	}
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
symbols: [TSLA]
data_source:
  provider: mock
signal:
  short_window: 5
  long_window: 20
alerts:
  - symbol: TSLA
    threshold: 400
    direction: below
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SYMBOLS", "NVDA, AMD")
	t.Setenv("POLL_CRON", "0 * * * * *")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	// Env beats file for symbols; file values stay where no env is set.
	if len(cfg.Symbols) != 2 || cfg.Symbols[0] != "NVDA" || cfg.Symbols[1] != "AMD" {
		t.Errorf("unexpected symbols %v", cfg.Symbols)
	}
	if cfg.Schedule.PollCron != "0 * * * * *" {
		t.Errorf("unexpected poll cron %q", cfg.Schedule.PollCron)
	}
	if cfg.DataSource.Provider != "mock" {
		t.Errorf("unexpected provider %q", cfg.DataSource.Provider)
	}
	if cfg.Signal.ShortWindow != 5 || cfg.Signal.LongWindow != 20 {
		t.Errorf("unexpected signal windows %+v", cfg.Signal)
	}
	if len(cfg.Alerts) != 1 || cfg.Alerts[0].Direction != "below" {
		t.Errorf("unexpected alerts %+v", cfg.Alerts)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("config should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	base := func(t *testing.T) *Config {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		if err != nil {
			t.Fatal(err)
		}
		cfg.DataSource.Provider = "mock"
		return cfg
	}

	if err := base(t).Validate(); err != nil {
		t.Errorf("mock provider needs no api key: %v", err)
	}

	cfg := base(t)
	cfg.DataSource.Provider = "alphavantage"
	if err := cfg.Validate(); err == nil {
		t.Error("alphavantage without api key must fail validation")
	}

	cfg = base(t)
	cfg.Signal.ShortWindow = 500
	if err := cfg.Validate(); err == nil {
		t.Error("short window above long window must fail validation")
	}

	cfg = base(t)
	cfg.Alerts = append(cfg.Alerts, struct {
		Symbol    string  `yaml:"symbol"`
		Threshold float64 `yaml:"threshold"`
		Direction string  `yaml:"direction"`
	}{Symbol: "AAPL", Threshold: 100, Direction: "sideways"})
	if err := cfg.Validate(); err == nil {
		t.Error("invalid alert direction must fail validation")
	}
}
