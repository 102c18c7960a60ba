package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"TrendSentry/internal/alert"
	"TrendSentry/internal/collector"
	"TrendSentry/internal/config"
	"TrendSentry/internal/forecast"
	"TrendSentry/internal/model"
	"TrendSentry/internal/notifier"
	"TrendSentry/internal/recorder"
	"TrendSentry/internal/scheduler"
	"TrendSentry/internal/timeseries"
	"TrendSentry/pkg/logger"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config validation: %v", err)
	}

	// Init logger
	flush, err := logger.Init(logger.Options{
		Level:      cfg.Log.Level,
		FilePath:   cfg.Log.FilePath,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer flush()
	zap.L().Info("TrendSentry starting", zap.Strings("symbols", cfg.Symbols))

	// Init fetcher
	fetcher, err := collector.NewFetcher(cfg.DataSource.Provider, cfg.DataSource.BaseURL,
		cfg.DataSource.APIKey, cfg.DataSource.Interval, cfg.Proxy)
	if err != nil {
		zap.L().Fatal("init fetcher", zap.Error(err))
	}
	zap.L().Info("data source ready", zap.String("provider", fetcher.Name()))

	// Init store and alert engine, seeding configured rules
	store := timeseries.NewStore()
	alerts := alert.NewEngine()
	for _, a := range cfg.Alerts {
		direction, err := model.ParseDirection(a.Direction)
		if err != nil {
			zap.L().Fatal("configured alert rule", zap.String("symbol", a.Symbol), zap.Error(err))
		}
		rule := alerts.Create(a.Symbol, a.Threshold, direction)
		zap.L().Info("alert rule armed",
			zap.String("symbol", rule.Symbol),
			zap.Float64("threshold", rule.Threshold),
			zap.String("direction", string(rule.Direction)))
	}

	// Init notifier
	var notify notifier.Interface
	var tg *notifier.Telegram
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		tg = notifier.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		notify = tg
	} else {
		zap.L().Info("no telegram bot configured, using console notifier")
		notify = notifier.NewConsole()
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLite(cfg.Database.SQLitePath)
		if err != nil {
			zap.L().Warn("init sqlite recorder failed, using noop", zap.Error(err))
			rec = recorder.NewNoop()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoop()
	}

	// Init extrapolator
	var ex forecast.Extrapolator
	switch cfg.Forecast.Method {
	case "lastvalue":
		ex = forecast.LastValue{}
	default:
		ex = forecast.Linear{}
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.New(ctx, fetcher, store, alerts, notify, rec, ex,
		cfg.SignalConfig(), cfg.Forecast.Horizon, cfg.Symbols)
	if err := sched.Register(cfg.Schedule.PollCron); err != nil {
		zap.L().Fatal("register poll task", zap.Error(err))
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling for interactive commands
	if tg != nil {
		go tg.StartPolling(ctx, sched.HandleCommand)
		zap.L().Info("telegram polling started")
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		zap.L().Info("RUN_ON_START enabled, polling now")
		go sched.RunNow()
	}

	zap.L().Info("TrendSentry is running")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	zap.L().Info("shutdown signal received, stopping")
	cancel()
	zap.L().Info("TrendSentry stopped")
}
