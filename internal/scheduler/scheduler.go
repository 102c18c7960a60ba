package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"TrendSentry/internal/alert"
	"TrendSentry/internal/collector"
	"TrendSentry/internal/forecast"
	"TrendSentry/internal/model"
	"TrendSentry/internal/notifier"
	"TrendSentry/internal/recorder"
	"TrendSentry/internal/signal"
	"TrendSentry/internal/timeseries"
)

// Scheduler runs the poll loop: fetch -> ingest -> classify -> evaluate
// alerts -> notify -> record. Writes to a symbol's series and rules are
// serialized by a per-symbol mutex; different symbols poll in parallel.
type Scheduler struct {
	Cron         *cron.Cron
	Fetcher      collector.Fetcher
	Store        *timeseries.Store
	Alerts       *alert.Engine
	Notifier     notifier.Interface
	Recorder     recorder.Recorder
	Extrapolator forecast.Extrapolator
	SignalCfg    signal.Config
	Horizon      int
	Symbols      []string
	Ctx          context.Context

	mu       sync.Mutex
	symLocks map[string]*sync.Mutex
}

// maxSendRetries bounds notification delivery attempts per message.
const maxSendRetries = 3

// New creates a Scheduler and wires alert trigger notifications through it.
func New(ctx context.Context, fetcher collector.Fetcher, store *timeseries.Store,
	alerts *alert.Engine, n notifier.Interface, rec recorder.Recorder,
	ex forecast.Extrapolator, sigCfg signal.Config, horizon int, symbols []string) *Scheduler {
	s := &Scheduler{
		Cron:         cron.New(cron.WithSeconds()),
		Fetcher:      fetcher,
		Store:        store,
		Alerts:       alerts,
		Notifier:     n,
		Recorder:     rec,
		Extrapolator: ex,
		SignalCfg:    sigCfg,
		Horizon:      horizon,
		Symbols:      symbols,
		Ctx:          ctx,
		symLocks:     make(map[string]*sync.Mutex),
	}
	alerts.OnTrigger(func(rule model.AlertRule, event model.AlertEvent) {
		s.trySend(notifier.FormatAlertEvent(rule, event))
	})
	return s
}

// trySend delivers a notification, retrying transient failures when the
// notifier supports it.
func (s *Scheduler) trySend(text string) {
	var err error
	if rs, ok := s.Notifier.(notifier.RetrySender); ok {
		err = rs.SendWithRetry(s.Ctx, text, maxSendRetries)
	} else {
		err = s.Notifier.Send(text)
	}
	if err != nil {
		zap.L().Error("send notification", zap.Error(err))
	}
}

// Register adds the poll task on the given cron expression (with seconds).
func (s *Scheduler) Register(pollCron string) error {
	if _, err := s.Cron.AddFunc(pollCron, s.pollAll); err != nil {
		return fmt.Errorf("register poll task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	zap.L().Info("scheduler started", zap.Strings("symbols", s.Symbols))
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	zap.L().Info("scheduler stopped")
}

// RunNow executes one poll of every symbol immediately and waits for it.
func (s *Scheduler) RunNow() {
	var wg sync.WaitGroup
	for _, sym := range s.Symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			s.PollSymbol(symbol)
		}(sym)
	}
	wg.Wait()
}

func (s *Scheduler) pollAll() {
	for _, sym := range s.Symbols {
		go s.PollSymbol(sym)
	}
}

// PollSymbol runs one fetch/analyze cycle for a single symbol. All
// mutations for the symbol happen under its lock, so an overlapping tick
// cannot interleave ingests with alert evaluation.
func (s *Scheduler) PollSymbol(symbol string) {
	lock := s.symbolLock(symbol)
	lock.Lock()
	defer lock.Unlock()

	if batch, err := s.Fetcher.FetchIntraday(symbol); err != nil {
		// Non-fatal: the last ingested series stays valid, and alert
		// evaluation below reports DataUnavailable when there is none.
		zap.L().Warn("fetch failed", zap.String("symbol", symbol), zap.Error(err))
	} else {
		_, rejected := s.Store.IngestBatch(symbol, batch)
		for _, rej := range rejected {
			zap.L().Warn("point rejected", zap.String("symbol", symbol), zap.Error(rej.Err))
		}
		zap.L().Debug("batch ingested",
			zap.String("symbol", symbol),
			zap.Int("points", len(batch)),
			zap.Int("rejected", len(rejected)))
	}

	s.evaluateAlerts(symbol)
	s.recordSnapshot(symbol)
}

func (s *Scheduler) evaluateAlerts(symbol string) {
	for _, res := range s.Alerts.EvaluateSymbol(symbol, s.Store) {
		switch res.Outcome {
		case alert.OutcomeTriggered:
			if err := s.Recorder.RecordAlertEvent(res.Rule, *res.Event); err != nil {
				zap.L().Error("record alert event", zap.Error(err))
			}
		case alert.OutcomeDataUnavailable:
			zap.L().Warn("alert check skipped, no price available",
				zap.String("symbol", symbol), zap.String("rule", res.Rule.ID))
		}
	}
}

func (s *Scheduler) recordSnapshot(symbol string) {
	series, err := s.Store.Series(symbol)
	if err != nil {
		return
	}
	report := signal.Classify(series, s.SignalCfg)
	latest, _ := series.Last()
	if err := s.Recorder.RecordSnapshot(recorder.NewSnapshot(report, latest)); err != nil {
		zap.L().Error("record snapshot", zap.String("symbol", symbol), zap.Error(err))
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return s.helpText()
	}

	switch fields[0] {
	case "/check":
		s.RunNow()
		return "Checked all symbols."
	case "/signal":
		if len(fields) < 2 {
			return "Usage: /signal SYMBOL"
		}
		return s.signalReport(strings.ToUpper(fields[1]))
	case "/alerts":
		return notifier.FormatActiveAlerts(s.Alerts.Rules())
	case "/alert":
		return s.createAlert(fields[1:])
	case "/clear":
		if len(fields) < 2 {
			return "Usage: /clear RULE_ID"
		}
		if err := s.Alerts.Clear(fields[1]); err != nil {
			return err.Error()
		}
		return "Alert cleared."
	case "/forecast":
		if len(fields) < 2 {
			return "Usage: /forecast SYMBOL"
		}
		return s.forecastReport(strings.ToUpper(fields[1]))
	default:
		return s.helpText()
	}
}

func (s *Scheduler) signalReport(symbol string) string {
	series, err := s.Store.Series(symbol)
	if err != nil {
		return fmt.Sprintf("No data for %s yet.", symbol)
	}
	report := signal.Classify(series, s.SignalCfg)
	latest, _ := series.Last()
	return notifier.FormatSignalReport(report, latest)
}

func (s *Scheduler) createAlert(args []string) string {
	if len(args) < 3 {
		return "Usage: /alert SYMBOL PRICE above|below"
	}
	threshold, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Sprintf("Invalid price %q.", args[1])
	}
	direction, err := model.ParseDirection(args[2])
	if err != nil {
		return err.Error()
	}
	rule := s.Alerts.Create(strings.ToUpper(args[0]), threshold, direction)
	return fmt.Sprintf("Alert set: %s %s %.2f (id %s)",
		rule.Symbol, strings.ToLower(string(rule.Direction)), rule.Threshold, rule.ID)
}

func (s *Scheduler) forecastReport(symbol string) string {
	series, err := s.Store.Series(symbol)
	if err != nil {
		return fmt.Sprintf("No data for %s yet.", symbol)
	}
	history := make([]forecast.Sample, series.Len())
	for i, p := range series.Points {
		history[i] = forecast.Sample{X: float64(i), Y: p.Close}
	}
	predictions, err := s.Extrapolator.FitAndPredict(history, s.Horizon)
	if err != nil {
		return fmt.Sprintf("Forecast unavailable: %v", err)
	}
	return notifier.FormatForecast(symbol, s.Extrapolator.Name(), predictions)
}

func (s *Scheduler) helpText() string {
	return "Commands:\n" +
		"/check - poll all symbols now\n" +
		"/signal SYMBOL - latest classification\n" +
		"/alerts - list alert rules\n" +
		"/alert SYMBOL PRICE above|below - set an alert\n" +
		"/clear RULE_ID - clear an alert\n" +
		"/forecast SYMBOL - extrapolate future closes"
}

func (s *Scheduler) symbolLock(symbol string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.symLocks[symbol]
	if !ok {
		lock = &sync.Mutex{}
		s.symLocks[symbol] = lock
	}
	return lock
}
