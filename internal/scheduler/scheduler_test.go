package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"TrendSentry/internal/alert"
	"TrendSentry/internal/collector"
	"TrendSentry/internal/forecast"
	"TrendSentry/internal/model"
	"TrendSentry/internal/notifier"
	"TrendSentry/internal/recorder"
	"TrendSentry/internal/signal"
	"TrendSentry/internal/timeseries"
)

// captureNotifier records sent messages.
type captureNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (c *captureNotifier) Send(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, text)
	return nil
}

// captureRecorder records persisted snapshots and events.
type captureRecorder struct {
	mu        sync.Mutex
	snapshots []*recorder.SignalSnapshot
	events    []model.AlertEvent
}

func (c *captureRecorder) RecordSnapshot(snap *recorder.SignalSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots = append(c.snapshots, snap)
	return nil
}

func (c *captureRecorder) RecordAlertEvent(_ model.AlertRule, event model.AlertEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *captureRecorder) Close() error { return nil }

func testBatch(closes map[string]float64) model.RawBatch {
	batch := make(model.RawBatch, len(closes))
	for ts, c := range closes {
		batch[ts] = model.RawQuote{Open: c, High: c, Low: c, Close: c, Volume: 100}
	}
	return batch
}

func newTestScheduler(fetcher collector.Fetcher, n notifier.Interface, rec recorder.Recorder) (*Scheduler, *alert.Engine) {
	cfg := signal.DefaultConfig()
	cfg.ShortWindow = 2
	cfg.LongWindow = 3
	cfg.VolatilityWindow = 2
	cfg.MomentumLookback = 1

	alerts := alert.NewEngine()
	s := New(context.Background(), fetcher, timeseries.NewStore(), alerts, n, rec,
		forecast.LastValue{}, cfg, 3, []string{"AAPL"})
	return s, alerts
}

func TestPollSymbol_IngestsAndRecords(t *testing.T) {
	fetcher := &collector.MockFetcher{Batches: map[string]model.RawBatch{
		"AAPL": testBatch(map[string]float64{
			"2024-03-01 10:00:00": 100,
			"2024-03-01 10:05:00": 102,
			"2024-03-01 10:10:00": 104,
			"2024-03-01 10:15:00": 106,
		}),
	}}
	n := &captureNotifier{}
	rec := &captureRecorder{}
	s, alerts := newTestScheduler(fetcher, n, rec)
	rule := alerts.Create("AAPL", 105, model.Above)

	s.PollSymbol("AAPL")

	latest, err := s.Store.Latest("AAPL")
	if err != nil {
		t.Fatalf("expected ingested data: %v", err)
	}
	if latest.Close != 106 {
		t.Errorf("expected latest close 106, got %.2f", latest.Close)
	}

	if len(rec.events) != 1 {
		t.Fatalf("expected 1 recorded alert event, got %d", len(rec.events))
	}
	if rec.events[0].RuleID != rule.ID || rec.events[0].TriggeredPrice != 106 {
		t.Errorf("unexpected event %+v", rec.events[0])
	}
	if len(rec.snapshots) != 1 {
		t.Fatalf("expected 1 recorded snapshot, got %d", len(rec.snapshots))
	}
	if rec.snapshots[0].Symbol != "AAPL" || rec.snapshots[0].Price != 106 {
		t.Errorf("unexpected snapshot %+v", rec.snapshots[0])
	}
	if len(n.sent) != 1 {
		t.Errorf("expected 1 notification, got %d", len(n.sent))
	}

	// A second poll of the same batch must not re-fire the alert.
	s.PollSymbol("AAPL")
	if len(rec.events) != 1 {
		t.Errorf("alert re-fired on second poll: %d events", len(rec.events))
	}
}

// retryNotifier records which delivery path was used.
type retryNotifier struct {
	captureNotifier
	retried []string
}

func (r *retryNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retried = append(r.retried, text)
	return nil
}

func TestPollSymbol_TriggerNotificationUsesRetry(t *testing.T) {
	fetcher := &collector.MockFetcher{Batches: map[string]model.RawBatch{
		"AAPL": testBatch(map[string]float64{
			"2024-03-01 10:00:00": 100,
			"2024-03-01 10:05:00": 106,
		}),
	}}
	n := &retryNotifier{}
	s, alerts := newTestScheduler(fetcher, n, &captureRecorder{})
	alerts.Create("AAPL", 105, model.Above)

	s.PollSymbol("AAPL")

	if len(n.retried) != 1 {
		t.Fatalf("expected 1 notification through the retry path, got %d", len(n.retried))
	}
	if len(n.sent) != 0 {
		t.Errorf("plain Send must not be used when the notifier can retry, got %d", len(n.sent))
	}
	if !strings.Contains(n.retried[0], "AAPL") {
		t.Errorf("unexpected notification text %q", n.retried[0])
	}
}

func TestPollSymbol_FetchFailureKeepsSeries(t *testing.T) {
	fetcher := &collector.MockFetcher{Batches: map[string]model.RawBatch{
		"AAPL": testBatch(map[string]float64{"2024-03-01 10:00:00": 100}),
	}}
	rec := &captureRecorder{}
	s, _ := newTestScheduler(fetcher, &captureNotifier{}, rec)

	s.PollSymbol("AAPL")
	fetcher.Err = errors.New("upstream down")
	s.PollSymbol("AAPL")

	if _, err := s.Store.Latest("AAPL"); err != nil {
		t.Errorf("last ingested series must remain usable: %v", err)
	}
	// Both polls still recorded a snapshot from the last good series.
	if len(rec.snapshots) != 2 {
		t.Errorf("expected 2 snapshots, got %d", len(rec.snapshots))
	}
}

func TestHandleCommand(t *testing.T) {
	fetcher := &collector.MockFetcher{Batches: map[string]model.RawBatch{
		"AAPL": testBatch(map[string]float64{
			"2024-03-01 10:00:00": 100,
			"2024-03-01 10:05:00": 101,
			"2024-03-01 10:10:00": 102,
		}),
	}}
	s, alerts := newTestScheduler(fetcher, &captureNotifier{}, &captureRecorder{})
	s.PollSymbol("AAPL")

	if reply := s.HandleCommand("/signal AAPL"); !strings.Contains(reply, "AAPL") {
		t.Errorf("unexpected /signal reply: %q", reply)
	}
	if reply := s.HandleCommand("/signal MSFT"); !strings.Contains(reply, "No data") {
		t.Errorf("unexpected /signal reply for unknown symbol: %q", reply)
	}

	reply := s.HandleCommand("/alert aapl 150 above")
	if !strings.Contains(reply, "Alert set") {
		t.Fatalf("unexpected /alert reply: %q", reply)
	}
	rules := alerts.Rules()
	if len(rules) != 1 || rules[0].Symbol != "AAPL" || rules[0].Threshold != 150 {
		t.Fatalf("unexpected rules %+v", rules)
	}

	if reply := s.HandleCommand("/alerts"); !strings.Contains(reply, "AAPL") {
		t.Errorf("unexpected /alerts reply: %q", reply)
	}

	if reply := s.HandleCommand("/clear " + rules[0].ID); reply != "Alert cleared." {
		t.Errorf("unexpected /clear reply: %q", reply)
	}
	if got := alerts.Rules()[0].Status; got != model.Cleared {
		t.Errorf("expected Cleared, got %s", got)
	}

	if reply := s.HandleCommand("/forecast AAPL"); !strings.Contains(reply, "forecast") {
		t.Errorf("unexpected /forecast reply: %q", reply)
	}

	if reply := s.HandleCommand("/alert AAPL oops above"); !strings.Contains(reply, "Invalid price") {
		t.Errorf("unexpected reply for bad price: %q", reply)
	}
	if reply := s.HandleCommand("/unknown"); !strings.Contains(reply, "Commands") {
		t.Errorf("expected help text, got %q", reply)
	}
}
