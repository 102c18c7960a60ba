package alert

import (
	"errors"
	"testing"
	"time"

	"TrendSentry/internal/model"
)

// fakeSource implements PriceSource with a fixed price or failure.
type fakeSource struct {
	price float64
	err   error
}

func (f *fakeSource) Latest(_ string) (model.PricePoint, error) {
	if f.err != nil {
		return model.PricePoint{}, f.err
	}
	return model.PricePoint{Time: time.Now(), Close: f.price}, nil
}

func TestEvaluate_TriggerScenario(t *testing.T) {
	engine := NewEngine()
	rule := engine.Create("AAPL", 150, model.Above)
	if rule.Status != model.Armed {
		t.Fatalf("new rule must be Armed, got %s", rule.Status)
	}

	res, err := engine.Evaluate(rule.ID, 149)
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != OutcomeHeld || res.Event != nil {
		t.Fatalf("149 below threshold: expected Held with no event, got %+v", res)
	}

	res, err = engine.Evaluate(rule.ID, 150)
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != OutcomeTriggered {
		t.Fatalf("150 at threshold: expected Triggered, got %s", res.Outcome)
	}
	if res.Event == nil || res.Event.TriggeredPrice != 150 {
		t.Fatalf("expected event with triggered_price 150, got %+v", res.Event)
	}
	if res.Rule.Status != model.Triggered {
		t.Errorf("expected rule status Triggered, got %s", res.Rule.Status)
	}

	res, err = engine.Evaluate(rule.ID, 160)
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != OutcomeSkipped || res.Event != nil {
		t.Fatalf("triggered rule must not re-fire, got %+v", res)
	}

	if got := len(engine.Events()); got != 1 {
		t.Errorf("expected exactly 1 event, got %d", got)
	}
}

func TestEvaluate_AtMostOnce(t *testing.T) {
	engine := NewEngine()
	rule := engine.Create("AAPL", 100, model.Above)

	// Price repeatedly crosses back and forth over the threshold.
	for _, price := range []float64{99, 101, 98, 150, 100, 200, 99.99, 300} {
		if _, err := engine.Evaluate(rule.ID, price); err != nil {
			t.Fatal(err)
		}
	}
	if got := len(engine.Events()); got != 1 {
		t.Errorf("expected at most one trigger event, got %d", got)
	}
}

func TestEvaluate_BelowDirection(t *testing.T) {
	engine := NewEngine()
	rule := engine.Create("AAPL", 90, model.Below)

	res, _ := engine.Evaluate(rule.ID, 91)
	if res.Outcome != OutcomeHeld {
		t.Fatalf("91 above threshold: expected Held, got %s", res.Outcome)
	}
	res, _ = engine.Evaluate(rule.ID, 90)
	if res.Outcome != OutcomeTriggered {
		t.Fatalf("90 at threshold: expected Triggered, got %s", res.Outcome)
	}
}

func TestEvaluate_UnknownRule(t *testing.T) {
	engine := NewEngine()
	if _, err := engine.Evaluate("nope", 100); err == nil {
		t.Error("expected error for unknown rule")
	}
}

func TestClear(t *testing.T) {
	engine := NewEngine()
	rule := engine.Create("AAPL", 150, model.Above)

	// User cancels before trigger: Armed -> Cleared.
	if err := engine.Clear(rule.ID); err != nil {
		t.Fatal(err)
	}
	res, _ := engine.Evaluate(rule.ID, 200)
	if res.Outcome != OutcomeSkipped {
		t.Errorf("cleared rule must never trigger, got %s", res.Outcome)
	}
	if len(engine.Events()) != 0 {
		t.Error("cleared rule must not emit events")
	}

	// Idempotent, and terminal.
	if err := engine.Clear(rule.ID); err != nil {
		t.Errorf("clearing twice must be a no-op, got %v", err)
	}
	if got := engine.Rules()[0].Status; got != model.Cleared {
		t.Errorf("expected Cleared, got %s", got)
	}

	if err := engine.Clear("nope"); err == nil {
		t.Error("expected error for unknown rule")
	}
}

func TestClear_AfterTrigger(t *testing.T) {
	engine := NewEngine()
	rule := engine.Create("AAPL", 100, model.Above)
	engine.Evaluate(rule.ID, 120)

	if err := engine.Clear(rule.ID); err != nil {
		t.Fatal(err)
	}
	if got := engine.Rules()[0].Status; got != model.Cleared {
		t.Errorf("expected Cleared, got %s", got)
	}
}

func TestEvaluateSymbol_DataUnavailable(t *testing.T) {
	engine := NewEngine()
	rule := engine.Create("AAPL", 150, model.Above)

	results := engine.EvaluateSymbol("AAPL", &fakeSource{err: errors.New("no data")})
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Outcome != OutcomeDataUnavailable {
		t.Fatalf("expected DataUnavailable, got %s", results[0].Outcome)
	}
	if results[0].Rule.Status != model.Armed {
		t.Error("missing price must not transition the rule")
	}
	if len(engine.Events()) != 0 {
		t.Error("missing price must not emit events")
	}

	// Once data is available the same rule can still trigger.
	results = engine.EvaluateSymbol("AAPL", &fakeSource{price: 155})
	if results[0].Outcome != OutcomeTriggered {
		t.Errorf("expected Triggered once price is available, got %s", results[0].Outcome)
	}
	_ = rule
}

func TestEvaluateSymbol_OnlyMatchingSymbol(t *testing.T) {
	engine := NewEngine()
	engine.Create("AAPL", 150, model.Above)
	engine.Create("MSFT", 300, model.Above)

	results := engine.EvaluateSymbol("AAPL", &fakeSource{price: 100})
	if len(results) != 1 {
		t.Fatalf("expected only AAPL rules evaluated, got %d results", len(results))
	}
	if results[0].Rule.Symbol != "AAPL" {
		t.Errorf("unexpected rule %+v", results[0].Rule)
	}
}

func TestOnTrigger_CallbackFiresOnce(t *testing.T) {
	engine := NewEngine()
	rule := engine.Create("AAPL", 100, model.Above)

	var calls []model.AlertEvent
	engine.OnTrigger(func(_ model.AlertRule, event model.AlertEvent) {
		calls = append(calls, event)
	})

	engine.Evaluate(rule.ID, 99)
	engine.Evaluate(rule.ID, 101)
	engine.Evaluate(rule.ID, 102)

	if len(calls) != 1 {
		t.Fatalf("expected exactly one callback, got %d", len(calls))
	}
	if calls[0].RuleID != rule.ID || calls[0].TriggeredPrice != 101 {
		t.Errorf("unexpected callback event %+v", calls[0])
	}
}
