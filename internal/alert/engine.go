// Package alert holds user-defined price conditions and evaluates them
// against the latest ingested price. The defining invariant is
// at-most-once trigger per rule: an Armed rule emits exactly one event on
// its Armed -> Triggered transition and never re-fires.
package alert

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"TrendSentry/internal/model"
)

// Outcome is the result of evaluating one rule.
type Outcome string

const (
	// OutcomeTriggered: the rule transitioned Armed -> Triggered.
	OutcomeTriggered Outcome = "TRIGGERED"
	// OutcomeHeld: the rule is Armed and the condition is false.
	OutcomeHeld Outcome = "HELD"
	// OutcomeSkipped: the rule is already Triggered or Cleared; no-op.
	OutcomeSkipped Outcome = "SKIPPED"
	// OutcomeDataUnavailable: no current price could be obtained. The rule
	// did not transition; distinguishable from "condition false".
	OutcomeDataUnavailable Outcome = "DATA_UNAVAILABLE"
)

// PriceSource supplies the latest price for a symbol.
type PriceSource interface {
	Latest(symbol string) (model.PricePoint, error)
}

// Result pairs a rule with its evaluation outcome.
type Result struct {
	Rule    model.AlertRule
	Outcome Outcome
	Event   *model.AlertEvent
}

// TriggerFunc is notified on each Armed -> Triggered transition, so a
// presentation layer can react without leaking into the engine contract.
type TriggerFunc func(rule model.AlertRule, event model.AlertEvent)

// Engine owns the alert rules and the append-only event log.
type Engine struct {
	mu        sync.Mutex
	rules     map[string]*model.AlertRule
	events    []model.AlertEvent
	onTrigger []TriggerFunc
	now       func() time.Time
}

// NewEngine creates an empty alert engine.
func NewEngine() *Engine {
	return &Engine{
		rules: make(map[string]*model.AlertRule),
		now:   time.Now,
	}
}

// OnTrigger registers a callback invoked after each trigger transition.
// Callbacks run outside the engine lock.
func (e *Engine) OnTrigger(fn TriggerFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onTrigger = append(e.onTrigger, fn)
}

// Create registers a new Armed rule for symbol.
func (e *Engine) Create(symbol string, threshold float64, direction model.Direction) model.AlertRule {
	e.mu.Lock()
	defer e.mu.Unlock()

	rule := model.AlertRule{
		ID:        uuid.NewString(),
		Symbol:    symbol,
		Threshold: threshold,
		Direction: direction,
		Status:    model.Armed,
		CreatedAt: e.now(),
	}
	e.rules[rule.ID] = &rule
	return rule
}

// Evaluate checks one rule against a current price. A rule that is not
// Armed never transitions and never re-fires (OutcomeSkipped). An Armed
// rule triggers when price >= threshold (Above) or price <= threshold
// (Below), emitting exactly one event; otherwise it stays Armed.
func (e *Engine) Evaluate(ruleID string, price float64) (Result, error) {
	e.mu.Lock()
	rule, ok := e.rules[ruleID]
	if !ok {
		e.mu.Unlock()
		return Result{}, fmt.Errorf("unknown alert rule %q", ruleID)
	}
	result := e.evaluateLocked(rule, price)
	e.mu.Unlock()

	e.notify(result)
	return result, nil
}

// EvaluateSymbol evaluates every rule for symbol against the latest price
// from src. When no price is available, every rule reports
// OutcomeDataUnavailable and no state changes, so "couldn't check" stays
// distinct from "not yet triggered".
func (e *Engine) EvaluateSymbol(symbol string, src PriceSource) []Result {
	latest, priceErr := src.Latest(symbol)

	e.mu.Lock()
	var results []Result
	for _, rule := range e.sortedRulesLocked() {
		if rule.Symbol != symbol {
			continue
		}
		if priceErr != nil {
			results = append(results, Result{Rule: *rule, Outcome: OutcomeDataUnavailable})
			continue
		}
		results = append(results, e.evaluateLocked(rule, latest.Close))
	}
	e.mu.Unlock()

	for _, r := range results {
		e.notify(r)
	}
	return results
}

// Clear forces the rule to Cleared regardless of its current state.
// Idempotent; Cleared is terminal.
func (e *Engine) Clear(ruleID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	rule, ok := e.rules[ruleID]
	if !ok {
		return fmt.Errorf("unknown alert rule %q", ruleID)
	}
	rule.Status = model.Cleared
	return nil
}

// Rules returns a snapshot of all rules, ordered by creation time.
func (e *Engine) Rules() []model.AlertRule {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]model.AlertRule, 0, len(e.rules))
	for _, rule := range e.sortedRulesLocked() {
		out = append(out, *rule)
	}
	return out
}

// Events returns a copy of the append-only event log.
func (e *Engine) Events() []model.AlertEvent {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]model.AlertEvent, len(e.events))
	copy(out, e.events)
	return out
}

func (e *Engine) evaluateLocked(rule *model.AlertRule, price float64) Result {
	if rule.Status != model.Armed {
		return Result{Rule: *rule, Outcome: OutcomeSkipped}
	}

	crossed := (rule.Direction == model.Above && price >= rule.Threshold) ||
		(rule.Direction == model.Below && price <= rule.Threshold)
	if !crossed {
		return Result{Rule: *rule, Outcome: OutcomeHeld}
	}

	rule.Status = model.Triggered
	event := model.AlertEvent{
		RuleID:         rule.ID,
		Symbol:         rule.Symbol,
		TriggeredPrice: price,
		Time:           e.now(),
	}
	e.events = append(e.events, event)
	return Result{Rule: *rule, Outcome: OutcomeTriggered, Event: &event}
}

func (e *Engine) sortedRulesLocked() []*model.AlertRule {
	rules := make([]*model.AlertRule, 0, len(e.rules))
	for _, r := range e.rules {
		rules = append(rules, r)
	}
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].CreatedAt.Equal(rules[j].CreatedAt) {
			return rules[i].ID < rules[j].ID
		}
		return rules[i].CreatedAt.Before(rules[j].CreatedAt)
	})
	return rules
}

func (e *Engine) notify(r Result) {
	if r.Outcome != OutcomeTriggered || r.Event == nil {
		return
	}
	e.mu.Lock()
	callbacks := make([]TriggerFunc, len(e.onTrigger))
	copy(callbacks, e.onTrigger)
	e.mu.Unlock()
	for _, fn := range callbacks {
		fn(r.Rule, *r.Event)
	}
}
