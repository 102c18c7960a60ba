package recorder

import (
	"time"

	"TrendSentry/internal/model"
)

// SignalSnapshot flattens one classification run for persistence.
type SignalSnapshot struct {
	Symbol          string
	Time            time.Time
	Price           float64
	TrendLabel      model.Label
	TrendValue      float64
	VolatilityLabel model.Label
	VolatilityValue float64
	MomentumLabel   model.Label
	MomentumValue   float64
}

// Recorder persists classification history and alert events for analysis.
// The core pipeline works the same with the noop implementation; storage
// is a hosting-application concern.
type Recorder interface {
	RecordSnapshot(snap *SignalSnapshot) error
	RecordAlertEvent(rule model.AlertRule, event model.AlertEvent) error
	Close() error
}

// NewSnapshot builds a snapshot from a report and the latest price.
// Undefined signal values are stored as NULL-like zeros alongside the
// Indeterminate label, so readers can tell them apart from real zeros.
func NewSnapshot(report model.Report, latest model.PricePoint) *SignalSnapshot {
	return &SignalSnapshot{
		Symbol:          report.Symbol,
		Time:            report.Time,
		Price:           latest.Close,
		TrendLabel:      report.Trend.Label,
		TrendValue:      report.Trend.Value,
		VolatilityLabel: report.Volatility.Label,
		VolatilityValue: report.Volatility.Value,
		MomentumLabel:   report.Momentum.Label,
		MomentumValue:   report.Momentum.Value,
	}
}
