package model

import "time"

// SignalKind identifies which indicator family a signal classifies.
type SignalKind string

const (
	KindTrend      SignalKind = "TREND"
	KindVolatility SignalKind = "VOLATILITY"
	KindMomentum   SignalKind = "MOMENTUM"
)

// Label is a discrete classification result.
type Label string

const (
	// Trend labels.
	StrongBullish   Label = "StrongBullish"
	ModerateBullish Label = "ModerateBullish"
	Bearish         Label = "Bearish"

	// Volatility labels.
	HighVolatility     Label = "High"
	ModerateVolatility Label = "Moderate"
	LowVolatility      Label = "Low"

	// Momentum labels.
	StrongUp   Label = "StrongUp"
	StrongDown Label = "StrongDown"
	Neutral    Label = "Neutral"

	// Indeterminate is returned for any kind when the underlying
	// indicator has insufficient history. Callers must handle it
	// explicitly; it is never a stand-in for zero.
	Indeterminate Label = "Indeterminate"
)

// Signal is one classification result. Value carries the indicator reading
// the label was derived from; Defined is false when the reading was
// unavailable (insufficient history), in which case Label is Indeterminate.
type Signal struct {
	Kind        SignalKind `json:"kind"`
	Label       Label      `json:"label"`
	Value       float64    `json:"value"`
	Defined     bool       `json:"defined"`
	Explanation string     `json:"explanation"`
}

// Report bundles the three signal kinds produced by one classification run.
type Report struct {
	Symbol     string    `json:"symbol"`
	Time       time.Time `json:"time"`
	Trend      Signal    `json:"trend"`
	Volatility Signal    `json:"volatility"`
	Momentum   Signal    `json:"momentum"`
}
