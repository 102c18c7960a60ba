// Package signal converts indicator readings into discrete trend,
// volatility, and momentum classifications. Thresholds are configurable;
// the defaults below match the values the classifier documents, but
// nothing here treats them as authoritative.
package signal

import (
	"fmt"

	"TrendSentry/internal/indicator"
	"TrendSentry/internal/model"
)

// Config holds the classifier windows and thresholds.
type Config struct {
	ShortWindow        int     // short moving-average window, default 50
	LongWindow         int     // long moving-average window, default 200
	VolatilityWindow   int     // rolling volatility window, default 10
	MomentumLookback   int     // momentum lookback, default 10
	HighVolatility     float64 // percent, default 3.0
	ModerateVolatility float64 // percent, default 1.5
	StrongMomentum     float64 // percent, default 2.0
}

// DefaultConfig returns the documented default thresholds.
func DefaultConfig() Config {
	return Config{
		ShortWindow:        50,
		LongWindow:         200,
		VolatilityWindow:   10,
		MomentumLookback:   10,
		HighVolatility:     3.0,
		ModerateVolatility: 1.5,
		StrongMomentum:     2.0,
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.ShortWindow <= 0 || c.LongWindow <= 0 || c.VolatilityWindow <= 0 || c.MomentumLookback <= 0 {
		return fmt.Errorf("windows must be positive")
	}
	if c.ShortWindow >= c.LongWindow {
		return fmt.Errorf("short window %d must be below long window %d", c.ShortWindow, c.LongWindow)
	}
	if c.ModerateVolatility > c.HighVolatility {
		return fmt.Errorf("moderate volatility threshold %.2f above high threshold %.2f",
			c.ModerateVolatility, c.HighVolatility)
	}
	return nil
}

// Classify produces one signal per kind from the current series snapshot.
// It never returns partial results: any undefined indicator input yields an
// Indeterminate signal with an undefined value, which callers must handle
// explicitly. Deterministic for identical series and config.
func Classify(series model.TimeSeries, cfg Config) model.Report {
	report := model.Report{Symbol: series.Symbol}
	if last, ok := series.Last(); ok {
		report.Time = last.Time
	}
	report.Trend = ClassifyTrend(series, cfg)
	report.Volatility = ClassifyVolatility(series, cfg)
	report.Momentum = ClassifyMomentum(series, cfg)
	return report
}

// ClassifyTrend compares the latest close against the short and long
// moving averages: above both is StrongBullish, above only the long one is
// ModerateBullish, otherwise Bearish. The signal value is the percent
// deviation of the close from the long average.
func ClassifyTrend(series model.TimeSeries, cfg Config) model.Signal {
	sig := model.Signal{Kind: model.KindTrend, Label: model.Indeterminate}

	last, ok := series.Last()
	if !ok {
		sig.Explanation = "no data"
		return sig
	}
	shortMA, okShort := lastMA(series, cfg.ShortWindow)
	longMA, okLong := lastMA(series, cfg.LongWindow)
	if !okShort || !okLong {
		sig.Explanation = fmt.Sprintf("insufficient history for SMA%d/SMA%d", cfg.ShortWindow, cfg.LongWindow)
		return sig
	}

	sig.Defined = true
	if longMA != 0 {
		sig.Value = (last.Close - longMA) / longMA * 100
	}
	switch {
	case last.Close > shortMA && last.Close > longMA:
		sig.Label = model.StrongBullish
	case last.Close > longMA:
		sig.Label = model.ModerateBullish
	default:
		sig.Label = model.Bearish
	}
	sig.Explanation = fmt.Sprintf("close %.2f vs SMA%d %.2f, SMA%d %.2f",
		last.Close, cfg.ShortWindow, shortMA, cfg.LongWindow, longMA)
	return sig
}

// ClassifyVolatility labels the latest rolling volatility reading v
// (percent): High when v > high threshold, Moderate when
// moderate < v <= high, else Low. Boundaries are inclusive toward the
// lower label, so exactly the high threshold is Moderate and exactly the
// moderate threshold is Low.
func ClassifyVolatility(series model.TimeSeries, cfg Config) model.Signal {
	sig := model.Signal{Kind: model.KindVolatility, Label: model.Indeterminate}

	vol, err := indicator.RollingVolatility(series, cfg.VolatilityWindow)
	if err != nil {
		sig.Explanation = err.Error()
		return sig
	}
	last, ok := indicator.LastDefined(vol)
	if !ok {
		sig.Explanation = fmt.Sprintf("insufficient history for %d-period volatility", cfg.VolatilityWindow)
		return sig
	}

	sig.Value = last.Value
	sig.Defined = true
	switch {
	case last.Value > cfg.HighVolatility:
		sig.Label = model.HighVolatility
	case last.Value > cfg.ModerateVolatility:
		sig.Label = model.ModerateVolatility
	default:
		sig.Label = model.LowVolatility
	}
	sig.Explanation = fmt.Sprintf("volatility %.2f%% over %d periods", last.Value, cfg.VolatilityWindow)
	return sig
}

// ClassifyMomentum labels the percentage change c over the lookback
// window: StrongUp when c > threshold, StrongDown when c < -threshold,
// else Neutral.
func ClassifyMomentum(series model.TimeSeries, cfg Config) model.Signal {
	sig := model.Signal{Kind: model.KindMomentum, Label: model.Indeterminate}

	mom, err := indicator.Momentum(series, cfg.MomentumLookback)
	if err != nil {
		sig.Explanation = err.Error()
		return sig
	}
	last, ok := indicator.LastDefined(mom)
	if !ok {
		sig.Explanation = fmt.Sprintf("insufficient history for %d-period momentum", cfg.MomentumLookback)
		return sig
	}

	sig.Value = last.Value
	sig.Defined = true
	switch {
	case last.Value > cfg.StrongMomentum:
		sig.Label = model.StrongUp
	case last.Value < -cfg.StrongMomentum:
		sig.Label = model.StrongDown
	default:
		sig.Label = model.Neutral
	}
	sig.Explanation = fmt.Sprintf("%+.2f%% over %d periods", last.Value, cfg.MomentumLookback)
	return sig
}

func lastMA(series model.TimeSeries, window int) (float64, bool) {
	ma, err := indicator.MovingAverage(series, window)
	if err != nil {
		return 0, false
	}
	last, ok := indicator.LastDefined(ma)
	if !ok {
		return 0, false
	}
	return last.Value, true
}
