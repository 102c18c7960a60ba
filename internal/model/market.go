package model

import (
	"fmt"
	"time"
)

// PricePoint represents a single OHLCV bar.
type PricePoint struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Validate checks the OHLC invariant:
// high >= max(open, close) >= min(open, close) >= low >= 0, volume >= 0.
func (p PricePoint) Validate() error {
	if p.Low < 0 {
		return fmt.Errorf("low %.4f is negative", p.Low)
	}
	if p.Volume < 0 {
		return fmt.Errorf("volume %.4f is negative", p.Volume)
	}
	hi, lo := p.Open, p.Close
	if lo > hi {
		hi, lo = lo, hi
	}
	if p.High < hi {
		return fmt.Errorf("high %.4f below max(open, close) %.4f", p.High, hi)
	}
	if p.Low > lo {
		return fmt.Errorf("low %.4f above min(open, close) %.4f", p.Low, lo)
	}
	return nil
}

// TimeSeries holds the ordered price history for one symbol.
// Timestamps are strictly increasing; the series is only ever appended to.
type TimeSeries struct {
	Symbol string       `json:"symbol"`
	Points []PricePoint `json:"points"`
}

// Len returns the number of points in the series.
func (s TimeSeries) Len() int { return len(s.Points) }

// Last returns the most recent point, or false for an empty series.
func (s TimeSeries) Last() (PricePoint, bool) {
	if len(s.Points) == 0 {
		return PricePoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// Closes extracts the close prices in chronological order.
func (s TimeSeries) Closes() []float64 {
	closes := make([]float64, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Close
	}
	return closes
}

// RawQuote is one entry of a raw quote batch as delivered by the fetch
// layer: numeric OHLCV fields keyed by an ISO-8601 timestamp string.
type RawQuote struct {
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// RawBatch maps ISO-8601 timestamp strings to quotes, in arbitrary order.
type RawBatch map[string]RawQuote
