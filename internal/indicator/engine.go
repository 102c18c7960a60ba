// Package indicator computes derived series from a price series snapshot.
// Every function is pure: identical input series and window always yield
// identical output. Insufficient history is represented in-band as
// undefined points, never zero-filled and never an error.
package indicator

import (
	"errors"
	"time"

	"github.com/montanaflynn/stats"

	"TrendSentry/internal/model"
)

// Point is one value of a derived series, aligned to the source series
// index. Defined is false during the warm-up stretch where the window has
// insufficient history.
type Point struct {
	Time    time.Time `json:"time"`
	Value   float64   `json:"value"`
	Defined bool      `json:"defined"`
}

// MovingAverage computes the simple arithmetic mean of the trailing
// `window` closes ending at each point. The first window-1 points are
// undefined.
func MovingAverage(series model.TimeSeries, window int) ([]Point, error) {
	if window <= 0 {
		return nil, errors.New("window must be positive")
	}
	closes := series.Closes()
	out := make([]Point, len(closes))
	for i, p := range series.Points {
		out[i] = Point{Time: p.Time}
		if i < window-1 {
			continue
		}
		mean, err := stats.Mean(closes[i-window+1 : i+1])
		if err != nil {
			return nil, err
		}
		out[i].Value = mean
		out[i].Defined = true
	}
	return out, nil
}

// PctChange computes the fractional close-over-close change
// (close[t] - close[t-1]) / close[t-1]. The first point is undefined, as is
// any point whose previous close is zero (no infinities are propagated).
func PctChange(series model.TimeSeries) []Point {
	closes := series.Closes()
	out := make([]Point, len(closes))
	for i, p := range series.Points {
		out[i] = Point{Time: p.Time}
		if i == 0 || closes[i-1] == 0 {
			continue
		}
		out[i].Value = (closes[i] - closes[i-1]) / closes[i-1]
		out[i].Defined = true
	}
	return out
}

// RollingVolatility computes the sample standard deviation of PctChange
// over the trailing window, expressed in percent. A point is defined only
// when all `window` trailing changes are defined.
func RollingVolatility(series model.TimeSeries, window int) ([]Point, error) {
	if window <= 0 {
		return nil, errors.New("window must be positive")
	}
	changes := PctChange(series)
	out := make([]Point, len(changes))
	for i, c := range changes {
		out[i] = Point{Time: c.Time}
		if i < window {
			continue
		}
		sample := make([]float64, 0, window)
		defined := true
		for j := i - window + 1; j <= i; j++ {
			if !changes[j].Defined {
				defined = false
				break
			}
			sample = append(sample, changes[j].Value*100)
		}
		if !defined {
			continue
		}
		sd, err := stats.StandardDeviationSample(sample)
		if err != nil {
			return nil, err
		}
		out[i].Value = sd
		out[i].Defined = true
	}
	return out, nil
}

// Momentum computes the percentage change over a fixed lookback window:
// (close[t] - close[t-lookback]) / close[t-lookback] * 100. The first
// `lookback` points are undefined.
func Momentum(series model.TimeSeries, lookback int) ([]Point, error) {
	if lookback <= 0 {
		return nil, errors.New("lookback must be positive")
	}
	closes := series.Closes()
	out := make([]Point, len(closes))
	for i, p := range series.Points {
		out[i] = Point{Time: p.Time}
		if i < lookback || closes[i-lookback] == 0 {
			continue
		}
		out[i].Value = (closes[i] - closes[i-lookback]) / closes[i-lookback] * 100
		out[i].Defined = true
	}
	return out, nil
}

// LastDefined returns the final point of a derived series when it is
// defined, or false otherwise.
func LastDefined(points []Point) (Point, bool) {
	if len(points) == 0 {
		return Point{}, false
	}
	last := points[len(points)-1]
	return last, last.Defined
}
