package timeseries

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"TrendSentry/internal/model"
)

// timestampLayouts are the accepted ISO-8601 variants for raw batch keys.
// Alpha Vantage style ("2006-01-02 15:04:05") comes first since that is the
// shape the fetch layer delivers.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// Rejection pairs a point that failed ingest validation with the reason.
type Rejection struct {
	Point model.PricePoint
	Err   error
}

// Store normalizes raw quote batches into ordered, deduplicated price
// series, one per symbol. Reads and writes are mutex-guarded; the polling
// layer additionally serializes writers per symbol.
type Store struct {
	mu     sync.RWMutex
	series map[string]model.TimeSeries
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{series: make(map[string]model.TimeSeries)}
}

// Ingest merges points into the series for symbol: sorted by timestamp,
// exact-timestamp duplicates resolved last-write-wins (later points in the
// batch win over earlier ones, and the batch wins over history). Points
// violating the OHLC invariant are rejected individually and returned;
// the rest of the batch still ingests. Re-ingesting the same batch is a
// no-op, and existing points are never retroactively edited beyond the
// duplicate resolution above.
func (s *Store) Ingest(symbol string, points []model.PricePoint) (model.TimeSeries, []Rejection) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := make(map[int64]model.PricePoint)
	for _, p := range s.series[symbol].Points {
		merged[p.Time.UnixNano()] = p
	}

	var rejected []Rejection
	for _, p := range points {
		if err := p.Validate(); err != nil {
			rejected = append(rejected, Rejection{
				Point: p,
				Err:   &MalformedPointError{Time: p.Time, Reason: err.Error()},
			})
			continue
		}
		merged[p.Time.UnixNano()] = p
	}

	out := make([]model.PricePoint, 0, len(merged))
	for _, p := range merged {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })

	series := model.TimeSeries{Symbol: symbol, Points: out}
	s.series[symbol] = series
	return copySeries(series), rejected
}

// IngestBatch ingests a raw quote batch as delivered by the fetch layer:
// a map of ISO-8601 timestamp strings to numeric OHLCV records, in
// arbitrary order. Unparseable timestamps are rejected per entry.
func (s *Store) IngestBatch(symbol string, batch model.RawBatch) (model.TimeSeries, []Rejection) {
	points := make([]model.PricePoint, 0, len(batch))
	var rejected []Rejection

	// Sort keys so duplicate-timestamp resolution is deterministic.
	keys := make([]string, 0, len(batch))
	for ts := range batch {
		keys = append(keys, ts)
	}
	sort.Strings(keys)

	for _, ts := range keys {
		q := batch[ts]
		t, err := parseTimestamp(ts)
		if err != nil {
			rejected = append(rejected, Rejection{
				Point: model.PricePoint{Open: q.Open, High: q.High, Low: q.Low, Close: q.Close, Volume: q.Volume},
				Err:   fmt.Errorf("parse timestamp %q: %w", ts, err),
			})
			continue
		}
		points = append(points, model.PricePoint{
			Time: t, Open: q.Open, High: q.High, Low: q.Low, Close: q.Close, Volume: q.Volume,
		})
	}

	series, invalid := s.Ingest(symbol, points)
	return series, append(rejected, invalid...)
}

// Latest returns the most recent point for symbol, or NotFoundError when
// nothing has been ingested yet.
func (s *Store) Latest(symbol string) (model.PricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series, ok := s.series[symbol]
	if !ok || series.Len() == 0 {
		return model.PricePoint{}, &NotFoundError{Symbol: symbol}
	}
	return series.Points[series.Len()-1], nil
}

// Series returns a copy of the full series for symbol, or NotFoundError.
func (s *Store) Series(symbol string) (model.TimeSeries, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series, ok := s.series[symbol]
	if !ok || series.Len() == 0 {
		return model.TimeSeries{}, &NotFoundError{Symbol: symbol}
	}
	return copySeries(series), nil
}

// Slice returns the sub-series within [from, to] inclusive. An unknown
// symbol or an empty range yields an empty series, not an error.
func (s *Store) Slice(symbol string, from, to time.Time) model.TimeSeries {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := model.TimeSeries{Symbol: symbol}
	for _, p := range s.series[symbol].Points {
		if p.Time.Before(from) || p.Time.After(to) {
			continue
		}
		out.Points = append(out.Points, p)
	}
	return out
}

// Symbols lists all symbols with ingested data, sorted.
func (s *Store) Symbols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	symbols := make([]string, 0, len(s.series))
	for sym := range s.series {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	return symbols
}

func parseTimestamp(ts string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, ts)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func copySeries(s model.TimeSeries) model.TimeSeries {
	points := make([]model.PricePoint, len(s.Points))
	copy(points, s.Points)
	return model.TimeSeries{Symbol: s.Symbol, Points: points}
}
