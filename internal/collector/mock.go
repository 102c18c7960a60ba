package collector

import (
	"fmt"
	"time"

	"TrendSentry/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Batches map[string]model.RawBatch
	Err     error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchIntraday(symbol string) (model.RawBatch, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if batch, ok := m.Batches[symbol]; ok {
		return batch, nil
	}
	return generateMockBatch(100, 30), nil
}

// generateMockBatch produces a gently drifting intraday series of 5-minute
// bars ending now.
func generateMockBatch(basePrice float64, count int) model.RawBatch {
	batch := make(model.RawBatch, count)
	start := time.Now().Add(-time.Duration(count) * 5 * time.Minute).Truncate(5 * time.Minute)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		ts := start.Add(time.Duration(i) * 5 * time.Minute).Format("2006-01-02 15:04:05")
		batch[ts] = model.RawQuote{
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 100000,
		}
	}
	return batch
}

// NewFetcher selects a fetcher implementation by provider name.
func NewFetcher(provider, baseURL, apiKey, interval, proxyURL string) (Fetcher, error) {
	switch provider {
	case "alphavantage", "":
		return NewAlphaVantageFetcher(baseURL, apiKey, interval, proxyURL), nil
	case "mock":
		return &MockFetcher{}, nil
	default:
		return nil, fmt.Errorf("unknown data provider %q", provider)
	}
}
