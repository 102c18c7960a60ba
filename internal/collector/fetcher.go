package collector

import "TrendSentry/internal/model"

// Fetcher defines the interface for fetching intraday quote batches.
// Batches arrive already fetched; retry and rate-limit handling live here,
// never in the analytics core.
type Fetcher interface {
	FetchIntraday(symbol string) (model.RawBatch, error)
	Name() string
}
