package timeseries

import (
	"fmt"
	"time"
)

// MalformedPointError reports a point that violates the OHLC invariant.
// The point is rejected individually; the rest of its batch still ingests.
type MalformedPointError struct {
	Time   time.Time
	Reason string
}

func (e *MalformedPointError) Error() string {
	return fmt.Sprintf("malformed point at %s: %s", e.Time.Format(time.RFC3339), e.Reason)
}

// NotFoundError reports a query for a symbol with no ingested data.
type NotFoundError struct {
	Symbol string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no data ingested for symbol %q", e.Symbol)
}
