package recorder

import "TrendSentry/internal/model"

// Noop is a no-op implementation used when SQLite is not configured.
type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (n *Noop) RecordSnapshot(_ *SignalSnapshot) error { return nil }

func (n *Noop) RecordAlertEvent(_ model.AlertRule, _ model.AlertEvent) error { return nil }

func (n *Noop) Close() error { return nil }
