package model

import (
	"fmt"
	"strings"
	"time"
)

// Direction says which side of the threshold fires the alert.
type Direction string

const (
	Above Direction = "ABOVE"
	Below Direction = "BELOW"
)

// ParseDirection converts a config or command string to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "above":
		return Above, nil
	case "below":
		return Below, nil
	default:
		return "", fmt.Errorf("direction must be above or below, got %q", s)
	}
}

// AlertStatus is the state of an alert rule.
// Armed -> Triggered -> Cleared, or Armed -> Cleared on user cancel.
// Cleared is terminal.
type AlertStatus string

const (
	Armed     AlertStatus = "ARMED"
	Triggered AlertStatus = "TRIGGERED"
	Cleared   AlertStatus = "CLEARED"
)

// AlertRule is a user-defined price condition for one symbol.
type AlertRule struct {
	ID        string      `json:"id"`
	Symbol    string      `json:"symbol"`
	Threshold float64     `json:"threshold"`
	Direction Direction   `json:"direction"`
	Status    AlertStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

// AlertEvent records an Armed -> Triggered transition. Exactly one event is
// emitted per rule over its lifetime.
type AlertEvent struct {
	RuleID         string    `json:"rule_id"`
	Symbol         string    `json:"symbol"`
	TriggeredPrice float64   `json:"triggered_price"`
	Time           time.Time `json:"time"`
}
