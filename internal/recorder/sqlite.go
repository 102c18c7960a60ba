package recorder

import (
	"database/sql"
	"fmt"
	"sync"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"TrendSentry/internal/model"
)

// SQLite persists history to a SQLite database.
type SQLite struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLite opens (or creates) the database and runs migrations.
func NewSQLite(dbPath string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so external readers don't block the poll loop's writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLite{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	zap.L().Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLite) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS signal_snapshots (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp        INTEGER NOT NULL,
			symbol           TEXT NOT NULL,
			price            REAL,
			trend_label      TEXT,
			trend_value      REAL,
			volatility_label TEXT,
			volatility_value REAL,
			momentum_label   TEXT,
			momentum_value   REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_symbol_ts ON signal_snapshots(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS alert_events (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			rule_id         TEXT NOT NULL,
			symbol          TEXT NOT NULL,
			threshold       REAL,
			direction       TEXT,
			triggered_price REAL,
			timestamp       INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alert_events_ts ON alert_events(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLite) RecordSnapshot(snap *SignalSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO signal_snapshots
		(timestamp, symbol, price,
		 trend_label, trend_value,
		 volatility_label, volatility_value,
		 momentum_label, momentum_value)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		snap.Time.Unix(), snap.Symbol, snap.Price,
		string(snap.TrendLabel), snap.TrendValue,
		string(snap.VolatilityLabel), snap.VolatilityValue,
		string(snap.MomentumLabel), snap.MomentumValue,
	)
	return err
}

func (r *SQLite) RecordAlertEvent(rule model.AlertRule, event model.AlertEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO alert_events
		(rule_id, symbol, threshold, direction, triggered_price, timestamp)
		VALUES (?,?,?,?,?,?)`,
		event.RuleID, event.Symbol, rule.Threshold, string(rule.Direction),
		event.TriggeredPrice, event.Time.Unix(),
	)
	return err
}

func (r *SQLite) Close() error {
	zap.L().Info("closing sqlite recorder")
	return r.db.Close()
}
