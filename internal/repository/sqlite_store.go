package repository

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

var sqliteDialect = dialect{
	name: "sqlite",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS payment_scenarios (
			id             TEXT PRIMARY KEY,
			scenario_type  TEXT NOT NULL,
			amount_usd     REAL NOT NULL,
			target_date    INTEGER,
			risk_tolerance TEXT NOT NULL,
			inflation_rate REAL NOT NULL,
			created_at     INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scenarios_created ON payment_scenarios(created_at)`,
		`CREATE TABLE IF NOT EXISTS payment_recommendations (
			id                     INTEGER PRIMARY KEY AUTOINCREMENT,
			scenario_id            TEXT NOT NULL,
			recommended_btc_amount REAL NOT NULL,
			optimal_timing         TEXT NOT NULL,
			confidence_score       REAL NOT NULL,
			reasoning              TEXT NOT NULL,
			volatility_forecast    REAL NOT NULL,
			projected_savings      REAL,
			risk_assessment        TEXT NOT NULL,
			source                 TEXT NOT NULL DEFAULT 'fallback',
			created_at             INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_recommendations_scenario ON payment_recommendations(scenario_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_recommendations_created ON payment_recommendations(created_at)`,
	},
	countScenarios:    "SELECT count(*) FROM payment_scenarios",
	scenarioSeq:       "rowid",
	recommendationSeq: "id",
}

// NewSQLiteStore opens (or creates) an embedded database. Path ":memory:" gives a private in-process database.
func NewSQLiteStore(path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if path == ":memory:" || strings.Contains(path, "mode=memory") {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	return &SQLStore{db: db, d: sqliteDialect, closeFn: db.Close}, nil
}
