package repository

import (
	pkgch "OracleAgent/pkg/clickhouse"
)

// seq is filled server-side at insert time and orders rows that share a created_at.
var clickhouseDialect = dialect{
	name: "clickhouse",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS payment_scenarios (
			id             String,
			scenario_type  LowCardinality(String),
			amount_usd     Float64,
			target_date    Nullable(Int64),
			risk_tolerance LowCardinality(String),
			inflation_rate Float64,
			created_at     Int64,
			seq            Int64 DEFAULT toUnixTimestamp64Nano(now64(9))
		) ENGINE = MergeTree ORDER BY (created_at, seq)`,
		`CREATE TABLE IF NOT EXISTS payment_recommendations (
			scenario_id            String,
			recommended_btc_amount Float64,
			optimal_timing         LowCardinality(String),
			confidence_score       Float64,
			reasoning              String,
			volatility_forecast    Float64,
			projected_savings      Nullable(Float64),
			risk_assessment        LowCardinality(String),
			source                 LowCardinality(String) DEFAULT 'fallback',
			created_at             Int64,
			seq                    Int64 DEFAULT toUnixTimestamp64Nano(now64(9))
		) ENGINE = MergeTree ORDER BY (scenario_id, created_at, seq)`,
	},
	countScenarios:    "SELECT toInt64(count()) FROM payment_scenarios",
	scenarioSeq:       "seq",
	recommendationSeq: "seq",
}

// NewClickHouseStore stores both collections in MergeTree tables. The client owns the pool and is closed by the store.
func NewClickHouseStore(client *pkgch.Client) *SQLStore {
	return &SQLStore{
		db:      client.DB(),
		d:       clickhouseDialect,
		initFn:  client.InitSchema,
		closeFn: client.Close,
	}
}
