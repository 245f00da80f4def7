package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"OracleAgent/internal/domain/models"
	"OracleAgent/internal/domain/repository"
)

// dialect carries the statements that differ between SQL backends.
// Timestamps are stored as unix microseconds in every dialect.
type dialect struct {
	name           string
	schema         []string
	countScenarios string

	// insertion-order tiebreak for rows sharing a created_at
	scenarioSeq       string
	recommendationSeq string
}

// SQLStore implements repository.Storage over database/sql.
type SQLStore struct {
	db      *sql.DB
	d       dialect
	initFn  func(ctx context.Context, stmts []string) error
	closeFn func() error
}

var _ repository.Storage = (*SQLStore)(nil)

const (
	scenarioColumns       = "id, scenario_type, amount_usd, target_date, risk_tolerance, inflation_rate, created_at"
	recommendationColumns = "scenario_id, recommended_btc_amount, optimal_timing, confidence_score, reasoning, volatility_forecast, projected_savings, risk_assessment, source, created_at"
)

func (s *SQLStore) Init(ctx context.Context) error {
	if s.initFn != nil {
		return s.initFn(ctx, s.d.schema)
	}
	for _, stmt := range s.d.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init %s schema: %w", s.d.name, err)
		}
	}
	return nil
}

func (s *SQLStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	if s.closeFn != nil {
		return s.closeFn()
	}
	return nil
}

func (s *SQLStore) CreateScenario(ctx context.Context, sc *models.PaymentScenario) error {
	q := "INSERT INTO payment_scenarios (" + scenarioColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?)"
	_, err := s.db.ExecContext(ctx, q,
		sc.ID,
		sc.ScenarioType,
		sc.AmountUSD,
		nullableMicros(sc.TargetDate),
		sc.RiskTolerance,
		sc.InflationRate,
		sc.CreatedAt.UnixMicro(),
	)
	if err != nil {
		return fmt.Errorf("insert scenario: %w", err)
	}
	return nil
}

func (s *SQLStore) GetScenario(ctx context.Context, id string) (*models.PaymentScenario, error) {
	q := "SELECT " + scenarioColumns + " FROM payment_scenarios WHERE id = ? LIMIT 1"
	sc, err := scanScenario(s.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("scenario %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get scenario: %w", err)
	}
	return sc, nil
}

func (s *SQLStore) ListScenarios(ctx context.Context, limit int) ([]*models.PaymentScenario, error) {
	q := "SELECT " + scenarioColumns + " FROM payment_scenarios ORDER BY created_at ASC, " + s.d.scenarioSeq + " ASC LIMIT ?"
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	defer rows.Close()

	out := make([]*models.PaymentScenario, 0)
	for rows.Next() {
		sc, err := scanScenario(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scenario: %w", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (s *SQLStore) CountScenarios(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, s.d.countScenarios).Scan(&n); err != nil {
		return 0, fmt.Errorf("count scenarios: %w", err)
	}
	return n, nil
}

func (s *SQLStore) CreateRecommendation(ctx context.Context, r *models.PaymentRecommendation) error {
	q := "INSERT INTO payment_recommendations (" + recommendationColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	var savings interface{}
	if r.ProjectedSavings != nil {
		savings = *r.ProjectedSavings
	}
	_, err := s.db.ExecContext(ctx, q,
		r.ScenarioID,
		r.RecommendedBTCAmount,
		r.OptimalTiming,
		r.ConfidenceScore,
		r.Reasoning,
		r.VolatilityForecast,
		savings,
		r.RiskAssessment,
		string(r.Source),
		r.CreatedAt.UnixMicro(),
	)
	if err != nil {
		return fmt.Errorf("insert recommendation: %w", err)
	}
	return nil
}

func (s *SQLStore) ListRecommendations(ctx context.Context, scenarioID string, limit int) ([]*models.PaymentRecommendation, error) {
	q := "SELECT " + recommendationColumns + " FROM payment_recommendations WHERE scenario_id = ? ORDER BY created_at ASC, " + s.d.recommendationSeq + " ASC LIMIT ?"
	return s.queryRecommendations(ctx, q, scenarioID, limit)
}

func (s *SQLStore) RecentRecommendations(ctx context.Context, limit int) ([]*models.PaymentRecommendation, error) {
	q := "SELECT " + recommendationColumns + " FROM payment_recommendations ORDER BY created_at DESC, " + s.d.recommendationSeq + " DESC LIMIT ?"
	return s.queryRecommendations(ctx, q, limit)
}

func (s *SQLStore) queryRecommendations(ctx context.Context, q string, args ...interface{}) ([]*models.PaymentRecommendation, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query recommendations: %w", err)
	}
	defer rows.Close()

	out := make([]*models.PaymentRecommendation, 0)
	for rows.Next() {
		var (
			r       models.PaymentRecommendation
			savings sql.NullFloat64
			source  string
			created int64
		)
		if err := rows.Scan(
			&r.ScenarioID,
			&r.RecommendedBTCAmount,
			&r.OptimalTiming,
			&r.ConfidenceScore,
			&r.Reasoning,
			&r.VolatilityForecast,
			&savings,
			&r.RiskAssessment,
			&source,
			&created,
		); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		if savings.Valid {
			v := savings.Float64
			r.ProjectedSavings = &v
		}
		r.Source = models.Source(source)
		r.CreatedAt = time.UnixMicro(created).UTC()
		out = append(out, &r)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanScenario(row rowScanner) (*models.PaymentScenario, error) {
	var (
		sc      models.PaymentScenario
		target  sql.NullInt64
		created int64
	)
	if err := row.Scan(
		&sc.ID,
		&sc.ScenarioType,
		&sc.AmountUSD,
		&target,
		&sc.RiskTolerance,
		&sc.InflationRate,
		&created,
	); err != nil {
		return nil, err
	}
	if target.Valid {
		t := time.UnixMicro(target.Int64).UTC()
		sc.TargetDate = &t
	}
	sc.CreatedAt = time.UnixMicro(created).UTC()
	return &sc, nil
}

func nullableMicros(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UnixMicro()
}
