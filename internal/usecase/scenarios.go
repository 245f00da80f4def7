package usecase

import (
	"context"
	"fmt"
	"time"

	"OracleAgent/internal/domain/models"
	domrepo "OracleAgent/internal/domain/repository"
	applogger "OracleAgent/pkg/logger"

	"github.com/google/uuid"
)

const (
	MaxScenarios          = 100
	MaxRecommendations    = 50
	RecentRecommendations = 5
)

// ScenarioUseCase implements the scenario and recommendation flows.
type ScenarioUseCase struct {
	store     domrepo.Storage
	market    *MarketUseCase
	engine    *RecommendationEngine
	publisher domrepo.EventPublisher
	metrics   domrepo.Metrics
	log       *applogger.Logger
	now       func() time.Time
	newID     func() string
}

func NewScenarioUseCase(
	store domrepo.Storage,
	market *MarketUseCase,
	engine *RecommendationEngine,
	publisher domrepo.EventPublisher,
	m domrepo.Metrics,
	l *applogger.Logger,
) *ScenarioUseCase {
	if l == nil {
		l = applogger.Nop()
	}
	return &ScenarioUseCase{
		store:     store,
		market:    market,
		engine:    engine,
		publisher: publisher,
		metrics:   m,
		log:       l,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Create assigns id and creation time and persists the scenario. The request must already carry defaults.
func (uc *ScenarioUseCase) Create(ctx context.Context, req *models.CreateScenarioRequest) (*models.PaymentScenario, error) {
	target, err := req.ParseTargetDate()
	if err != nil {
		return nil, err
	}
	if target != nil {
		t := target.UTC().Truncate(time.Microsecond)
		target = &t
	}

	risk := req.RiskTolerance
	if risk == "" {
		risk = models.RiskMedium
	}
	inflation := models.DefaultInflationRate
	if req.InflationRate != nil {
		inflation = *req.InflationRate
	}

	sc := &models.PaymentScenario{
		ID:            uc.newID(),
		ScenarioType:  req.ScenarioType,
		AmountUSD:     req.AmountUSD,
		TargetDate:    target,
		RiskTolerance: risk,
		InflationRate: inflation,
		CreatedAt:     uc.now().UTC().Truncate(time.Microsecond),
	}
	if err := uc.store.CreateScenario(ctx, sc); err != nil {
		return nil, err
	}
	return sc, nil
}

func (uc *ScenarioUseCase) List(ctx context.Context) ([]*models.PaymentScenario, error) {
	return uc.store.ListScenarios(ctx, MaxScenarios)
}

// Analyze looks the scenario up, fetches a fresh snapshot, runs the engine and stores the result.
// Errors wrap models.ErrNotFound or the fetcher's errors.
func (uc *ScenarioUseCase) Analyze(ctx context.Context, scenarioID string) (*RecommendationResult, error) {
	sc, err := uc.store.GetScenario(ctx, scenarioID)
	if err != nil {
		return nil, err
	}

	snap, err := uc.market.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	res := uc.engine.Recommend(ctx, sc, snap)
	if err := uc.store.CreateRecommendation(ctx, res.Recommendation); err != nil {
		return nil, fmt.Errorf("store recommendation: %w", err)
	}
	if uc.metrics != nil {
		uc.metrics.RecordRecommendation(res.Recommendation.OptimalTiming, string(res.Source))
	}

	uc.log.Info("scenario analyzed",
		applogger.String("scenario_id", sc.ID),
		applogger.String("timing", res.Recommendation.OptimalTiming),
		applogger.String("source", string(res.Source)),
		applogger.String("fallback_reason", res.FallbackReason),
	)

	if uc.publisher != nil {
		event := &models.RecommendationEvent{
			Type:           models.EventRecommendationCreated,
			Recommendation: *res.Recommendation,
			FallbackReason: res.FallbackReason,
			OccurredAt:     uc.now().UTC(),
		}
		if err := uc.publisher.PublishRecommendation(ctx, event); err != nil {
			uc.log.Warn("publish recommendation event failed", applogger.String("scenario_id", sc.ID), applogger.Error(err))
			if uc.metrics != nil {
				uc.metrics.RecordError("event_publish")
			}
		}
	}
	return res, nil
}

func (uc *ScenarioUseCase) Recommendations(ctx context.Context, scenarioID string) ([]*models.PaymentRecommendation, error) {
	return uc.store.ListRecommendations(ctx, scenarioID, MaxRecommendations)
}

// Dashboard performs three independent reads with no transactional guarantee between them.
func (uc *ScenarioUseCase) Dashboard(ctx context.Context) (*models.DashboardSummary, error) {
	snap, err := uc.market.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	total, err := uc.store.CountScenarios(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := uc.store.RecentRecommendations(ctx, RecentRecommendations)
	if err != nil {
		return nil, err
	}
	return &models.DashboardSummary{
		BitcoinData:           snap,
		TotalScenarios:        total,
		RecentRecommendations: len(recent),
		MarketStatus:          "active",
		Timestamp:             uc.now().UTC(),
	}, nil
}
