package repository

import (
	"context"

	"OracleAgent/internal/domain/models"
)

type ScenarioStore interface {
	CreateScenario(ctx context.Context, s *models.PaymentScenario) error
	GetScenario(ctx context.Context, id string) (*models.PaymentScenario, error) // models.ErrNotFound when absent
	ListScenarios(ctx context.Context, limit int) ([]*models.PaymentScenario, error)
	CountScenarios(ctx context.Context) (int64, error)
}

type RecommendationStore interface {
	CreateRecommendation(ctx context.Context, r *models.PaymentRecommendation) error
	ListRecommendations(ctx context.Context, scenarioID string, limit int) ([]*models.PaymentRecommendation, error)
	RecentRecommendations(ctx context.Context, limit int) ([]*models.PaymentRecommendation, error)
}

type Storage interface {
	ScenarioStore
	RecommendationStore
	Init(ctx context.Context) error // ensure tables
	Health(ctx context.Context) error
	Close() error
}

type EventPublisher interface {
	PublishRecommendation(ctx context.Context, e *models.RecommendationEvent) error
	Close() error
}

type Metrics interface {
	RecordError(kind string)
	RecordLastPrice(price float64)
	RecordLatency(op string, seconds float64)
	RecordRecommendation(timing, source string)
	RecordNarrative(source string)
	RecordEvent(timing, source string)
}
