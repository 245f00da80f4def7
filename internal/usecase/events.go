package usecase

import (
	"context"
	"encoding/json"
	"time"

	"OracleAgent/internal/domain/models"
	domrepo "OracleAgent/internal/domain/repository"
	pkgkafka "OracleAgent/pkg/kafka"
)

// RecommendationEventsHandler consumes recommendation events and records them as metrics.
type RecommendationEventsHandler struct {
	topic   string
	metrics domrepo.Metrics
}

func NewRecommendationEventsHandler(topic string, metrics domrepo.Metrics) *RecommendationEventsHandler {
	return &RecommendationEventsHandler{topic: topic, metrics: metrics}
}

func (h *RecommendationEventsHandler) Topic() string { return h.topic }

func (h *RecommendationEventsHandler) Handle(_ context.Context, b []byte) error {
	var e models.RecommendationEvent
	if err := json.Unmarshal(b, &e); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if e.Type != models.EventRecommendationCreated {
		// not ours; retrying would not help
		h.metrics.RecordError("consumer_unknown_event")
		return nil
	}

	h.metrics.RecordEvent(e.Recommendation.OptimalTiming, string(e.Recommendation.Source))
	if !e.OccurredAt.IsZero() {
		h.metrics.RecordLatency("event_lag", time.Since(e.OccurredAt).Seconds())
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*RecommendationEventsHandler)(nil)
