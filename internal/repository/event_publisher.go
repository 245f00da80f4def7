package repository

import (
	"context"

	"OracleAgent/internal/domain/models"
	"OracleAgent/internal/domain/repository"
	pkgkafka "OracleAgent/pkg/kafka"
)

// KafkaPublisher implements EventPublisher for Kafka. Events are keyed by scenario id.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.EventPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) PublishRecommendation(ctx context.Context, e *models.RecommendationEvent) error {
	return p.producer.Publish(ctx, p.topic, []byte(e.Recommendation.ScenarioID), e)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NoopPublisher drops events. Used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishRecommendation(context.Context, *models.RecommendationEvent) error {
	return nil
}

func (NoopPublisher) Close() error { return nil }
