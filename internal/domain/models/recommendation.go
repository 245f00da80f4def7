package models

import "time"

// Source tells whether a result came from the text-generation provider or the rule table.
type Source string

const (
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
)

// Optimal timing values.
const (
	TimingImmediate = "immediate"
	TimingWait1Day  = "wait_1_day"
	TimingWait1Week = "wait_1_week"
	TimingFlexible  = "flexible"
)

// Risk levels.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// PaymentRecommendation is an append-only record produced per analysis run.
type PaymentRecommendation struct {
	ScenarioID           string    `json:"scenario_id"`
	RecommendedBTCAmount float64   `json:"recommended_btc_amount"`
	OptimalTiming        string    `json:"optimal_timing"`
	ConfidenceScore      float64   `json:"confidence_score"`
	Reasoning            string    `json:"reasoning"`
	VolatilityForecast   float64   `json:"volatility_forecast"`
	ProjectedSavings     *float64  `json:"projected_savings"`
	RiskAssessment       string    `json:"risk_assessment"`
	Source               Source    `json:"source"`
	CreatedAt            time.Time `json:"created_at"`
}

// RecommendationEvent is published after a recommendation has been stored.
type RecommendationEvent struct {
	Type           string                `json:"type"`
	Recommendation PaymentRecommendation `json:"recommendation"`
	FallbackReason string                `json:"fallback_reason,omitempty"`
	OccurredAt     time.Time             `json:"occurred_at"`
}

const EventRecommendationCreated = "recommendation.created"
