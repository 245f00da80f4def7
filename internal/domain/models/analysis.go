package models

import "time"

// Market sentiment values.
const (
	SentimentBullish = "bullish"
	SentimentBearish = "bearish"
	SentimentNeutral = "neutral"
)

// MarketAnalysisRequest asks for a free-text market narrative.
type MarketAnalysisRequest struct {
	Query         string                 `json:"query" validate:"required,max=2000"`
	MarketContext map[string]interface{} `json:"market_context"`
	ScenarioType  string                 `json:"scenario_type"`
}

// AIAnalysisResponse is an ephemeral narrative answer.
type AIAnalysisResponse struct {
	Analysis        string    `json:"analysis"`
	Recommendations []string  `json:"recommendations"`
	Confidence      float64   `json:"confidence"`
	MarketSentiment string    `json:"market_sentiment"`
	Source          Source    `json:"source"`
	GeneratedAt     time.Time `json:"generated_at"`
}
