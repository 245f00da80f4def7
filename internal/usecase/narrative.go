package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"OracleAgent/internal/domain/models"
	dsvc "OracleAgent/internal/domain/service"
	"OracleAgent/internal/service/llm"
	applogger "OracleAgent/pkg/logger"
)

const narrativeSystemPrompt = "You are a Bitcoin market expert providing analysis for payment timing and inflation hedging."

// NarrativeService answers free-text market questions. It never fails outward.
type NarrativeService struct {
	gen     dsvc.TextGenerator
	metrics narrativeMetrics
	log     *applogger.Logger
	now     func() time.Time
}

type narrativeMetrics interface {
	RecordNarrative(source string)
}

func NewNarrativeService(gen dsvc.TextGenerator, m narrativeMetrics, l *applogger.Logger) *NarrativeService {
	if l == nil {
		l = applogger.Nop()
	}
	return &NarrativeService{gen: gen, metrics: m, log: l.With(applogger.String("component", "narrative")), now: time.Now}
}

func (s *NarrativeService) Analyze(ctx context.Context, req *models.MarketAnalysisRequest) *models.AIAnalysisResponse {
	resp := s.analyze(ctx, req)
	resp.GeneratedAt = s.now().UTC()
	if s.metrics != nil {
		s.metrics.RecordNarrative(string(resp.Source))
	}
	return resp
}

func (s *NarrativeService) analyze(ctx context.Context, req *models.MarketAnalysisRequest) *models.AIAnalysisResponse {
	if s.gen == nil {
		return &models.AIAnalysisResponse{
			Analysis:        "AI analysis temporarily unavailable. Please check back later.",
			Recommendations: []string{"Monitor market conditions", "Consider dollar-cost averaging"},
			Confidence:      0.3,
			MarketSentiment: models.SentimentNeutral,
			Source:          models.SourceFallback,
		}
	}

	reply, err := s.gen.Generate(ctx, dsvc.Prompt{
		Session: fmt.Sprintf("market_analysis_%d", s.now().UnixNano()),
		System:  narrativeSystemPrompt,
		User:    narrativePrompt(req),
	})
	if err != nil {
		s.log.Error("market analysis error", applogger.Error(err))
		return &models.AIAnalysisResponse{
			Analysis:        "Unable to generate analysis at this time.",
			Recommendations: []string{"Try again later", "Monitor market conditions"},
			Confidence:      0.2,
			MarketSentiment: models.SentimentNeutral,
			Source:          models.SourceFallback,
		}
	}

	parsed, err := llm.ParseAnalysisReply(reply)
	if err != nil {
		s.log.Warn("market analysis reply not structured", applogger.Error(err))
		return &models.AIAnalysisResponse{
			Analysis:        reply,
			Recommendations: []string{"Monitor market trends", "Consider gradual accumulation"},
			Confidence:      0.7,
			MarketSentiment: models.SentimentNeutral,
			Source:          models.SourceFallback,
		}
	}

	recs := parsed.Recommendations
	if recs == nil {
		recs = []string{}
	}
	return &models.AIAnalysisResponse{
		Analysis:        parsed.Analysis,
		Recommendations: recs,
		Confidence:      parsed.Confidence,
		MarketSentiment: parsed.MarketSentiment,
		Source:          models.SourceAI,
	}
}

func narrativePrompt(req *models.MarketAnalysisRequest) string {
	contextStr := "No additional context provided"
	if len(req.MarketContext) > 0 {
		if b, err := json.Marshal(req.MarketContext); err == nil {
			contextStr = string(b)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Provide Bitcoin market analysis for: %s\n\n", req.Query)
	fmt.Fprintf(&b, "Context: %s\n", contextStr)
	if req.ScenarioType != "" {
		fmt.Fprintf(&b, "Payment scenario: %s\n", req.ScenarioType)
	}
	b.WriteString(`
Respond in JSON format:
{
    "analysis": "detailed market analysis",
    "recommendations": ["recommendation1", "recommendation2", "recommendation3"],
    "confidence": float (0-1),
    "market_sentiment": "bullish|bearish|neutral"
}

Reply with the JSON object only.

Focus on:
1. Current market conditions
2. Payment timing optimization
3. Inflation hedging considerations
4. Risk factors`)
	return b.String()
}
