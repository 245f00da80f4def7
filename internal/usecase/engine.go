package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"OracleAgent/internal/domain/models"
	dsvc "OracleAgent/internal/domain/service"
	"OracleAgent/internal/service/llm"
	applogger "OracleAgent/pkg/logger"

	"github.com/shopspring/decimal"
)

const recommendationSystemPrompt = "You are an expert Bitcoin analyst specializing in payment timing optimization and inflation hedging strategies."

// Fallback reasons reported alongside a rule-table recommendation.
const (
	ReasonAIUnavailable = "ai_unavailable"
	ReasonAIError       = "ai_error"
	ReasonInvalidReply  = "invalid_reply"
)

// RecommendationResult carries the recommendation and which path produced it.
type RecommendationResult struct {
	Recommendation *models.PaymentRecommendation
	Source         models.Source
	FallbackReason string
}

// RecommendationEngine turns a scenario and a snapshot into a recommendation.
// It never fails: any provider problem degrades to the rule table.
type RecommendationEngine struct {
	gen dsvc.TextGenerator
	log *applogger.Logger
	now func() time.Time
}

// NewRecommendationEngine accepts a nil generator, meaning AI is not configured.
func NewRecommendationEngine(gen dsvc.TextGenerator, l *applogger.Logger) *RecommendationEngine {
	if l == nil {
		l = applogger.Nop()
	}
	return &RecommendationEngine{gen: gen, log: l.With(applogger.String("component", "engine")), now: time.Now}
}

func (e *RecommendationEngine) Recommend(ctx context.Context, sc *models.PaymentScenario, snap *models.MarketSnapshot) *RecommendationResult {
	if e.gen == nil {
		return e.fallback(sc, snap, ReasonAIUnavailable)
	}

	reply, err := e.gen.Generate(ctx, dsvc.Prompt{
		Session: "payment_analysis_" + sc.ID,
		System:  recommendationSystemPrompt,
		User:    recommendationPrompt(sc, snap),
	})
	if err != nil {
		e.log.Error("ai analysis error", applogger.String("scenario_id", sc.ID), applogger.Error(err))
		return e.fallback(sc, snap, ReasonAIError)
	}

	parsed, err := llm.ParseRecommendationReply(reply)
	if err != nil {
		var re *llm.ReplyError
		if errors.As(err, &re) {
			e.log.Error("ai reply rejected",
				applogger.String("scenario_id", sc.ID),
				applogger.String("stage", re.Stage),
				applogger.Strings("issues", re.Issues),
			)
		}
		return e.fallback(sc, snap, ReasonInvalidReply)
	}

	return &RecommendationResult{
		Recommendation: &models.PaymentRecommendation{
			ScenarioID:           sc.ID,
			RecommendedBTCAmount: parsed.RecommendedBTCAmount,
			OptimalTiming:        parsed.OptimalTiming,
			ConfidenceScore:      parsed.ConfidenceScore,
			Reasoning:            parsed.Reasoning,
			VolatilityForecast:   parsed.VolatilityForecast,
			ProjectedSavings:     parsed.ProjectedSavings,
			RiskAssessment:       parsed.RiskAssessment,
			Source:               models.SourceAI,
			CreatedAt:            e.timestamp(),
		},
		Source: models.SourceAI,
	}
}

func (e *RecommendationEngine) fallback(sc *models.PaymentScenario, snap *models.MarketSnapshot, reason string) *RecommendationResult {
	timing, confidence := RuleTiming(snap.Volatility, snap.Change24h())
	return &RecommendationResult{
		Recommendation: &models.PaymentRecommendation{
			ScenarioID:           sc.ID,
			RecommendedBTCAmount: sc.AmountUSD / snap.Price,
			OptimalTiming:        timing,
			ConfidenceScore:      confidence,
			Reasoning:            fmt.Sprintf("Basic analysis based on current volatility (%s) and price trend.", formatPercent(snap.Volatility, 2)),
			VolatilityForecast:   snap.Volatility,
			RiskAssessment:       sc.RiskTolerance,
			Source:               models.SourceFallback,
			CreatedAt:            e.timestamp(),
		},
		Source:         models.SourceFallback,
		FallbackReason: reason,
	}
}

func (e *RecommendationEngine) timestamp() time.Time {
	return e.now().UTC().Truncate(time.Microsecond)
}

// RuleTiming is the ordered rule table; the first matching rule wins.
func RuleTiming(volatility, priceChange24h float64) (timing string, confidence float64) {
	switch {
	case volatility > 0.05:
		return models.TimingWait1Day, 0.6
	case priceChange24h < -3:
		return models.TimingImmediate, 0.7
	default:
		return models.TimingFlexible, 0.5
	}
}

func recommendationPrompt(sc *models.PaymentScenario, snap *models.MarketSnapshot) string {
	target := "Flexible"
	if sc.TargetDate != nil {
		target = sc.TargetDate.Format("2006-01-02")
	}
	volume := "N/A"
	if snap.Volume24h != nil {
		volume = "$" + formatUSD(*snap.Volume24h, 0)
	}

	return fmt.Sprintf(`Analyze the optimal Bitcoin payment timing for this scenario:

Scenario: %s
Amount: $%s
Target Date: %s
Risk Tolerance: %s
Inflation Rate: %s

Current Bitcoin Market:
Price: $%s
24h Change: %s%%
Volatility: %s
Volume: %s

Provide analysis in this JSON format:
{
    "recommended_btc_amount": float,
    "optimal_timing": "immediate|wait_1_day|wait_1_week|flexible",
    "confidence_score": float (0-1),
    "reasoning": "detailed explanation",
    "volatility_forecast": float (0-1),
    "projected_savings": float or null,
    "risk_assessment": "low|medium|high"
}

Reply with the JSON object only.

Consider:
1. Current market volatility and trend
2. Dollar-cost averaging vs lump sum for this scenario
3. Inflation hedging effectiveness
4. Risk tolerance alignment
5. Time horizon for the specific scenario type`,
		sc.ScenarioType,
		formatUSD(sc.AmountUSD, 2),
		target,
		sc.RiskTolerance,
		formatPercent(sc.InflationRate, 1),
		formatUSD(snap.Price, 2),
		decimal.NewFromFloat(snap.Change24h()).StringFixed(2),
		formatPercent(snap.Volatility, 2),
		volume,
	)
}
