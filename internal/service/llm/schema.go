package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const recommendationSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "required": ["recommended_btc_amount", "optimal_timing", "confidence_score", "reasoning", "volatility_forecast", "risk_assessment"],
  "properties": {
    "recommended_btc_amount": {"type": "number", "exclusiveMinimum": 0},
    "optimal_timing": {"enum": ["immediate", "wait_1_day", "wait_1_week", "flexible"]},
    "confidence_score": {"type": "number", "minimum": 0, "maximum": 1},
    "reasoning": {"type": "string", "minLength": 1},
    "volatility_forecast": {"type": "number", "minimum": 0, "maximum": 1},
    "projected_savings": {"type": ["number", "null"]},
    "risk_assessment": {"enum": ["low", "medium", "high"]}
  }
}`

const analysisSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "required": ["analysis", "recommendations", "confidence", "market_sentiment"],
  "properties": {
    "analysis": {"type": "string", "minLength": 1},
    "recommendations": {"type": "array", "items": {"type": "string"}},
    "confidence": {"type": "number", "minimum": 0, "maximum": 1},
    "market_sentiment": {"enum": ["bullish", "bearish", "neutral"]}
  }
}`

var (
	recommendationValidator = mustCompile("recommendation.json", recommendationSchema)
	analysisValidator       = mustCompile("analysis.json", analysisSchema)
)

func mustCompile(name, schema string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	if err := compiler.AddResource(name, strings.NewReader(schema)); err != nil {
		panic(fmt.Sprintf("add schema %s: %v", name, err))
	}
	s, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("compile schema %s: %v", name, err))
	}
	return s
}

// ReplyError is a structured failure to turn a provider reply into a typed value.
type ReplyError struct {
	Stage  string // "decode" or "schema"
	Issues []string
	Err    error
}

func (e *ReplyError) Error() string {
	if len(e.Issues) > 0 {
		return fmt.Sprintf("reply %s: %s", e.Stage, strings.Join(e.Issues, "; "))
	}
	return fmt.Sprintf("reply %s: %v", e.Stage, e.Err)
}

func (e *ReplyError) Unwrap() error { return e.Err }

// RecommendationReply is the payload a provider must return for a scenario.
type RecommendationReply struct {
	RecommendedBTCAmount float64  `json:"recommended_btc_amount"`
	OptimalTiming        string   `json:"optimal_timing"`
	ConfidenceScore      float64  `json:"confidence_score"`
	Reasoning            string   `json:"reasoning"`
	VolatilityForecast   float64  `json:"volatility_forecast"`
	ProjectedSavings     *float64 `json:"projected_savings"`
	RiskAssessment       string   `json:"risk_assessment"`
}

// AnalysisReply is the payload a provider must return for a market narrative.
type AnalysisReply struct {
	Analysis        string   `json:"analysis"`
	Recommendations []string `json:"recommendations"`
	Confidence      float64  `json:"confidence"`
	MarketSentiment string   `json:"market_sentiment"`
}

func ParseRecommendationReply(text string) (*RecommendationReply, error) {
	var out RecommendationReply
	if err := parseReply(text, recommendationValidator, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func ParseAnalysisReply(text string) (*AnalysisReply, error) {
	var out AnalysisReply
	if err := parseReply(text, analysisValidator, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func parseReply(text string, schema *jsonschema.Schema, dest interface{}) error {
	raw := []byte(StripCodeFence(text))

	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return &ReplyError{Stage: "decode", Err: err}
	}

	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return &ReplyError{Stage: "schema", Issues: flatten(ve), Err: err}
		}
		return &ReplyError{Stage: "schema", Err: err}
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return &ReplyError{Stage: "decode", Err: err}
	}
	return nil
}

func flatten(ve *jsonschema.ValidationError) []string {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		return []string{fmt.Sprintf("%s: %s", loc, ve.Message)}
	}
	var out []string
	for _, c := range ve.Causes {
		out = append(out, flatten(c)...)
	}
	return out
}

// StripCodeFence removes a surrounding markdown code fence such as ```json ... ```.
func StripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
