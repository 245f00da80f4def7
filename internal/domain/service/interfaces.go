package service

import (
	"context"

	"OracleAgent/internal/domain/models"
)

// MarketFetcher returns a fresh snapshot. Errors wrap models.ErrUpstreamUnavailable or models.ErrServiceUnavailable.
type MarketFetcher interface {
	Fetch(ctx context.Context) (*models.MarketSnapshot, error)
}

// FeeEstimator returns current network fee tiers. It never fails; degraded values are returned instead.
type FeeEstimator interface {
	Estimate(ctx context.Context) models.NetworkFees
}

// Prompt is one single-turn request to a text-generation provider.
type Prompt struct {
	Session string
	System  string
	User    string
}

// TextGenerator sends a prompt and returns the raw reply text.
type TextGenerator interface {
	Generate(ctx context.Context, p Prompt) (string, error)
}
