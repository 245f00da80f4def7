package llm

import (
	"fmt"
	"time"

	dsvc "OracleAgent/internal/domain/service"
)

// Settings selects and configures a provider.
type Settings struct {
	Provider  string
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// New returns nil when no credential is configured; callers treat a nil generator as "AI unavailable".
func New(s Settings) (dsvc.TextGenerator, error) {
	if s.APIKey == "" {
		return nil, nil
	}
	switch s.Provider {
	case "", "openai":
		return NewOpenAI(s.APIKey, s.BaseURL, s.Model, s.MaxTokens, s.Timeout), nil
	case "anthropic":
		return NewAnthropic(s.APIKey, s.BaseURL, s.Model, s.MaxTokens, s.Timeout), nil
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", s.Provider)
	}
}
