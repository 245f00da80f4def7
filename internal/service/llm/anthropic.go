package llm

import (
	"context"
	"fmt"
	"time"

	dsvc "OracleAgent/internal/domain/service"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const DefaultAnthropicModel = "claude-3-5-haiku-latest"

// AnthropicGenerator implements service.TextGenerator with the messages API.
type AnthropicGenerator struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropic disables the SDK's built-in retries; a failed call goes straight to the fallback.
func NewAnthropic(apiKey, baseURL, model string, maxTokens int, timeout time.Duration) *AnthropicGenerator {
	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}
	if model == "" || model == DefaultOpenAIModel {
		model = DefaultAnthropicModel
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &AnthropicGenerator{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: int64(maxTokens),
	}
}

func (g *AnthropicGenerator) Generate(ctx context.Context, p dsvc.Prompt) (string, error) {
	message, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: g.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: p.System},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(p.User)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic api error: %w", err)
	}
	if len(message.Content) == 0 {
		return "", fmt.Errorf("no response from anthropic")
	}
	return message.Content[0].Text, nil
}
