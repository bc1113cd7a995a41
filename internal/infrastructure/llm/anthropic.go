package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"pagesmith-backend/internal/config"
	"pagesmith-backend/internal/domains/page/synth"
)

// AnthropicProvider is a synth.Provider backed by the Messages API.
// Requests are attempted once.
type AnthropicProvider struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	hasKey    bool
}

func NewAnthropicProvider(cfg config.LLMConfig) *AnthropicProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &AnthropicProvider{
		client:    anthropic.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: int64(cfg.MaxTokens),
		hasKey:    cfg.APIKey != "",
	}
}

// Complete sends prompt as a single user message and joins the text blocks
// of the reply.
func (p *AnthropicProvider) Complete(ctx context.Context, prompt string) (string, error) {
	if !p.hasKey {
		return "", synth.ErrNoCredentials
	}

	start := time.Now()
	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: p.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("anthropic messages: empty completion after %s", time.Since(start).Round(time.Millisecond))
	}
	return sb.String(), nil
}
