// Package synth produces per-intent page titles, descriptions and slug
// suggestions from a completion provider, with a deterministic fallback.
package synth

import (
	"context"
	"errors"
	"strings"

	businessModel "pagesmith-backend/internal/domains/business/model"
	"pagesmith-backend/internal/domains/page/model"
	"pagesmith-backend/internal/infrastructure/metrics"
	"pagesmith-backend/pkg/logger"
)

// Content sources
const (
	SourceAI       = "ai"
	SourceFallback = "fallback"
)

// Fallback reasons
const (
	ReasonNoProvider      = "no_provider"
	ReasonProviderError   = "provider_error"
	ReasonEmptyCompletion = "empty_completion"
	ReasonUnparsable      = "unparsable"
)

// ErrNoCredentials is returned by providers built without an API key.
var ErrNoCredentials = errors.New("completion provider has no credentials")

// Provider is a single-shot text completion endpoint.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Content is the synthesized metadata for one page.
type Content struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Slug        string `json:"slug,omitempty"`
	Source      string `json:"source"`
}

type Synthesizer struct {
	provider Provider
}

// NewSynthesizer accepts a nil provider; every call then falls back.
func NewSynthesizer(provider Provider) *Synthesizer {
	return &Synthesizer{provider: provider}
}

// Synthesize calls the provider once and never fails: any provider or
// parse problem yields Fallback content.
func (s *Synthesizer) Synthesize(ctx context.Context, b *businessModel.Business, u *businessModel.Update, intent model.Intent) Content {
	if s.provider == nil {
		return s.fallback(b, u, intent, ReasonNoProvider, nil)
	}

	raw, err := s.provider.Complete(ctx, BuildPrompt(b, u, intent))
	if err != nil {
		reason := ReasonProviderError
		if errors.Is(err, ErrNoCredentials) {
			reason = ReasonNoProvider
		}
		return s.fallback(b, u, intent, reason, err)
	}
	if strings.TrimSpace(raw) == "" {
		return s.fallback(b, u, intent, ReasonEmptyCompletion, nil)
	}

	content, ok := Parse(raw)
	if !ok {
		return s.fallback(b, u, intent, ReasonUnparsable, nil)
	}
	content.Source = SourceAI
	return content
}

func (s *Synthesizer) fallback(b *businessModel.Business, u *businessModel.Update, intent model.Intent, reason string, err error) Content {
	fields := map[string]interface{}{
		"intent":      string(intent),
		"reason":      reason,
		"business_id": b.ID.String(),
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	logger.Warn("synthesis fell back to template content", fields)
	metrics.RecordSynthesisFallback(string(intent), reason)

	return Fallback(b, u, intent)
}
