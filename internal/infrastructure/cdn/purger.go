package cdn

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"

	"pagesmith-backend/internal/config"
)

// Purger invalidates one live URL at the edge.
type Purger interface {
	Purge(ctx context.Context, url string) error
}

// HTTPPurger posts purge-by-URL requests to a CDN API. Each call is a
// single attempt, paced by a shared token bucket.
type HTTPPurger struct {
	endpoint string
	token    string
	client   *http.Client
	limiter  *rate.Limiter
}

type purgeRequest struct {
	Files []string `json:"files"`
}

// NewPurger returns a NoopPurger when no purge endpoint is configured.
func NewPurger(cfg config.CDNConfig) Purger {
	if cfg.PurgeURL == "" {
		return NoopPurger{}
	}
	return NewHTTPPurger(cfg)
}

func NewHTTPPurger(cfg config.CDNConfig) *HTTPPurger {
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &HTTPPurger{
		endpoint: cfg.PurgeURL,
		token:    cfg.Token,
		client:   &http.Client{Timeout: cfg.Timeout},
		limiter:  rate.NewLimiter(rate.Limit(cfg.RateLimit), burst),
	}
}

func (p *HTTPPurger) Purge(ctx context.Context, url string) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("purge rate limiter: %w", err)
	}

	body, err := json.Marshal(purgeRequest{Files: []string{url}})
	if err != nil {
		return fmt.Errorf("encode purge request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build purge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("purge %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("purge %s: status %d: %s", url, resp.StatusCode, bytes.TrimSpace(snippet))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// NoopPurger accepts every purge.
type NoopPurger struct{}

func (NoopPurger) Purge(context.Context, string) error { return nil }
