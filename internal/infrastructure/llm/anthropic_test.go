package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagesmith-backend/internal/config"
	"pagesmith-backend/internal/domains/page/synth"
)

func TestCompleteWithoutKey(t *testing.T) {
	p := NewAnthropicProvider(config.LLMConfig{Model: "claude-sonnet-4-5", MaxTokens: 512})

	_, err := p.Complete(context.Background(), "hi")
	assert.ErrorIs(t, err, synth.ErrNoCredentials)
}

func TestCompleteReadsTextBlocks(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "claude-sonnet-4-5", body["model"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1", "type": "message", "role": "assistant", "model": "claude-sonnet-4-5",
			"content": [{"type": "text", "text": "{\"title\":\"t\"}"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 5}
		}`))
	}))
	defer srv.Close()

	p := NewAnthropicProvider(config.LLMConfig{
		APIKey:    "test-key",
		BaseURL:   srv.URL,
		Model:     "claude-sonnet-4-5",
		MaxTokens: 512,
		Timeout:   5 * time.Second,
	})

	out, err := p.Complete(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, `{"title":"t"}`, out)
	assert.Equal(t, 1, calls)
}

func TestCompleteDoesNotRetry(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"overloaded_error","message":"busy"}}`))
	}))
	defer srv.Close()

	p := NewAnthropicProvider(config.LLMConfig{APIKey: "k", BaseURL: srv.URL, Model: "m", MaxTokens: 64})

	_, err := p.Complete(context.Background(), "prompt")
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
