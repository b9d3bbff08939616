package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAnthropicTestProvider(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := NewAnthropicProvider(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "claude-3-5-sonnet-20241022",
		Timeout: 5,
	})
	require.NoError(t, err)
	return p
}

func TestAnthropicProvider_Complete(t *testing.T) {
	p := newAnthropicTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		var req messagesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "sys", req.System)
		assert.Equal(t, []messageParam{{Role: "user", Content: "usr"}}, req.Messages)
		assert.Equal(t, "claude-3-5-sonnet-20241022", req.Model)

		_, _ = w.Write([]byte(`{
			"model": "claude-3-5-sonnet-20241022",
			"content": [
				{"type": "text", "text": "First part. "},
				{"type": "tool_use", "text": "ignored"},
				{"type": "text", "text": "Second part."}
			],
			"usage": {"input_tokens": 50, "output_tokens": 50}
		}`))
	})

	resp, err := p.Complete(context.Background(), ChatRequest{System: "sys", User: "usr"})
	require.NoError(t, err)
	assert.Equal(t, "First part. Second part.", resp.Content)
	assert.Equal(t, 100, resp.TokensUsed)
}

func TestAnthropicProvider_Complete_OpenAIModelReplaced(t *testing.T) {
	p := newAnthropicTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var req messagesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultAnthropicModel, req.Model)
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"ok"}]}`))
	})

	_, err := p.Complete(context.Background(), ChatRequest{User: "u", Model: "gpt-5-nano"})
	require.NoError(t, err)
}

func TestAnthropicProvider_Complete_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		contains string
	}{
		{"server error", http.StatusInternalServerError, `{"type":"error","error":{"type":"api_error","message":"Internal Server Error"}}`, "api_error: Internal Server Error"},
		{"rate limited", http.StatusTooManyRequests, `{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`, "rate_limit_error"},
		{"plain body", http.StatusBadGateway, "bad gateway", "bad gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newAnthropicTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := p.Complete(context.Background(), ChatRequest{User: "u"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)

			var statusErr *StatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, tt.status, statusErr.StatusCode)
		})
	}
}

func TestAnthropicProvider_Complete_NoContent(t *testing.T) {
	p := newAnthropicTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"model":"claude","content":[]}`))
	})

	_, err := p.Complete(context.Background(), ChatRequest{User: "u"})
	assert.True(t, errors.Is(err, ErrEmptyCompletion))
}

func TestAnthropicProvider_RequiresAPIKey(t *testing.T) {
	_, err := NewAnthropicProvider(Config{})
	assert.Error(t, err)
}

func TestAnthropicProvider_IsAvailable(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	p := newAnthropicTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Hi"}]}`))
	})

	assert.True(t, p.IsAvailable(context.Background()))

	healthy.Store(false)
	assert.False(t, p.IsAvailable(context.Background()))
}
