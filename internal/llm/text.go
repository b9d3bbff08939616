package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/ppiankov/postcompass/internal/util"
)

// TextEndpoint is a plain-text GET completion endpoint: the whole prompt is
// the URL path and the response body is the completion
type TextEndpoint struct {
	client  *resty.Client
	baseURL string
}

// NewTextEndpoint creates a text endpoint rooted at baseURL
func NewTextEndpoint(baseURL string, config Config) *TextEndpoint {
	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	client := resty.New().
		SetTimeout(timeout).
		SetTransport(&http.Transport{
			Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
		})

	return &TextEndpoint{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// URL returns the request URL for prompt
func (e *TextEndpoint) URL(prompt string) string {
	return e.baseURL + "/" + url.PathEscape(prompt)
}

// Complete fetches the completion for prompt. The body is trimmed; an empty
// body is an error.
func (e *TextEndpoint) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := e.client.R().
		SetContext(ctx).
		SetHeader("Accept", "text/plain").
		Get(e.URL(prompt))
	if err != nil {
		return "", fmt.Errorf("text endpoint request: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("text endpoint failed: %d", resp.StatusCode())
	}

	text := strings.TrimSpace(resp.String())
	if text == "" {
		return "", fmt.Errorf("text endpoint: %w", ErrEmptyCompletion)
	}
	return text, nil
}
