package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/ppiankov/postcompass/internal/util"
)

// StatusError is a non-200 reply from a provider API
type StatusError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.StatusCode, e.Message)
}

// newJSONClient builds a resty client for a JSON provider API rooted at
// baseURL. A zero timeout falls back to fallback.
func newJSONClient(baseURL string, config Config, fallback time.Duration) *resty.Client {
	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = fallback
	}

	return resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetTransport(&http.Transport{
			Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
		})
}

// postJSON posts body to path and decodes a 200 reply into out. Other
// statuses become a *StatusError whose message comes from describe.
func postJSON(ctx context.Context, req *resty.Request, provider, path string, body, out any, describe func([]byte) string) error {
	resp, err := req.SetContext(ctx).SetBody(body).Post(path)
	if err != nil {
		return fmt.Errorf("%s request: %w", provider, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return &StatusError{
			Provider:   provider,
			StatusCode: resp.StatusCode(),
			Message:    describe(resp.Body()),
		}
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%s reply: %w", provider, err)
	}
	return nil
}
