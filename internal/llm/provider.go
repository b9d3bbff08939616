package llm

import (
	"context"
	"strings"

	"github.com/ppiankov/postcompass/internal/config"
)

// Provider defines the interface for chat-style completion backends
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends a system + user message pair and returns the completion
	Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// ChatRequest is a two-message completion request
type ChatRequest struct {
	System string
	User   string

	// Model overrides the provider's configured model when set
	Model string

	Temperature float32
	MaxTokens   int
}

// ChatResponse contains a single completion
type ChatResponse struct {
	// Content is the trimmed completion text
	Content string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption (0 if unknown)
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI-compatible endpoints and Anthropic. Optional for
	// keyless OpenAI-compatible gateways.
	APIKey string

	// BaseURL is the endpoint root; ChatPath is appended for OpenAI-style
	// chat completions
	BaseURL  string
	ChatPath string

	// Timeout for API requests
	Timeout int // seconds

	Temperature float32
	MaxTokens   int

	// ReasoningParams sends max_completion_tokens and no temperature to
	// reasoning models (o1, o3, o4, gpt-5). Off for gateways that take the
	// classic parameters for every model.
	ReasoningParams bool

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:    "openai",
		BaseURL:     config.DefaultBaseURL,
		ChatPath:    "/openai",
		Model:       config.DefaultModel,
		Timeout:     30,
		Temperature: 0.5,
		MaxTokens:   700,
	}
}

// ConfigFromSettings converts the application config into provider config
func ConfigFromSettings(llmCfg config.LLMConfig, httpCfg config.HTTPConfig) Config {
	return Config{
		Provider:    llmCfg.Provider,
		Model:       llmCfg.Model,
		APIKey:      llmCfg.APIKey,
		BaseURL:     llmCfg.BaseURL,
		ChatPath:    llmCfg.ChatPath,
		Timeout:     llmCfg.Timeout,
		Temperature: llmCfg.Temperature,
		MaxTokens:   llmCfg.MaxTokens,
		HTTPProxy:   httpCfg.HTTPProxy,
		HTTPSProxy:  httpCfg.HTTPSProxy,

		ReasoningParams: llmCfg.ReasoningParams,
	}
}

// ChatBaseURL joins BaseURL and ChatPath
func (c Config) ChatBaseURL() string {
	base := strings.TrimSuffix(c.BaseURL, "/")
	if c.ChatPath == "" {
		return base
	}
	return base + "/" + strings.TrimPrefix(c.ChatPath, "/")
}

// resolve fills per-request values from the provider config
func (c Config) resolve(req ChatRequest) ChatRequest {
	if req.Model == "" {
		req.Model = c.Model
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = c.MaxTokens
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = 700
	}
	if req.Temperature == 0 {
		req.Temperature = c.Temperature
	}
	return req
}
