package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const (
	anthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"

	// DefaultAnthropicModel is used when the configured model is empty or
	// names an OpenAI model
	DefaultAnthropicModel = "claude-3-5-haiku-20241022"
)

// AnthropicProvider talks to the Anthropic Messages API
type AnthropicProvider struct {
	client *resty.Client
	config Config
}

type messagesRequest struct {
	Model       string         `json:"model"`
	System      string         `json:"system,omitempty"`
	Messages    []messageParam `json:"messages"`
	MaxTokens   int            `json:"max_tokens"`
	Temperature float32        `json:"temperature,omitempty"`
}

type messageParam struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messagesReply struct {
	Model   string         `json:"model"`
	Content []contentBlock `json:"content"`
	Usage   struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// text joins the text blocks of the reply
func (r *messagesReply) text() string {
	var sb strings.Builder
	for _, block := range r.Content {
		if block.Type == "" || block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}

// NewAnthropicProvider creates an Anthropic provider. An API key is required.
func NewAnthropicProvider(config Config) (*AnthropicProvider, error) {
	if config.APIKey == "" {
		return nil, errors.New("anthropic: API key is required")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = anthropicBaseURL
	}

	client := newJSONClient(baseURL, config, 30*time.Second).
		SetHeader("x-api-key", config.APIKey).
		SetHeader("anthropic-version", anthropicVersion)

	return &AnthropicProvider{client: client, config: config}, nil
}

// Name returns the provider name
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// IsAvailable sends a one-token completion
func (p *AnthropicProvider) IsAvailable(ctx context.Context) bool {
	ping := messagesRequest{
		Model:     DefaultAnthropicModel,
		Messages:  []messageParam{{Role: "user", Content: "Hi"}},
		MaxTokens: 1,
	}
	var reply messagesReply
	if err := p.send(ctx, ping, &reply); err != nil {
		logrus.WithError(err).Debug("Anthropic availability check failed")
		return false
	}
	return true
}

// Complete sends req as a single user turn with a system prompt
func (p *AnthropicProvider) Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	req = p.config.resolve(req)
	if req.Model == "" || strings.HasPrefix(req.Model, "gpt") {
		req.Model = DefaultAnthropicModel
	}

	var reply messagesReply
	err := p.send(ctx, messagesRequest{
		Model:       req.Model,
		System:      req.System,
		Messages:    []messageParam{{Role: "user", Content: req.User}},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}, &reply)
	if err != nil {
		return nil, err
	}

	content := reply.text()
	if content == "" {
		return nil, fmt.Errorf("anthropic: %w", ErrEmptyCompletion)
	}

	return &ChatResponse{
		Content:    content,
		Model:      reply.Model,
		TokensUsed: reply.Usage.InputTokens + reply.Usage.OutputTokens,
	}, nil
}

func (p *AnthropicProvider) send(ctx context.Context, body messagesRequest, out *messagesReply) error {
	return postJSON(ctx, p.client.R(), "anthropic", "/v1/messages", body, out, describeAnthropicError)
}

// describeAnthropicError reads {"error":{"type","message"}}, falling back to
// the raw body
func describeAnthropicError(body []byte) string {
	var env struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err != nil || env.Error.Type == "" {
		return strings.TrimSpace(string(body))
	}
	return env.Error.Type + ": " + env.Error.Message
}
