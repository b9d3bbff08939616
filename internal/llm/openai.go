package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/ppiankov/postcompass/internal/util"
	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// ErrEmptyCompletion is returned when the endpoint answers without content
var ErrEmptyCompletion = errors.New("empty completion")

const openAIBaseURL = "https://api.openai.com/v1"

// OpenAIProvider implements the Provider interface for OpenAI-compatible
// chat completion endpoints. Chat requests use go-openai's wire types over
// resty; the go-openai client serves model listing.
type OpenAIProvider struct {
	client *openai.Client
	chat   *resty.Client
	config Config
}

// NewOpenAIProvider creates a new OpenAI-compatible provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.BaseURL == "" && config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required when no base URL is configured")
	}

	baseURL := openAIBaseURL
	if config.BaseURL != "" {
		baseURL = config.ChatBaseURL()
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	clientConfig.BaseURL = baseURL
	clientConfig.HTTPClient = &http.Client{
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
		},
	}

	chat := newJSONClient(baseURL, config, 30*time.Second)
	if config.APIKey != "" {
		chat.SetAuthToken(config.APIKey)
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		chat:   chat,
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is properly configured
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	if _, err := p.client.ListModels(ctx); err != nil {
		logrus.WithError(err).Debug("OpenAI-compatible availability check failed")
		return false
	}
	return true
}

// Complete runs a chat completion with one system and one user message.
// temperature and max_tokens are always sent; with ReasoningParams set,
// reasoning models get max_completion_tokens and no temperature instead.
func (p *OpenAIProvider) Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	req = p.config.resolve(req)
	if req.Model == "" {
		req.Model = openai.GPT4oMini
	}

	chatReq := openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if p.config.ReasoningParams && isReasoningModel(req.Model) {
		chatReq.MaxCompletionTokens = req.MaxTokens
		chatReq.MaxTokens = 0
		chatReq.Temperature = 0
	}

	var resp openai.ChatCompletionResponse
	err := postJSON(ctx, p.chat.R(), "openai", "/chat/completions", chatReq, &resp, describeOpenAIError)
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI-compatible endpoint: %w", ErrEmptyCompletion)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return nil, ErrEmptyCompletion
	}

	model := resp.Model
	if model == "" {
		model = req.Model
	}

	return &ChatResponse{
		Content:    content,
		Model:      model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

func isReasoningModel(model string) bool {
	m := strings.ToLower(model)
	for _, prefix := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(m, prefix) {
			return true
		}
	}
	return false
}

// describeOpenAIError reads {"error":{"message","type"}}, falling back to
// the raw body
func describeOpenAIError(body []byte) string {
	var env struct {
		Error *openai.APIError `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err != nil || env.Error == nil || env.Error.Message == "" {
		return strings.TrimSpace(string(body))
	}
	if env.Error.Type != "" {
		return env.Error.Type + ": " + env.Error.Message
	}
	return env.Error.Message
}
