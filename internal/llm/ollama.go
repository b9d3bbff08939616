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
	"github.com/sirupsen/logrus"
)

const ollamaBaseURL = "http://localhost:11434"

// ErrModelRequired is returned by providers that have no default model
var ErrModelRequired = errors.New("model must be specified")

// OllamaProvider runs completions against a local Ollama server
type OllamaProvider struct {
	client *resty.Client
	config Config
}

type generateRequest struct {
	Model   string          `json:"model"`
	System  string          `json:"system,omitempty"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float32 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type generateReply struct {
	Model           string `json:"model"`
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	PromptEvalCount int    `json:"prompt_eval_count,omitempty"`
	EvalCount       int    `json:"eval_count,omitempty"`
}

// NewOllamaProvider creates an Ollama provider; BaseURL defaults to the
// local daemon
func NewOllamaProvider(config Config) (*OllamaProvider, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = ollamaBaseURL
	}

	// local models load slowly on first use
	client := newJSONClient(baseURL, config, 60*time.Second)
	return &OllamaProvider{client: client, config: config}, nil
}

// Name returns the provider name
func (p *OllamaProvider) Name() string {
	return "ollama"
}

// IsAvailable reports whether the daemon answers its model listing
func (p *OllamaProvider) IsAvailable(ctx context.Context) bool {
	resp, err := p.client.R().SetContext(ctx).Get("/api/tags")
	if err != nil {
		logrus.WithError(err).Debug("Ollama availability check failed")
		return false
	}
	if resp.StatusCode() != http.StatusOK {
		logrus.WithField("status", resp.StatusCode()).Debug("Ollama availability check failed")
		return false
	}
	return true
}

// Complete runs a single non-streaming generation
func (p *OllamaProvider) Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	req = p.config.resolve(req)
	if req.Model == "" {
		return nil, fmt.Errorf("ollama: %w (e.g. llama3.1:8b)", ErrModelRequired)
	}

	var reply generateReply
	err := postJSON(ctx, p.client.R(), "ollama", "/api/generate", generateRequest{
		Model:  req.Model,
		System: req.System,
		Prompt: req.User,
		Options: generateOptions{
			Temperature: req.Temperature,
			NumPredict:  req.MaxTokens,
		},
	}, &reply, describeOllamaError)
	if err != nil {
		return nil, err
	}

	content := strings.TrimSpace(reply.Response)
	if content == "" {
		return nil, fmt.Errorf("ollama: %w", ErrEmptyCompletion)
	}

	tokens := reply.PromptEvalCount + reply.EvalCount
	if tokens == 0 {
		// rough estimate when the server omits counts
		tokens = (len(req.System) + len(req.User) + len(content)) / 4
	}

	return &ChatResponse{
		Content:    content,
		Model:      reply.Model,
		TokensUsed: tokens,
	}, nil
}

func describeOllamaError(body []byte) string {
	var env struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err != nil || env.Error == "" {
		return strings.TrimSpace(string(body))
	}
	return env.Error
}
