package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/postcompass/internal/config"
	"github.com/ppiankov/postcompass/internal/draft"
	"github.com/ppiankov/postcompass/internal/llm"
	"github.com/ppiankov/postcompass/internal/worker"
	"github.com/sirupsen/logrus"
)

// ErrEmptyThought is returned when there is nothing to rewrite
var ErrEmptyThought = errors.New("raw thought is empty")

// Options are per-call overrides. Empty fields fall back to the generator
// config.
type Options struct {
	Model   string `json:"model,omitempty"`
	Tone    string `json:"tone,omitempty"`
	BaseURL string `json:"baseUrl,omitempty"`
	APIKey  string `json:"apiKey,omitempty"`
}

// ProviderFactory builds the chat provider for one call
type ProviderFactory func(llm.Config) (llm.Provider, error)

// Generator turns a raw thought into a fitted DraftSet. The chat provider is
// the primary transport; the plain-text endpoint is used only when it fails.
type Generator struct {
	config      llm.Config
	limiter     *worker.Limiter
	newProvider ProviderFactory
	log         logrus.FieldLogger
}

// NewGenerator creates a generator. limiter may be nil.
func NewGenerator(cfg llm.Config, limiter *worker.Limiter) *Generator {
	return &Generator{
		config:      cfg,
		limiter:     limiter,
		newProvider: llm.NewProvider,
		log:         logrus.StandardLogger(),
	}
}

// WithProviderFactory replaces the provider constructor
func (g *Generator) WithProviderFactory(f ProviderFactory) *Generator {
	g.newProvider = f
	return g
}

// WithLogger sets the logger
func (g *Generator) WithLogger(log logrus.FieldLogger) *Generator {
	g.log = log
	return g
}

// GenerateDrafts produces drafts for all platforms. The result is always
// fitted to platform limits. When both transports fail the error carries
// both causes.
func (g *Generator) GenerateDrafts(ctx context.Context, rawThought string, opts Options) (draft.DraftSet, error) {
	rawThought = strings.TrimSpace(rawThought)
	if rawThought == "" {
		return draft.DraftSet{}, ErrEmptyThought
	}

	cfg := g.callConfig(opts)
	system := SystemPrompt(opts.Tone)
	user := UserPrompt(rawThought)
	log := g.log.WithFields(logrus.Fields{"model": cfg.Model, "provider": cfg.Provider})

	drafts, primaryErr := g.generatePrimary(ctx, cfg, system, user)
	if primaryErr == nil {
		log.Debug("drafts generated via chat endpoint")
		return drafts.Fit(), nil
	}
	log.WithError(primaryErr).Debug("chat endpoint failed, trying text endpoint")

	drafts, secondaryErr := g.generateSecondary(ctx, cfg, system, user)
	if secondaryErr == nil {
		log.Debug("drafts generated via text endpoint")
		return drafts.Fit(), nil
	}

	log.WithError(secondaryErr).Warn("both generation endpoints failed")
	return draft.DraftSet{}, fmt.Errorf("generate drafts: %w", errors.Join(
		fmt.Errorf("chat endpoint: %w", primaryErr),
		fmt.Errorf("text endpoint: %w", secondaryErr),
	))
}

func (g *Generator) callConfig(opts Options) llm.Config {
	cfg := g.config
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	if opts.APIKey != "" {
		cfg.APIKey = opts.APIKey
	}
	if opts.Model != "" {
		cfg.Model = opts.Model
	}
	if cfg.BaseURL == "" && (cfg.Provider == "" || strings.EqualFold(cfg.Provider, "openai")) && cfg.APIKey == "" {
		cfg.BaseURL = config.DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = config.DefaultModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.5
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 700
	}
	return cfg
}

func (g *Generator) generatePrimary(ctx context.Context, cfg llm.Config, system, user string) (draft.DraftSet, error) {
	provider, err := g.newProvider(cfg)
	if err != nil {
		return draft.DraftSet{}, fmt.Errorf("create provider: %w", err)
	}

	if err := g.wait(ctx, cfg.ChatBaseURL()); err != nil {
		return draft.DraftSet{}, err
	}

	resp, err := provider.Complete(ctx, llm.ChatRequest{
		System:      system,
		User:        user,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})
	if err != nil {
		return draft.DraftSet{}, err
	}
	if strings.TrimSpace(resp.Content) == "" {
		return draft.DraftSet{}, llm.ErrEmptyCompletion
	}

	return draft.Normalize(resp.Content), nil
}

func (g *Generator) generateSecondary(ctx context.Context, cfg llm.Config, system, user string) (draft.DraftSet, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultBaseURL
	}
	endpoint := llm.NewTextEndpoint(baseURL, cfg)
	prompt := TextPrompt(system, user)

	if err := g.wait(ctx, endpoint.URL(prompt)); err != nil {
		return draft.DraftSet{}, err
	}

	text, err := endpoint.Complete(ctx, prompt)
	if err != nil {
		return draft.DraftSet{}, err
	}
	return draft.NormalizeShared(text), nil
}

func (g *Generator) wait(ctx context.Context, rawURL string) error {
	if g.limiter == nil {
		return nil
	}
	if err := g.limiter.Wait(ctx, rawURL); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	return nil
}
