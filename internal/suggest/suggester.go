package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/postcompass/internal/config"
	"github.com/ppiankov/postcompass/internal/draft"
	"github.com/ppiankov/postcompass/internal/llm"
	"github.com/ppiankov/postcompass/internal/worker"
	"github.com/sirupsen/logrus"
)

const (
	maxItems     = 8
	maxTagLen    = 40
	maxNameLen   = 50
	defaultScore = 0.5
)

// Source of a suggestion set
const (
	SourceModel   = "model"
	SourceCatalog = "catalog"
)

// Hashtag is an X hashtag suggestion
type Hashtag struct {
	Tag    string  `json:"tag"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
	URL    string  `json:"url"`
}

// Subreddit is a Reddit community suggestion
type Subreddit struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
	URL    string  `json:"url"`
}

// Suggestions are ranked hashtags and subreddits for one piece of content
type Suggestions struct {
	Hashtags   []Hashtag   `json:"hashtags"`
	Subreddits []Subreddit `json:"subreddits"`
	Source     string      `json:"source,omitempty"`
}

// IsEmpty reports whether nothing was suggested
func (s Suggestions) IsEmpty() bool {
	return len(s.Hashtags) == 0 && len(s.Subreddits) == 0
}

// Options are per-call overrides
type Options struct {
	Model   string `json:"model,omitempty"`
	BaseURL string `json:"baseUrl,omitempty"`
	APIKey  string `json:"apiKey,omitempty"`
}

const systemPrompt = `You suggest highly relevant X hashtags and Reddit subreddits for a given content idea. Return strict JSON with two arrays:
  - hashtags: items like {"tag": "#3DPrinting", "score": 0.91, "reason": "why"}
  - subreddits: items like {"name": "r/3Dprinting", "score": 0.88, "reason": "why"}
Rank by score descending. Prefer specific communities over generic ones. Include 3-6 items per array if possible.`

// Suggester asks the chat endpoint for hashtags and subreddits and falls back
// to the static topic catalog
type Suggester struct {
	config      llm.Config
	limiter     *worker.Limiter
	newProvider func(llm.Config) (llm.Provider, error)
	log         logrus.FieldLogger
}

// NewSuggester creates a suggester. limiter may be nil.
func NewSuggester(cfg llm.Config, limiter *worker.Limiter) *Suggester {
	return &Suggester{
		config:      cfg,
		limiter:     limiter,
		newProvider: llm.NewProvider,
		log:         logrus.StandardLogger(),
	}
}

// WithProviderFactory replaces the provider constructor
func (s *Suggester) WithProviderFactory(f func(llm.Config) (llm.Provider, error)) *Suggester {
	s.newProvider = f
	return s
}

// Suggest never fails: on any model error it returns catalog matches, which
// may be empty
func (s *Suggester) Suggest(ctx context.Context, text string, opts Options) Suggestions {
	text = strings.TrimSpace(text)
	if text == "" {
		return Suggestions{Hashtags: []Hashtag{}, Subreddits: []Subreddit{}}
	}

	got, err := s.suggestModel(ctx, text, opts)
	if err == nil && !got.IsEmpty() {
		got.Source = SourceModel
		return got
	}
	if err != nil {
		s.log.WithError(err).Warn("suggestion model failed, using topic catalog")
	}

	fallback := MatchCatalog(text)
	fallback.Source = SourceCatalog
	return fallback
}

func (s *Suggester) suggestModel(ctx context.Context, text string, opts Options) (Suggestions, error) {
	cfg := s.config
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	if opts.APIKey != "" {
		cfg.APIKey = opts.APIKey
	}
	if opts.Model != "" {
		cfg.Model = opts.Model
	}
	if cfg.Model == "" {
		cfg.Model = config.DefaultModel
	}

	provider, err := s.newProvider(cfg)
	if err != nil {
		return Suggestions{}, fmt.Errorf("create provider: %w", err)
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx, cfg.ChatBaseURL()); err != nil {
			return Suggestions{}, fmt.Errorf("rate limit: %w", err)
		}
	}

	resp, err := provider.Complete(ctx, llm.ChatRequest{
		System:      systemPrompt,
		User:        "Content:\n" + text + "\n\nReturn only JSON.",
		Model:       cfg.Model,
		Temperature: 0.3,
		MaxTokens:   400,
	})
	if err != nil {
		return Suggestions{}, err
	}

	return ParseSuggestions(resp.Content)
}

// ParseSuggestions decodes and normalizes a model reply
func ParseSuggestions(content string) (Suggestions, error) {
	var raw struct {
		Hashtags   []map[string]any `json:"hashtags"`
		Subreddits []map[string]any `json:"subreddits"`
	}
	if err := json.Unmarshal([]byte(draft.StripCodeFence(strings.TrimSpace(content))), &raw); err != nil {
		return Suggestions{}, fmt.Errorf("decode suggestions: %w", err)
	}

	out := Suggestions{Hashtags: []Hashtag{}, Subreddits: []Subreddit{}}
	for _, h := range raw.Hashtags {
		tag := withPrefix(firstString(h, "tag", "hashtag", "name"), "#")
		if tag == "" || utf8.RuneCountInString(tag) > maxTagLen {
			continue
		}
		out.Hashtags = append(out.Hashtags, Hashtag{
			Tag:    tag,
			Score:  score(h),
			Reason: firstString(h, "reason"),
			URL:    HashtagURL(tag),
		})
	}
	for _, sr := range raw.Subreddits {
		name := withPrefix(firstString(sr, "name", "subreddit"), "r/")
		if name == "" || utf8.RuneCountInString(name) > maxNameLen {
			continue
		}
		out.Subreddits = append(out.Subreddits, Subreddit{
			Name:   name,
			Score:  score(sr),
			Reason: firstString(sr, "reason"),
			URL:    SubredditURL(name),
		})
	}

	sort.SliceStable(out.Hashtags, func(i, j int) bool { return out.Hashtags[i].Score > out.Hashtags[j].Score })
	sort.SliceStable(out.Subreddits, func(i, j int) bool { return out.Subreddits[i].Score > out.Subreddits[j].Score })
	if len(out.Hashtags) > maxItems {
		out.Hashtags = out.Hashtags[:maxItems]
	}
	if len(out.Subreddits) > maxItems {
		out.Subreddits = out.Subreddits[:maxItems]
	}
	return out, nil
}

// HashtagURL links to the hashtag search on X
func HashtagURL(tag string) string {
	return "https://x.com/hashtag/" + url.PathEscape(strings.TrimPrefix(tag, "#"))
}

// SubredditURL links to the subreddit front page
func SubredditURL(name string) string {
	return "https://www.reddit.com/r/" + url.PathEscape(strings.TrimPrefix(name, "r/")) + "/"
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}

func withPrefix(s, prefix string) string {
	if s == "" || s == prefix {
		return ""
	}
	if strings.HasPrefix(s, prefix) {
		return s
	}
	// "/r/golang" and "R/golang" are common model spellings
	if prefix == "r/" {
		trimmed := strings.TrimPrefix(s, "/")
		if len(trimmed) > 2 && strings.EqualFold(trimmed[:2], "r/") {
			return prefix + trimmed[2:]
		}
	}
	return prefix + s
}

func score(m map[string]any) float64 {
	if f, ok := m["score"].(float64); ok {
		return f
	}
	return defaultScore
}
