package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/ppiankov/postcompass/internal/cache"
	"github.com/ppiankov/postcompass/internal/config"
	"github.com/sirupsen/logrus"
)

// ModelDescriptor is one entry of the model discovery response
type ModelDescriptor struct {
	Name             string          `json:"name"`
	Aliases          json.RawMessage `json:"aliases,omitempty"`
	OriginalName     string          `json:"original_name,omitempty"`
	OutputModalities []string        `json:"output_modalities,omitempty"`
}

// DisplayName returns name, then the first alias, then original_name
func (m ModelDescriptor) DisplayName() string {
	if name := strings.TrimSpace(m.Name); name != "" {
		return name
	}
	if alias := firstAlias(m.Aliases); alias != "" {
		return alias
	}
	return strings.TrimSpace(m.OriginalName)
}

// SupportsText reports whether the model produces text. Descriptors without
// output_modalities are assumed to.
func (m ModelDescriptor) SupportsText() bool {
	if m.OutputModalities == nil {
		return true
	}
	for _, mod := range m.OutputModalities {
		if strings.EqualFold(mod, "text") {
			return true
		}
	}
	return false
}

// aliases is either a string or a list of strings
func firstAlias(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return strings.TrimSpace(single)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, a := range list {
			if a = strings.TrimSpace(a); a != "" {
				return a
			}
		}
	}
	return ""
}

// ModelCatalog lists text-capable models from the discovery endpoint
type ModelCatalog struct {
	client  *resty.Client
	baseURL string
	cache   cache.Cache
	ttl     time.Duration
	log     logrus.FieldLogger
}

// NewModelCatalog creates a catalog. c may be nil to disable caching.
func NewModelCatalog(baseURL string, c cache.Cache, ttl time.Duration) *ModelCatalog {
	if baseURL == "" {
		baseURL = config.DefaultBaseURL
	}
	return &ModelCatalog{
		client:  resty.New().SetTimeout(15 * time.Second),
		baseURL: strings.TrimSuffix(baseURL, "/"),
		cache:   c,
		ttl:     ttl,
		log:     logrus.StandardLogger(),
	}
}

// List returns model names. It never fails: any error or an empty list yields
// the default model alone.
func (c *ModelCatalog) List(ctx context.Context) []string {
	key := cache.CacheKey("models", c.baseURL)
	if c.cache != nil {
		if data, ok := c.cache.Get(key); ok {
			var names []string
			if err := json.Unmarshal(data, &names); err == nil && len(names) > 0 {
				return names
			}
		}
	}

	names, err := c.fetch(ctx)
	if err != nil {
		c.log.WithError(err).Warn("model discovery failed, using default model")
		return []string{config.DefaultModel}
	}
	if len(names) == 0 {
		return []string{config.DefaultModel}
	}

	if c.cache != nil {
		if data, err := json.Marshal(names); err == nil {
			if err := c.cache.Set(key, data, c.ttl); err != nil {
				c.log.WithError(err).Debug("failed to cache model list")
			}
		}
	}
	return names
}

func (c *ModelCatalog) fetch(ctx context.Context) ([]string, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		Get(c.baseURL + "/models")
	if err != nil {
		return nil, fmt.Errorf("models request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("models failed: %d", resp.StatusCode())
	}

	var descriptors []ModelDescriptor
	if err := json.Unmarshal(resp.Body(), &descriptors); err != nil {
		return nil, fmt.Errorf("decode models: %w", err)
	}

	return FilterModels(descriptors), nil
}

// FilterModels keeps text-capable models with a usable name, in order
func FilterModels(descriptors []ModelDescriptor) []string {
	var names []string
	seen := make(map[string]bool)
	for _, d := range descriptors {
		if !d.SupportsText() {
			continue
		}
		name := d.DisplayName()
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}
