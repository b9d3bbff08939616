package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Defaults shared with the generation endpoint
const (
	DefaultBaseURL = "https://text.pollinations.ai"
	DefaultModel   = "gpt-5-nano"
)

// Config is the complete postcompass configuration
type Config struct {
	LLM          LLMConfig       `yaml:"llm" mapstructure:"llm"`
	Browser      BrowserConfig   `yaml:"browser" mapstructure:"browser"`
	Cache        CacheConfig     `yaml:"cache" mapstructure:"cache"`
	RateLimiting RateLimitConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	HTTP         HTTPConfig      `yaml:"http" mapstructure:"http"`
	Research     ResearchConfig  `yaml:"research" mapstructure:"research"`
	Server       ServerConfig    `yaml:"server" mapstructure:"server"`
}

// LLMConfig configures the generation endpoint
type LLMConfig struct {
	// Provider: "openai" (any OpenAI-compatible endpoint), "anthropic", "ollama"
	Provider    string  `yaml:"provider" mapstructure:"provider"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	// ChatPath is appended to BaseURL for chat completions ("/openai" for
	// pollinations, "/v1" for api.openai.com)
	ChatPath    string  `yaml:"chat_path" mapstructure:"chat_path"`
	Model       string  `yaml:"model" mapstructure:"model"`
	APIKey      string  `yaml:"api_key,omitempty" mapstructure:"api_key"`
	Tone        string  `yaml:"tone,omitempty" mapstructure:"tone"`
	Timeout     int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	Temperature float32 `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`

	// ReasoningParams switches reasoning models to max_completion_tokens
	// without temperature (api.openai.com rejects the classic parameters)
	ReasoningParams bool `yaml:"reasoning_params" mapstructure:"reasoning_params"`
}

// BrowserConfig configures the driven Chrome instance
type BrowserConfig struct {
	DebuggerURL string        `yaml:"debugger_url,omitempty" mapstructure:"debugger_url"`
	Bin         string        `yaml:"bin,omitempty" mapstructure:"bin"`
	Headless    bool          `yaml:"headless" mapstructure:"headless"`
	UserDataDir string        `yaml:"user_data_dir,omitempty" mapstructure:"user_data_dir"`
	LoadTimeout time.Duration `yaml:"load_timeout" mapstructure:"load_timeout"`
	SettleDelay time.Duration `yaml:"settle_delay" mapstructure:"settle_delay"`
	ModalWait   time.Duration `yaml:"modal_wait" mapstructure:"modal_wait"`
}

// CacheConfig configures model-list caching and local storage
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir     string        `yaml:"dir" mapstructure:"dir"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// RateLimitConfig limits outbound calls per host
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// HTTPConfig holds transport settings for plain HTTP calls
type HTTPConfig struct {
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent  string        `yaml:"user_agent" mapstructure:"user_agent"`
	HTTPProxy  string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

// ResearchConfig configures trending-topic research
type ResearchConfig struct {
	Days          int  `yaml:"days" mapstructure:"days"`
	MaxPerSource  int  `yaml:"max_per_source" mapstructure:"max_per_source"`
	RespectRobots bool `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// ServerConfig configures the local message server
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    "openai",
			BaseURL:     DefaultBaseURL,
			ChatPath:    "/openai",
			Model:       DefaultModel,
			Timeout:     30,
			Temperature: 0.5,
			MaxTokens:   700,
		},
		Browser: BrowserConfig{
			Headless:    false,
			LoadTimeout: 15 * time.Second,
			SettleDelay: 1500 * time.Millisecond,
			ModalWait:   3 * time.Second,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     filepath.Join(HomeDir(), "cache"),
			TTL:     time.Hour,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 1,
			BurstSize:         3,
		},
		HTTP: HTTPConfig{
			Timeout:   20 * time.Second,
			UserAgent: "PostCompass/0.1 (+https://github.com/ppiankov/postcompass)",
		},
		Research: ResearchConfig{
			Days:         7,
			MaxPerSource: 6,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8787",
		},
	}
}

// HomeDir returns the postcompass state directory (~/.postcompass)
func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".postcompass"
	}
	return filepath.Join(home, ".postcompass")
}

// DataDir is where history and preferences are persisted
func DataDir() string {
	return filepath.Join(HomeDir(), "data")
}

// Load overlays values known to v (config file, env, bound flags) onto the
// defaults
func Load(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()
	if v != nil {
		if err := v.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}

	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = APIKeyFromEnv(cfg.LLM.Provider)
	}
	if cfg.LLM.BaseURL == "" && strings.EqualFold(cfg.LLM.Provider, "ollama") {
		cfg.LLM.BaseURL = os.Getenv("OLLAMA_BASE_URL")
	}

	return cfg, nil
}

// APIKeyFromEnv reads the conventional API key variable for a provider
func APIKeyFromEnv(provider string) string {
	switch strings.ToLower(provider) {
	case "anthropic", "claude":
		return os.Getenv("ANTHROPIC_API_KEY")
	case "ollama":
		return ""
	default:
		if key := os.Getenv("POSTCOMPASS_API_KEY"); key != "" {
			return key
		}
		return os.Getenv("OPENAI_API_KEY")
	}
}
