package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("POSTCOMPASS_API_KEY", "")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, DefaultBaseURL, cfg.LLM.BaseURL)
	assert.Equal(t, DefaultModel, cfg.LLM.Model)
	assert.Equal(t, 700, cfg.LLM.MaxTokens)
	assert.Equal(t, 15*time.Second, cfg.Browser.LoadTimeout)
	assert.Equal(t, 1500*time.Millisecond, cfg.Browser.SettleDelay)
}

func TestLoad_FromYAML(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
llm:
  provider: ollama
  model: llama3.1:8b
  base_url: http://localhost:11434
browser:
  headless: true
  load_timeout: 5s
`)))

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "llama3.1:8b", cfg.LLM.Model)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 5*time.Second, cfg.Browser.LoadTimeout)
	// untouched sections keep defaults
	assert.Equal(t, 1500*time.Millisecond, cfg.Browser.SettleDelay)
	assert.Equal(t, 700, cfg.LLM.MaxTokens)
}

func TestAPIKeyFromEnv(t *testing.T) {
	t.Setenv("POSTCOMPASS_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")

	assert.Equal(t, "sk-openai", APIKeyFromEnv("openai"))
	assert.Equal(t, "sk-ant", APIKeyFromEnv("claude"))
	assert.Equal(t, "", APIKeyFromEnv("ollama"))

	t.Setenv("POSTCOMPASS_API_KEY", "sk-own")
	assert.Equal(t, "sk-own", APIKeyFromEnv("openai"))
}
