package cli

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/postcompass/internal/cache"
	"github.com/ppiankov/postcompass/internal/config"
	"github.com/ppiankov/postcompass/internal/draft"
	"github.com/ppiankov/postcompass/internal/fill"
	"github.com/ppiankov/postcompass/internal/history"
	"github.com/ppiankov/postcompass/internal/llm"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadInput(t *testing.T) {
	got, err := readInput([]string{"We", "shipped", "v2"}, strings.NewReader("ignored"))
	require.NoError(t, err)
	assert.Equal(t, "We shipped v2", got)

	got, err = readInput([]string{"-"}, strings.NewReader("  from stdin\n"))
	require.NoError(t, err)
	assert.Equal(t, "from stdin", got)

	got, err = readInput(nil, strings.NewReader("piped"))
	require.NoError(t, err)
	assert.Equal(t, "piped", got)
}

func TestRenderDefaultConfig_RoundTrips(t *testing.T) {
	data, err := renderDefaultConfig()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# Post Compass Configuration File"))

	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(string(data))))

	cfg, err := config.Load(v)
	require.NoError(t, err)
	want := config.DefaultConfig()
	assert.Equal(t, want.LLM.Model, cfg.LLM.Model)
	assert.Equal(t, want.Browser.LoadTimeout, cfg.Browser.LoadTimeout)
	assert.Equal(t, want.Server.Addr, cfg.Server.Addr)
}

func TestPayloadFromHistory(t *testing.T) {
	a := &app{cfg: config.DefaultConfig(), store: cache.NewMemoryCache(cache.NoExpiration, time.Minute)}

	_, err := payloadFromHistory(a, draft.PlatformTwitter, "")
	assert.Error(t, err)

	hist := a.history()
	older, err := hist.Add(history.Entry{Raw: "old", Drafts: draft.DraftSet{Reddit: draft.RedditDraft{Title: "Old title"}}})
	require.NoError(t, err)
	_, err = hist.Add(history.Entry{Raw: "new", Drafts: draft.DraftSet{Twitter: draft.TextDraft{Text: "newest"}}})
	require.NoError(t, err)

	p, err := payloadFromHistory(a, draft.PlatformTwitter, "")
	require.NoError(t, err)
	assert.Equal(t, draft.Payload{Text: "newest"}, p)

	p, err = payloadFromHistory(a, draft.PlatformReddit, older.ID)
	require.NoError(t, err)
	assert.Equal(t, draft.Payload{Title: "Old title"}, p)

	_, err = payloadFromHistory(a, draft.PlatformReddit, "missing")
	assert.ErrorIs(t, err, history.ErrNotFound)
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"draft", "batch", "suggest", "research", "models", "history", "fill", "share", "serve", "config", "version"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestShareLink(t *testing.T) {
	a := &app{cfg: config.DefaultConfig(), store: cache.NewMemoryCache(cache.NoExpiration, time.Minute)}

	link, err := shareLink(a, draft.PlatformTwitter, draft.Payload{Text: "We shipped v2"}, "")
	require.NoError(t, err)
	assert.Equal(t, "https://x.com/intent/tweet?text=We+shipped+v2", link)

	_, err = a.history().Add(history.Entry{Raw: "r", Drafts: draft.DraftSet{Reddit: draft.RedditDraft{Title: "Title", Body: "Body text"}}})
	require.NoError(t, err)

	link, err = shareLink(a, draft.PlatformReddit, draft.Payload{}, "")
	require.NoError(t, err)
	assert.Equal(t, "https://www.reddit.com/submit?selftext=true&title=Title&text=Body+text", link)

	_, err = shareLink(a, draft.PlatformLinkedIn, draft.Payload{}, "")
	assert.ErrorIs(t, err, fill.ErrNothingToShare)
}

func TestProviderStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/openai/models" {
			_, _ = w.Write([]byte(`{"data": [{"id": "gpt-5-nano"}]}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	cfg := llm.DefaultConfig()
	cfg.BaseURL = server.URL
	a := &app{cfg: config.DefaultConfig(), llm: cfg}

	name, ok := a.providerStatus(context.Background())
	assert.Equal(t, "openai", name)
	assert.True(t, ok)

	a.llm.ChatPath = "/elsewhere"
	_, ok = a.providerStatus(context.Background())
	assert.False(t, ok)

	a.llm.Provider = "mystery"
	name, ok = a.providerStatus(context.Background())
	assert.Equal(t, "mystery", name)
	assert.False(t, ok)
}
