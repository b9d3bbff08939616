package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ppiankov/postcompass/internal/cache"
	"github.com/ppiankov/postcompass/internal/composer"
	"github.com/ppiankov/postcompass/internal/composer/composertest"
	"github.com/ppiankov/postcompass/internal/draft"
	"github.com/ppiankov/postcompass/internal/fill"
	"github.com/ppiankov/postcompass/internal/history"
	"github.com/ppiankov/postcompass/internal/pipeline"
	"github.com/ppiankov/postcompass/internal/suggest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	set     draft.DraftSet
	err     error
	gotOpts pipeline.Options
	gotRaw  string
}

func (s *stubGenerator) GenerateDrafts(_ context.Context, raw string, opts pipeline.Options) (draft.DraftSet, error) {
	s.gotRaw, s.gotOpts = raw, opts
	return s.set, s.err
}

type stubSuggester struct{}

func (stubSuggester) Suggest(_ context.Context, text string, _ suggest.Options) suggest.Suggestions {
	return suggest.Suggestions{
		Hashtags:   []suggest.Hashtag{{Tag: "#" + text, Score: 0.9}},
		Subreddits: []suggest.Subreddit{},
	}
}

type stubResearcher struct {
	gotOpts suggest.ResearchOptions
}

func (s *stubResearcher) Research(_ context.Context, topic string, opts suggest.ResearchOptions) ([]suggest.Item, error) {
	s.gotOpts = opts
	return []suggest.Item{{Source: "hn", Title: topic}}, nil
}

type stubModels []string

func (m stubModels) List(context.Context) []string { return m }

type stubFiller struct {
	out        composer.Outcome
	gotPayload draft.Payload
	gotPlat    draft.Platform
}

func (s *stubFiller) RequestFill(_ context.Context, p draft.Platform, payload draft.Payload, _ fill.Tab) composer.Outcome {
	s.gotPlat, s.gotPayload = p, payload
	out := s.out
	out.Platform = p
	return out
}

type stubTab struct {
	composertest.Notifier
	navigated []string
	dismissed bool
}

func (t *stubTab) URL(context.Context) (string, error) { return "about:blank", nil }
func (t *stubTab) WaitLoad(context.Context) error { return nil }
func (t *stubTab) Document() composer.Document { return composertest.NewDocument() }
func (t *stubTab) InjectReceiver(context.Context) error { return nil }

func (t *stubTab) Navigate(_ context.Context, u string) error {
	t.navigated = append(t.navigated, u)
	return nil
}

func (t *stubTab) Dismiss(context.Context) error {
	t.dismissed = true
	return nil
}

type panicky struct{}

func (panicky) Suggest(context.Context, string, suggest.Options) suggest.Suggestions {
	panic("boom")
}

func newStore() cache.Cache { return cache.NewMemoryCache(cache.NoExpiration, time.Minute) }

func TestHandle_UnknownType(t *testing.T) {
	r := NewRouter(Deps{}, nil)

	resp := r.Handle(context.Background(), Message{Type: "doSomething"})

	assert.False(t, resp.OK)
	assert.Equal(t, "unknown message type: doSomething", resp.Error)
}

func TestHandle_GenerateDrafts(t *testing.T) {
	store := newStore()
	gen := &stubGenerator{set: draft.DraftSet{Twitter: draft.TextDraft{Text: "We shipped v2!"}}}
	hist := history.New(store)
	prefs := history.NewPreferences(store)
	session := history.NewSession("")
	r := NewRouter(Deps{Generator: gen, History: hist, Preferences: prefs, Session: session}, nil)

	resp := r.Handle(context.Background(), Message{Type: TypeGenerateDrafts, Text: "  shipped v2  ", Model: "openai", Tone: "playful"})
	require.True(t, resp.OK, resp.Error)

	result, ok := resp.Data.(GenerateResult)
	require.True(t, ok)
	assert.Equal(t, "We shipped v2!", result.Drafts.Twitter.Text)
	assert.NotEmpty(t, result.ID)
	assert.Equal(t, pipeline.Options{Model: "openai", Tone: "playful"}, gen.gotOpts)

	list, err := hist.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "shipped v2", list[0].Raw)
	assert.Equal(t, "openai", prefs.Model())
	assert.Equal(t, "We shipped v2!", session.Drafts().Twitter.Text)
}

func TestHandle_GenerateDraftsUsesStoredModel(t *testing.T) {
	prefs := history.NewPreferences(newStore())
	require.NoError(t, prefs.SetModel("mistral"))
	gen := &stubGenerator{}
	r := NewRouter(Deps{Generator: gen, Preferences: prefs}, nil)

	resp := r.Handle(context.Background(), Message{Type: TypeGenerateDrafts, Text: "x"})

	require.True(t, resp.OK)
	assert.Equal(t, "mistral", gen.gotOpts.Model)
}

func TestHandle_GenerateDraftsError(t *testing.T) {
	gen := &stubGenerator{err: pipeline.ErrEmptyThought}
	r := NewRouter(Deps{Generator: gen}, nil)

	resp := r.Handle(context.Background(), Message{Type: TypeGenerateDrafts})

	assert.False(t, resp.OK)
	assert.Equal(t, pipeline.ErrEmptyThought.Error(), resp.Error)
}

func TestHandle_SuggestAndResearch(t *testing.T) {
	res := &stubResearcher{}
	r := NewRouter(Deps{Suggester: stubSuggester{}, Researcher: res}, nil)

	resp := r.Handle(context.Background(), Message{Type: TypeSuggestCommunities, Text: "golang"})
	require.True(t, resp.OK)
	assert.Equal(t, "#golang", resp.Data.(suggest.Suggestions).Hashtags[0].Tag)

	resp = r.Handle(context.Background(), Message{Type: TypeResearchTopic, Text: "rust", Days: 3, MaxPerSource: 2})
	require.True(t, resp.OK)
	assert.Equal(t, "rust", resp.Data.([]suggest.Item)[0].Title)
	assert.Equal(t, suggest.ResearchOptions{Days: 3, MaxPerSource: 2}, res.gotOpts)

	resp = r.Handle(context.Background(), Message{Type: TypeResearchTopic, Text: "  "})
	assert.False(t, resp.OK)
}

func TestHandle_MissingDependency(t *testing.T) {
	r := NewRouter(Deps{}, nil)

	for _, typ := range []string{TypeGenerateDrafts, TypeSuggestCommunities, TypeResearchTopic, TypeListModels, TypeFillTwitter} {
		resp := r.Handle(context.Background(), Message{Type: typ, Text: "x"})
		assert.False(t, resp.OK, typ)
		assert.Contains(t, resp.Error, "not available", typ)
	}
}

func TestHandle_Navigate(t *testing.T) {
	tab := &stubTab{}
	r := NewRouter(Deps{Tab: func(context.Context) (fill.Tab, error) { return tab, nil }}, nil)

	resp := r.Handle(context.Background(), Message{Type: TypeNavigate, URL: "https://www.reddit.com/submit"})
	require.True(t, resp.OK)
	assert.Equal(t, []string{"https://www.reddit.com/submit"}, tab.navigated)

	resp = r.Handle(context.Background(), Message{Type: TypeNavigate, URL: "javascript:alert(1)"})
	assert.False(t, resp.OK)
	assert.Len(t, tab.navigated, 1)
}

func TestHandle_FillUsesSessionDrafts(t *testing.T) {
	session := history.NewSession("m")
	session.Start("raw", draft.DraftSet{Reddit: draft.RedditDraft{Title: "T", Body: "B"}})
	filler := &stubFiller{out: composer.Outcome{Success: true, Message: "ok"}}
	tab := &stubTab{}
	r := NewRouter(Deps{
		Filler:  filler,
		Session: session,
		Tab:     func(context.Context) (fill.Tab, error) { return tab, nil },
	}, nil)

	resp := r.Handle(context.Background(), Message{Type: TypeFillReddit})

	require.True(t, resp.OK)
	assert.Equal(t, draft.PlatformReddit, filler.gotPlat)
	assert.Equal(t, draft.Payload{Title: "T", Body: "B"}, filler.gotPayload)
}

func TestHandle_FillFailureIsNotOK(t *testing.T) {
	filler := &stubFiller{out: composer.Outcome{Success: false, Message: composer.MsgTwitterNotFound}}
	r := NewRouter(Deps{
		Filler: filler,
		Tab:    func(context.Context) (fill.Tab, error) { return &stubTab{}, nil },
	}, nil)

	resp := r.Handle(context.Background(), Message{Type: TypeFillTwitter, Text: "hello"})

	assert.False(t, resp.OK)
	assert.Equal(t, composer.MsgTwitterNotFound, resp.Error)
	out, ok := resp.Data.(composer.Outcome)
	require.True(t, ok)
	assert.Equal(t, draft.PlatformTwitter, out.Platform)
	assert.Equal(t, draft.Payload{Text: "hello"}, filler.gotPayload)
}

func TestHandle_FillTabError(t *testing.T) {
	r := NewRouter(Deps{
		Filler: &stubFiller{},
		Tab:    func(context.Context) (fill.Tab, error) { return nil, errors.New("chrome gone") },
	}, nil)

	resp := r.Handle(context.Background(), Message{Type: TypeFillLinkedIn, Text: "x"})

	assert.False(t, resp.OK)
	assert.Contains(t, resp.Error, "chrome gone")
}

func TestHandle_CloseSidebar(t *testing.T) {
	tab := &stubTab{}
	closed := false
	r := NewRouter(Deps{
		Tab:            func(context.Context) (fill.Tab, error) { return tab, nil },
		OnCloseSidebar: func() { closed = true },
	}, nil)

	resp := r.Handle(context.Background(), Message{Type: TypeCloseSidebar})

	assert.True(t, resp.OK)
	assert.True(t, closed)
	assert.True(t, tab.dismissed)
}

func TestHandle_ListModels(t *testing.T) {
	prefs := history.NewPreferences(newStore())
	require.NoError(t, prefs.SetModel("openai"))
	r := NewRouter(Deps{Models: stubModels{"gpt-5-nano", "openai"}, Preferences: prefs}, nil)

	resp := r.Handle(context.Background(), Message{Type: TypeListModels})

	require.True(t, resp.OK)
	assert.Equal(t, ModelsResult{Models: []string{"gpt-5-nano", "openai"}, Selected: "openai"}, resp.Data)
}

func TestHandle_HistoryAndClear(t *testing.T) {
	hist := history.New(newStore())
	_, err := hist.Add(history.Entry{Raw: "old"})
	require.NoError(t, err)
	r := NewRouter(Deps{History: hist}, nil)

	resp := r.Handle(context.Background(), Message{Type: TypeHistory})
	require.True(t, resp.OK)
	assert.Len(t, resp.Data.([]history.Entry), 1)

	resp = r.Handle(context.Background(), Message{Type: TypeClearHistory})
	require.True(t, resp.OK)

	resp = r.Handle(context.Background(), Message{Type: TypeHistory})
	assert.Empty(t, resp.Data.([]history.Entry))
}

func TestHandle_RecoversPanic(t *testing.T) {
	r := NewRouter(Deps{Suggester: panicky{}}, nil)

	resp := r.Handle(context.Background(), Message{Type: TypeSuggestCommunities, Text: "x"})

	assert.False(t, resp.OK)
	assert.Contains(t, resp.Error, "boom")
}

func TestHandle_RegeneratePlatformThenUndo(t *testing.T) {
	store := newStore()
	hist := history.New(store)
	session := history.NewSession("m")
	gen := &stubGenerator{set: draft.DraftSet{
		Twitter: draft.TextDraft{Text: "first tweet"},
		Reddit:  draft.RedditDraft{Title: "First title", Body: "first body"},
	}}
	r := NewRouter(Deps{Generator: gen, History: hist, Session: session}, nil)

	resp := r.Handle(context.Background(), Message{Type: TypeGenerateDrafts, Text: "shipped v2"})
	require.True(t, resp.OK, resp.Error)

	gen.set = draft.DraftSet{
		Twitter: draft.TextDraft{Text: "second tweet"},
		Reddit:  draft.RedditDraft{Title: "Second title", Body: "second body"},
	}
	resp = r.Handle(context.Background(), Message{Type: TypeGenerateDrafts, Platform: "x"})
	require.True(t, resp.OK, resp.Error)
	assert.Equal(t, "shipped v2", gen.gotRaw, "regeneration reuses the session thought")

	result := resp.Data.(GenerateResult)
	assert.Equal(t, "second tweet", result.Drafts.Twitter.Text)
	assert.Equal(t, "First title", result.Drafts.Reddit.Title, "other platforms are kept")
	assert.Equal(t, map[draft.Platform]int{draft.PlatformTwitter: 1}, result.Undo)

	list, err := hist.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Len(t, list[0].Versions, 1)
	assert.Equal(t, "first tweet", list[0].Versions[0].Twitter.Text)

	resp = r.Handle(context.Background(), Message{Type: TypeUndo, Platform: "twitter"})
	require.True(t, resp.OK, resp.Error)
	result = resp.Data.(GenerateResult)
	assert.Equal(t, "first tweet", result.Drafts.Twitter.Text)
	assert.Empty(t, result.Undo)
	assert.Equal(t, "first tweet", session.Drafts().Twitter.Text)

	resp = r.Handle(context.Background(), Message{Type: TypeUndo, Platform: "twitter"})
	assert.False(t, resp.OK)
	assert.Contains(t, resp.Error, ErrNothingToUndo.Error())
}

func TestHandle_UndoErrors(t *testing.T) {
	resp := NewRouter(Deps{}, nil).Handle(context.Background(), Message{Type: TypeUndo, Platform: "reddit"})
	assert.False(t, resp.OK)
	assert.Contains(t, resp.Error, "not available")

	r := NewRouter(Deps{Session: history.NewSession("m")}, nil)
	resp = r.Handle(context.Background(), Message{Type: TypeUndo, Platform: "mastodon"})
	assert.False(t, resp.OK)
	assert.Contains(t, resp.Error, draft.ErrUnknownPlatform.Error())
}

func TestHandle_LoadHistory(t *testing.T) {
	hist := history.New(newStore())
	saved, err := hist.Add(history.Entry{Model: "mistral", Raw: "old thought", Drafts: draft.DraftSet{LinkedIn: draft.TextDraft{Text: "old post"}}})
	require.NoError(t, err)
	session := history.NewSession("m")
	session.Start("current", draft.DraftSet{LinkedIn: draft.TextDraft{Text: "current post"}})
	r := NewRouter(Deps{History: hist, Session: session}, nil)

	resp := r.Handle(context.Background(), Message{Type: TypeLoadHistory, ID: saved.ID})
	require.True(t, resp.OK, resp.Error)

	result := resp.Data.(GenerateResult)
	assert.Equal(t, saved.ID, result.ID)
	assert.Equal(t, "old post", result.Drafts.LinkedIn.Text)
	assert.Equal(t, "old thought", session.Raw())
	assert.Equal(t, "mistral", session.Model())

	resp = r.Handle(context.Background(), Message{Type: TypeLoadHistory, ID: "missing"})
	assert.False(t, resp.OK)
	assert.Contains(t, resp.Error, history.ErrNotFound.Error())
}

func TestHandle_ShareIntent(t *testing.T) {
	session := history.NewSession("m")
	r := NewRouter(Deps{Session: session}, nil)

	resp := r.Handle(context.Background(), Message{Type: TypeShareIntent, Platform: "reddit"})
	assert.False(t, resp.OK)
	assert.Equal(t, ErrNoDrafts.Error(), resp.Error)

	session.Start("raw", draft.DraftSet{
		Twitter: draft.TextDraft{Text: "hello world"},
		Reddit:  draft.RedditDraft{Title: "T", Body: "B"},
	})

	resp = r.Handle(context.Background(), Message{Type: TypeShareIntent, Platform: "reddit"})
	require.True(t, resp.OK, resp.Error)
	assert.Equal(t, ShareResult{
		Platform: draft.PlatformReddit,
		URL:      "https://www.reddit.com/submit?selftext=true&title=T&text=B",
	}, resp.Data)

	resp = r.Handle(context.Background(), Message{Type: TypeShareIntent, Platform: "linkedin", Text: "from message"})
	require.True(t, resp.OK, resp.Error)
	assert.Equal(t, "https://www.linkedin.com/shareArticle?mini=true&summary=from+message", resp.Data.(ShareResult).URL)

	resp = r.Handle(context.Background(), Message{Type: TypeShareIntent, Platform: "linkedin"})
	assert.False(t, resp.OK, "session has no linkedin draft")
	assert.Contains(t, resp.Error, fill.ErrNothingToShare.Error())
}

type recordingSuggester struct {
	got string
}

func (s *recordingSuggester) Suggest(_ context.Context, text string, _ suggest.Options) suggest.Suggestions {
	s.got = text
	return suggest.Suggestions{}
}

func TestHandle_SuggestFallsBackToSession(t *testing.T) {
	sugg := &recordingSuggester{}
	session := history.NewSession("m")
	r := NewRouter(Deps{Suggester: sugg, Session: session}, nil)

	session.Start("raw thought", draft.DraftSet{})
	require.True(t, r.Handle(context.Background(), Message{Type: TypeSuggestCommunities}).OK)
	assert.Equal(t, "raw thought", sugg.got)

	session.Start("raw thought", draft.DraftSet{
		Twitter: draft.TextDraft{Text: "tweet"},
		Reddit:  draft.RedditDraft{Title: "title", Body: "body"},
	})
	require.True(t, r.Handle(context.Background(), Message{Type: TypeSuggestCommunities}).OK)
	assert.Equal(t, "tweet title body", sugg.got)

	require.True(t, r.Handle(context.Background(), Message{Type: TypeSuggestCommunities, Text: "explicit"}).OK)
	assert.Equal(t, "explicit", sugg.got)
}

func TestHandle_FillWithoutSessionDrafts(t *testing.T) {
	filler := &stubFiller{out: composer.Outcome{Success: true}}
	r := NewRouter(Deps{
		Filler:  filler,
		Session: history.NewSession("m"),
		Tab:     func(context.Context) (fill.Tab, error) { return &stubTab{}, nil },
	}, nil)

	resp := r.Handle(context.Background(), Message{Type: TypeFillTwitter})

	assert.False(t, resp.OK)
	assert.Equal(t, ErrNoDrafts.Error(), resp.Error)
	assert.Empty(t, filler.gotPlat)
}
