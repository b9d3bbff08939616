package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/postcompass/internal/cache"
	"github.com/ppiankov/postcompass/internal/draft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore() cache.Cache {
	return cache.NewMemoryCache(cache.NoExpiration, time.Minute)
}

func TestHistory_AddNewestFirst(t *testing.T) {
	h := New(newStore())

	first, err := h.Add(Entry{Raw: "one", Model: "m"})
	require.NoError(t, err)
	_, err = h.Add(Entry{Raw: "two", Model: "m"})
	require.NoError(t, err)

	list, err := h.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "two", list[0].Raw)
	assert.Equal(t, "one", list[1].Raw)

	_, err = uuid.Parse(first.ID)
	assert.NoError(t, err)
	assert.False(t, first.Timestamp.IsZero())
}

func TestHistory_CappedAtMax(t *testing.T) {
	h := New(newStore())
	for i := 0; i < MaxEntries+5; i++ {
		_, err := h.Add(Entry{Raw: fmt.Sprintf("thought %d", i)})
		require.NoError(t, err)
	}

	list, err := h.List()
	require.NoError(t, err)
	assert.Len(t, list, MaxEntries)
	assert.Equal(t, fmt.Sprintf("thought %d", MaxEntries+4), list[0].Raw)
	assert.Equal(t, "thought 5", list[MaxEntries-1].Raw)
}

func TestHistory_GetAndClear(t *testing.T) {
	h := New(newStore())
	e, err := h.Add(Entry{ID: "fixed", Raw: "r", Drafts: draft.DraftSet{Twitter: draft.TextDraft{Text: "t"}}})
	require.NoError(t, err)
	assert.Equal(t, "fixed", e.ID)

	got, err := h.Get("fixed")
	require.NoError(t, err)
	assert.Equal(t, "t", got.Drafts.Twitter.Text)

	require.NoError(t, h.Clear())
	list, err := h.List()
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = h.Get("fixed")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHistory_CorruptDataIsEmpty(t *testing.T) {
	store := newStore()
	require.NoError(t, store.Set(KeyHistory, []byte("{not a list"), cache.NoExpiration))

	list, err := New(store).List()
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestHistory_PersistsOnDisk(t *testing.T) {
	store := cache.NewDiskCache(t.TempDir(), cache.NoExpiration)
	_, err := New(store).Add(Entry{Raw: "kept"})
	require.NoError(t, err)

	list, err := New(store).List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "kept", list[0].Raw)
}

func TestPreferences_ResolveModel(t *testing.T) {
	tests := []struct {
		name      string
		stored    string
		available []string
		want      string
	}{
		{"stored still available", "openai", []string{"gpt-5-nano", "openai"}, "openai"},
		{"stored gone", "old", []string{"gpt-5-nano", "openai"}, "gpt-5-nano"},
		{"nothing stored", "", []string{"mistral"}, "mistral"},
		{"nothing available", "kept", nil, "kept"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPreferences(newStore())
			if tt.stored != "" {
				require.NoError(t, p.SetModel(tt.stored))
			}

			got, err := p.ResolveModel(tt.available)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, p.Model())
		})
	}
}

func TestSession_PushUndo(t *testing.T) {
	s := NewSession("gpt-5-nano")
	s.Start("raw", draft.DraftSet{
		Twitter:  draft.TextDraft{Text: "v1"},
		LinkedIn: draft.TextDraft{Text: "li"},
	})

	s.Push(draft.PlatformTwitter, draft.DraftSet{Twitter: draft.TextDraft{Text: "v2"}})
	cur := s.Push(draft.PlatformTwitter, draft.DraftSet{Twitter: draft.TextDraft{Text: "v3"}})
	assert.Equal(t, "v3", cur.Twitter.Text)
	assert.Equal(t, "li", cur.LinkedIn.Text)
	assert.Equal(t, 2, s.Depth(draft.PlatformTwitter))
	assert.Equal(t, 0, s.Depth(draft.PlatformLinkedIn))

	got, ok := s.Undo(draft.PlatformTwitter)
	require.True(t, ok)
	assert.Equal(t, "v2", got.Twitter.Text)

	got, ok = s.Undo(draft.PlatformTwitter)
	require.True(t, ok)
	assert.Equal(t, "v1", got.Twitter.Text)

	_, ok = s.Undo(draft.PlatformTwitter)
	assert.False(t, ok)

	_, ok = s.Undo(draft.PlatformReddit)
	assert.False(t, ok)
}

func TestSession_UndoIsPerPlatform(t *testing.T) {
	s := NewSession("m")
	s.Start("raw", draft.DraftSet{
		Twitter: draft.TextDraft{Text: "t1"},
		Reddit:  draft.RedditDraft{Title: "r1", Body: "b1"},
	})

	s.Push(draft.PlatformReddit, draft.DraftSet{Reddit: draft.RedditDraft{Title: "r2", Body: "b2"}})
	s.Push(draft.PlatformTwitter, draft.DraftSet{Twitter: draft.TextDraft{Text: "t2"}})

	got, ok := s.Undo(draft.PlatformReddit)
	require.True(t, ok)
	assert.Equal(t, "r1", got.Reddit.Title)
	assert.Equal(t, "t2", got.Twitter.Text)
}

func TestSession_EntryAndRestore(t *testing.T) {
	s := NewSession("m")
	s.Start("raw", draft.DraftSet{Twitter: draft.TextDraft{Text: "a"}})
	s.Push(draft.PlatformTwitter, draft.DraftSet{Twitter: draft.TextDraft{Text: "b"}})

	e := s.Entry()
	assert.Equal(t, "raw", e.Raw)
	assert.Equal(t, "b", e.Drafts.Twitter.Text)
	require.Len(t, e.Versions, 1)
	assert.Equal(t, "a", e.Versions[0].Twitter.Text)

	other := NewSession("x")
	other.Restore(e)
	assert.Equal(t, "m", other.Model())
	assert.Equal(t, "raw", other.Raw())
	assert.Equal(t, 0, other.Depth(draft.PlatformTwitter))
}
