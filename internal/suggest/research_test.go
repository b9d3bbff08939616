package suggest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ppiankov/postcompass/internal/util"
	"github.com/ppiankov/postcompass/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hnBody = `{"hits":[
	{"objectID":"1","title":"Go 1.25 released","url":"https://go.dev/blog/go1.25?utm=hn","points":300,"created_at":"2025-08-12T10:00:00.000Z"},
	{"objectID":"2","title":"Ask HN: Go tooling","url":"","points":40,"created_at":"2025-08-13T10:00:00Z"}
]}`

const redditBody = `{"data":{"children":[
	{"data":{"title":"Go 1.25 is out","url":"https://go.dev/blog/go1.25","ups":120,"created_utc":1755000000}},
	{"data":{"title":"Self post","url":"","permalink":"/r/golang/comments/abc/","is_self":true,"ups":999,"created_utc":1755000000}},
	{"data":{"title":"Link post","url":"https://example.com/post","score":75,"created_utc":1755100000}}
]}}`

func newTestResearcher(t *testing.T, hn, reddit http.HandlerFunc) *Researcher {
	t.Helper()
	hnServer := httptest.NewServer(hn)
	t.Cleanup(hnServer.Close)
	redditServer := httptest.NewServer(reddit)
	t.Cleanup(redditServer.Close)

	r := NewResearcher("PostCompass/test", 5*time.Second, worker.NewLimiter(100, 10)).
		WithEndpoints(hnServer.URL+"/api/v1/search", redditServer.URL+"/search.json")
	r.now = func() time.Time { return time.Date(2025, 8, 14, 0, 0, 0, 0, time.UTC) }
	return r
}

func jsonHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func TestResearch_MergesAndRanks(t *testing.T) {
	var hnQuery, redditQuery map[string]string
	hn := func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		hnQuery = map[string]string{"query": q.Get("query"), "tags": q.Get("tags"), "hitsPerPage": q.Get("hitsPerPage"), "numericFilters": q.Get("numericFilters")}
		jsonHandler(hnBody)(w, r)
	}
	reddit := func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		redditQuery = map[string]string{"q": q.Get("q"), "sort": q.Get("sort"), "t": q.Get("t"), "limit": q.Get("limit")}
		jsonHandler(redditBody)(w, r)
	}

	items, err := newTestResearcher(t, hn, reddit).Research(context.Background(), "golang 1.25", ResearchOptions{Days: 3, MaxPerSource: 20})
	require.NoError(t, err)

	assert.Equal(t, "golang 1.25", hnQuery["query"])
	assert.Equal(t, "story", hnQuery["tags"])
	assert.Equal(t, "20", hnQuery["hitsPerPage"])
	assert.Equal(t, "created_at_i>1754870400", hnQuery["numericFilters"])
	assert.Equal(t, map[string]string{"q": "golang 1.25", "sort": "hot", "t": "week", "limit": "10"}, redditQuery)

	var urls []string
	for _, it := range items {
		urls = append(urls, it.URL)
	}
	// reddit's copy of the go.dev link is a duplicate once the query is dropped
	assert.Equal(t, []string{
		"https://go.dev/blog/go1.25?utm=hn",
		"https://example.com/post",
		"https://news.ycombinator.com/item?id=2",
	}, urls)
	assert.Equal(t, SourceHackerNews, items[0].Source)
	assert.Equal(t, float64(75), items[1].Score)
}

func TestResearch_SkipsFailedSource(t *testing.T) {
	failing := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTooManyRequests) }

	items, err := newTestResearcher(t, failing, jsonHandler(redditBody)).Research(context.Background(), "go", ResearchOptions{})
	require.NoError(t, err)

	require.Len(t, items, 2)
	for _, it := range items {
		assert.Equal(t, SourceReddit, it.Source)
	}
}

func TestResearch_CapsAtTwiceMaxPerSource(t *testing.T) {
	items, err := newTestResearcher(t, jsonHandler(hnBody), jsonHandler(redditBody)).
		Research(context.Background(), "go", ResearchOptions{MaxPerSource: 1})
	require.NoError(t, err)

	assert.Len(t, items, 2)
}

func TestResearch_RespectsRobots(t *testing.T) {
	robotsDeny := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /\n"))
			return
		}
		jsonHandler(redditBody)(w, r)
	}

	r := newTestResearcher(t, jsonHandler(hnBody), robotsDeny).
		WithRobots(util.NewRobotsChecker("PostCompass/test", 5*time.Second))

	items, err := r.Research(context.Background(), "go", ResearchOptions{})
	require.NoError(t, err)

	for _, it := range items {
		assert.Equal(t, SourceHackerNews, it.Source)
	}
}

func TestResearch_EmptyTopic(t *testing.T) {
	items, err := NewResearcher("ua", 0, nil).Research(context.Background(), "  ", ResearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRank(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	items := []Item{
		{URL: "https://a.example/x?ref=1", Score: 10, CreatedAt: now},
		{URL: "https://a.example/x", Score: 50, CreatedAt: now},
		{URL: "https://b.example", Score: 10, CreatedAt: time.UnixMilli(0)},
		{URL: "https://c.example", Score: 9, CreatedAt: now},
	}

	got := Rank(items, 0)

	require.Len(t, got, 3)
	assert.Equal(t, "https://a.example/x?ref=1", got[0].URL, "first occurrence wins the dedupe")
	// recency adds 17 to c and nothing to b
	assert.Equal(t, "https://c.example", got[1].URL)
	assert.Equal(t, "https://b.example", got[2].URL)
}

func TestRedditWindow(t *testing.T) {
	assert.Equal(t, "day", redditWindow(1))
	assert.Equal(t, "week", redditWindow(7))
	assert.Equal(t, "month", redditWindow(30))
	assert.Equal(t, "year", redditWindow(90))
}
