package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/ppiankov/postcompass/internal/util"
	"github.com/ppiankov/postcompass/internal/worker"
	"github.com/sirupsen/logrus"
)

// Research source names
const (
	SourceHackerNews = "HackerNews"
	SourceReddit     = "Reddit"
)

const (
	defaultHNSearchURL     = "https://hn.algolia.com/api/v1/search"
	defaultRedditSearchURL = "https://www.reddit.com/search.json"

	// unauthenticated search.json tolerates about one request per second
	redditHost  = "www.reddit.com"
	redditRate  = 1.0
	redditBurst = 2
)

// Item is one trending discussion
type Item struct {
	Source    string    `json:"source"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Score     float64   `json:"score"`
	CreatedAt time.Time `json:"createdAt"`
}

// rank combines popularity with recency
func (i Item) rank() float64 {
	return i.Score + float64(i.CreatedAt.UnixMilli())/1e11
}

// ResearchOptions bound the search window and result size
type ResearchOptions struct {
	Days         int `json:"days,omitempty"`
	MaxPerSource int `json:"maxPerSource,omitempty"`
}

func (o ResearchOptions) withDefaults() ResearchOptions {
	if o.Days <= 0 {
		o.Days = 7
	}
	if o.MaxPerSource <= 0 {
		o.MaxPerSource = 6
	}
	return o
}

// Researcher finds recent discussions about a topic on Hacker News and Reddit
type Researcher struct {
	client    *resty.Client
	hnURL     string
	redditURL string
	limiter   *worker.Limiter
	robots    *util.RobotsChecker
	now       func() time.Time
	log       logrus.FieldLogger
}

// NewResearcher creates a researcher. limiter may be nil.
func NewResearcher(userAgent string, timeout time.Duration, limiter *worker.Limiter) *Researcher {
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	if limiter != nil {
		limiter.SetHostRate(redditHost, redditRate, redditBurst)
	}
	return &Researcher{
		client: resty.New().
			SetTimeout(timeout).
			SetHeader("User-Agent", userAgent).
			SetHeader("Accept", "application/json"),
		hnURL:     defaultHNSearchURL,
		redditURL: defaultRedditSearchURL,
		limiter:   limiter,
		now:       time.Now,
		log:       logrus.StandardLogger(),
	}
}

// WithRobots enables robots.txt checks before each source is queried
func (r *Researcher) WithRobots(robots *util.RobotsChecker) *Researcher {
	r.robots = robots
	return r
}

// WithEndpoints overrides the search endpoints
func (r *Researcher) WithEndpoints(hnURL, redditURL string) *Researcher {
	r.hnURL = hnURL
	r.redditURL = redditURL
	return r
}

type sourceJob struct {
	name  string
	fetch func(ctx context.Context) ([]Item, error)
}

type sourceResult struct {
	name  string
	items []Item
	err   error
}

func (r *sourceResult) GetError() error {
	return r.err
}

func (j *sourceJob) Execute(ctx context.Context) worker.Result {
	items, err := j.fetch(ctx)
	return &sourceResult{name: j.name, items: items, err: err}
}

// Research queries both sources concurrently. A failing source is skipped;
// the result is deduplicated by URL without query string, ranked, and capped
// at twice MaxPerSource.
func (r *Researcher) Research(ctx context.Context, topic string, opts ResearchOptions) ([]Item, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return []Item{}, nil
	}
	opts = opts.withDefaults()

	jobs := []worker.Job{
		&sourceJob{name: SourceHackerNews, fetch: func(ctx context.Context) ([]Item, error) { return r.fetchHackerNews(ctx, topic, opts) }},
		&sourceJob{name: SourceReddit, fetch: func(ctx context.Context) ([]Item, error) { return r.fetchReddit(ctx, topic, opts) }},
	}

	// results come back in source order so deduplication is deterministic
	results := worker.NewPool(len(jobs)).Run(ctx, jobs)

	var items []Item
	for _, res := range results {
		sr := res.(*sourceResult)
		if sr.err != nil {
			r.log.WithError(sr.err).WithField("source", sr.name).Warn("research source failed")
			continue
		}
		items = append(items, sr.items...)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return Rank(items, opts.MaxPerSource*2), nil
}

// Rank deduplicates items by URL without query string and sorts them by
// score plus a recency bonus
func Rank(items []Item, limit int) []Item {
	seen := make(map[string]bool)
	unique := make([]Item, 0, len(items))
	for _, it := range items {
		key := it.URL
		if i := strings.IndexByte(key, '?'); i >= 0 {
			key = key[:i]
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, it)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].rank() > unique[j].rank()
	})

	if limit > 0 && len(unique) > limit {
		unique = unique[:limit]
	}
	return unique
}

func (r *Researcher) before(ctx context.Context, rawURL string) error {
	var delay time.Duration
	if r.robots != nil {
		allowed, crawlDelay, err := r.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return err
		}
		if !allowed {
			return fmt.Errorf("disallowed by robots.txt: %s", rawURL)
		}
		delay = crawlDelay
	}
	if r.limiter != nil {
		return r.limiter.WaitWithDelay(ctx, rawURL, delay)
	}
	return nil
}

type hnSearchResponse struct {
	Hits []struct {
		ObjectID  string `json:"objectID"`
		Title     string `json:"title"`
		URL       string `json:"url"`
		Points    int    `json:"points"`
		CreatedAt string `json:"created_at"`
	} `json:"hits"`
}

func (r *Researcher) fetchHackerNews(ctx context.Context, topic string, opts ResearchOptions) ([]Item, error) {
	if err := r.before(ctx, r.hnURL); err != nil {
		return nil, err
	}

	since := r.now().Add(-time.Duration(opts.Days) * 24 * time.Hour).Unix()

	var body hnSearchResponse
	resp, err := r.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"query":          topic,
			"tags":           "story",
			"hitsPerPage":    strconv.Itoa(opts.MaxPerSource),
			"numericFilters": fmt.Sprintf("created_at_i>%d", since),
		}).
		Get(r.hnURL)
	if err != nil {
		return nil, fmt.Errorf("hacker news search: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("hacker news search failed: %d", resp.StatusCode())
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("decode hacker news response: %w", err)
	}

	items := make([]Item, 0, len(body.Hits))
	for _, h := range body.Hits {
		link := h.URL
		if link == "" {
			link = "https://news.ycombinator.com/item?id=" + h.ObjectID
		}
		created, err := time.Parse(time.RFC3339, h.CreatedAt)
		if err != nil {
			created = r.now()
		}
		items = append(items, Item{
			Source:    SourceHackerNews,
			Title:     h.Title,
			URL:       normalizeURL(link),
			Score:     float64(h.Points),
			CreatedAt: created,
		})
	}
	return items, nil
}

type redditSearchResponse struct {
	Data struct {
		Children []struct {
			Data struct {
				Title      string  `json:"title"`
				URL        string  `json:"url"`
				Permalink  string  `json:"permalink"`
				Ups        float64 `json:"ups"`
				Score      float64 `json:"score"`
				CreatedUTC float64 `json:"created_utc"`
				IsSelf     bool    `json:"is_self"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (r *Researcher) fetchReddit(ctx context.Context, topic string, opts ResearchOptions) ([]Item, error) {
	if err := r.before(ctx, r.redditURL); err != nil {
		return nil, err
	}

	limit := opts.MaxPerSource
	if limit > 10 {
		limit = 10
	}

	var body redditSearchResponse
	resp, err := r.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":     topic,
			"sort":  "hot",
			"t":     redditWindow(opts.Days),
			"limit": strconv.Itoa(limit),
		}).
		Get(r.redditURL)
	if err != nil {
		return nil, fmt.Errorf("reddit search: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("reddit search failed: %d", resp.StatusCode())
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("decode reddit response: %w", err)
	}

	items := make([]Item, 0, len(body.Data.Children))
	for _, c := range body.Data.Children {
		d := c.Data
		if d.IsSelf && d.URL == "" {
			continue
		}
		link := d.URL
		if link == "" {
			link = "https://www.reddit.com" + d.Permalink
		}
		score := d.Ups
		if score == 0 {
			score = d.Score
		}
		items = append(items, Item{
			Source:    SourceReddit,
			Title:     d.Title,
			URL:       normalizeURL(link),
			Score:     score,
			CreatedAt: time.UnixMilli(int64(d.CreatedUTC * 1000)),
		})
	}
	return items, nil
}

// redditWindow maps a day count onto reddit's fixed search windows
func redditWindow(days int) string {
	switch {
	case days <= 1:
		return "day"
	case days <= 7:
		return "week"
	case days <= 31:
		return "month"
	default:
		return "year"
	}
}

func normalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.String()
}
