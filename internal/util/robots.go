package util

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	gocache "github.com/patrickmn/go-cache"
	"github.com/temoto/robotstxt"
)

// robotsTTL is how long a parsed robots.txt is reused for its origin
const robotsTTL = 12 * time.Hour

// RobotsChecker consults robots.txt before research sources are queried
type RobotsChecker struct {
	client *resty.Client
	agent  string
	files  *gocache.Cache
}

// NewRobotsChecker creates a checker. Groups are matched against the product
// token of userAgent; the full string is sent as the request User-Agent.
func NewRobotsChecker(userAgent string, timeout time.Duration) *RobotsChecker {
	return &RobotsChecker{
		client: resty.New().
			SetTimeout(timeout).
			SetHeader("User-Agent", userAgent),
		agent: NormalizeUserAgent(userAgent),
		files: gocache.New(robotsTTL, time.Hour),
	}
}

// CanFetch reports whether rawURL may be fetched and the crawl delay of the
// matching group. An unreachable robots.txt allows everything.
func (r *RobotsChecker) CanFetch(ctx context.Context, rawURL string) (bool, time.Duration, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false, 0, fmt.Errorf("parse URL: %w", err)
	}

	data, err := r.rules(ctx, u.Scheme+"://"+u.Host)
	if err != nil {
		return true, 0, nil
	}

	var delay time.Duration
	if group := data.FindGroup(r.agent); group != nil {
		delay = group.CrawlDelay
	}
	return data.TestAgent(u.RequestURI(), r.agent), delay, nil
}

// rules returns the parsed robots.txt of origin, fetching it on first use
func (r *RobotsChecker) rules(ctx context.Context, origin string) (*robotstxt.RobotsData, error) {
	if cached, ok := r.files.Get(origin); ok {
		return cached.(*robotstxt.RobotsData), nil
	}

	resp, err := r.client.R().SetContext(ctx).Get(origin + "/robots.txt")
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}

	// 4xx allows everything, 5xx disallows everything
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode(), resp.Body())
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	r.files.SetDefault(origin, data)
	return data, nil
}

// NormalizeUserAgent returns the product token of ua ("PostCompass/0.1 (+url)"
// becomes "PostCompass")
func NormalizeUserAgent(ua string) string {
	fields := strings.Fields(ua)
	if len(fields) == 0 {
		return ua
	}
	product, _, _ := strings.Cut(fields[0], "/")
	return product
}
