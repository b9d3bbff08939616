package worker

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const defaultBurst = 5

// Limiter throttles outbound calls with one token bucket per host. Chat
// completions and the text fallback on the same gateway share a bucket.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
}

// NewLimiter creates a limiter allowing requestsPerSecond per host. A burst
// below 1 becomes 5.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst < 1 {
		burst = defaultBurst
	}
	return &Limiter{
		buckets: make(map[string]*rate.Limiter),
		limit:   rate.Limit(requestsPerSecond),
		burst:   burst,
	}
}

// Wait blocks until the host of rawURL has a token or ctx ends
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	bucket, err := l.bucketFor(rawURL)
	if err != nil {
		return err
	}
	return bucket.Wait(ctx)
}

// WaitWithDelay is Wait followed by an extra pause, such as a robots.txt
// crawl delay
func (l *Limiter) WaitWithDelay(ctx context.Context, rawURL string, delay time.Duration) error {
	if err := l.Wait(ctx, rawURL); err != nil {
		return err
	}
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// SetHostRate overrides the rate for one host. A burst below 1 keeps the
// limiter's default burst.
func (l *Limiter) SetHostRate(host string, requestsPerSecond float64, burst int) {
	if burst < 1 {
		burst = l.burst
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.buckets[strings.ToLower(host)] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

func (l *Limiter) bucketFor(rawURL string) (*rate.Limiter, error) {
	host, err := hostKey(rawURL)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	bucket, ok := l.buckets[host]
	if !ok {
		bucket = rate.NewLimiter(l.limit, l.burst)
		l.buckets[host] = bucket
	}
	return bucket, nil
}

// hostKey returns the lowercased host of rawURL without its port
func hostKey(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("rate limit key: %w", err)
	}
	return strings.ToLower(u.Hostname()), nil
}
