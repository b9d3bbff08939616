package util

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRobotsChecker_CanFetch(t *testing.T) {
	var fetches atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fetches.Add(1)
		_, _ = w.Write([]byte("User-agent: PostCompass\nDisallow: /private\nCrawl-delay: 2\n\nUser-agent: *\nDisallow: /\n"))
	}))
	defer server.Close()

	checker := NewRobotsChecker("PostCompass/0.1 (+https://github.com/ppiankov/postcompass)", 5*time.Second)
	ctx := context.Background()

	allowed, delay, err := checker.CanFetch(ctx, server.URL+"/search.json")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 2*time.Second, delay)

	allowed, _, err = checker.CanFetch(ctx, server.URL+"/private/page?x=1")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, int32(1), fetches.Load(), "robots.txt is fetched once per origin")
}

func TestRobotsChecker_OtherAgentsUseWildcardGroup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("User-agent: PostCompass\nAllow: /\n\nUser-agent: *\nDisallow: /\n"))
	}))
	defer server.Close()

	checker := NewRobotsChecker("OtherBot/1.0", 5*time.Second)
	allowed, _, err := checker.CanFetch(context.Background(), server.URL+"/search.json")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestRobotsChecker_StatusHandling(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		allowed bool
	}{
		{"missing robots allows", http.StatusNotFound, true},
		{"server error disallows", http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			checker := NewRobotsChecker("PostCompass/0.1", 5*time.Second)
			allowed, _, err := checker.CanFetch(context.Background(), server.URL+"/search")
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, allowed)
		})
	}
}

func TestRobotsChecker_UnreachableAllows(t *testing.T) {
	checker := NewRobotsChecker("PostCompass/0.1", 200*time.Millisecond)

	allowed, _, err := checker.CanFetch(context.Background(), "http://127.0.0.1:1/search")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestNormalizeUserAgent(t *testing.T) {
	assert.Equal(t, "PostCompass", NormalizeUserAgent("PostCompass/0.1 (+https://example.com)"))
	assert.Equal(t, "", NormalizeUserAgent(""))
}
