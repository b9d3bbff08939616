package fill

import (
	"net/url"
	"strings"

	"github.com/ppiankov/postcompass/internal/draft"
	"golang.org/x/net/publicsuffix"
)

// Target is where a platform's composer lives
type Target struct {
	Platform draft.Platform
	URL      string

	// Hosts are registrable domains that count as already on the platform
	Hosts []string
}

// Targets per platform
var Targets = map[draft.Platform]Target{
	draft.PlatformTwitter: {
		Platform: draft.PlatformTwitter,
		URL:      "https://x.com/compose/tweet",
		Hosts:    []string{"x.com", "twitter.com"},
	},
	draft.PlatformLinkedIn: {
		Platform: draft.PlatformLinkedIn,
		URL:      "https://www.linkedin.com/feed/",
		Hosts:    []string{"linkedin.com"},
	},
	draft.PlatformReddit: {
		Platform: draft.PlatformReddit,
		URL:      "https://www.reddit.com/submit",
		Hosts:    []string{"reddit.com"},
	},
}

// Matches reports whether rawURL is on one of the target's hosts
func (t Target) Matches(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return false
	}
	host := strings.ToLower(strings.TrimSuffix(u.Hostname(), "."))

	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		registrable = host
	}

	for _, h := range t.Hosts {
		if registrable == h || host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}
