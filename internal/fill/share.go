package fill

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/ppiankov/postcompass/internal/draft"
)

// ErrNothingToShare is returned when the platform's draft is empty
var ErrNothingToShare = errors.New("nothing to share")

// Share-intent endpoints. Each takes the draft in its query string and opens
// the platform's own prefilled composer.
const (
	twitterIntentURL  = "https://x.com/intent/tweet?text="
	linkedInIntentURL = "https://www.linkedin.com/shareArticle?mini=true&summary="
	redditIntentURL   = "https://www.reddit.com/submit?selftext=true"
)

// ShareURL returns the share-intent address for platform prefilled with its
// draft from d
func ShareURL(platform draft.Platform, d draft.DraftSet) (string, error) {
	switch platform {
	case draft.PlatformTwitter:
		text := strings.TrimSpace(d.Twitter.Text)
		if text == "" {
			return "", fmt.Errorf("%s: %w", platform, ErrNothingToShare)
		}
		return twitterIntentURL + url.QueryEscape(text), nil

	case draft.PlatformLinkedIn:
		text := strings.TrimSpace(d.LinkedIn.Text)
		if text == "" {
			return "", fmt.Errorf("%s: %w", platform, ErrNothingToShare)
		}
		return linkedInIntentURL + url.QueryEscape(text), nil

	case draft.PlatformReddit:
		title := strings.TrimSpace(d.Reddit.Title)
		body := strings.TrimSpace(d.Reddit.Body)
		if title == "" && body == "" {
			return "", fmt.Errorf("%s: %w", platform, ErrNothingToShare)
		}
		return redditIntentURL + "&title=" + url.QueryEscape(title) + "&text=" + url.QueryEscape(body), nil

	default:
		return "", fmt.Errorf("%w: %q", draft.ErrUnknownPlatform, platform)
	}
}
