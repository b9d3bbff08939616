package draft

import (
	"errors"
	"fmt"
	"strings"
)

// Platform identifies one of the supported social networks
type Platform string

const (
	PlatformTwitter  Platform = "twitter"
	PlatformLinkedIn Platform = "linkedin"
	PlatformReddit   Platform = "reddit"
)

// ErrUnknownPlatform is returned when a platform name cannot be parsed
var ErrUnknownPlatform = errors.New("unknown platform")

// Platforms lists every supported platform in display order
func Platforms() []Platform {
	return []Platform{PlatformTwitter, PlatformLinkedIn, PlatformReddit}
}

// ParsePlatform accepts the canonical names plus common aliases ("x", "li")
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "twitter", "x", "tweet":
		return PlatformTwitter, nil
	case "linkedin", "li":
		return PlatformLinkedIn, nil
	case "reddit":
		return PlatformReddit, nil
	default:
		return "", fmt.Errorf("%w: %q (supported: twitter, linkedin, reddit)", ErrUnknownPlatform, s)
	}
}

// DisplayName returns the user-facing network name
func (p Platform) DisplayName() string {
	switch p {
	case PlatformTwitter:
		return "X"
	case PlatformLinkedIn:
		return "LinkedIn"
	case PlatformReddit:
		return "Reddit"
	default:
		return string(p)
	}
}

// Character limits per platform field
const (
	LimitTwitterText  = 256
	LimitLinkedInText = 3000
	LimitRedditTitle  = 300
	LimitRedditBody   = 40000
)

// Limits is the static field -> max length mapping
type Limits struct {
	TwitterText  int `json:"twitter_text" yaml:"twitter_text"`
	LinkedInText int `json:"linkedin_text" yaml:"linkedin_text"`
	RedditTitle  int `json:"reddit_title" yaml:"reddit_title"`
	RedditBody   int `json:"reddit_body" yaml:"reddit_body"`
}

// PlatformLimits are the limits every DraftSet is fitted to
var PlatformLimits = Limits{
	TwitterText:  LimitTwitterText,
	LinkedInText: LimitLinkedInText,
	RedditTitle:  LimitRedditTitle,
	RedditBody:   LimitRedditBody,
}
