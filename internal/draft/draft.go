package draft

// TextDraft is a single-text draft (X, LinkedIn)
type TextDraft struct {
	Text string `json:"text" yaml:"text"`
}

// RedditDraft is a title/body submission draft
type RedditDraft struct {
	Title string `json:"title" yaml:"title"`
	Body  string `json:"body" yaml:"body"`
}

// DraftSet holds one draft per platform. Once produced by Normalize every
// field is trimmed and within PlatformLimits.
type DraftSet struct {
	Twitter  TextDraft   `json:"twitter" yaml:"twitter"`
	LinkedIn TextDraft   `json:"linkedin" yaml:"linkedin"`
	Reddit   RedditDraft `json:"reddit" yaml:"reddit"`
}

// Fit truncates every field to its platform limit
func (d DraftSet) Fit() DraftSet {
	return DraftSet{
		Twitter:  TextDraft{Text: Truncate(d.Twitter.Text, PlatformLimits.TwitterText)},
		LinkedIn: TextDraft{Text: Truncate(d.LinkedIn.Text, PlatformLimits.LinkedInText)},
		Reddit: RedditDraft{
			Title: Truncate(d.Reddit.Title, PlatformLimits.RedditTitle),
			Body:  Truncate(d.Reddit.Body, PlatformLimits.RedditBody),
		},
	}
}

// Replace returns a copy of d with one platform's fields taken from other.
// Used when a single platform is refined.
func (d DraftSet) Replace(p Platform, other DraftSet) DraftSet {
	switch p {
	case PlatformTwitter:
		d.Twitter = other.Twitter
	case PlatformLinkedIn:
		d.LinkedIn = other.LinkedIn
	case PlatformReddit:
		d.Reddit = other.Reddit
	}
	return Normalize(d)
}

// IsEmpty reports whether no platform has any content
func (d DraftSet) IsEmpty() bool {
	return d.Twitter.Text == "" && d.LinkedIn.Text == "" && d.Reddit.Title == "" && d.Reddit.Body == ""
}

// Payload is the composer input for one platform
type Payload struct {
	Text  string `json:"text,omitempty"`
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
}

// PayloadFor extracts the composer payload for p
func (d DraftSet) PayloadFor(p Platform) Payload {
	switch p {
	case PlatformTwitter:
		return Payload{Text: d.Twitter.Text}
	case PlatformLinkedIn:
		return Payload{Text: d.LinkedIn.Text}
	case PlatformReddit:
		return Payload{Title: d.Reddit.Title, Body: d.Reddit.Body}
	default:
		return Payload{}
	}
}

// FromPayload builds a set holding payload in p's fields
func FromPayload(p Platform, payload Payload) DraftSet {
	var d DraftSet
	switch p {
	case PlatformTwitter:
		d.Twitter.Text = payload.Text
	case PlatformLinkedIn:
		d.LinkedIn.Text = payload.Text
	case PlatformReddit:
		d.Reddit = RedditDraft{Title: payload.Title, Body: payload.Body}
	}
	return d
}

// Combined joins all non-empty fields, used as input for suggestions
func (d DraftSet) Combined() string {
	out := ""
	for _, s := range []string{d.Twitter.Text, d.LinkedIn.Text, d.Reddit.Title, d.Reddit.Body} {
		if s == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += s
	}
	return out
}
