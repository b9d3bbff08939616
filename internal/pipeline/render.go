package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/postcompass/internal/draft"
)

// RenderJSON writes the draft set as indented JSON
func RenderJSON(w io.Writer, set draft.DraftSet) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(set); err != nil {
		return fmt.Errorf("encode drafts: %w", err)
	}
	return nil
}

// RenderText writes a human-readable view of the draft set with per-field
// character counts against platform limits
func RenderText(w io.Writer, set draft.DraftSet) error {
	sections := []struct {
		heading string
		label   string
		text    string
		limit   int
	}{
		{draft.PlatformTwitter.DisplayName(), "", set.Twitter.Text, draft.LimitTwitterText},
		{draft.PlatformLinkedIn.DisplayName(), "", set.LinkedIn.Text, draft.LimitLinkedInText},
		{draft.PlatformReddit.DisplayName(), "Title", set.Reddit.Title, draft.LimitRedditTitle},
		{"", "Body", set.Reddit.Body, draft.LimitRedditBody},
	}

	var b strings.Builder
	for _, s := range sections {
		if s.heading != "" {
			fmt.Fprintf(&b, "== %s ==\n", s.heading)
		}
		if s.label != "" {
			fmt.Fprintf(&b, "%s ", s.label)
		}
		fmt.Fprintf(&b, "(%d/%d)\n", utf8.RuneCountInString(s.text), s.limit)
		if s.text == "" {
			b.WriteString("(empty)\n\n")
			continue
		}
		b.WriteString(s.text)
		b.WriteString("\n\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
