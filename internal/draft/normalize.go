package draft

import (
	"encoding/json"
	"strings"
	"unicode"
	"unicode/utf8"
)

// titleFallbackRunes is the title length used when text has no sentence or
// line delimiter
const titleFallbackRunes = 120

// Normalize coerces generator output of any shape into a DraftSet.
//
// Structured input (a DraftSet, a decoded JSON object, or a string holding a
// JSON object) is read field by field. Anything else is treated as one shared
// block of text replicated to every platform. Normalize never panics and its
// output is always fitted to PlatformLimits.
func Normalize(raw any) DraftSet {
	switch v := raw.(type) {
	case nil:
		return DraftSet{}
	case DraftSet:
		return normalizeObject(draftSetObject(v))
	case *DraftSet:
		if v == nil {
			return DraftSet{}
		}
		return normalizeObject(draftSetObject(*v))
	case map[string]any:
		return normalizeDecoded(v, "")
	case string:
		return normalizeString(v)
	case []byte:
		return normalizeString(string(v))
	case json.RawMessage:
		return normalizeString(string(v))
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return DraftSet{}
		}
		var decoded any
		if err := json.Unmarshal(data, &decoded); err != nil {
			return DraftSet{}
		}
		return normalizeDecoded(decoded, "")
	}
}

// NormalizeShared builds a DraftSet from one undifferentiated block of text
func NormalizeShared(text string) DraftSet {
	text = strings.TrimSpace(text)
	if text == "" {
		return DraftSet{}
	}
	title, body := SplitTitleBody(text)
	return DraftSet{
		Twitter:  TextDraft{Text: Truncate(text, PlatformLimits.TwitterText)},
		LinkedIn: TextDraft{Text: Truncate(text, PlatformLimits.LinkedInText)},
		Reddit:   RedditDraft{Title: title, Body: body},
	}
}

// SplitTitleBody derives a Reddit title and body from a block of text. The
// title is the first sentence or line; without any delimiter it is the first
// 120 characters. Both parts are fitted to Reddit limits.
func SplitTitleBody(text string) (title, body string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ""
	}

	if end, next, ok := firstSentence(text); ok {
		title = text[:end]
		body = text[next:]
	} else {
		runes := []rune(text)
		if len(runes) <= titleFallbackRunes {
			title = text
		} else {
			title = string(runes[:titleFallbackRunes])
			body = string(runes[titleFallbackRunes:])
		}
	}

	title = Truncate(strings.TrimSpace(title), PlatformLimits.RedditTitle)
	body = Truncate(strings.TrimSpace(body), PlatformLimits.RedditBody)
	return title, body
}

// firstSentence finds the end of the first line or sentence. end is the
// exclusive end of the title, next is where the remainder starts.
func firstSentence(text string) (end, next int, ok bool) {
	for i, r := range text {
		switch r {
		case '\n', '\r':
			return i, i + 1, true
		case '.', '!', '?':
			after := i + utf8.RuneLen(r)
			if after >= len(text) {
				return after, after, true
			}
			nr, _ := utf8.DecodeRuneInString(text[after:])
			if unicode.IsSpace(nr) {
				return after, after, true
			}
		}
	}
	return 0, 0, false
}

func normalizeString(s string) DraftSet {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return DraftSet{}
	}

	var decoded any
	if err := json.Unmarshal([]byte(StripCodeFence(trimmed)), &decoded); err != nil {
		return NormalizeShared(trimmed)
	}
	return normalizeDecoded(decoded, trimmed)
}

// normalizeDecoded handles a value produced by json.Unmarshal. Any object is
// structured data, so one without platform keys yields empty fields. fallback
// is the original text, used for arrays and scalars.
func normalizeDecoded(decoded any, fallback string) DraftSet {
	switch v := decoded.(type) {
	case map[string]any:
		return normalizeObject(v)
	case string:
		return NormalizeShared(v)
	default:
		return NormalizeShared(fallback)
	}
}

func normalizeObject(obj map[string]any) DraftSet {
	set := DraftSet{
		Twitter:  TextDraft{Text: strings.TrimSpace(textField(obj["twitter"]))},
		LinkedIn: TextDraft{Text: strings.TrimSpace(textField(obj["linkedin"]))},
	}

	switch reddit := obj["reddit"].(type) {
	case map[string]any:
		title, hasTitle := reddit["title"].(string)
		body, hasBody := reddit["body"].(string)
		if hasTitle || hasBody {
			set.Reddit = RedditDraft{Title: strings.TrimSpace(title), Body: strings.TrimSpace(body)}
		} else if text, ok := reddit["text"].(string); ok {
			set.Reddit.Title, set.Reddit.Body = SplitTitleBody(text)
		}
	case string:
		set.Reddit.Title, set.Reddit.Body = SplitTitleBody(reddit)
	}

	return set.Fit()
}

// textField reads {"text": "..."} or a bare string
func textField(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		if s, ok := t["text"].(string); ok {
			return s
		}
	}
	return ""
}

func draftSetObject(d DraftSet) map[string]any {
	return map[string]any{
		"twitter":  map[string]any{"text": d.Twitter.Text},
		"linkedin": map[string]any{"text": d.LinkedIn.Text},
		"reddit":   map[string]any{"title": d.Reddit.Title, "body": d.Reddit.Body},
	}
}

// StripCodeFence removes a surrounding ```json ... ``` block, including one
// written on a single line
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimLeftFunc(s, isFenceTagRune)
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}

// isFenceTagRune matches the characters of a language tag such as json or
// c++ that may follow an opening fence
func isFenceTagRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("+-_.", r)
}
