package draft

import "unicode"

// Ellipsis is appended to truncated text and counts as one character
const Ellipsis = '…'

// Truncate trims text to at most limit characters (runes), preferring to cut
// at the last whitespace before the boundary. The ellipsis counts toward
// limit.
func Truncate(text string, limit int) string {
	if text == "" || limit <= 0 {
		return ""
	}

	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}

	prefix := runes[:limit-1]
	cut := len(prefix)
	for i := len(prefix) - 1; i > 0; i-- {
		if unicode.IsSpace(prefix[i]) {
			cut = i
			break
		}
	}

	return string(prefix[:cut]) + string(Ellipsis)
}
