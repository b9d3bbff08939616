package pipeline

import (
	"fmt"
	"strings"

	"github.com/ppiankov/postcompass/internal/draft"
)

// TextPromptSuffix is appended to the plain-text fallback prompt
const TextPromptSuffix = "Return only text."

// SystemPrompt returns the platform guidance. tone, when set, is added as an
// explicit voice instruction.
func SystemPrompt(tone string) string {
	var b strings.Builder
	b.WriteString("You are an expert social media writing assistant for X (Twitter), LinkedIn, and Reddit. ")
	b.WriteString("You know how each platform ranks and spreads content and shape every draft accordingly.\n\n")

	b.WriteString("General principles:\n")
	b.WriteString("- Preserve the original meaning and factual claims.\n")
	b.WriteString("- Be engaging and natural. No clickbait, no invented facts.\n")
	b.WriteString("- Use plain language and strong hooks.\n")
	if tone = strings.TrimSpace(tone); tone != "" {
		fmt.Fprintf(&b, "- Write in a %s tone on every platform.\n", tone)
	}

	b.WriteString("\nPlatform guidance:\n")
	fmt.Fprintf(&b, "X (Twitter):\n- Max length %d characters. Lead with a strong hook in the first line.\n", draft.LimitTwitterText)
	b.WriteString("- Short sentences and line breaks for scannability.\n")
	b.WriteString("- 0-2 highly relevant hashtags. Avoid excessive emojis and links up front.\n")
	b.WriteString("- Invite engagement with a concise question or call to action if it fits.\n\n")

	fmt.Fprintf(&b, "LinkedIn:\n- Max length %d characters. Professional, value-led tone with concrete insights.\n", draft.LimitLinkedInText)
	b.WriteString("- Open with a punchy 1-2 line hook, then 2-6 short lines or paragraphs, bullets optional.\n")
	b.WriteString("- 1-5 relevant hashtags at the end. No casual slang or emoji walls.\n")
	b.WriteString("- Encourage comments with a thoughtful question.\n\n")

	fmt.Fprintf(&b, "Reddit:\n- Title max %d characters, body max %d characters. Community-first, conversational, specific.\n",
		draft.LimitRedditTitle, draft.LimitRedditBody)
	b.WriteString("- The title states the point plainly; the body gives full context.\n")
	b.WriteString("- No self-promotion and no hashtags. Simple markdown only.\n\n")

	b.WriteString("Return outputs that are platform-optimized and respect the constraints above.")
	return b.String()
}

// UserPrompt embeds the raw thought and the strict JSON output contract
func UserPrompt(rawThought string) string {
	return "Rewrite the following text into platform-specific drafts for X (Twitter), LinkedIn, and Reddit. " +
		"Keep the meaning intact and tailor each draft to the platform's norms.\n" +
		"Original text:\n" + rawThought + "\n\n" +
		"Output STRICT JSON with keys \"twitter\", \"linkedin\", \"reddit\".\n" +
		"\"twitter\" and \"linkedin\" map to { \"text\": string }; \"reddit\" maps to { \"title\": string, \"body\": string }.\n" +
		"No extra commentary. Example format:\n" +
		`{"twitter": {"text": "..."}, "linkedin": {"text": "..."}, "reddit": {"title": "...", "body": "..."}}`
}

// TextPrompt is the single prompt sent to the plain-text endpoint
func TextPrompt(system, user string) string {
	return system + "\n\n" + user + "\n\n" + TextPromptSuffix
}
