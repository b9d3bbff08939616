package suggest

import (
	"strings"
	"unicode"
)

type topic struct {
	Name       string
	Keywords   []string
	Hashtags   []Hashtag
	Subreddits []Subreddit
}

func catalogSub(name, reason string) Subreddit {
	return Subreddit{Name: name, Score: defaultScore, Reason: reason, URL: SubredditURL(name)}
}

func catalogTag(name, reason string) Hashtag {
	return Hashtag{Tag: name, Score: defaultScore, Reason: reason, URL: HashtagURL(name)}
}

var catalog = []topic{
	{
		Name:     "ai",
		Keywords: []string{"ai", "artificial intelligence", "gpt", "llm", "machine learning", "deep learning", "neural"},
		Subreddits: []Subreddit{
			catalogSub("r/MachineLearning", "ML research and engineering audience"),
			catalogSub("r/singularity", "AI progress and future trends"),
		},
		Hashtags: []Hashtag{
			catalogTag("#AI", "General AI hashtag for discovery"),
			catalogTag("#MachineLearning", "ML practitioners and researchers"),
		},
	},
	{
		Name:     "startups",
		Keywords: []string{"startup", "founder", "bootstrapped", "saas", "indie", "micro-saas", "funding"},
		Subreddits: []Subreddit{
			catalogSub("r/startups", "Feedback and founder stories"),
			catalogSub("r/Entrepreneur", "Business building and growth"),
		},
		Hashtags: []Hashtag{
			catalogTag("#buildinpublic", "Indie hacker audience"),
			catalogTag("#SaaS", "SaaS founders and operators"),
		},
	},
	{
		Name:     "programming",
		Keywords: []string{"code", "coding", "programming", "javascript", "typescript", "python", "golang", "react", "nextjs", "webdev", "api"},
		Subreddits: []Subreddit{
			catalogSub("r/programming", "General programming topics"),
			catalogSub("r/webdev", "Web development community"),
		},
		Hashtags: []Hashtag{
			catalogTag("#DevCommunity", "Developer conversations"),
			catalogTag("#JavaScript", "JS ecosystem audience"),
		},
	},
	{
		Name:     "productivity",
		Keywords: []string{"productivity", "workflow", "habit", "focus", "time management", "deep work"},
		Subreddits: []Subreddit{
			catalogSub("r/productivity", "Systems and routines"),
			catalogSub("r/GetDisciplined", "Accountability and habits"),
		},
		Hashtags: []Hashtag{
			catalogTag("#productivity", "Productivity enthusiasts"),
			catalogTag("#TimeManagement", "Tips and discussions"),
		},
	},
	{
		Name:     "design",
		Keywords: []string{"design", "ui", "ux", "user experience", "interface", "product design"},
		Subreddits: []Subreddit{
			catalogSub("r/design", "Design critiques and inspiration"),
			catalogSub("r/userexperience", "UX research and practice"),
		},
		Hashtags: []Hashtag{
			catalogTag("#ux", "UX conversations"),
			catalogTag("#Design", "Design news and showcases"),
		},
	},
	{
		Name:     "science",
		Keywords: []string{"science", "research", "biology", "physics", "chemistry", "astronomy"},
		Subreddits: []Subreddit{
			catalogSub("r/science", "General science news"),
			catalogSub("r/askscience", "Q&A and explanations"),
		},
		Hashtags: []Hashtag{
			catalogTag("#Science", "Science audience on X"),
			catalogTag("#SciComm", "Science communication"),
		},
	},
}

// Topics lists the catalog topic names
func Topics() []string {
	names := make([]string, len(catalog))
	for i, t := range catalog {
		names[i] = t.Name
	}
	return names
}

// MatchCatalog returns the catalog entries of every topic whose keywords
// appear in text. Single-word keywords must match a whole word so "ai" does
// not match "said"; phrases match as substrings.
func MatchCatalog(text string) Suggestions {
	out := Suggestions{Hashtags: []Hashtag{}, Subreddits: []Subreddit{}}

	lower := strings.ToLower(text)
	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	}) {
		words[w] = true
		// plurals: "startups" matches "startup"
		words[strings.TrimSuffix(w, "s")] = true
	}

	seenTag := make(map[string]bool)
	seenSub := make(map[string]bool)
	for _, t := range catalog {
		if !matchesAny(lower, words, t.Keywords) {
			continue
		}
		for _, h := range t.Hashtags {
			if !seenTag[h.Tag] && len(out.Hashtags) < maxItems {
				seenTag[h.Tag] = true
				out.Hashtags = append(out.Hashtags, h)
			}
		}
		for _, s := range t.Subreddits {
			if !seenSub[s.Name] && len(out.Subreddits) < maxItems {
				seenSub[s.Name] = true
				out.Subreddits = append(out.Subreddits, s)
			}
		}
	}
	return out
}

func matchesAny(lower string, words map[string]bool, keywords []string) bool {
	for _, k := range keywords {
		if strings.ContainsRune(k, ' ') {
			if strings.Contains(lower, k) {
				return true
			}
			continue
		}
		if words[k] {
			return true
		}
	}
	return false
}
