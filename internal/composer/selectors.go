package composer

// Ordered selector lists per platform field. Earlier entries match the
// current markup; later ones cover older or alternative layouts.
var (
	TwitterTextSelectors = []string{
		`div[data-testid="tweetTextarea_0"]`,
		`div[role="textbox"][aria-label*="tweet" i]`,
		`div[role="textbox"][aria-label*="post" i]`,
		`div[role="textbox"][data-testid*="tweet"]`,
		`div.DraftEditor-root div[contenteditable="true"]`,
		`div.public-DraftEditor-content div[contenteditable="true"]`,
	}

	LinkedInTriggerSelector = `button[aria-label*="Start a post" i], .share-box-feed-entry__trigger`

	LinkedInTextSelectors = []string{
		`div[role="dialog"] div[contenteditable="true"][role="textbox"]`,
		`div[role="dialog"] div[contenteditable="true"]`,
		`.ql-editor[contenteditable="true"]`,
		`.share-creation-state__text-editor div[contenteditable="true"]`,
		`div.editor-content div[contenteditable="true"]`,
	}

	RedditTitleSelectors = []string{
		`input[name="title"]`,
		`textarea[name="title"]`,
		`input[placeholder*="Title" i]`,
		`textarea[placeholder*="Title" i]`,
		`div[role="textbox"][aria-label*="Title" i]`,
	}

	RedditBodySelectors = []string{
		`textarea[name="text"]`,
		`div[role="textbox"][aria-label*="Text" i]`,
		`div[role="textbox"][data-testid*="post-content"]`,
		`div.md-container textarea`,
		`textarea[placeholder*="Text" i]`,
		`div[contenteditable="true"][data-placeholder*="Text" i]`,
	}
)
