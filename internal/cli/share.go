package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/postcompass/internal/draft"
	"github.com/ppiankov/postcompass/internal/fill"
	"github.com/spf13/cobra"
)

var (
	shareText        string
	shareTitle       string
	shareBody        string
	shareFromHistory string
	shareOpen        bool
	shareDebuggerURL string
)

// shareCmd represents the share command
var shareCmd = &cobra.Command{
	Use:   "share <twitter|linkedin|reddit>",
	Short: "Print the platform's prefilled share link for a draft",
	Long: `Share builds the platform's share-intent link (X intent/tweet, LinkedIn
shareArticle, Reddit submit) with the draft already filled in.

Content comes from --text (X, LinkedIn), --title/--body (Reddit), or a saved
history entry. Without any of these the newest history entry is used.
With --open the link is loaded in a Chrome tab.

Example:
  postcompass share twitter
  postcompass share reddit --from-history 3f0c...
  postcompass share linkedin --text "Excited to share v2" --open`,
	Args: cobra.ExactArgs(1),
	RunE: runShare,
}

func init() {
	rootCmd.AddCommand(shareCmd)

	shareCmd.Flags().StringVar(&shareText, "text", "", "text for X or LinkedIn")
	shareCmd.Flags().StringVar(&shareTitle, "title", "", "Reddit title")
	shareCmd.Flags().StringVar(&shareBody, "body", "", "Reddit body")
	shareCmd.Flags().StringVar(&shareFromHistory, "from-history", "", "use drafts from this history entry")
	shareCmd.Flags().BoolVar(&shareOpen, "open", false, "open the link in Chrome")
	shareCmd.Flags().StringVar(&shareDebuggerURL, "debugger-url", "", "connect to a running Chrome instead of launching one")
}

func runShare(cmd *cobra.Command, args []string) error {
	platform, err := draft.ParsePlatform(args[0])
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}

	payload := draft.Payload{Text: shareText, Title: shareTitle, Body: shareBody}
	link, err := shareLink(a, platform, payload, shareFromHistory)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), link)

	if !shareOpen {
		return nil
	}
	if shareDebuggerURL != "" {
		a.cfg.Browser.DebuggerURL = shareDebuggerURL
	}

	manager := a.browserManager()
	defer func() { _ = manager.Close() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	tab, err := tabSource(manager)(ctx)
	if err != nil {
		return fmt.Errorf("open browser: %w", err)
	}
	if err := tab.Navigate(ctx, link); err != nil {
		return fmt.Errorf("open share link: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ Opened %s share page\n", platform)

	if a.cfg.Browser.DebuggerURL == "" && !a.cfg.Browser.Headless {
		fmt.Fprintf(os.Stderr, "  Chrome stays open for review. Press Ctrl+C to exit.\n")
		<-cmd.Context().Done()
	}
	return nil
}

// shareLink uses payload when it has content, otherwise the history entry
func shareLink(a *app, platform draft.Platform, payload draft.Payload, historyID string) (string, error) {
	if payload == (draft.Payload{}) {
		var err error
		if payload, err = payloadFromHistory(a, platform, historyID); err != nil {
			return "", err
		}
	}
	return fill.ShareURL(platform, draft.FromPayload(platform, payload))
}
