package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/postcompass/internal/draft"
	"github.com/spf13/cobra"
)

var (
	fillText        string
	fillTitle       string
	fillBody        string
	fillFromHistory string
	fillDebuggerURL string
	fillHeadless    bool
	fillKeepOpen    bool
)

// fillCmd represents the fill command
var fillCmd = &cobra.Command{
	Use:   "fill <twitter|linkedin|reddit>",
	Short: "Open a platform composer in Chrome and fill it with a draft",
	Long: `Fill navigates a Chrome tab to the platform's composer and writes the
draft into it. Nothing is posted: review and submit it yourself.

Content comes from --text (X, LinkedIn), --title/--body (Reddit), or a saved
history entry. Without any of these the newest history entry is used.

Connect to your own logged-in Chrome by starting it with
--remote-debugging-port=9222 and passing --debugger-url http://127.0.0.1:9222.

Example:
  postcompass fill twitter --text "We shipped v2 today"
  postcompass fill reddit --from-history 3f0c...
  postcompass fill linkedin --debugger-url http://127.0.0.1:9222`,
	Args: cobra.ExactArgs(1),
	RunE: runFill,
}

func init() {
	rootCmd.AddCommand(fillCmd)

	fillCmd.Flags().StringVar(&fillText, "text", "", "text for X or LinkedIn")
	fillCmd.Flags().StringVar(&fillTitle, "title", "", "Reddit title")
	fillCmd.Flags().StringVar(&fillBody, "body", "", "Reddit body")
	fillCmd.Flags().StringVar(&fillFromHistory, "from-history", "", "use drafts from this history entry")
	fillCmd.Flags().StringVar(&fillDebuggerURL, "debugger-url", "", "connect to a running Chrome instead of launching one")
	fillCmd.Flags().BoolVar(&fillHeadless, "headless", false, "launch Chrome headless")
	fillCmd.Flags().BoolVar(&fillKeepOpen, "keep-open", true, "leave a launched Chrome running until interrupted")
}

func runFill(cmd *cobra.Command, args []string) error {
	platform, err := draft.ParsePlatform(args[0])
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	if fillDebuggerURL != "" {
		a.cfg.Browser.DebuggerURL = fillDebuggerURL
	}
	if cmd.Flags().Changed("headless") {
		a.cfg.Browser.Headless = fillHeadless
	}

	payload := draft.Payload{Text: fillText, Title: fillTitle, Body: fillBody}
	if payload == (draft.Payload{}) {
		payload, err = payloadFromHistory(a, platform, fillFromHistory)
		if err != nil {
			return err
		}
	}

	manager := a.browserManager()
	defer func() { _ = manager.Close() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	tab, err := tabSource(manager)(ctx)
	if err != nil {
		return fmt.Errorf("open browser: %w", err)
	}

	out := a.orchestrator().RequestFill(ctx, platform, payload, tab)
	if !out.Success {
		if out.Error != "" {
			return fmt.Errorf("%s: %s", out.Message, out.Error)
		}
		return errors.New(out.Message)
	}
	fmt.Fprintf(os.Stderr, "✓ %s\n", out.Message)

	if fillKeepOpen && a.cfg.Browser.DebuggerURL == "" && !a.cfg.Browser.Headless {
		fmt.Fprintf(os.Stderr, "  Chrome stays open for review. Press Ctrl+C to exit.\n")
		<-cmd.Context().Done()
	}
	return nil
}

func payloadFromHistory(a *app, platform draft.Platform, id string) (draft.Payload, error) {
	hist := a.history()
	if id != "" {
		entry, err := hist.Get(id)
		if err != nil {
			return draft.Payload{}, err
		}
		return entry.Drafts.PayloadFor(platform), nil
	}

	entries, err := hist.List()
	if err != nil {
		return draft.Payload{}, err
	}
	if len(entries) == 0 {
		return draft.Payload{}, errors.New("nothing to fill: pass --text/--title/--body or generate drafts first")
	}
	return entries[0].Drafts.PayloadFor(platform), nil
}
