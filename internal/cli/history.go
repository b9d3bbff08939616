package cli

import (
	"fmt"
	"os"

	"github.com/ppiankov/postcompass/internal/draft"
	"github.com/ppiankov/postcompass/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	historyClear bool
	historyJSON  bool
	historyLimit int
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history [id]",
	Short: "Show or clear previously generated drafts",
	Long: `History lists saved generations, newest first. With an id it prints
that entry's drafts.

Example:
  postcompass history
  postcompass history 3f0c...   # show one entry
  postcompass history --clear`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "delete all history")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "print as JSON")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of entries to list")
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	hist := a.history()

	if historyClear {
		if err := hist.Clear(); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ History cleared\n")
		return nil
	}

	if len(args) == 1 {
		entry, err := hist.Get(args[0])
		if err != nil {
			return err
		}
		if historyJSON {
			return writeJSON(cmd, entry)
		}
		return pipeline.RenderText(cmd.OutOrStdout(), entry.Drafts)
	}

	entries, err := hist.List()
	if err != nil {
		return err
	}
	if historyLimit > 0 && len(entries) > historyLimit {
		entries = entries[:historyLimit]
	}

	if historyJSON {
		return writeJSON(cmd, entries)
	}

	w := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(w, "No history yet.")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%s  %s  %s\n    %s\n", e.ID, e.Timestamp.Local().Format("2006-01-02 15:04"), e.Model, draft.Truncate(e.Raw, 100))
	}
	return nil
}
