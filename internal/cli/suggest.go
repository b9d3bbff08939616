package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/postcompass/internal/suggest"
	"github.com/spf13/cobra"
)

var (
	suggestJSON    bool
	researchJSON   bool
	researchDays   int
	researchMax    int
	suggestTimeout time.Duration
)

// suggestCmd represents the suggest command
var suggestCmd = &cobra.Command{
	Use:   "suggest [text|-]",
	Short: "Suggest X hashtags and subreddits for a thought",
	Long: `Suggest asks the model for hashtags and subreddits that fit the text.
When the model is unavailable a built-in topic catalog is used instead.

Example:
  postcompass suggest "benchmarking LLM inference on a laptop GPU"`,
	RunE: runSuggest,
}

// researchCmd represents the research command
var researchCmd = &cobra.Command{
	Use:   "research <topic>",
	Short: "Find recent discussions about a topic on Hacker News and Reddit",
	Long: `Research searches Hacker News and Reddit for recent, well-received
discussions about the topic and ranks them by score and recency.

Example:
  postcompass research "rust async"
  postcompass research golang --days 3 --max 4 --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResearch,
}

func init() {
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(researchCmd)

	suggestCmd.Flags().BoolVar(&suggestJSON, "json", false, "print suggestions as JSON")
	suggestCmd.Flags().DurationVar(&suggestTimeout, "timeout", time.Minute, "overall timeout")

	researchCmd.Flags().BoolVar(&researchJSON, "json", false, "print results as JSON")
	researchCmd.Flags().IntVar(&researchDays, "days", 0, "search window in days (default from config)")
	researchCmd.Flags().IntVar(&researchMax, "max", 0, "results per source (default from config)")
}

func runSuggest(cmd *cobra.Command, args []string) error {
	text, err := readInput(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), suggestTimeout)
	defer cancel()

	s := a.suggester().Suggest(ctx, text, suggest.Options{Model: a.cfg.LLM.Model})

	if suggestJSON {
		return writeJSON(cmd, s)
	}

	w := cmd.OutOrStdout()
	if s.IsEmpty() {
		fmt.Fprintln(w, "No suggestions.")
		return nil
	}
	if s.Source == suggest.SourceCatalog {
		fmt.Fprintf(os.Stderr, "(model unavailable, using topic catalog)\n")
	}

	fmt.Fprintln(w, "== Hashtags ==")
	for _, h := range s.Hashtags {
		fmt.Fprintf(w, "  %-28s %.2f  %s\n", h.Tag, h.Score, h.Reason)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "== Subreddits ==")
	for _, sr := range s.Subreddits {
		fmt.Fprintf(w, "  %-28s %.2f  %s\n", sr.Name, sr.Score, sr.Reason)
	}
	return nil
}

func runResearch(cmd *cobra.Command, args []string) error {
	topic, err := readInput(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}

	opts := suggest.ResearchOptions{Days: a.cfg.Research.Days, MaxPerSource: a.cfg.Research.MaxPerSource}
	if researchDays > 0 {
		opts.Days = researchDays
	}
	if researchMax > 0 {
		opts.MaxPerSource = researchMax
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*a.cfg.HTTP.Timeout)
	defer cancel()

	items, err := a.researcher().Research(ctx, topic, opts)
	if err != nil {
		return fmt.Errorf("research failed: %w", err)
	}

	if researchJSON {
		return writeJSON(cmd, items)
	}

	w := cmd.OutOrStdout()
	if len(items) == 0 {
		fmt.Fprintf(w, "No recent discussions found for %q.\n", topic)
		return nil
	}
	for _, it := range items {
		fmt.Fprintf(w, "[%s] %s (%.0f)\n    %s\n", it.Source, it.Title, it.Score, it.URL)
	}
	return nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
