package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/postcompass/internal/history"
	"github.com/ppiankov/postcompass/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	draftJSON      bool
	draftNoHistory bool
	draftTimeout   time.Duration
)

// draftCmd represents the draft command
var draftCmd = &cobra.Command{
	Use:   "draft [text|-]",
	Short: "Rewrite a raw thought into X, LinkedIn and Reddit drafts",
	Long: `Draft sends the raw thought to the generation endpoint and prints one
draft per platform, each within the platform's length limit.

The thought is read from the arguments, or from stdin when none are given
or the only argument is "-".

Example:
  postcompass draft "We shipped v2 today"
  echo "notes from the offsite" | postcompass draft --tone playful
  postcompass draft "Go 1.25 is out" --model openai --json`,
	RunE: runDraft,
}

func init() {
	rootCmd.AddCommand(draftCmd)

	draftCmd.Flags().BoolVar(&draftJSON, "json", false, "print drafts as JSON")
	draftCmd.Flags().BoolVar(&draftNoHistory, "no-history", false, "do not save the result to history")
	draftCmd.Flags().DurationVar(&draftTimeout, "timeout", 2*time.Minute, "overall timeout")
}

func runDraft(cmd *cobra.Command, args []string) error {
	raw, err := readInput(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), draftTimeout)
	defer cancel()

	model := a.cfg.LLM.Model
	if !cmd.Flags().Changed("model") {
		if stored := a.preferences().Model(); stored != "" {
			model = stored
		}
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Generating drafts with %s...\n", model)
	}

	set, err := a.generator().GenerateDrafts(ctx, raw, pipeline.Options{Model: model, Tone: a.cfg.LLM.Tone})
	if err != nil {
		return fmt.Errorf("draft failed: %w", err)
	}

	if !draftNoHistory {
		entry, err := a.history().Add(history.Entry{Model: model, Raw: raw, Drafts: set})
		if err != nil {
			fmt.Fprintf(os.Stderr, "✗ could not save history: %v\n", err)
		} else if verbose {
			fmt.Fprintf(os.Stderr, "✓ Saved to history as %s\n", entry.ID)
		}
	}

	if draftJSON {
		return pipeline.RenderJSON(cmd.OutOrStdout(), set)
	}
	return pipeline.RenderText(cmd.OutOrStdout(), set)
}
