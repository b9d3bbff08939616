package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/ppiankov/postcompass/internal/draft"
	"github.com/ppiankov/postcompass/internal/history"
	"github.com/ppiankov/postcompass/internal/pipeline"
	"github.com/ppiankov/postcompass/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	outputFile   string
	batchTimeout time.Duration
	batchHistory bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Generate drafts for many thoughts from a file in parallel",
	Long: `Batch rewrites many raw thoughts concurrently:
- Read thoughts from the input file (one per line, "# " starts a comment)
- Generate drafts with a bounded worker pool
- Throttle calls per endpoint host with the shared rate limiter
- Write all results as one JSON document

Example:
  postcompass batch thoughts.txt
  postcompass batch thoughts.txt --concurrency 2 --output drafts.json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", min(runtime.NumCPU(), 4), "number of concurrent workers")
	batchCmd.Flags().StringVarP(&outputFile, "output", "o", "", "write results to this file instead of stdout")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().BoolVar(&batchHistory, "history", false, "save every successful result to history")
}

var errNoDrafts = errors.New("generator returned no drafts")

// batchOutput is one line of the batch JSON document
type batchOutput struct {
	Thought string          `json:"thought"`
	Drafts  *draft.DraftSet `json:"drafts,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	a, err := newApp()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	gen := a.generator()
	opts := pipeline.Options{Model: a.cfg.LLM.Model, Tone: a.cfg.LLM.Tone}
	generate := func(ctx context.Context, thought string) (draft.DraftSet, error) {
		return gen.GenerateDrafts(ctx, thought, opts)
	}
	processor := worker.NewBatchProcessor(generate, concurrency)

	printBanner("Post Compass Batch Processing")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", processor.Workers())
	fmt.Fprintf(os.Stderr, "  Model:        %s\n", a.cfg.LLM.Model)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	fmt.Fprintf(os.Stderr, "⚙️  Processing thoughts with %d workers...\n\n", processor.Workers())
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	hist := a.history()
	out := make([]batchOutput, 0, len(results))
	successCount, failureCount := 0, 0

	for _, result := range results {
		if result.Error == nil && result.Drafts.IsEmpty() {
			result.Error = errNoDrafts
		}
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", preview(result.Thought), result.Error)
			out = append(out, batchOutput{Thought: result.Thought, Error: result.Error.Error()})
			continue
		}

		successCount++
		set := result.Drafts
		out = append(out, batchOutput{Thought: result.Thought, Drafts: &set})
		fmt.Fprintf(os.Stderr, "✓ %s\n", preview(result.Thought))

		if batchHistory {
			if _, err := hist.Add(history.Entry{Model: a.cfg.LLM.Model, Raw: result.Thought, Drafts: set}); err != nil {
				fmt.Fprintf(os.Stderr, "✗ could not save history: %v\n", err)
			}
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}

	if outputFile != "" {
		if dir := filepath.Dir(outputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
		}
		if err := os.WriteFile(outputFile, append(data, '\n'), 0644); err != nil {
			return fmt.Errorf("write results: %w", err)
		}
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	}

	printBanner("Batch Complete")
	fmt.Fprintf(os.Stderr, "  Total:     %d thoughts\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	if outputFile != "" {
		fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputFile)
	}
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

// preview shortens a thought for progress lines
func preview(s string) string {
	return draft.Truncate(s, 60)
}
