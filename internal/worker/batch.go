package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/postcompass/internal/draft"
)

// GenerateFunc produces drafts for one raw thought
type GenerateFunc func(ctx context.Context, thought string) (draft.DraftSet, error)

// DraftJob represents one thought to rewrite. Throttling is left to
// Generate, which shares the generator's per-host limiter.
type DraftJob struct {
	Index    int
	Thought  string
	Generate GenerateFunc
}

// Execute executes the draft job
func (j *DraftJob) Execute(ctx context.Context) Result {
	drafts, err := j.Generate(ctx, j.Thought)
	if err != nil {
		return &DraftResult{Index: j.Index, Thought: j.Thought, Error: err}
	}
	return &DraftResult{Index: j.Index, Thought: j.Thought, Drafts: drafts}
}

// DraftResult represents the result of a draft job
type DraftResult struct {
	Index   int            `json:"index"`
	Thought string         `json:"thought"`
	Drafts  draft.DraftSet `json:"drafts"`
	Error   error          `json:"-"`
}

// GetError returns the error from the draft result
func (r *DraftResult) GetError() error {
	return r.Error
}

// BatchProcessor generates drafts for many thoughts concurrently
type BatchProcessor struct {
	generate GenerateFunc
	pool     *Pool
}

// NewBatchProcessor creates a new batch processor running at most
// concurrency jobs at once
func NewBatchProcessor(generate GenerateFunc, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		generate: generate,
		pool:     NewPool(concurrency),
	}
}

// Workers returns the effective concurrency
func (b *BatchProcessor) Workers() int {
	return b.pool.Workers()
}

// ProcessThoughts processes thoughts concurrently. Results are returned in
// input order.
func (b *BatchProcessor) ProcessThoughts(ctx context.Context, thoughts []string) []*DraftResult {
	jobs := make([]Job, len(thoughts))
	for i, thought := range thoughts {
		jobs[i] = &DraftJob{
			Index:    i,
			Thought:  thought,
			Generate: b.generate,
		}
	}

	results := b.pool.Run(ctx, jobs)

	draftResults := make([]*DraftResult, len(results))
	for i, result := range results {
		draftResults[i] = result.(*DraftResult)
	}
	return draftResults
}

// ProcessFile reads thoughts from a file and processes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*DraftResult, error) {
	thoughts, err := ReadThoughtsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read thoughts: %w", err)
	}

	return b.ProcessThoughts(ctx, thoughts), nil
}

// ReadThoughtsFromFile reads thoughts from a file (one per line). Blank lines
// and "# " comments are skipped; a leading hashtag like "#buildinpublic" is
// content.
func ReadThoughtsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var thoughts []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || line == "#" || strings.HasPrefix(line, "# ") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			thoughts = append(thoughts, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return thoughts, nil
}
