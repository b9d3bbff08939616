package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/postcompass/internal/draft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeGenerate(fail string) GenerateFunc {
	return func(ctx context.Context, thought string) (draft.DraftSet, error) {
		time.Sleep(5 * time.Millisecond) // Simulate work
		if thought == fail {
			return draft.DraftSet{}, errors.New("generation failed")
		}
		return draft.NormalizeShared("draft for " + thought), nil
	}
}

func TestBatchProcessor_ProcessThoughts(t *testing.T) {
	processor := NewBatchProcessor(fakeGenerate(""), 2)

	thoughts := []string{"first idea", "second idea", "third idea"}
	results := processor.ProcessThoughts(context.Background(), thoughts)

	require.Len(t, results, 3)
	for i, res := range results {
		require.NoError(t, res.Error, res.Thought)
		assert.Equal(t, i, res.Index)
		assert.Equal(t, thoughts[i], res.Thought)
		assert.Equal(t, "draft for "+thoughts[i], res.Drafts.Twitter.Text)
	}
}

func TestBatchProcessor_ProcessThoughts_Error(t *testing.T) {
	processor := NewBatchProcessor(fakeGenerate("bad"), 2)

	results := processor.ProcessThoughts(context.Background(), []string{"good", "bad"})

	require.Len(t, results, 2)
	assert.NoError(t, results[0].Error)
	assert.Error(t, results[1].Error)
	assert.True(t, results[1].Drafts.IsEmpty(), "expected empty drafts on error")
}

func TestBatchProcessor_ProcessThoughts_Many(t *testing.T) {
	processor := NewBatchProcessor(fakeGenerate(""), 3)

	thoughts := make([]string, 40)
	for i := range thoughts {
		thoughts[i] = fmt.Sprintf("thought %d", i)
	}

	results := processor.ProcessThoughts(context.Background(), thoughts)

	require.Len(t, results, len(thoughts))
	for i, res := range results {
		assert.Equal(t, i, res.Index)
	}
}

func TestBatchProcessor_OnlyGenerateIsCalled(t *testing.T) {
	var calls atomic.Int32
	generate := func(ctx context.Context, thought string) (draft.DraftSet, error) {
		calls.Add(1)
		return draft.NormalizeShared(thought), nil
	}
	processor := NewBatchProcessor(generate, 4)

	results := processor.ProcessThoughts(context.Background(), []string{"a", "b", "c"})

	require.Len(t, results, 3)
	assert.Equal(t, int32(3), calls.Load())
}

func TestBatchProcessor_Workers(t *testing.T) {
	assert.Equal(t, 3, NewBatchProcessor(fakeGenerate(""), 3).Workers())
	assert.Equal(t, 1, NewBatchProcessor(fakeGenerate(""), 0).Workers())
}

func TestBatchProcessor_ProcessThoughts_Empty(t *testing.T) {
	processor := NewBatchProcessor(fakeGenerate(""), 2)

	results := processor.ProcessThoughts(context.Background(), nil)
	assert.Empty(t, results)
}

func TestReadThoughtsFromFile(t *testing.T) {
	content := `We shipped v2 today
# comment
#buildinpublic week 3 recap
   
We shipped v2 today
Hiring a Go engineer   `

	path := filepath.Join(t.TempDir(), "thoughts.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	thoughts, err := ReadThoughtsFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"We shipped v2 today", "#buildinpublic week 3 recap", "Hiring a Go engineer"}, thoughts)
}

func TestReadThoughtsFromFile_NonExistent(t *testing.T) {
	_, err := ReadThoughtsFromFile("non_existent_file.txt")
	assert.Error(t, err)
}

func TestDraftResult_GetError(t *testing.T) {
	r1 := &DraftResult{Thought: "x"}
	assert.NoError(t, r1.GetError())

	expected := errors.New("generation failed")
	r2 := &DraftResult{Thought: "x", Error: expected}
	assert.Equal(t, expected, r2.GetError())
}
