// Package history keeps generated drafts, the preferred model and the state
// of one drafting session on top of a cache.Cache store.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/postcompass/internal/cache"
	"github.com/ppiankov/postcompass/internal/draft"
)

// Storage keys
const (
	KeyHistory = "pc_history"
	KeyModel   = "pc_model"
)

// MaxEntries caps the stored history
const MaxEntries = 50

// ErrNotFound is returned when no entry has the requested id
var ErrNotFound = errors.New("history entry not found")

// Entry is one generation
type Entry struct {
	ID        string         `json:"id" yaml:"id"`
	Timestamp time.Time      `json:"timestamp" yaml:"timestamp"`
	Model     string         `json:"model" yaml:"model"`
	Raw       string         `json:"raw" yaml:"raw"`
	Drafts    draft.DraftSet `json:"drafts" yaml:"drafts"`

	// Versions holds earlier draft sets of the same thought, oldest first
	Versions []draft.DraftSet `json:"versions,omitempty" yaml:"versions,omitempty"`
}

// History is the newest-first list of generations
type History struct {
	store cache.Cache
	mu    sync.Mutex
	now   func() time.Time
}

// New creates a history backed by store
func New(store cache.Cache) *History {
	return &History{store: store, now: time.Now}
}

// List returns entries newest first. Unreadable data yields an empty list.
func (h *History) List() ([]Entry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.load(), nil
}

// Add stores e at the front, assigning an id and timestamp when missing,
// and drops the oldest entries beyond MaxEntries
func (h *History) Add(e Entry) (Entry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = h.now()
	}

	list := append([]Entry{e}, h.load()...)
	if len(list) > MaxEntries {
		list = list[:MaxEntries]
	}
	if err := h.save(list); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Get returns the entry with id
func (h *History) Get(id string) (Entry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, e := range h.load() {
		if e.ID == id {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Clear removes every entry
func (h *History) Clear() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.save([]Entry{})
}

func (h *History) load() []Entry {
	data, ok := h.store.Get(KeyHistory)
	if !ok {
		return []Entry{}
	}
	var list []Entry
	if err := json.Unmarshal(data, &list); err != nil || list == nil {
		return []Entry{}
	}
	return list
}

func (h *History) save(list []Entry) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := h.store.Set(KeyHistory, data, cache.NoExpiration); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}
