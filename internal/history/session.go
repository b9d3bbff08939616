package history

import (
	"sync"

	"github.com/ppiankov/postcompass/internal/draft"
)

// Session is the state of one drafting session: the thought being worked on,
// the model, the current drafts and per-platform undo stacks
type Session struct {
	mu       sync.Mutex
	raw      string
	model    string
	drafts   draft.DraftSet
	versions map[draft.Platform][]draft.DraftSet
}

// NewSession starts an empty session for model
func NewSession(model string) *Session {
	return &Session{model: model, versions: map[draft.Platform][]draft.DraftSet{}}
}

// Start replaces the session content with a freshly generated set and
// forgets every earlier version
func (s *Session) Start(raw string, drafts draft.DraftSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw = raw
	s.drafts = drafts
	s.versions = map[draft.Platform][]draft.DraftSet{}
}

func (s *Session) Raw() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.raw
}

func (s *Session) Model() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

func (s *Session) SetModel(model string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = model
}

// Drafts returns the current drafts
func (s *Session) Drafts() draft.DraftSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drafts
}

// Push replaces platform's drafts with those in next, keeping the previous
// set on the platform's stack
func (s *Session) Push(platform draft.Platform, next draft.DraftSet) draft.DraftSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.versions[platform] = append(s.versions[platform], s.drafts)
	s.drafts = s.drafts.Replace(platform, next)
	return s.drafts
}

// Undo restores platform's previous drafts. ok is false when there is
// nothing to undo.
func (s *Session) Undo(platform draft.Platform) (drafts draft.DraftSet, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stack := s.versions[platform]
	if len(stack) == 0 {
		return s.drafts, false
	}
	prev := stack[len(stack)-1]
	s.versions[platform] = stack[:len(stack)-1]
	s.drafts = s.drafts.Replace(platform, prev)
	return s.drafts, true
}

// Depth reports how many undo steps platform has
func (s *Session) Depth(platform draft.Platform) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.versions[platform])
}

// Entry snapshots the session for History.Add. Versions are the earlier sets
// of every platform, oldest first per platform.
func (s *Session) Entry() Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var versions []draft.DraftSet
	for _, p := range draft.Platforms() {
		versions = append(versions, s.versions[p]...)
	}
	return Entry{Model: s.model, Raw: s.raw, Drafts: s.drafts, Versions: versions}
}

// Restore loads a history entry back into the session
func (s *Session) Restore(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw = e.Raw
	s.model = e.Model
	s.drafts = e.Drafts
	s.versions = map[draft.Platform][]draft.DraftSet{}
}
