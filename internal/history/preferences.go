package history

import (
	"fmt"
	"slices"

	"github.com/ppiankov/postcompass/internal/cache"
)

// Preferences stores user choices that outlive a session
type Preferences struct {
	store cache.Cache
}

// NewPreferences creates preferences backed by store
func NewPreferences(store cache.Cache) *Preferences {
	return &Preferences{store: store}
}

// Model returns the stored model, or "" when none was chosen
func (p *Preferences) Model() string {
	data, ok := p.store.Get(KeyModel)
	if !ok {
		return ""
	}
	return string(data)
}

// SetModel stores the preferred model
func (p *Preferences) SetModel(model string) error {
	if err := p.store.Set(KeyModel, []byte(model), cache.NoExpiration); err != nil {
		return fmt.Errorf("save model preference: %w", err)
	}
	return nil
}

// ResolveModel picks the stored model when available still lists it,
// otherwise the first available one, and remembers the choice
func (p *Preferences) ResolveModel(available []string) (string, error) {
	stored := p.Model()
	if stored != "" && slices.Contains(available, stored) {
		return stored, nil
	}
	if len(available) == 0 {
		return stored, nil
	}
	chosen := available[0]
	if chosen != stored {
		if err := p.SetModel(chosen); err != nil {
			return chosen, err
		}
	}
	return chosen, nil
}
