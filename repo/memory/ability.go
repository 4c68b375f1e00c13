package memory

import (
	"context"
	"sync"

	"github.com/xldeveloper/theinterneti-tta-solo/ability"
	"github.com/xldeveloper/theinterneti-tta-solo/repo"
	"github.com/xldeveloper/theinterneti-tta-solo/rpgerr"
)

var _ repo.AbilityRepo = (*AbilityStore)(nil)

// AbilityStore is an in-memory repo.AbilityRepo: abilities are content
// loaded once at startup (spec.md §4.9 treats them as read-mostly,
// unlike the per-universe TruthRepo/GraphRepo state).
type AbilityStore struct {
	mu        sync.RWMutex
	abilities map[string]*ability.Ability
}

// NewAbilityStore constructs an empty in-memory AbilityRepo.
func NewAbilityStore() *AbilityStore {
	return &AbilityStore{abilities: make(map[string]*ability.Ability)}
}

// Register adds or replaces an ability definition.
func (s *AbilityStore) Register(a *ability.Ability) error {
	if err := a.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.abilities[a.ID] = a
	return nil
}

// LoadAbility implements repo.AbilityRepo.
func (s *AbilityStore) LoadAbility(_ context.Context, id string) (*ability.Ability, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.abilities[id]
	if !ok {
		return nil, rpgerr.NotFound("ability not found", rpgerr.WithMeta("ability_id", id))
	}
	return a, nil
}
