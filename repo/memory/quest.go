package memory

import (
	"context"
	"sync"

	"github.com/xldeveloper/theinterneti-tta-solo/repo"
	"github.com/xldeveloper/theinterneti-tta-solo/worldmodel"
)

var _ repo.QuestRepo = (*QuestStore)(nil)

// QuestStore is an in-memory repo.QuestRepo, keyed by universe so
// ActiveQuestsByUniverse doesn't have to scan every quest on every turn.
type QuestStore struct {
	mu     sync.RWMutex
	quests map[string]map[string]*worldmodel.Quest // universeID -> questID -> quest
}

// NewQuestStore constructs an empty in-memory QuestRepo.
func NewQuestStore() *QuestStore {
	return &QuestStore{quests: make(map[string]map[string]*worldmodel.Quest)}
}

// ActiveQuestsByUniverse implements repo.QuestRepo, returning only
// quests a router turn could plausibly advance.
func (s *QuestStore) ActiveQuestsByUniverse(_ context.Context, universeID string) ([]*worldmodel.Quest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var active []*worldmodel.Quest
	for _, q := range s.quests[universeID] {
		if q.Status == worldmodel.QuestActive {
			active = append(active, q)
		}
	}
	return active, nil
}

// SaveQuest implements repo.QuestRepo.
func (s *QuestStore) SaveQuest(_ context.Context, q *worldmodel.Quest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.quests[q.UniverseID] == nil {
		s.quests[q.UniverseID] = make(map[string]*worldmodel.Quest)
	}
	s.quests[q.UniverseID][q.ID] = q
	return nil
}
