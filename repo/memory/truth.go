// Package memory provides in-memory TruthRepo/GraphRepo implementations
// for tests (spec.md §4.9: "in-memory implementations of both ports
// must exist for tests").
package memory

import (
	"context"
	"sync"

	"github.com/xldeveloper/theinterneti-tta-solo/repo"
	"github.com/xldeveloper/theinterneti-tta-solo/rpgerr"
	"github.com/xldeveloper/theinterneti-tta-solo/worldmodel"
)

var _ repo.TruthRepo = (*TruthStore)(nil)

type versionedEntity struct {
	record  *worldmodel.Record
	version int
}

// TruthStore is an in-memory repo.TruthRepo.
type TruthStore struct {
	mu         sync.Mutex
	entities   map[string]*versionedEntity // universeID/entityID
	events     map[string][]*worldmodel.Event
	universes  map[string]*worldmodel.Universe
}

// NewTruthStore constructs an empty in-memory TruthRepo.
func NewTruthStore() *TruthStore {
	return &TruthStore{
		entities:  make(map[string]*versionedEntity),
		events:    make(map[string][]*worldmodel.Event),
		universes: make(map[string]*worldmodel.Universe),
	}
}

func entityKey(universeID, entityID string) string { return universeID + "/" + entityID }

// LoadEntity implements repo.TruthRepo.
func (s *TruthStore) LoadEntity(_ context.Context, universeID, entityID string) (*worldmodel.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ve, ok := s.entities[entityKey(universeID, entityID)]
	if !ok {
		return nil, rpgerr.NotFound("entity not found", rpgerr.WithMeta("universe_id", universeID), rpgerr.WithMeta("entity_id", entityID))
	}
	return ve.record, nil
}

// SaveEntity implements repo.TruthRepo with optimistic versioning: a
// save whose expectedVersion differs from the stored version fails with
// ConflictState, including a repeat of a save that already succeeded.
func (s *TruthStore) SaveEntity(_ context.Context, e *worldmodel.Record, expectedVersion int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := entityKey(e.UniverseID, e.ID)
	existing, ok := s.entities[key]
	if ok && existing.version != expectedVersion {
		return 0, rpgerr.ConflictState("entity version mismatch", rpgerr.WithMeta("expected", expectedVersion), rpgerr.WithMeta("actual", existing.version))
	}
	newVersion := expectedVersion + 1
	s.entities[key] = &versionedEntity{record: e, version: newVersion}
	return newVersion, nil
}

// AppendEvent implements repo.TruthRepo.
func (s *TruthStore) AppendEvent(_ context.Context, e *worldmodel.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[e.UniverseID] = append(s.events[e.UniverseID], e)
	return nil
}

// ListEvents implements repo.TruthRepo, returning events strictly
// after sinceEventID (empty sinceEventID lists from the start).
func (s *TruthStore) ListEvents(_ context.Context, universeID, sinceEventID string) ([]*worldmodel.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.events[universeID]
	if sinceEventID == "" {
		return append([]*worldmodel.Event(nil), all...), nil
	}
	for i, e := range all {
		if e.ID == sinceEventID {
			return append([]*worldmodel.Event(nil), all[i+1:]...), nil
		}
	}
	return nil, rpgerr.NotFound("event not found", rpgerr.WithMeta("event_id", sinceEventID))
}

// CreateBranch implements repo.TruthRepo by copying every entity the
// parent universe currently owns into the child universe, the
// in-memory stand-in for a git-like branch on the SQL engine
// (spec.md §4.7).
func (s *TruthStore) CreateBranch(_ context.Context, parentUniverseID, childUniverseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := parentUniverseID + "/"
	for key, ve := range s.entities {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			copied := *ve.record
			copied.UniverseID = childUniverseID
			s.entities[entityKey(childUniverseID, copied.ID)] = &versionedEntity{record: &copied, version: ve.version}
		}
	}
	return nil
}

// SnapshotAt implements repo.TruthRepo.
func (s *TruthStore) SnapshotAt(_ context.Context, universeID, eventID string) (*repo.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := universeID + "/"
	snap := &repo.Snapshot{UniverseID: universeID, UpToEventID: eventID}
	for key, ve := range s.entities {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			snap.Entities = append(snap.Entities, ve.record)
		}
	}
	return snap, nil
}

// ListUniverses implements repo.TruthRepo.
func (s *TruthStore) ListUniverses(_ context.Context) ([]*worldmodel.Universe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*worldmodel.Universe, 0, len(s.universes))
	for _, u := range s.universes {
		out = append(out, u)
	}
	return out, nil
}

// SaveUniverse implements repo.TruthRepo.
func (s *TruthStore) SaveUniverse(_ context.Context, u *worldmodel.Universe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.universes[u.ID] = u
	return nil
}

// LoadUniverse implements repo.TruthRepo.
func (s *TruthStore) LoadUniverse(_ context.Context, universeID string) (*worldmodel.Universe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.universes[universeID]
	if !ok {
		return nil, rpgerr.NotFound("universe not found", rpgerr.WithMeta("universe_id", universeID))
	}
	return u, nil
}
