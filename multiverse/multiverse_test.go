package multiverse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xldeveloper/theinterneti-tta-solo/worldmodel"
)

type memTruth struct {
	universes map[string]*worldmodel.Universe
	events    []*worldmodel.Event
	branched  map[string]string
}

func newMemTruth() *memTruth {
	return &memTruth{universes: map[string]*worldmodel.Universe{}, branched: map[string]string{}}
}

func (m *memTruth) SaveUniverse(_ context.Context, u *worldmodel.Universe) error {
	m.universes[u.ID] = u
	return nil
}

func (m *memTruth) CreateBranch(_ context.Context, parentID, childID string) error {
	m.branched[childID] = parentID
	return nil
}

func (m *memTruth) AppendEvent(_ context.Context, e *worldmodel.Event) error {
	m.events = append(m.events, e)
	return nil
}

type memGraph struct {
	entities      map[string]*worldmodel.Record // key: universeID+"/"+entityID
	relationships []*worldmodel.Relationship
}

func newMemGraph() *memGraph { return &memGraph{entities: map[string]*worldmodel.Record{}} }

func key(universeID, entityID string) string { return universeID + "/" + entityID }

func (m *memGraph) FindEntity(_ context.Context, universeID, entityID string) (*worldmodel.Record, error) {
	r, ok := m.entities[key(universeID, entityID)]
	if !ok {
		return nil, nil
	}
	return r, nil
}

func (m *memGraph) UpsertEntity(_ context.Context, e *worldmodel.Record) error {
	m.entities[key(e.UniverseID, e.ID)] = e
	return nil
}

func (m *memGraph) HasVariant(_ context.Context, universeID, canonicalID string) (bool, error) {
	_, ok := m.entities[key(universeID, canonicalID)]
	return ok, nil
}

func (m *memGraph) CreateRelationship(_ context.Context, r *worldmodel.Relationship) error {
	m.relationships = append(m.relationships, r)
	return nil
}

func (m *memGraph) RelationshipsFrom(_ context.Context, universeID, entityID string) ([]*worldmodel.Relationship, error) {
	var out []*worldmodel.Relationship
	for _, r := range m.relationships {
		if r.UniverseID == universeID && r.From == entityID {
			out = append(out, r)
		}
	}
	return out, nil
}

func TestForkUniverse_AppendsEventsToBoth(t *testing.T) {
	truth, graph := newMemTruth(), newMemGraph()
	svc := NewService(truth, graph)
	parent := &worldmodel.Universe{ID: "root", Depth: 0, Status: worldmodel.UniverseActive}

	child, err := svc.ForkUniverse(context.Background(), parent, "child-1", "timeline-b", "player choice", "player-1")
	require.NoError(t, err)
	assert.Equal(t, 1, child.Depth)
	assert.Equal(t, "root", truth.branched["child-1"])
	assert.Len(t, truth.events, 2)
}

func TestResolve_LazyDivergenceFallsBackToCanonical(t *testing.T) {
	truth, graph := newMemTruth(), newMemGraph()
	svc := NewService(truth, graph)
	canonical := &worldmodel.Record{ID: "npc-1", UniverseID: "root", Name: "Old Man"}
	require.NoError(t, graph.UpsertEntity(context.Background(), canonical))

	resolved, err := svc.Resolve(context.Background(), "child-1", "root", "npc-1")
	require.NoError(t, err)
	assert.Equal(t, "Old Man", resolved.Name)
}

func TestWorldTravel_TransfersOwnsNotKnows(t *testing.T) {
	truth, graph := newMemTruth(), newMemGraph()
	svc := NewService(truth, graph)
	char := &worldmodel.Record{ID: "hero-1", UniverseID: "root", Character: worldmodel.NewCharacterStats()}
	require.NoError(t, graph.CreateRelationship(context.Background(), &worldmodel.Relationship{UniverseID: "root", From: "hero-1", To: "sword-1", Type: worldmodel.RelOwns}))
	require.NoError(t, graph.CreateRelationship(context.Background(), &worldmodel.Relationship{UniverseID: "root", From: "hero-1", To: "npc-1", Type: worldmodel.RelKnows}))

	copied, err := svc.WorldTravel(context.Background(), char, "universe-2", "hero-1-copy", "portal-1")
	require.NoError(t, err)
	assert.Equal(t, "universe-2", copied.UniverseID)

	var transferredTypes []worldmodel.RelationshipType
	for _, r := range graph.relationships {
		if r.UniverseID == "universe-2" && r.From == "hero-1-copy" {
			transferredTypes = append(transferredTypes, r.Type)
		}
	}
	assert.Contains(t, transferredTypes, worldmodel.RelOwns)
	assert.Contains(t, transferredTypes, worldmodel.RelLocatedIn)
	assert.NotContains(t, transferredTypes, worldmodel.RelKnows)
}
