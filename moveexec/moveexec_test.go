package moveexec

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xldeveloper/theinterneti-tta-solo/worldmodel"
)

type memEntities struct {
	mu      sync.Mutex
	records map[string]*worldmodel.Record
}

func newMemEntities() *memEntities { return &memEntities{records: map[string]*worldmodel.Record{}} }

func (m *memEntities) CreateEntity(_ context.Context, e *worldmodel.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[e.ID] = e
	return nil
}

func (m *memEntities) DeleteEntity(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
	return nil
}

type memRelationships struct {
	created []*worldmodel.Relationship
}

func (m *memRelationships) CreateRelationship(_ context.Context, r *worldmodel.Relationship) error {
	m.created = append(m.created, r)
	return nil
}

func TestExecute_GenerativeFallsBackWithoutLLM(t *testing.T) {
	entities := newMemEntities()
	rels := &memRelationships{}
	x := NewExecutor(nil, entities, rels)

	result, err := x.Execute(context.Background(), IntroduceNPC, "universe-1", "tavern-1", "tavern")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, result.UsedFallback)
	require.Len(t, result.EntitiesCreated, 1)
	assert.NotEmpty(t, result.EntitiesCreated[0].Name)
	require.Len(t, result.RelationshipsCreated, 1)
	assert.Equal(t, worldmodel.RelLocatedIn, result.RelationshipsCreated[0].Type)
}

func TestExecute_EffectMoveHasNoEntities(t *testing.T) {
	x := NewExecutor(nil, newMemEntities(), &memRelationships{})
	result, err := x.Execute(context.Background(), DealDamage, "universe-1", "dungeon-1", "dungeon")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, result.EntitiesCreated)
}

func TestSelectMove_SoftBelowDangerHardAtOrAbove(t *testing.T) {
	assert.Equal(t, ShowDanger, SelectMove(3, 0))
	assert.Equal(t, DealDamage, SelectMove(15, 0))
}
