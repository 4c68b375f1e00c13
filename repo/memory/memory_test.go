package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xldeveloper/theinterneti-tta-solo/core"
	"github.com/xldeveloper/theinterneti-tta-solo/worldmodel"
)

func TestSaveEntity_VersionMismatchConflicts(t *testing.T) {
	store := NewTruthStore()
	e := &worldmodel.Record{ID: "npc-1", UniverseID: "root", Name: "Old Man", Type: core.EntityObject}

	v1, err := store.SaveEntity(context.Background(), e, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, v1)

	_, err = store.SaveEntity(context.Background(), e, 0)
	assert.Error(t, err)
}

func TestCreateBranch_CopiesParentEntities(t *testing.T) {
	store := NewTruthStore()
	e := &worldmodel.Record{ID: "npc-1", UniverseID: "root", Name: "Old Man", Type: core.EntityObject}
	_, err := store.SaveEntity(context.Background(), e, 0)
	require.NoError(t, err)

	require.NoError(t, store.CreateBranch(context.Background(), "root", "child-1"))

	copied, err := store.LoadEntity(context.Background(), "child-1", "npc-1")
	require.NoError(t, err)
	assert.Equal(t, "Old Man", copied.Name)
}

func TestQueryByVector_RanksByKeywordOverlap(t *testing.T) {
	graph := NewGraphStore()
	require.NoError(t, graph.UpsertNode(context.Background(), &worldmodel.Record{ID: "a", UniverseID: "root", Name: "Rusty Sword", Description: "an old blade"}))
	require.NoError(t, graph.UpsertNode(context.Background(), &worldmodel.Record{ID: "b", UniverseID: "root", Name: "Shield", Description: "a sturdy round shield"}))

	hits, err := graph.QueryByVector(context.Background(), "root", "old blade", 5)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "a", hits[0].EntityID)
}

func TestTransaction_CommitAppliesAllStaged(t *testing.T) {
	truth, graph := NewTruthStore(), NewGraphStore()
	tx := NewTransaction(truth, graph)
	e := &worldmodel.Record{ID: "npc-2", UniverseID: "root", Name: "Merchant", Type: core.EntityObject}
	tx.StageEntity(e)
	tx.StageEvent(&worldmodel.Event{UniverseID: "root", Type: worldmodel.EventQuestUpdated})

	require.NoError(t, tx.Commit(context.Background()))

	loaded, err := truth.LoadEntity(context.Background(), "root", "npc-2")
	require.NoError(t, err)
	assert.Equal(t, "Merchant", loaded.Name)
	events, err := truth.ListEvents(context.Background(), "root", "")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}
