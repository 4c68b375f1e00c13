package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xldeveloper/theinterneti-tta-solo/dice"
	"github.com/xldeveloper/theinterneti-tta-solo/effects"
	"github.com/xldeveloper/theinterneti-tta-solo/moveexec"
	"github.com/xldeveloper/theinterneti-tta-solo/multiverse"
	"github.com/xldeveloper/theinterneti-tta-solo/repo/memory"
	"github.com/xldeveloper/theinterneti-tta-solo/router"
)

func newTestRouter() *router.Router {
	truth := memory.NewTruthStore()
	graph := memory.NewGraphStore()
	abilities := memory.NewAbilityStore()
	quests := memory.NewQuestStore()
	roller := dice.NewFixedRoller([][]int{{10}, {10}, {10}, {10}})
	tracker := effects.NewTracker()
	pipeline := effects.NewPipeline(tracker, roller)
	moves := moveexec.NewExecutor(nil, graph, graph)
	mv := multiverse.NewService(truth, graph)
	return router.New(truth, graph, roller, pipeline, moves, mv, abilities, quests)
}

func TestManager_CreateRejectsDuplicateID(t *testing.T) {
	m := NewManager(4)
	_, err := m.Create("session-1", "universe-1", newTestRouter())
	require.NoError(t, err)

	_, err = m.Create("session-1", "universe-1", newTestRouter())
	assert.Error(t, err)
}

func TestManager_CreateRejectsOverCapacity(t *testing.T) {
	m := NewManager(1)
	_, err := m.Create("session-1", "universe-1", newTestRouter())
	require.NoError(t, err)

	_, err = m.Create("session-2", "universe-1", newTestRouter())
	assert.Error(t, err)
}

func TestManager_GetUnknownSessionIsNotFound(t *testing.T) {
	m := NewManager(4)
	_, err := m.Get("missing")
	assert.Error(t, err)
}

func TestManager_DispatchManyIsolatesPerSessionErrors(t *testing.T) {
	m := NewManager(4)
	_, err := m.Create("session-1", "universe-1", newTestRouter())
	require.NoError(t, err)

	responses := m.DispatchMany(context.Background(), []TurnRequest{
		{SessionID: "session-1", Input: router.TurnInput{Intent: router.IntentUnclear, ActorID: "ghost"}},
		{SessionID: "missing-session", Input: router.TurnInput{Intent: router.IntentUnclear}},
	})

	require.Len(t, responses, 2)
	assert.NoError(t, responses[0].Err)
	assert.Error(t, responses[1].Err)
}
