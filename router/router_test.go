package router

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xldeveloper/theinterneti-tta-solo/core"
	"github.com/xldeveloper/theinterneti-tta-solo/dice"
	"github.com/xldeveloper/theinterneti-tta-solo/effects"
	"github.com/xldeveloper/theinterneti-tta-solo/moveexec"
	"github.com/xldeveloper/theinterneti-tta-solo/multiverse"
	"github.com/xldeveloper/theinterneti-tta-solo/repo/memory"
	"github.com/xldeveloper/theinterneti-tta-solo/worldmodel"
)

const universeID = "universe-1"

func seedFighter(t *testing.T, truth *memory.TruthStore, id string, hp int) *worldmodel.Record {
	t.Helper()
	record := &worldmodel.Record{
		ID: id, UniverseID: universeID, Type: core.EntityCharacter, Name: id,
		Character: worldmodel.NewCharacterStats(),
	}
	record.Character.HP = hp
	record.Character.HPMax = hp
	record.Character.AC = 12
	record.Character.Abilities[worldmodel.STR] = 16
	record.Character.Abilities[worldmodel.CHA] = 14
	record.Character.Abilities[worldmodel.WIS] = 10
	record.Character.ProficiencyBonus = 2
	_, err := truth.SaveEntity(context.Background(), record, 0)
	require.NoError(t, err)
	return record
}

func newRouter(t *testing.T, roller dice.Roller) (*Router, *memory.TruthStore) {
	t.Helper()
	truth := memory.NewTruthStore()
	graph := memory.NewGraphStore()
	abilities := memory.NewAbilityStore()
	quests := memory.NewQuestStore()
	tracker := effects.NewTracker()
	pipeline := effects.NewPipeline(tracker, roller)
	moves := moveexec.NewExecutor(nil, graph, graph)
	mv := multiverse.NewService(truth, graph)
	return New(truth, graph, roller, pipeline, moves, mv, abilities, quests), truth
}

func TestDispatch_AttackHitAppendsCombatEvent(t *testing.T) {
	roller := dice.NewFixedRoller([][]int{{20}, {6}})
	r, truth := newRouter(t, roller)
	seedFighter(t, truth, "attacker-1", 20)
	seedFighter(t, truth, "target-1", 20)

	result, err := r.Dispatch(context.Background(), TurnInput{
		Intent: IntentAttack, ActorID: "attacker-1", TargetID: "target-1", UniverseID: universeID,
	})

	require.NoError(t, err)
	require.NotNil(t, result.Skill)
	assert.True(t, result.Skill.Success)
	require.Len(t, result.Events, 1)
	assert.Equal(t, worldmodel.EventCombatRound, result.Events[0].Type)
}

func TestDispatch_UnknownActorFailsWithoutPanicking(t *testing.T) {
	roller := dice.NewFixedRoller([][]int{{10}})
	r, _ := newRouter(t, roller)

	result, err := r.Dispatch(context.Background(), TurnInput{
		Intent: IntentAttack, ActorID: "ghost", TargetID: "target-1", UniverseID: universeID,
	})

	require.NoError(t, err)
	assert.False(t, result.Skill.Success)
	assert.Equal(t, "actor not found", result.Skill.Reason)
}

func TestDispatch_UnclearIntentFailsWithoutConsumingResources(t *testing.T) {
	roller := dice.NewFixedRoller([][]int{{10}})
	r, truth := newRouter(t, roller)
	seedFighter(t, truth, "actor-1", 20)

	result, err := r.Dispatch(context.Background(), TurnInput{
		Intent: IntentUnclear, ActorID: "actor-1", UniverseID: universeID,
	})

	require.NoError(t, err)
	assert.False(t, result.Skill.Success)
	assert.Equal(t, "unclear", result.Skill.Reason)
}

func TestDispatch_PersuadeRunsCHASkillCheck(t *testing.T) {
	roller := dice.NewFixedRoller([][]int{{15}})
	r, truth := newRouter(t, roller)
	seedFighter(t, truth, "actor-1", 20)

	result, err := r.Dispatch(context.Background(), TurnInput{
		Intent: IntentPersuade, ActorID: "actor-1", UniverseID: universeID, DC: 12,
	})

	require.NoError(t, err)
	require.NotNil(t, result.Skill)
	assert.True(t, result.Skill.Success)
	assert.Equal(t, 12, result.Skill.DC)
}

func TestDispatch_RestGrantsStateChange(t *testing.T) {
	roller := dice.NewFixedRoller([][]int{{10}})
	r, truth := newRouter(t, roller)
	seedFighter(t, truth, "actor-1", 20)

	result, err := r.Dispatch(context.Background(), TurnInput{
		Intent: IntentRest, ActorID: "actor-1", UniverseID: universeID, RestTrigger: "long_rest",
	})

	require.NoError(t, err)
	assert.True(t, result.Skill.Success)
	assert.Contains(t, result.Skill.StateChanges, "rest:long_rest")
}
