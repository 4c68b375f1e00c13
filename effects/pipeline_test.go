package effects

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xldeveloper/theinterneti-tta-solo/ability"
	"github.com/xldeveloper/theinterneti-tta-solo/core"
	"github.com/xldeveloper/theinterneti-tta-solo/dice"
	"github.com/xldeveloper/theinterneti-tta-solo/worldmodel"
)

func target(id string) *worldmodel.Record {
	return &worldmodel.Record{ID: id, Type: core.EntityCharacter, Name: id, Character: worldmodel.NewCharacterStats()}
}

func TestApplyAbilityEffects_DamageSaveHalf(t *testing.T) {
	tracker := NewTracker()
	roller := dice.NewFixedRoller([][]int{{4, 4, 4, 4, 4, 4, 4, 4}}) // 8d6 -> 32
	p := NewPipeline(tracker, roller)

	a := &ability.Ability{
		ID:     "fireball",
		Effects: ability.Effects{Damage: &ability.DamageEffect{Notation: "8d6", DamageType: "fire", SaveHalf: true}},
	}
	tgt := target("goblin-1")
	saves := map[string]SaveResult{"goblin-1": {Success: true, Roll: 15}}

	result, err := p.ApplyAbilityEffects(context.Background(), a, nil, []*worldmodel.Record{tgt}, 1, saves)
	require.NoError(t, err)
	require.Len(t, result.Damage, 1)
	assert.True(t, result.Damage[0].SavedHalf)
	assert.Equal(t, 16, result.Damage[0].Amount)
}

func TestApplyAbilityEffects_ConditionNegatedBySave(t *testing.T) {
	tracker := NewTracker()
	p := NewPipeline(tracker, dice.NewCryptoRoller())
	a := &ability.Ability{
		ID: "hold-person",
		Effects: ability.Effects{Condition: &ability.ConditionEffect{
			Condition: "paralyzed", DurationType: "rounds", Duration: 3, SaveAbility: "WIS", SaveDC: 15,
		}},
	}
	tgt := target("npc-1")
	saves := map[string]SaveResult{"npc-1": {Success: true}}

	result, err := p.ApplyAbilityEffects(context.Background(), a, nil, []*worldmodel.Record{tgt}, 1, saves)
	require.NoError(t, err)
	assert.Empty(t, result.ConditionsApplied)
	assert.False(t, tracker.HasCondition("npc-1", Paralyzed))
}

func TestConcentration_DropsOnFailedSave(t *testing.T) {
	tracker := NewTracker()
	roller := dice.NewFixedRoller([][]int{{1}}) // forces a failed CON save
	p := NewPipeline(tracker, roller)

	caster := target("wizard-1")
	caster.Character.Abilities[worldmodel.CON] = 10
	caster.Character.Resources.Solo.ConcentratingOn = "bless"
	tracker.AddCondition(&ConditionInstance{ID: "bless-npc-1-1", EntityID: "npc-1", Condition: "blessed"})

	broken, _, _, err := p.CheckConcentration(context.Background(), caster, 20)
	require.NoError(t, err)
	assert.True(t, broken)
	assert.Empty(t, caster.Character.Resources.Solo.ConcentratingOn)
	assert.Empty(t, tracker.Conditions("npc-1"))
}

func TestTickCombatRound_ExpiresConditions(t *testing.T) {
	tracker := NewTracker()
	p := NewPipeline(tracker, dice.NewCryptoRoller())
	tracker.AddCondition(&ConditionInstance{ID: "c1", EntityID: "e1", Condition: Frightened, DurationType: DurationRounds, Remaining: 1})

	require.NoError(t, p.TickCombatRound(context.Background(), "e1", nil))
	assert.Empty(t, tracker.Conditions("e1"))
}

func TestAttackAdvantageModifier_ProneTarget(t *testing.T) {
	tracker := NewTracker()
	tracker.AddCondition(&ConditionInstance{ID: "p1", EntityID: "target-1", Condition: Prone})
	assert.Equal(t, WithAdvantage, tracker.AttackAdvantageModifier("attacker-1", "target-1"))
}
