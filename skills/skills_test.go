package skills

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xldeveloper/theinterneti-tta-solo/dice"
	"github.com/xldeveloper/theinterneti-tta-solo/worldmodel"
)

func charWithStr(score int) *worldmodel.CharacterStats {
	c := worldmodel.NewCharacterStats()
	c.Abilities[worldmodel.STR] = score
	c.Abilities[worldmodel.DEX] = score
	c.ProficiencyBonus = 2
	return c
}

func TestSkillCheck_ProficiencyApplies(t *testing.T) {
	roller := dice.NewFixedRoller([][]int{{10}})
	c := charWithStr(16) // +3 modifier
	c.SkillProficiencies[string(Athletics)] = true

	result, err := SkillCheck(context.Background(), roller, c, Athletics, 15)
	require.NoError(t, err)
	assert.Equal(t, 15, result.Total) // 10 + 3 + 2 proficiency
	assert.True(t, result.Success)
}

func TestClassifyCheck_Bands(t *testing.T) {
	assert.Equal(t, StrongHit, ClassifyCheck(20, 15))
	assert.Equal(t, Success, ClassifyCheck(15, 15))
	assert.Equal(t, WeakHit, ClassifyCheck(11, 15))
	assert.Equal(t, Miss, ClassifyCheck(5, 15))
}

func TestAttack_NaturalTwentyCrits(t *testing.T) {
	roller := dice.NewFixedRoller([][]int{{20}, {6, 6}})
	attacker := charWithStr(14)
	defender := charWithStr(10)
	defender.AC = 15

	result, err := Attack(context.Background(), roller, AttackInput{
		Attacker: attacker, Target: defender,
		Weapon: Weapon{DamageNotation: "1d6"},
	})
	require.NoError(t, err)
	assert.True(t, result.Critical)
	assert.True(t, result.Hit)
	assert.Equal(t, StrongHit, result.PbtaOutcome)
}

func TestAttack_NaturalOneFumbles(t *testing.T) {
	roller := dice.NewFixedRoller([][]int{{1}})
	attacker := charWithStr(14)
	defender := charWithStr(10)
	defender.AC = 15

	result, err := Attack(context.Background(), roller, AttackInput{
		Attacker: attacker, Target: defender,
		Weapon: Weapon{DamageNotation: "1d6"},
	})
	require.NoError(t, err)
	assert.True(t, result.Fumble)
	assert.False(t, result.Hit)
}

func TestAttack_CoverRaisesEffectiveAC(t *testing.T) {
	roller := dice.NewFixedRoller([][]int{{14}})
	attacker := charWithStr(14) // +2 STR
	defender := charWithStr(10)
	defender.AC = 15 // 14+2=16 would hit AC15, but +2 half cover makes it 17

	result, err := Attack(context.Background(), roller, AttackInput{
		Attacker: attacker, Target: defender,
		Weapon: Weapon{DamageNotation: "1d6"},
		Cover:   CoverHalf,
	})
	require.NoError(t, err)
	assert.False(t, result.Hit)
}
