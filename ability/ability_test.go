package ability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validFireball() *Ability {
	return &Ability{
		ID:     "fireball",
		Name:   "Fireball",
		Source: SourceMagic,
		Subtype: "evocation",
		Mechanism: MechanismSlots,
		MechanismDetails: MechanismDetails{SlotLevel: 3},
		Effects: Effects{Damage: &DamageEffect{Notation: "8d6", DamageType: "fire", SaveHalf: true}},
		Targeting: Targeting{Shape: TargetAreaSphere, Range: 150, AreaSize: 20},
		ActionCost: CostAction,
	}
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, validFireball().Validate())
}

func TestValidate_AreaRequiresSize(t *testing.T) {
	a := validFireball()
	a.Targeting.AreaSize = 0
	assert.Error(t, a.Validate())
}

func TestValidate_CooldownRequiresMaxUses(t *testing.T) {
	a := validFireball()
	a.Mechanism = MechanismCooldown
	a.MechanismDetails = MechanismDetails{MaxUses: 0}
	assert.Error(t, a.Validate())
}

func TestValidate_RequiresAnEffect(t *testing.T) {
	a := validFireball()
	a.Effects = Effects{}
	assert.Error(t, a.Validate())
}

func TestValidate_SlotLevelNonNegative(t *testing.T) {
	a := validFireball()
	a.MechanismDetails.SlotLevel = -1
	assert.Error(t, a.Validate())
}
