// Package ability implements the Universal Ability Object (UAO) from
// spec.md §3/§4.2: a single schema that expresses magic, tech, and
// martial abilities instead of one hierarchy per source, mirroring the
// teacher's tagged-variant approach to polymorphic game data
// (worldmodel.Record plays the same role for entities).
package ability

import "github.com/xldeveloper/theinterneti-tta-solo/rpgerr"

// Source is the closed set of ability origins.
type Source string

// The closed source set.
const (
	SourceMagic   Source = "magic"
	SourceTech    Source = "tech"
	SourceMartial Source = "martial"
)

// Mechanism is the closed set of resource mechanisms an ability can draw on.
type Mechanism string

// The closed mechanism set.
const (
	MechanismSlots     Mechanism = "slots"
	MechanismCooldown  Mechanism = "cooldown"
	MechanismUsageDie  Mechanism = "usage_die"
	MechanismStress    Mechanism = "stress"
	MechanismMomentum  Mechanism = "momentum"
	MechanismFree      Mechanism = "free"
)

// ActionCost is the closed set of action economy costs.
type ActionCost string

// The closed action-cost set.
const (
	CostAction  ActionCost = "action"
	CostBonus   ActionCost = "bonus"
	CostReaction ActionCost = "reaction"
	CostFree    ActionCost = "free"
)

// TargetShape is the closed set of targeting descriptors.
type TargetShape string

// The closed targeting-shape set.
const (
	TargetSelf       TargetShape = "self"
	TargetSingle     TargetShape = "single"
	TargetMultiple   TargetShape = "multiple"
	TargetAreaSphere TargetShape = "area-sphere"
	TargetAreaCone   TargetShape = "area-cone"
	TargetAreaLine   TargetShape = "area-line"
	TargetAreaCube   TargetShape = "area-cube"
)

func (t TargetShape) isArea() bool {
	switch t {
	case TargetAreaSphere, TargetAreaCone, TargetAreaLine, TargetAreaCube:
		return true
	default:
		return false
	}
}

// Targeting describes how an ability selects its targets.
type Targeting struct {
	Shape    TargetShape
	Range    int
	AreaSize int // required when Shape.isArea()
}

// MechanismDetails carries the fields relevant to one Mechanism. Only
// the fields matching the owning Ability's Mechanism are meaningful;
// this mirrors spec.md §3's "mechanism-details keyed to the mechanism."
type MechanismDetails struct {
	SlotLevel       int // MechanismSlots
	MaxUses         int // MechanismCooldown
	RechargeNotation string
	UsageDieSides   int // MechanismUsageDie
	StressCost      int // MechanismStress
	MomentumCost    int // MechanismMomentum
}

// DamageEffect describes a damage-dealing effect block.
type DamageEffect struct {
	Notation   string
	DamageType string
	SaveHalf   bool
}

// HealingEffect describes a healing effect block.
type HealingEffect struct {
	Notation string
}

// ConditionEffect applies a named condition to the target set.
type ConditionEffect struct {
	Condition    string
	DurationType string
	Duration     int
	SaveAbility  string
	SaveDC       int
}

// StatModifierEffect modifies a named stat for a duration.
type StatModifierEffect struct {
	Stat         string
	ModifierType string // bonus | penalty | set
	Value        int
	DurationType string
	Duration     int
}

// Effects bundles the optional effect blocks an ability may carry. At
// least one must be populated (spec.md §3 validation rule).
type Effects struct {
	Damage        *DamageEffect
	Healing       *HealingEffect
	Condition     *ConditionEffect
	StatModifier  *StatModifierEffect
}

func (e *Effects) any() bool {
	return e.Damage != nil || e.Healing != nil || e.Condition != nil || e.StatModifier != nil
}

// Ability is the UAO: one schema spanning magic/tech/martial sources
// (spec.md §3).
type Ability struct {
	ID              string
	Name            string
	Source          Source
	Subtype         string
	Mechanism       Mechanism
	MechanismDetails MechanismDetails
	Effects         Effects
	Targeting       Targeting
	ActionCost      ActionCost
	Concentration   bool
}

// Validate enforces spec.md §3's UAO validation rules: slots require
// level >= 0; cooldown requires max_uses >= 1; at least one effect
// must be present; area targeting requires an area size.
func (a *Ability) Validate() error {
	if a.ID == "" {
		return rpgerr.BadInput("ability: id required")
	}
	if a.Name == "" {
		return rpgerr.BadInput("ability: name required")
	}
	switch a.Mechanism {
	case MechanismSlots:
		if a.MechanismDetails.SlotLevel < 0 {
			return rpgerr.RuleViolation("slot level must be >= 0", rpgerr.WithMeta("slot_level", a.MechanismDetails.SlotLevel))
		}
	case MechanismCooldown:
		if a.MechanismDetails.MaxUses < 1 {
			return rpgerr.RuleViolation("cooldown max_uses must be >= 1", rpgerr.WithMeta("max_uses", a.MechanismDetails.MaxUses))
		}
	case MechanismUsageDie, MechanismStress, MechanismMomentum, MechanismFree:
		// no additional constraint
	default:
		return rpgerr.BadInput("ability: unknown mechanism", rpgerr.WithMeta("mechanism", a.Mechanism))
	}
	if !a.Effects.any() {
		return rpgerr.RuleViolation("ability must carry at least one effect")
	}
	if a.Targeting.Shape.isArea() && a.Targeting.AreaSize <= 0 {
		return rpgerr.RuleViolation("area targeting requires area_size", rpgerr.WithMeta("shape", a.Targeting.Shape))
	}
	return nil
}
