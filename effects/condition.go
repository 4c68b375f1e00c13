// Package effects implements spec.md §4.5's effect pipeline: condition
// instances, active (stat-modifying) effects, concentration tracking,
// and the round tick that decrements durations. Conditions are
// expressed as data-driven rule deltas rather than one type per
// condition, the same tagged-variant spirit as worldmodel.Record and
// ability.Ability use for their own closed sets.
package effects

import "github.com/xldeveloper/theinterneti-tta-solo/rpgerr"

// DurationType is the closed set of expiry rules (spec.md §3).
type DurationType string

// The closed duration-type set.
const (
	DurationRounds     DurationType = "rounds"
	DurationMinutes    DurationType = "minutes"
	DurationUntilSave  DurationType = "until_save"
	DurationUntilRest  DurationType = "until_rest"
	DurationPermanent  DurationType = "permanent"
)

// Condition is the closed, extended SRD condition set (spec.md §4.5).
type Condition string

// The closed condition set: 15 SRD conditions plus extensions.
const (
	Blinded       Condition = "blinded"
	Charmed       Condition = "charmed"
	Deafened      Condition = "deafened"
	Frightened    Condition = "frightened"
	Grappled      Condition = "grappled"
	Incapacitated Condition = "incapacitated"
	Invisible     Condition = "invisible"
	Paralyzed     Condition = "paralyzed"
	Petrified     Condition = "petrified"
	Poisoned      Condition = "poisoned"
	Prone         Condition = "prone"
	Restrained    Condition = "restrained"
	Stunned       Condition = "stunned"
	Unconscious   Condition = "unconscious"
	Exhaustion    Condition = "exhaustion" // leveled 1-6 via ConditionInstance.Level
)

// Rules is the rule-delta set a condition applies at attack/save/
// movement sites (spec.md §4.5).
type Rules struct {
	DisadvantageOwnAttacks    bool
	AdvantageToAttackers      bool
	DisadvantageRangedAttackers bool // e.g. prone: ranged attackers vs this entity roll disadvantage
	AutoCritMelee             bool   // paralyzed: melee hits against this entity are automatic crits
	Incapacitated             bool   // can take no actions or reactions
	CannotMove                bool
	SpeedZero                 bool
	AutoFailSTRDexSaves       bool // petrified, paralyzed, unconscious
	AutoFailStrengthChecks    bool
}

// ruleTable is the closed mapping from condition to rule delta
// (spec.md §4.5: "blinded -> disadvantage on own attacks and advantage
// to attackers; prone -> ...; paralyzed -> incapacitated + auto-crit
// on melee hits").
var ruleTable = map[Condition]Rules{
	Blinded:       {DisadvantageOwnAttacks: true, AdvantageToAttackers: true},
	Charmed:       {},
	Deafened:      {},
	Frightened:    {DisadvantageOwnAttacks: true},
	Grappled:      {SpeedZero: true},
	Incapacitated: {Incapacitated: true},
	Invisible:     {AdvantageToAttackers: false},
	Paralyzed:     {Incapacitated: true, CannotMove: true, AutoFailSTRDexSaves: true, AutoCritMelee: true},
	Petrified:     {Incapacitated: true, CannotMove: true, AutoFailSTRDexSaves: true},
	Poisoned:      {DisadvantageOwnAttacks: true, AutoFailStrengthChecks: true},
	Prone:         {DisadvantageOwnAttacks: true, AdvantageToAttackers: true, DisadvantageRangedAttackers: true},
	Restrained:    {DisadvantageOwnAttacks: true, AdvantageToAttackers: true},
	Stunned:       {Incapacitated: true, CannotMove: true, AutoFailSTRDexSaves: true},
	Unconscious:   {Incapacitated: true, CannotMove: true, AutoFailSTRDexSaves: true, AutoCritMelee: true},
	Exhaustion:    {},
}

// RulesFor returns the rule delta for a condition. Unknown conditions
// return the zero Rules (no deltas).
func RulesFor(c Condition) Rules { return ruleTable[c] }

// ConditionInstance is a condition applied to one entity (spec.md §3).
type ConditionInstance struct {
	ID             string
	EntityID       string
	Condition      Condition
	Level          int // exhaustion level 1-6; unused otherwise
	DurationType   DurationType
	Remaining      int
	AppliedAtRound int
	SaveAbility    string // ability abbreviation, e.g. "CON"
	SaveDC         int
}

// Expired reports whether this instance has run out its duration.
// Permanent and until_save instances never expire by tick alone.
func (c *ConditionInstance) Expired() bool {
	switch c.DurationType {
	case DurationRounds, DurationMinutes:
		return c.Remaining <= 0
	default:
		return false
	}
}

func (c *ConditionInstance) Validate() error {
	if c.EntityID == "" {
		return rpgerr.BadInput("condition: entity id required")
	}
	if c.Condition == "" {
		return rpgerr.BadInput("condition: condition required")
	}
	return nil
}
