package worldmodel

import (
	"github.com/xldeveloper/theinterneti-tta-solo/core"
	"github.com/xldeveloper/theinterneti-tta-solo/resources"
	"github.com/xldeveloper/theinterneti-tta-solo/rpgerr"
)

// Ability is one of the six 5e ability scores (spec.md §3 Entity).
type Ability string

// The six ability scores, in SRD order.
const (
	STR Ability = "STR"
	DEX Ability = "DEX"
	CON Ability = "CON"
	INT Ability = "INT"
	WIS Ability = "WIS"
	CHA Ability = "CHA"
)

// AllAbilities lists the six scores in their canonical order.
var AllAbilities = []Ability{STR, DEX, CON, INT, WIS, CHA}

// DeathSaves tracks the 5e death-saving-throw counters.
type DeathSaves struct {
	Successes int
	Failures  int
}

// CharacterStats holds the stats substructure for EntityCharacter
// (spec.md §3).
type CharacterStats struct {
	HP               int
	HPMax            int
	AC               int
	Abilities        map[Ability]int
	ProficiencyBonus int
	Level            int
	HitDice          string // e.g. "3d8"
	DeathSaves       DeathSaves
	Resources        *resources.Pool
	Reputation       map[string]int // faction id -> signed reputation
	SkillProficiencies map[string]bool
	SaveProficiencies  map[Ability]bool
	WeaponProficiencies map[string]bool
}

// NewCharacterStats constructs stats with sane zero-state maps.
func NewCharacterStats() *CharacterStats {
	return &CharacterStats{
		Abilities:           make(map[Ability]int),
		Resources:           resources.NewPool(),
		Reputation:          make(map[string]int),
		SkillProficiencies:  make(map[string]bool),
		SaveProficiencies:   make(map[Ability]bool),
		WeaponProficiencies: make(map[string]bool),
	}
}

// Validate enforces spec.md §3's character invariants.
func (c *CharacterStats) Validate() error {
	if c.HP < 0 || c.HP > c.HPMax {
		return rpgerr.RuleViolation("hp out of bounds", rpgerr.WithMeta("hp", c.HP), rpgerr.WithMeta("hp_max", c.HPMax))
	}
	if c.Level < 1 {
		return rpgerr.RuleViolation("level must be >= 1")
	}
	for _, ab := range AllAbilities {
		score := c.Abilities[ab]
		if score < 1 || score > 30 {
			return rpgerr.RuleViolation("ability score out of bounds", rpgerr.WithMeta("ability", ab), rpgerr.WithMeta("score", score))
		}
	}
	return nil
}

// Modifier computes floor((score-10)/2) for an ability (spec.md §4.2).
func (c *CharacterStats) Modifier(ab Ability) int {
	score := c.Abilities[ab]
	return AbilityModifier(score)
}

// AbilityModifier computes floor((score-10)/2), the SRD formula.
func AbilityModifier(score int) int {
	diff := score - 10
	if diff >= 0 {
		return diff / 2
	}
	// Go's integer division truncates toward zero; floor needs an
	// adjustment for negative odd differences.
	if diff%2 != 0 {
		return diff/2 - 1
	}
	return diff / 2
}

// ProficiencyBonusForLevel derives proficiency bonus from level per
// the 5e table (spec.md §4.2).
func ProficiencyBonusForLevel(level int) int {
	switch {
	case level >= 17:
		return 6
	case level >= 13:
		return 5
	case level >= 9:
		return 4
	case level >= 5:
		return 3
	default:
		return 2
	}
}

// LocationStats holds the stats substructure for EntityLocation.
type LocationStats struct {
	Exits   map[string]string // direction -> destination entity id
	Danger  int               // 0-20
}

// NewLocationStats constructs stats with an empty exit map.
func NewLocationStats() *LocationStats {
	return &LocationStats{Exits: make(map[string]string)}
}

// Validate enforces the danger-level bound (spec.md §3).
func (l *LocationStats) Validate() error {
	if l.Danger < 0 || l.Danger > 20 {
		return rpgerr.RuleViolation("danger level out of bounds", rpgerr.WithMeta("danger", l.Danger))
	}
	return nil
}

// ItemStats holds the stats substructure for EntityItem.
type ItemStats struct {
	Weight     float64
	Value      int
	DamageDice string // mutually informative with ArmorClass
	ArmorClass int
	Active     bool // false once lost
}

// Record is the polymorphic Entity (spec.md §3): one struct, a
// discriminant Type field, and at most one populated stats pointer.
// This mirrors the teacher's "tagged variant, not inheritance" pattern
// (spec.md §9 design note).
type Record struct {
	ID          string
	UniverseID  string
	Type        core.EntityType
	Name        string
	Tags        []string
	Description string

	Character *CharacterStats
	Location  *LocationStats
	Item      *ItemStats
}

// GetID implements core.Entity.
func (r *Record) GetID() string { return r.ID }

// GetType implements core.Entity.
func (r *Record) GetType() core.EntityType { return r.Type }

var _ core.Entity = (*Record)(nil)

// HasHP reports whether this entity tracks hit points (capability
// check over the tagged variant, spec.md §9).
func (r *Record) HasHP() bool { return r.Character != nil }

// Validate dispatches to the populated variant's invariants.
func (r *Record) Validate() error {
	if r.ID == "" {
		return rpgerr.BadInput("entity: id required")
	}
	if r.Name == "" {
		return rpgerr.BadInput("entity: name required")
	}
	switch r.Type {
	case core.EntityCharacter:
		if r.Character == nil {
			return rpgerr.RuleViolation("character entity missing character stats")
		}
		return r.Character.Validate()
	case core.EntityLocation:
		if r.Location == nil {
			return rpgerr.RuleViolation("location entity missing location stats")
		}
		return r.Location.Validate()
	case core.EntityItem, core.EntityFaction, core.EntityObject:
		return nil
	default:
		return rpgerr.BadInput("entity: unknown type", rpgerr.WithMeta("type", r.Type))
	}
}
