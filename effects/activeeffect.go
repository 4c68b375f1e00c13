package effects

import "github.com/xldeveloper/theinterneti-tta-solo/rpgerr"

// ModifierType is the closed set of stat-modifier kinds (spec.md §3).
type ModifierType string

// The closed modifier-type set.
const (
	ModifierBonus   ModifierType = "bonus"
	ModifierPenalty ModifierType = "penalty"
	ModifierSet     ModifierType = "set"
)

// ActiveEffect is a timed stat modification applied to one entity
// (spec.md §3).
type ActiveEffect struct {
	ID             string
	EntityID       string
	Stat           string
	ModifierType   ModifierType
	Value          int
	DurationType   DurationType
	Remaining      int
	AppliedAtRound int
}

// Apply folds this effect's modifier into a base stat value.
func (e *ActiveEffect) Apply(base int) int {
	switch e.ModifierType {
	case ModifierBonus:
		return base + e.Value
	case ModifierPenalty:
		return base - e.Value
	case ModifierSet:
		return e.Value
	default:
		return base
	}
}

func (e *ActiveEffect) Expired() bool {
	switch e.DurationType {
	case DurationRounds, DurationMinutes:
		return e.Remaining <= 0
	default:
		return false
	}
}

func (e *ActiveEffect) Validate() error {
	if e.EntityID == "" {
		return rpgerr.BadInput("active effect: entity id required")
	}
	if e.Stat == "" {
		return rpgerr.BadInput("active effect: stat required")
	}
	return nil
}
