package skills

import (
	"context"

	"github.com/xldeveloper/theinterneti-tta-solo/dice"
	"github.com/xldeveloper/theinterneti-tta-solo/effects"
	"github.com/xldeveloper/theinterneti-tta-solo/rpgerr"
	"github.com/xldeveloper/theinterneti-tta-solo/worldmodel"
)

// Cover is the closed set of cover bonuses applied to target AC
// (spec.md §4.2).
type Cover string

// The closed cover set.
const (
	CoverNone        Cover = "none"
	CoverHalf        Cover = "half"
	CoverThreeQuarter Cover = "three_quarter"
)

func (c Cover) bonus() int {
	switch c {
	case CoverHalf:
		return 2
	case CoverThreeQuarter:
		return 5
	default:
		return 0
	}
}

// Weapon is the subset of item stats an attack resolves against.
type Weapon struct {
	DamageNotation string
	Finesse        bool
	Ranged         bool
	ProficientWith bool
}

// AttackInput bundles everything Attack needs to resolve one swing.
// Grounded on the teacher's combat.AttackInput shape, trimmed to this
// spec's flat (non-chained) resolution.
type AttackInput struct {
	Attacker *worldmodel.CharacterStats
	Target   *worldmodel.CharacterStats
	AttackerID, TargetID string
	Weapon   Weapon
	Cover    Cover
	Tracker  *effects.Tracker // nil permitted; no condition-driven advantage applied
	CritThreshold int        // natural roll at/above this crits; 0 means the default 20 (SPEC_FULL.md §9 physics overlay)
}

// AttackResult is the outcome shape from spec.md §4.2.
type AttackResult struct {
	Hit           bool
	Critical      bool
	Fumble        bool
	AttackRoll    int
	TotalAttack   int
	Damage        int
	DamageType    string
	PbtaOutcome   Outcome
}

// Attack resolves a single weapon attack (spec.md §4.2): a natural 20
// always hits and doubles damage dice; a natural 1 always misses;
// otherwise the attacker's relevant ability modifier plus proficiency
// (if proficient) is compared to target AC plus cover.
func Attack(ctx context.Context, roller dice.Roller, in AttackInput) (*AttackResult, error) {
	if in.Attacker == nil || in.Target == nil {
		return nil, rpgerr.BadInput("skills: attacker and target required")
	}

	roll, err := rollWithAdvantage(ctx, roller, in.Tracker, in.AttackerID, in.TargetID)
	if err != nil {
		return nil, err
	}

	critThreshold := in.CritThreshold
	if critThreshold <= 0 {
		critThreshold = 20
	}

	result := &AttackResult{AttackRoll: roll}
	if roll >= critThreshold {
		result.Critical = true
		result.Hit = true
	} else if roll == 1 {
		result.Fumble = true
		result.PbtaOutcome = Miss
		return result, nil
	}

	ab := worldmodel.STR
	if in.Weapon.Finesse || in.Weapon.Ranged {
		ab = worldmodel.DEX
	}
	bonus := in.Attacker.Modifier(ab)
	if in.Weapon.ProficientWith {
		bonus += in.Attacker.ProficiencyBonus
	}
	total := roll + bonus
	result.TotalAttack = total

	targetAC := in.Target.AC + in.Cover.bonus()
	if !result.Critical {
		result.Hit = total >= targetAC
	}

	if result.Hit {
		dmg, err := rollDamage(ctx, roller, in.Weapon.DamageNotation, result.Critical)
		if err != nil {
			return nil, err
		}
		result.Damage = dmg + in.Attacker.Modifier(ab)
		if result.Critical {
			result.PbtaOutcome = StrongHit
		} else {
			result.PbtaOutcome = Success
		}
	} else {
		result.PbtaOutcome = Miss
	}
	return result, nil
}

func rollWithAdvantage(ctx context.Context, roller dice.Roller, tracker *effects.Tracker, attackerID, targetID string) (int, error) {
	if tracker == nil || attackerID == "" {
		return rollD20(ctx, roller)
	}
	switch tracker.AttackAdvantageModifier(attackerID, targetID) {
	case effects.WithAdvantage:
		rolls, err := roller.Roll(ctx, 2, 20)
		if err != nil {
			return 0, err
		}
		return max(rolls[0], rolls[1]), nil
	case effects.WithDisadvantage:
		rolls, err := roller.Roll(ctx, 2, 20)
		if err != nil {
			return 0, err
		}
		return min(rolls[0], rolls[1]), nil
	default:
		return rollD20(ctx, roller)
	}
}

func rollDamage(ctx context.Context, roller dice.Roller, notation string, critical bool) (int, error) {
	pool, err := dice.ParseNotation(notation)
	if err != nil {
		return 0, err
	}
	if critical {
		for i := range pool.Terms {
			pool.Terms[i].Count *= 2
		}
	}
	res, err := pool.Roll(ctx, roller)
	if err != nil {
		return 0, err
	}
	return res.Total, nil
}
