// Package skills implements spec.md §4.2/§4.3: ability-modifier driven
// skill checks, saving throws, and attack resolution, each overlaid
// with the PbtA outcome classifier. Grounded on the teacher's
// rulebooks/dnd5e/combat attack-resolution shape (AttackInput /
// AttackResult), simplified to a direct roll-and-compare pipeline
// since this spec has no modifier-chain requirement of its own.
package skills

import (
	"context"

	"github.com/xldeveloper/theinterneti-tta-solo/dice"
	"github.com/xldeveloper/theinterneti-tta-solo/effects"
	"github.com/xldeveloper/theinterneti-tta-solo/rpgerr"
	"github.com/xldeveloper/theinterneti-tta-solo/worldmodel"
)

// Skill is the closed set of 17 5e skills (spec.md §4.2); sleight of
// hand is not among them.
type Skill string

// The closed skill set.
const (
	Athletics      Skill = "athletics"
	Acrobatics     Skill = "acrobatics"
	Stealth        Skill = "stealth"
	Arcana         Skill = "arcana"
	History        Skill = "history"
	Investigation  Skill = "investigation"
	Nature         Skill = "nature"
	Religion       Skill = "religion"
	AnimalHandling Skill = "animal_handling"
	Insight        Skill = "insight"
	Medicine       Skill = "medicine"
	Perception     Skill = "perception"
	Survival       Skill = "survival"
	Deception      Skill = "deception"
	Intimidation   Skill = "intimidation"
	Performance    Skill = "performance"
	Persuasion     Skill = "persuasion"
)

// skillAbility is the fixed skill -> ability map (spec.md §4.2).
var skillAbility = map[Skill]worldmodel.Ability{
	Athletics:      worldmodel.STR,
	Acrobatics:     worldmodel.DEX,
	Stealth:        worldmodel.DEX,
	Arcana:         worldmodel.INT,
	History:        worldmodel.INT,
	Investigation:  worldmodel.INT,
	Nature:         worldmodel.INT,
	Religion:       worldmodel.INT,
	AnimalHandling: worldmodel.WIS,
	Insight:        worldmodel.WIS,
	Medicine:       worldmodel.WIS,
	Perception:     worldmodel.WIS,
	Survival:       worldmodel.WIS,
	Deception:      worldmodel.CHA,
	Intimidation:   worldmodel.CHA,
	Performance:    worldmodel.CHA,
	Persuasion:     worldmodel.CHA,
}

// AbilityFor returns the governing ability for a skill.
func AbilityFor(s Skill) (worldmodel.Ability, bool) {
	ab, ok := skillAbility[s]
	return ab, ok
}

// CheckResult is the common shape returned by skill checks and saves
// (spec.md §4.2).
type CheckResult struct {
	Success bool
	Roll    int
	Total   int
	DC      int
	Margin  int
	Outcome effects.Advantage
}

// SkillCheck rolls 1d20 + ability modifier (+ proficiency bonus if
// proficient) against a DC (spec.md §4.2).
func SkillCheck(ctx context.Context, roller dice.Roller, c *worldmodel.CharacterStats, skill Skill, dc int) (*CheckResult, error) {
	ab, ok := AbilityFor(skill)
	if !ok {
		return nil, rpgerr.BadInput("skills: unknown skill", rpgerr.WithMeta("skill", skill))
	}
	roll, err := rollD20(ctx, roller)
	if err != nil {
		return nil, err
	}
	total := roll + c.Modifier(ab)
	if c.SkillProficiencies[string(skill)] {
		total += c.ProficiencyBonus
	}
	return &CheckResult{Success: total >= dc, Roll: roll, Total: total, DC: dc, Margin: total - dc}, nil
}

// SavingThrow rolls 1d20 + ability modifier (+ proficiency bonus if
// save-proficient) against a DC (spec.md §4.2).
func SavingThrow(ctx context.Context, roller dice.Roller, c *worldmodel.CharacterStats, ab worldmodel.Ability, dc int) (*CheckResult, error) {
	roll, err := rollD20(ctx, roller)
	if err != nil {
		return nil, err
	}
	total := roll + c.Modifier(ab)
	if c.SaveProficiencies[ab] {
		total += c.ProficiencyBonus
	}
	return &CheckResult{Success: total >= dc, Roll: roll, Total: total, DC: dc, Margin: total - dc}, nil
}

func rollD20(ctx context.Context, roller dice.Roller) (int, error) {
	rolls, err := roller.Roll(ctx, 1, 20)
	if err != nil {
		return 0, err
	}
	return rolls[0], nil
}

// Outcome is the PbtA overlay banding from spec.md §4.3.
type Outcome string

// The closed PbtA outcome set.
const (
	StrongHit Outcome = "STRONG_HIT"
	Success   Outcome = "SUCCESS"
	WeakHit   Outcome = "WEAK_HIT"
	Miss      Outcome = "MISS"
)

// ClassifyCheck applies the PbtA bands to a raw total/DC pair
// (spec.md §4.3): total >= DC+5 is a strong hit, [DC, DC+4] a success,
// DC-roll <= 5 a weak hit, otherwise a miss.
func ClassifyCheck(total, dc int) Outcome {
	switch {
	case total >= dc+5:
		return StrongHit
	case total >= dc:
		return Success
	case dc-total <= 5:
		return WeakHit
	default:
		return Miss
	}
}
