package effects

import (
	"context"
	"fmt"

	"github.com/xldeveloper/theinterneti-tta-solo/ability"
	"github.com/xldeveloper/theinterneti-tta-solo/dice"
	"github.com/xldeveloper/theinterneti-tta-solo/physics"
	"github.com/xldeveloper/theinterneti-tta-solo/rpgerr"
	"github.com/xldeveloper/theinterneti-tta-solo/worldmodel"
)

// DamageDealt is the per-target result of resolving a damage effect.
type DamageDealt struct {
	TargetID   string
	Amount     int
	DamageType string
	SavedHalf  bool
}

// ApplyResult is what apply_ability_effects produces (spec.md §4.5).
type ApplyResult struct {
	Damage               []DamageDealt
	ConditionsApplied    []*ConditionInstance
	EffectsApplied       []*ActiveEffect
	ConcentrationDropped string // prior ability ref dropped to take up this one, empty if none
}

// SaveResult carries a caller-supplied saving throw outcome per
// target, keyed by entity id. The skills package produces these; the
// pipeline only consumes the boolean outcome to avoid a package cycle
// (skills will in turn call into effects for advantage/condition
// queries).
type SaveResult struct {
	Success bool
	Roll    int
}

// Pipeline applies abilities, ticks rounds, and checks concentration
// against a shared Tracker (spec.md §4.5). Overlay carries the owning
// universe's physics deviation (SPEC_FULL.md §9: forked universes may
// scale damage or disallow whole ability sources); it defaults to the
// no-deviation baseline and is swapped per-universe by the caller.
type Pipeline struct {
	Tracker *Tracker
	Roller  dice.Roller
	Overlay *physics.Overlay
}

// NewPipeline constructs a Pipeline over a Tracker and RNG port, with
// the baseline (no-deviation) physics overlay.
func NewPipeline(tracker *Tracker, roller dice.Roller) *Pipeline {
	return &Pipeline{Tracker: tracker, Roller: roller, Overlay: physics.Default("")}
}

// WithOverlay returns a shallow copy of the pipeline bound to a
// different universe's physics overlay, so one Roller/Tracker pair can
// serve sessions whose universes have diverged physics.
func (p *Pipeline) WithOverlay(o *physics.Overlay) *Pipeline {
	clone := *p
	clone.Overlay = o
	return &clone
}

// ApplyAbilityEffects resolves an ability's effect blocks against a
// target set (spec.md §4.5): damage with save-for-half, conditions
// negated by a successful save, stat modifiers, and concentration
// bookkeeping. saveRolls is keyed by target entity id and only
// consulted for a damage block with save-for-half or a condition
// block with a save ability.
func (p *Pipeline) ApplyAbilityEffects(
	ctx context.Context,
	a *ability.Ability,
	caster *worldmodel.Record,
	targets []*worldmodel.Record,
	round int,
	saveRolls map[string]SaveResult,
) (*ApplyResult, error) {
	if a == nil {
		return nil, rpgerr.BadInput("effects: ability required")
	}
	if p.Overlay != nil && !p.Overlay.AllowsSource(a.Source) {
		return nil, rpgerr.RuleViolation("effects: ability source disallowed by this universe's physics overlay", rpgerr.WithMeta("source", a.Source))
	}
	result := &ApplyResult{}

	if a.Effects.Damage != nil {
		for _, target := range targets {
			sv := saveRolls[target.ID]
			amount, err := p.rollDamage(ctx, a.Effects.Damage.Notation)
			if err != nil {
				return nil, err
			}
			if p.Overlay != nil {
				amount = p.Overlay.ScaleDamage(amount)
			}
			savedHalf := false
			if a.Effects.Damage.SaveHalf && sv.Success {
				amount /= 2
				savedHalf = true
			}
			result.Damage = append(result.Damage, DamageDealt{
				TargetID:   target.ID,
				Amount:     amount,
				DamageType: a.Effects.Damage.DamageType,
				SavedHalf:  savedHalf,
			})
		}
	}

	if a.Effects.Condition != nil {
		ce := a.Effects.Condition
		for _, target := range targets {
			sv := saveRolls[target.ID]
			if ce.SaveAbility != "" && sv.Success {
				continue // negated by a successful save
			}
			inst := &ConditionInstance{
				ID:             fmt.Sprintf("%s-%s-%d", a.ID, target.ID, round),
				EntityID:       target.ID,
				Condition:      Condition(ce.Condition),
				DurationType:   DurationType(ce.DurationType),
				Remaining:      ce.Duration,
				AppliedAtRound: round,
				SaveAbility:    ce.SaveAbility,
				SaveDC:         ce.SaveDC,
			}
			p.Tracker.AddCondition(inst)
			result.ConditionsApplied = append(result.ConditionsApplied, inst)
		}
	}

	if a.Effects.StatModifier != nil {
		sm := a.Effects.StatModifier
		for _, target := range targets {
			eff := &ActiveEffect{
				ID:             fmt.Sprintf("%s-%s-%d-mod", a.ID, target.ID, round),
				EntityID:       target.ID,
				Stat:           sm.Stat,
				ModifierType:   ModifierType(sm.ModifierType),
				Value:          sm.Value,
				DurationType:   DurationType(sm.DurationType),
				Remaining:      sm.Duration,
				AppliedAtRound: round,
			}
			p.Tracker.AddEffect(eff)
			result.EffectsApplied = append(result.EffectsApplied, eff)
		}
	}

	if a.Concentration && caster != nil && caster.Character != nil {
		solo := caster.Character.Resources.Solo
		result.ConcentrationDropped = solo.ConcentratingOn
		if solo.ConcentratingOn != "" {
			p.dropConcentrationEffects(caster.ID, solo.ConcentratingOn)
		}
		solo.ConcentratingOn = a.ID
	}

	return result, nil
}

func (p *Pipeline) rollDamage(ctx context.Context, notation string) (int, error) {
	res, err := dice.Roll(ctx, notation, p.Roller)
	if err != nil {
		return 0, err
	}
	return res.Total, nil
}

// dropConcentrationEffects removes every ActiveEffect/ConditionInstance
// this caster applied under the prior concentration ability. Effects
// are tagged by AppliedAtRound + ability id via the instance ID prefix
// set in ApplyAbilityEffects, so matching on that prefix finds them.
func (p *Pipeline) dropConcentrationEffects(casterID, priorAbilityID string) {
	// Concentration effects are targets of the ability, not the caster;
	// the tracker is keyed by target entity, so sweep every tracked
	// entity for instances whose id was minted from priorAbilityID.
	p.Tracker.mu.Lock()
	defer p.Tracker.mu.Unlock()
	for entityID, list := range p.Tracker.conditions {
		kept := list[:0:0]
		for _, c := range list {
			if !hasPrefix(c.ID, priorAbilityID) {
				kept = append(kept, c)
			}
		}
		p.Tracker.conditions[entityID] = kept
	}
	for entityID, list := range p.Tracker.effects {
		kept := list[:0:0]
		for _, e := range list {
			if !hasPrefix(e.ID, priorAbilityID) {
				kept = append(kept, e)
			}
		}
		p.Tracker.effects[entityID] = kept
	}
	_ = casterID
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// TickCombatRound is the start-of-turn housekeeping from spec.md §4.5:
// decrement every duration-remaining counter, remove expired
// instances, and attempt an end-of-turn save for until_save
// conditions. It applies no damage-over-time and reports none; the
// only value it returns is an error.
func (p *Pipeline) TickCombatRound(ctx context.Context, entityID string, saveDCAbility func(ability string) (roll int, dc int, err error)) error {
	p.Tracker.mu.Lock()
	conds := p.Tracker.conditions[entityID]
	p.Tracker.mu.Unlock()

	var survivors []*ConditionInstance
	for _, c := range conds {
		switch c.DurationType {
		case DurationRounds, DurationMinutes:
			c.Remaining--
		case DurationUntilSave:
			if saveDCAbility != nil {
				roll, dc, err := saveDCAbility(c.SaveAbility)
				if err != nil {
					return err
				}
				if roll >= dc {
					continue // ends on a successful save
				}
			}
		}
		if !c.Expired() {
			survivors = append(survivors, c)
		}
	}

	p.Tracker.mu.Lock()
	p.Tracker.conditions[entityID] = survivors
	var survivingEffects []*ActiveEffect
	for _, e := range p.Tracker.effects[entityID] {
		switch e.DurationType {
		case DurationRounds, DurationMinutes:
			e.Remaining--
		}
		if !e.Expired() {
			survivingEffects = append(survivingEffects, e)
		}
	}
	p.Tracker.effects[entityID] = survivingEffects
	p.Tracker.mu.Unlock()
	return nil
}

// CheckConcentration rolls a CON save at DC = max(10, floor(damage/2))
// against the caster's CharacterStats; on failure the concentrated
// ability's effects are dropped (spec.md §4.5).
func (p *Pipeline) CheckConcentration(ctx context.Context, caster *worldmodel.Record, damage int) (broken bool, roll int, dc int, err error) {
	if caster == nil || caster.Character == nil {
		return false, 0, 0, rpgerr.BadInput("effects: caster with character stats required")
	}
	dc = damage / 2
	if dc < 10 {
		dc = 10
	}
	result, err := dice.Roll(ctx, "1d20", p.Roller)
	if err != nil {
		return false, 0, dc, err
	}
	roll = result.Total + caster.Character.Modifier(worldmodel.CON)
	if roll < dc {
		prior := caster.Character.Resources.Solo.ConcentratingOn
		if prior != "" {
			p.dropConcentrationEffects(caster.ID, prior)
			caster.Character.Resources.Solo.ConcentratingOn = ""
		}
		return true, roll, dc, nil
	}
	return false, roll, dc, nil
}
