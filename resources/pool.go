// Package resources implements spec.md §4.6: spell slots, cooldown
// trackers, usage dice, the stress/momentum pool, defy-death, and the
// solo-combat action economy layered on top. Mirrors the teacher's
// resources.Pool — plain organized storage, no cross-cutting logic.
package resources

import "github.com/xldeveloper/theinterneti-tta-solo/rpgerr"

// RestTrigger names what kind of rest is restoring resources.
type RestTrigger string

const (
	// ShortRest restores cooldowns marked for it; usage dice are not
	// restored on a short rest.
	ShortRest RestTrigger = "short_rest"
	// LongRest restores spell slots, cooldowns, usage dice and
	// defy-death uses; stress and momentum are left as they are.
	LongRest RestTrigger = "long_rest"
)

// Pool is the full per-entity resource set named in spec.md §3
// ResourcePool: spell slots, cooldowns, usage dice, stress/momentum,
// defy-death, and solo-combat turn state.
type Pool struct {
	SpellSlots   *SpellSlots
	Cooldowns    map[string]*CooldownTracker
	UsageDice    map[string]*UsageDie
	StressMomentum *StressMomentum
	DefyDeath    *DefyDeathTracker
	Solo         *SoloCombatState
}

// NewPool constructs an empty resource pool with zero-value subsystems.
func NewPool() *Pool {
	return &Pool{
		SpellSlots:     NewSpellSlots(),
		Cooldowns:      make(map[string]*CooldownTracker),
		UsageDice:      make(map[string]*UsageDie),
		StressMomentum: NewStressMomentum(100, 10),
		DefyDeath:      NewDefyDeathTracker(3),
		Solo:           NewSoloCombatState(),
	}
}

// AddCooldown registers a named cooldown tracker.
func (p *Pool) AddCooldown(name string, c *CooldownTracker) { p.Cooldowns[name] = c }

// AddUsageDie registers a named usage die.
func (p *Pool) AddUsageDie(name string, u *UsageDie) { p.UsageDice[name] = u }

// Rest applies a rest trigger to every subsystem that responds to it.
func (p *Pool) Rest(trigger RestTrigger) {
	p.SpellSlots.Rest(trigger)
	for _, c := range p.Cooldowns {
		c.Rest(trigger)
	}
	for _, u := range p.UsageDice {
		if trigger == LongRest {
			u.Restore()
		}
	}
	if trigger == LongRest {
		p.DefyDeath.Rest()
	}
}

// errNilPool is returned by helpers given a nil pool.
var errNilPool = rpgerr.BadInput("resources: nil pool")
