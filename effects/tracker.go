package effects

import "sync"

// Tracker holds the conditions and active effects applied to entities.
// It is the in-memory store the effect pipeline reads and writes;
// persistence of its contents into the truth/graph repos is the
// router's job. Grounded on the teacher's SubscriptionTracker in
// spirit (a small bookkeeping type owned by the pipeline), adapted
// here to track game conditions rather than bus subscriptions.
type Tracker struct {
	mu         sync.Mutex
	conditions map[string][]*ConditionInstance
	effects    map[string][]*ActiveEffect
}

// NewTracker constructs an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		conditions: make(map[string][]*ConditionInstance),
		effects:    make(map[string][]*ActiveEffect),
	}
}

// AddCondition applies a condition instance to its entity.
func (t *Tracker) AddCondition(c *ConditionInstance) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.conditions[c.EntityID] = append(t.conditions[c.EntityID], c)
}

// RemoveCondition removes a condition instance by id.
func (t *Tracker) RemoveCondition(entityID, id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.conditions[entityID] = filterConditions(t.conditions[entityID], id)
}

func filterConditions(list []*ConditionInstance, excludeID string) []*ConditionInstance {
	out := list[:0:0]
	for _, c := range list {
		if c.ID != excludeID {
			out = append(out, c)
		}
	}
	return out
}

// Conditions returns the conditions currently applied to an entity.
func (t *Tracker) Conditions(entityID string) []*ConditionInstance {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*ConditionInstance(nil), t.conditions[entityID]...)
}

// HasCondition is the has_condition query helper (spec.md §4.5).
func (t *Tracker) HasCondition(entityID string, c Condition) bool {
	for _, inst := range t.Conditions(entityID) {
		if inst.Condition == c {
			return true
		}
	}
	return false
}

// AddEffect applies a stat-modifying effect to its entity.
func (t *Tracker) AddEffect(e *ActiveEffect) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.effects[e.EntityID] = append(t.effects[e.EntityID], e)
}

// Effects returns the active effects on an entity.
func (t *Tracker) Effects(entityID string) []*ActiveEffect {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*ActiveEffect(nil), t.effects[entityID]...)
}

// StatModifier folds every active effect on an entity's named stat
// into a base value, applying bonuses/penalties in application order
// and letting a later "set" win outright.
func (t *Tracker) StatModifier(entityID, stat string, base int) int {
	for _, e := range t.Effects(entityID) {
		if e.Stat == stat {
			base = e.Apply(base)
		}
	}
	return base
}

// Advantage is the net advantage/disadvantage state of a roll.
type Advantage int

// The three net-advantage states; advantage and disadvantage cancel.
const (
	Normal Advantage = iota
	WithAdvantage
	WithDisadvantage
)

// AttackAdvantageModifier is the attack_advantage_modifier query
// helper (spec.md §4.5): nets the attacker's own conditions against
// the target's conditions that grant advantage to attackers. Target
// conditions that impose disadvantage on attackers
// (DisadvantageRangedAttackers) are not counted.
func (t *Tracker) AttackAdvantageModifier(attackerID, targetID string) Advantage {
	adv, dis := 0, 0
	for _, c := range t.Conditions(attackerID) {
		r := RulesFor(c.Condition)
		if r.DisadvantageOwnAttacks {
			dis++
		}
	}
	for _, c := range t.Conditions(targetID) {
		r := RulesFor(c.Condition)
		if r.AdvantageToAttackers {
			adv++
		}
	}
	switch {
	case adv > 0 && dis == 0:
		return WithAdvantage
	case dis > 0 && adv == 0:
		return WithDisadvantage
	default:
		return Normal
	}
}

// IsIncapacitated reports whether any active condition incapacitates
// the entity (spec.md §4.5 paralyzed/stunned/unconscious deltas).
func (t *Tracker) IsIncapacitated(entityID string) bool {
	for _, c := range t.Conditions(entityID) {
		if RulesFor(c.Condition).Incapacitated {
			return true
		}
	}
	return false
}
