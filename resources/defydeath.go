package resources

// DefyDeathTracker implements spec.md §4.6's Defy Death mechanic: a
// limited-use CON save that, on success, keeps an entity off 0 HP
// entirely. Per the open question resolved in spec.md §9, this is a
// pre-check before ordinary 5e death saves engage, not a replacement
// for them.
type DefyDeathTracker struct {
	UsesRemaining int
	MaxUses       int
}

// NewDefyDeathTracker constructs a tracker with the given max uses per
// long rest (spec.md §4.6: hard cap of 3).
func NewDefyDeathTracker(maxUses int) *DefyDeathTracker {
	return &DefyDeathTracker{UsesRemaining: maxUses, MaxUses: maxUses}
}

// DC computes the save DC for a defy-death attempt: 10 + damage taken
// this round + 5 per use already spent this rest (spec.md §4.6).
func (d *DefyDeathTracker) DC(damageThisRound int) int {
	return 10 + damageThisRound + 5*(d.MaxUses-d.UsesRemaining)
}

// Consume spends one use. Callers must check UsesRemaining > 0 first;
// spec.md §8 requires failing immediately without rolling at 0 uses.
func (d *DefyDeathTracker) Consume() bool {
	if d.UsesRemaining <= 0 {
		return false
	}
	d.UsesRemaining--
	return true
}

// Rest restores all uses on a long rest.
func (d *DefyDeathTracker) Rest() { d.UsesRemaining = d.MaxUses }
