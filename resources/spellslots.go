package resources

import "github.com/xldeveloper/theinterneti-tta-solo/rpgerr"

// SpellSlots tracks per-level current/max spell slot counters
// (spec.md §3 ResourcePool, §4.6 "Spell slots").
type SpellSlots struct {
	byLevel map[int]*slotLevel
}

type slotLevel struct {
	Current int
	Max     int
}

// NewSpellSlots constructs an empty slot table.
func NewSpellSlots() *SpellSlots {
	return &SpellSlots{byLevel: make(map[int]*slotLevel)}
}

// SetMax configures the maximum slots at a given spell level.
func (s *SpellSlots) SetMax(level, max int) {
	existing, ok := s.byLevel[level]
	if !ok {
		s.byLevel[level] = &slotLevel{Current: max, Max: max}
		return
	}
	existing.Max = max
	if existing.Current > max {
		existing.Current = max
	}
}

// Current returns the current/max slots at a level.
func (s *SpellSlots) Current(level int) (current, max int) {
	sl, ok := s.byLevel[level]
	if !ok {
		return 0, 0
	}
	return sl.Current, sl.Max
}

// Consume spends one slot at the given level.
func (s *SpellSlots) Consume(level int) error {
	sl, ok := s.byLevel[level]
	if !ok || sl.Current <= 0 {
		return rpgerr.InsufficientResource("spell slot", rpgerr.WithMeta("level", level))
	}
	sl.Current--
	return nil
}

// Rest restores slots: long rest only, per spec.md §4.6.
func (s *SpellSlots) Rest(trigger RestTrigger) {
	if trigger != LongRest {
		return
	}
	for _, sl := range s.byLevel {
		sl.Current = sl.Max
	}
}
