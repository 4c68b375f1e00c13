package resources

// SoloCombatState tracks the per-round action economy for solo play
// (spec.md §3 ResourcePool, §4.6).
type SoloCombatState struct {
	Round             int
	ActionAvailable   bool
	BonusAvailable    bool
	ReactionsRemaining int
	ConcentratingOn   string // ability/spell ref string, empty if none
}

// NewSoloCombatState constructs a state ready for round 1.
func NewSoloCombatState() *SoloCombatState {
	return &SoloCombatState{
		Round:              0,
		ActionAvailable:    true,
		BonusAvailable:     true,
		ReactionsRemaining: 1,
	}
}

// StartRound advances to the next round and resets per-turn flags
// (spec.md §4.6 step 5: "reset per-turn action flags").
func (s *SoloCombatState) StartRound() {
	s.Round++
	s.ActionAvailable = true
	s.BonusAvailable = true
	s.ReactionsRemaining = 1
}

// GrantHeroicAction adds a second action for the round. The caller is
// responsible for charging the momentum or stress cost (spec.md §4.6).
func (s *SoloCombatState) GrantHeroicAction() { s.ActionAvailable = true }

// GrantSecondReaction doubles reactions available this round, at a
// momentum cost the caller charges separately (spec.md §4.6).
func (s *SoloCombatState) GrantSecondReaction() { s.ReactionsRemaining = 2 }

// FrayDieSides returns the fray die size for a given character level
// (spec.md §4.6, §8 scenario 4).
func FrayDieSides(level int) int {
	switch {
	case level >= 13:
		return 12
	case level >= 9:
		return 10
	case level >= 5:
		return 8
	default:
		return 6
	}
}
