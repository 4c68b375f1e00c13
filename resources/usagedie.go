package resources

import (
	"context"
	"strconv"

	"github.com/xldeveloper/theinterneti-tta-solo/dice"
	"github.com/xldeveloper/theinterneti-tta-solo/rpgerr"
)

// usageDieChain is the degradation ladder from spec.md §3/§4.6.
var usageDieChain = []int{12, 10, 8, 6, 4}

// Depleted marks a usage die with no faces left to roll.
const Depleted = 0

// UsageDie implements the usage-die resource: roll the current die; on
// a degrade-triggering result, step down to the next smaller die; a
// degrade from d4 empties the die (spec.md §4.6, §8 scenario 6).
type UsageDie struct {
	Name       string
	current    int // one of usageDieChain, or Depleted
	start      int // size Restore returns the die to
	DegradeOn  map[int]bool
}

// NewUsageDie constructs a usage die starting at the given size
// (must be one of 12, 10, 8, 6, 4) with the default degrade set {1, 2}.
func NewUsageDie(name string, startSides int) *UsageDie {
	return &UsageDie{
		Name:      name,
		current:   startSides,
		start:     startSides,
		DegradeOn: map[int]bool{1: true, 2: true},
	}
}

// Current returns the current die size, or Depleted.
func (u *UsageDie) Current() int { return u.current }

// Roll rolls the current die; if the result is in DegradeOn, the die
// steps down the chain (or depletes from d4). Rolling a depleted die
// fails with InsufficientResource (spec.md §8 boundary case).
func (u *UsageDie) Roll(ctx context.Context, roller dice.Roller) (int, error) {
	if u.current == Depleted {
		return 0, rpgerr.InsufficientResource("usage die", rpgerr.WithMeta("die", u.Name))
	}
	result, err := dice.Roll(ctx, "1d"+strconv.Itoa(u.current), roller)
	if err != nil {
		return 0, err
	}
	roll := result.Total
	if u.DegradeOn[roll] {
		u.degrade()
	}
	return roll, nil
}

func (u *UsageDie) degrade() {
	for i, sides := range usageDieChain {
		if sides == u.current {
			if i+1 < len(usageDieChain) {
				u.current = usageDieChain[i+1]
			} else {
				u.current = Depleted
			}
			return
		}
	}
}

// Restore resets the die to its starting size on long rest.
func (u *UsageDie) Restore() {
	if u.start != 0 {
		u.current = u.start
		return
	}
	if len(usageDieChain) > 0 {
		u.current = usageDieChain[0]
	}
}

// RestoreTo resets the die to a specific size, regardless of its
// starting size.
func (u *UsageDie) RestoreTo(sides int) { u.current = sides }
