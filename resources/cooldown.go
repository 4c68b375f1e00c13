package resources

import (
	"context"

	"github.com/xldeveloper/theinterneti-tta-solo/dice"
	"github.com/xldeveloper/theinterneti-tta-solo/rpgerr"
)

// CooldownTracker implements spec.md §4.6's cooldown mechanic: a fixed
// number of uses that deplete on use and can recharge on a die roll or
// on a matching rest trigger.
type CooldownTracker struct {
	Name           string
	Current        int
	Max            int
	RechargeNotation string // e.g. "1d6", matching on 5-6 recharges
	RechargeOn     func(roll int) bool
	RestoresOn     RestTrigger // which rest restores this to full
}

// NewCooldownTracker constructs a tracker at full uses.
func NewCooldownTracker(name string, maxUses int, restoresOn RestTrigger) *CooldownTracker {
	return &CooldownTracker{Name: name, Current: maxUses, Max: maxUses, RestoresOn: restoresOn}
}

// Use decrements the tracker by one use.
func (c *CooldownTracker) Use() error {
	if c.Current <= 0 {
		return rpgerr.InsufficientResource("cooldown use", rpgerr.WithMeta("cooldown", c.Name))
	}
	c.Current--
	return nil
}

// TryRecharge rolls the recharge notation and restores one use on a
// matching result (spec.md §4.6).
func (c *CooldownTracker) TryRecharge(ctx context.Context, roller dice.Roller) (recharged bool, roll int, err error) {
	if c.Current >= c.Max || c.RechargeNotation == "" {
		return false, 0, nil
	}
	result, err := dice.Roll(ctx, c.RechargeNotation, roller)
	if err != nil {
		return false, 0, err
	}
	matches := c.RechargeOn
	if matches == nil {
		matches = func(r int) bool { return r >= 5 }
	}
	if len(result.Rolls) > 0 && matches(result.Rolls[0]) {
		c.Current++
		return true, result.Rolls[0], nil
	}
	return false, result.Total, nil
}

// Rest restores all uses if the trigger matches RestoresOn.
func (c *CooldownTracker) Rest(trigger RestTrigger) {
	if trigger == c.RestoresOn || trigger == LongRest {
		c.Current = c.Max
	}
}
