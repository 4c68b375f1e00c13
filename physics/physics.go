// Package physics loads per-universe "physics overlay" records: YAML
// documents that let a forked universe (spec.md §4.7 Multiverse)
// diverge not just in entity state but in the rules governing damage,
// crit thresholds, and which ability sources are even permitted —
// e.g. a "low-magic" variant that disables Source=magic abilities
// outright. Grounded on the pack's gopkg.in/yaml.v3 config-loading
// convention (KirkDiggler rulebook content files, r3e node config).
package physics

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/xldeveloper/theinterneti-tta-solo/ability"
)

// Overlay is one universe's deviation from baseline 5e-on-PbtA physics.
type Overlay struct {
	UniverseID          string              `yaml:"universe_id"`
	DamageMultiplier    float64             `yaml:"damage_multiplier"`
	CriticalThreshold   int                 `yaml:"critical_threshold"` // natural roll at/above this crits; 0 means "use default 20"
	DisallowedSources   []ability.Source    `yaml:"disallowed_sources"`
	AbilityCostMultiplier float64           `yaml:"ability_cost_multiplier"`
}

// Default returns the baseline overlay (no deviation from core rules).
func Default(universeID string) *Overlay {
	return &Overlay{UniverseID: universeID, DamageMultiplier: 1.0, CriticalThreshold: 20, AbilityCostMultiplier: 1.0}
}

// Load reads one overlay document from path.
func Load(path string) (*Overlay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("physics: read overlay %s: %w", path, err)
	}
	overlay := Default("")
	if err := yaml.Unmarshal(data, overlay); err != nil {
		return nil, fmt.Errorf("physics: parse overlay %s: %w", path, err)
	}
	if overlay.CriticalThreshold == 0 {
		overlay.CriticalThreshold = 20
	}
	if overlay.DamageMultiplier == 0 {
		overlay.DamageMultiplier = 1.0
	}
	if overlay.AbilityCostMultiplier == 0 {
		overlay.AbilityCostMultiplier = 1.0
	}
	return overlay, nil
}

// AllowsSource reports whether the overlay permits abilities drawn
// from the given source.
func (o *Overlay) AllowsSource(source ability.Source) bool {
	for _, disallowed := range o.DisallowedSources {
		if disallowed == source {
			return false
		}
	}
	return true
}

// ScaleDamage applies the overlay's damage multiplier, rounding down
// and floored at zero (a multiplier can reduce damage to nothing but
// never to a negative value).
func (o *Overlay) ScaleDamage(raw int) int {
	scaled := int(float64(raw) * o.DamageMultiplier)
	if scaled < 0 {
		return 0
	}
	return scaled
}

// CritsOn reports whether a natural roll crits under this overlay.
func (o *Overlay) CritsOn(naturalRoll int) bool {
	threshold := o.CriticalThreshold
	if threshold == 0 {
		threshold = 20
	}
	return naturalRoll >= threshold
}
