// Package worldmodel implements spec.md §3's data model: universes,
// the polymorphic Entity record, relationships, events, and quests.
// None of these types know how to persist themselves — that's the
// repo package's job — they're pure value types plus invariant checks.
package worldmodel

import (
	"time"

	"github.com/xldeveloper/theinterneti-tta-solo/rpgerr"
)

// UniverseStatus is the closed lifecycle state of a Universe.
type UniverseStatus string

const (
	// UniverseActive is a universe still accepting turns.
	UniverseActive UniverseStatus = "active"
	// UniverseArchived is retired but queryable (universes are never deleted).
	UniverseArchived UniverseStatus = "archived"
	// UniverseMerged has had its history folded back into its parent.
	UniverseMerged UniverseStatus = "merged"
)

// Universe is a branch in the multiverse DAG (spec.md §3).
type Universe struct {
	ID            string
	Branch        string
	ParentID      *string // nil for the root universe
	Depth         int
	Status        UniverseStatus
	Owner         string
	ForkPointEventID *string
	CreatedAt     time.Time
}

// Validate enforces spec.md §3's universe invariant: the root has no
// parent, and every non-root's depth is parent.depth + 1. Depth
// consistency against the actual parent is the multiverse service's
// job (it has access to the parent record); this only checks the
// shape is internally coherent.
func (u *Universe) Validate() error {
	if u.ID == "" {
		return rpgerr.BadInput("universe: id required")
	}
	if u.ParentID == nil && u.Depth != 0 {
		return rpgerr.RuleViolation("root universe must have depth 0")
	}
	if u.ParentID != nil && u.Depth < 1 {
		return rpgerr.RuleViolation("non-root universe must have depth >= 1")
	}
	return nil
}

// IsRoot reports whether this is the origin universe of the multiverse.
func (u *Universe) IsRoot() bool { return u.ParentID == nil }
