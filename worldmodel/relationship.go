package worldmodel

import "github.com/xldeveloper/theinterneti-tta-solo/rpgerr"

// RelationshipType is the closed set of directed edge types between
// entities (spec.md §3).
type RelationshipType string

// The closed relationship-type set.
const (
	RelKnows        RelationshipType = "KNOWS"
	RelFears        RelationshipType = "FEARS"
	RelDesires      RelationshipType = "DESIRES"
	RelLocatedIn    RelationshipType = "LOCATED_IN"
	RelOwns         RelationshipType = "OWNS"
	RelWields       RelationshipType = "WIELDS"
	RelWears        RelationshipType = "WEARS"
	RelCarries      RelationshipType = "CARRIES"
	RelContains     RelationshipType = "CONTAINS"
	RelConnectedTo  RelationshipType = "CONNECTED_TO"
	RelTrappedIn    RelationshipType = "TRAPPED_IN"
	RelVariantOf    RelationshipType = "VARIANT_OF"
	RelHasAtmosphere RelationshipType = "HAS_ATMOSPHERE"
	RelCaused       RelationshipType = "CAUSED"
)

// universeLocalTypes are relationships that do not transfer across
// universes during world travel (spec.md §4.7).
var universeLocalTypes = map[RelationshipType]bool{
	RelKnows:   true,
	RelFears:   true,
	RelDesires: true,
}

// IsUniverseLocal reports whether a relationship type is scoped to one
// universe and should not be copied during world travel.
func IsUniverseLocal(t RelationshipType) bool { return universeLocalTypes[t] }

// Relationship is a directed edge between two entities within one
// universe (spec.md §3).
type Relationship struct {
	ID         string
	UniverseID string
	From       string
	To         string
	Type       RelationshipType
	Trust      *float64 // only meaningful for KNOWS, in [-1, 1]
}

// Validate enforces the KNOWS trust-scalar bound.
func (r *Relationship) Validate() error {
	if r.From == "" || r.To == "" {
		return rpgerr.BadInput("relationship: from/to required")
	}
	if r.Type == RelKnows && r.Trust != nil {
		if *r.Trust < -1 || *r.Trust > 1 {
			return rpgerr.RuleViolation("KNOWS trust out of bounds", rpgerr.WithMeta("trust", *r.Trust))
		}
	}
	return nil
}
