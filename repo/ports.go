// Package repo defines the two storage ports from spec.md §4.9 —
// TruthRepo (the event-sourced world state) and GraphRepo (entity
// relationships and semantic retrieval) — plus the transaction
// protocol multi-step writers use. Concrete backends live in
// sub-packages: memory (tests), sqlitetruth (modernc.org/sqlite), and
// graphvector (mattn/go-sqlite3 + sqlite-vec).
package repo

import (
	"context"

	"github.com/xldeveloper/theinterneti-tta-solo/ability"
	"github.com/xldeveloper/theinterneti-tta-solo/worldmodel"
)

// Snapshot identifies a point-in-time materialization of a universe's
// entities, valid up to (and including) a given event id (spec.md §4.9).
type Snapshot struct {
	UniverseID      string
	UpToEventID     string
	Entities        []*worldmodel.Record
}

// TruthRepo is the event-sourced world-state port (spec.md §4.9).
// save_entity uses optimistic versioning: callers pass the version they
// last observed, and a mismatch signals a conflict. A repeat of a save
// that already succeeded is not a no-op: its expected version is now
// stale, so it fails with ConflictState.
type TruthRepo interface {
	LoadEntity(ctx context.Context, universeID, entityID string) (*worldmodel.Record, error)
	SaveEntity(ctx context.Context, e *worldmodel.Record, expectedVersion int) (newVersion int, err error)
	AppendEvent(ctx context.Context, e *worldmodel.Event) error
	ListEvents(ctx context.Context, universeID string, sinceEventID string) ([]*worldmodel.Event, error)
	CreateBranch(ctx context.Context, parentUniverseID, childUniverseID string) error
	SnapshotAt(ctx context.Context, universeID, eventID string) (*Snapshot, error)
	ListUniverses(ctx context.Context) ([]*worldmodel.Universe, error)
	SaveUniverse(ctx context.Context, u *worldmodel.Universe) error
	LoadUniverse(ctx context.Context, universeID string) (*worldmodel.Universe, error)
}

// AbilityRepo looks up Universal Ability Objects by id (spec.md §4.10's
// fixed dispatch entry "use_ability -> ability lookup + effect
// pipeline"). Abilities are content, not world state, so this is a
// separate port from TruthRepo/GraphRepo rather than folded into either.
type AbilityRepo interface {
	LoadAbility(ctx context.Context, id string) (*ability.Ability, error)
}

// QuestRepo looks up and persists Quest records by universe (spec.md
// §3's Quest type). A quest's progress is driven by the router as
// objectives are met in play, so this is a narrow port of its own
// rather than folded into TruthRepo's per-entity shape.
type QuestRepo interface {
	ActiveQuestsByUniverse(ctx context.Context, universeID string) ([]*worldmodel.Quest, error)
	SaveQuest(ctx context.Context, q *worldmodel.Quest) error
}

// GraphRepo is the entity-relationship and retrieval port (spec.md
// §4.9). Reads accept a universe id and must honour the
// lazy-divergence variant rule (multiverse.Service.Resolve implements
// that rule against this port).
type GraphRepo interface {
	UpsertNode(ctx context.Context, e *worldmodel.Record) error
	CreateRelationship(ctx context.Context, r *worldmodel.Relationship) error
	DeleteRelationship(ctx context.Context, universeID, id string) error
	QueryEntitiesAtLocation(ctx context.Context, universeID, locationID string) ([]*worldmodel.Record, error)
	QueryRelationships(ctx context.Context, universeID, entityID string) ([]*worldmodel.Relationship, error)
	QueryByVector(ctx context.Context, universeID, query string, limit int) ([]VectorHit, error)
}

// VectorHit is one semantic-retrieval result (spec.md §4.9 "query_by_vector").
type VectorHit struct {
	EntityID   string
	Content    string
	Similarity float64
}

// Tx is the multi-step transaction protocol: begin, stage writes,
// commit; failure at Commit discards every staged write atomically
// (spec.md §4.9).
type Tx interface {
	StageEntity(e *worldmodel.Record)
	StageEvent(e *worldmodel.Event)
	StageRelationship(r *worldmodel.Relationship)
	Commit(ctx context.Context) error
	Discard()
}
