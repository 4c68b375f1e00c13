// Package multiverse implements spec.md §4.7: universe forking, lazy
// variant divergence, and cross-universe world travel.
package multiverse

import (
	"context"

	"github.com/google/uuid"

	"github.com/xldeveloper/theinterneti-tta-solo/rpgerr"
	"github.com/xldeveloper/theinterneti-tta-solo/worldmodel"
)

// TruthStore is the narrow slice of TruthRepo (spec.md §4.9) this
// package needs: universe bookkeeping and branch creation.
type TruthStore interface {
	SaveUniverse(ctx context.Context, u *worldmodel.Universe) error
	CreateBranch(ctx context.Context, parentUniverseID, childUniverseID string) error
	AppendEvent(ctx context.Context, e *worldmodel.Event) error
}

// GraphStore is the narrow slice of GraphRepo this package needs: node
// lookup honouring the lazy-divergence rule, and variant/ownership
// edges.
type GraphStore interface {
	FindEntity(ctx context.Context, universeID, entityID string) (*worldmodel.Record, error)
	UpsertEntity(ctx context.Context, e *worldmodel.Record) error
	HasVariant(ctx context.Context, universeID, canonicalID string) (bool, error)
	CreateRelationship(ctx context.Context, r *worldmodel.Relationship) error
	RelationshipsFrom(ctx context.Context, universeID, entityID string) ([]*worldmodel.Relationship, error)
}

// Service implements fork_universe, variant creation, and world
// travel (spec.md §4.7).
type Service struct {
	Truth TruthStore
	Graph GraphStore
}

// NewService builds a multiverse Service over the truth/graph ports.
func NewService(truth TruthStore, graph GraphStore) *Service {
	return &Service{Truth: truth, Graph: graph}
}

// ForkUniverse creates a child universe branching off parent (spec.md
// §4.7): inserts the universe row, asks the truth store to branch its
// state, and appends a FORK event cross-referencing both universes.
// The graph store is not asked to duplicate any node.
func (s *Service) ForkUniverse(ctx context.Context, parent *worldmodel.Universe, childID, branchName, reason, actor string) (*worldmodel.Universe, error) {
	if parent == nil {
		return nil, rpgerr.BadInput("multiverse: parent universe required")
	}
	child := &worldmodel.Universe{
		ID:       childID,
		Branch:   branchName,
		ParentID: &parent.ID,
		Depth:    parent.Depth + 1,
		Status:   worldmodel.UniverseActive,
		Owner:    actor,
	}
	if err := child.Validate(); err != nil {
		return nil, err
	}
	if err := s.Truth.SaveUniverse(ctx, child); err != nil {
		return nil, rpgerr.Wrap(err, "multiverse: save child universe")
	}
	if err := s.Truth.CreateBranch(ctx, parent.ID, child.ID); err != nil {
		return nil, rpgerr.Wrap(err, "multiverse: branch truth store")
	}

	parentEvent := &worldmodel.Event{ID: uuid.NewString(), UniverseID: parent.ID, Type: worldmodel.EventFork, Outcome: worldmodel.OutcomeNeutral, Payload: map[string]any{"reason": reason, "child_universe_id": child.ID}}
	childEvent := &worldmodel.Event{ID: uuid.NewString(), UniverseID: child.ID, Type: worldmodel.EventFork, Outcome: worldmodel.OutcomeNeutral, Payload: map[string]any{"reason": reason, "parent_universe_id": parent.ID}}
	if err := s.Truth.AppendEvent(ctx, parentEvent); err != nil {
		return nil, rpgerr.Wrap(err, "multiverse: append parent fork event")
	}
	if err := s.Truth.AppendEvent(ctx, childEvent); err != nil {
		return nil, rpgerr.Wrap(err, "multiverse: append child fork event")
	}
	return child, nil
}

// Resolve implements the lazy-divergence read rule (spec.md §4.7):
// return the node whose universe id matches universeID if present;
// otherwise, if a canonical node exists and no variant has been
// created in universeID, return the canonical.
func (s *Service) Resolve(ctx context.Context, universeID, canonicalUniverseID, entityID string) (*worldmodel.Record, error) {
	if local, err := s.Graph.FindEntity(ctx, universeID, entityID); err == nil && local != nil {
		return local, nil
	}
	hasVariant, err := s.Graph.HasVariant(ctx, universeID, entityID)
	if err != nil {
		return nil, rpgerr.Wrap(err, "multiverse: check variant existence")
	}
	if hasVariant {
		return nil, rpgerr.NotFound("multiverse: variant expected but not found", rpgerr.WithMeta("entity_id", entityID))
	}
	canonical, err := s.Graph.FindEntity(ctx, canonicalUniverseID, entityID)
	if err != nil {
		return nil, rpgerr.Wrap(err, "multiverse: load canonical entity")
	}
	return canonical, nil
}

// Diverge creates a universe-local variant of a canonical entity on
// its first mutation within a non-canonical universe (spec.md §4.7):
// a new node with a VARIANT_OF edge, which thereafter shadows the
// canonical for that universe.
func (s *Service) Diverge(ctx context.Context, universeID string, canonical *worldmodel.Record) (*worldmodel.Record, error) {
	if canonical == nil {
		return nil, rpgerr.BadInput("multiverse: canonical entity required")
	}
	variant := *canonical
	variant.UniverseID = universeID
	if err := s.Graph.UpsertEntity(ctx, &variant); err != nil {
		return nil, rpgerr.Wrap(err, "multiverse: upsert variant")
	}
	edge := &worldmodel.Relationship{
		ID:         variant.ID + "-variant-of-" + canonical.ID,
		UniverseID: universeID,
		From:       variant.ID,
		To:         canonical.ID,
		Type:       worldmodel.RelVariantOf,
	}
	if err := s.Graph.CreateRelationship(ctx, edge); err != nil {
		return nil, rpgerr.Wrap(err, "multiverse: create variant-of edge")
	}
	return &variant, nil
}

// WorldTravel copies a character entity into a destination universe,
// places it at a named portal location, and transfers OWNS/CARRIES
// edges but not KNOWS/FEARS/DESIRES (universe-local relationships
// never travel, spec.md §4.7). Emits a WORLD_TRAVEL event in both
// universes.
func (s *Service) WorldTravel(ctx context.Context, character *worldmodel.Record, destUniverseID, destEntityID, portalLocationID string) (*worldmodel.Record, error) {
	if character == nil || character.Character == nil {
		return nil, rpgerr.BadInput("multiverse: traveling character required")
	}
	copied := *character
	copied.ID = destEntityID
	copied.UniverseID = destUniverseID
	if err := s.Graph.UpsertEntity(ctx, &copied); err != nil {
		return nil, rpgerr.Wrap(err, "multiverse: upsert traveled character")
	}

	located := &worldmodel.Relationship{
		ID:         copied.ID + "-located-in-" + portalLocationID,
		UniverseID: destUniverseID,
		From:       copied.ID,
		To:         portalLocationID,
		Type:       worldmodel.RelLocatedIn,
	}
	if err := s.Graph.CreateRelationship(ctx, located); err != nil {
		return nil, rpgerr.Wrap(err, "multiverse: locate traveled character")
	}

	existing, err := s.Graph.RelationshipsFrom(ctx, character.UniverseID, character.ID)
	if err != nil {
		return nil, rpgerr.Wrap(err, "multiverse: list origin relationships")
	}
	for _, rel := range existing {
		if rel.Type != worldmodel.RelOwns && rel.Type != worldmodel.RelCarries {
			continue // KNOWS/FEARS/DESIRES and everything else stay universe-local
		}
		transferred := &worldmodel.Relationship{
			ID:         copied.ID + "-" + string(rel.Type) + "-" + rel.To,
			UniverseID: destUniverseID,
			From:       copied.ID,
			To:         rel.To,
			Type:       rel.Type,
		}
		if err := s.Graph.CreateRelationship(ctx, transferred); err != nil {
			return nil, rpgerr.Wrap(err, "multiverse: transfer relationship")
		}
	}

	originEvent := &worldmodel.Event{ID: uuid.NewString(), UniverseID: character.UniverseID, ActorID: character.ID, Type: worldmodel.EventWorldTravel, Outcome: worldmodel.OutcomeNeutral, Payload: map[string]any{"dest_universe_id": destUniverseID}}
	destEvent := &worldmodel.Event{ID: uuid.NewString(), UniverseID: destUniverseID, ActorID: copied.ID, Type: worldmodel.EventWorldTravel, Outcome: worldmodel.OutcomeNeutral, Payload: map[string]any{"origin_universe_id": character.UniverseID}}
	if err := s.Truth.AppendEvent(ctx, originEvent); err != nil {
		return nil, rpgerr.Wrap(err, "multiverse: append origin travel event")
	}
	if err := s.Truth.AppendEvent(ctx, destEvent); err != nil {
		return nil, rpgerr.Wrap(err, "multiverse: append destination travel event")
	}
	return &copied, nil
}
