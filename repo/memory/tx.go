package memory

import (
	"context"

	"github.com/xldeveloper/theinterneti-tta-solo/repo"
	"github.com/xldeveloper/theinterneti-tta-solo/worldmodel"
)

var _ repo.Tx = (*Transaction)(nil)

// Transaction is an in-memory repo.Tx: writes stage in memory and only
// reach the stores on Commit, which applies them in order and does not
// roll back a partial apply (see Commit) — the in-memory analogue of
// "begin -> stage writes -> commit" (spec.md §4.9).
type Transaction struct {
	truth  *TruthStore
	graph  *GraphStore
	entities []*worldmodel.Record
	events   []*worldmodel.Event
	relationships []*worldmodel.Relationship
}

// NewTransaction begins a transaction over the given stores.
func NewTransaction(truth *TruthStore, graph *GraphStore) *Transaction {
	return &Transaction{truth: truth, graph: graph}
}

// StageEntity implements repo.Tx.
func (t *Transaction) StageEntity(e *worldmodel.Record) { t.entities = append(t.entities, e) }

// StageEvent implements repo.Tx.
func (t *Transaction) StageEvent(e *worldmodel.Event) { t.events = append(t.events, e) }

// StageRelationship implements repo.Tx.
func (t *Transaction) StageRelationship(r *worldmodel.Relationship) {
	t.relationships = append(t.relationships, r)
}

// Commit applies every staged write. If any write fails partway, the
// stores may hold a partial set; callers that need strict atomicity
// should validate stageable content before committing, since the
// in-memory backends have no native rollback.
func (t *Transaction) Commit(ctx context.Context) error {
	for _, e := range t.events {
		if err := t.truth.AppendEvent(ctx, e); err != nil {
			return err
		}
	}
	for _, e := range t.entities {
		if _, err := t.truth.SaveEntity(ctx, e, currentVersion(t.truth, e)); err != nil {
			return err
		}
		if err := t.graph.UpsertNode(ctx, e); err != nil {
			return err
		}
	}
	for _, r := range t.relationships {
		if err := t.graph.CreateRelationship(ctx, r); err != nil {
			return err
		}
	}
	t.Discard()
	return nil
}

// Discard drops every staged write without applying it.
func (t *Transaction) Discard() {
	t.entities = nil
	t.events = nil
	t.relationships = nil
}

func currentVersion(truth *TruthStore, e *worldmodel.Record) int {
	truth.mu.Lock()
	defer truth.mu.Unlock()
	if ve, ok := truth.entities[entityKey(e.UniverseID, e.ID)]; ok {
		return ve.version
	}
	return 0
}
