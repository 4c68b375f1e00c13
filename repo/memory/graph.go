package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/xldeveloper/theinterneti-tta-solo/repo"
	"github.com/xldeveloper/theinterneti-tta-solo/rpgerr"
	"github.com/xldeveloper/theinterneti-tta-solo/worldmodel"
)

var _ repo.GraphRepo = (*GraphStore)(nil)

// GraphStore is an in-memory repo.GraphRepo, using a keyword-overlap
// scorer in place of true vector similarity for QueryByVector — the
// same pragmatic fallback the pack's sqlite-backed vector stores use
// before sqlite-vec is wired in.
type GraphStore struct {
	mu            sync.Mutex
	nodes         map[string]*worldmodel.Record // universeID/entityID
	relationships map[string][]*worldmodel.Relationship // universeID/entityID -> outgoing edges
}

// NewGraphStore constructs an empty in-memory GraphRepo.
func NewGraphStore() *GraphStore {
	return &GraphStore{
		nodes:         make(map[string]*worldmodel.Record),
		relationships: make(map[string][]*worldmodel.Relationship),
	}
}

func nodeKey(universeID, entityID string) string { return universeID + "/" + entityID }

// UpsertNode implements repo.GraphRepo.
func (g *GraphStore) UpsertNode(_ context.Context, e *worldmodel.Record) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nodes[nodeKey(e.UniverseID, e.ID)] = e
	return nil
}

// CreateRelationship implements repo.GraphRepo.
func (g *GraphStore) CreateRelationship(_ context.Context, r *worldmodel.Relationship) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := nodeKey(r.UniverseID, r.From)
	g.relationships[key] = append(g.relationships[key], r)
	return nil
}

// DeleteRelationship implements repo.GraphRepo.
func (g *GraphStore) DeleteRelationship(_ context.Context, universeID, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for key, edges := range g.relationships {
		kept := edges[:0:0]
		for _, e := range edges {
			if e.ID != id {
				kept = append(kept, e)
			}
		}
		g.relationships[key] = kept
	}
	return nil
}

// QueryEntitiesAtLocation implements repo.GraphRepo by following
// LOCATED_IN edges that target locationID.
func (g *GraphStore) QueryEntitiesAtLocation(_ context.Context, universeID, locationID string) ([]*worldmodel.Record, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []*worldmodel.Record
	prefix := universeID + "/"
	for key, edges := range g.relationships {
		if len(key) <= len(prefix) || key[:len(prefix)] != prefix {
			continue
		}
		for _, e := range edges {
			if e.Type == worldmodel.RelLocatedIn && e.To == locationID {
				if node, ok := g.nodes[nodeKey(universeID, e.From)]; ok {
					out = append(out, node)
				}
			}
		}
	}
	return out, nil
}

// QueryRelationships implements repo.GraphRepo.
func (g *GraphStore) QueryRelationships(_ context.Context, universeID, entityID string) ([]*worldmodel.Relationship, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*worldmodel.Relationship(nil), g.relationships[nodeKey(universeID, entityID)]...), nil
}

// FindEntity implements multiverse.GraphStore: a direct node lookup by
// (universe, entity) pair, distinct from UpsertNode's write path.
func (g *GraphStore) FindEntity(_ context.Context, universeID, entityID string) (*worldmodel.Record, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	node, ok := g.nodes[nodeKey(universeID, entityID)]
	if !ok {
		return nil, rpgerr.NotFound("entity not found", rpgerr.WithMeta("universe_id", universeID), rpgerr.WithMeta("entity_id", entityID))
	}
	return node, nil
}

// UpsertEntity implements multiverse.GraphStore as an alias of
// UpsertNode — the narrower interface names it from the entity's
// perspective rather than the graph's.
func (g *GraphStore) UpsertEntity(ctx context.Context, e *worldmodel.Record) error {
	return g.UpsertNode(ctx, e)
}

// HasVariant implements multiverse.GraphStore: reports whether any
// node in universeID carries a VARIANT_OF edge back to canonicalID,
// i.e. whether this universe has already diverged for that entity.
func (g *GraphStore) HasVariant(_ context.Context, universeID, canonicalID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	prefix := universeID + "/"
	for key, edges := range g.relationships {
		if len(key) <= len(prefix) || key[:len(prefix)] != prefix {
			continue
		}
		for _, e := range edges {
			if e.Type == worldmodel.RelVariantOf && e.To == canonicalID {
				return true, nil
			}
		}
	}
	return false, nil
}

// RelationshipsFrom implements multiverse.GraphStore as an alias of
// QueryRelationships — multiverse names the direction explicitly since
// it only ever follows outgoing edges (OWNS/CARRIES transfer, VARIANT_OF lookup).
func (g *GraphStore) RelationshipsFrom(ctx context.Context, universeID, entityID string) ([]*worldmodel.Relationship, error) {
	return g.QueryRelationships(ctx, universeID, entityID)
}

// CreateEntity implements moveexec.EntityStore as an alias of
// UpsertNode — generated entities from a GM move are graph-side
// content (a node plus a LOCATED_IN edge), not event-sourced state.
func (g *GraphStore) CreateEntity(ctx context.Context, e *worldmodel.Record) error {
	return g.UpsertNode(ctx, e)
}

// DeleteEntity implements moveexec.EntityStore's compensating-delete
// path, used when a generated entity's relationship edge fails to
// persist. Scans every universe since the caller only has the id.
func (g *GraphStore) DeleteEntity(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for key := range g.nodes {
		if strings.HasSuffix(key, "/"+id) {
			delete(g.nodes, key)
		}
	}
	return nil
}

// QueryByVector implements repo.GraphRepo using keyword overlap against
// each node's name/description/tags, ranked by match count. Callers
// that need true embedding similarity should use graphvector instead.
func (g *GraphStore) QueryByVector(_ context.Context, universeID, query string, limit int) ([]repo.VectorHit, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if limit <= 0 {
		limit = 10
	}
	keywords := strings.Fields(strings.ToLower(query))
	prefix := universeID + "/"
	var hits []repo.VectorHit
	for key, node := range g.nodes {
		if len(key) <= len(prefix) || key[:len(prefix)] != prefix {
			continue
		}
		haystack := strings.ToLower(node.Name + " " + node.Description + " " + strings.Join(node.Tags, " "))
		matches := 0
		for _, kw := range keywords {
			if strings.Contains(haystack, kw) {
				matches++
			}
		}
		if matches > 0 {
			similarity := float64(matches) / float64(len(keywords))
			hits = append(hits, repo.VectorHit{EntityID: node.ID, Content: node.Description, Similarity: similarity})
		}
	}
	sortHitsDescending(hits)
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func sortHitsDescending(hits []repo.VectorHit) {
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j-1].Similarity < hits[j].Similarity; j-- {
			hits[j-1], hits[j] = hits[j], hits[j-1]
		}
	}
}
