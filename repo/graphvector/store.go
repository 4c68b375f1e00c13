// Package graphvector implements repo.GraphRepo on mattn/go-sqlite3 (a
// cgo driver, needed because sqlite-vec ships as a SQLite loadable
// extension that only the cgo driver can register). QueryByVector uses
// real vector similarity when built with `-tags sqlite_vec,cgo`
// (see vector_vec.go / vector_default.go); otherwise it falls back to
// the same keyword-overlap search theRebelliousNerd-codenerd's
// LocalStore.VectorRecall uses, so the package works everywhere and
// only gets faster/more precise with the build tag.
package graphvector

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/xldeveloper/theinterneti-tta-solo/repo"
	"github.com/xldeveloper/theinterneti-tta-solo/rpgerr"
	"github.com/xldeveloper/theinterneti-tta-solo/worldmodel"
)

const schema = `
CREATE TABLE IF NOT EXISTS nodes (
	universe_id TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	name TEXT NOT NULL,
	description TEXT NOT NULL,
	tags TEXT NOT NULL,
	data TEXT NOT NULL,
	PRIMARY KEY (universe_id, entity_id)
);
CREATE TABLE IF NOT EXISTS relationships (
	id TEXT PRIMARY KEY,
	universe_id TEXT NOT NULL,
	from_id TEXT NOT NULL,
	to_id TEXT NOT NULL,
	type TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_rel_from ON relationships(universe_id, from_id);
CREATE INDEX IF NOT EXISTS idx_rel_to ON relationships(universe_id, to_id, type);
`

// Store is a repo.GraphRepo backed by SQLite via the cgo driver.
type Store struct {
	db *sql.DB
}

var _ repo.GraphRepo = (*Store)(nil)

// Open opens (creating if needed) a SQLite-backed graph store.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, rpgerr.BadInput("graphvector: path required")
	}
	db, err := sql.Open("sqlite3", filepath.Clean(path))
	if err != nil {
		return nil, rpgerr.Repo(err, "open sqlite3 db")
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, rpgerr.Repo(err, "ping sqlite3 db")
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, rpgerr.Repo(err, "apply schema")
	}
	if vectorInit != nil {
		if err := vectorInit(db); err != nil {
			_ = db.Close()
			return nil, rpgerr.Repo(err, "initialize vector index")
		}
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// UpsertNode implements repo.GraphRepo.
func (s *Store) UpsertNode(ctx context.Context, e *worldmodel.Record) error {
	data, err := json.Marshal(e)
	if err != nil {
		return rpgerr.Repo(err, "encode node json")
	}
	tags := strings.Join(e.Tags, " ")
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO nodes (universe_id, entity_id, name, description, tags, data) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(universe_id, entity_id) DO UPDATE SET name=excluded.name, description=excluded.description, tags=excluded.tags, data=excluded.data`,
		e.UniverseID, e.ID, e.Name, e.Description, tags, string(data))
	if err != nil {
		return rpgerr.Repo(err, "upsert node")
	}
	if vectorIndex != nil {
		if err := vectorIndex(s.db, e); err != nil {
			return rpgerr.Repo(err, "index node for vector search")
		}
	}
	return nil
}

// CreateRelationship implements repo.GraphRepo.
func (s *Store) CreateRelationship(ctx context.Context, r *worldmodel.Relationship) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO relationships (id, universe_id, from_id, to_id, type) VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.UniverseID, r.From, r.To, r.Type)
	if err != nil {
		return rpgerr.Repo(err, "create relationship")
	}
	return nil
}

// DeleteRelationship implements repo.GraphRepo.
func (s *Store) DeleteRelationship(ctx context.Context, universeID, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM relationships WHERE universe_id = ? AND id = ?`, universeID, id)
	if err != nil {
		return rpgerr.Repo(err, "delete relationship")
	}
	return nil
}

// QueryEntitiesAtLocation implements repo.GraphRepo.
func (s *Store) QueryEntitiesAtLocation(ctx context.Context, universeID, locationID string) ([]*worldmodel.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT n.data FROM nodes n
		 JOIN relationships r ON r.universe_id = n.universe_id AND r.from_id = n.entity_id
		 WHERE n.universe_id = ? AND r.to_id = ? AND r.type = ?`,
		universeID, locationID, worldmodel.RelLocatedIn)
	if err != nil {
		return nil, rpgerr.Repo(err, "query entities at location")
	}
	defer rows.Close()
	var out []*worldmodel.Record
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, rpgerr.Repo(err, "scan node row")
		}
		var record worldmodel.Record
		if err := json.Unmarshal([]byte(data), &record); err != nil {
			return nil, rpgerr.Repo(err, "decode node json")
		}
		out = append(out, &record)
	}
	return out, rows.Err()
}

// QueryRelationships implements repo.GraphRepo.
func (s *Store) QueryRelationships(ctx context.Context, universeID, entityID string) ([]*worldmodel.Relationship, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, from_id, to_id, type FROM relationships WHERE universe_id = ? AND from_id = ?`, universeID, entityID)
	if err != nil {
		return nil, rpgerr.Repo(err, "query relationships")
	}
	defer rows.Close()
	var out []*worldmodel.Relationship
	for rows.Next() {
		r := &worldmodel.Relationship{UniverseID: universeID}
		if err := rows.Scan(&r.ID, &r.From, &r.To, &r.Type); err != nil {
			return nil, rpgerr.Repo(err, "scan relationship row")
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// QueryByVector implements repo.GraphRepo. When built with
// `-tags sqlite_vec,cgo`, vectorSearch performs similarity search over
// the hashed-token embedding built in vector_vec.go; otherwise this
// falls back to a keyword-overlap
// scan over name/description/tags, same as theRebelliousNerd's
// LocalStore.VectorRecall.
func (s *Store) QueryByVector(ctx context.Context, universeID, query string, limit int) ([]repo.VectorHit, error) {
	if limit <= 0 {
		limit = 10
	}
	if vectorSearch != nil {
		return vectorSearch(ctx, s.db, universeID, query, limit)
	}
	return s.keywordFallback(ctx, universeID, query, limit)
}

func (s *Store) keywordFallback(ctx context.Context, universeID, query string, limit int) ([]repo.VectorHit, error) {
	keywords := strings.Fields(strings.ToLower(query))
	if len(keywords) == 0 {
		return nil, nil
	}
	conditions := make([]string, 0, len(keywords))
	args := []any{universeID}
	for _, kw := range keywords {
		conditions = append(conditions, "(LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(tags) LIKE ?)")
		pattern := "%" + kw + "%"
		args = append(args, pattern, pattern, pattern)
	}
	sqlQuery := fmt.Sprintf(`SELECT entity_id, description FROM nodes WHERE universe_id = ? AND (%s) LIMIT ?`, strings.Join(conditions, " OR "))
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, rpgerr.Repo(err, "keyword fallback search")
	}
	defer rows.Close()
	var hits []repo.VectorHit
	for rows.Next() {
		var hit repo.VectorHit
		if err := rows.Scan(&hit.EntityID, &hit.Content); err != nil {
			return nil, rpgerr.Repo(err, "scan keyword fallback row")
		}
		hit.Similarity = 1.0 // keyword match has no graded score
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}
