// Package sqlitetruth implements repo.TruthRepo on top of
// modernc.org/sqlite, the pure-Go SQLite driver the pack uses for its
// service-level storage (louisbranch-fracturing.space). Branching is
// an eager copy at fork time: fork inserts one row per parent entity
// tagged with the child universe id, mirroring a git-like branch
// without needing a second database file.
package sqlitetruth

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	_ "modernc.org/sqlite"

	"github.com/xldeveloper/theinterneti-tta-solo/repo"
	"github.com/xldeveloper/theinterneti-tta-solo/rpgerr"
	"github.com/xldeveloper/theinterneti-tta-solo/worldmodel"
)

const schema = `
CREATE TABLE IF NOT EXISTS universes (
	id TEXT PRIMARY KEY,
	branch TEXT NOT NULL,
	parent_id TEXT,
	depth INTEGER NOT NULL,
	status TEXT NOT NULL,
	owner TEXT NOT NULL,
	fork_point_event_id TEXT,
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS entities (
	universe_id TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	data TEXT NOT NULL,
	version INTEGER NOT NULL,
	PRIMARY KEY (universe_id, entity_id)
);
CREATE TABLE IF NOT EXISTS events (
	id TEXT PRIMARY KEY,
	universe_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	data TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_universe_seq ON events(universe_id, seq);
`

// Store is a repo.TruthRepo backed by SQLite.
type Store struct {
	db *sql.DB
}

var _ repo.TruthRepo = (*Store)(nil)

// Open opens (creating if needed) a SQLite-backed truth store.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, rpgerr.BadInput("sqlitetruth: path required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, rpgerr.Repo(err, "open sqlite db")
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, rpgerr.Repo(err, "ping sqlite db")
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, rpgerr.Repo(err, "apply schema")
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// LoadEntity implements repo.TruthRepo.
func (s *Store) LoadEntity(ctx context.Context, universeID, entityID string) (*worldmodel.Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT data FROM entities WHERE universe_id = ? AND entity_id = ?`, universeID, entityID)
	var data string
	if err := row.Scan(&data); err != nil {
		if err == sql.ErrNoRows {
			return nil, rpgerr.NotFound("entity not found", rpgerr.WithMeta("universe_id", universeID), rpgerr.WithMeta("entity_id", entityID))
		}
		return nil, rpgerr.Repo(err, "load entity")
	}
	var record worldmodel.Record
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, rpgerr.Repo(err, "decode entity json")
	}
	return &record, nil
}

// SaveEntity implements repo.TruthRepo's optimistic versioning: a save
// whose expectedVersion differs from the stored version fails with
// ConflictState, including a repeat of a save that already succeeded.
func (s *Store) SaveEntity(ctx context.Context, e *worldmodel.Record, expectedVersion int) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, rpgerr.Repo(err, "begin tx")
	}
	defer tx.Rollback()

	var actual int
	err = tx.QueryRowContext(ctx, `SELECT version FROM entities WHERE universe_id = ? AND entity_id = ?`, e.UniverseID, e.ID).Scan(&actual)
	switch {
	case err == sql.ErrNoRows:
		actual = 0
	case err != nil:
		return 0, rpgerr.Repo(err, "read entity version")
	}
	if actual != expectedVersion {
		return 0, rpgerr.ConflictState("entity version mismatch", rpgerr.WithMeta("expected", expectedVersion), rpgerr.WithMeta("actual", actual))
	}

	data, err := json.Marshal(e)
	if err != nil {
		return 0, rpgerr.Repo(err, "encode entity json")
	}
	newVersion := expectedVersion + 1
	_, err = tx.ExecContext(ctx, `INSERT INTO entities (universe_id, entity_id, data, version) VALUES (?, ?, ?, ?)
		ON CONFLICT(universe_id, entity_id) DO UPDATE SET data = excluded.data, version = excluded.version`,
		e.UniverseID, e.ID, string(data), newVersion)
	if err != nil {
		return 0, rpgerr.Repo(err, "upsert entity")
	}
	if err := tx.Commit(); err != nil {
		return 0, rpgerr.Repo(err, "commit tx")
	}
	return newVersion, nil
}

// AppendEvent implements repo.TruthRepo. The payload map is flattened
// into the stored JSON with sjson so individual fields can later be
// patched (e.g. by a compensating correction) without a full
// unmarshal/remarshal round-trip.
func (s *Store) AppendEvent(ctx context.Context, e *worldmodel.Event) error {
	base, err := json.Marshal(e)
	if err != nil {
		return rpgerr.Repo(err, "encode event json")
	}
	doc := string(base)
	for k, v := range e.Payload {
		doc, err = sjson.Set(doc, "Payload."+k, v)
		if err != nil {
			return rpgerr.Repo(err, "patch event payload")
		}
	}
	var seq int64
	row := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM events WHERE universe_id = ?`, e.UniverseID)
	if err := row.Scan(&seq); err != nil {
		return rpgerr.Repo(err, "compute event sequence")
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO events (id, universe_id, seq, data) VALUES (?, ?, ?, ?)`, e.ID, e.UniverseID, seq, doc)
	if err != nil {
		return rpgerr.Repo(err, "insert event")
	}
	return nil
}

// ListEvents implements repo.TruthRepo, returning events strictly
// after sinceEventID in sequence order.
func (s *Store) ListEvents(ctx context.Context, universeID, sinceEventID string) ([]*worldmodel.Event, error) {
	afterSeq := int64(0)
	if sinceEventID != "" {
		row := s.db.QueryRowContext(ctx, `SELECT seq FROM events WHERE id = ?`, sinceEventID)
		if err := row.Scan(&afterSeq); err != nil {
			if err == sql.ErrNoRows {
				return nil, rpgerr.NotFound("event not found", rpgerr.WithMeta("event_id", sinceEventID))
			}
			return nil, rpgerr.Repo(err, "look up since-event sequence")
		}
	}
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM events WHERE universe_id = ? AND seq > ? ORDER BY seq ASC`, universeID, afterSeq)
	if err != nil {
		return nil, rpgerr.Repo(err, "list events")
	}
	defer rows.Close()

	var out []*worldmodel.Event
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, rpgerr.Repo(err, "scan event row")
		}
		var ev worldmodel.Event
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			return nil, rpgerr.Repo(err, "decode event json")
		}
		out = append(out, &ev)
	}
	return out, rows.Err()
}

// CreateBranch implements repo.TruthRepo: copy every entity row the
// parent owns into the child universe (spec.md §4.7's "branch
// operation on the SQL engine").
func (s *Store) CreateBranch(ctx context.Context, parentUniverseID, childUniverseID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO entities (universe_id, entity_id, data, version)
		 SELECT ?, entity_id, data, version FROM entities WHERE universe_id = ?`,
		childUniverseID, parentUniverseID)
	if err != nil {
		return rpgerr.Repo(err, "branch entities")
	}
	return nil
}

// SnapshotAt implements repo.TruthRepo. Since entities are stored at
// current state rather than per-version, a snapshot up to eventID is
// simply every entity currently owned by the universe; callers that
// need true point-in-time reconstruction should replay ListEvents
// themselves.
func (s *Store) SnapshotAt(ctx context.Context, universeID, eventID string) (*repo.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM entities WHERE universe_id = ?`, universeID)
	if err != nil {
		return nil, rpgerr.Repo(err, "snapshot entities")
	}
	defer rows.Close()
	snap := &repo.Snapshot{UniverseID: universeID, UpToEventID: eventID}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, rpgerr.Repo(err, "scan snapshot row")
		}
		var record worldmodel.Record
		if err := json.Unmarshal([]byte(data), &record); err != nil {
			return nil, rpgerr.Repo(err, "decode snapshot entity")
		}
		snap.Entities = append(snap.Entities, &record)
	}
	return snap, rows.Err()
}

// ListUniverses implements repo.TruthRepo.
func (s *Store) ListUniverses(ctx context.Context) ([]*worldmodel.Universe, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, branch, parent_id, depth, status, owner, fork_point_event_id FROM universes`)
	if err != nil {
		return nil, rpgerr.Repo(err, "list universes")
	}
	defer rows.Close()
	var out []*worldmodel.Universe
	for rows.Next() {
		var u worldmodel.Universe
		var parentID, forkEventID sql.NullString
		if err := rows.Scan(&u.ID, &u.Branch, &parentID, &u.Depth, &u.Status, &u.Owner, &forkEventID); err != nil {
			return nil, rpgerr.Repo(err, "scan universe row")
		}
		if parentID.Valid {
			u.ParentID = &parentID.String
		}
		if forkEventID.Valid {
			u.ForkPointEventID = &forkEventID.String
		}
		out = append(out, &u)
	}
	return out, rows.Err()
}

// SaveUniverse implements repo.TruthRepo.
func (s *Store) SaveUniverse(ctx context.Context, u *worldmodel.Universe) error {
	var parentID, forkEventID any
	if u.ParentID != nil {
		parentID = *u.ParentID
	}
	if u.ForkPointEventID != nil {
		forkEventID = *u.ForkPointEventID
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO universes (id, branch, parent_id, depth, status, owner, fork_point_event_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET branch=excluded.branch, status=excluded.status, fork_point_event_id=excluded.fork_point_event_id`,
		u.ID, u.Branch, parentID, u.Depth, u.Status, u.Owner, forkEventID, u.CreatedAt.Unix())
	if err != nil {
		return rpgerr.Repo(err, "save universe")
	}
	return nil
}

// LoadUniverse implements repo.TruthRepo.
func (s *Store) LoadUniverse(ctx context.Context, universeID string) (*worldmodel.Universe, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, branch, parent_id, depth, status, owner, fork_point_event_id FROM universes WHERE id = ?`, universeID)
	var u worldmodel.Universe
	var parentID, forkEventID sql.NullString
	if err := row.Scan(&u.ID, &u.Branch, &parentID, &u.Depth, &u.Status, &u.Owner, &forkEventID); err != nil {
		if err == sql.ErrNoRows {
			return nil, rpgerr.NotFound("universe not found", rpgerr.WithMeta("universe_id", universeID))
		}
		return nil, rpgerr.Repo(err, "load universe")
	}
	if parentID.Valid {
		u.ParentID = &parentID.String
	}
	if forkEventID.Valid {
		u.ForkPointEventID = &forkEventID.String
	}
	return &u, nil
}

// ListEventsByOutcome filters a universe's events by outcome without
// fully unmarshalling the rows that don't match: gjson peeks the
// Outcome field directly out of the stored JSON text.
func (s *Store) ListEventsByOutcome(ctx context.Context, universeID string, outcome worldmodel.Outcome) ([]*worldmodel.Event, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM events WHERE universe_id = ? ORDER BY seq ASC`, universeID)
	if err != nil {
		return nil, rpgerr.Repo(err, "list events by outcome")
	}
	defer rows.Close()

	var out []*worldmodel.Event
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, rpgerr.Repo(err, "scan event row")
		}
		if gjson.Get(data, "Outcome").String() != string(outcome) {
			continue
		}
		var ev worldmodel.Event
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			return nil, rpgerr.Repo(err, "decode event json")
		}
		out = append(out, &ev)
	}
	return out, rows.Err()
}
