//go:build !(sqlite_vec && cgo)

package graphvector

import (
	"context"
	"database/sql"

	"github.com/xldeveloper/theinterneti-tta-solo/repo"
	"github.com/xldeveloper/theinterneti-tta-solo/worldmodel"
)

// vectorInit, vectorIndex, and vectorSearch are left nil outside the
// sqlite_vec build: Store.Open/UpsertNode/QueryByVector treat a nil
// hook as "use the keyword fallback."
var (
	vectorInit   func(db *sql.DB) error
	vectorIndex  func(db *sql.DB, e *worldmodel.Record) error
	vectorSearch func(ctx context.Context, db *sql.DB, universeID, query string, limit int) ([]repo.VectorHit, error)
)
