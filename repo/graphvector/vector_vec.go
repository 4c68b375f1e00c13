//go:build sqlite_vec && cgo

package graphvector

import (
	"context"
	"database/sql"
	"hash/fnv"
	"math"

	vec "github.com/asg017/sqlite-vec-go-bindings/cgo"

	"github.com/xldeveloper/theinterneti-tta-solo/repo"
	"github.com/xldeveloper/theinterneti-tta-solo/worldmodel"
)

const embeddingDims = 32

func init() {
	vec.Auto()
	vectorInit = initVectorTable
	vectorIndex = indexNodeVector
	vectorSearch = searchByVector
}

func initVectorTable(db *sql.DB) error {
	_, err := db.Exec(`CREATE VIRTUAL TABLE IF NOT EXISTS node_vectors USING vec0(entity_id TEXT PRIMARY KEY, universe_id TEXT, embedding FLOAT[32])`)
	return err
}

func indexNodeVector(db *sql.DB, e *worldmodel.Record) error {
	embedding := embed(e.Name + " " + e.Description)
	blob, err := vec.SerializeFloat32(embedding)
	if err != nil {
		return err
	}
	_, err = db.Exec(`INSERT INTO node_vectors (entity_id, universe_id, embedding) VALUES (?, ?, ?)
		ON CONFLICT(entity_id) DO UPDATE SET embedding = excluded.embedding`,
		e.ID, e.UniverseID, blob)
	return err
}

func searchByVector(ctx context.Context, db *sql.DB, universeID, query string, limit int) ([]repo.VectorHit, error) {
	queryEmbedding := embed(query)
	blob, err := vec.SerializeFloat32(queryEmbedding)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx,
		`SELECT v.entity_id, n.description, distance
		 FROM node_vectors v
		 JOIN nodes n ON n.entity_id = v.entity_id AND n.universe_id = v.universe_id
		 WHERE v.embedding MATCH ? AND v.universe_id = ? AND k = ?
		 ORDER BY distance`,
		blob, universeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []repo.VectorHit
	for rows.Next() {
		var hit repo.VectorHit
		var distance float64
		if err := rows.Scan(&hit.EntityID, &hit.Content, &distance); err != nil {
			return nil, err
		}
		hit.Similarity = 1 / (1 + distance)
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

// embed is a deterministic bag-of-hashed-tokens embedding. No
// embedding model is specified anywhere in this system; this exists
// only to exercise sqlite-vec's ANN index mechanics end to end. Swap
// in a real embedding call (e.g. through the llm.Port) before relying
// on QueryByVector for actual semantic retrieval.
func embed(text string) []float32 {
	vector := make([]float32, embeddingDims)
	h := fnv.New32a()
	for _, field := range splitWords(text) {
		h.Reset()
		_, _ = h.Write([]byte(field))
		bucket := h.Sum32() % embeddingDims
		vector[bucket] += 1
	}
	normalize(vector)
	return vector
}

func splitWords(text string) []string {
	var words []string
	var current []byte
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == ' ' || c == '\t' || c == '\n' {
			if len(current) > 0 {
				words = append(words, string(current))
				current = nil
			}
			continue
		}
		current = append(current, c)
	}
	if len(current) > 0 {
		words = append(words, string(current))
	}
	return words
}

func normalize(v []float32) {
	var sumSquares float64
	for _, x := range v {
		sumSquares += float64(x) * float64(x)
	}
	if sumSquares == 0 {
		return
	}
	norm := float32(math.Sqrt(sumSquares))
	for i := range v {
		v[i] /= norm
	}
}
