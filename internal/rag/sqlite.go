package rag

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite" // register "sqlite" driver
)

// SQLiteConfig holds the location of a local on-disk vector index.
type SQLiteConfig struct {
	// Dir is the directory owning the index. The store manages the layout
	// inside it; callers only create, count, and destroy it as a whole.
	Dir string
}

// SQLiteStore implements VectorStore backed by a single local SQLite file.
// Search is an exact brute-force cosine scan over all stored fragments,
// which keeps results deterministic and needs no server — the whole KJV
// corpus is ~31k fragments, well within a single-file scan.
type SQLiteStore struct {
	// db is the underlying database connection pool.
	db *sql.DB

	// dir is the directory owning the index, removed wholesale by Destroy.
	dir string
}

// indexFileName is the database file created inside the index directory.
const indexFileName = "index.db"

// NewSQLiteStore creates (or reopens) the index at cfg.Dir, creating the
// directory and schema if needed. This is the build-time constructor; use
// OpenSQLiteStore on the query path so a missing index surfaces as
// ErrIndexNotFound instead of silently materializing empty.
func NewSQLiteStore(cfg *SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("sqlite: index directory must not be empty")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("sqlite: create index directory %s: %w", cfg.Dir, err)
	}
	return openSQLite(cfg.Dir)
}

// OpenSQLiteStore opens an existing index at cfg.Dir. If the directory or
// its database file does not exist, it fails with ErrIndexNotFound so
// callers can branch into the first-time-setup path.
func OpenSQLiteStore(cfg *SQLiteConfig) (*SQLiteStore, error) {
	path := filepath.Join(cfg.Dir, indexFileName)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("sqlite: %s: %w", cfg.Dir, ErrIndexNotFound)
		}
		return nil, fmt.Errorf("sqlite: stat %s: %w", path, err)
	}
	return openSQLite(cfg.Dir)
}

// openSQLite opens the database file inside dir and runs the schema migration.
func openSQLite(dir string) (*SQLiteStore, error) {
	path := filepath.Join(dir, indexFileName)
	// WAL mode improves concurrent read performance and is safe for single-host use.
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	// Limit to a single writer connection to avoid SQLITE_BUSY under concurrent writes.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, dir: dir}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// migrate creates the schema if it does not already exist. seq records
// insertion order and is the deterministic tie-break for equal scores.
func (s *SQLiteStore) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS fragments (
    seq       INTEGER PRIMARY KEY AUTOINCREMENT,
    id        TEXT    NOT NULL UNIQUE,
    content   TEXT    NOT NULL,
    source    TEXT    NOT NULL DEFAULT '',
    metadata  TEXT    NOT NULL DEFAULT '{}',
    embedding BLOB    NOT NULL,
    dim       INTEGER NOT NULL
);
`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}

// Upsert stores or updates a batch of fragments with their embeddings.
// The whole batch is written in one transaction; a re-upserted fragment
// keeps its original seq so tie-break order is stable across rebuilds of
// the same data.
func (s *SQLiteStore) Upsert(ctx context.Context, docs []Document, embeddings [][]float32) error {
	if len(docs) == 0 {
		return fmt.Errorf("sqlite: upsert: %w", ErrEmptyInput)
	}
	if len(docs) != len(embeddings) {
		return fmt.Errorf("sqlite: upsert: %d fragments but %d embeddings", len(docs), len(embeddings))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: upsert begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const q = `
INSERT INTO fragments (id, content, source, metadata, embedding, dim)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    content   = excluded.content,
    source    = excluded.source,
    metadata  = excluded.metadata,
    embedding = excluded.embedding,
    dim       = excluded.dim`

	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return fmt.Errorf("sqlite: upsert prepare: %w", err)
	}
	defer stmt.Close()

	for i, doc := range docs {
		meta, err := json.Marshal(doc.Metadata)
		if err != nil {
			return fmt.Errorf("sqlite: upsert marshal metadata for %s: %w", doc.ID, err)
		}
		emb := embeddings[i]
		if _, err := stmt.ExecContext(ctx, doc.ID, doc.Content, doc.Source, string(meta), encodeVector(emb), len(emb)); err != nil {
			return fmt.Errorf("sqlite: upsert %s: %w", doc.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: upsert commit: %w", err)
	}
	return nil
}

// Search performs an exact cosine similarity scan and returns the top-k
// results, highest score first, ties broken by ascending insertion order.
func (s *SQLiteStore) Search(ctx context.Context, queryEmbedding []float32, topK int) ([]Document, error) {
	const q = `SELECT seq, id, content, source, metadata, embedding FROM fragments`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("sqlite: search: %w", err)
	}
	defer rows.Close()

	type scored struct {
		doc   Document
		score float32
		seq   int64
	}
	var results []scored
	for rows.Next() {
		var (
			seq      int64
			id       string
			content  string
			source   string
			metaJSON string
			blob     []byte
		)
		if err := rows.Scan(&seq, &id, &content, &source, &metaJSON, &blob); err != nil {
			return nil, fmt.Errorf("sqlite: search scan: %w", err)
		}
		meta := make(map[string]string)
		if err := json.Unmarshal([]byte(metaJSON), &meta); err != nil {
			return nil, fmt.Errorf("sqlite: search unmarshal metadata for %s: %w", id, err)
		}
		results = append(results, scored{
			doc:   Document{ID: id, Content: content, Source: source, Metadata: meta},
			score: cosine(queryEmbedding, decodeVector(blob)),
			seq:   seq,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: search rows: %w", err)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].seq < results[j].seq
	})
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}

	docs := make([]Document, 0, len(results))
	for _, r := range results {
		r.doc.Score = r.score
		docs = append(docs, r.doc)
	}
	return docs, nil
}

// Count returns the number of fragments currently persisted.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fragments`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: count: %w", err)
	}
	return n, nil
}

// Destroy closes the store and deletes the whole index directory.
// This is the only destructive operation; there is no partial deletion.
func (s *SQLiteStore) Destroy(_ context.Context) error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("sqlite: destroy close: %w", err)
	}
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("sqlite: destroy remove %s: %w", s.dir, err)
	}
	return nil
}

// Ping verifies the database file is reachable. Used by readiness probes.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: ping: %w", err)
	}
	return nil
}

// Close releases the database connection pool.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("sqlite: close: %w", err)
	}
	return nil
}

// encodeVector serializes an embedding as little-endian float32 bytes.
func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// decodeVector is the inverse of encodeVector.
func decodeVector(buf []byte) []float32 {
	v := make([]float32, len(buf)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return v
}

// cosine computes cosine similarity between two vectors, 0 when either has
// zero magnitude or the dimensions differ.
func cosine(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
