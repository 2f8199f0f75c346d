package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite" // pure-Go SQLite driver, no CGO
)

// Store is the transactional chunk+vector store for one project.
// It is single-writer (db.SetMaxOpenConns(1)) and single-process-at-a-time
// (guarded by an advisory file lock), matching spec.md §4.C5's concurrency
// contract: CLI and MCP-server processes may each hold the store in turn,
// never concurrently.
type Store struct {
	mu     sync.Mutex
	db     *sql.DB
	path   string
	lock   *flock.Flock
	closed bool
}

// validateIntegrity checks an existing database file before it is opened
// for writing. A missing file is not corruption: it simply hasn't been
// created yet.
func validateIntegrity(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return fmt.Errorf("opening for validation: %w", err)
	}
	defer func() { _ = db.Close() }()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("database corrupted: %s", result)
	}
	return nil
}

// Open creates or opens the store at path, initializing its schema if
// absent. Safe to call repeatedly (spec.md's `initialize(projectRoot)`).
// A corrupted database is detected and cleared rather than surfaced as a
// fatal error, since the store can always be rebuilt from the project's
// knowledge files.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory %s: %w", dir, err)
	}

	if err := validateIntegrity(path); err != nil {
		slog.Warn("store index corrupted, clearing for rebuild",
			slog.String("path", path), slog.String("error", err.Error()))
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			return nil, fmt.Errorf("clearing corrupted store %s: %w (original: %v)", path, rmErr, err)
		}
		_ = os.Remove(path + "-wal")
		_ = os.Remove(path + "-shm")
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring store lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("store %s is locked by another process", path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("opening store %s: %w", path, err)
	}

	// Single writer to prevent lock contention; WAL allows concurrent
	// readers while a transaction is in flight.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, path: path, lock: lock}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return s, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS files (
	path          TEXT PRIMARY KEY,
	hash          TEXT NOT NULL,
	source_type   TEXT NOT NULL,
	importance    INTEGER NOT NULL DEFAULT 5,
	access_count  INTEGER NOT NULL DEFAULT 0,
	last_accessed TEXT,
	indexed_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS chunks (
	id           TEXT PRIMARY KEY,
	source_file  TEXT NOT NULL REFERENCES files(path) ON DELETE CASCADE,
	source_type  TEXT NOT NULL,
	content      TEXT NOT NULL,
	heading      TEXT NOT NULL DEFAULT '',
	type         TEXT NOT NULL,
	priority     INTEGER NOT NULL,
	section_path TEXT NOT NULL DEFAULT '',
	vector       BLOB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chunks_source_file ON chunks(source_file);
CREATE INDEX IF NOT EXISTS idx_chunks_source_type ON chunks(source_type);

CREATE TABLE IF NOT EXISTS metadata (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

func (s *Store) initSchema() error {
	_, err := s.db.Exec(schema)
	return err
}

// UpsertFile atomically replaces path's chunks and file record: delete any
// prior chunks and file row for path, then insert the new ones. A crash
// mid-upsert leaves the prior state, per spec.md §4.C5.
func (s *Store) UpsertFile(ctx context.Context, f File, chunks []Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("store is closed")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE source_file = ?`, f.Path); err != nil {
		return fmt.Errorf("deleting prior chunks for %s: %w", f.Path, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM files WHERE path = ?`, f.Path); err != nil {
		return fmt.Errorf("deleting prior file record for %s: %w", f.Path, err)
	}

	now := time.Now().UTC()
	if f.IndexedAt.IsZero() {
		f.IndexedAt = now
	}
	lastAccessed := any(nil)
	if !f.LastAccessed.IsZero() {
		lastAccessed = f.LastAccessed.UTC().Format(time.RFC3339Nano)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO files (path, hash, source_type, importance, access_count, last_accessed, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.Path, f.Hash, string(f.SourceType), f.Importance, f.AccessCount, lastAccessed,
		f.IndexedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("inserting file record for %s: %w", f.Path, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, source_file, source_type, content, heading, type, priority, section_path, vector)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing chunk insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, c := range chunks {
		if len(c.Content) == 0 {
			continue // spec.md §7: zero-length chunk content is skipped
		}
		if _, err := stmt.ExecContext(ctx, c.ID, f.Path, string(f.SourceType), c.Content,
			c.Heading, c.Type, c.Priority, c.SectionPath, encodeVector(c.Vector)); err != nil {
			return fmt.Errorf("inserting chunk %s: %w", c.ID, err)
		}
	}

	return tx.Commit()
}

// RemoveFile deletes path's file record and all its chunks, transactionally.
func (s *Store) RemoveFile(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("store is closed")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE source_file = ?`, path); err != nil {
		return fmt.Errorf("deleting chunks for %s: %w", path, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM files WHERE path = ?`, path); err != nil {
		return fmt.Errorf("deleting file record for %s: %w", path, err)
	}
	return tx.Commit()
}

// RemoveFiles deletes every path's file record and chunks inside a single
// transaction, used by retention (spec.md §4.C8: "the union of both sets is
// deleted in one transaction").
func (s *Store) RemoveFiles(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("store is closed")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	chunkStmt, err := tx.PrepareContext(ctx, `DELETE FROM chunks WHERE source_file = ?`)
	if err != nil {
		return fmt.Errorf("preparing chunk delete: %w", err)
	}
	defer func() { _ = chunkStmt.Close() }()

	fileStmt, err := tx.PrepareContext(ctx, `DELETE FROM files WHERE path = ?`)
	if err != nil {
		return fmt.Errorf("preparing file delete: %w", err)
	}
	defer func() { _ = fileStmt.Close() }()

	for _, path := range paths {
		if _, err := chunkStmt.ExecContext(ctx, path); err != nil {
			return fmt.Errorf("deleting chunks for %s: %w", path, err)
		}
		if _, err := fileStmt.ExecContext(ctx, path); err != nil {
			return fmt.Errorf("deleting file record for %s: %w", path, err)
		}
	}
	return tx.Commit()
}

// ListFiles returns every stored file record.
func (s *Store) ListFiles(ctx context.Context) ([]File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT path, hash, source_type, importance, access_count, last_accessed, indexed_at
		FROM files ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var files []File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// GetFile returns the file record at path, or (File{}, false, nil) if absent.
func (s *Store) GetFile(ctx context.Context, path string) (File, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return File{}, false, fmt.Errorf("store is closed")
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT path, hash, source_type, importance, access_count, last_accessed, indexed_at
		FROM files WHERE path = ?`, path)
	f, err := scanFile(row)
	if err == sql.ErrNoRows {
		return File{}, false, nil
	}
	if err != nil {
		return File{}, false, fmt.Errorf("reading file %s: %w", path, err)
	}
	return f, true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (File, error) {
	var f File
	var sourceType string
	var lastAccessed, indexedAt sql.NullString
	if err := row.Scan(&f.Path, &f.Hash, &sourceType, &f.Importance, &f.AccessCount,
		&lastAccessed, &indexedAt); err != nil {
		return File{}, err
	}
	f.SourceType = SourceType(sourceType)
	if lastAccessed.Valid {
		f.LastAccessed, _ = time.Parse(time.RFC3339Nano, lastAccessed.String)
	}
	if indexedAt.Valid {
		f.IndexedAt, _ = time.Parse(time.RFC3339Nano, indexedAt.String)
	}
	return f, nil
}

// ListChunks returns every stored chunk, optionally filtered to sourceTypes.
// Vectors are decoded and populated.
func (s *Store) ListChunks(ctx context.Context, sourceTypes []SourceType) ([]Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	query := `SELECT id, source_file, source_type, content, heading, type, priority, section_path, vector FROM chunks`
	args := make([]any, 0, len(sourceTypes))
	if len(sourceTypes) > 0 {
		placeholders := ""
		for i, st := range sourceTypes {
			if i > 0 {
				placeholders += ","
			}
			placeholders += "?"
			args = append(args, string(st))
		}
		query += fmt.Sprintf(" WHERE source_type IN (%s)", placeholders)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing chunks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var chunks []Chunk
	for rows.Next() {
		var c Chunk
		var sourceType string
		var vectorBlob []byte
		if err := rows.Scan(&c.ID, &c.SourceFile, &sourceType, &c.Content, &c.Heading,
			&c.Type, &c.Priority, &c.SectionPath, &vectorBlob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		c.SourceType = SourceType(sourceType)
		c.Vector = decodeVector(vectorBlob)
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// Touch increments access_count and sets last_accessed = now for paths.
func (s *Store) Touch(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("store is closed")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE files SET access_count = access_count + 1, last_accessed = ? WHERE path = ?`)
	if err != nil {
		return fmt.Errorf("preparing touch statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, p := range paths {
		if _, err := stmt.ExecContext(ctx, now, p); err != nil {
			return fmt.Errorf("touching %s: %w", p, err)
		}
	}
	return tx.Commit()
}

// GetMetadata returns the scalar metadata key/value table.
func (s *Store) GetMetadata(ctx context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM metadata`)
	if err != nil {
		return nil, fmt.Errorf("reading metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scanning metadata row: %w", err)
		}
		meta[k] = v
	}
	return meta, rows.Err()
}

// SetModelID persists the embedder's model identifier.
func (s *Store) SetModelID(ctx context.Context, id string) error {
	return s.setMetadata(ctx, "model_id", id)
}

func (s *Store) setMetadata(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("store is closed")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("setting metadata %s: %w", key, err)
	}
	return nil
}

// Clear drops all chunks and file records. Used on model change and
// explicit reset; metadata (including model_id) is left for the caller to
// overwrite via SetModelID.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("store is closed")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks`); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM files`); err != nil {
		return fmt.Errorf("clearing files: %w", err)
	}
	return tx.Commit()
}

// Close releases the underlying database handle, checkpointing WAL first.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	closeErr := s.db.Close()
	if s.lock != nil {
		_ = s.lock.Unlock()
	}
	return closeErr
}

// encodeVector serializes a float32 vector as little-endian bytes.
func encodeVector(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// decodeVector is the inverse of encodeVector.
func decodeVector(b []byte) []float32 {
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
