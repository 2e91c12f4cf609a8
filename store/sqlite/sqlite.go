/*
Package sqlite provides a SQLite-backed implementation of docstore.Store.

PURPOSE:
  Persists schemaless booking documents as JSON rows. Each document is a
  (collection, id, body) tuple; equality filters and ordering run against
  json_extract on the body, so documents keep whatever fields they were
  written with and nothing needs a migration when vocabularies drift.

KEY TABLE:
  documents: collection TEXT, id TEXT, body TEXT (JSON),
             created_at/updated_at timestamps, PK (collection, id)

INDEXES:
  idx_documents_collection: collection scans (the hot path, every view
  starts with a full-collection fetch)

CONCURRENCY:
  Uses sync.RWMutex for thread-safety, same as the in-memory store.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/agency.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  watched := docstore.NewWatcher(store)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - docstore/docstore.go: Interface definition
  - docstore/memory/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ostravel/agency-engine/docstore"
)

// Store implements docstore.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Documents (schemaless booking records, one row per document)
	CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		body TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (collection, id)
	);

	CREATE INDEX IF NOT EXISTS idx_documents_collection
		ON documents(collection);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// DOCUMENT STORE (docstore.Store interface)
// =============================================================================

// FetchAll returns every document in the collection, oldest insert first.
func (s *Store) FetchAll(ctx context.Context, collection string) ([]docstore.Document, error) {
	if collection == "" {
		return nil, docstore.ErrEmptyCollection
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, body FROM documents
		WHERE collection = ?
		ORDER BY created_at ASC, id ASC
	`

	return s.queryDocuments(ctx, query, collection)
}

// FetchWhere returns documents whose field equals the filter value.
// The comparison goes through json_extract, so nested values are reachable
// with dotted field names (e.g. "passenger.fullName").
func (s *Store) FetchWhere(ctx context.Context, collection string, filter docstore.Filter) ([]docstore.Document, error) {
	if collection == "" {
		return nil, docstore.ErrEmptyCollection
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, body FROM documents
		WHERE collection = ? AND json_extract(body, ?) = ?
		ORDER BY created_at ASC, id ASC
	`

	// The value is bound as-is: a numeric filter must compare numerically
	// against what json_extract yields, not as text.
	return s.queryDocuments(ctx, query, collection, jsonPath(filter.Field), filter.Value)
}

// FetchOrdered returns every document ordered by a body field. Documents
// missing the field sort last regardless of direction.
func (s *Store) FetchOrdered(ctx context.Context, collection string, order docstore.Order) ([]docstore.Document, error) {
	if collection == "" {
		return nil, docstore.ErrEmptyCollection
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	dir := "ASC"
	if order.Desc {
		dir = "DESC"
	}
	query := fmt.Sprintf(`
		SELECT id, body FROM documents
		WHERE collection = ?
		ORDER BY json_extract(body, ?) IS NULL ASC, json_extract(body, ?) %s, id ASC
	`, dir)

	path := jsonPath(order.Field)
	return s.queryDocuments(ctx, query, collection, path, path)
}

// Add inserts a new document with a generated id.
func (s *Store) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	if collection == "" {
		return "", docstore.ErrEmptyCollection
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	body, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}

	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO documents (collection, id, body, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		collection, id, string(body), now, now,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert document: %w", err)
	}
	return id, nil
}

// Update merges fields into the stored body. Keys absent from fields keep
// their stored values.
func (s *Store) Update(ctx context.Context, collection string, id string, fields map[string]any) error {
	if collection == "" {
		return docstore.ErrEmptyCollection
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var body string
	err := s.db.QueryRowContext(ctx,
		"SELECT body FROM documents WHERE collection = ? AND id = ?",
		collection, id,
	).Scan(&body)
	if err == sql.ErrNoRows {
		return &docstore.NotFoundError{Collection: collection, ID: id}
	}
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}

	var stored map[string]any
	if err := json.Unmarshal([]byte(body), &stored); err != nil {
		return fmt.Errorf("failed to decode stored document: %w", err)
	}
	for k, v := range fields {
		stored[k] = v
	}
	merged, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to encode merged document: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE documents SET body = ?, updated_at = ? WHERE collection = ? AND id = ?",
		string(merged), time.Now().UTC().Format(time.RFC3339), collection, id,
	)
	return err
}

// Delete removes a document. Deleting an absent id is a no-op.
func (s *Store) Delete(ctx context.Context, collection string, id string) error {
	if collection == "" {
		return docstore.ErrEmptyCollection
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"DELETE FROM documents WHERE collection = ? AND id = ?",
		collection, id,
	)
	return err
}

func (s *Store) queryDocuments(ctx context.Context, query string, args ...any) ([]docstore.Document, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []docstore.Document
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		var fields map[string]any
		if err := json.Unmarshal([]byte(body), &fields); err != nil {
			return nil, fmt.Errorf("failed to decode document %s: %w", id, err)
		}
		docs = append(docs, docstore.Document{ID: id, Fields: fields})
	}
	return docs, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM documents")
	return err
}

// CountByCollection returns document counts per collection (for admin view).
func (s *Store) CountByCollection(ctx context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT collection, COUNT(*) FROM documents GROUP BY collection",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var collection string
		var n int
		if err := rows.Scan(&collection, &n); err != nil {
			return nil, err
		}
		counts[collection] = n
	}
	return counts, rows.Err()
}

// jsonPath turns a dotted field name into a json_extract path.
func jsonPath(field string) string {
	return "$." + field
}
