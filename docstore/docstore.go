/*
docstore.go - Persistence interface for booking documents

PURPOSE:
  Defines the interface between the views layer and the database. Documents
  are schemaless field maps grouped into named collections; all shape
  tolerance lives above this layer in the record package, so stores never
  interpret field values beyond the equality filters and ordering keys they
  are asked for.

KEY INTERFACES:
  Store:      Fetch/add/update/delete over collections
  WatchStore: Store plus change subscriptions

QUERIES:
  Filtering is equality-only on a single field. That is the entire query
  vocabulary the views need (owner email, user id, status), and keeping it
  this narrow lets every implementation serve it without a query planner.

UPDATE SEMANTICS:
  Update merges the given fields into the stored document. Absent keys are
  left untouched; a key set to nil overwrites. Update never creates a
  document.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: Production SQLite (JSON documents)
  - docstore/memory/memory.go: In-memory for testing

SEE ALSO:
  - watch.go: Subscription multiplexer layered over any Store
  - views/: The only consumer of these interfaces
*/
package docstore

import (
	"context"
	"errors"
	"fmt"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotFound is returned when the document id does not exist in the
	// collection.
	ErrNotFound = errors.New("document not found")

	// ErrEmptyCollection is returned for operations with a blank collection
	// name.
	ErrEmptyCollection = errors.New("collection name is empty")

	// ErrClosed is returned from operations on a closed store.
	ErrClosed = errors.New("store is closed")
)

// NotFoundError carries the collection and id of a failed lookup.
// It unwraps to ErrNotFound so callers can match with errors.Is.
type NotFoundError struct {
	Collection string
	ID         string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("document %s/%s not found", e.Collection, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// =============================================================================
// DOCUMENTS AND QUERIES
// =============================================================================

// Document is one stored record: an id plus its raw field map.
type Document struct {
	ID     string
	Fields map[string]any
}

// Filter is an equality condition on a single field.
type Filter struct {
	Field string
	Value any
}

// Order requests server-side ordering by one field.
type Order struct {
	Field string
	Desc  bool
}

// =============================================================================
// STORE
// =============================================================================

// Store handles persistence of schemaless documents.
type Store interface {
	// FetchAll returns every document in the collection.
	FetchAll(ctx context.Context, collection string) ([]Document, error)

	// FetchWhere returns documents whose field equals the filter value.
	FetchWhere(ctx context.Context, collection string, filter Filter) ([]Document, error)

	// FetchOrdered returns every document, ordered by the given field.
	// Documents missing the field sort last regardless of direction.
	FetchOrdered(ctx context.Context, collection string, order Order) ([]Document, error)

	// Add inserts a new document and returns its generated id.
	Add(ctx context.Context, collection string, fields map[string]any) (string, error)

	// Update merges fields into an existing document.
	// Returns a NotFoundError if the id does not exist.
	Update(ctx context.Context, collection string, id string, fields map[string]any) error

	// Delete removes a document. Deleting an absent id is a no-op.
	Delete(ctx context.Context, collection string, id string) error
}

// =============================================================================
// SUBSCRIPTIONS
// =============================================================================

// Subscription is a live feed of result snapshots. Updates delivers the
// full matching document set after every relevant change; the first
// delivery is the current state at subscribe time. The channel buffers a
// single pending snapshot, so a slow consumer only ever observes the most
// recent state, never a backlog of stale ones.
type Subscription interface {
	// Updates is closed after Unsubscribe.
	Updates() <-chan []Document

	// Unsubscribe detaches the feed. Safe to call more than once.
	Unsubscribe()
}

// WatchStore extends Store with change subscriptions.
type WatchStore interface {
	Store

	// Subscribe watches all documents in a collection. A nil filter watches
	// the whole collection; otherwise only matching documents are delivered.
	Subscribe(ctx context.Context, collection string, filter *Filter) (Subscription, error)
}
