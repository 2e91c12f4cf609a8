package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/ostravel/agency-engine/docstore"
)

func TestMemory_AddFetchRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := New()

	// GIVEN two documents added to a collection
	id1, err := m.Add(ctx, "bookings", map[string]any{"fullName": "A", "userEmail": "a@x.com"})
	if err != nil {
		t.Fatal(err)
	}
	id2, err := m.Add(ctx, "bookings", map[string]any{"fullName": "B", "userEmail": "b@x.com"})
	if err != nil {
		t.Fatal(err)
	}
	if id1 == id2 {
		t.Fatal("ids must be unique")
	}

	// WHEN fetching all
	docs, err := m.FetchAll(ctx, "bookings")
	if err != nil {
		t.Fatal(err)
	}

	// THEN both come back in insertion order
	if len(docs) != 2 || docs[0].ID != id1 || docs[1].ID != id2 {
		t.Fatalf("unexpected fetch result: %+v", docs)
	}

	// AND mutating the returned fields does not touch the store
	docs[0].Fields["fullName"] = "mutated"
	again, _ := m.FetchAll(ctx, "bookings")
	if again[0].Fields["fullName"] != "A" {
		t.Fatal("store leaked internal state")
	}
}

func TestMemory_FetchWhereEquality(t *testing.T) {
	ctx := context.Background()
	m := New()
	m.Add(ctx, "bookings", map[string]any{"userEmail": "a@x.com"})
	m.Add(ctx, "bookings", map[string]any{"userEmail": "b@x.com"})
	m.Add(ctx, "bookings", map[string]any{"userEmail": "a@x.com"})

	// WHEN filtering by owner
	docs, err := m.FetchWhere(ctx, "bookings", docstore.Filter{Field: "userEmail", Value: "a@x.com"})
	if err != nil {
		t.Fatal(err)
	}

	// THEN only matching documents return
	if len(docs) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(docs))
	}
}

func TestMemory_FetchOrderedMissingFieldLast(t *testing.T) {
	ctx := context.Background()
	m := New()
	m.Add(ctx, "bookings", map[string]any{"createdAt": "2026-01-02T00:00:00Z", "n": "mid"})
	m.Add(ctx, "bookings", map[string]any{"n": "none"})
	m.Add(ctx, "bookings", map[string]any{"createdAt": "2026-01-03T00:00:00Z", "n": "new"})

	// WHEN ordering by createdAt descending
	docs, err := m.FetchOrdered(ctx, "bookings", docstore.Order{Field: "createdAt", Desc: true})
	if err != nil {
		t.Fatal(err)
	}

	// THEN newest first, and the document without the field sorts last
	got := []string{}
	for _, d := range docs {
		got = append(got, d.Fields["n"].(string))
	}
	if got[0] != "new" || got[1] != "mid" || got[2] != "none" {
		t.Fatalf("unexpected order: %v", got)
	}
}

func TestMemory_FetchOrderedNegativeNumbers(t *testing.T) {
	ctx := context.Background()
	m := New()
	m.Add(ctx, "bookings", map[string]any{"balance": float64(-50), "n": "small"})
	m.Add(ctx, "bookings", map[string]any{"balance": float64(200), "n": "big"})
	m.Add(ctx, "bookings", map[string]any{"balance": float64(-300), "n": "smallest"})

	// WHEN ordering by a numeric field ascending
	docs, err := m.FetchOrdered(ctx, "bookings", docstore.Order{Field: "balance"})
	if err != nil {
		t.Fatal(err)
	}

	// THEN negatives order by magnitude correctly
	got := []string{}
	for _, d := range docs {
		got = append(got, d.Fields["n"].(string))
	}
	if got[0] != "smallest" || got[1] != "small" || got[2] != "big" {
		t.Fatalf("unexpected numeric order: %v", got)
	}
}

func TestMemory_UpdateMergesFields(t *testing.T) {
	ctx := context.Background()
	m := New()
	id, _ := m.Add(ctx, "bookings", map[string]any{"fullName": "A", "country": "Turkey"})

	// WHEN updating one field
	if err := m.Update(ctx, "bookings", id, map[string]any{"country": "Egypt"}); err != nil {
		t.Fatal(err)
	}

	// THEN the untouched field survives the merge
	docs, _ := m.FetchAll(ctx, "bookings")
	if docs[0].Fields["fullName"] != "A" || docs[0].Fields["country"] != "Egypt" {
		t.Fatalf("unexpected merge result: %+v", docs[0].Fields)
	}

	// AND updating a missing id reports not found
	err := m.Update(ctx, "bookings", "nope", map[string]any{"x": 1})
	if !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var nf *docstore.NotFoundError
	if !errors.As(err, &nf) || nf.ID != "nope" {
		t.Fatalf("expected NotFoundError with id, got %v", err)
	}
}

func TestMemory_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m := New()
	id, _ := m.Add(ctx, "bookings", map[string]any{"fullName": "A"})

	if err := m.Delete(ctx, "bookings", id); err != nil {
		t.Fatal(err)
	}
	// Deleting again is a no-op, not an error
	if err := m.Delete(ctx, "bookings", id); err != nil {
		t.Fatal(err)
	}
	docs, _ := m.FetchAll(ctx, "bookings")
	if len(docs) != 0 {
		t.Fatalf("expected empty collection, got %d docs", len(docs))
	}
}
