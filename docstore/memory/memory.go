// Package memory provides an in-memory docstore.Store (for testing/dev).
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ostravel/agency-engine/docstore"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]any
	order       map[string][]string // insertion order of ids per collection
}

func New() *Memory {
	return &Memory{
		collections: make(map[string]map[string]map[string]any),
		order:       make(map[string][]string),
	}
}

func (m *Memory) FetchAll(_ context.Context, collection string) ([]docstore.Document, error) {
	if collection == "" {
		return nil, docstore.ErrEmptyCollection
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []docstore.Document
	for _, id := range m.order[collection] {
		out = append(out, docstore.Document{ID: id, Fields: copyFields(m.collections[collection][id])})
	}
	return out, nil
}

func (m *Memory) FetchWhere(ctx context.Context, collection string, filter docstore.Filter) ([]docstore.Document, error) {
	all, err := m.FetchAll(ctx, collection)
	if err != nil {
		return nil, err
	}
	var out []docstore.Document
	for _, d := range all {
		if equalValue(d.Fields[filter.Field], filter.Value) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *Memory) FetchOrdered(ctx context.Context, collection string, order docstore.Order) ([]docstore.Document, error) {
	all, err := m.FetchAll(ctx, collection)
	if err != nil {
		return nil, err
	}
	// Documents without the ordering field sort last either direction.
	sort.SliceStable(all, func(i, j int) bool {
		vi, oki := orderable(all[i].Fields[order.Field])
		vj, okj := orderable(all[j].Fields[order.Field])
		if oki != okj {
			return oki
		}
		if !oki {
			return false
		}
		c := compareField(vi, vj)
		if order.Desc {
			return c > 0
		}
		return c < 0
	})
	return all, nil
}

func (m *Memory) Add(_ context.Context, collection string, fields map[string]any) (string, error) {
	if collection == "" {
		return "", docstore.ErrEmptyCollection
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.collections[collection] == nil {
		m.collections[collection] = make(map[string]map[string]any)
	}
	id := uuid.NewString()
	m.collections[collection][id] = copyFields(fields)
	m.order[collection] = append(m.order[collection], id)
	return id, nil
}

// Update merges fields into the stored document. Keys absent from fields
// are untouched.
func (m *Memory) Update(_ context.Context, collection string, id string, fields map[string]any) error {
	if collection == "" {
		return docstore.ErrEmptyCollection
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.collections[collection][id]
	if !ok {
		return &docstore.NotFoundError{Collection: collection, ID: id}
	}
	for k, v := range fields {
		doc[k] = v
	}
	return nil
}

func (m *Memory) Delete(_ context.Context, collection string, id string) error {
	if collection == "" {
		return docstore.ErrEmptyCollection
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.collections[collection][id]; !ok {
		return nil
	}
	delete(m.collections[collection], id)
	ids := m.order[collection]
	for i, existing := range ids {
		if existing == id {
			m.order[collection] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

func copyFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// equalValue compares loosely: stored numbers may round-trip as float64
// while filters carry ints, and equality filters should not care.
func equalValue(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

// orderable reports whether the value participates in ordering. Absent
// and nil fields sort last either direction.
func orderable(v any) (any, bool) {
	if v == nil {
		return nil, false
	}
	return v, true
}

// compareField is a three-way compare: numbers compare numerically
// (negatives included), numbers sort before strings as sqlite's type
// ordering does, and everything else compares as its string form.
func compareField(a, b any) int {
	na, aNum := asFloat(a)
	nb, bNum := asFloat(b)
	switch {
	case aNum && bNum:
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		}
		return 0
	case aNum:
		return -1
	case bNum:
		return 1
	}
	sa, sb := fmt.Sprintf("%v", a), fmt.Sprintf("%v", b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	}
	return 0
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	}
	return 0, false
}
