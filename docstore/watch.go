/*
watch.go - Subscription multiplexer over any Store

PURPOSE:
  Turns a plain Store into a WatchStore. Historically every screen opened
  its own listener against the backend; the Watcher centralizes that into
  one hub keyed by (collection, field, value), so any number of subscribers
  to the same query share one snapshot computation per change.

DELIVERY:
  Each subscriber owns a buffered channel of capacity one. On change the
  hub drains any undelivered snapshot before sending the fresh one, so a
  slow consumer skips intermediate states instead of blocking writers.

SEE ALSO:
  - docstore.go: The Subscription contract
  - memory/memory.go: The store usually wrapped in tests
*/
package docstore

import (
	"context"
	"fmt"
	"sync"
)

// =============================================================================
// WATCHER
// =============================================================================

// Watcher wraps a Store and notifies subscribers after every successful
// Add, Update, or Delete that goes through it. Writes bypassing the
// Watcher are invisible to subscribers.
type Watcher struct {
	Store

	mu     sync.Mutex
	topics map[topicKey]*topic
	closed bool
}

type topicKey struct {
	Collection string
	Field      string
	Value      string
}

type topic struct {
	collection string
	filter     *Filter
	subs       map[*watchSub]struct{}
}

// NewWatcher wraps store with subscription support.
func NewWatcher(store Store) *Watcher {
	return &Watcher{
		Store:  store,
		topics: make(map[topicKey]*topic),
	}
}

func keyFor(collection string, filter *Filter) topicKey {
	if filter == nil {
		return topicKey{Collection: collection}
	}
	return topicKey{
		Collection: collection,
		Field:      filter.Field,
		Value:      fmt.Sprintf("%v", filter.Value),
	}
}

// Subscribe registers a feed for the given collection and optional filter.
// The current snapshot is queued before Subscribe returns. The subscriber
// is registered before the snapshot fetch, so a write landing while the
// fetch runs is delivered by its notify rather than lost.
func (w *Watcher) Subscribe(ctx context.Context, collection string, filter *Filter) (Subscription, error) {
	if collection == "" {
		return nil, ErrEmptyCollection
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil, ErrClosed
	}

	k := keyFor(collection, filter)
	tp, ok := w.topics[k]
	if !ok {
		tp = &topic{collection: collection, filter: filter, subs: make(map[*watchSub]struct{})}
		w.topics[k] = tp
	}

	sub := &watchSub{
		watcher: w,
		key:     k,
		ch:      make(chan []Document, 1),
	}
	tp.subs[sub] = struct{}{}
	w.mu.Unlock()

	snapshot, err := w.fetch(ctx, collection, filter)
	if err != nil {
		sub.Unsubscribe()
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	// A notify that ran during the fetch already queued a snapshot at
	// least as fresh as ours; do not overwrite it with a stale read.
	if !sub.delivered {
		sub.deliver(snapshot)
	}
	return sub, nil
}

// Add inserts through the wrapped store, then refreshes the collection's
// subscribers.
func (w *Watcher) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	id, err := w.Store.Add(ctx, collection, fields)
	if err != nil {
		return "", err
	}
	w.notify(ctx, collection)
	return id, nil
}

func (w *Watcher) Update(ctx context.Context, collection string, id string, fields map[string]any) error {
	if err := w.Store.Update(ctx, collection, id, fields); err != nil {
		return err
	}
	w.notify(ctx, collection)
	return nil
}

func (w *Watcher) Delete(ctx context.Context, collection string, id string) error {
	if err := w.Store.Delete(ctx, collection, id); err != nil {
		return err
	}
	w.notify(ctx, collection)
	return nil
}

// Close detaches every subscriber and closes their channels. The wrapped
// store is left open.
func (w *Watcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	for _, tp := range w.topics {
		for sub := range tp.subs {
			sub.detached = true
			close(sub.ch)
		}
	}
	w.topics = make(map[topicKey]*topic)
}

func (w *Watcher) fetch(ctx context.Context, collection string, filter *Filter) ([]Document, error) {
	if filter == nil {
		return w.Store.FetchAll(ctx, collection)
	}
	return w.Store.FetchWhere(ctx, collection, *filter)
}

// notify recomputes and queues snapshots for every topic on the changed
// collection. Each topic runs one fetch no matter how many subscribers
// share it.
func (w *Watcher) notify(ctx context.Context, collection string) {
	w.mu.Lock()
	var affected []*topic
	for k, tp := range w.topics {
		if k.Collection == collection {
			affected = append(affected, tp)
		}
	}
	w.mu.Unlock()

	for _, tp := range affected {
		snapshot, err := w.fetch(ctx, tp.collection, tp.filter)
		if err != nil {
			// Subscribers keep their last snapshot; the next successful
			// write will refresh them.
			continue
		}
		w.mu.Lock()
		for sub := range tp.subs {
			sub.deliver(snapshot)
		}
		w.mu.Unlock()
	}
}

// =============================================================================
// SUBSCRIPTION
// =============================================================================

type watchSub struct {
	watcher   *Watcher
	key       topicKey
	ch        chan []Document
	detached  bool
	delivered bool
}

func (s *watchSub) Updates() <-chan []Document { return s.ch }

// deliver replaces any undelivered snapshot with the fresh one.
// Caller holds the watcher lock.
func (s *watchSub) deliver(snapshot []Document) {
	if s.detached {
		return
	}
	s.delivered = true
	select {
	case <-s.ch:
	default:
	}
	s.ch <- snapshot
}

func (s *watchSub) Unsubscribe() {
	w := s.watcher
	w.mu.Lock()
	defer w.mu.Unlock()
	if s.detached {
		return
	}
	s.detached = true
	close(s.ch)

	if tp, ok := w.topics[s.key]; ok {
		delete(tp.subs, s)
		if len(tp.subs) == 0 {
			delete(w.topics, s.key)
		}
	}
}
