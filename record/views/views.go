/*
views.go - View orchestration over the record engine

PURPOSE:
  Everything a back-office screen shows is assembled here: fetch the raw
  documents, normalize, filter, group, sort. The package owns the mapping
  between booking kinds and store collections, and it is the only place
  that talks to the docstore.

FAILURE SEMANTICS:
  Multi-collection fetches fail together. If any collection errors, the
  whole batch returns one error and no records; screens never render
  partial cross-kind data.

SEE ALSO:
  - record/: The pure engine these views orchestrate
  - docstore/: The store interface consumed here
  - api/: The HTTP handlers calling into this package
*/
package views

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ostravel/agency-engine/docstore"
	"github.com/ostravel/agency-engine/record"
)

// =============================================================================
// COLLECTIONS
// =============================================================================

// Collection names as they exist in the backing store.
const (
	CollectionVisas     = "bookings"
	CollectionTickets   = "ticketBookings"
	CollectionUmrah     = "ummrahBookings"
	CollectionInsurance = "medical_insurance"
)

var collectionByKind = map[record.Kind]string{
	record.KindVisa:      CollectionVisas,
	record.KindTicket:    CollectionTickets,
	record.KindUmrah:     CollectionUmrah,
	record.KindInsurance: CollectionInsurance,
}

var kindByCollection = map[string]record.Kind{
	CollectionVisas:     record.KindVisa,
	CollectionTickets:   record.KindTicket,
	CollectionUmrah:     record.KindUmrah,
	CollectionInsurance: record.KindInsurance,
}

var (
	ErrUnknownKind       = errors.New("unknown booking kind")
	ErrUnknownCollection = errors.New("unknown collection")
)

// CollectionForKind maps a booking kind to its store collection.
func CollectionForKind(k record.Kind) (string, error) {
	c, ok := collectionByKind[k]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, k)
	}
	return c, nil
}

// KindForCollection maps a store collection to its booking kind.
func KindForCollection(collection string) (record.Kind, error) {
	k, ok := kindByCollection[collection]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}
	return k, nil
}

// =============================================================================
// SERVICE
// =============================================================================

// Service assembles view data from the docstore.
type Service struct {
	store docstore.Store
	log   *logrus.Logger
	now   func() time.Time
}

// New creates a view service. A nil logger falls back to the logrus
// standard logger.
func New(store docstore.Store, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{store: store, log: log, now: time.Now}
}

// WithClock overrides the clock used for named date ranges (tests).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// fetchKind loads and normalizes one collection.
func (s *Service) fetchKind(ctx context.Context, kind record.Kind) ([]record.NormalizedRecord, error) {
	collection, err := CollectionForKind(kind)
	if err != nil {
		return nil, err
	}
	docs, err := s.store.FetchAll(ctx, collection)
	if err != nil {
		s.log.WithError(err).WithField("collection", collection).Error("fetch failed")
		return nil, fmt.Errorf("failed to fetch %s: %w", collection, err)
	}
	return normalizeDocs(kind, docs), nil
}

// fetchKinds loads several collections concurrently. Fail-together: any
// error discards all results.
func (s *Service) fetchKinds(ctx context.Context, kinds []record.Kind) ([]record.NormalizedRecord, error) {
	results := make([][]record.NormalizedRecord, len(kinds))
	errs := make([]error, len(kinds))

	var wg sync.WaitGroup
	for i, k := range kinds {
		wg.Add(1)
		go func(i int, k record.Kind) {
			defer wg.Done()
			results[i], errs[i] = s.fetchKind(ctx, k)
		}(i, k)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	var all []record.NormalizedRecord
	for _, rs := range results {
		all = append(all, rs...)
	}
	return all, nil
}

func normalizeDocs(kind record.Kind, docs []docstore.Document) []record.NormalizedRecord {
	out := make([]record.NormalizedRecord, 0, len(docs))
	for _, d := range docs {
		out = append(out, record.Normalize(d.ID, kind, d.Fields))
	}
	return out
}

// =============================================================================
// GLOBAL SEARCH
// =============================================================================

// GlobalSearch runs a cross-kind substring search. An empty term returns
// an empty result set rather than every record in the system.
func (s *Service) GlobalSearch(ctx context.Context, term string) ([]record.NormalizedRecord, error) {
	if strings.TrimSpace(term) == "" {
		return nil, nil
	}
	all, err := s.fetchKinds(ctx, record.Kinds)
	if err != nil {
		return nil, err
	}
	return record.SortNewestFirst(record.FilterByGlobalSearch(all, term)), nil
}

// =============================================================================
// EMPLOYEE DIRECTORY
// =============================================================================

// DirectoryRow is one employee with per-kind booking counts.
type DirectoryRow struct {
	Email  string
	Counts map[record.Kind]int
	Total  int
}

// DirectoryTotals is the summary card data above the directory.
type DirectoryTotals struct {
	Handlers int
	Bookings int
	ByKind   map[record.Kind]int
}

// DirectoryOptions filters the directory listing.
type DirectoryOptions struct {
	// Query is an email substring filter, case-insensitive.
	Query string
}

// directoryKinds are the booking kinds in the employee directory;
// insurance records live on a separate screen.
var directoryKinds = []record.Kind{record.KindVisa, record.KindTicket, record.KindUmrah}

// Directory groups all bookings by handler email, sorted by total
// descending then email ascending.
func (s *Service) Directory(ctx context.Context, opts DirectoryOptions) ([]DirectoryRow, DirectoryTotals, error) {
	all, err := s.fetchKinds(ctx, directoryKinds)
	if err != nil {
		return nil, DirectoryTotals{}, err
	}

	totals := DirectoryTotals{ByKind: make(map[record.Kind]int)}
	var rows []DirectoryRow
	for _, b := range record.GroupByOwner(all) {
		totals.Handlers++
		totals.Bookings += b.Total()
		for k, n := range b.Counts {
			totals.ByKind[k] += n
		}
		if opts.Query != "" && !strings.Contains(strings.ToLower(b.Key), strings.ToLower(opts.Query)) {
			continue
		}
		rows = append(rows, DirectoryRow{Email: b.Key, Counts: b.Counts, Total: b.Total()})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].Email < rows[j].Email
	})
	return rows, totals, nil
}

// =============================================================================
// EMPLOYEE DRILLDOWN
// =============================================================================

// DrilldownOptions filters one employee's records.
type DrilldownOptions struct {
	Query   string
	Start   string // inclusive ISO date bound, empty for open
	End     string
	Grouped bool // group by date instead of a flat list
}

// DrilldownResult is either a flat newest-first list or date buckets.
type DrilldownResult struct {
	Flat   []record.NormalizedRecord
	Groups []record.Bucket
}

// Drilldown returns one employee's records of one kind, searched and
// date-bounded.
func (s *Service) Drilldown(ctx context.Context, email string, kind record.Kind, opts DrilldownOptions) (DrilldownResult, error) {
	records, err := s.drilldownRecords(ctx, email, kind, opts)
	if err != nil {
		return DrilldownResult{}, err
	}
	if opts.Grouped {
		return DrilldownResult{Groups: record.GroupByDate(records)}, nil
	}
	return DrilldownResult{Flat: records}, nil
}

// DrilldownRecords returns the filtered flat record list (export path).
func (s *Service) DrilldownRecords(ctx context.Context, email string, kind record.Kind, opts DrilldownOptions) ([]record.NormalizedRecord, error) {
	return s.drilldownRecords(ctx, email, kind, opts)
}

func (s *Service) drilldownRecords(ctx context.Context, email string, kind record.Kind, opts DrilldownOptions) ([]record.NormalizedRecord, error) {
	all, err := s.fetchKind(ctx, kind)
	if err != nil {
		return nil, err
	}

	owner := strings.ToLower(email)
	var mine []record.NormalizedRecord
	for _, r := range all {
		if r.OwnerKey == owner {
			mine = append(mine, r)
		}
	}

	mine = record.FilterBySearch(mine, opts.Query)
	mine = record.FilterByBounds(mine, opts.Start, opts.End)
	return record.SortNewestFirst(mine), nil
}

// =============================================================================
// LEADERBOARDS
// =============================================================================

// VisaLeaderboard ranks handlers over all visa bookings.
func (s *Service) VisaLeaderboard(ctx context.Context, rng record.DateRange, key record.SortKey, dir record.SortDir) ([]record.OwnerStats, error) {
	records, err := s.fetchKind(ctx, record.KindVisa)
	if err != nil {
		return nil, err
	}
	records = record.FilterByRange(records, rng, s.now())
	return record.SortOwnerStats(record.OwnerLeaderboard(records), key, dir), nil
}

// SubscribeVisaStats streams recomputed visa leaderboards after every
// write to the visa collection. The first delivery is the current state.
// stop detaches the feed and closes the channel.
func (s *Service) SubscribeVisaStats(ctx context.Context, key record.SortKey, dir record.SortDir) (stats <-chan []record.OwnerStats, stop func(), err error) {
	ws, ok := s.store.(docstore.WatchStore)
	if !ok {
		return nil, nil, errors.New("store does not support subscriptions")
	}
	sub, err := ws.Subscribe(ctx, CollectionVisas, nil)
	if err != nil {
		return nil, nil, err
	}

	out := make(chan []record.OwnerStats, 1)
	go func() {
		defer close(out)
		for docs := range sub.Updates() {
			records := normalizeDocs(record.KindVisa, docs)
			rows := record.SortOwnerStats(record.OwnerLeaderboard(records), key, dir)
			// Keep only the latest leaderboard pending, like the
			// underlying subscription does with snapshots.
			select {
			case <-out:
			default:
			}
			out <- rows
		}
	}()
	return out, sub.Unsubscribe, nil
}

// TicketLeaderboard ranks handlers over ticket bookings, newest bookings
// considered first, with a named range and an email substring filter.
func (s *Service) TicketLeaderboard(ctx context.Context, rng record.DateRange, query string, key record.SortKey, dir record.SortDir) ([]record.OwnerStats, error) {
	docs, err := s.store.FetchOrdered(ctx, CollectionTickets, docstore.Order{Field: "createdAt", Desc: true})
	if err != nil {
		s.log.WithError(err).WithField("collection", CollectionTickets).Error("fetch failed")
		return nil, fmt.Errorf("failed to fetch %s: %w", CollectionTickets, err)
	}
	records := record.FilterByRange(normalizeDocs(record.KindTicket, docs), rng, s.now())

	rows := record.OwnerLeaderboard(records)
	if query != "" {
		q := strings.ToLower(query)
		filtered := rows[:0]
		for _, row := range rows {
			if strings.Contains(row.Owner, q) {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}
	return record.SortOwnerStats(rows, key, dir), nil
}

// =============================================================================
// COUNTRY AND VISA RECORD VIEWS
// =============================================================================

// Countries groups one owner's visa bookings by destination country.
// Records without a country are skipped. Dedupe keeps only the latest
// application per passport+country.
func (s *Service) Countries(ctx context.Context, owner string, dedupe bool) ([]record.Bucket, error) {
	records, err := s.ownerVisas(ctx, owner)
	if err != nil {
		return nil, err
	}
	if dedupe {
		records = record.DedupeLatest(records)
	}
	return record.GroupByCountry(record.SortNewestFirst(records)), nil
}

// VisaRecordsOptions filters the deduped visa list.
type VisaRecordsOptions struct {
	Status string // visaStatus equality, case-insensitive, empty for all
	Range  record.DateRange
	Dedupe bool
}

// VisaRecords returns one owner's visa records, newest first, optionally
// deduped and filtered by status and named range.
func (s *Service) VisaRecords(ctx context.Context, owner string, opts VisaRecordsOptions) ([]record.NormalizedRecord, error) {
	records, err := s.ownerVisas(ctx, owner)
	if err != nil {
		return nil, err
	}

	if opts.Range != "" {
		records = record.FilterByRange(records, opts.Range, s.now())
	}
	if opts.Status != "" {
		var filtered []record.NormalizedRecord
		for _, r := range records {
			if strings.EqualFold(r.Status(), opts.Status) {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}
	if opts.Dedupe {
		return record.DedupeLatest(records), nil
	}
	return record.SortNewestFirst(records), nil
}

// ownerVisas fetches visa bookings scoped to one owner via the store's
// equality filter, falling back to the userId field the documents carry.
func (s *Service) ownerVisas(ctx context.Context, owner string) ([]record.NormalizedRecord, error) {
	if owner == "" {
		return s.fetchKind(ctx, record.KindVisa)
	}
	docs, err := s.store.FetchWhere(ctx, CollectionVisas, docstore.Filter{Field: "userId", Value: owner})
	if err != nil {
		s.log.WithError(err).WithField("collection", CollectionVisas).Error("fetch failed")
		return nil, fmt.Errorf("failed to fetch %s: %w", CollectionVisas, err)
	}
	return normalizeDocs(record.KindVisa, docs), nil
}

// =============================================================================
// STATS
// =============================================================================

// Stats is the cross-kind summary for the dashboard cards.
type Stats struct {
	Bookings  int
	Handlers  int
	ByKind    map[record.Kind]int
	Approved  int
	Countries int
}

// Stats aggregates counts across every collection.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	all, err := s.fetchKinds(ctx, record.Kinds)
	if err != nil {
		return Stats{}, err
	}

	st := Stats{ByKind: make(map[record.Kind]int)}
	st.Bookings = len(all)
	countries := make(map[string]bool)
	for _, r := range all {
		st.ByKind[r.Kind]++
		if r.Kind == record.KindVisa && strings.EqualFold(r.Status(), "approved") {
			st.Approved++
		}
		if c := r.Country(); c != "" {
			countries[c] = true
		}
	}
	st.Handlers = len(record.GroupByOwner(all))
	st.Countries = len(countries)
	return st, nil
}

// =============================================================================
// BOOKING WRITES
// =============================================================================

// AddBooking inserts a document into a known collection.
func (s *Service) AddBooking(ctx context.Context, collection string, fields map[string]any) (string, error) {
	if _, err := KindForCollection(collection); err != nil {
		return "", err
	}
	id, err := s.store.Add(ctx, collection, fields)
	if err != nil {
		return "", fmt.Errorf("failed to add booking: %w", err)
	}
	return id, nil
}

// UpdateBooking merges fields into an existing document.
func (s *Service) UpdateBooking(ctx context.Context, collection, id string, fields map[string]any) error {
	if _, err := KindForCollection(collection); err != nil {
		return err
	}
	if err := s.store.Update(ctx, collection, id, fields); err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	return nil
}

// DeleteBooking removes a document.
func (s *Service) DeleteBooking(ctx context.Context, collection, id string) error {
	if _, err := KindForCollection(collection); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, collection, id); err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	return nil
}
