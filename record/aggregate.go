/*
aggregate.go - Grouping, leaderboards and dedupe over normalized records

PURPOSE:
  Given a list of NormalizedRecord, produce ordered buckets keyed by owner
  (employee email), date, or country, with per-kind counts and monetary sums.
  All sums flow through the financial resolver: the historical UI computed
  leaderboard sums straight from raw fields in a second code path, and that
  duplication is collapsed here (see DESIGN.md).

BUCKETS:
  Buckets are recomputed wholesale whenever filter/sort/search inputs change
  and are never mutated in place. Bucket order is insertion order of first
  appearance, so the caller's input ordering (typically newest-first from the
  store's own ordering) carries through.

SORTING:
  All sorts are stable; ties keep insertion order.

SEE ALSO:
  - financial.go: The single source of monetary derivation
  - daterange.go: Filters applied before grouping
*/
package record

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// BUCKETS
// =============================================================================

// BucketSums accumulates resolved money over a bucket's records. Profit
// counts absent visa profits as zero, matching the historical leaderboard.
type BucketSums struct {
	Payable   decimal.Decimal
	Received  decimal.Decimal
	Remaining decimal.Decimal
	Profit    decimal.Decimal
}

func (s BucketSums) add(f FinancialSummary) BucketSums {
	return BucketSums{
		Payable:   s.Payable.Add(f.Payable),
		Received:  s.Received.Add(f.Received),
		Remaining: s.Remaining.Add(f.Remaining),
		Profit:    s.Profit.Add(f.Profit.OrZero()),
	}
}

// Bucket is one grouping result. Records preserve input order.
type Bucket struct {
	Key      string
	Records  []NormalizedRecord
	Counts   map[Kind]int
	Approved int // visa records with visaStatus "approved" (case-insensitive)
	Sums     BucketSums
}

// Total returns the record count across all kinds.
func (b Bucket) Total() int {
	return len(b.Records)
}

// GroupBy partitions records into buckets by keyFn. Buckets appear in order
// of first key appearance; records keep their input order inside a bucket.
func GroupBy(records []NormalizedRecord, keyFn func(NormalizedRecord) string) []Bucket {
	index := make(map[string]int)
	var buckets []Bucket

	for _, r := range records {
		key := keyFn(r)
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, Bucket{Key: key, Counts: make(map[Kind]int)})
		}
		b := &buckets[i]
		b.Records = append(b.Records, r)
		b.Counts[r.Kind]++
		b.Sums = b.Sums.add(Resolve(r))
		if r.Kind == KindVisa && strings.EqualFold(r.Raw.Str("visaStatus"), "approved") {
			b.Approved++
		}
	}
	return buckets
}

// GroupByOwner buckets records by handler email.
func GroupByOwner(records []NormalizedRecord) []Bucket {
	return GroupBy(records, func(r NormalizedRecord) string { return r.OwnerKey })
}

// GroupByDate buckets records by resolved ISO date ("No date" when absent),
// sorted descending by date string with "No date" forced last.
func GroupByDate(records []NormalizedRecord) []Bucket {
	buckets := GroupBy(records, func(r NormalizedRecord) string {
		if r.ISODate == "" {
			return NoDate
		}
		return r.ISODate
	})
	sort.SliceStable(buckets, func(i, j int) bool {
		if buckets[i].Key == NoDate {
			return false
		}
		if buckets[j].Key == NoDate {
			return true
		}
		return buckets[i].Key > buckets[j].Key
	})
	return buckets
}

// GroupByCountry buckets records by their country field; records without a
// country are skipped entirely.
func GroupByCountry(records []NormalizedRecord) []Bucket {
	var withCountry []NormalizedRecord
	for _, r := range records {
		if r.Raw.Str("country") != "" {
			withCountry = append(withCountry, r)
		}
	}
	return GroupBy(withCountry, func(r NormalizedRecord) string { return r.Raw.Str("country") })
}

// =============================================================================
// OWNER STATS - Leaderboard rows
// =============================================================================

// OwnerStats is one leaderboard row. The visa leaderboard reads
// Payable/Received/Remaining/Profit plus Approved; the ticket leaderboard
// reads Received (as earnings), Payable and Profit.
type OwnerStats struct {
	Owner     string
	Bookings  int
	Approved  int
	Payable   decimal.Decimal
	Received  decimal.Decimal
	Remaining decimal.Decimal
	Profit    decimal.Decimal
}

// OwnerLeaderboard folds records into one OwnerStats per owner, in order of
// first appearance.
func OwnerLeaderboard(records []NormalizedRecord) []OwnerStats {
	buckets := GroupByOwner(records)
	rows := make([]OwnerStats, len(buckets))
	for i, b := range buckets {
		rows[i] = OwnerStats{
			Owner:     b.Key,
			Bookings:  b.Total(),
			Approved:  b.Approved,
			Payable:   b.Sums.Payable,
			Received:  b.Sums.Received,
			Remaining: b.Sums.Remaining,
			Profit:    b.Sums.Profit,
		}
	}
	return rows
}

// SortKey selects the leaderboard column to rank by.
type SortKey string

const (
	SortByBookings SortKey = "bookings"
	SortByApproved SortKey = "approved"
	SortByReceived SortKey = "received"
	SortByEarnings SortKey = "earnings" // ticket alias for received
	SortByPending  SortKey = "pending"  // remaining
	SortByPayable  SortKey = "payable"
	SortByProfit   SortKey = "profit"
)

type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

func (s OwnerStats) metric(key SortKey) decimal.Decimal {
	switch key {
	case SortByBookings:
		return decimal.NewFromInt(int64(s.Bookings))
	case SortByApproved:
		return decimal.NewFromInt(int64(s.Approved))
	case SortByReceived, SortByEarnings:
		return s.Received
	case SortByPending:
		return s.Remaining
	case SortByPayable:
		return s.Payable
	case SortByProfit:
		return s.Profit
	default:
		return decimal.NewFromInt(int64(s.Bookings))
	}
}

// SortOwnerStats orders rows by key and direction. The sort is stable so
// equal rows keep their insertion (first-appearance) order.
func SortOwnerStats(rows []OwnerStats, key SortKey, dir SortDir) []OwnerStats {
	out := make([]OwnerStats, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		x, y := out[i].metric(key), out[j].metric(key)
		if dir == SortAsc {
			return x.LessThan(y)
		}
		return x.GreaterThan(y)
	})
	return out
}

// =============================================================================
// ORDERING AND DEDUPE
// =============================================================================

// SortNewestFirst orders records by resolved date descending; when two
// records share a date, the one with the later createdAt timestamp wins.
// Stable, so otherwise-equal records keep input order.
func SortNewestFirst(records []NormalizedRecord) []NormalizedRecord {
	out := make([]NormalizedRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].ISODate, out[j].ISODate
		if di == dj {
			return createdAtUnix(out[i].Raw) > createdAtUnix(out[j].Raw)
		}
		return di > dj
	})
	return out
}

// DedupeLatest keeps only the most recent record per passport+country pair.
// Records are ordered newest-first before scanning, so the retained record
// is the one with the later date.
func DedupeLatest(records []NormalizedRecord) []NormalizedRecord {
	sorted := SortNewestFirst(records)
	seen := make(map[string]bool)
	var out []NormalizedRecord
	for _, r := range sorted {
		key := r.Identifier + "-" + r.Raw.Str("country")
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}
