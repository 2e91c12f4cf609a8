package record

import (
	"testing"
	"time"
)

// A fixed "now" so range math is deterministic: Wednesday 2026-08-19.
var rangeNow = time.Date(2026, 8, 19, 15, 30, 0, 0, time.UTC)

func TestDateRange_Contains(t *testing.T) {
	cases := []struct {
		name  string
		r     DateRange
		iso   string
		want  bool
	}{
		{"today matches", RangeToday, "2026-08-19", true},
		{"today rejects yesterday", RangeToday, "2026-08-18", false},
		{"yesterday matches", RangeYesterday, "2026-08-18", true},
		{"last7 lower bound", RangeLast7Days, "2026-08-13", true},
		{"last7 below bound", RangeLast7Days, "2026-08-12", false},
		{"this week from sunday", RangeThisWeek, "2026-08-16", true},
		{"this week rejects saturday before", RangeThisWeek, "2026-08-15", false},
		{"this month same calendar month", RangeThisMonth, "2026-08-01", true},
		{"this month rejects july", RangeThisMonth, "2026-07-31", false},
		{"last30 lower bound", RangeLast30Days, "2026-07-21", true},
		{"last30 below bound", RangeLast30Days, "2026-07-20", false},
		{"future date rejected", RangeLast7Days, "2026-08-20", false},
		{"all matches anything", RangeAll, "1999-01-01", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.r.ContainsISO(tc.iso, rangeNow); got != tc.want {
				t.Fatalf("%s.ContainsISO(%q) = %v, want %v", tc.r, tc.iso, got, tc.want)
			}
		})
	}
}

func TestFilterByRange_RepeatedFilterIsStable(t *testing.T) {
	// GIVEN a fixed set spanning in-range, out-of-range, and dateless
	records := []NormalizedRecord{
		Normalize("1", KindVisa, RawDocument{"date": "2026-08-19"}),
		Normalize("2", KindVisa, RawDocument{"date": "2026-01-01"}),
		Normalize("3", KindVisa, RawDocument{}),
	}

	for _, rng := range []DateRange{RangeAll, RangeLast7Days} {
		// WHEN filtering the same input twice
		first := FilterByRange(records, rng, rangeNow)
		second := FilterByRange(records, rng, rangeNow)

		// THEN both passes yield the identical set
		if len(first) != len(second) {
			t.Fatalf("%s: pass sizes differ: %d vs %d", rng, len(first), len(second))
		}
		for i := range first {
			if first[i].ID != second[i].ID {
				t.Fatalf("%s: pass order differs at %d: %s vs %s", rng, i, first[i].ID, second[i].ID)
			}
		}
	}

	// AND the input slice is untouched
	if len(records) != 3 || records[0].ID != "1" || records[1].ID != "2" || records[2].ID != "3" {
		t.Fatalf("input mutated by filtering: %+v", records)
	}
}

func TestDateRange_DatelessRecords(t *testing.T) {
	// GIVEN a record with no resolvable date
	dateless := Normalize("1", KindVisa, RawDocument{})
	dated := Normalize("2", KindVisa, RawDocument{"date": "2026-08-19"})
	records := []NormalizedRecord{dateless, dated}

	// WHEN filtering by any bounded range
	got := FilterByRange(records, RangeToday, rangeNow)

	// THEN the dateless record is excluded
	if len(got) != 1 || got[0].ID != "2" {
		t.Fatalf("expected only the dated record, got %+v", got)
	}

	// WHEN filtering by the unbounded range
	got = FilterByRange(records, RangeAll, rangeNow)

	// THEN everything passes, dateless included
	if len(got) != 2 {
		t.Fatalf("expected both records under All, got %d", len(got))
	}
}

func TestInBounds_ExplicitRange(t *testing.T) {
	// GIVEN explicit inclusive bounds
	if !InBounds("2026-08-01", "2026-08-01", "2026-08-31") {
		t.Fatal("start bound should be inclusive")
	}
	if !InBounds("2026-08-31", "2026-08-01", "2026-08-31") {
		t.Fatal("end bound should be inclusive")
	}
	if InBounds("2026-09-01", "2026-08-01", "2026-08-31") {
		t.Fatal("past end should be excluded")
	}

	// GIVEN only one side of the range
	if !InBounds("2026-12-01", "2026-08-01", "") {
		t.Fatal("open end should pass later dates")
	}
	if InBounds("2026-07-01", "2026-08-01", "") {
		t.Fatal("open end still enforces the start")
	}

	// GIVEN a dateless record
	if InBounds("", "2026-08-01", "") {
		t.Fatal("dateless records fail any bounded filter")
	}
	if !InBounds("", "", "") {
		t.Fatal("dateless records pass when no bounds are set")
	}
}
