/*
search.go - Client-side text search over normalized records

PURPOSE:
  Case-insensitive substring matching against a fixed concatenation of
  searchable fields. Filtering is entirely in-memory over an already-fetched
  snapshot; no query ever reaches the external store per keystroke.

FIELD SETS:
  SearchIndex:       name, identifier, country, origin/destination, vendor,
                     pnr, phone (the per-employee drilldown set)
  GlobalSearchIndex: SearchIndex plus the insurance aliases NameofInsured,
                     contactNumber, countryofTravel (the cross-kind set)

An empty search term matches everything; any one field containing the term is
sufficient.
*/
package record

import "strings"

// SearchIndex returns the lower-cased searchable text for drilldown views.
func (r NormalizedRecord) SearchIndex() string {
	parts := []string{
		r.Raw.Str("fullName"),
		r.Raw.Nested("passenger", "fullName"),
		r.Raw.Str("passport"),
		r.Raw.Str("passportNumber"),
		r.Raw.Str("country"),
		r.Raw.Str("to"),
		r.Raw.Str("from"),
		r.Raw.Str("vendor"),
		r.Raw.Str("pnr"),
		r.Raw.Str("phone"),
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// GlobalSearchIndex widens SearchIndex with the insurance-specific aliases so
// the cross-kind search finds insurance records by their own field names.
func (r NormalizedRecord) GlobalSearchIndex() string {
	parts := []string{
		r.Raw.Str("fullName"),
		r.Raw.Nested("passenger", "fullName"),
		r.Raw.Str("NameofInsured"),
		r.Raw.Str("passport"),
		r.Raw.Str("passportNumber"),
		r.Raw.Str("phone"),
		r.Raw.Str("contactNumber"),
		r.Raw.Str("pnr"),
		r.Raw.Str("country"),
		r.Raw.Str("countryofTravel"),
		r.Raw.Str("to"),
		r.Raw.Str("vendor"),
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// MatchesTerm reports whether text contains the trimmed, lower-cased term.
// An empty term matches everything.
func MatchesTerm(text, term string) bool {
	q := strings.ToLower(strings.TrimSpace(term))
	if q == "" {
		return true
	}
	return strings.Contains(text, q)
}

// FilterBySearch keeps the records whose drilldown search text contains term.
func FilterBySearch(records []NormalizedRecord, term string) []NormalizedRecord {
	q := strings.ToLower(strings.TrimSpace(term))
	if q == "" {
		return records
	}
	var out []NormalizedRecord
	for _, r := range records {
		if strings.Contains(r.SearchIndex(), q) {
			out = append(out, r)
		}
	}
	return out
}

// FilterByGlobalSearch keeps the records whose cross-kind search text
// contains term.
func FilterByGlobalSearch(records []NormalizedRecord, term string) []NormalizedRecord {
	q := strings.ToLower(strings.TrimSpace(term))
	if q == "" {
		return records
	}
	var out []NormalizedRecord
	for _, r := range records {
		if strings.Contains(r.GlobalSearchIndex(), q) {
			out = append(out, r)
		}
	}
	return out
}
