/*
normalize.go - RawDocument to NormalizedRecord conversion

PURPOSE:
  Turns one raw document, tagged with its originating collection's kind, into
  the canonical NormalizedRecord every downstream view operates on.

ALIAS LISTS:
  Each logical attribute is resolved through an explicit ordered list of
  accessors, evaluated lazily until one yields a non-empty result:

    displayName:  fullName -> passenger.fullName -> NameofInsured
    identifier:   passport -> passportNumber
    ownerKey:     userEmail -> createdByEmail -> "unknown@os.com"

  The order is load-bearing: search and export depend on first-listed wins.

DATE RESOLUTION (first match wins):
  1. date        - passed through unchanged when already "YYYY-MM-DD"-shaped
  2. departure   - first 10 characters
  3. createdAt   - string (loose parse), time.Time, or {seconds: N} object
  4. otherwise   - no date ("")

ERROR CONDITIONS:
  None. Normalization degrades gracefully to empty values; the domain is
  trusted internal data, not adversarial input.

SEE ALSO:
  - types.go: NormalizedRecord, RawDocument accessors
  - search.go: Search text built over the same aliases
*/
package record

import (
	"strings"
	"time"
)

// =============================================================================
// ACCESSOR LISTS - Ordered field aliases per logical attribute
// =============================================================================

type accessor func(RawDocument) string

func field(key string) accessor {
	return func(d RawDocument) string { return d.Str(key) }
}

func nested(outer, inner string) accessor {
	return func(d RawDocument) string { return d.Nested(outer, inner) }
}

var (
	displayNameAccessors = []accessor{
		field("fullName"),
		nested("passenger", "fullName"),
		field("NameofInsured"),
	}
	identifierAccessors = []accessor{
		field("passport"),
		field("passportNumber"),
	}
	ownerAccessors = []accessor{
		field("userEmail"),
		field("createdByEmail"),
	}
)

func firstNonEmpty(raw RawDocument, accessors []accessor) string {
	for _, acc := range accessors {
		if v := acc(raw); v != "" {
			return v
		}
	}
	return ""
}

// =============================================================================
// NORMALIZE
// =============================================================================

// Normalize converts one raw document into a NormalizedRecord. The id comes
// from the store (document IDs live outside the body); kind comes from the
// source collection and is never changed afterwards.
func Normalize(id string, kind Kind, raw RawDocument) NormalizedRecord {
	if raw == nil {
		raw = RawDocument{}
	}

	owner := strings.ToLower(firstNonEmpty(raw, ownerAccessors))
	if owner == "" {
		owner = UnknownOwner
	}

	return NormalizedRecord{
		ID:          id,
		Kind:        kind,
		DisplayName: firstNonEmpty(raw, displayNameAccessors),
		Identifier:  firstNonEmpty(raw, identifierAccessors),
		ISODate:     resolveISODate(raw),
		OwnerKey:    owner,
		Raw:         raw,
	}
}

// =============================================================================
// DATE RESOLUTION
// =============================================================================

func resolveISODate(raw RawDocument) string {
	if d := raw.Str("date"); isISODateShaped(d) {
		return d
	}
	if dep := raw.Str("departure"); dep != "" {
		if len(dep) > 10 {
			dep = dep[:10]
		}
		return dep
	}
	return createdAtISODate(raw)
}

// createdAtISODate handles the three historical shapes of the createdAt field:
// an ISO-ish string, a materialized time.Time, and a {seconds: N} object.
func createdAtISODate(raw RawDocument) string {
	v, ok := raw["createdAt"]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		ts, err := parseLooseTime(t)
		if err != nil {
			return ""
		}
		return ts.UTC().Format("2006-01-02")
	case time.Time:
		return t.UTC().Format("2006-01-02")
	case map[string]any:
		if secs, ok := t["seconds"]; ok {
			if d, entered := toDecimalOK(secs); entered {
				return time.Unix(d.IntPart(), 0).UTC().Format("2006-01-02")
			}
		}
	}
	return ""
}

// isISODateShaped reports whether s already looks like "YYYY-MM-DD".
func isISODateShaped(s string) bool {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	for i, c := range s {
		if i == 4 || i == 7 {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

var looseTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseLooseTime(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range looseTimeLayouts {
		ts, err := time.Parse(layout, s)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
