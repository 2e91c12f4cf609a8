/*
Package record provides the core record reconciliation engine.

PURPOSE:
  This package contains the domain-agnostic types and algorithms that merge
  heterogeneous booking documents (visa, ticket, umrah, insurance) originating
  from different collections with different schemas into a single normalized,
  searchable, groupable view.

KEY CONCEPTS IN THIS FILE (types.go):
  - Kind: Which booking category a record belongs to (fixed at normalization)
  - RawDocument: The loosely-typed document body as stored in a collection
  - NormalizedRecord: The canonical in-memory shape every view operates on
  - FinancialSummary: Derived payable/received/remaining/profit per record
  - OptionalAmount: A monetary value that distinguishes "absent" from zero

DESIGN PRINCIPLES:
  1. Normalization never fails: absent fields degrade to empty values
  2. Precision: uses decimal.Decimal for money to avoid float drift
  3. Kind is immutable: assigned once from the source collection, never changed
  4. Raw retention: the original document rides along for kind-specific extras

USAGE:
  rec := record.Normalize(doc.ID, record.KindVisa, doc.Fields)
  fin := record.Resolve(rec)

SEE ALSO:
  - normalize.go: RawDocument -> NormalizedRecord
  - financial.go: Kind-specific financial derivation
  - aggregate.go: Grouping, leaderboards, dedupe
*/
package record

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// KIND - Booking category, fixed at normalization time
// =============================================================================

type Kind string

const (
	KindVisa      Kind = "visa"
	KindTicket    Kind = "ticket"
	KindUmrah     Kind = "umrah"
	KindInsurance Kind = "insurance"
)

// Kinds lists the recognized categories in fetch order.
var Kinds = []Kind{KindVisa, KindTicket, KindUmrah, KindInsurance}

// =============================================================================
// RAW DOCUMENT - Opaque key/value body from the external store
// =============================================================================

// RawDocument is the schemaless document body as returned by the store.
// The normalizer reads it through ordered alias lists; nothing validates it.
type RawDocument map[string]any

// Str returns the string value under key, or "" when absent or non-string.
func (d RawDocument) Str(key string) string {
	if v, ok := d[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Nested returns the string at d[outer][inner], or "".
func (d RawDocument) Nested(outer, inner string) string {
	if v, ok := d[outer]; ok {
		if m, ok := v.(map[string]any); ok {
			return RawDocument(m).Str(inner)
		}
	}
	return ""
}

// Number coerces the value under key to a decimal using "zero if unparseable"
// semantics. Handles float64, int variants, json.Number and numeric strings.
func (d RawDocument) Number(key string) decimal.Decimal {
	v, ok := d[key]
	if !ok {
		return decimal.Zero
	}
	return toDecimal(v)
}

// NumberOK is like Number but also reports whether the value was actually a
// finite number. Used for fields whose absence must stay distinguishable
// from an explicit zero (profit, embassy fee on visa records).
func (d RawDocument) NumberOK(key string) (decimal.Decimal, bool) {
	v, ok := d[key]
	if !ok {
		return decimal.Zero, false
	}
	return toDecimalOK(v)
}

// Has reports whether key is present with a non-nil value. Explicit nulls in
// stored documents count as absent, matching the store's merge semantics.
func (d RawDocument) Has(key string) bool {
	v, ok := d[key]
	return ok && v != nil
}

func toDecimal(v any) decimal.Decimal {
	d, _ := toDecimalOK(v)
	return d
}

func toDecimalOK(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), true
	case float32:
		return decimal.NewFromFloat(float64(n)), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case json.Number:
		if d, err := decimal.NewFromString(n.String()); err == nil {
			return d, true
		}
	case string:
		if d, err := decimal.NewFromString(n); err == nil {
			return d, true
		}
	}
	return decimal.Zero, false
}

// =============================================================================
// NORMALIZED RECORD - Canonical shape produced by the normalizer
// =============================================================================

// UnknownOwner is the sentinel grouping key for records without a handler email.
const UnknownOwner = "unknown@os.com"

// NoDate is the bucket key for records that resolve to no date at all.
const NoDate = "No date"

type NormalizedRecord struct {
	ID          string
	Kind        Kind
	DisplayName string // first non-empty of the name aliases
	Identifier  string // passport / passportNumber
	ISODate     string // "YYYY-MM-DD" or "" when no date field resolved
	OwnerKey    string // lower-cased handler email, UnknownOwner when absent
	Raw         RawDocument
}

// HasDate reports whether a date was resolved at normalization time.
func (r NormalizedRecord) HasDate() bool { return r.ISODate != "" }

// Country returns the destination-ish field for this record, trying the
// visa/umrah country, the ticket destination, then the insurance alias.
func (r NormalizedRecord) Country() string {
	if c := r.Raw.Str("country"); c != "" {
		return c
	}
	if c := r.Raw.Str("to"); c != "" {
		return c
	}
	return r.Raw.Str("countryofTravel")
}

// Status returns the first non-empty of the per-kind status aliases.
func (r NormalizedRecord) Status() string {
	for _, key := range []string{"status", "visaStatus", "paymentStatus"} {
		if s := r.Raw.Str(key); s != "" {
			return s
		}
	}
	return ""
}

// Phone returns the contact number, falling back to the insurance alias.
func (r NormalizedRecord) Phone() string {
	if p := r.Raw.Str("phone"); p != "" {
		return p
	}
	return r.Raw.Str("contactNumber")
}

// Vendor returns the vendor, falling back to the airline preference field.
func (r NormalizedRecord) Vendor() string {
	if v := r.Raw.Str("vendor"); v != "" {
		return v
	}
	return r.Raw.Str("airlinePref")
}

// =============================================================================
// OPTIONAL AMOUNT - Money that distinguishes "absent" from zero
// =============================================================================

// OptionalAmount carries a monetary value together with whether the source
// field actually held a finite number. The visa profit and embassy fee fields
// must render distinctly from 0 when never entered.
type OptionalAmount struct {
	Amount  decimal.Decimal
	Entered bool
}

func Entered(d decimal.Decimal) OptionalAmount {
	return OptionalAmount{Amount: d, Entered: true}
}

// NotEntered is the zero OptionalAmount, spelled out for readability.
var NotEntered = OptionalAmount{}

// Display renders the amount, or the placeholder when it was never entered.
func (o OptionalAmount) Display(placeholder string) string {
	if !o.Entered {
		return placeholder
	}
	return o.Amount.String()
}

// OrZero returns the amount for summation purposes (absent counts as zero).
func (o OptionalAmount) OrZero() decimal.Decimal {
	if !o.Entered {
		return decimal.Zero
	}
	return o.Amount
}

// =============================================================================
// FINANCIAL SUMMARY - Derived, never persisted
// =============================================================================

// PlaceholderNotEntered and PlaceholderDash are the two display sentinels the
// reporting surfaces use for absent optional amounts.
const (
	PlaceholderNotEntered = "Not entered"
	PlaceholderDash       = "-"
)

type FinancialSummary struct {
	Payable   decimal.Decimal
	Received  decimal.Decimal
	Remaining decimal.Decimal

	// Profit is optional only for visa records; every other kind computes a
	// fallback and is therefore always entered.
	Profit OptionalAmount

	// EmbassyFee and VendorFee only carry values for visa records.
	EmbassyFee OptionalAmount
	VendorFee  OptionalAmount
}

// ProfitDisplay renders profit with the "Not entered" sentinel.
func (f FinancialSummary) ProfitDisplay() string {
	return f.Profit.Display(PlaceholderNotEntered)
}

func (f FinancialSummary) String() string {
	return fmt.Sprintf("payable=%s received=%s remaining=%s profit=%s",
		f.Payable, f.Received, f.Remaining, f.ProfitDisplay())
}

// createdAtUnix extracts a best-effort unix-seconds value from the createdAt
// field, used only as a tie-break when two records share an ISO date.
func createdAtUnix(raw RawDocument) int64 {
	v, ok := raw["createdAt"]
	if !ok {
		return 0
	}
	switch t := v.(type) {
	case map[string]any:
		if secs, ok := t["seconds"]; ok {
			if d, ok := toDecimalOK(secs); ok {
				return d.IntPart()
			}
		}
	case float64:
		return int64(t)
	case int64:
		return t
	case string:
		if ts, err := parseLooseTime(t); err == nil {
			return ts.Unix()
		}
	}
	return 0
}
