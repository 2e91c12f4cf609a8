/*
Package export flattens normalized records into CSV for download.

PURPOSE:
  One row per record, one fixed column set across all booking kinds.
  Monetary columns go through the financial resolver so an exported file
  agrees with every on-screen total; fields a kind does not carry export
  as empty strings rather than being dropped from the header.

SEE ALSO:
  - record/financial.go: Source of the monetary columns
  - api/handlers.go: The download endpoint serving these files
*/
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/ostravel/agency-engine/record"
)

// Columns is the fixed header, in output order.
var Columns = []string{
	"id",
	"fullName",
	"passport",
	"phone",
	"email",
	"type",
	"date",
	"country",
	"from",
	"to",
	"payable",
	"received",
	"remaining",
	"profit",
	"status",
	"vendor",
}

// Row flattens one record into Columns order.
func Row(r record.NormalizedRecord) []string {
	f := record.Resolve(r)
	return []string{
		r.ID,
		r.DisplayName,
		r.Identifier,
		r.Phone(),
		r.OwnerKey,
		string(r.Kind),
		r.ISODate,
		r.Country(),
		r.Raw.Str("from"),
		r.Raw.Str("to"),
		f.Payable.String(),
		f.Received.String(),
		f.Remaining.String(),
		f.Profit.Display(record.PlaceholderDash),
		r.Status(),
		r.Vendor(),
	}
}

// WriteCSV writes the header plus one row per record.
func WriteCSV(w io.Writer, records []record.NormalizedRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(Row(r)); err != nil {
			return fmt.Errorf("failed to write csv row %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Filename builds the download name for an owner's export, stamped with
// the current day: owner_kind_export_2026-08-31.csv. The kind segment is
// "all" when the export spans every kind.
func Filename(owner, kind string, now time.Time) string {
	if kind == "" {
		kind = "all"
	}
	return fmt.Sprintf("%s_%s_export_%s.csv", owner, kind, now.Format("2006-01-02"))
}
