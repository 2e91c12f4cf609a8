/*
handlers.go - HTTP API handlers for the agency record engine

PURPOSE:
  Exposes the record engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the views layer.

ENDPOINTS:
  Search:
    GET    /api/search?q=                        Cross-kind global search

  Employees:
    GET    /api/employees                        Directory with counts
    GET    /api/employees/{email}/records        One employee's records
    GET    /api/employees/{email}/export         CSV download

  Leaderboards:
    GET    /api/leaderboard/visas
    GET    /api/leaderboard/tickets

  Visa views:
    GET    /api/countries?owner=                 Country buckets
    GET    /api/visas?owner=&status=&dedupe=     Deduped visa records

  Bookings:
    POST   /api/bookings/{collection}            Add document
    PUT    /api/bookings/{collection}/{id}       Merge-update document
    DELETE /api/bookings/{collection}/{id}       Delete document

  Stats:
    GET    /api/stats                            Dashboard summary

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Unknown collection/kind, bad input
  - 404: Document not found
  - 500: Store errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ostravel/agency-engine/docstore"
	"github.com/ostravel/agency-engine/export"
	"github.com/ostravel/agency-engine/record"
	"github.com/ostravel/agency-engine/record/views"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Views *views.Service

	// ExportMaxRows caps CSV downloads; 0 means unlimited.
	ExportMaxRows int
}

// NewHandler creates a new handler over the view service.
func NewHandler(svc *views.Service) *Handler {
	return &Handler{Views: svc}
}

// =============================================================================
// SEARCH
// =============================================================================

// GlobalSearch runs a cross-kind search.
// GET /api/search?q=term
func (h *Handler) GlobalSearch(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	records, err := h.Views.GlobalSearch(r.Context(), term)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Search failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTOs(records))
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// ListEmployees returns the employee directory with booking counts.
// GET /api/employees?q=substring
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	rows, totals, err := h.Views.Directory(r.Context(), views.DirectoryOptions{
		Query: r.URL.Query().Get("q"),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dto := DirectoryDTO{
		Employees: make([]DirectoryRowDTO, len(rows)),
		Totals: TotalsDTO{
			Handlers: totals.Handlers,
			Bookings: totals.Bookings,
			ByKind:   kindCounts(totals.ByKind),
		},
	}
	for i, row := range rows {
		dto.Employees[i] = DirectoryRowDTO{
			Email:  row.Email,
			Counts: kindCounts(row.Counts),
			Total:  row.Total,
		}
	}
	writeJSON(w, http.StatusOK, dto)
}

// EmployeeRecords returns one employee's records of one kind.
// GET /api/employees/{email}/records?kind=visa&q=&start=&end=&view=grouped
func (h *Handler) EmployeeRecords(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	q := r.URL.Query()

	kind, ok := parseKind(q.Get("kind"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown booking kind", nil)
		return
	}

	opts := views.DrilldownOptions{
		Query:   q.Get("q"),
		Start:   q.Get("start"),
		End:     q.Get("end"),
		Grouped: q.Get("view") == "grouped",
	}
	res, err := h.Views.Drilldown(r.Context(), email, kind, opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load records", err)
		return
	}

	if opts.Grouped {
		writeJSON(w, http.StatusOK, toBucketDTOs(res.Groups))
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTOs(res.Flat))
}

// ExportEmployeeRecords streams one employee's filtered records as CSV.
// GET /api/employees/{email}/export?kind=visa&q=&start=&end=
func (h *Handler) ExportEmployeeRecords(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	q := r.URL.Query()

	kind, ok := parseKind(q.Get("kind"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown booking kind", nil)
		return
	}

	records, err := h.Views.DrilldownRecords(r.Context(), email, kind, views.DrilldownOptions{
		Query: q.Get("q"),
		Start: q.Get("start"),
		End:   q.Get("end"),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load records", err)
		return
	}
	if h.ExportMaxRows > 0 && len(records) > h.ExportMaxRows {
		records = records[:h.ExportMaxRows]
	}

	filename := export.Filename(email, string(kind), time.Now())
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := export.WriteCSV(w, records); err != nil {
		// Headers are already out; nothing useful left to send.
		return
	}
}

// =============================================================================
// LEADERBOARDS
// =============================================================================

// VisaLeaderboard ranks handlers over visa bookings.
// GET /api/leaderboard/visas?sort=received&dir=desc&range=ThisMonth
func (h *Handler) VisaLeaderboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rows, err := h.Views.VisaLeaderboard(r.Context(),
		parseRange(q.Get("range")),
		parseSortKey(q.Get("sort"), record.SortByBookings),
		parseSortDir(q.Get("dir")),
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build leaderboard", err)
		return
	}
	writeJSON(w, http.StatusOK, toOwnerStatsDTOs(rows))
}

// TicketLeaderboard ranks handlers over ticket bookings.
// GET /api/leaderboard/tickets?sort=earnings&dir=desc&range=Last7Days&q=
func (h *Handler) TicketLeaderboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rows, err := h.Views.TicketLeaderboard(r.Context(),
		parseRange(q.Get("range")),
		q.Get("q"),
		parseSortKey(q.Get("sort"), record.SortByEarnings),
		parseSortDir(q.Get("dir")),
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build leaderboard", err)
		return
	}
	writeJSON(w, http.StatusOK, toOwnerStatsDTOs(rows))
}

// =============================================================================
// VISA VIEWS
// =============================================================================

// Countries returns country buckets for one owner's visa bookings.
// GET /api/countries?owner=&dedupe=true
func (h *Handler) Countries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	buckets, err := h.Views.Countries(r.Context(), q.Get("owner"), q.Get("dedupe") == "true")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to group by country", err)
		return
	}
	writeJSON(w, http.StatusOK, toBucketDTOs(buckets))
}

// VisaRecords returns filtered, optionally deduped visa records.
// GET /api/visas?owner=&status=approved&range=All&dedupe=true
func (h *Handler) VisaRecords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	records, err := h.Views.VisaRecords(r.Context(), q.Get("owner"), views.VisaRecordsOptions{
		Status: q.Get("status"),
		Range:  parseRange(q.Get("range")),
		Dedupe: q.Get("dedupe") == "true",
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load visa records", err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTOs(records))
}

// =============================================================================
// BOOKINGS
// =============================================================================

// CreateBooking adds a document to a collection.
// POST /api/bookings/{collection}
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	id, err := h.Views.AddBooking(r.Context(), collection, fields)
	if err != nil {
		writeViewError(w, err, "Failed to add booking")
		return
	}
	writeJSON(w, http.StatusCreated, CreatedResponse{ID: id})
}

// UpdateBooking merges fields into a document.
// PUT /api/bookings/{collection}/{id}
func (h *Handler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	if err := h.Views.UpdateBooking(r.Context(), collection, id, fields); err != nil {
		writeViewError(w, err, "Failed to update booking")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// DeleteBooking removes a document.
// DELETE /api/bookings/{collection}/{id}
func (h *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")

	if err := h.Views.DeleteBooking(r.Context(), collection, id); err != nil {
		writeViewError(w, err, "Failed to delete booking")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// =============================================================================
// STATS
// =============================================================================

// Stats returns the dashboard summary.
// GET /api/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.Views.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute stats", err)
		return
	}
	writeJSON(w, http.StatusOK, StatsDTO{
		Bookings:  st.Bookings,
		Handlers:  st.Handlers,
		Approved:  st.Approved,
		Countries: st.Countries,
		ByKind:    kindCounts(st.ByKind),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func parseKind(s string) (record.Kind, bool) {
	if s == "" {
		return record.KindVisa, true
	}
	for _, k := range record.Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// parseRange accepts the named range labels; anything unrecognized falls
// back to All.
func parseRange(s string) record.DateRange {
	for _, r := range record.NamedRanges {
		if string(r) == s {
			return r
		}
	}
	return record.RangeAll
}

func parseSortKey(s string, fallback record.SortKey) record.SortKey {
	switch record.SortKey(s) {
	case record.SortByBookings, record.SortByApproved, record.SortByReceived,
		record.SortByEarnings, record.SortByPending, record.SortByPayable,
		record.SortByProfit:
		return record.SortKey(s)
	}
	return fallback
}

func parseSortDir(s string) record.SortDir {
	if s == "asc" {
		return record.SortAsc
	}
	return record.SortDesc
}

// writeViewError maps view-layer errors onto HTTP statuses.
func writeViewError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, views.ErrUnknownCollection), errors.Is(err, views.ErrUnknownKind):
		writeError(w, http.StatusBadRequest, message, err)
	case errors.Is(err, docstore.ErrNotFound):
		writeError(w, http.StatusNotFound, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
