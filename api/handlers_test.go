package api

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ostravel/agency-engine/docstore"
	"github.com/ostravel/agency-engine/docstore/memory"
	"github.com/ostravel/agency-engine/record/views"
)

func newTestServer(t *testing.T) (*chiServer, docstore.Store) {
	t.Helper()
	store := docstore.NewWatcher(memory.New())
	h := NewHandler(views.New(store, nil))
	router := NewRouter(h, []string{"*"})
	return &chiServer{router: router}, store
}

type chiServer struct {
	router http.Handler
}

func (s *chiServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestAPI_BookingLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	// GIVEN a created booking
	rec := srv.do(t, "POST", "/api/bookings/bookings", map[string]any{
		"fullName": "Ahmed Khan", "userEmail": "sara@x.com", "date": "2026-08-10",
		"totalFee": "850", "receivedFee": "400",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", rec.Code, rec.Body)
	}
	var created CreatedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil || created.ID == "" {
		t.Fatalf("bad create body: %s", rec.Body)
	}

	// WHEN updating and reading back through the drilldown
	rec = srv.do(t, "PUT", "/api/bookings/bookings/"+created.ID, map[string]any{"visaStatus": "approved"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update failed: %d %s", rec.Code, rec.Body)
	}

	rec = srv.do(t, "GET", "/api/employees/sara@x.com/records?kind=visa", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("records failed: %d %s", rec.Code, rec.Body)
	}
	var records []RecordDTO
	json.Unmarshal(rec.Body.Bytes(), &records)
	if len(records) != 1 || records[0].Status != "approved" {
		t.Fatalf("unexpected records: %+v", records)
	}
	// Remaining is derived, profit surfaces the sentinel
	if records[0].Remaining != "450" || records[0].Profit != "Not entered" {
		t.Fatalf("unexpected financials: %+v", records[0])
	}

	// WHEN deleting
	rec = srv.do(t, "DELETE", "/api/bookings/bookings/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete failed: %d %s", rec.Code, rec.Body)
	}
}

func TestAPI_UnknownCollectionIs400(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := srv.do(t, "POST", "/api/bookings/nonsense", map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAPI_UpdateMissingDocumentIs404(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := srv.do(t, "PUT", "/api/bookings/bookings/missing-id", map[string]any{"x": 1})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d %s", rec.Code, rec.Body)
	}
}

func TestAPI_GlobalSearch(t *testing.T) {
	srv, store := newTestServer(t)
	ctx := context.Background()
	store.Add(ctx, views.CollectionVisas, map[string]any{"fullName": "Ahmed Khan", "userEmail": "a@x.com"})
	store.Add(ctx, views.CollectionInsurance, map[string]any{"NameofInsured": "Sara Ahmed"})

	rec := srv.do(t, "GET", "/api/search?q=ahmed", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("search failed: %d", rec.Code)
	}
	var results []RecordDTO
	json.Unmarshal(rec.Body.Bytes(), &results)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
}

func TestAPI_VisaLeaderboardSorting(t *testing.T) {
	srv, store := newTestServer(t)
	ctx := context.Background()
	store.Add(ctx, views.CollectionVisas, map[string]any{"userEmail": "a@x.com", "receivedFee": "100", "date": "2026-08-01"})
	store.Add(ctx, views.CollectionVisas, map[string]any{"userEmail": "b@x.com", "receivedFee": "900", "date": "2026-08-01"})

	rec := srv.do(t, "GET", "/api/leaderboard/visas?sort=received&dir=desc", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("leaderboard failed: %d", rec.Code)
	}
	var rows []OwnerStatsDTO
	json.Unmarshal(rec.Body.Bytes(), &rows)
	if len(rows) != 2 || rows[0].Email != "b@x.com" || rows[0].Received != "900" {
		t.Fatalf("unexpected leaderboard: %+v", rows)
	}
}

func TestAPI_CSVExport(t *testing.T) {
	srv, store := newTestServer(t)
	ctx := context.Background()
	store.Add(ctx, views.CollectionVisas, map[string]any{"userEmail": "a@x.com", "fullName": "One", "date": "2026-08-01"})
	store.Add(ctx, views.CollectionVisas, map[string]any{"userEmail": "a@x.com", "fullName": "Two", "date": "2026-08-02"})

	rec := srv.do(t, "GET", "/api/employees/a@x.com/export?kind=visa", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export failed: %d %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "a@x.com_visa_export_") {
		t.Fatalf("unexpected disposition %q", cd)
	}

	rows, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	// Header plus one row per record
	if len(rows) != 3 {
		t.Fatalf("expected 3 csv rows, got %d", len(rows))
	}
}

func TestAPI_SeedIfEmpty(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	// WHEN seeding an empty store
	n, err := SeedIfEmpty(ctx, store)
	if err != nil {
		t.Fatal(err)
	}
	if n == 0 {
		t.Fatal("expected demo documents to be added")
	}

	// THEN seeding again is a no-op
	n, err = SeedIfEmpty(ctx, store)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("expected no-op reseed, added %d", n)
	}
}
