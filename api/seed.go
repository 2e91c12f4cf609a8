/*
seed.go - Demo data loader

PURPOSE:
  Populates an empty store with a small realistic data set so the API has
  something to serve on first run. Only loads when the visa collection is
  empty; an existing database is never touched.
*/
package api

import (
	"context"
	"fmt"

	"github.com/ostravel/agency-engine/docstore"
	"github.com/ostravel/agency-engine/record/views"
)

type seedDoc struct {
	collection string
	fields     map[string]any
}

var seedDocs = []seedDoc{
	{views.CollectionVisas, map[string]any{
		"fullName": "Ahmed Khan", "passport": "PK4451823", "userEmail": "sara@ostravel.com",
		"userId": "u-sara", "country": "Turkey", "date": "2026-08-10",
		"totalFee": "850", "receivedFee": "850", "profit": "120", "visaStatus": "approved",
		"phone": "0300-1112233", "createdAt": "2026-08-01T09:10:00Z",
	}},
	{views.CollectionVisas, map[string]any{
		"fullName": "Ahmed Khan", "passport": "PK4451823", "userEmail": "sara@ostravel.com",
		"userId": "u-sara", "country": "Turkey", "date": "2026-06-02",
		"totalFee": "850", "receivedFee": "400", "visaStatus": "rejected",
		"createdAt": "2026-05-20T14:00:00Z",
	}},
	{views.CollectionVisas, map[string]any{
		"fullName": "Fatima Noor", "passport": "PK9907311", "userEmail": "bilal@ostravel.com",
		"userId": "u-bilal", "country": "Malaysia", "date": "2026-08-18",
		"payable": "600", "receivedFee": "300", "visaStatus": "pending",
		"createdAt": "2026-08-15T11:30:00Z",
	}},
	{views.CollectionTickets, map[string]any{
		"passenger": map[string]any{"fullName": "Usman Tariq"},
		"userEmail": "sara@ostravel.com", "pnr": "QR8812X",
		"from": "Lahore", "to": "Doha", "departure": "2026-09-03T06:45:00",
		"payable": "410", "price": "515", "airlinePref": "Qatar Airways",
		"createdAt": "2026-08-12T08:00:00Z",
	}},
	{views.CollectionUmrah, map[string]any{
		"fullName": "Hina Aslam", "passport": "PK2210945", "userEmail": "bilal@ostravel.com",
		"date": "2026-10-05", "payable": "2400", "received": "2000",
		"createdAt": "2026-08-14T10:20:00Z",
	}},
	{views.CollectionInsurance, map[string]any{
		"NameofInsured": "Usman Tariq", "passportNumber": "PK3356710",
		"userEmail": "sara@ostravel.com", "countryofTravel": "Qatar",
		"contactNumber": "0321-5556677", "date": "2026-09-01",
		"totalPayableAmount": "110", "totalReceivedAmount": "110",
		"totalRemainingAmount": "0", "totalProfit": "25",
		"createdAt": "2026-08-16T13:45:00Z",
	}},
}

// SeedIfEmpty loads the demo data set when the store has no visa bookings.
// Returns the number of documents added.
func SeedIfEmpty(ctx context.Context, store docstore.Store) (int, error) {
	existing, err := store.FetchAll(ctx, views.CollectionVisas)
	if err != nil {
		return 0, fmt.Errorf("failed to check existing data: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	added := 0
	for _, d := range seedDocs {
		if _, err := store.Add(ctx, d.collection, d.fields); err != nil {
			return added, fmt.Errorf("failed to seed %s: %w", d.collection, err)
		}
		added++
	}
	return added, nil
}
