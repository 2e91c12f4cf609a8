/*
dto.go - Request/response data structures for the HTTP API

PURPOSE:
  JSON shapes at the API boundary. Handlers convert domain types to these
  DTOs; domain types never carry json tags themselves. Monetary values are
  serialized as strings to keep decimal precision through JSON.
*/
package api

import (
	"github.com/ostravel/agency-engine/record"
)

// RecordDTO is one normalized booking record as served to clients.
type RecordDTO struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	FullName  string `json:"fullName"`
	Passport  string `json:"passport,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email"`
	Date      string `json:"date,omitempty"`
	Country   string `json:"country,omitempty"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	Status    string `json:"status,omitempty"`
	Vendor    string `json:"vendor,omitempty"`
	Payable   string `json:"payable"`
	Received  string `json:"received"`
	Remaining string `json:"remaining"`
	Profit    string `json:"profit"`
}

func toRecordDTO(r record.NormalizedRecord) RecordDTO {
	f := record.Resolve(r)
	return RecordDTO{
		ID:        r.ID,
		Type:      string(r.Kind),
		FullName:  r.DisplayName,
		Passport:  r.Identifier,
		Phone:     r.Phone(),
		Email:     r.OwnerKey,
		Date:      r.ISODate,
		Country:   r.Country(),
		From:      r.Raw.Str("from"),
		To:        r.Raw.Str("to"),
		Status:    r.Status(),
		Vendor:    r.Vendor(),
		Payable:   f.Payable.String(),
		Received:  f.Received.String(),
		Remaining: f.Remaining.String(),
		Profit:    f.ProfitDisplay(),
	}
}

func toRecordDTOs(records []record.NormalizedRecord) []RecordDTO {
	dtos := make([]RecordDTO, len(records))
	for i, r := range records {
		dtos[i] = toRecordDTO(r)
	}
	return dtos
}

// BucketDTO is one grouping result (date or country bucket).
type BucketDTO struct {
	Key     string      `json:"key"`
	Total   int         `json:"total"`
	Records []RecordDTO `json:"records"`
}

func toBucketDTOs(buckets []record.Bucket) []BucketDTO {
	dtos := make([]BucketDTO, len(buckets))
	for i, b := range buckets {
		dtos[i] = BucketDTO{Key: b.Key, Total: b.Total(), Records: toRecordDTOs(b.Records)}
	}
	return dtos
}

// OwnerStatsDTO is one leaderboard row.
type OwnerStatsDTO struct {
	Email     string `json:"email"`
	Bookings  int    `json:"bookings"`
	Approved  int    `json:"approved"`
	Payable   string `json:"payable"`
	Received  string `json:"received"`
	Remaining string `json:"remaining"`
	Profit    string `json:"profit"`
}

func toOwnerStatsDTOs(rows []record.OwnerStats) []OwnerStatsDTO {
	dtos := make([]OwnerStatsDTO, len(rows))
	for i, s := range rows {
		dtos[i] = OwnerStatsDTO{
			Email:     s.Owner,
			Bookings:  s.Bookings,
			Approved:  s.Approved,
			Payable:   s.Payable.String(),
			Received:  s.Received.String(),
			Remaining: s.Remaining.String(),
			Profit:    s.Profit.String(),
		}
	}
	return dtos
}

// DirectoryRowDTO is one employee row in the directory.
type DirectoryRowDTO struct {
	Email  string         `json:"email"`
	Counts map[string]int `json:"counts"`
	Total  int            `json:"total"`
}

// DirectoryDTO is the directory plus its totals row.
type DirectoryDTO struct {
	Employees []DirectoryRowDTO `json:"employees"`
	Totals    TotalsDTO         `json:"totals"`
}

// TotalsDTO is the summary card data.
type TotalsDTO struct {
	Handlers int            `json:"handlers"`
	Bookings int            `json:"bookings"`
	ByKind   map[string]int `json:"byKind"`
}

// StatsDTO is the dashboard summary.
type StatsDTO struct {
	Bookings  int            `json:"bookings"`
	Handlers  int            `json:"handlers"`
	Approved  int            `json:"approved"`
	Countries int            `json:"countries"`
	ByKind    map[string]int `json:"byKind"`
}

func kindCounts(m map[record.Kind]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, n := range m {
		out[string(k)] = n
	}
	return out
}

// CreatedResponse carries the id of a newly added booking.
type CreatedResponse struct {
	ID string `json:"id"`
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
