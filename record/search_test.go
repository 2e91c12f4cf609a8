package record

import "testing"

func TestMatchesTerm_CaseInsensitiveSubstring(t *testing.T) {
	// GIVEN a record with mixed-case fields
	r := Normalize("1", KindVisa, RawDocument{
		"fullName": "Omar Haddad",
		"passport": "AB9912",
		"country":  "Turkey",
	})

	// THEN any case of any indexed field matches
	for _, term := range []string{"omar", "HADDAD", "ab99", "turk", ""} {
		if !MatchesTerm(r.SearchIndex(), term) {
			t.Fatalf("expected %q to match", term)
		}
	}

	// AND unrelated terms do not
	if MatchesTerm(r.SearchIndex(), "egypt") {
		t.Fatal("expected egypt not to match")
	}
}

func TestFilterBySearch_NestedPassengerName(t *testing.T) {
	// GIVEN a ticket whose name lives under passenger
	tk := Normalize("1", KindTicket, RawDocument{
		"passenger": map[string]any{"fullName": "Lina K"},
		"pnr":       "XYZ789",
	})
	other := Normalize("2", KindTicket, RawDocument{"pnr": "AAA111"})

	// WHEN filtering by the nested name and by pnr
	byName := FilterBySearch([]NormalizedRecord{tk, other}, "lina")
	byPNR := FilterBySearch([]NormalizedRecord{tk, other}, "xyz")

	// THEN both locate the right record
	if len(byName) != 1 || byName[0].ID != "1" {
		t.Fatalf("name search failed: %+v", byName)
	}
	if len(byPNR) != 1 || byPNR[0].ID != "1" {
		t.Fatalf("pnr search failed: %+v", byPNR)
	}
}

func TestFilterBySearch_RepeatedFilterIsStable(t *testing.T) {
	// GIVEN a set with one match
	records := []NormalizedRecord{
		Normalize("1", KindVisa, RawDocument{"fullName": "Ahmed Khan"}),
		Normalize("2", KindVisa, RawDocument{"fullName": "Omar Haddad"}),
	}

	// WHEN filtering by the same term twice
	first := FilterBySearch(records, "ahmed")
	second := FilterBySearch(records, "ahmed")

	// THEN both passes agree and the input is untouched
	if len(first) != 1 || len(second) != 1 || first[0].ID != second[0].ID {
		t.Fatalf("passes disagree: %+v vs %+v", first, second)
	}
	if len(records) != 2 || records[0].ID != "1" || records[1].ID != "2" {
		t.Fatalf("input mutated by filtering: %+v", records)
	}
}

func TestFilterByGlobalSearch_InsuranceVocabulary(t *testing.T) {
	// GIVEN an insurance record using its own field names
	ins := Normalize("1", KindInsurance, RawDocument{
		"NameofInsured":   "Farah S",
		"contactNumber":   "0555-1234",
		"countryofTravel": "Oman",
	})

	// THEN the wide index reaches fields the per-kind index does not
	for _, term := range []string{"farah", "0555", "oman"} {
		got := FilterByGlobalSearch([]NormalizedRecord{ins}, term)
		if len(got) != 1 {
			t.Fatalf("expected %q to match via global index", term)
		}
	}
}
