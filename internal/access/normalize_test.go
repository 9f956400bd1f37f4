package access

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNormalizeValidRecords(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	n := &Normalizer{now: func() time.Time { return fixed }}

	raw := []json.RawMessage{
		json.RawMessage(`{"substance":"Ketamine","country_code":"US","access_status":"Banned"}`),
		json.RawMessage(`{"substance":"Psilocybin","country_code":"CA","access_status":"LimitedAccessTrials"}`),
	}

	records := n.Normalize(raw)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	if records[0].Substance != "Ketamine" || records[0].CountryCode != "US" {
		t.Errorf("unexpected first record: %+v", records[0])
	}
	if records[0].Status != StatusBanned {
		t.Errorf("expected Banned, got %s", records[0].Status)
	}
	if !records[0].ObservedAt.Equal(fixed) {
		t.Errorf("expected observed_at %v, got %v", fixed, records[0].ObservedAt)
	}
	if records[1].Status != StatusLimitedTrials {
		t.Errorf("expected LimitedAccessTrials, got %s", records[1].Status)
	}
}

func TestNormalizeDropsMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not an object", `"just a string"`},
		{"missing substance", `{"country_code":"US","access_status":"Banned"}`},
		{"missing country", `{"substance":"Ketamine","access_status":"Banned"}`},
		{"empty substance", `{"substance":"","country_code":"US","access_status":"Banned"}`},
		{"empty status", `{"substance":"Ketamine","country_code":"US","access_status":""}`},
		{"missing status", `{"substance":"Ketamine","country_code":"US"}`},
	}

	n := NewNormalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := n.Normalize([]json.RawMessage{json.RawMessage(tt.raw)})
			if len(records) != 0 {
				t.Errorf("expected record to be dropped, got %+v", records)
			}
		})
	}
}

func TestNormalizeKeepsBatchOnBadRecord(t *testing.T) {
	n := NewNormalizer()
	raw := []json.RawMessage{
		json.RawMessage(`{"substance":"Ketamine","country_code":"US","access_status":"Banned"}`),
		json.RawMessage(`{"bogus":true}`),
		json.RawMessage(`{"substance":"MDMA","country_code":"AU","access_status":"ApprovedMedicalUse"}`),
	}

	records := n.Normalize(raw)
	if len(records) != 2 {
		t.Fatalf("expected 2 surviving records, got %d", len(records))
	}
	if records[1].Substance != "MDMA" {
		t.Errorf("expected MDMA record to survive, got %+v", records[1])
	}
}

func TestNormalizePassesUnknownStatusThrough(t *testing.T) {
	n := NewNormalizer()
	raw := []json.RawMessage{
		json.RawMessage(`{"substance":"Ketamine","country_code":"US","access_status":"Decriminalized"}`),
	}

	records := n.Normalize(raw)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Status != "Decriminalized" {
		t.Errorf("expected verbatim pass-through, got %q", records[0].Status)
	}
	if records[0].Status.Known() {
		t.Error("Decriminalized should not be a known status")
	}
}

func TestStatusKnown(t *testing.T) {
	known := []Status{StatusUnknown, StatusBanned, StatusLimitedTrials, StatusApprovedMedical}
	for _, s := range known {
		if !s.Known() {
			t.Errorf("%s should be known", s)
		}
	}

	for _, s := range []Status{"", "banned", "BANNED", "Legal"} {
		if s.Known() {
			t.Errorf("%q should not be known", s)
		}
	}
}
