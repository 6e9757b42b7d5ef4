package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestListingID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  ListingID
	}{
		{"number", `{"id": 1234567}`, "1234567"},
		{"string", `{"id": "abc-1"}`, "abc-1"},
		{"null", `{"id": null}`, ""},
		{"missing", `{}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l Listing
			if err := json.Unmarshal([]byte(tt.input), &l); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if l.ID != tt.want {
				t.Errorf("ID = %q, want %q", l.ID, tt.want)
			}
		})
	}
}

func TestListing_NullPricePerTB(t *testing.T) {
	var l Listing
	if err := json.Unmarshal([]byte(`{"capacity_tb": 2, "price_sek": 100, "price_per_tb": null}`), &l); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if l.PricePerTB != nil {
		t.Errorf("PricePerTB = %v, want nil", *l.PricePerTB)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
		ok    bool
	}{
		{"2026-10-19T12:00:00Z", time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC), true},
		{"2026-10-19T14:00:00+02:00", time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC), true},
		{"2026-10-19T12:00:00.123456", time.Date(2026, 10, 19, 12, 0, 0, 123456000, time.Local), true},
		{"2026-10-19T12:00:00", time.Date(2026, 10, 19, 12, 0, 0, 0, time.Local), true},
		{"2026-10-19", time.Date(2026, 10, 19, 0, 0, 0, 0, time.Local), true},
		{"", time.Time{}, false},
		{"19/10/2026", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.input)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ParseTimestamp() = %v, want %v", got, tt.want)
			}
		})
	}
}
