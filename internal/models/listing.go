package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ListingID is the marketplace ad id. The feed has carried it both as a
// JSON number and as a string, so both decode into the same value.
type ListingID string

func (id *ListingID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("listing id: %w", err)
		}
		*id = ListingID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("listing id: %w", err)
	}
	*id = ListingID(n.String())
	return nil
}

// Listing is a single storage drive ad. Deals share the same shape.
type Listing struct {
	ID         ListingID `json:"id" firestore:"id"`
	Title      string    `json:"title" firestore:"title"`
	PriceSEK   float64   `json:"price_sek" firestore:"price_sek" validate:"gte=0"`
	CapacityTB float64   `json:"capacity_tb" firestore:"capacity_tb" validate:"gt=0"`
	// PricePerTB is the ranking field. Nil for malformed records.
	PricePerTB *float64 `json:"price_per_tb" firestore:"price_per_tb" validate:"omitempty,gte=0"`
	IsSSD      bool     `json:"is_ssd" firestore:"is_ssd"`
	DriveType  string   `json:"drive_type,omitempty" firestore:"drive_type,omitempty"`
	URL        string   `json:"url" firestore:"url" validate:"omitempty,url"`
	Location   string   `json:"location" firestore:"location"`
	Date       string   `json:"date" firestore:"date" validate:"required"`
	Confidence string   `json:"confidence,omitempty" firestore:"confidence,omitempty"`
}

// dateLayouts covers RFC 3339 and the zone-less ISO form written by the ingester.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// FormatTimestamp writes t in local time without a zone, the form the
// dashboard data has always used.
func FormatTimestamp(t time.Time) string {
	return t.Local().Format("2006-01-02T15:04:05.999999")
}

// ParseTimestamp parses an ISO-8601 timestamp. Values without a zone are
// read as local time; no further normalization happens.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Published returns the parsed listing date.
func (l Listing) Published() (time.Time, bool) {
	return ParseTimestamp(l.Date)
}

// Float returns a pointer to v, for building optional price fields.
func Float(v float64) *float64 {
	return &v
}
