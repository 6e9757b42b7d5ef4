package models

import "time"

// Stats is the stats.json document.
type Stats struct {
	History []StatsHistoryEntry `json:"history"`
}

// StatsHistoryEntry is one periodic aggregate written by the ingester.
//
// AvgPricePerTB predates the HDD/SSD split and is kept for old datasets.
type StatsHistoryEntry struct {
	Date          string   `json:"date" firestore:"date"`
	AvgPricePerTB *float64 `json:"avg_price_per_tb,omitempty" firestore:"avg_price_per_tb,omitempty"`
	AvgPriceHDD   *float64 `json:"avg_price_hdd,omitempty" firestore:"avg_price_hdd,omitempty"`
	AvgPriceSSD   *float64 `json:"avg_price_ssd,omitempty" firestore:"avg_price_ssd,omitempty"`
	TotalListings int      `json:"total_listings,omitempty" firestore:"total_listings,omitempty"`
}

func (e StatsHistoryEntry) Timestamp() (time.Time, bool) {
	return ParseTimestamp(e.Date)
}
