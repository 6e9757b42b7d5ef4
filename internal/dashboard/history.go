package dashboard

import (
	"encoding/json"
	"time"

	"github.com/drivedash/drivedash/internal/models"
)

// Window is the trailing range of the price history chart.
type Window string

const (
	Week  Window = "week"
	Month Window = "month"
	Year  Window = "year"
)

// Point is a chart value. Invalid points are gaps and keep their index so
// series stay aligned with the labels.
type Point struct {
	Value float64
	Valid bool
}

func pointOf(p *float64) Point {
	if p == nil || *p == 0 {
		return Point{}
	}
	return Point{Value: *p, Valid: true}
}

// MarshalJSON encodes gaps as null.
func (p Point) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(p.Value)
}

// LabelFunc formats a history timestamp for the chart axis.
type LabelFunc func(time.Time) string

// ShortDate labels points with month and day, e.g. "Oct 19".
func ShortDate(t time.Time) string {
	return t.Format("Jan 2")
}

// Chart is the windowed price history, index aligned across all series.
type Chart struct {
	Window     Window      `json:"window"`
	Timestamps []time.Time `json:"timestamps"`
	Labels     []string    `json:"labels"`
	HDD        []Point     `json:"hdd"`
	SSD        []Point     `json:"ssd"`

	// Status is StatusUnavailable when the stats source failed to load.
	Status Status `json:"-"`
	Err    error  `json:"-"`
}

// Len is the number of points in the chart.
func (c Chart) Len() int { return len(c.Labels) }

// Cutoff returns the earliest timestamp kept for w. Months and years are
// calendar relative, so Mar 31 minus a month normalizes to early March.
// Unknown windows return now.
func Cutoff(w Window, now time.Time) time.Time {
	switch w {
	case Week:
		return now.AddDate(0, 0, -7)
	case Month:
		return now.AddDate(0, -1, 0)
	case Year:
		return now.AddDate(-1, 0, 0)
	default:
		return now
	}
}

// WindowHistory keeps the entries at or after the window cutoff, in their
// original order, and extracts the chart series. Entries with unparseable
// dates are dropped.
func WindowHistory(history []models.StatsHistoryEntry, w Window, now time.Time, label LabelFunc) Chart {
	if label == nil {
		label = ShortDate
	}
	cutoff := Cutoff(w, now)
	chart := emptyChart(w)
	for _, e := range history {
		ts, ok := e.Timestamp()
		if !ok || ts.Before(cutoff) {
			continue
		}
		chart.Timestamps = append(chart.Timestamps, ts)
		chart.Labels = append(chart.Labels, label(ts))
		chart.HDD = append(chart.HDD, hddPoint(e))
		chart.SSD = append(chart.SSD, pointOf(e.AvgPriceSSD))
	}
	if chart.Len() > 0 {
		chart.Status = StatusReady
	}
	return chart
}

// UnavailableChart is the chart for a history that could not be loaded.
func UnavailableChart(w Window, err error) Chart {
	chart := emptyChart(w)
	chart.Status = StatusUnavailable
	chart.Err = err
	return chart
}

func emptyChart(w Window) Chart {
	return Chart{
		Window:     w,
		Timestamps: []time.Time{},
		Labels:     []string{},
		HDD:        []Point{},
		SSD:        []Point{},
		Status:     StatusEmpty,
	}
}

// hddPoint prefers the split HDD average and falls back to the legacy
// single average of older datasets.
func hddPoint(e models.StatsHistoryEntry) Point {
	if p := pointOf(e.AvgPriceHDD); p.Valid {
		return p
	}
	if e.AvgPricePerTB == nil {
		return Point{}
	}
	return Point{Value: *e.AvgPricePerTB, Valid: true}
}
