package render

import (
	"strconv"

	"github.com/drivedash/drivedash/internal/dashboard"
	"github.com/drivedash/drivedash/internal/models"
)

// Table placeholders, in the dashboard's language.
const (
	MsgNoListings  = "[INGEN DATA TILLGÄNGLIG]"
	MsgNoDeals     = "[INGA AKTIVA FYND HITTADES]"
	MsgUnavailable = "[FEL: KUNDE INTE LADDA DATA]"
)

// LastUpdatedLayout formats the summary timestamp.
const LastUpdatedLayout = "Jan 2 15:04"

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatPricePerTB(p *float64) string {
	if p == nil {
		return "-"
	}
	return formatNumber(*p)
}

func driveType(l models.Listing) string {
	if l.IsSSD {
		return "SSD"
	}
	return "HDD"
}

// placeholder returns the message shown instead of rows, or "" when the
// view has rows.
func placeholder(v dashboard.TableView, empty string) string {
	switch v.Status {
	case dashboard.StatusUnavailable:
		return MsgUnavailable
	case dashboard.StatusEmpty:
		return empty
	}
	return ""
}

// chartPlaceholder is placeholder for the price history chart.
func chartPlaceholder(c dashboard.Chart) string {
	if c.Status == dashboard.StatusUnavailable {
		return MsgUnavailable
	}
	if c.Len() == 0 {
		return MsgNoListings
	}
	return ""
}

func windowLabel(w dashboard.Window) string {
	switch w {
	case dashboard.Week:
		return "1V"
	case dashboard.Month:
		return "1M"
	case dashboard.Year:
		return "1Å"
	}
	return string(w)
}
