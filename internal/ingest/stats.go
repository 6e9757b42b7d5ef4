package ingest

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/drivedash/drivedash/internal/models"
)

// HistoryEntry aggregates listings into one stats history point. Averages
// only count listings with a non-zero price per TB and are 0 when no
// listing qualifies.
func HistoryEntry(listings []models.Listing, now time.Time) models.StatsHistoryEntry {
	var all, hdd, ssd []decimal.Decimal
	for _, l := range listings {
		if l.PricePerTB == nil || *l.PricePerTB == 0 {
			continue
		}
		v := decimal.NewFromFloat(*l.PricePerTB)
		all = append(all, v)
		if l.IsSSD {
			ssd = append(ssd, v)
		} else {
			hdd = append(hdd, v)
		}
	}

	return models.StatsHistoryEntry{
		Date:          models.FormatTimestamp(now),
		AvgPricePerTB: models.Float(average(all)),
		AvgPriceHDD:   models.Float(average(hdd)),
		AvgPriceSSD:   models.Float(average(ssd)),
		TotalListings: len(listings),
	}
}

func average(values []decimal.Decimal) float64 {
	if len(values) == 0 {
		return 0
	}
	return decimal.Avg(values[0], values[1:]...).Round(2).InexactFloat64()
}
