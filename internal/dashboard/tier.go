package dashboard

// Tier is the price quality bucket of a listing, best first.
type Tier string

const (
	TierExcellent Tier = "excellent"
	TierGood      Tier = "good"
	TierOK        Tier = "ok"
	TierHigh      Tier = "high"
)

// Price-per-terabyte baselines in SEK/TB. These track the second-hand
// market and are expected to move as drive prices fall.
const (
	BaselineSSD = 600.0
	BaselineHDD = 150.0
)

// Baseline returns the excellent-tier ceiling for the drive type. The
// ingester uses the same value as its deal threshold.
func Baseline(isSSD bool) float64 {
	if isSSD {
		return BaselineSSD
	}
	return BaselineHDD
}

// ClassifyPrice maps a price per TB to a tier. A missing or NaN price is
// classified high.
func ClassifyPrice(pricePerTB *float64, isSSD bool) Tier {
	if pricePerTB == nil {
		return TierHigh
	}
	p := *pricePerTB
	base := Baseline(isSSD)
	switch {
	case p <= base:
		return TierExcellent
	case p <= base*1.5:
		return TierGood
	case p <= base*2:
		return TierOK
	default:
		return TierHigh
	}
}
