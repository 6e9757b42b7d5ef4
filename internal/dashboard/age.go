package dashboard

import (
	"fmt"
	"time"

	"github.com/drivedash/drivedash/internal/models"
)

// Freshness is the recency bucket of a listing.
type Freshness string

const (
	Fresh  Freshness = "fresh"
	Recent Freshness = "recent"
	Old    Freshness = "old"
)

// UnknownAgeLabel is shown for listings whose date cannot be parsed.
const UnknownAgeLabel = "?"

const day = 24 * time.Hour

// Age is the compact relative age of a listing plus its freshness bucket.
type Age struct {
	Label  string
	Bucket Freshness
}

// ClassifyAge derives the age label and bucket for published relative to now.
// Each unit truncates toward zero. Future timestamps are not clamped and
// produce negative labels in the fresh bucket.
func ClassifyAge(published, now time.Time) Age {
	elapsed := now.Sub(published)
	return Age{Label: ageLabel(elapsed), Bucket: ageBucket(elapsed)}
}

// AgeOf classifies a listing's date. Unparseable dates land in the old bucket.
func AgeOf(l models.Listing, now time.Time) Age {
	published, ok := l.Published()
	if !ok {
		return Age{Label: UnknownAgeLabel, Bucket: Old}
	}
	return ClassifyAge(published, now)
}

func ageLabel(elapsed time.Duration) string {
	minutes := int64(elapsed / time.Minute)
	hours := int64(elapsed / time.Hour)
	days := int64(elapsed / day)

	switch {
	case minutes < 60:
		return fmt.Sprintf("%dm", minutes)
	case hours < 24:
		return fmt.Sprintf("%dh", hours)
	case days < 7:
		return fmt.Sprintf("%dd", days)
	case days < 30:
		return fmt.Sprintf("%dw", days/7)
	default:
		return fmt.Sprintf("%dmo", days/30)
	}
}

func ageBucket(elapsed time.Duration) Freshness {
	switch {
	case elapsed < day:
		return Fresh
	case elapsed < 3*day:
		return Recent
	default:
		return Old
	}
}
