package dashboard

import (
	"cmp"
	"slices"
	"strings"

	"github.com/drivedash/drivedash/internal/models"
)

// SortKey names a sortable listing column.
type SortKey string

const (
	SortPricePerTB SortKey = "price_per_tb"
	SortPriceSEK   SortKey = "price_sek"
	SortCapacityTB SortKey = "capacity_tb"
	SortIsSSD      SortKey = "is_ssd"
	SortAge        SortKey = "age"
	SortDate       SortKey = "date"
	SortLocation   SortKey = "location"
	SortTitle      SortKey = "title"
	SortDriveType  SortKey = "drive_type"
	SortURL        SortKey = "url"
)

// Direction is the sort order.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// SortState is the active column and direction of the listings table.
type SortState struct {
	Key       SortKey
	Direction Direction
}

// DefaultSort orders by price per TB, cheapest first.
var DefaultSort = SortState{Key: SortPricePerTB, Direction: Ascending}

// Toggle flips the direction when key is already active and otherwise
// switches to key in ascending order.
func (s SortState) Toggle(key SortKey) SortState {
	if s.Key == key {
		if s.Direction == Ascending {
			return SortState{Key: key, Direction: Descending}
		}
		return SortState{Key: key, Direction: Ascending}
	}
	return SortState{Key: key, Direction: Ascending}
}

type valueKind int

const (
	kindMissing valueKind = iota
	kindNumber
	kindText
)

// sortValue is a field value lifted out of a listing for comparison.
type sortValue struct {
	kind valueKind
	num  float64
	text string
}

func number(v float64) sortValue { return sortValue{kind: kindNumber, num: v} }

func text(s string) sortValue { return sortValue{kind: kindText, text: strings.ToLower(s)} }

func optional(p *float64) sortValue {
	if p == nil {
		return sortValue{}
	}
	return number(*p)
}

func boolean(b bool) sortValue {
	if b {
		return number(1)
	}
	return number(0)
}

var accessors = map[SortKey]func(models.Listing) sortValue{
	SortPricePerTB: func(l models.Listing) sortValue { return optional(l.PricePerTB) },
	SortPriceSEK:   func(l models.Listing) sortValue { return number(l.PriceSEK) },
	SortCapacityTB: func(l models.Listing) sortValue { return number(l.CapacityTB) },
	SortIsSSD:      func(l models.Listing) sortValue { return boolean(l.IsSSD) },
	SortDate:       func(l models.Listing) sortValue { return text(l.Date) },
	SortLocation:   func(l models.Listing) sortValue { return text(l.Location) },
	SortTitle:      func(l models.Listing) sortValue { return text(l.Title) },
	SortDriveType:  func(l models.Listing) sortValue { return text(l.DriveType) },
	SortURL:        func(l models.Listing) sortValue { return text(l.URL) },
	SortAge: func(l models.Listing) sortValue {
		t, ok := l.Published()
		if !ok {
			return sortValue{}
		}
		return number(float64(t.UnixMilli()))
	},
}

// value returns the comparable value of key for l. Unknown keys read as missing.
func value(key SortKey, l models.Listing) sortValue {
	get, ok := accessors[key]
	if !ok {
		return sortValue{}
	}
	return get(l)
}

// compareValues orders missing before anything else, numbers numerically
// and text lexicographically.
func compareValues(a, b sortValue) int {
	if a.kind == kindMissing || b.kind == kindMissing {
		return cmp.Compare(boolRank(a.kind != kindMissing), boolRank(b.kind != kindMissing))
	}
	if a.kind == kindText || b.kind == kindText {
		return strings.Compare(a.text, b.text)
	}
	return cmp.Compare(a.num, b.num)
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// SortListings returns listings ordered by s. The input slice is left as is.
// Equal keys keep their input order.
func SortListings(listings []models.Listing, s SortState) []models.Listing {
	out := slices.Clone(listings)
	if out == nil {
		out = []models.Listing{}
	}
	slices.SortStableFunc(out, func(a, b models.Listing) int {
		c := compareValues(value(s.Key, a), value(s.Key, b))
		if s.Direction == Descending {
			return -c
		}
		return c
	})
	return out
}
