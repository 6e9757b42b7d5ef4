package dashboard

import (
	"maps"
	"math"
	"slices"
	"time"

	"github.com/drivedash/drivedash/internal/models"
)

// NotAvailable is the last-updated label when there is no stats history.
const NotAvailable = "N/A"

// Source identifies one of the three collections feeding the dashboard.
type Source string

const (
	SourceListings Source = "listings"
	SourceDeals    Source = "deals"
	SourceStats    Source = "stats"
)

// Dataset is one coalesced load of all three collections. Unavailable
// records the sources whose fetch failed; their collections hold the empty
// default.
type Dataset struct {
	Listings    []models.Listing
	Deals       []models.Listing
	Stats       models.Stats
	Unavailable map[Source]error
}

// Status describes what a table view can show.
type Status string

const (
	StatusReady       Status = "ready"
	StatusEmpty       Status = "empty"
	StatusUnavailable Status = "unavailable"
)

// ListingRow is a listing with its derived display metrics.
type ListingRow struct {
	Listing models.Listing
	Age     Age
	Tier    Tier
}

// TableView is the listings or deals table.
type TableView struct {
	Status Status
	Err    error
	Rows   []ListingRow
}

// Summary holds the header figures.
type Summary struct {
	AveragePricePerTB int
	TotalListings     int
	TotalDeals        int
	// LastUpdated is the newest history entry; zero when not available.
	LastUpdated time.Time
}

// HasLastUpdated reports whether the history produced a timestamp.
func (s Summary) HasLastUpdated() bool { return !s.LastUpdated.IsZero() }

// LastUpdatedLabel formats LastUpdated with layout, or returns NotAvailable.
func (s Summary) LastUpdatedLabel(layout string) string {
	if !s.HasLastUpdated() {
		return NotAvailable
	}
	return s.LastUpdated.Format(layout)
}

// Snapshot is everything a renderer needs, detached from the state.
type Snapshot struct {
	Listings TableView
	Deals    TableView
	Chart    Chart
	Summary  Summary
	Sort     SortState
	Window   Window
}

// State owns the loaded dataset, the sort and window selections and the
// views derived from them. Every transition recomputes only the views that
// depend on what changed. State is not safe for concurrent use.
type State struct {
	clock func() time.Time
	label LabelFunc

	data    Dataset
	failure error
	sort    SortState
	window  Window

	listings TableView
	deals    TableView
	chart    Chart
	summary  Summary

	// onRecompute, when set, is called with the name of each view derived.
	onRecompute func(view string)
}

// Option configures a State.
type Option func(*State)

// WithClock sets the reference time used for ages and chart cutoffs.
func WithClock(clock func() time.Time) Option {
	return func(s *State) { s.clock = clock }
}

// WithLabelFunc sets the chart label formatter.
func WithLabelFunc(label LabelFunc) Option {
	return func(s *State) { s.label = label }
}

// New returns an empty state sorted by price per TB ascending with the
// weekly chart window.
func New(opts ...Option) *State {
	s := &State{
		clock:  time.Now,
		label:  ShortDate,
		sort:   DefaultSort,
		window: Week,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.recomputeAll()
	return s
}

// Load replaces all three collections in one transition and recomputes
// every view and the summary.
func (s *State) Load(ds Dataset) {
	next := Dataset{
		Listings:    slices.Clone(ds.Listings),
		Deals:       slices.Clone(ds.Deals),
		Stats:       models.Stats{History: slices.Clone(ds.Stats.History)},
		Unavailable: maps.Clone(ds.Unavailable),
	}
	s.data = next
	s.failure = nil
	s.recomputeAll()
}

// Fail marks the listings and deals views unavailable after a total load
// failure. Chart, summary and selections are left untouched. The failure
// holds until the next Load.
//
// The chart reports unavailable only through Dataset.Unavailable[SourceStats].
func (s *State) Fail(err error) {
	s.failure = err
	s.recomputeListings()
	s.recomputeDeals()
}

// SetSort applies the toggle rule for key and re-sorts the listings view.
func (s *State) SetSort(key SortKey) {
	s.sort = s.sort.Toggle(key)
	s.recomputeListings()
}

// SetWindow changes the chart window and recomputes the chart.
func (s *State) SetWindow(w Window) {
	s.window = w
	s.recomputeChart()
}

func (s *State) Sort() SortState { return s.sort }

func (s *State) Window() Window { return s.window }

func (s *State) Listings() TableView { return cloneTable(s.listings) }

func (s *State) Deals() TableView { return cloneTable(s.deals) }

func (s *State) Chart() Chart { return cloneChart(s.chart) }

func (s *State) Summary() Summary { return s.summary }

// Snapshot returns copies of all views.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Listings: s.Listings(),
		Deals:    s.Deals(),
		Chart:    s.Chart(),
		Summary:  s.summary,
		Sort:     s.sort,
		Window:   s.window,
	}
}

func (s *State) recomputeAll() {
	s.recomputeListings()
	s.recomputeDeals()
	s.recomputeChart()
	s.recomputeSummary()
}

func (s *State) recomputeListings() {
	s.derived("listings")
	s.listings = ListingsView(s.data.Listings, s.sort, s.clock(), s.loadErr(SourceListings))
}

func (s *State) recomputeDeals() {
	s.derived("deals")
	s.deals = DealsView(s.data.Deals, s.clock(), s.loadErr(SourceDeals))
}

func (s *State) derived(view string) {
	if s.onRecompute != nil {
		s.onRecompute(view)
	}
}

func (s *State) loadErr(src Source) error {
	if s.failure != nil {
		return s.failure
	}
	return s.data.Unavailable[src]
}

func (s *State) recomputeChart() {
	s.derived("chart")
	if err := s.data.Unavailable[SourceStats]; err != nil {
		s.chart = UnavailableChart(s.window, err)
		return
	}
	s.chart = WindowHistory(s.data.Stats.History, s.window, s.clock(), s.label)
}

func (s *State) recomputeSummary() {
	s.derived("summary")
	s.summary = Summarize(s.data)
}

// ListingsView sorts listings and attaches age and price tier. A non-nil
// loadErr yields the unavailable view.
func ListingsView(listings []models.Listing, sort SortState, now time.Time, loadErr error) TableView {
	if loadErr != nil {
		return TableView{Status: StatusUnavailable, Err: loadErr, Rows: []ListingRow{}}
	}
	if len(listings) == 0 {
		return TableView{Status: StatusEmpty, Rows: []ListingRow{}}
	}
	sorted := SortListings(listings, sort)
	rows := make([]ListingRow, 0, len(sorted))
	for _, l := range sorted {
		rows = append(rows, ListingRow{
			Listing: l,
			Age:     AgeOf(l, now),
			Tier:    ClassifyPrice(l.PricePerTB, l.IsSSD),
		})
	}
	return TableView{Status: StatusReady, Rows: rows}
}

// DealsView keeps the deals in feed order. Deals were selected upstream as
// excellent, so every row carries that tier.
func DealsView(deals []models.Listing, now time.Time, loadErr error) TableView {
	if loadErr != nil {
		return TableView{Status: StatusUnavailable, Err: loadErr, Rows: []ListingRow{}}
	}
	if len(deals) == 0 {
		return TableView{Status: StatusEmpty, Rows: []ListingRow{}}
	}
	rows := make([]ListingRow, 0, len(deals))
	for _, d := range deals {
		rows = append(rows, ListingRow{Listing: d, Age: AgeOf(d, now), Tier: TierExcellent})
	}
	return TableView{Status: StatusReady, Rows: rows}
}

// Summarize computes the header figures of a dataset. Listings without a
// price per TB count as zero in the average.
func Summarize(ds Dataset) Summary {
	sum := Summary{
		TotalListings: len(ds.Listings),
		TotalDeals:    len(ds.Deals),
	}
	if len(ds.Listings) > 0 {
		var total float64
		for _, l := range ds.Listings {
			if l.PricePerTB != nil && !math.IsNaN(*l.PricePerTB) {
				total += *l.PricePerTB
			}
		}
		sum.AveragePricePerTB = int(math.Round(total / float64(len(ds.Listings))))
	}
	if h := ds.Stats.History; len(h) > 0 {
		if ts, ok := h[len(h)-1].Timestamp(); ok {
			sum.LastUpdated = ts
		}
	}
	return sum
}

func cloneTable(v TableView) TableView {
	v.Rows = slices.Clone(v.Rows)
	return v
}

func cloneChart(c Chart) Chart {
	c.Timestamps = slices.Clone(c.Timestamps)
	c.Labels = slices.Clone(c.Labels)
	c.HDD = slices.Clone(c.HDD)
	c.SSD = slices.Clone(c.SSD)
	return c
}
