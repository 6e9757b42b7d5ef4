package loader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/drivedash/drivedash/internal/dashboard"
	"github.com/drivedash/drivedash/internal/models"
)

type mockSource struct {
	listings    []models.Listing
	deals       []models.Listing
	stats       models.Stats
	listingsErr error
	dealsErr    error
	statsErr    error
}

func (m *mockSource) Listings(ctx context.Context) ([]models.Listing, error) {
	return m.listings, m.listingsErr
}

func (m *mockSource) Deals(ctx context.Context) ([]models.Listing, error) {
	return m.deals, m.dealsErr
}

func (m *mockSource) Stats(ctx context.Context) (models.Stats, error) {
	return m.stats, m.statsErr
}

func TestLoad_AllSourcesSucceed(t *testing.T) {
	src := &mockSource{
		listings: []models.Listing{{ID: "1", CapacityTB: 4, Date: "2026-10-19"}},
		deals:    []models.Listing{{ID: "1", CapacityTB: 4, Date: "2026-10-19"}},
		stats:    models.Stats{History: []models.StatsHistoryEntry{{Date: "2026-10-19T00:00:00"}}},
	}

	ds, err := Load(context.Background(), src)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(ds.Listings) != 1 || len(ds.Deals) != 1 || len(ds.Stats.History) != 1 {
		t.Errorf("Load() = %d listings, %d deals, %d history; want 1 each", len(ds.Listings), len(ds.Deals), len(ds.Stats.History))
	}
	if ds.Unavailable != nil {
		t.Errorf("Unavailable = %v, want nil", ds.Unavailable)
	}
}

func TestLoad_PartialFailure(t *testing.T) {
	dealsErr := errors.New("deals down")
	src := &mockSource{
		listings: []models.Listing{{ID: "1", CapacityTB: 4, Date: "2026-10-19"}},
		dealsErr: dealsErr,
		stats:    models.Stats{History: []models.StatsHistoryEntry{{Date: "2026-10-19T00:00:00"}}},
	}

	ds, err := Load(context.Background(), src)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(ds.Listings) != 1 {
		t.Errorf("listings = %d, want 1", len(ds.Listings))
	}
	if ds.Deals == nil || len(ds.Deals) != 0 {
		t.Errorf("deals = %v, want empty non-nil slice", ds.Deals)
	}
	if !errors.Is(ds.Unavailable[dashboard.SourceDeals], dealsErr) {
		t.Errorf("Unavailable[deals] = %v, want %v", ds.Unavailable[dashboard.SourceDeals], dealsErr)
	}
	if _, ok := ds.Unavailable[dashboard.SourceListings]; ok {
		t.Error("listings marked unavailable")
	}

	st := dashboard.New()
	st.Load(ds)
	if got := st.Deals().Status; got != dashboard.StatusUnavailable {
		t.Errorf("deals status = %s, want unavailable", got)
	}
	if got := st.Listings().Status; got != dashboard.StatusReady {
		t.Errorf("listings status = %s, want ready", got)
	}
}

func TestLoad_StatsFailureMarksChartUnavailable(t *testing.T) {
	statsErr := errors.New("stats.json: 503")
	src := &mockSource{
		listings: []models.Listing{{ID: "1", CapacityTB: 4, Date: "2026-10-19"}},
		statsErr: statsErr,
	}

	ds, err := Load(context.Background(), src)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	st := dashboard.New()
	st.Load(ds)
	if chart := st.Chart(); chart.Status != dashboard.StatusUnavailable || !errors.Is(chart.Err, statsErr) {
		t.Errorf("chart status = %s err = %v, want unavailable", chart.Status, chart.Err)
	}
}

// slowSource fails listings at once and only answers the other
// collections after that failure was returned.
type slowSource struct {
	failed chan struct{}
}

func (s *slowSource) Listings(ctx context.Context) ([]models.Listing, error) {
	defer close(s.failed)
	return nil, errors.New("listings down")
}

func (s *slowSource) Deals(ctx context.Context) ([]models.Listing, error) {
	<-s.failed
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []models.Listing{{ID: "d1", CapacityTB: 4, Date: "2026-10-19"}}, nil
}

func (s *slowSource) Stats(ctx context.Context) (models.Stats, error) {
	<-s.failed
	if err := ctx.Err(); err != nil {
		return models.Stats{}, err
	}
	return models.Stats{History: []models.StatsHistoryEntry{{Date: "2026-10-19T00:00:00"}}}, nil
}

func TestLoad_FailureDoesNotCancelSiblings(t *testing.T) {
	ds, err := Load(context.Background(), &slowSource{failed: make(chan struct{})})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(ds.Deals) != 1 || len(ds.Stats.History) != 1 {
		t.Errorf("Load() = %d deals, %d history; want 1 each", len(ds.Deals), len(ds.Stats.History))
	}
	if ds.Unavailable[dashboard.SourceListings] == nil || len(ds.Unavailable) != 1 {
		t.Errorf("Unavailable = %v, want only listings", ds.Unavailable)
	}
}

func TestLoad_AllSourcesFail(t *testing.T) {
	boom := errors.New("boom")
	src := &mockSource{listingsErr: boom, dealsErr: boom, statsErr: boom}

	_, err := Load(context.Background(), src)
	if !errors.Is(err, ErrAllSourcesFailed) {
		t.Fatalf("Load() error = %v, want ErrAllSourcesFailed", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("Load() error = %v, want it to wrap the cause", err)
	}
}

func TestLoad_NilCollectionsBecomeEmpty(t *testing.T) {
	ds, err := Load(context.Background(), &mockSource{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if ds.Listings == nil || ds.Deals == nil || ds.Stats.History == nil {
		t.Errorf("Load() returned nil collections: %+v", ds)
	}
}

func TestHTTPSource(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/data/listings.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id": 101, "title": "WD Red 4TB", "price_sek": 600, "capacity_tb": 4, "price_per_tb": 150, "date": "2026-10-19T10:00:00"}]`))
	})
	mux.HandleFunc("/data/deals.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	mux.HandleFunc("/data/stats.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"history": [{"date": "2026-10-19T00:00:00", "avg_price_hdd": 140.5, "avg_price_ssd": null, "total_listings": 1}]}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	src, err := NewHTTPSource(server.URL+"/data/", server.Client(), 0)
	if err != nil {
		t.Fatalf("NewHTTPSource() error = %v", err)
	}

	ds, err := Load(context.Background(), src)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(ds.Listings) != 1 || ds.Listings[0].ID != "101" {
		t.Errorf("listings = %+v, want one listing with id 101", ds.Listings)
	}
	if len(ds.Deals) != 0 {
		t.Errorf("deals = %+v, want none", ds.Deals)
	}
	if len(ds.Stats.History) != 1 || ds.Stats.History[0].AvgPriceSSD != nil {
		t.Errorf("history = %+v, want one entry without SSD average", ds.Stats.History)
	}
}

func TestHTTPSource_NotFoundIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer server.Close()

	src, err := NewHTTPSource(server.URL, server.Client(), 3)
	if err != nil {
		t.Fatalf("NewHTTPSource() error = %v", err)
	}
	if _, err := src.Deals(context.Background()); err == nil {
		t.Fatal("Deals() error = nil, want 404 error")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server called %d times, want 1", got)
	}
}

func TestHTTPSource_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	src, err := NewHTTPSource(server.URL, server.Client(), 1)
	if err != nil {
		t.Fatalf("NewHTTPSource() error = %v", err)
	}
	deals, err := src.Deals(context.Background())
	if err != nil {
		t.Fatalf("Deals() error = %v", err)
	}
	if len(deals) != 0 {
		t.Errorf("deals = %v, want empty", deals)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server called %d times, want 2", got)
	}
}

func TestNewHTTPSource_InvalidURL(t *testing.T) {
	if _, err := NewHTTPSource("ftp://example.com", nil, 0); err == nil {
		t.Error("NewHTTPSource() accepted a non-http scheme")
	}
}
