package loader

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/drivedash/drivedash/internal/dashboard"
	"github.com/drivedash/drivedash/internal/models"
	"github.com/drivedash/drivedash/internal/validator"
)

// ErrAllSourcesFailed is returned when none of the three collections could
// be fetched.
var ErrAllSourcesFailed = errors.New("all data sources failed")

// Source fetches the three collections the dashboard is built from.
type Source interface {
	Listings(ctx context.Context) ([]models.Listing, error)
	Deals(ctx context.Context) ([]models.Listing, error)
	Stats(ctx context.Context) (models.Stats, error)
}

// Load fetches listings, deals and stats concurrently. A failing source
// leaves its collection empty and is recorded in Dataset.Unavailable; the
// others are still returned. Only when every source fails does Load return
// an error, joining ErrAllSourcesFailed with the individual causes.
func Load(ctx context.Context, src Source) (dashboard.Dataset, error) {
	var (
		listings, deals                 []models.Listing
		stats                           models.Stats
		listingsErr, dealsErr, statsErr error
	)

	// Each goroutine returns nil on purpose. Per-source errors are kept in
	// their own variables so one failure neither cancels nor hides the
	// others, and Wait never reports an error.
	var g errgroup.Group
	g.Go(func() error {
		listings, listingsErr = src.Listings(ctx)
		return nil
	})
	g.Go(func() error {
		deals, dealsErr = src.Deals(ctx)
		return nil
	})
	g.Go(func() error {
		stats, statsErr = src.Stats(ctx)
		return nil
	})
	_ = g.Wait()

	ds := dashboard.Dataset{
		Listings: []models.Listing{},
		Deals:    []models.Listing{},
		Stats:    models.Stats{History: []models.StatsHistoryEntry{}},
	}
	unavailable := make(map[dashboard.Source]error)

	if listingsErr != nil {
		slog.Warn("Failed to load listings", "error", listingsErr)
		unavailable[dashboard.SourceListings] = listingsErr
	} else if listings != nil {
		ds.Listings = listings
	}
	if dealsErr != nil {
		slog.Warn("Failed to load deals", "error", dealsErr)
		unavailable[dashboard.SourceDeals] = dealsErr
	} else if deals != nil {
		ds.Deals = deals
	}
	if statsErr != nil {
		slog.Warn("Failed to load stats", "error", statsErr)
		unavailable[dashboard.SourceStats] = statsErr
	} else if stats.History != nil {
		ds.Stats = stats
	}

	if len(unavailable) == 3 {
		return dashboard.Dataset{}, errors.Join(ErrAllSourcesFailed, listingsErr, dealsErr, statsErr)
	}
	if len(unavailable) > 0 {
		ds.Unavailable = unavailable
	}

	logInvalid("listings", ds.Listings)
	logInvalid("deals", ds.Deals)

	slog.Info("Loaded dashboard data",
		"listings", len(ds.Listings),
		"deals", len(ds.Deals),
		"history", len(ds.Stats.History),
		"unavailable", len(unavailable))
	return ds, nil
}

// logInvalid reports malformed records. They are kept: the dashboard
// derivations accept any record.
func logInvalid(collection string, listings []models.Listing) {
	v := validator.New()
	for _, e := range v.Listings(listings) {
		slog.Warn("Invalid record", "collection", collection, "index", e.Index, "id", e.ID, "error", e.Err)
	}
}
