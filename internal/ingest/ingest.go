package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/drivedash/drivedash/internal/ai"
	"github.com/drivedash/drivedash/internal/blocket"
	"github.com/drivedash/drivedash/internal/config"
	"github.com/drivedash/drivedash/internal/dashboard"
	"github.com/drivedash/drivedash/internal/models"
	"github.com/drivedash/drivedash/internal/validator"
)

// Result summarizes one ingestion run.
type Result struct {
	Found      int // ads with shipping after dedup
	Skipped    int // already stored
	Added      int
	NewDeals   int
	TotalDeals int
}

type Pipeline struct {
	store     Store
	ads       AdSource
	extractor Extractor
	notifier  DealNotifier
	validator *validator.Validator
	config    *config.Config
	limiter   *rate.Limiter
	clock     func() time.Time
}

func New(store Store, ads AdSource, ex Extractor, n DealNotifier, cfg *config.Config) *Pipeline {
	limit := rate.Inf
	if cfg.ParseDelay > 0 {
		limit = rate.Every(cfg.ParseDelay)
	}
	return &Pipeline{
		store:     store,
		ads:       ads,
		extractor: ex,
		notifier:  n,
		validator: validator.New(),
		config:    cfg,
		limiter:   rate.NewLimiter(limit, 1),
		clock:     time.Now,
	}
}

// Run searches for new drive ads, extracts and prices them, records deals
// and appends a stats history entry. Existing listings are never re-parsed.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	var res Result

	ads, err := p.ads.SearchAll(ctx, p.config.SearchQuery, p.config.MaxPages)
	if err != nil {
		return res, fmt.Errorf("failed to search ads: %w", err)
	}
	candidates := withShipping(ads)
	res.Found = len(candidates)
	slog.Info("Found ads with shipping", "count", len(candidates), "total", len(ads))

	listings, err := loadExisting(ctx, p.store.Listings)
	if err != nil {
		return res, fmt.Errorf("failed to load listings: %w", err)
	}
	deals, err := loadExisting(ctx, p.store.Deals)
	if err != nil {
		return res, fmt.Errorf("failed to load deals: %w", err)
	}

	processed := idSet(listings)
	dealIDs := idSet(deals)

	for _, ad := range candidates {
		if processed[ad.ID] {
			res.Skipped++
			continue
		}

		listing, ok := p.processAd(ctx, ad)
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		if !ok {
			continue
		}

		listings = append(listings, listing)
		processed[listing.ID] = true
		res.Added++

		if !isDeal(listing) {
			continue
		}
		if dealIDs[listing.ID] {
			slog.Info("Deal already saved", "id", listing.ID)
			continue
		}
		deals = append(deals, listing)
		dealIDs[listing.ID] = true
		res.NewDeals++
		slog.Info("New deal", "id", listing.ID, "title", listing.Title, "price_per_tb", *listing.PricePerTB)

		if _, err := p.notifier.Send(ctx, listing); err != nil {
			slog.Error("Error sending to Discord", "id", listing.ID, "error", err)
		}
	}

	if err := p.store.SaveListings(ctx, listings); err != nil {
		return res, fmt.Errorf("failed to save listings: %w", err)
	}
	if err := p.store.SaveDeals(ctx, deals); err != nil {
		return res, fmt.Errorf("failed to save deals: %w", err)
	}
	entry := HistoryEntry(listings, p.clock())
	if err := p.store.AppendHistory(ctx, entry, p.config.MaxHistory); err != nil {
		return res, fmt.Errorf("failed to append stats history: %w", err)
	}

	res.TotalDeals = len(deals)
	slog.Info("Finished ingestion",
		"added", res.Added,
		"skipped", res.Skipped,
		"new_deals", res.NewDeals,
		"total_deals", res.TotalDeals,
		"total_listings", len(listings))
	return res, nil
}

// processAd extracts one ad and turns it into a listing. It reports false
// for ads that are not drives, lack a price or capacity, or are too small.
func (p *Pipeline) processAd(ctx context.Context, ad blocket.Ad) (models.Listing, bool) {
	if err := p.limiter.Wait(ctx); err != nil {
		return models.Listing{}, false
	}

	ext, err := p.extractor.ParseListing(ctx, ad)
	if err != nil {
		slog.Warn("Failed to parse listing, treating as not a drive", "id", ad.ID, "error", err)
		ext = ai.NotADrive()
	}
	if !ext.IsHardDrive {
		slog.Debug("Not a hard drive", "id", ad.ID, "title", ad.Heading)
		return models.Listing{}, false
	}
	if ext.CapacityTB == nil || *ext.CapacityTB <= 0 || ext.PriceSEK == nil || *ext.PriceSEK == 0 {
		slog.Info("Missing capacity or price", "id", ad.ID, "title", ad.Heading)
		return models.Listing{}, false
	}
	if *ext.CapacityTB < p.config.MinCapacityTB {
		slog.Info("Drive too small", "id", ad.ID, "capacity_tb", *ext.CapacityTB, "min", p.config.MinCapacityTB)
		return models.Listing{}, false
	}

	listing := buildListing(ad, ext, p.clock())
	if err := p.validator.ValidateStruct(listing); err != nil {
		slog.Warn("Skipping invalid listing", "id", ad.ID, "error", err)
		return models.Listing{}, false
	}
	slog.Info("Parsed drive", "id", listing.ID, "capacity_tb", listing.CapacityTB, "type", listing.DriveType, "price_per_tb", *listing.PricePerTB)
	return listing, true
}

func buildListing(ad blocket.Ad, ext ai.Extraction, now time.Time) models.Listing {
	driveType := "HDD"
	if ext.IsSSD {
		driveType = "SSD"
	}
	return models.Listing{
		ID:         ad.ID,
		Title:      ad.Heading,
		PriceSEK:   *ext.PriceSEK,
		CapacityTB: *ext.CapacityTB,
		PricePerTB: models.Float(PricePerTB(*ext.PriceSEK, *ext.CapacityTB)),
		IsSSD:      ext.IsSSD,
		DriveType:  driveType,
		URL:        blocket.ItemURL(ad.ID),
		Location:   string(ad.Location),
		Date:       models.FormatTimestamp(ad.Published(now)),
		Confidence: ext.Confidence,
	}
}

// PricePerTB divides price by capacity, rounded half away from zero to two
// decimals.
func PricePerTB(priceSEK, capacityTB float64) float64 {
	return decimal.NewFromFloat(priceSEK).
		Div(decimal.NewFromFloat(capacityTB)).
		Round(2).
		InexactFloat64()
}

func isDeal(l models.Listing) bool {
	return l.PricePerTB != nil && *l.PricePerTB <= dashboard.Baseline(l.IsSSD)
}

// withShipping keeps ads that can be shipped, first occurrence per id.
func withShipping(ads []blocket.Ad) []blocket.Ad {
	seen := make(map[models.ListingID]bool, len(ads))
	var out []blocket.Ad
	for _, ad := range ads {
		if ad.ID == "" || seen[ad.ID] {
			continue
		}
		if !blocket.HasShipping(ad) {
			slog.Debug("Skipping ad without shipping", "id", ad.ID, "title", ad.Heading)
			continue
		}
		seen[ad.ID] = true
		out = append(out, ad)
	}
	return out
}

// loadExisting treats a collection that does not exist yet as empty.
func loadExisting(ctx context.Context, load func(context.Context) ([]models.Listing, error)) ([]models.Listing, error) {
	listings, err := load(ctx)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.Listing{}, nil
	}
	if err != nil {
		return nil, err
	}
	if listings == nil {
		listings = []models.Listing{}
	}
	return listings, nil
}

func idSet(listings []models.Listing) map[models.ListingID]bool {
	ids := make(map[models.ListingID]bool, len(listings))
	for _, l := range listings {
		ids[l.ID] = true
	}
	return ids
}
