package ingest

import (
	"context"

	"github.com/drivedash/drivedash/internal/ai"
	"github.com/drivedash/drivedash/internal/blocket"
	"github.com/drivedash/drivedash/internal/models"
)

// Store abstracts where the three collections are kept.
type Store interface {
	Listings(ctx context.Context) ([]models.Listing, error)
	Deals(ctx context.Context) ([]models.Listing, error)
	SaveListings(ctx context.Context, listings []models.Listing) error
	SaveDeals(ctx context.Context, deals []models.Listing) error
	AppendHistory(ctx context.Context, entry models.StatsHistoryEntry, maxEntries int) error
}

// AdSource abstracts the marketplace search.
type AdSource interface {
	SearchAll(ctx context.Context, query string, maxPages int) ([]blocket.Ad, error)
}

// Extractor reads drive details out of an ad.
type Extractor interface {
	ParseListing(ctx context.Context, ad blocket.Ad) (ai.Extraction, error)
}

// DealNotifier abstracts the notification layer.
type DealNotifier interface {
	Send(ctx context.Context, deal models.Listing) (string, error)
}
