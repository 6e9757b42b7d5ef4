package storage

import (
	"context"
	"fmt"

	"github.com/drivedash/drivedash/internal/config"
	"github.com/drivedash/drivedash/internal/models"
)

// Store is the read/write surface shared by FileStore and the Firestore
// Client.
type Store interface {
	Listings(ctx context.Context) ([]models.Listing, error)
	Deals(ctx context.Context) ([]models.Listing, error)
	Stats(ctx context.Context) (models.Stats, error)
	SaveListings(ctx context.Context, listings []models.Listing) error
	SaveDeals(ctx context.Context, deals []models.Listing) error
	AppendHistory(ctx context.Context, entry models.StatsHistoryEntry, maxEntries int) error
}

// Open returns the writable store selected by cfg and a function releasing
// it. The http data source is read-only and cannot be opened here.
func Open(ctx context.Context, cfg *config.Config) (Store, func() error, error) {
	switch cfg.DataSource {
	case config.SourceFile:
		return NewFileStore(cfg.DataDir), func() error { return nil }, nil
	case config.SourceFirestore:
		client, err := New(ctx, cfg.ProjectID)
		if err != nil {
			return nil, nil, err
		}
		return client, client.Close, nil
	}
	return nil, nil, fmt.Errorf("data source %q is read-only", cfg.DataSource)
}
