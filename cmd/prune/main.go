package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/drivedash/drivedash/internal/availability"
	"github.com/drivedash/drivedash/internal/config"
	"github.com/drivedash/drivedash/internal/models"
	"github.com/drivedash/drivedash/internal/storage"
)

type collection struct {
	name string
	load func(context.Context) ([]models.Listing, error)
	save func(context.Context, []models.Listing) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Critical error loading configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	store, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		slog.Error("Critical error opening store", "source", cfg.DataSource, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	checker, err := availability.New(nil, cfg.CheckDelay)
	if err != nil {
		slog.Error("Critical error creating checker", "error", err)
		os.Exit(1)
	}

	collections := []collection{
		{name: "listings", load: store.Listings, save: store.SaveListings},
		{name: "deals", load: store.Deals, save: store.SaveDeals},
	}

	failed := false
	for _, c := range collections {
		if err := prune(ctx, checker, c); err != nil {
			slog.Error("Failed to prune collection", "collection", c.name, "error", err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func prune(ctx context.Context, checker *availability.Checker, c collection) error {
	items, err := c.load(ctx)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Info("Collection does not exist, skipping", "collection", c.name)
		return nil
	}
	if err != nil {
		return err
	}

	slog.Info("Checking collection", "collection", c.name, "items", len(items))
	active, changed, err := checker.Prune(ctx, items)
	if err != nil {
		return err
	}
	slog.Info("Finished collection", "collection", c.name, "removed", len(items)-len(active), "remaining", len(active))

	if !changed {
		slog.Info("No changes", "collection", c.name)
		return nil
	}
	if err := c.save(ctx, active); err != nil {
		return err
	}
	slog.Info("Updated collection", "collection", c.name)
	return nil
}
