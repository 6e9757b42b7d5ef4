package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/drivedash/drivedash/internal/config"
	"github.com/drivedash/drivedash/internal/models"
)

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())

	listings := []models.Listing{
		{ID: "1", Title: "Hårddisk 4TB", PriceSEK: 600, CapacityTB: 4, PricePerTB: models.Float(150), Location: "Malmö", Date: "2026-10-19T10:00:00"},
		{ID: "2", Title: "Trasig", PriceSEK: 50, CapacityTB: 1, Date: "2026-10-18T10:00:00"},
	}
	if err := store.SaveListings(ctx, listings); err != nil {
		t.Fatalf("SaveListings: %v", err)
	}
	got, err := store.Listings(ctx)
	if err != nil {
		t.Fatalf("Listings: %v", err)
	}
	if diff := cmp.Diff(listings, got); diff != "" {
		t.Errorf("listings mismatch (-want +got):\n%s", diff)
	}

	raw, err := os.ReadFile(filepath.Join(store.Dir(), "listings.json"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(raw), "Hårddisk") {
		t.Errorf("listings.json escaped non-ASCII text:\n%s", raw)
	}
	if !strings.Contains(string(raw), `"price_per_tb": null`) {
		t.Errorf("missing price_per_tb not written as null:\n%s", raw)
	}
}

func TestFileStore_MissingFiles(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())

	if _, err := store.Listings(ctx); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Listings() error = %v, want fs.ErrNotExist", err)
	}
	if _, err := store.Stats(ctx); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Stats() error = %v, want fs.ErrNotExist", err)
	}
}

func TestFileStore_SaveNilWritesEmptyArray(t *testing.T) {
	store := NewFileStore(t.TempDir())
	if err := store.SaveDeals(context.Background(), nil); err != nil {
		t.Fatalf("SaveDeals: %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(store.Dir(), "deals.json"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if strings.TrimSpace(string(raw)) != "[]" {
		t.Errorf("deals.json = %q, want []", raw)
	}
}

func TestFileStore_AppendHistoryTrims(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())

	for i := 0; i < 5; i++ {
		entry := models.StatsHistoryEntry{Date: fmt.Sprintf("2026-10-1%dT00:00:00", i), AvgPriceHDD: models.Float(float64(100 + i))}
		if err := store.AppendHistory(ctx, entry, 3); err != nil {
			t.Fatalf("AppendHistory %d: %v", i, err)
		}
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if len(stats.History) != 3 {
		t.Fatalf("history length = %d, want 3", len(stats.History))
	}
	if stats.History[0].Date != "2026-10-12T00:00:00" || stats.History[2].Date != "2026-10-14T00:00:00" {
		t.Errorf("kept %s..%s, want the newest three", stats.History[0].Date, stats.History[2].Date)
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "stats.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileStore(dir).Stats(context.Background()); err == nil {
		t.Error("Stats() on corrupt file returned nil error")
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	store, closeFn, err := Open(context.Background(), &config.Config{DataSource: config.SourceFile, DataDir: dir})
	if err != nil {
		t.Fatalf("Open(file) error = %v", err)
	}
	defer closeFn()
	if fileStore, ok := store.(*FileStore); !ok || fileStore.Dir() != dir {
		t.Errorf("Open(file) = %T, want *FileStore in %s", store, dir)
	}

	if _, _, err := Open(context.Background(), &config.Config{DataSource: config.SourceHTTP}); err == nil {
		t.Error("Open(http) error = nil, want read-only error")
	}
}
