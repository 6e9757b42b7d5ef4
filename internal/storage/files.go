package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/drivedash/drivedash/internal/models"
)

const (
	listingsFile = "listings.json"
	dealsFile    = "deals.json"
	statsFile    = "stats.json"
)

// FileStore keeps the three collections as JSON documents in one directory,
// the layout the static dashboard is served from.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) Dir() string { return s.dir }

// Listings reads listings.json. A missing file returns an error wrapping
// fs.ErrNotExist.
func (s *FileStore) Listings(_ context.Context) ([]models.Listing, error) {
	var listings []models.Listing
	if err := s.read(listingsFile, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

func (s *FileStore) Deals(_ context.Context) ([]models.Listing, error) {
	var deals []models.Listing
	if err := s.read(dealsFile, &deals); err != nil {
		return nil, err
	}
	return deals, nil
}

func (s *FileStore) Stats(_ context.Context) (models.Stats, error) {
	var stats models.Stats
	if err := s.read(statsFile, &stats); err != nil {
		return models.Stats{}, err
	}
	return stats, nil
}

func (s *FileStore) SaveListings(_ context.Context, listings []models.Listing) error {
	return s.write(listingsFile, nonNil(listings))
}

func (s *FileStore) SaveDeals(_ context.Context, deals []models.Listing) error {
	return s.write(dealsFile, nonNil(deals))
}

func (s *FileStore) SaveStats(_ context.Context, stats models.Stats) error {
	if stats.History == nil {
		stats.History = []models.StatsHistoryEntry{}
	}
	return s.write(statsFile, stats)
}

// AppendHistory appends entry to stats.json and keeps the newest
// maxEntries entries. A missing stats file starts a new history.
func (s *FileStore) AppendHistory(ctx context.Context, entry models.StatsHistoryEntry, maxEntries int) error {
	stats, err := s.Stats(ctx)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	stats.History = append(stats.History, entry)
	if maxEntries > 0 && len(stats.History) > maxEntries {
		stats.History = stats.History[len(stats.History)-maxEntries:]
	}
	return s.SaveStats(ctx, stats)
}

func (s *FileStore) read(name string, v any) error {
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// write replaces the file via a temp file and rename so readers never see
// a partial document.
func (s *FileStore) write(name string, v any) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

func nonNil(listings []models.Listing) []models.Listing {
	if listings == nil {
		return []models.Listing{}
	}
	return listings
}
