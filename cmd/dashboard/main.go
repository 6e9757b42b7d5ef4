package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/drivedash/drivedash/internal/config"
	"github.com/drivedash/drivedash/internal/dashboard"
	"github.com/drivedash/drivedash/internal/loader"
	"github.com/drivedash/drivedash/internal/render"
	"github.com/drivedash/drivedash/internal/storage"
)

func main() {
	sortKey := flag.String("sort", string(dashboard.DefaultSort.Key), "listings sort column")
	order := flag.String("order", string(dashboard.Ascending), "sort direction: asc or desc")
	window := flag.String("window", string(dashboard.Week), "price history window: week, month or year")
	htmlPath := flag.String("html", "", "write an HTML page to this path instead of printing")
	flag.Parse()

	w := dashboard.Window(*window)
	if w != dashboard.Week && w != dashboard.Month && w != dashboard.Year {
		fmt.Fprintf(os.Stderr, "invalid -window %q: want week, month or year\n", *window)
		os.Exit(2)
	}
	dir := dashboard.Direction(*order)
	if dir != dashboard.Ascending && dir != dashboard.Descending {
		fmt.Fprintf(os.Stderr, "invalid -order %q: want asc or desc\n", *order)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Critical error loading configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	src, closeSrc, err := openSource(ctx, cfg)
	if err != nil {
		slog.Error("Critical error opening data source", "source", cfg.DataSource, "error", err)
		os.Exit(1)
	}
	defer closeSrc()

	st := dashboard.New()
	ds, err := loader.Load(ctx, src)
	if err != nil {
		slog.Error("Failed to load dashboard data", "error", err)
		st.Fail(err)
	} else {
		st.Load(ds)
	}

	// Selecting a column sorts ascending; selecting it again flips it.
	want := dashboard.SortState{Key: dashboard.SortKey(*sortKey), Direction: dir}
	for i := 0; i < 2 && st.Sort() != want; i++ {
		st.SetSort(want.Key)
	}
	st.SetWindow(w)

	if *htmlPath == "" {
		if err := render.Terminal(os.Stdout, st.Snapshot()); err != nil {
			slog.Error("Failed to render dashboard", "error", err)
			os.Exit(1)
		}
		return
	}

	f, err := os.Create(*htmlPath)
	if err != nil {
		slog.Error("Failed to create output file", "path", *htmlPath, "error", err)
		os.Exit(1)
	}
	if err := render.HTML(f, st.Snapshot()); err != nil {
		f.Close()
		slog.Error("Failed to render dashboard", "error", err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		slog.Error("Failed to close output file", "path", *htmlPath, "error", err)
		os.Exit(1)
	}
	slog.Info("Wrote dashboard page", "path", *htmlPath)
}

func openSource(ctx context.Context, cfg *config.Config) (loader.Source, func() error, error) {
	if cfg.DataSource == config.SourceHTTP {
		src, err := loader.NewHTTPSource(cfg.DataBaseURL, &http.Client{Timeout: cfg.HTTPTimeout}, cfg.FetchRetries)
		if err != nil {
			return nil, nil, err
		}
		return src, func() error { return nil }, nil
	}
	return storage.Open(ctx, cfg)
}
