package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/drivedash/drivedash/internal/ai"
	"github.com/drivedash/drivedash/internal/blocket"
	"github.com/drivedash/drivedash/internal/config"
	"github.com/drivedash/drivedash/internal/ingest"
	"github.com/drivedash/drivedash/internal/notifier"
	"github.com/drivedash/drivedash/internal/storage"
)

func main() {
	slog.Info("Starting drive listing ingestion...")
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Critical error loading configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()

	store, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		slog.Error("Critical error opening store", "source", cfg.DataSource, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	aiClient, err := ai.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		slog.Error("Critical error initializing Gemini client", "error", err)
		os.Exit(1)
	}

	search := blocket.New(cfg.BlocketSearchURL, &http.Client{Timeout: cfg.HTTPTimeout}, cfg.PageDelay)
	n := notifier.New(cfg.DiscordWebhookURL)
	p := ingest.New(store, search, aiClient, n, cfg)

	res, err := p.Run(ctx)
	if err != nil {
		slog.Error("Error running ingestion", "error", err)
		os.Exit(1)
	}
	slog.Info("Ingestion complete", "added", res.Added, "new_deals", res.NewDeals, "total_deals", res.TotalDeals)
}
