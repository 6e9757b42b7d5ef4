package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DataSource selects where the three collections live.
type DataSource string

const (
	SourceFile      DataSource = "file"
	SourceHTTP      DataSource = "http"
	SourceFirestore DataSource = "firestore"
)

const DefaultBlocketSearchURL = "https://api.blocket.se/search_bff/v2/content"

type Config struct {
	DataSource  DataSource
	DataDir     string
	DataBaseURL string
	ProjectID   string

	HTTPTimeout  time.Duration
	FetchRetries int

	GeminiAPIKey      string
	GeminiModel       string
	DiscordWebhookURL string

	BlocketSearchURL string
	SearchQuery      string
	MaxPages         int
	MinCapacityTB    float64
	MaxHistory       int

	PageDelay  time.Duration
	ParseDelay time.Duration
	CheckDelay time.Duration
}

// Load reads an optional .env file and then the environment. Unset values
// take their defaults; malformed values are errors.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to read .env file", "error", err)
	}

	cfg := &Config{
		DataSource:        DataSource(getEnv("DATA_SOURCE", string(SourceFile))),
		DataDir:           getEnv("DATA_DIR", "data"),
		DataBaseURL:       os.Getenv("DATA_BASE_URL"),
		ProjectID:         os.Getenv("GOOGLE_CLOUD_PROJECT"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.5-flash-lite"),
		DiscordWebhookURL: os.Getenv("DISCORD_WEBHOOK_URL"),
		BlocketSearchURL:  getEnv("BLOCKET_SEARCH_URL", DefaultBlocketSearchURL),
		SearchQuery:       getEnv("SEARCH_QUERY", "hårddisk"),
	}

	switch cfg.DataSource {
	case SourceFile:
	case SourceHTTP:
		if cfg.DataBaseURL == "" {
			return nil, fmt.Errorf("DATA_BASE_URL environment variable is required when DATA_SOURCE=http")
		}
	case SourceFirestore:
		if cfg.ProjectID == "" {
			return nil, fmt.Errorf("GOOGLE_CLOUD_PROJECT environment variable is required when DATA_SOURCE=firestore")
		}
	default:
		return nil, fmt.Errorf("invalid DATA_SOURCE %q: want file, http or firestore", cfg.DataSource)
	}

	var err error
	if cfg.HTTPTimeout, err = getDuration("HTTP_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.PageDelay, err = getDuration("PAGE_DELAY", 300*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.ParseDelay, err = getDuration("PARSE_DELAY", 500*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.CheckDelay, err = getDuration("CHECK_DELAY", 200*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.FetchRetries, err = getInt("FETCH_RETRIES", 2); err != nil {
		return nil, err
	}
	if cfg.MaxPages, err = getInt("MAX_PAGES", 3); err != nil {
		return nil, err
	}
	if cfg.MaxHistory, err = getInt("MAX_HISTORY", 30); err != nil {
		return nil, err
	}
	if cfg.MinCapacityTB, err = getFloat("MIN_CAPACITY_TB", 1.0); err != nil {
		return nil, err
	}

	if cfg.GeminiAPIKey == "" {
		slog.Warn("GEMINI_API_KEY not set, listing extraction will be skipped")
	}
	if cfg.DiscordWebhookURL == "" {
		slog.Warn("DISCORD_WEBHOOK_URL not set, Discord notifications will be skipped")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s %q: must not be negative", key, v)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid %s %q: must not be negative", key, v)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return f, nil
}
