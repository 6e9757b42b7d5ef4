package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/drivedash/drivedash/internal/models"
	"github.com/drivedash/drivedash/internal/util"
)

const retryBase = 500 * time.Millisecond

// HTTPSource reads listings.json, deals.json and stats.json relative to a
// base URL, the way the published static dashboard is hosted.
type HTTPSource struct {
	baseURL *url.URL
	client  *http.Client
	retries int
}

// NewHTTPSource returns a source rooted at baseURL. A nil client uses a
// client with a 30s timeout.
func NewHTTPSource(baseURL string, client *http.Client, retries int) (*HTTPSource, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if retries < 0 {
		retries = 0
	}
	return &HTTPSource{baseURL: u, client: client, retries: retries}, nil
}

func (s *HTTPSource) Listings(ctx context.Context) ([]models.Listing, error) {
	var listings []models.Listing
	if err := s.get(ctx, "listings.json", &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

func (s *HTTPSource) Deals(ctx context.Context) ([]models.Listing, error) {
	var deals []models.Listing
	if err := s.get(ctx, "deals.json", &deals); err != nil {
		return nil, err
	}
	return deals, nil
}

func (s *HTTPSource) Stats(ctx context.Context) (models.Stats, error) {
	var stats models.Stats
	if err := s.get(ctx, "stats.json", &stats); err != nil {
		return models.Stats{}, err
	}
	return stats, nil
}

// get fetches one document, retrying network errors and 5xx responses.
// Client errors and malformed JSON are not retried.
func (s *HTTPSource) get(ctx context.Context, name string, v any) error {
	target := s.baseURL.JoinPath(name).String()

	return util.RetryWithBackoff(ctx, s.retries, retryBase, func(attempt int) error {
		if attempt > 0 {
			slog.Info("Retrying fetch", "url", target, "attempt", attempt)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return util.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Accept", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to fetch %s: %w", target, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("fetch %s: status %d", target, resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return util.Permanent(fmt.Errorf("fetch %s: status %d", target, resp.StatusCode))
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", target, err)
		}
		if err := json.Unmarshal(body, v); err != nil {
			return util.Permanent(fmt.Errorf("failed to decode %s: %w", target, err))
		}
		return nil
	})
}
