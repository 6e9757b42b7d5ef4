package availability

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"

	"github.com/drivedash/drivedash/internal/models"
)

const (
	checkTimeout = 10 * time.Second
	userAgent    = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Checker tests whether listing pages are still online.
type Checker struct {
	client  *http.Client
	limiter *rate.Limiter
}

// New returns a checker that spaces requests at least delay apart. A nil
// client gets a 10s timeout and a cookie jar scoped by public suffix, so
// session cookies set on redirects are replayed.
func New(client *http.Client, delay time.Duration) (*Checker, error) {
	if client == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		client = &http.Client{Timeout: checkTimeout, Jar: jar}
	}
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Checker{client: client, limiter: rate.NewLimiter(limit, 1)}, nil
}

// Alive sends HEAD, retrying with GET when the server answers 405, and
// reports whether the final status is 200. Redirects are followed.
// Transport errors count as not alive.
func (c *Checker) Alive(ctx context.Context, url string) bool {
	status, err := c.status(ctx, http.MethodHead, url)
	if err == nil && status == http.StatusMethodNotAllowed {
		status, err = c.status(ctx, http.MethodGet, url)
	}
	if err != nil {
		slog.Warn("Error checking URL", "url", url, "error", err)
		return false
	}
	return status == http.StatusOK
}

func (c *Checker) status(ctx context.Context, method, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

// Prune returns the items whose page is still online, keeping the first
// occurrence of each id. Items without a URL are dropped unchecked. The
// second result reports whether the output differs from the input.
func (c *Checker) Prune(ctx context.Context, items []models.Listing) ([]models.Listing, bool, error) {
	active := make([]models.Listing, 0, len(items))
	seen := make(map[models.ListingID]bool, len(items))
	removed := 0

	for i, item := range items {
		if item.URL == "" || seen[item.ID] {
			continue
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, false, err
		}

		slog.Debug("Checking listing", "n", i+1, "of", len(items), "title", item.Title)
		if c.Alive(ctx, item.URL) {
			active = append(active, item)
			seen[item.ID] = true
			continue
		}
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		removed++
		slog.Info("Removed listing", "id", item.ID, "title", item.Title, "url", item.URL)
	}

	changed := removed > 0 || len(active) != len(items)
	return active, changed, nil
}
