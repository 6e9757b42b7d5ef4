package blocket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/drivedash/drivedash/internal/models"
)

const itemURLPrefix = "https://www.blocket.se/recommerce/forsale/item/"

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Ad is one search hit as returned by the search API.
type Ad struct {
	ID        models.ListingID `json:"id"`
	Heading   string           `json:"heading"`
	Body      string           `json:"body"`
	Price     *Price           `json:"price"`
	Location  Location         `json:"location"`
	Timestamp int64            `json:"timestamp"`
	Flags     []string         `json:"flags"`
	Labels    json.RawMessage  `json:"labels"`
}

type Price struct {
	Amount float64 `json:"amount"`
}

// Location accepts either a plain string or a list of named areas, which
// are joined with ", ".
type Location string

func (l *Location) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*l = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = Location(s)
		return nil
	}
	var areas []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &areas); err != nil {
		return fmt.Errorf("location: %w", err)
	}
	names := make([]string, 0, len(areas))
	for _, a := range areas {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	*l = Location(strings.Join(names, ", "))
	return nil
}

// PriceSEK returns the asking price, 0 when the ad has none.
func (a Ad) PriceSEK() float64 {
	if a.Price == nil {
		return 0
	}
	return a.Price.Amount
}

// Published converts the millisecond timestamp, falling back to now for
// ads without one.
func (a Ad) Published(now time.Time) time.Time {
	if a.Timestamp <= 0 {
		return now
	}
	return time.UnixMilli(a.Timestamp)
}

// HasShipping reports whether the seller offers shipping.
func HasShipping(a Ad) bool {
	if slices.Contains(a.Flags, "shipping_exists") {
		return true
	}
	return bytes.Contains(a.Labels, []byte("fiks_ferdig"))
}

// ItemURL is the public page of an ad.
func ItemURL(id models.ListingID) string {
	return itemURLPrefix + string(id)
}

// SearchResult is one page of search hits.
type SearchResult struct {
	Docs     []Ad `json:"docs"`
	Metadata struct {
		Paging struct {
			Last int `json:"last"`
		} `json:"paging"`
		ResultSize struct {
			MatchCount int `json:"match_count"`
		} `json:"result_size"`
	} `json:"metadata"`
}

type Client struct {
	searchURL  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// New returns a client for the search endpoint at searchURL. Requests are
// spaced at least delay apart.
func New(searchURL string, httpClient *http.Client, delay time.Duration) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Client{
		searchURL:  searchURL,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// Search fetches one page of results for query.
func (c *Client) Search(ctx context.Context, query string, page int) (*SearchResult, error) {
	u, err := url.Parse(c.searchURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse search URL %s: %w", c.searchURL, err)
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", u, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search page %d: %w", page, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to search page %d: status code %d", page, res.StatusCode)
	}

	var result SearchResult
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode search page %d: %w", page, err)
	}
	return &result, nil
}

// SearchAll walks the result pages for query, up to maxPages. The first
// page reports how many pages exist. A failure on a later page ends the
// walk and keeps the ads collected so far.
func (c *Client) SearchAll(ctx context.Context, query string, maxPages int) ([]Ad, error) {
	first, err := c.Search(ctx, query, 1)
	if err != nil {
		return nil, err
	}
	ads := first.Docs

	last := max(first.Metadata.Paging.Last, 1)
	slog.Info("Search results", "query", query, "matches", first.Metadata.ResultSize.MatchCount, "pages", last)

	for page := 2; page <= min(maxPages, last); page++ {
		res, err := c.Search(ctx, query, page)
		if err != nil {
			if ctx.Err() != nil {
				return ads, ctx.Err()
			}
			slog.Warn("Failed to fetch search page, stopping", "page", page, "error", err)
			break
		}
		ads = append(ads, res.Docs...)
	}
	return ads, nil
}
