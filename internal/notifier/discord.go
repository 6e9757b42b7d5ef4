package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/drivedash/drivedash/internal/dashboard"
	"github.com/drivedash/drivedash/internal/models"
)

const (
	colorExcellent = 2278750  // #22C55E
	colorGood      = 8702998  // #84CC16
	colorOK        = 15381256 // #EAB308
	colorHigh      = 15680580 // #EF4444
)

type Client struct {
	webhookURL string
	client     *http.Client
}

func New(webhookURL string) *Client {
	return &Client{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts a new deal and returns the Discord message ID. Without a
// webhook URL it does nothing.
func (c *Client) Send(ctx context.Context, deal models.Listing) (string, error) {
	if c.webhookURL == "" {
		return "", nil
	}
	embed := formatDealToEmbed(deal)
	return c.sendAndGetMessageID(ctx, embed)
}

type discordWebhookPayload struct {
	Content string         `json:"content,omitempty"`
	Embeds  []discordEmbed `json:"embeds"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type discordEmbedFooter struct {
	Text string `json:"text,omitempty"`
}

type discordEmbed struct {
	Title       string              `json:"title,omitempty"`
	Description string              `json:"description,omitempty"`
	URL         string              `json:"url,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"`
	Color       int                 `json:"color,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
	Footer      discordEmbedFooter  `json:"footer,omitempty"`
}

type discordMessageResponse struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
}

func formatDealToEmbed(deal models.Listing) discordEmbed {
	driveType := deal.DriveType
	if driveType == "" {
		driveType = "HDD"
		if deal.IsSSD {
			driveType = "SSD"
		}
	}

	pricePerTB := "?"
	if deal.PricePerTB != nil {
		pricePerTB = formatNumber(*deal.PricePerTB) + " SEK/TB"
	}

	fields := []discordEmbedField{
		{Name: "Pris", Value: formatNumber(deal.PriceSEK) + " SEK", Inline: true},
		{Name: "Kapacitet", Value: formatNumber(deal.CapacityTB) + " TB", Inline: true},
		{Name: "Pris/TB", Value: pricePerTB, Inline: true},
		{Name: "Typ", Value: driveType, Inline: true},
	}
	if deal.Location != "" {
		fields = append(fields, discordEmbedField{Name: "Plats", Value: deal.Location, Inline: true})
	}

	var isoTimestamp string
	if published, ok := deal.Published(); ok {
		isoTimestamp = published.Format(time.RFC3339)
	}

	return discordEmbed{
		Title:     deal.Title,
		URL:       deal.URL,
		Timestamp: isoTimestamp,
		Color:     tierColor(dashboard.ClassifyPrice(deal.PricePerTB, deal.IsSSD)),
		Fields:    fields,
		Footer: discordEmbedFooter{
			Text: fmt.Sprintf("Gräns %s SEK/TB", formatNumber(dashboard.Baseline(deal.IsSSD))),
		},
	}
}

func tierColor(t dashboard.Tier) int {
	switch t {
	case dashboard.TierExcellent:
		return colorExcellent
	case dashboard.TierGood:
		return colorGood
	case dashboard.TierOK:
		return colorOK
	}
	return colorHigh
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (c *Client) sendAndGetMessageID(ctx context.Context, embed discordEmbed) (string, error) {
	payload := discordWebhookPayload{Embeds: []discordEmbed{embed}}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	parsedURL, err := url.Parse(c.webhookURL)
	if err != nil {
		return "", err
	}
	q := parsedURL.Query()
	q.Set("wait", "true")
	parsedURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, parsedURL.String(), bytes.NewReader(payloadBytes))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var msgResponse discordMessageResponse
		if err := json.Unmarshal(bodyBytes, &msgResponse); err != nil {
			return "", err
		}
		return msgResponse.ID, nil
	}
	return "", fmt.Errorf("discord status: %s, body: %s", resp.Status, string(bodyBytes))
}
