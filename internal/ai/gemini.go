package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/drivedash/drivedash/internal/blocket"
)

const maxBodyRunes = 500

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Client struct {
	models  contentGenerator
	modelID string
	config  *genai.GenerateContentConfig
}

// Extraction is what the model reads out of a classified ad.
type Extraction struct {
	IsHardDrive bool     `json:"is_hard_drive"`
	CapacityTB  *float64 `json:"capacity_tb"`
	PriceSEK    *float64 `json:"price_sek"`
	IsSSD       bool     `json:"is_ssd"`
	Confidence  string   `json:"confidence"`
}

// NotADrive is the extraction used when the model is unavailable or fails.
func NotADrive() Extraction {
	return Extraction{Confidence: "low"}
}

func NewClient(ctx context.Context, apiKey, modelID string) (*Client, error) {
	if apiKey == "" {
		return nil, nil // Return nil client if no key provided
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return newClient(client.Models, modelID), nil
}

func newClient(models contentGenerator, modelID string) *Client {
	nullable := genai.Ptr(true)
	return &Client{
		models:  models,
		modelID: modelID,
		config: &genai.GenerateContentConfig{
			Temperature:      genai.Ptr[float32](0.1),
			ResponseMIMEType: "application/json",
			ResponseSchema: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"is_hard_drive": {
						Type:        genai.TypeBoolean,
						Description: "True only if the ad sells a standalone HDD or SSD, not a computer that happens to include one.",
					},
					"capacity_tb": {
						Type:        genai.TypeNumber,
						Nullable:    nullable,
						Description: "Storage capacity in TB. Convert GB to TB.",
					},
					"price_sek": {
						Type:        genai.TypeNumber,
						Nullable:    nullable,
						Description: "Asking price in SEK.",
					},
					"is_ssd": {
						Type:        genai.TypeBoolean,
						Description: "True for solid state drives (SSD, NVMe, M.2), false for mechanical drives.",
					},
					"confidence": {
						Type: genai.TypeString,
						Enum: []string{"high", "medium", "low"},
					},
				},
				Required: []string{"is_hard_drive", "capacity_tb", "price_sek", "is_ssd", "confidence"},
			},
		},
	}
}

// ParseListing asks the model whether ad sells a drive and for its
// capacity, price and type.
func (c *Client) ParseListing(ctx context.Context, ad blocket.Ad) (Extraction, error) {
	if c == nil || c.models == nil {
		return NotADrive(), nil // Graceful degradation
	}

	prompt := fmt.Sprintf(`Analyze this Swedish Blocket listing and extract information:
Title: %s
Description: %s
Price: %g SEK

Tasks:
1. Is this actually a hard drive (HDD/SSD) for sale? Not a computer or laptop that happens to mention storage.
2. What is the storage capacity in TB? Convert GB to TB if needed.
3. Extract the exact price in SEK.
4. Is this an SSD (solid state) or HDD (mechanical)?
   - SSD indicators: "SSD", "NVMe", "M.2", "M2", "Solid State", "Flash", "Samsung 980", "Samsung 970", "Samsung 870", "Kingston Fury", "Crucial P3"
   - HDD indicators: "HDD", "mekanisk", "7200 RPM", "5400 RPM", "WD Red", "WD Blue", "IronWolf", "Exos", "Barracuda"
   - If the title or description mentions "SSD" it is an SSD.
   - A plain "extern hårddisk" or "hårddisk" without SSD mentioned is usually an HDD.

Output JSON adhering to the schema.
`, ad.Heading, truncate(ad.Body, maxBodyRunes), ad.PriceSEK())

	resp, err := c.models.GenerateContent(ctx, c.modelID, genai.Text(prompt), c.config)
	if err != nil {
		return NotADrive(), fmt.Errorf("gemini generation failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return NotADrive(), fmt.Errorf("no response candidates from gemini")
	}

	// Clean up potential markdown formatting just in case
	jsonStr := strings.TrimSpace(resp.Text())
	jsonStr = strings.TrimPrefix(jsonStr, "```json")
	jsonStr = strings.TrimPrefix(jsonStr, "```")
	jsonStr = strings.TrimSuffix(jsonStr, "```")

	var result Extraction
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return NotADrive(), fmt.Errorf("failed to parse gemini response: %w", err)
	}
	return result, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
