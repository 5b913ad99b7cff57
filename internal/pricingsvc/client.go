package pricingsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Simplici0/alu.works/internal/pricing"
)

// Paths served by the pricing endpoints.
const (
	PathItem        = "/api/pricing/item"
	PathTotals      = "/api/pricing/totals"
	PathTypeMetrics = "/api/pricing/type-metrics"
	PathQuote       = "/api/pricing/quote"
)

// Client calls a remote pricing service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a client for the service at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) CalculateItem(ctx context.Context, item pricing.LineItem) (pricing.Breakdown, error) {
	var out pricing.Breakdown
	err := c.post(ctx, PathItem, ItemRequest{Item: item}, &out)
	return out, err
}

func (c *Client) CalculateQuoteTotals(ctx context.Context, items []pricing.LineItem, costs pricing.AdditionalCosts) (pricing.QuoteTotals, error) {
	var out pricing.QuoteTotals
	err := c.post(ctx, PathTotals, QuoteRequest{Items: items, AdditionalCosts: costs}, &out)
	return out, err
}

func (c *Client) CalculateTypeMetrics(ctx context.Context, items []pricing.LineItem, systemType pricing.SystemType, costs pricing.AdditionalCosts) (pricing.TypeMetrics, error) {
	var out pricing.TypeMetrics
	err := c.post(ctx, PathTypeMetrics, TypeMetricsRequest{Items: items, SystemType: systemType, AdditionalCosts: costs}, &out)
	return out, err
}

func (c *Client) CalculateQuote(ctx context.Context, items []pricing.LineItem, costs pricing.AdditionalCosts) (pricing.PricedQuote, error) {
	var out pricing.PricedQuote
	err := c.post(ctx, PathQuote, QuoteRequest{Items: items, AdditionalCosts: costs}, &out)
	return out, err
}

// post sends in as JSON and decodes the response into out. Transport errors
// and non-200 responses wrap ErrServiceUnavailable.
func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode pricing request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build pricing request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %s returned %d: %s", ErrServiceUnavailable, http.MethodPost, path, resp.StatusCode, bytes.TrimSpace(msg))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s response: %v", ErrServiceUnavailable, path, err)
	}
	return nil
}
