package magalu

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zgpcy/cloudmatrix-cost-collector/internal/config"
	"github.com/zgpcy/cloudmatrix-cost-collector/internal/logger"
	"github.com/zgpcy/cloudmatrix-cost-collector/internal/provider"
)

// Defaults applied when the billing body omits a field
const (
	DefaultCost     = "0.00"
	DefaultCurrency = "BRL"
)

// Request headers carrying the API credentials
const (
	HeaderAPIKey    = "x-api-key"
	HeaderSecretKey = "x-secret-key"
)

// maxBodyBytes caps how much of a billing response is read
const maxBodyBytes = 1 << 20

// Client calls the Magalu Cloud billing endpoint
type Client struct {
	httpClient *http.Client
	url        string
	apiKey     string
	secretKey  string
	logger     *logger.Logger
}

// Verify that Client implements provider.BillingSource
var _ provider.BillingSource = (*Client)(nil)

// NewClient creates a Magalu Cloud billing client
func NewClient(cfg *config.Config, apiKey, secretKey string, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: time.Duration(cfg.APITimeout) * time.Second},
		url:        cfg.Magalu.BillingURL,
		apiKey:     apiKey,
		secretKey:  secretKey,
		logger:     log,
	}
}

// Name returns the provider type
func (c *Client) Name() provider.ProviderType {
	return provider.ProviderMagalu
}

// FetchCostSummary issues one GET against the billing endpoint. Non-2xx
// responses and bodies that are not a JSON object fail the call.
func (c *Client) FetchCostSummary(ctx context.Context) (*provider.CostSummary, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create billing request: %w", err)
	}
	req.Header.Set(HeaderAPIKey, c.apiKey)
	req.Header.Set(HeaderSecretKey, c.secretKey)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Requesting Magalu Cloud billing", "url", c.url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("billing request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read billing response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("billing endpoint returned %d: %s", resp.StatusCode, truncate(body, 512))
	}

	raw, err := decodeBody(body)
	if err != nil {
		return nil, err
	}

	cost, err := totalCost(raw["total_cost"])
	if err != nil {
		return nil, err
	}
	currency, err := currencyCode(raw["currency"])
	if err != nil {
		return nil, err
	}

	return &provider.CostSummary{
		Provider:  provider.ProviderMagalu,
		TotalCost: cost,
		Currency:  currency,
		Summary:   fmt.Sprintf("Magalu Cloud Monthly Cost (Month-to-Date): %s %s", cost, currency),
		RawData:   raw,
	}, nil
}

// decodeBody parses the response as exactly one JSON object, keeping numbers
// exact
func decodeBody(body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode billing response: %w", err)
	}
	if raw == nil {
		return nil, errors.New("billing response is not a JSON object")
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("billing response has trailing data after the JSON object")
	}
	return raw, nil
}

// currencyCode returns the currency field, defaulting when absent. Absent and
// empty values default; any other non-string value fails like total_cost does.
func currencyCode(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return DefaultCurrency, nil
	case string:
		if t == "" {
			return DefaultCurrency, nil
		}
		return t, nil
	default:
		return "", fmt.Errorf("currency has unexpected type %T", v)
	}
}

// totalCost formats total_cost with two decimals, defaulting when absent
func totalCost(v any) (string, error) {
	var s string
	switch t := v.(type) {
	case nil:
		return DefaultCost, nil
	case json.Number:
		s = t.String()
	case string:
		if t == "" {
			return DefaultCost, nil
		}
		s = t
	default:
		return "", fmt.Errorf("total_cost has unexpected type %T", v)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return "", fmt.Errorf("invalid total_cost %q: %w", s, err)
	}
	return d.StringFixed(2), nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
