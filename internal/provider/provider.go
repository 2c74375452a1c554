package provider

import (
	"context"
	"fmt"
	"strings"
)

// ProviderType represents a billing source
type ProviderType string

// Supported billing sources
const (
	ProviderGCP    ProviderType = "gcp"
	ProviderMagalu ProviderType = "magalu"
	ProviderAzure  ProviderType = "azure"
)

// ReportName returns the cloud_provider value written into reports
func (p ProviderType) ReportName() string {
	return strings.ToUpper(string(p))
}

// ParseProviderType validates a configured provider name
func ParseProviderType(s string) (ProviderType, error) {
	switch p := ProviderType(strings.ToLower(strings.TrimSpace(s))); p {
	case ProviderGCP, ProviderMagalu, ProviderAzure:
		return p, nil
	default:
		return "", fmt.Errorf("unknown billing provider %q", s)
	}
}

// BillingSource is implemented by every provider-specific billing client.
// One call to FetchCostSummary is one request to the provider.
type BillingSource interface {
	// FetchCostSummary retrieves month-to-date cost data
	FetchCostSummary(ctx context.Context) (*CostSummary, error)

	// Name returns the provider name (gcp, magalu, azure)
	Name() ProviderType
}

// CostSummary is the provider-neutral result of one billing request
type CostSummary struct {
	Provider  ProviderType
	TotalCost string // Two-decimal amount, "0.00" when the provider gives none
	Currency  string
	Summary   string         // Human-readable cost line
	RawData   map[string]any // Provider payload or error payload, stored as JSON
}
