package gcp

import (
	"context"
	"fmt"
	"time"

	billing "cloud.google.com/go/billing/apiv1"
	"cloud.google.com/go/billing/apiv1/billingpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/zgpcy/cloudmatrix-cost-collector/internal/config"
	"github.com/zgpcy/cloudmatrix-cost-collector/internal/logger"
	"github.com/zgpcy/cloudmatrix-cost-collector/internal/provider"
)

// The Cloud Billing API exposes no cost figures, only billing linkage
const (
	PlaceholderCost     = "0.00"
	PlaceholderCurrency = "USD"

	BillingDisabledMessage = "Billing not enabled for this project."
)

type billingInfoGetter interface {
	GetProjectBillingInfo(ctx context.Context, req *billingpb.GetProjectBillingInfoRequest, opts ...gax.CallOption) (*billingpb.ProjectBillingInfo, error)
}

// Client reads project billing info through the Cloud Billing SDK
type Client struct {
	client    billingInfoGetter
	closer    func() error
	projectID string
	timeout   time.Duration
	logger    *logger.Logger
}

// Verify that Client implements provider.BillingSource
var _ provider.BillingSource = (*Client)(nil)

// NewClient creates a Cloud Billing client using the function's own service account
func NewClient(ctx context.Context, projectID string, cfg *config.Config, log *logger.Logger) (*Client, error) {
	c, err := billing.NewCloudBillingClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloud billing client: %w", err)
	}

	return &Client{
		client:    c,
		closer:    c.Close,
		projectID: projectID,
		timeout:   time.Duration(cfg.APITimeout) * time.Second,
		logger:    log,
	}, nil
}

// Name returns the provider type
func (c *Client) Name() provider.ProviderType {
	return provider.ProviderGCP
}

// FetchCostSummary reads the project's billing info. A project without
// billing yields a summary describing that, not an error.
func (c *Client) FetchCostSummary(ctx context.Context) (*provider.CostSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	name := "projects/" + c.projectID
	c.logger.Debug("Requesting project billing info", "name", name)

	info, err := c.client.GetProjectBillingInfo(ctx, &billingpb.GetProjectBillingInfoRequest{Name: name})
	if err != nil {
		return nil, fmt.Errorf("get billing info for %s: %w", name, err)
	}

	return summarize(info), nil
}

// summarize converts billing info into a cost summary
func summarize(info *billingpb.ProjectBillingInfo) *provider.CostSummary {
	if !info.GetBillingEnabled() {
		return &provider.CostSummary{
			Provider:  provider.ProviderGCP,
			TotalCost: PlaceholderCost,
			Currency:  PlaceholderCurrency,
			Summary:   BillingDisabledMessage,
			RawData:   map[string]any{"error": BillingDisabledMessage},
		}
	}

	return &provider.CostSummary{
		Provider:  provider.ProviderGCP,
		TotalCost: PlaceholderCost,
		Currency:  PlaceholderCurrency,
		Summary: fmt.Sprintf("GCP Monthly Cost (Month-to-Date): %s %s (API data limited, see raw_data)",
			PlaceholderCost, PlaceholderCurrency),
		RawData: map[string]any{
			"billing_account_name": info.GetBillingAccountName(),
			"billing_enabled":      info.GetBillingEnabled(),
		},
	}
}

// Close releases the SDK connection
func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}
