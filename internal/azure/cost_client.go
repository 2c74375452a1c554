package azure

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/costmanagement/armcostmanagement"
	"github.com/shopspring/decimal"
	"github.com/zgpcy/cloudmatrix-cost-collector/internal/config"
	"github.com/zgpcy/cloudmatrix-cost-collector/internal/logger"
	"github.com/zgpcy/cloudmatrix-cost-collector/internal/provider"
)

// DefaultCurrency is used when the response carries no Currency column
const DefaultCurrency = "USD"

// costColumns are the names Cost Management uses for the summed amount
var costColumns = []string{"Cost", "totalCost", "PreTaxCost", "CostUSD"}

// usageQuerier is the slice of armcostmanagement.QueryClient the client needs
type usageQuerier interface {
	Usage(ctx context.Context, scope string, parameters armcostmanagement.QueryDefinition, options *armcostmanagement.QueryClientUsageOptions) (armcostmanagement.QueryClientUsageResponse, error)
}

// Client wraps the Azure Cost Management client and implements provider.BillingSource
type Client struct {
	client         usageQuerier
	subscriptionID string
	timeout        time.Duration
	logger         *logger.Logger
}

// Verify that Client implements provider.BillingSource
var _ provider.BillingSource = (*Client)(nil)

// NewClient creates a new Azure Cost Management client
func NewClient(cfg *config.Config, log *logger.Logger) (*Client, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	client, err := armcostmanagement.NewQueryClient(cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cost management client: %w", err)
	}

	return &Client{
		client:         client,
		subscriptionID: cfg.Azure.SubscriptionID,
		timeout:        time.Duration(cfg.APITimeout) * time.Second,
		logger:         log,
	}, nil
}

// Name returns the provider type
func (c *Client) Name() provider.ProviderType {
	return provider.ProviderAzure
}

// FetchCostSummary runs one month-to-date ActualCost query for the subscription
func (c *Client) FetchCostSummary(ctx context.Context) (*provider.CostSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	scope := fmt.Sprintf("/subscriptions/%s", c.subscriptionID)
	c.logger.Debug("Querying Azure Cost Management API", "scope", scope, "timeframe", "MonthToDate")

	resp, err := c.client.Usage(ctx, scope, monthToDateQuery(), nil)
	if err != nil {
		return nil, fmt.Errorf("month-to-date cost query failed for %s: %w", scope, err)
	}

	return c.summarize(resp.QueryResult), nil
}

// monthToDateQuery builds an ungrouped ActualCost query summing Cost
func monthToDateQuery() armcostmanagement.QueryDefinition {
	queryType := armcostmanagement.ExportTypeActualCost
	timeframe := armcostmanagement.TimeframeTypeMonthToDate

	return armcostmanagement.QueryDefinition{
		Type:      &queryType,
		Timeframe: &timeframe,
		Dataset: &armcostmanagement.QueryDataset{
			Aggregation: map[string]*armcostmanagement.QueryAggregation{
				"totalCost": {
					Name:     stringPtr("Cost"),
					Function: functionPtr(armcostmanagement.FunctionTypeSum),
				},
			},
		},
	}
}

// summarize totals the cost column across all rows
func (c *Client) summarize(result armcostmanagement.QueryResult) *provider.CostSummary {
	total := decimal.Zero
	currency := DefaultCurrency
	rowCount := 0
	var columns []string

	if result.Properties != nil {
		columnMap := buildColumnMap(result.Properties.Columns)
		for _, col := range result.Properties.Columns {
			if col.Name != nil {
				columns = append(columns, *col.Name)
			}
		}

		costIdx, hasCost := findColumn(columnMap, costColumns)
		currencyIdx, hasCurrency := columnMap["Currency"]

		for _, row := range result.Properties.Rows {
			rowCount++
			if hasCost && len(row) > costIdx {
				total = total.Add(decimal.NewFromFloat(parseCost(row[costIdx])))
			}
			if hasCurrency && len(row) > currencyIdx {
				if s, ok := row[currencyIdx].(string); ok && s != "" {
					currency = s
				}
			}
		}
	}

	cost := total.StringFixed(2)
	return &provider.CostSummary{
		Provider:  provider.ProviderAzure,
		TotalCost: cost,
		Currency:  currency,
		Summary:   fmt.Sprintf("Azure Monthly Cost (Month-to-Date): %s %s", cost, currency),
		RawData: map[string]any{
			"subscription_id": c.subscriptionID,
			"columns":         columns,
			"row_count":       rowCount,
			"total_cost":      cost,
			"currency":        currency,
		},
	}
}

// buildColumnMap creates a map of column names to their indices
func buildColumnMap(columns []*armcostmanagement.QueryColumn) map[string]int {
	columnMap := make(map[string]int)
	for i, col := range columns {
		if col.Name != nil {
			columnMap[*col.Name] = i
		}
	}
	return columnMap
}

// findColumn returns the index of the first candidate column present
func findColumn(columnMap map[string]int, candidates []string) (int, bool) {
	for _, name := range candidates {
		if idx, ok := columnMap[name]; ok {
			return idx, true
		}
	}
	return 0, false
}

// parseCost extracts and converts cost value to float64
func parseCost(value interface{}) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0.0
	}
}

// Helper functions
func stringPtr(s string) *string {
	return &s
}

func functionPtr(f armcostmanagement.FunctionType) *armcostmanagement.FunctionType {
	return &f
}
