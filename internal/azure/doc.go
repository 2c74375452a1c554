// Package azure provides the Azure Cost Management billing source.
//
// The client authenticates with Azure Default Credentials and runs one
// ungrouped month-to-date ActualCost query against a single subscription,
// summing the Cost column into a provider.CostSummary.
//
// Example usage:
//
//	cfg := &config.Config{
//		APITimeout: 30,
//		Azure:      config.Azure{SubscriptionID: "sub-123"},
//	}
//
//	client, err := azure.NewClient(cfg, log)
//	if err != nil {
//		return err
//	}
//
//	summary, err := client.FetchCostSummary(ctx)
//	if err != nil {
//		return err
//	}
//	fmt.Println(summary.Summary)
package azure
