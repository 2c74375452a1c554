// Package provider defines the billing source abstraction.
//
// Each provider package (gcp, magalu, azure) implements BillingSource and
// turns its native response into a CostSummary:
//
//	type BillingSource interface {
//		FetchCostSummary(ctx context.Context) (*CostSummary, error)
//		Name() ProviderType
//	}
//
// A run talks to exactly one billing source; the collector never merges
// summaries from several providers.
package provider
