package collector

import (
	"context"
	"fmt"

	"github.com/zgpcy/cloudmatrix-cost-collector/internal/azure"
	"github.com/zgpcy/cloudmatrix-cost-collector/internal/config"
	"github.com/zgpcy/cloudmatrix-cost-collector/internal/dynamo"
	"github.com/zgpcy/cloudmatrix-cost-collector/internal/gcp"
	"github.com/zgpcy/cloudmatrix-cost-collector/internal/logger"
	"github.com/zgpcy/cloudmatrix-cost-collector/internal/magalu"
	"github.com/zgpcy/cloudmatrix-cost-collector/internal/provider"
	"github.com/zgpcy/cloudmatrix-cost-collector/internal/report"
	"github.com/zgpcy/cloudmatrix-cost-collector/internal/secrets"
)

// NewSourceFactory returns the factory for the configured billing provider
func NewSourceFactory(cfg *config.Config, log *logger.Logger) (SourceFactory, error) {
	p, err := provider.ParseProviderType(cfg.Provider)
	if err != nil {
		return nil, err
	}

	switch p {
	case provider.ProviderGCP:
		return func(ctx context.Context, projectID string, _ secrets.Store) (provider.BillingSource, error) {
			return gcp.NewClient(ctx, projectID, cfg, log)
		}, nil

	case provider.ProviderMagalu:
		return func(ctx context.Context, projectID string, store secrets.Store) (provider.BillingSource, error) {
			return newMagaluSource(ctx, cfg, projectID, store, log)
		}, nil

	case provider.ProviderAzure:
		return func(context.Context, string, secrets.Store) (provider.BillingSource, error) {
			return azure.NewClient(cfg, log)
		}, nil
	}

	return nil, fmt.Errorf("no billing source for provider %q", p)
}

// newMagaluSource reads the Magalu API key pair and builds the HTTP client
func newMagaluSource(ctx context.Context, cfg *config.Config, projectID string, store secrets.Store, log *logger.Logger) (provider.BillingSource, error) {
	s := cfg.Secrets

	apiKey, err := store.Get(ctx, s.MagaluAPIKey, projectID, s.Version)
	if err != nil {
		return nil, err
	}
	secretKey, err := store.Get(ctx, s.MagaluSecretKey, projectID, s.Version)
	if err != nil {
		return nil, err
	}

	return magalu.NewClient(cfg, apiKey, secretKey, log), nil
}

// NewStoreFactory returns a factory opening a Secret Manager connection
func NewStoreFactory(log *logger.Logger) StoreFactory {
	return func(ctx context.Context) (secrets.Store, error) {
		return secrets.NewGoogleStore(ctx, log)
	}
}

// NewSinkFactory returns a factory building the DynamoDB report sink
func NewSinkFactory(cfg *config.Config, log *logger.Logger) SinkFactory {
	return func(ctx context.Context, creds dynamo.Credentials) (report.Sink, error) {
		return dynamo.NewSink(ctx, cfg, creds, log)
	}
}
