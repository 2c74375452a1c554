package collector

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/zgpcy/cloudmatrix-cost-collector/internal/clock"
	"github.com/zgpcy/cloudmatrix-cost-collector/internal/config"
	"github.com/zgpcy/cloudmatrix-cost-collector/internal/dynamo"
	"github.com/zgpcy/cloudmatrix-cost-collector/internal/logger"
	"github.com/zgpcy/cloudmatrix-cost-collector/internal/provider"
	"github.com/zgpcy/cloudmatrix-cost-collector/internal/report"
	"github.com/zgpcy/cloudmatrix-cost-collector/internal/secrets"
)

// pushTimeout bounds the end-of-run metrics push
const pushTimeout = 10 * time.Second

// StoreFactory opens the secret store. It is called once per run, after the
// project identity is resolved.
type StoreFactory func(ctx context.Context) (secrets.Store, error)

// SourceFactory builds the billing source for a project. It may read
// provider credentials from the secret store.
type SourceFactory func(ctx context.Context, projectID string, store secrets.Store) (provider.BillingSource, error)

// SinkFactory builds the report sink from AWS credentials
type SinkFactory func(ctx context.Context, creds dynamo.Credentials) (report.Sink, error)

// CostCollector runs the collect pipeline once per Run call
type CostCollector struct {
	cfg       *config.Config
	newStore  StoreFactory
	newSource SourceFactory
	newSink   SinkFactory
	logger    *logger.Logger
	clock     clock.Clock // Time provider for testing
	metrics   *runMetrics
}

// NewCostCollector creates a new CostCollector
func NewCostCollector(cfg *config.Config, newStore StoreFactory, newSource SourceFactory, newSink SinkFactory, log *logger.Logger) *CostCollector {
	return &CostCollector{
		cfg:       cfg,
		newStore:  newStore,
		newSource: newSource,
		newSink:   newSink,
		logger:    log,
		clock:     clock.RealClock{}, // Use real system time by default
		metrics:   newRunMetrics(),
	}
}

// Run resolves identity, fetches secrets, reads month-to-date cost and writes
// one report. Any failure ends the run: it is logged once and returned as a
// *FatalRunError, and nothing is written.
func (c *CostCollector) Run(ctx context.Context) error {
	start := c.clock.Now()
	log := c.logger.WithFields("run_id", uuid.NewString(), "provider", c.cfg.Provider)
	log.Info("Starting cost collector", "table", c.cfg.AWS.TableName)

	summary, r, err := c.collect(ctx, log)
	duration := c.clock.Now().Sub(start)

	if err != nil {
		var runErr *FatalRunError
		stage := StageConfig
		if errors.As(err, &runErr) {
			stage = runErr.Stage
		}
		c.metrics.observeFailure(c.cfg.Provider, stage, duration)
		log.Error("Cost collector failed", "stage", stage, "error", err.Error())
		c.pushMetrics(ctx, log)
		return err
	}

	c.metrics.observeSuccess(c.cfg.Provider, summary, duration, c.clock.Now())
	log.Info("Report saved",
		"report_date", r.ReportDate,
		"report_period", r.ReportPeriod,
		"summary", r.Summary,
		"duration_seconds", duration.Seconds())
	c.pushMetrics(ctx, log)
	return nil
}

// collect is the single error boundary of a run
func (c *CostCollector) collect(ctx context.Context, log *logger.Logger) (*provider.CostSummary, *report.CostReport, error) {
	projectID, err := c.cfg.ResolveProjectID(ctx)
	if err != nil {
		return nil, nil, fatal(StageConfig, err)
	}
	log.Info("Project identity resolved", "project_id", projectID)

	store, err := c.newStore(ctx)
	if err != nil {
		return nil, nil, fatal(StageSecrets, err)
	}
	if closer, ok := store.(io.Closer); ok {
		defer closer.Close()
	}

	creds, err := c.awsCredentials(ctx, store, projectID)
	if err != nil {
		return nil, nil, fatal(StageSecrets, err)
	}
	log.Info("Credentials obtained", "project_id", projectID)

	source, err := c.newSource(ctx, projectID, store)
	if err != nil {
		return nil, nil, fatal(StageSecrets, err)
	}
	if closer, ok := source.(io.Closer); ok {
		defer closer.Close()
	}

	sink, err := c.newSink(ctx, creds)
	if err != nil {
		return nil, nil, fatal(StageSink, err)
	}

	summary, err := source.FetchCostSummary(ctx)
	if err != nil {
		return nil, nil, fatal(StageBilling, err)
	}
	log.Info(summary.Summary, "total_cost", summary.TotalCost, "currency", summary.Currency)

	r, err := report.New(c.clock, summary)
	if err != nil {
		return nil, nil, fatal(StageReport, err)
	}

	if err := sink.Put(ctx, r); err != nil {
		return nil, nil, fatal(StageWrite, err)
	}

	return summary, r, nil
}

// awsCredentials reads the report table credentials from the secret store
func (c *CostCollector) awsCredentials(ctx context.Context, store secrets.Store, projectID string) (dynamo.Credentials, error) {
	s := c.cfg.Secrets

	keyID, err := store.Get(ctx, s.AWSAccessKeyID, projectID, s.Version)
	if err != nil {
		return dynamo.Credentials{}, err
	}
	secret, err := store.Get(ctx, s.AWSSecretAccessKey, projectID, s.Version)
	if err != nil {
		return dynamo.Credentials{}, err
	}

	return dynamo.Credentials{AccessKeyID: keyID, SecretAccessKey: secret}, nil
}

// pushMetrics sends run metrics when a Pushgateway is configured. Push
// failures are logged and never change the run outcome.
func (c *CostCollector) pushMetrics(ctx context.Context, log *logger.Logger) {
	url := c.cfg.Metrics.PushgatewayURL
	if url == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pushTimeout)
	defer cancel()

	if err := c.metrics.push(ctx, url, c.cfg.Provider); err != nil {
		log.Warn("Failed to push run metrics", "error", err)
		return
	}
	log.Debug("Run metrics pushed", "url", url)
}
