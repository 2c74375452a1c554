package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/shopspring/decimal"
	"github.com/zgpcy/cloudmatrix-cost-collector/internal/provider"
	"github.com/zgpcy/cloudmatrix-cost-collector/internal/version"
)

// JobName groups the collector's metrics on the Pushgateway
const JobName = "cloudmatrix_cost_collector"

// runMetrics holds the per-run metrics. A run is short-lived, so they live in
// their own registry and are pushed once at the end instead of scraped.
type runMetrics struct {
	registry        *prometheus.Registry
	runsTotal       *prometheus.CounterVec
	stageFailures   *prometheus.CounterVec
	runDuration     *prometheus.GaugeVec
	lastSuccessTime *prometheus.GaugeVec
	monthToDateCost *prometheus.GaugeVec
	buildInfo       *prometheus.GaugeVec
}

func newRunMetrics() *runMetrics {
	m := &runMetrics{
		registry: prometheus.NewRegistry(),
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cloud_cost_collector_runs_total",
				Help: "Collector runs by outcome (success or failure)",
			},
			[]string{"provider", "status"},
		),
		stageFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cloud_cost_collector_stage_failures_total",
				Help: "Failed runs by the stage that failed",
			},
			[]string{"provider", "stage"},
		),
		runDuration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cloud_cost_collector_run_duration_seconds",
				Help: "Duration of the last run in seconds",
			},
			[]string{"provider"},
		),
		lastSuccessTime: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cloud_cost_collector_last_success_timestamp_seconds",
				Help: "Unix timestamp of the last run that wrote a report",
			},
			[]string{"provider"},
		),
		monthToDateCost: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cloud_cost_month_to_date",
				Help: "Month-to-date cost reported by the billing source",
			},
			[]string{"provider", "currency"},
		),
		buildInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cloud_cost_collector_build_info",
				Help: "Build version information",
			},
			[]string{"version", "git_commit", "build_date", "go_version"},
		),
	}

	versionInfo := version.Info()
	m.buildInfo.With(prometheus.Labels{
		"version":    versionInfo["version"],
		"git_commit": versionInfo["git_commit"],
		"build_date": versionInfo["build_date"],
		"go_version": versionInfo["go_version"],
	}).Set(1)

	m.registry.MustRegister(
		m.runsTotal,
		m.stageFailures,
		m.runDuration,
		m.lastSuccessTime,
		m.monthToDateCost,
		m.buildInfo,
	)
	return m
}

// observeSuccess records a run that wrote a report
func (m *runMetrics) observeSuccess(p string, summary *provider.CostSummary, duration time.Duration, at time.Time) {
	m.runsTotal.WithLabelValues(p, "success").Inc()
	m.runDuration.WithLabelValues(p).Set(duration.Seconds())
	m.lastSuccessTime.WithLabelValues(p).Set(float64(at.Unix()))

	if cost, err := decimal.NewFromString(summary.TotalCost); err == nil {
		m.monthToDateCost.WithLabelValues(p, summary.Currency).Set(cost.InexactFloat64())
	}
}

// observeFailure records a run that ended in a FatalRunError
func (m *runMetrics) observeFailure(p string, stage Stage, duration time.Duration) {
	m.runsTotal.WithLabelValues(p, "failure").Inc()
	m.stageFailures.WithLabelValues(p, string(stage)).Inc()
	m.runDuration.WithLabelValues(p).Set(duration.Seconds())
}

// push sends the registry to a Pushgateway, grouped by provider
func (m *runMetrics) push(ctx context.Context, url, p string) error {
	err := push.New(url, JobName).
		Gatherer(m.registry).
		Grouping("provider", p).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
