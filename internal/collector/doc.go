// Package collector sequences one cost collection run.
//
// A run resolves the project identity, opens the secret store and reads the
// AWS credentials for the report table, builds the configured billing source,
// requests month-to-date cost once and writes one CostReport:
//
//	identity -> secret store -> secrets -> billing source -> sink -> billing call -> report -> write
//
// The whole sequence is one error boundary. The first failure ends the run
// with a *FatalRunError naming the stage; nothing is written after a failure
// and nothing is retried.
//
// Each run also records Prometheus metrics in a private registry:
//   - cloud_cost_collector_runs_total{provider,status}
//   - cloud_cost_collector_stage_failures_total{provider,stage}
//   - cloud_cost_collector_run_duration_seconds{provider}
//   - cloud_cost_collector_last_success_timestamp_seconds{provider}
//   - cloud_cost_month_to_date{provider,currency}
//   - cloud_cost_collector_build_info
//
// When metrics.pushgateway_url is set they are pushed once, under the job
// cloudmatrix_cost_collector, at the end of the run.
package collector
