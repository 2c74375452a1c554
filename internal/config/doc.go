// Package config provides configuration management for the cost collector.
//
// This package handles loading configuration from an optional YAML file,
// applying environment variable overrides, setting defaults, validating the
// result, and resolving the project identity the run acts for.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (highest priority)
//  2. YAML configuration file
//  3. Default values (lowest priority)
//
// Supported environment variables:
//   - GCP_PROJECT_ID: Project identity used for secret lookups
//   - GOOGLE_APPLICATION_CREDENTIALS: Credential file whose project_id is used when GCP_PROJECT_ID is unset
//   - COLLECTOR_PROVIDER: Billing source (gcp, magalu, azure)
//   - COLLECTOR_LOG_LEVEL: Log level (debug, info, warn, error)
//   - COLLECTOR_TABLE_NAME: DynamoDB table receiving reports
//   - COLLECTOR_AWS_REGION: Region of that table
//   - COLLECTOR_API_TIMEOUT: Billing call timeout in seconds (1-300)
//   - COLLECTOR_PUSHGATEWAY_URL: Pushgateway receiving run metrics
//   - MAGALU_BILLING_URL: Magalu Cloud billing endpoint
//   - AZURE_SUBSCRIPTION_ID: Subscription queried by the azure provider
//
// Example configuration file (config.yaml):
//
//	provider: magalu
//	log_level: info
//	api_timeout: 30
//
//	aws:
//	  region: us-east-1
//	  table_name: CloudMatrix_FinOps_Reports
//
//	secrets:
//	  version: latest
//	  magalu_api_key: magalu-api-key
//	  magalu_secret_key: magalu-secret-key
//
//	metrics:
//	  pushgateway_url: http://pushgateway:9091
//
// Example usage:
//
//	cfg, err := config.Load("config.yaml")
//	if err != nil {
//		log.Fatalf("Failed to load config: %v", err)
//	}
//	projectID, err := cfg.ResolveProjectID(ctx)
package config
