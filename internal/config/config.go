package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

// Configuration validation constants
const (
	MaxAPITimeout = 300 // API timeout ceiling in seconds

	// Default values
	DefaultProvider     = "gcp"
	DefaultLogLevel     = "info"
	DefaultAPITimeout   = 30 // Billing API timeout in seconds
	DefaultAWSRegion    = "us-east-1"
	DefaultTableName    = "CloudMatrix_FinOps_Reports"
	DefaultMagaluURL    = "https://billing.magalu.cloud/v1/billing"
	DefaultSecretVer    = "latest"
	DefaultAWSKeyID     = "aws-access-key-id-finops"
	DefaultAWSSecretKey = "aws-secret-access-key-finops"
	DefaultMagaluAPIKey = "magalu-api-key"
	DefaultMagaluSecret = "magalu-secret-key"
)

// Environment variables read by the collector
const (
	EnvProjectID       = "GCP_PROJECT_ID"
	EnvCredentialsFile = "GOOGLE_APPLICATION_CREDENTIALS"
	EnvProvider        = "COLLECTOR_PROVIDER"
	EnvLogLevel        = "COLLECTOR_LOG_LEVEL"
	EnvTableName       = "COLLECTOR_TABLE_NAME"
	EnvAWSRegion       = "COLLECTOR_AWS_REGION"
	EnvAPITimeout      = "COLLECTOR_API_TIMEOUT"
	EnvPushgatewayURL  = "COLLECTOR_PUSHGATEWAY_URL"
	EnvMagaluURL       = "MAGALU_BILLING_URL"
	EnvAzureSub        = "AZURE_SUBSCRIPTION_ID"
)

var validProviders = map[string]bool{"gcp": true, "magalu": true, "azure": true}

// AWS holds the report table location
type AWS struct {
	Region    string `yaml:"region"`
	TableName string `yaml:"table_name"`
}

// Secrets names the Secret Manager entries the collector reads
type Secrets struct {
	Version            string `yaml:"version"`
	AWSAccessKeyID     string `yaml:"aws_access_key_id"`
	AWSSecretAccessKey string `yaml:"aws_secret_access_key"`
	MagaluAPIKey       string `yaml:"magalu_api_key"`
	MagaluSecretKey    string `yaml:"magalu_secret_key"`
}

// Magalu holds Magalu Cloud billing settings
type Magalu struct {
	BillingURL string `yaml:"billing_url"`
}

// Azure holds Azure Cost Management settings
type Azure struct {
	SubscriptionID string `yaml:"subscription_id"`
}

// Metrics holds run metrics settings
type Metrics struct {
	PushgatewayURL string `yaml:"pushgateway_url"`
}

// Config represents the application configuration
type Config struct {
	Provider   string  `yaml:"provider"`
	LogLevel   string  `yaml:"log_level"`
	APITimeout int     `yaml:"api_timeout"` // Billing API timeout in seconds
	AWS        AWS     `yaml:"aws"`
	Secrets    Secrets `yaml:"secrets"`
	Magalu     Magalu  `yaml:"magalu"`
	Azure      Azure   `yaml:"azure"`
	Metrics    Metrics `yaml:"metrics"`

	// Identity inputs, only ever taken from the environment
	ProjectID       string `yaml:"-"`
	CredentialsFile string `yaml:"-"`
}

// Load loads configuration from an optional YAML file and applies environment
// variable overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		// #nosec G304 -- Config file path is provided by the operator via CLI flag
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyDefaults(&cfg)

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("environment variable error: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for configuration
func applyDefaults(cfg *Config) {
	if cfg.Provider == "" {
		cfg.Provider = DefaultProvider
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.APITimeout == 0 {
		cfg.APITimeout = DefaultAPITimeout
	}
	if cfg.AWS.Region == "" {
		cfg.AWS.Region = DefaultAWSRegion
	}
	if cfg.AWS.TableName == "" {
		cfg.AWS.TableName = DefaultTableName
	}
	if cfg.Magalu.BillingURL == "" {
		cfg.Magalu.BillingURL = DefaultMagaluURL
	}

	s := &cfg.Secrets
	if s.Version == "" {
		s.Version = DefaultSecretVer
	}
	if s.AWSAccessKeyID == "" {
		s.AWSAccessKeyID = DefaultAWSKeyID
	}
	if s.AWSSecretAccessKey == "" {
		s.AWSSecretAccessKey = DefaultAWSSecretKey
	}
	if s.MagaluAPIKey == "" {
		s.MagaluAPIKey = DefaultMagaluAPIKey
	}
	if s.MagaluSecretKey == "" {
		s.MagaluSecretKey = DefaultMagaluSecret
	}
}

// applyEnvOverrides applies environment variable overrides to configuration
func applyEnvOverrides(cfg *Config) error {
	cfg.ProjectID = strings.TrimSpace(os.Getenv(EnvProjectID))
	cfg.CredentialsFile = strings.TrimSpace(os.Getenv(EnvCredentialsFile))

	if val := os.Getenv(EnvProvider); val != "" {
		cfg.Provider = val
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))

	if val := os.Getenv(EnvLogLevel); val != "" {
		cfg.LogLevel = val
	}

	if val := os.Getenv(EnvTableName); val != "" {
		cfg.AWS.TableName = val
	}

	if val := os.Getenv(EnvAWSRegion); val != "" {
		cfg.AWS.Region = val
	}

	if val := os.Getenv(EnvAPITimeout); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s: must be an integer, got %q", EnvAPITimeout, val)
		}
		cfg.APITimeout = i
	}

	if val := os.Getenv(EnvPushgatewayURL); val != "" {
		cfg.Metrics.PushgatewayURL = val
	}

	if val := os.Getenv(EnvMagaluURL); val != "" {
		cfg.Magalu.BillingURL = val
	}

	if val := os.Getenv(EnvAzureSub); val != "" {
		cfg.Azure.SubscriptionID = val
	}

	return nil
}

// validate validates the configuration and reports every problem found.
// Identity is not checked here; a missing project ends the run, not the load.
func validate(cfg *Config) error {
	var result *multierror.Error

	if !validProviders[cfg.Provider] {
		result = multierror.Append(result, fmt.Errorf("provider must be one of gcp, magalu, azure, got %q", cfg.Provider))
	}

	if cfg.APITimeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("api_timeout must be positive, got %d", cfg.APITimeout))
	} else if cfg.APITimeout > MaxAPITimeout {
		result = multierror.Append(result, fmt.Errorf("api_timeout should not exceed %d seconds, got %d", MaxAPITimeout, cfg.APITimeout))
	}

	if strings.TrimSpace(cfg.AWS.TableName) == "" {
		result = multierror.Append(result, fmt.Errorf("aws.table_name must not be empty"))
	}

	if cfg.Provider == "magalu" && !strings.HasPrefix(cfg.Magalu.BillingURL, "http") {
		result = multierror.Append(result, fmt.Errorf("magalu.billing_url must be an http(s) URL, got %q", cfg.Magalu.BillingURL))
	}

	if cfg.Provider == "azure" && cfg.Azure.SubscriptionID == "" {
		result = multierror.Append(result, fmt.Errorf("azure.subscription_id is required for the azure provider"))
	}

	return result.ErrorOrNil()
}
