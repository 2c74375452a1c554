package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zgpcy/cloudmatrix-cost-collector/internal/collector"
	"github.com/zgpcy/cloudmatrix-cost-collector/internal/config"
	"github.com/zgpcy/cloudmatrix-cost-collector/internal/logger"
	"github.com/zgpcy/cloudmatrix-cost-collector/internal/version"
)

var (
	configPath string

	rootCmd = &cobra.Command{
		Use:   "collector",
		Short: "Collect month-to-date cloud cost into the FinOps report table",
		Long: `collector runs one cost collection: it resolves the project identity,
reads credentials from Secret Manager, asks the configured billing source for
month-to-date cost and writes one report into DynamoDB.

Failures are logged to stdout and do not change the exit code, so a scheduler
simply runs it again next period.

Examples:
  collector                          # Run with defaults and environment overrides
  collector --config collector.yaml  # Run with a configuration file
  COLLECTOR_PROVIDER=magalu collector`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runCollector,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
)

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "",
		"Path to an optional YAML configuration file")
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runCollector wires the pipeline and runs it once. Run failures are logged
// by the collector and swallowed here.
func runCollector(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.New(config.DefaultLogLevel).Error("Cost collector failed",
			"stage", collector.StageConfig, "error", err.Error())
		return nil
	}

	log := logger.New(cfg.LogLevel)
	log.Info("Cloud cost collector starting",
		"version", version.Version,
		"config_path", configPath,
		"provider", cfg.Provider,
		"table", cfg.AWS.TableName,
		"region", cfg.AWS.Region,
		"api_timeout_seconds", cfg.APITimeout)

	c, err := build(cfg, log)
	if err != nil {
		log.Error("Cost collector failed", "stage", collector.StageConfig, "error", err.Error())
		return nil
	}

	if err := c.Run(ctx); err != nil {
		log.Info("Cost collector finished with error")
		return nil
	}

	log.Info("Cost collector finished successfully")
	return nil
}

// build wires the collector. Secret Manager is opened by the run itself.
func build(cfg *config.Config, log *logger.Logger) (*collector.CostCollector, error) {
	sourceFactory, err := collector.NewSourceFactory(cfg, log)
	if err != nil {
		return nil, err
	}

	return collector.NewCostCollector(cfg,
		collector.NewStoreFactory(log),
		sourceFactory,
		collector.NewSinkFactory(cfg, log),
		log), nil
}
