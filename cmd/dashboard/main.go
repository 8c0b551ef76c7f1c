// Command dashboard serves and renders the Colombian wood-mobilization report.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"go-wood-dashboard/internal/config"
	"go-wood-dashboard/internal/logging"
	"go-wood-dashboard/internal/model"
	"go-wood-dashboard/internal/pipeline"
	"go-wood-dashboard/internal/report"
)

var (
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Wood mobilization dashboard",
	Long: `dashboard loads the national wood-mobilization records and the department and
municipality boundaries, and renders the report pages as an HTTP dashboard, SVG charts
or exported tables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		logger, err = logging.New(cfg.Logging)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "dashboard.yaml", "path to the config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd, pagesCmd, reportCmd, exportCmd, columnsCmd)
}

// loadBuilder loads the dataset and wraps it in a report builder. Load failures are
// logged; the builder still answers with per-section diagnostics.
func loadBuilder(ctx context.Context) *report.Builder {
	ds, err := pipeline.Load(ctx, cfg, logger)
	if err != nil {
		logger.Error("dataset unavailable", zap.Error(err))
	}
	return report.NewBuilder(ds, report.Options{
		TopN:     cfg.Report.TopN,
		JoinMode: model.JoinMode(cfg.Report.JoinMode),
	}, logger)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
