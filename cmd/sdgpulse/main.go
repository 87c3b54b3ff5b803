// Command sdgpulse runs the trend-to-response pipeline one stage at a time.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kapu/sdg-pulse/internal/app"
	"github.com/kapu/sdg-pulse/internal/config"
	"github.com/kapu/sdg-pulse/internal/pipeline"
	"github.com/kapu/sdg-pulse/internal/util"
	apperrors "github.com/kapu/sdg-pulse/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sdgpulse",
	Short: "Map social media trends to UN SDGs and emotions, then write supportive responses",
	Long: `sdgpulse turns trend titles and social posts into supportive messages.

Each stage is a subcommand that reads one JSON file and writes its outputs:
fetch-trends, fetch, generate, clean, classify, emotion, respond,
distribution and export. Paths default to the values in the environment
(or .env) and can be overridden per run with flags. "cache flush" clears
cached completions before re-running a failed partition.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded

		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Logging.Level = level
		}
		if c, _ := cmd.Flags().GetInt("concurrency"); c > 0 {
			cfg.Batch.Concurrency = c
		}

		l, err := util.NewLogger(cfg.Logging.Level, cfg.Logging.File)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Int("concurrency", 0, "maximum in-flight model calls (default BATCH_CONCURRENCY)")
}

// withContainer builds the services a stage needs, runs fn and releases them.
func withContainer(cmd *cobra.Command, needs app.Needs, fn func(ctx context.Context, c *app.Container, r *pipeline.Runner) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	buildCtx, buildCancel := context.WithTimeout(ctx, 30*time.Second)
	container, err := app.Build(buildCtx, cfg, logger, needs)
	buildCancel()
	if err != nil {
		logger.Error("Failed to assemble services", zap.Error(err))
		return err
	}
	defer container.Close()

	runner := pipeline.NewRunner(cmd.OutOrStdout(), cfg.Batch.Concurrency, logger)
	return fn(ctx, container, runner)
}

// pathFlag returns the flag value when set, else the configured default.
func pathFlag(cmd *cobra.Command, name, fallback string) string {
	if v, _ := cmd.Flags().GetString(name); v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		var cfgErr *apperrors.ConfigError
		if errors.As(err, &cfgErr) {
			fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
