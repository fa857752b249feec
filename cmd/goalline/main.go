// Package main provides the goalline command line entry point.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/goalline/internal/config"
	"github.com/yourusername/goalline/internal/logger"
	"github.com/yourusername/goalline/internal/metrics"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

const dateLayout = "2006-01-02"

type rootOptions struct {
	configFile string
	logLevel   string

	cfg *config.Config
	log *logrus.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "goalline",
		Short:         "Football analytics for low-odds betting opportunities",
		Long:          `Profiles teams from match history, scans upcoming fixtures for high-confidence scenarios priced at 1.25 and sizes a daily portfolio.`,
		Version:       fmt.Sprintf("%s (%s)", Version, GitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override the configured log level")

	cmd.AddCommand(
		newServeCmd(opts),
		newSyncCmd(opts),
		newAnalyzeCmd(opts),
		newScanCmd(opts),
		newRecommendCmd(opts),
		newBacktestCmd(opts),
	)
	return cmd
}

func (o *rootOptions) load(ctx context.Context) error {
	cfg, err := config.LoadWithDefaults(o.configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := config.LoadSecretsFromAWS(ctx, cfg); err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}
	if o.logLevel != "" {
		cfg.App.LogLevel = o.logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	o.cfg = cfg
	o.log = logger.NewLogger(cfg.App.LogLevel)
	metrics.InitRegistry()
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseDay parses an optional YYYY-MM-DD flag, falling back to fallback.
func parseDay(raw string, loc *time.Location, fallback time.Time) (time.Time, error) {
	if raw == "" {
		return fallback, nil
	}
	day, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", raw, err)
	}
	return day, nil
}
