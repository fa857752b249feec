package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/goalline/internal/api"
	"github.com/yourusername/goalline/internal/datasource"
	"github.com/yourusername/goalline/internal/health"
	"github.com/yourusername/goalline/internal/metrics"
	"github.com/yourusername/goalline/internal/notify"
	"github.com/yourusername/goalline/internal/scheduler"
	"github.com/yourusername/goalline/internal/tracker"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, recommendation feed and scheduled jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions) error {
	cfg, log := opts.cfg, opts.log

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	perf, err := tracker.NewPerformanceTracker(a.scanner.Policy(), log)
	if err != nil {
		return err
	}

	hub := api.NewHub(log)
	defer hub.Close()
	publishers := []scheduler.Publisher{hub}
	if cfg.Telegram.Enabled {
		tg, err := notify.NewTelegramNotifier(cfg.Telegram, a.repos.Team, log)
		if err != nil {
			return err
		}
		publishers = append(publishers, tg)
	}

	healthSrv := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Commit:      GitCommit,
		Address:     ":" + strconv.Itoa(cfg.Metrics.Port),
		Logger:      log,
		Checks: map[string]health.Checker{
			"database":     a.repos.Health,
			"football_api": upstreamCheck(a.http),
		},
		Metrics:     metrics.Handler(),
		MetricsPath: cfg.Metrics.Path,
	})

	mux := http.NewServeMux()
	api.NewServer(a.analysis, a.ingestion, perf, hub, api.Options{
		DefaultBankroll:  cfg.Analysis.DefaultBankroll,
		DefaultDaysAhead: cfg.Analysis.DaysAhead,
		Location:         a.location,
	}, log).Register(mux)
	if !cfg.Metrics.Enabled {
		healthSrv.Register(mux)
	}

	if cfg.Scheduler.Enabled {
		sched, err := newScheduler(a, perf, publishers)
		if err != nil {
			return err
		}
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()
	}

	if cfg.Metrics.Enabled {
		if err := healthSrv.Start(ctx); err != nil {
			return err
		}
	}

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      mux,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("address", server.Addr).Info("API server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	healthSrv.SetReady(true)

	select {
	case err := <-errCh:
		return fmt.Errorf("api server failed: %w", err)
	case <-ctx.Done():
	}

	healthSrv.SetReady(false)
	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newScheduler(a *app, perf *tracker.PerformanceTracker, publishers []scheduler.Publisher) (*scheduler.Scheduler, error) {
	cfg := a.cfg.Scheduler
	sched, err := scheduler.NewScheduler(scheduler.Jobs{
		Syncer:        a.ingestion,
		Recommender:   a.analysis,
		Matches:       a.repos.Match,
		Tracker:       perf,
		Publishers:    publishers,
		Championships: a.cfg.FootballAPI.Championships,
		Bankroll:      a.cfg.Analysis.DefaultBankroll,
	}, cfg.Timezone, a.log)
	if err != nil {
		return nil, err
	}

	if len(a.cfg.FootballAPI.Championships) > 0 {
		if err := sched.ScheduleSync(cfg.SyncSchedule); err != nil {
			return nil, err
		}
	}
	if err := sched.ScheduleRecommendations(cfg.RecommendationSchedule); err != nil {
		return nil, err
	}
	if cfg.SettlementSchedule != "" {
		if err := sched.ScheduleSettlement(cfg.SettlementSchedule); err != nil {
			return nil, err
		}
	}
	return sched, nil
}

func upstreamCheck(client *datasource.RateLimitedHTTPClient) health.Checker {
	return health.CheckerFunc(func(context.Context) error {
		if client.IsOpen() {
			return datasource.ErrCircuitOpen
		}
		return nil
	})
}
