package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/goalline/internal/allocation"
	"github.com/yourusername/goalline/internal/config"
	"github.com/yourusername/goalline/internal/datasource"
	"github.com/yourusername/goalline/internal/repository"
	"github.com/yourusername/goalline/internal/service"
	"github.com/yourusername/goalline/internal/strategy"
)

const ingestionBatchSize = 100

// app holds the wired engine shared by every command
type app struct {
	cfg       *config.Config
	log       *logrus.Logger
	repos     *repository.Repositories
	cache     *service.SnapshotCache
	http      *datasource.RateLimitedHTTPClient
	scanner   *strategy.Scanner
	analysis  *service.AnalysisService
	ingestion *service.IngestionService
	location  *time.Location
}

func newApp(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*app, error) {
	loc := time.UTC
	if tz := cfg.Scheduler.Timezone; tz != "" {
		var err error
		if loc, err = time.LoadLocation(tz); err != nil {
			return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
		}
	}

	repos, err := repository.NewRepositories(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open repositories: %w", err)
	}

	scanner, err := strategy.NewScanner(cfg.Analysis.ScannerPolicy(), log)
	if err != nil {
		repos.Close()
		return nil, err
	}
	scanner.WithWorkers(cfg.Analysis.ScanWorkers)

	allocator, err := allocation.NewAllocator(cfg.Analysis.AllocationPolicy(), log)
	if err != nil {
		repos.Close()
		return nil, err
	}

	cache := service.NewSnapshotCache(cfg.Cache.ProfileTTL(), cfg.Cache.CleanupInterval())
	analysis := service.NewAnalysisService(repos.Match, repos.Team, scanner, allocator, cache, service.AnalysisOptions{
		Profile:               cfg.Analysis.ProfileOptions(),
		ReplayOpponentRatings: cfg.Analysis.ReplayOpponentRatings,
		MinHistory:            cfg.Backtest.MinHistory,
	}, log)

	httpClient := datasource.NewRateLimitedHTTPClient(datasource.HTTPClientConfigFrom(cfg.FootballAPI), log)
	source := datasource.NewFootballAPIClient(httpClient, cfg.FootballAPI, log)
	ingestion := service.NewIngestionService(source, repos.Match, repos.Team, cache, log, ingestionBatchSize)

	return &app{
		cfg:       cfg,
		log:       log,
		repos:     repos,
		cache:     cache,
		http:      httpClient,
		scanner:   scanner,
		analysis:  analysis,
		ingestion: ingestion,
		location:  loc,
	}, nil
}

func (a *app) today() time.Time {
	now := time.Now().In(a.location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, a.location)
}

func (a *app) Close() {
	if err := a.http.Close(); err != nil {
		a.log.WithError(err).Warn("Failed to close HTTP client")
	}
	if err := a.repos.Close(); err != nil {
		a.log.WithError(err).Warn("Failed to close repositories")
	}
}
