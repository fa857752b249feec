package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/goalline/internal/models"
	"github.com/yourusername/goalline/internal/service"
	"github.com/yourusername/goalline/internal/strategy"
	"github.com/yourusername/goalline/internal/tracker"
)

const (
	syncTimeout           = 30 * time.Minute
	recommendationTimeout = 5 * time.Minute
	settlementTimeout     = 5 * time.Minute
)

// Syncer pulls championships from the provider
type Syncer interface {
	SyncAll(ctx context.Context, championshipIDs []int64) ([]*service.SyncMetrics, error)
}

// Recommender builds a day's recommendations
type Recommender interface {
	DailyRecommendations(ctx context.Context, bankroll float64, day time.Time) (*models.DailyRecommendations, *strategy.ScanReport, error)
}

// MatchLookup resolves a fixture to its latest stored state
type MatchLookup interface {
	GetByID(ctx context.Context, id int64) (*models.MatchRecord, error)
}

// Publisher receives every new set of daily recommendations
type Publisher interface {
	Publish(ctx context.Context, recs *models.DailyRecommendations) error
}

// Jobs holds the collaborators the scheduled jobs drive
type Jobs struct {
	Syncer        Syncer
	Recommender   Recommender
	Matches       MatchLookup
	Tracker       *tracker.PerformanceTracker
	Publishers    []Publisher
	Championships []int64
	Bankroll      float64
}

// Scheduler manages the sync, recommendation and settlement jobs
type Scheduler struct {
	cron            *cron.Cron
	jobs            Jobs
	location        *time.Location
	logger          *logrus.Entry
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	gracefulTimeout time.Duration
	now             func() time.Time
}

// NewScheduler creates a new scheduler running in the given timezone (UTC when empty)
func NewScheduler(jobs Jobs, timezone string, log *logrus.Logger) (*Scheduler, error) {
	loc := time.UTC
	if timezone != "" {
		var err error
		if loc, err = time.LoadLocation(timezone); err != nil {
			return nil, fmt.Errorf("invalid scheduler timezone %q: %w", timezone, err)
		}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	entry := log.WithField("component", "scheduler")

	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(cronLogger{entry}), cron.SkipIfStillRunning(cronLogger{entry})),
		),
		jobs:            jobs,
		location:        loc,
		logger:          entry,
		jobIDs:          make([]cron.EntryID, 0),
		gracefulTimeout: 30 * time.Second,
		now:             time.Now,
	}, nil
}

// ScheduleSync schedules the championship sync
func (s *Scheduler) ScheduleSync(spec string) error {
	if s.jobs.Syncer == nil || len(s.jobs.Championships) == 0 {
		return fmt.Errorf("sync job requires a syncer and at least one championship")
	}
	return s.schedule("sync", spec, syncTimeout, func(ctx context.Context) error {
		_, err := s.RunSync(ctx)
		return err
	})
}

// ScheduleRecommendations schedules the daily recommendation run
func (s *Scheduler) ScheduleRecommendations(spec string) error {
	if s.jobs.Recommender == nil || s.jobs.Bankroll <= 0 {
		return fmt.Errorf("recommendation job requires a recommender and a positive bankroll")
	}
	return s.schedule("recommendations", spec, recommendationTimeout, func(ctx context.Context) error {
		_, err := s.RunRecommendations(ctx, s.now().In(s.location))
		return err
	})
}

// ScheduleSettlement schedules settling tracked picks against stored results
func (s *Scheduler) ScheduleSettlement(spec string) error {
	if s.jobs.Tracker == nil || s.jobs.Matches == nil {
		return fmt.Errorf("settlement job requires a tracker and a match lookup")
	}
	return s.schedule("settlement", spec, settlementTimeout, func(ctx context.Context) error {
		_, err := s.RunSettlement(ctx)
		return err
	})
}

func (s *Scheduler) schedule(name, spec string, timeout time.Duration, run func(context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	entryID, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		start := time.Now()
		if err := run(ctx); err != nil {
			s.logger.WithError(err).WithField("job", name).Error("Scheduled job failed")
			return
		}
		s.logger.WithFields(logrus.Fields{
			"job":         name,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("Scheduled job completed")
	})
	if err != nil {
		return fmt.Errorf("failed to add %s job: %w", name, err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{"job": name, "spec": spec}).Info("Scheduled job")
	return nil
}

// RunSync syncs every configured championship once
func (s *Scheduler) RunSync(ctx context.Context) ([]*service.SyncMetrics, error) {
	results, err := s.jobs.Syncer.SyncAll(ctx, s.jobs.Championships)
	for _, m := range results {
		s.logger.Info(m.String())
	}
	return results, err
}

// RunRecommendations builds the day's picks, records them in the tracker and hands them
// to every publisher. Publisher failures are logged and do not fail the run.
func (s *Scheduler) RunRecommendations(ctx context.Context, day time.Time) (*models.DailyRecommendations, error) {
	recs, report, err := s.jobs.Recommender.DailyRecommendations(ctx, s.jobs.Bankroll, day)
	if err != nil {
		return nil, fmt.Errorf("failed to build recommendations: %w", err)
	}

	if s.jobs.Tracker != nil {
		for _, rec := range recs.Recommendations {
			if err := s.jobs.Tracker.RecordRecommendation(rec); err != nil && !errors.Is(err, models.ErrDuplicateKey) {
				s.logger.WithError(err).WithField("recommendation_id", rec.ID).Warn("Failed to track recommendation")
			}
		}
	}

	for _, p := range s.jobs.Publishers {
		if err := p.Publish(ctx, recs); err != nil {
			s.logger.WithError(err).WithField("publisher", fmt.Sprintf("%T", p)).Warn("Failed to publish recommendations")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"date":    recs.Date.Format("2006-01-02"),
		"bets":    len(recs.Recommendations),
		"scanned": report.Scanned,
		"skipped": len(report.Skipped),
	}).Info("Daily recommendations issued")
	return recs, nil
}

// RunSettlement settles pending picks whose fixtures have finished and returns how many
// picks were settled.
func (s *Scheduler) RunSettlement(ctx context.Context) (int, error) {
	checked := make(map[int64]struct{})
	settled := 0
	for _, p := range s.jobs.Tracker.Pending() {
		if _, done := checked[p.FixtureID]; done {
			continue
		}
		checked[p.FixtureID] = struct{}{}

		record, err := s.jobs.Matches.GetByID(ctx, p.FixtureID)
		if errors.Is(err, models.ErrNotFound) {
			continue
		}
		if err != nil {
			return settled, fmt.Errorf("failed to load fixture %d: %w", p.FixtureID, err)
		}
		if !record.IsFinished() {
			continue
		}
		n, err := s.jobs.Tracker.SettleFromMatch(*record)
		if err != nil {
			return settled, err
		}
		settled += n
	}
	return settled, nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")
	return nil
}

// Stop waits for running jobs to finish, up to the graceful timeout
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	stopCtx := s.cron.Stop()
	s.isRunning = false

	select {
	case <-stopCtx.Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-time.After(s.gracefulTimeout):
		return fmt.Errorf("scheduler jobs still running after %v", s.gracefulTimeout)
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() && (nextRun.IsZero() || entry.Next.Before(nextRun)) {
			nextRun = entry.Next
		}
	}
	return nextRun
}

// Entries returns information about scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		if entry := s.cron.Entry(jobID); entry.Valid() {
			entries = append(entries, entry)
		}
	}
	return entries
}

// cronLogger adapts logrus to cron.Logger
type cronLogger struct {
	entry *logrus.Entry
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(fields(keysAndValues)).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.entry.WithError(err).WithFields(fields(keysAndValues)).Error(msg)
}

func fields(keysAndValues []interface{}) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		f[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return f
}
