package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/goalline/internal/datasource"
	"github.com/yourusername/goalline/internal/logger"
	"github.com/yourusername/goalline/internal/models"
	"github.com/yourusername/goalline/internal/repository"
)

// CacheInvalidator is notified when stored history changes
type CacheInvalidator interface {
	Invalidate()
}

// IngestionService handles the championship sync workflow
type IngestionService struct {
	source     datasource.FootballDataSource
	matchRepo  repository.MatchRepository
	teamRepo   repository.TeamRepository
	validator  *DataValidator
	normalizer *DataNormalizer
	cache      CacheInvalidator
	analysis   *logger.AnalysisLogger
	logger     *logrus.Entry
	batchSize  int
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(
	source datasource.FootballDataSource,
	matchRepo repository.MatchRepository,
	teamRepo repository.TeamRepository,
	cache CacheInvalidator,
	log *logrus.Logger,
	batchSize int,
) *IngestionService {
	if batchSize <= 0 {
		batchSize = 100
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &IngestionService{
		source:     source,
		matchRepo:  matchRepo,
		teamRepo:   teamRepo,
		validator:  NewDataValidator(log),
		normalizer: NewDataNormalizer(log),
		cache:      cache,
		analysis:   logger.NewAnalysisLogger(log),
		logger:     log.WithField("component", "ingestion"),
		batchSize:  batchSize,
	}
}

// SyncChampionship fetches a championship's fixtures and teams and upserts them.
// Invalid records are counted and skipped; only fetch failures abort the sync.
func (s *IngestionService) SyncChampionship(ctx context.Context, championshipID int64) (*SyncMetrics, error) {
	m := NewSyncMetrics(championshipID)
	defer func() {
		m.Finish()
		s.analysis.LogSyncCompleted(championshipID, m.TeamsSynced, m.MatchesWritten, m.Failures(), float64(m.Duration.Milliseconds()))
	}()

	s.logger.WithField("championship_id", championshipID).Info("Starting championship sync")

	payload, err := s.source.FetchChampionshipMatches(ctx, championshipID)
	if err != nil {
		m.RecordError("fetch")
		return m, fmt.Errorf("failed to fetch championship %d: %w", championshipID, err)
	}
	m.RecordFetched(len(payload.Matches))

	teams := make(map[int64]datasource.APITeam)
	records := make([]*models.MatchRecord, 0, len(payload.Matches))
	for _, src := range payload.Matches {
		for _, t := range []datasource.APITeam{src.Home, src.Away} {
			if t.ID != 0 {
				teams[t.ID] = t
			}
		}

		record, err := s.normalizer.NormalizeMatch(src, payload.Championship)
		if err != nil {
			m.RecordValidationError()
			s.logger.WithError(err).WithField("match_id", src.ID).Warn("Skipping unparseable match")
			continue
		}
		if problems := s.validator.ValidateMatch(record); len(problems) > 0 {
			m.RecordValidationError()
			s.logger.WithFields(logrus.Fields{
				"match_id": record.ID,
				"problems": strings.Join(problems, "; "),
			}).Warn("Match validation failed")
			continue
		}
		records = append(records, record)
	}

	s.syncTeams(ctx, teams, m)

	for i := 0; i < len(records); i += s.batchSize {
		end := min(i+s.batchSize, len(records))
		written, err := s.matchRepo.UpsertBatch(ctx, records[i:end])
		m.RecordWritten(written)
		if err != nil {
			m.RecordError("store")
			s.logger.WithError(err).WithField("batch_start", i).Error("Failed to store match batch")
			if ctx.Err() != nil {
				return m, ctx.Err()
			}
		}
	}

	if s.cache != nil {
		s.cache.Invalidate()
	}
	return m, nil
}

// SyncAll syncs every championship, continuing past failures
func (s *IngestionService) SyncAll(ctx context.Context, championshipIDs []int64) ([]*SyncMetrics, error) {
	results := make([]*SyncMetrics, 0, len(championshipIDs))
	var errs []error
	for _, id := range championshipIDs {
		m, err := s.SyncChampionship(ctx, id)
		results = append(results, m)
		if err != nil {
			errs = append(errs, err)
			if ctx.Err() != nil {
				break
			}
		}
	}
	return results, errors.Join(errs...)
}

func (s *IngestionService) syncTeams(ctx context.Context, teams map[int64]datasource.APITeam, m *SyncMetrics) {
	for _, src := range teams {
		team := s.normalizer.NormalizeTeam(src)
		if problems := s.validator.ValidateTeam(team); len(problems) > 0 {
			m.RecordValidationError()
			s.logger.WithFields(logrus.Fields{
				"team_id":  team.ID,
				"problems": strings.Join(problems, "; "),
			}).Warn("Team validation failed")
			continue
		}
		if err := s.teamRepo.Upsert(ctx, team); err != nil {
			m.RecordError("store")
			s.logger.WithError(err).WithField("team_id", team.ID).Error("Failed to store team")
			continue
		}
		m.RecordTeam()
	}
}
