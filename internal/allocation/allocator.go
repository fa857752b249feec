package allocation

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/goalline/internal/logger"
	"github.com/yourusername/goalline/internal/metrics"
	"github.com/yourusername/goalline/internal/models"
)

// Allocator wraps BuildDailyRecommendations with logging, auditing and metrics
type Allocator struct {
	policy Policy
	log    *logger.AnalysisLogger
	audit  *logger.AuditLogger
}

// NewAllocator creates an allocator after validating its policy.
func NewAllocator(policy Policy, log *logrus.Logger) (*Allocator, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Allocator{
		policy: policy,
		log:    logger.NewAnalysisLogger(log),
		audit:  logger.NewAuditLogger(log),
	}, nil
}

// Policy returns the allocation policy.
func (a *Allocator) Policy() Policy {
	return a.policy
}

// Allocate builds the recommendations for a day.
func (a *Allocator) Allocate(picks []models.FixtureScenario, bankroll float64, date time.Time) (*models.DailyRecommendations, error) {
	daily, err := BuildDailyRecommendations(picks, bankroll, a.policy, date)
	if err != nil {
		a.log.WithError(err).WithField("bankroll", bankroll).Error("Allocation rejected")
		return nil, err
	}

	now := time.Now()
	for _, rec := range daily.Recommendations {
		a.audit.LogRecommendationIssued(rec.ID.String(), rec.Fixture.ID, string(rec.Scenario.Outcome),
			rec.Scenario.Confidence, rec.Stake, rec.Odds, now)
	}
	metrics.RecordAllocation(bankroll, daily.Summary.TotalStake, daily.Summary.ROIExpectation, daily.Summary.TotalBets)
	a.log.LogDailyRecommendations(date.Format("2006-01-02"), daily.Summary.TotalBets,
		daily.Summary.TotalStake, daily.Summary.ROIExpectation, string(daily.Summary.RiskAssessment))
	return daily, nil
}
