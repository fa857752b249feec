package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/goalline/internal/models"
)

const (
	maxFutureHorizon  = 2 * 365 * 24 * time.Hour
	maxPlausibleGoals = 30
)

// DataValidator validates match and team data before it is persisted
type DataValidator struct {
	validate *validator.Validate
	logger   *logrus.Entry
	now      func() time.Time
}

// NewDataValidator creates a new data validator
func NewDataValidator(logger *logrus.Logger) *DataValidator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &DataValidator{
		validate: validator.New(),
		logger:   logger.WithField("component", "validator"),
		now:      time.Now,
	}
}

// ValidateMatch validates a match record for required fields and constraints
func (v *DataValidator) ValidateMatch(match *models.MatchRecord) []string {
	var problems []string

	if err := v.validate.Struct(match); err != nil {
		problems = append(problems, fieldErrors(err)...)
	}

	if match.Status == models.MatchStatusFinished {
		if match.HomeScore == nil || match.AwayScore == nil {
			problems = append(problems, "finished match requires both scores")
		} else {
			for _, s := range []int{*match.HomeScore, *match.AwayScore} {
				if s < 0 || s > maxPlausibleGoals {
					problems = append(problems, fmt.Sprintf("score out of range (0-%d), got %d", maxPlausibleGoals, s))
				}
			}
		}
		if match.MatchDate.After(v.now().Add(24 * time.Hour)) {
			problems = append(problems, "finished match dated in the future")
		}
	}

	if match.MatchDate.After(v.now().Add(maxFutureHorizon)) {
		problems = append(problems, "match scheduled more than 2 years in future")
	}

	return problems
}

// ValidateTeam validates team data for required fields
func (v *DataValidator) ValidateTeam(team *models.Team) []string {
	if err := v.validate.Struct(team); err != nil {
		return fieldErrors(err)
	}
	return nil
}

func fieldErrors(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			out = append(out, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			out = append(out, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return out
}
