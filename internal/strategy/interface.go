// Package strategy scans fixtures for short-odds betting scenarios.
package strategy

import (
	"github.com/yourusername/goalline/internal/models"
)

// Rule evaluates one scenario family for a fixture and yields at most one scenario
type Rule interface {
	Name() string
	Evaluate(ctx Context) (models.BettingScenario, bool)
}

// Context carries everything a rule may look at for one fixture
type Context struct {
	Fixture models.Fixture
	Home    models.TeamSnapshot
	Away    models.TeamSnapshot
	Policy  Policy
}

// DefaultRules returns the five scenario rules in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		DominantHomeRule{},
		GoalTotalRule{},
		BothTeamsScoreRule{},
		DoubleChanceRule{},
		FormGapRule{},
	}
}
