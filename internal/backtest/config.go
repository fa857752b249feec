package backtest

import (
	"fmt"
	"time"

	"github.com/yourusername/goalline/internal/allocation"
	"github.com/yourusername/goalline/internal/analytics"
	"github.com/yourusername/goalline/internal/config"
	"github.com/yourusername/goalline/internal/models"
)

const (
	// DefaultMinHistory is the number of finished matches a team needs before it is profiled.
	DefaultMinHistory = 3

	dateLayout = "2006-01-02"
)

// BacktestConfig holds the settings of a replay run
type BacktestConfig struct {
	StartDate             time.Time
	EndDate               time.Time
	ChampionshipID        int64
	InitialBankroll       float64
	MinHistory            int
	ReplayOpponentRatings bool
	MonteCarloIterations  int
	RiskFreeRate          float64
	OutputPath            string
	Policy                allocation.Policy
	Profile               analytics.ProfileOptions
}

// FromConfig converts app config to backtest config
func FromConfig(cfg *config.BacktestConfig, analysis *config.AnalysisConfig) (BacktestConfig, error) {
	if cfg == nil {
		return BacktestConfig{}, models.InvalidConfigf("backtest config is required")
	}
	start, err := time.Parse(dateLayout, cfg.StartDate)
	if err != nil {
		return BacktestConfig{}, fmt.Errorf("invalid start date: %w", err)
	}
	end, err := time.Parse(dateLayout, cfg.EndDate)
	if err != nil {
		return BacktestConfig{}, fmt.Errorf("invalid end date: %w", err)
	}

	bt := BacktestConfig{
		StartDate:             start,
		EndDate:               end,
		ChampionshipID:        cfg.ChampionshipID,
		InitialBankroll:       cfg.InitialBankroll,
		MinHistory:            cfg.MinHistory,
		ReplayOpponentRatings: cfg.ReplayOpponentRatings,
		MonteCarloIterations:  cfg.MonteCarloIterations,
		RiskFreeRate:          cfg.RiskFreeRate,
		OutputPath:            cfg.OutputPath,
		Policy:                allocation.DefaultPolicy(),
		Profile:               analytics.DefaultProfileOptions(),
	}
	if analysis != nil {
		bt.Policy = analysis.AllocationPolicy()
		bt.Profile = analysis.ProfileOptions()
	}

	return bt, bt.Validate()
}

// Validate validates backtest config parameters
func (b BacktestConfig) Validate() error {
	if b.StartDate.After(b.EndDate) {
		return models.InvalidConfigf("start date must be before end date")
	}
	if b.InitialBankroll <= 0 {
		return models.InvalidConfigf("initial bankroll must be positive")
	}
	if b.MinHistory < 0 {
		return models.InvalidConfigf("min history cannot be negative")
	}
	if b.MonteCarloIterations < 0 {
		return models.InvalidConfigf("monte carlo iterations cannot be negative")
	}
	return b.Policy.Validate()
}
