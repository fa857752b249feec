package analytics

import "github.com/yourusername/goalline/internal/models"

// MarketPattern is a league-wide tendency worth targeting at short odds
type MarketPattern struct {
	Pattern     string  `json:"pattern"`
	Percentage  float64 `json:"percentage"`
	Opportunity string  `json:"opportunity"`
	Confidence  string  `json:"confidence"`
}

// MarketReport summarises outcome frequencies over a set of finished matches
type MarketReport struct {
	SampleSize       int             `json:"sample_size"`
	HomeWins         int             `json:"home_wins"`
	Draws            int             `json:"draws"`
	AwayWins         int             `json:"away_wins"`
	HomeWinPct       float64         `json:"home_win_percentage"`
	DrawPct          float64         `json:"draw_percentage"`
	AwayWinPct       float64         `json:"away_win_percentage"`
	AverageGoals     float64         `json:"average_goals_per_match"`
	Over25Pct        float64         `json:"over_25_percentage"`
	BTTSPct          float64         `json:"btts_percentage"`
	Patterns         []MarketPattern `json:"patterns"`
	MarketEfficiency string          `json:"market_efficiency"`
}

// AnalyzeMarket reports outcome frequencies and the patterns they suggest. It returns
// models.ErrInsufficientData when no finished match is supplied.
func AnalyzeMarket(records []models.MatchRecord) (MarketReport, error) {
	var report MarketReport
	var goals, over25, btts int
	for _, r := range records {
		if !r.IsFinished() {
			continue
		}
		hs, as := *r.HomeScore, *r.AwayScore
		report.SampleSize++
		switch {
		case hs > as:
			report.HomeWins++
		case hs == as:
			report.Draws++
		default:
			report.AwayWins++
		}
		goals += hs + as
		if hs+as > 2 {
			over25++
		}
		if hs > 0 && as > 0 {
			btts++
		}
	}
	if report.SampleSize == 0 {
		return report, models.ErrInsufficientData
	}

	n := float64(report.SampleSize)
	pct := func(c int) float64 { return float64(c) / n * 100 }
	report.HomeWinPct = pct(report.HomeWins)
	report.DrawPct = pct(report.Draws)
	report.AwayWinPct = pct(report.AwayWins)
	report.AverageGoals = float64(goals) / n
	report.Over25Pct = pct(over25)
	report.BTTSPct = pct(btts)

	if report.HomeWinPct >= 45 {
		report.Patterns = append(report.Patterns, MarketPattern{
			Pattern:     "strong home advantage",
			Percentage:  report.HomeWinPct,
			Opportunity: "home win or home-or-draw",
			Confidence:  highOrMedium(report.HomeWinPct >= 50),
		})
	}
	if report.Over25Pct >= 60 {
		report.Patterns = append(report.Patterns, MarketPattern{
			Pattern:     "high-scoring matches",
			Percentage:  report.Over25Pct,
			Opportunity: "over 2.5 goals",
			Confidence:  highOrMedium(report.Over25Pct >= 70),
		})
	}
	if report.BTTSPct >= 55 {
		report.Patterns = append(report.Patterns, MarketPattern{
			Pattern:     "both teams tend to score",
			Percentage:  report.BTTSPct,
			Opportunity: "both teams to score",
			Confidence:  highOrMedium(report.BTTSPct >= 65),
		})
	}
	if report.DrawPct <= 20 {
		report.Patterns = append(report.Patterns, MarketPattern{
			Pattern:     "few draws",
			Percentage:  report.DrawPct,
			Opportunity: "avoid the draw, back a decided result",
			Confidence:  "Medium",
		})
	}

	switch {
	case len(report.Patterns) >= 3:
		report.MarketEfficiency = "Low"
	case len(report.Patterns) >= 2:
		report.MarketEfficiency = "Medium"
	default:
		report.MarketEfficiency = "High"
	}
	return report, nil
}

func highOrMedium(high bool) string {
	if high {
		return "High"
	}
	return "Medium"
}
