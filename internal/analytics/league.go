package analytics

import (
	"sort"

	"github.com/yourusername/goalline/internal/models"
)

// CalculateTeamStats totals a team's finished matches.
func CalculateTeamStats(matches []models.TeamMatch) models.TeamStats {
	var stats models.TeamStats
	for _, m := range matches {
		if !m.Finished() {
			continue
		}
		stats.Matches++
		stats.GoalsFor += m.GoalsFor
		stats.GoalsAgainst += m.GoalsAgainst
		switch {
		case m.GoalsFor > m.GoalsAgainst:
			stats.Wins++
		case m.GoalsFor == m.GoalsAgainst:
			stats.Draws++
		default:
			stats.Losses++
		}
	}
	if stats.Matches > 0 {
		n := float64(stats.Matches)
		stats.GoalsPerMatch = float64(stats.GoalsFor) / n
		stats.GoalsConcededPerMatch = float64(stats.GoalsAgainst) / n
		stats.WinPercentage = float64(stats.Wins) / n * 100
	}
	return stats
}

// LeagueSummary describes a championship's finished matches
type LeagueSummary struct {
	ChampionshipID        int64                `json:"championship_id"`
	TotalMatches          int                  `json:"total_matches"`
	TotalGoals            int                  `json:"total_goals"`
	GoalsPerMatch         float64              `json:"goals_per_match"`
	TeamsCount            int                  `json:"teams_count"`
	AveragePointsPerMatch float64              `json:"average_points_per_match"`
	Table                 []models.StandingRow `json:"table"`
}

// BuildLeagueTable builds standings from a championship's records, sorted by points,
// then goal difference, then goals scored. Teams without a finished match are omitted.
func BuildLeagueTable(championshipID int64, records []models.MatchRecord) LeagueSummary {
	rows := make(map[int64]*models.StandingRow)
	teams := make(map[int64]struct{})
	summary := LeagueSummary{ChampionshipID: championshipID}

	row := func(id int64) *models.StandingRow {
		r, ok := rows[id]
		if !ok {
			r = &models.StandingRow{TeamID: id}
			rows[id] = r
		}
		return r
	}

	for _, rec := range records {
		teams[rec.HomeTeamID] = struct{}{}
		teams[rec.AwayTeamID] = struct{}{}
		if !rec.IsFinished() {
			continue
		}
		hs, as := *rec.HomeScore, *rec.AwayScore
		summary.TotalMatches++
		summary.TotalGoals += hs + as

		applyResult(row(rec.HomeTeamID), hs, as)
		applyResult(row(rec.AwayTeamID), as, hs)
	}

	table := make([]models.StandingRow, 0, len(rows))
	var ppmTotal float64
	for _, r := range rows {
		r.GoalDifference = r.GoalsFor - r.GoalsAgainst
		r.Points = 3*r.Wins + r.Draws
		r.PointsPerMatch = float64(r.Points) / float64(r.Played)
		r.WinPercentage = float64(r.Wins) / float64(r.Played) * 100
		ppmTotal += r.PointsPerMatch
		table = append(table, *r)
	}
	sort.Slice(table, func(i, j int) bool {
		a, b := table[i], table[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference != b.GoalDifference {
			return a.GoalDifference > b.GoalDifference
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return a.TeamID < b.TeamID
	})
	for i := range table {
		table[i].Position = i + 1
	}

	summary.Table = table
	summary.TeamsCount = len(teams)
	if summary.TotalMatches > 0 {
		summary.GoalsPerMatch = float64(summary.TotalGoals) / float64(summary.TotalMatches)
	}
	if len(table) > 0 {
		summary.AveragePointsPerMatch = ppmTotal / float64(len(table))
	}
	return summary
}

func applyResult(r *models.StandingRow, goalsFor, goalsAgainst int) {
	r.Played++
	r.GoalsFor += goalsFor
	r.GoalsAgainst += goalsAgainst
	switch {
	case goalsFor > goalsAgainst:
		r.Wins++
	case goalsFor == goalsAgainst:
		r.Draws++
	default:
		r.Losses++
	}
}
