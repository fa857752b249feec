package analytics

import "github.com/yourusername/goalline/internal/models"

// CalculateHeadToHead tallies finished meetings between two teams in either venue order.
func CalculateHeadToHead(team1, team2 int64, pool []models.MatchRecord) models.HeadToHead {
	h2h := models.HeadToHead{
		Team1ID:   team1,
		Team2ID:   team2,
		Advantage: models.AdvantageNeutral,
	}

	for _, r := range pool {
		if !r.IsFinished() || !r.Involves(team1) || !r.Involves(team2) || team1 == team2 {
			continue
		}
		tm, _ := models.ForTeam(r, team1)
		h2h.TotalMatches++
		switch {
		case tm.GoalsFor > tm.GoalsAgainst:
			h2h.Team1Wins++
		case tm.GoalsFor < tm.GoalsAgainst:
			h2h.Team2Wins++
		default:
			h2h.Draws++
		}
	}

	switch {
	case h2h.Team1Wins > h2h.Team2Wins:
		h2h.Advantage = models.AdvantageTeam1
	case h2h.Team2Wins > h2h.Team1Wins:
		h2h.Advantage = models.AdvantageTeam2
	}
	return h2h
}
