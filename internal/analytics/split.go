package analytics

import "github.com/yourusername/goalline/internal/models"

// CalculateHomeAwayPerformance splits finished matches by venue.
func CalculateHomeAwayPerformance(matches []models.TeamMatch) models.HomeAwaySplit {
	var split models.HomeAwaySplit
	for _, m := range matches {
		if !m.Finished() {
			continue
		}
		rec := &split.Away
		if m.IsHome {
			rec = &split.Home
		}
		rec.Matches++
		rec.GoalsFor += m.GoalsFor
		rec.GoalsAgainst += m.GoalsAgainst
		switch {
		case m.GoalsFor > m.GoalsAgainst:
			rec.Wins++
		case m.GoalsFor == m.GoalsAgainst:
			rec.Draws++
		default:
			rec.Losses++
		}
	}

	split.Home.PointsPerMatch = pointsPerMatch(split.Home)
	split.Away.PointsPerMatch = pointsPerMatch(split.Away)
	return split
}

func pointsPerMatch(r models.VenueRecord) float64 {
	if r.Matches == 0 {
		return 0
	}
	return float64(3*r.Wins+r.Draws) / float64(r.Matches)
}
