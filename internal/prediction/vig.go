package prediction

import "github.com/yourusername/goalline/internal/models"

// RemoveVig converts three-way bookmaker prices into fair probabilities by stripping
// the overround.
func RemoveVig(homeOdds, drawOdds, awayOdds float64) (models.ProbabilityDistribution, error) {
	for _, o := range []float64{homeOdds, drawOdds, awayOdds} {
		if err := ValidateOdds(o); err != nil {
			return models.ProbabilityDistribution{}, err
		}
	}
	rawHome, rawDraw, rawAway := 1/homeOdds, 1/drawOdds, 1/awayOdds
	total := rawHome + rawDraw + rawAway
	return models.ProbabilityDistribution{
		HomeWin: rawHome / total,
		Draw:    rawDraw / total,
		AwayWin: rawAway / total,
	}, nil
}

// Overround returns the bookmaker margin in percent.
func Overround(homeOdds, drawOdds, awayOdds float64) float64 {
	return (1/homeOdds + 1/drawOdds + 1/awayOdds - 1) * 100
}
