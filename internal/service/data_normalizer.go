package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/goalline/internal/datasource"
	"github.com/yourusername/goalline/internal/models"
)

// provider timestamps without an offset are Brasília time
var providerZone = time.FixedZone("BRT", -3*60*60)

var kickoffLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05",
}

// DataNormalizer converts provider payloads to internal models
type DataNormalizer struct {
	logger *logrus.Entry
	now    func() time.Time
}

// NewDataNormalizer creates a new data normalizer
func NewDataNormalizer(logger *logrus.Logger) *DataNormalizer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &DataNormalizer{
		logger: logger.WithField("component", "normalizer"),
		now:    time.Now,
	}
}

// NormalizeTeam converts an APITeam into a Team
func (n *DataNormalizer) NormalizeTeam(src datasource.APITeam) *models.Team {
	return &models.Team{
		ID:           src.ID,
		Name:         sanitizeName(src.Name),
		PopularName:  sanitizeName(src.PopularName),
		Abbreviation: strings.ToUpper(strings.TrimSpace(src.Abbreviation)),
		LogoURL:      strings.TrimSpace(src.Crest),
		UpdatedAt:    n.now().UTC(),
	}
}

// NormalizeMatch converts an APIMatch into a MatchRecord. The championship falls back to
// the one the match was fetched under.
func (n *DataNormalizer) NormalizeMatch(src datasource.APIMatch, championship datasource.Championship) (*models.MatchRecord, error) {
	kickoff, err := parseKickoff(src)
	if err != nil {
		return nil, fmt.Errorf("match %d: %w", src.ID, err)
	}

	champ := championship
	if src.Championship != nil && src.Championship.ID != 0 {
		champ = *src.Championship
	}

	record := &models.MatchRecord{
		ID:               src.ID,
		HomeTeamID:       src.Home.ID,
		AwayTeamID:       src.Away.ID,
		Status:           models.ParseMatchStatus(src.Status),
		MatchDate:        kickoff,
		ChampionshipID:   champ.ID,
		ChampionshipName: strings.TrimSpace(champ.Name),
		UpdatedAt:        n.now().UTC(),
	}

	// scores are only meaningful once the match is over
	if record.Status == models.MatchStatusFinished {
		record.HomeScore = copyInt(src.HomeScore)
		record.AwayScore = copyInt(src.AwayScore)
	}
	return record, nil
}

func parseKickoff(src datasource.APIMatch) (time.Time, error) {
	if iso := strings.TrimSpace(src.KickoffISO); iso != "" {
		for _, layout := range kickoffLayouts {
			if t, err := time.ParseInLocation(layout, iso, providerZone); err == nil {
				return t.UTC(), nil
			}
		}
	}
	if date := strings.TrimSpace(src.KickoffDate); date != "" {
		clock := strings.TrimSpace(src.KickoffTime)
		if clock == "" {
			clock = "00:00"
		}
		if t, err := time.ParseInLocation("02/01/2006 15:04", date+" "+clock, providerZone); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable kick-off %q", datasource.ErrInvalidData, src.KickoffISO)
}

// sanitizeName trims and collapses internal whitespace
func sanitizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	return models.IntPtr(*v)
}
