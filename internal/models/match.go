package models

import (
	"strings"
	"time"
)

// MatchStatus represents the lifecycle state of a match
type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusFinished  MatchStatus = "finished"
	MatchStatusOther     MatchStatus = "other"
)

// ParseMatchStatus maps a provider status string onto a MatchStatus.
func ParseMatchStatus(raw string) MatchStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "finalizado", "finished":
		return MatchStatusFinished
	case "agendado", "scheduled":
		return MatchStatusScheduled
	default:
		return MatchStatusOther
	}
}

// MatchRecord represents a single fixture, played or not
type MatchRecord struct {
	ID               int64       `db:"id" json:"id" validate:"required,gt=0"`
	HomeTeamID       int64       `db:"home_team_id" json:"home_team_id" validate:"required,gt=0"`
	AwayTeamID       int64       `db:"away_team_id" json:"away_team_id" validate:"required,gt=0,nefield=HomeTeamID"`
	HomeScore        *int        `db:"home_score" json:"home_score,omitempty"`
	AwayScore        *int        `db:"away_score" json:"away_score,omitempty"`
	Status           MatchStatus `db:"status" json:"status" validate:"required,oneof=scheduled finished other"`
	MatchDate        time.Time   `db:"match_date" json:"match_date" validate:"required"`
	ChampionshipID   int64       `db:"championship_id" json:"championship_id"`
	ChampionshipName string      `db:"championship_name" json:"championship_name"`
	UpdatedAt        time.Time   `db:"updated_at" json:"updated_at"`
}

// IsFinished reports whether the record has a final score.
func (m *MatchRecord) IsFinished() bool {
	return m.Status == MatchStatusFinished && m.HomeScore != nil && m.AwayScore != nil
}

// Involves reports whether teamID played in the match.
func (m *MatchRecord) Involves(teamID int64) bool {
	return m.HomeTeamID == teamID || m.AwayTeamID == teamID
}

// Fixture returns the scheduling part of the record.
func (m *MatchRecord) Fixture() Fixture {
	return Fixture{
		ID:               m.ID,
		HomeTeamID:       m.HomeTeamID,
		AwayTeamID:       m.AwayTeamID,
		MatchDate:        m.MatchDate,
		ChampionshipID:   m.ChampionshipID,
		ChampionshipName: m.ChampionshipName,
	}
}

// TeamMatch is a MatchRecord seen from one team's side
type TeamMatch struct {
	MatchID        int64       `json:"match_id"`
	IsHome         bool        `json:"is_home"`
	GoalsFor       int         `json:"goals_for"`
	GoalsAgainst   int         `json:"goals_against"`
	Status         MatchStatus `json:"status"`
	MatchDate      time.Time   `json:"match_date"`
	OpponentID     int64       `json:"opponent_id"`
	OpponentRating float64     `json:"opponent_rating,omitempty"` // 0 when unknown
}

// Finished reports whether the match counts towards statistics.
func (tm TeamMatch) Finished() bool {
	return tm.Status == MatchStatusFinished
}

// GoalDifference returns goals for minus goals against.
func (tm TeamMatch) GoalDifference() int {
	return tm.GoalsFor - tm.GoalsAgainst
}

// ForTeam builds the team-perspective view of a record. ok is false when the team
// did not play in the match.
func ForTeam(record MatchRecord, teamID int64) (TeamMatch, bool) {
	if !record.Involves(teamID) {
		return TeamMatch{}, false
	}

	tm := TeamMatch{
		MatchID:   record.ID,
		IsHome:    record.HomeTeamID == teamID,
		Status:    record.Status,
		MatchDate: record.MatchDate,
	}

	var home, away int
	if record.HomeScore != nil {
		home = *record.HomeScore
	}
	if record.AwayScore != nil {
		away = *record.AwayScore
	}
	if !record.IsFinished() && tm.Status == MatchStatusFinished {
		// a finished record without a score cannot feed statistics
		tm.Status = MatchStatusOther
	}

	if tm.IsHome {
		tm.GoalsFor, tm.GoalsAgainst, tm.OpponentID = home, away, record.AwayTeamID
	} else {
		tm.GoalsFor, tm.GoalsAgainst, tm.OpponentID = away, home, record.HomeTeamID
	}
	return tm, true
}

// Fixture is an upcoming match to be scanned
type Fixture struct {
	ID               int64     `json:"id"`
	HomeTeamID       int64     `json:"home_team_id"`
	AwayTeamID       int64     `json:"away_team_id"`
	MatchDate        time.Time `json:"match_date"`
	ChampionshipID   int64     `json:"championship_id"`
	ChampionshipName string    `json:"championship_name"`
}

// Team represents a club; used for labelling only
type Team struct {
	ID           int64     `db:"id" json:"id" validate:"required,gt=0"`
	Name         string    `db:"name" json:"name" validate:"required"`
	PopularName  string    `db:"popular_name" json:"popular_name"`
	Abbreviation string    `db:"abbreviation" json:"abbreviation"`
	LogoURL      string    `db:"logo_url" json:"logo_url"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// DisplayName prefers the popular name.
func (t *Team) DisplayName() string {
	if t.PopularName != "" {
		return t.PopularName
	}
	return t.Name
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}
