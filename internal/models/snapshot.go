package models

// TeamSnapshot is the derived per-team profile consumed by the prediction layers
type TeamSnapshot struct {
	TeamID                int64         `json:"team_id"`
	EloRating             float64       `json:"elo_rating"`
	FormIndex             float64       `json:"form_index"`
	GoalsPerMatch         float64       `json:"goals_per_match"`
	GoalsConcededPerMatch float64       `json:"goals_conceded_per_match"`
	WinPercentage         float64       `json:"win_percentage"`
	MatchesPlayed         int           `json:"matches_played"`
	Split                 HomeAwaySplit `json:"home_away_split"`
}

// AttackStats summarises attacking output. ShotsConversion and AttackingThirdEntries
// are approximations derived from goals, not measured data.
type AttackStats struct {
	GoalsPerMatch         float64 `json:"goals_per_match"`
	ShotsConversion       float64 `json:"shots_conversion"`
	AttackingThirdEntries float64 `json:"attacking_third_entries"`
}

// DefenseStats summarises defensive output. DefensiveActions is an approximation.
type DefenseStats struct {
	GoalsConcededPerMatch float64 `json:"goals_conceded_per_match"`
	CleanSheetsRatio      float64 `json:"clean_sheets_ratio"`
	DefensiveActions      float64 `json:"defensive_actions"`
}

// VenueRecord is the record of a team at one venue
type VenueRecord struct {
	Matches        int     `json:"matches"`
	Wins           int     `json:"wins"`
	Draws          int     `json:"draws"`
	Losses         int     `json:"losses"`
	GoalsFor       int     `json:"goals_for"`
	GoalsAgainst   int     `json:"goals_against"`
	PointsPerMatch float64 `json:"points_per_match"`
}

// HomeAwaySplit holds the home and away venue records
type HomeAwaySplit struct {
	Home VenueRecord `json:"home"`
	Away VenueRecord `json:"away"`
}

// Advantage names the favoured side in a head-to-head
type Advantage string

const (
	AdvantageTeam1   Advantage = "team1"
	AdvantageTeam2   Advantage = "team2"
	AdvantageNeutral Advantage = "neutral"
)

// HeadToHead is the historical record between two teams
type HeadToHead struct {
	Team1ID      int64     `json:"team1_id"`
	Team2ID      int64     `json:"team2_id"`
	TotalMatches int       `json:"total_matches"`
	Team1Wins    int       `json:"team1_wins"`
	Team2Wins    int       `json:"team2_wins"`
	Draws        int       `json:"draws"`
	Advantage    Advantage `json:"advantage"`
}

// TeamStats holds plain season totals for a team
type TeamStats struct {
	Matches               int     `json:"matches"`
	Wins                  int     `json:"wins"`
	Draws                 int     `json:"draws"`
	Losses                int     `json:"losses"`
	GoalsFor              int     `json:"goals_for"`
	GoalsAgainst          int     `json:"goals_against"`
	GoalsPerMatch         float64 `json:"goals_per_match"`
	GoalsConcededPerMatch float64 `json:"goals_conceded_per_match"`
	WinPercentage         float64 `json:"win_percentage"`
}

// Trend describes the direction of recent form
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// TeamProfile bundles a snapshot with the breakdown it was built from
type TeamProfile struct {
	Snapshot TeamSnapshot `json:"snapshot"`
	Stats    TeamStats    `json:"stats"`
	Attack   AttackStats  `json:"attack"`
	Defense  DefenseStats `json:"defense"`
	Trend    Trend        `json:"trend"`
}

// StandingRow is one line of a league table
type StandingRow struct {
	Position       int     `json:"position"`
	TeamID         int64   `json:"team_id"`
	Played         int     `json:"played"`
	Wins           int     `json:"wins"`
	Draws          int     `json:"draws"`
	Losses         int     `json:"losses"`
	GoalsFor       int     `json:"goals_for"`
	GoalsAgainst   int     `json:"goals_against"`
	GoalDifference int     `json:"goal_difference"`
	Points         int     `json:"points"`
	PointsPerMatch float64 `json:"points_per_match"`
	WinPercentage  float64 `json:"win_percentage"`
}
