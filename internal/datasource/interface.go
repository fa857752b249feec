package datasource

import (
	"context"
	"errors"
)

// FootballDataSource defines the interface for fetching football data from external providers
type FootballDataSource interface {
	// FetchChampionships lists the championships the account can read
	FetchChampionships(ctx context.Context) ([]Championship, error)

	// FetchChampionshipMatches retrieves every fixture of a championship, flattened
	FetchChampionshipMatches(ctx context.Context, championshipID int64) (*ChampionshipMatches, error)

	// FetchTeam retrieves a single team
	FetchTeam(ctx context.Context, teamID int64) (*APITeam, error)

	// FetchTable retrieves the current league table
	FetchTable(ctx context.Context, championshipID int64) ([]TableEntry, error)

	// Name returns the name of the data source
	Name() string
}

// Championship is a competition as reported by the provider
type Championship struct {
	ID          int64  `json:"campeonato_id"`
	Name        string `json:"nome"`
	PopularName string `json:"nome_popular"`
	Slug        string `json:"slug"`
	Status      string `json:"status"`
	Type        string `json:"tipo"`
}

// APITeam is the provider's team payload
type APITeam struct {
	ID           int64  `json:"time_id"`
	Name         string `json:"nome"`
	PopularName  string `json:"nome_popular"`
	Abbreviation string `json:"sigla"`
	Crest        string `json:"escudo"`
}

// APIMatch is the provider's match payload
type APIMatch struct {
	ID           int64         `json:"partida_id"`
	Home         APITeam       `json:"time_mandante"`
	Away         APITeam       `json:"time_visitante"`
	HomeScore    *int          `json:"placar_mandante"`
	AwayScore    *int          `json:"placar_visitante"`
	Status       string        `json:"status"`
	KickoffISO   string        `json:"data_realizacao_iso"`
	KickoffDate  string        `json:"data_realizacao"`
	KickoffTime  string        `json:"hora_realizacao"`
	Championship *Championship `json:"campeonato,omitempty"`
}

// ChampionshipMatches is a championship with all of its fixtures
type ChampionshipMatches struct {
	Championship Championship
	Matches      []APIMatch
}

// TableEntry is one row of a league table
type TableEntry struct {
	Position       int     `json:"posicao"`
	Points         int     `json:"pontos"`
	Team           APITeam `json:"time"`
	Played         int     `json:"jogos"`
	Wins           int     `json:"vitorias"`
	Draws          int     `json:"empates"`
	Losses         int     `json:"derrotas"`
	GoalsFor       int     `json:"gols_pro"`
	GoalsAgainst   int     `json:"gols_contra"`
	GoalDifference int     `json:"saldo_gols"`
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

// Unwrap returns the underlying error
func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel that corresponds to the error code
func (e DataSourceError) Is(target error) bool {
	sentinel, ok := codeSentinels[e.Code]
	return ok && sentinel == target
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
	ErrCodeUnknown              = "unknown"
)

// Error sentinels
var (
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotFound             = errors.New("data not found")
	ErrInvalidData          = errors.New("invalid data format")
	ErrNetworkError         = errors.New("network error")
	ErrServerError          = errors.New("server error")
)

var codeSentinels = map[string]error{
	ErrCodeRateLimitExceeded:    ErrRateLimitExceeded,
	ErrCodeAuthenticationFailed: ErrAuthenticationFailed,
	ErrCodeNotFound:             ErrNotFound,
	ErrCodeInvalidData:          ErrInvalidData,
	ErrCodeNetworkError:         ErrNetworkError,
	ErrCodeServerError:          ErrServerError,
}

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
