package datasource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/goalline/internal/config"
)

const (
	sourceName     = "api_futebol"
	maxErrorBody   = 512
	matchKeyMarker = "partida_id"
)

// FootballAPIClient implements FootballDataSource for the api-futebol v1 REST API
type FootballAPIClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	logger     *logrus.Entry
}

// NewFootballAPIClient creates a new api-futebol client
func NewFootballAPIClient(httpClient *RateLimitedHTTPClient, cfg config.FootballAPIConfig, logger *logrus.Logger) *FootballAPIClient {
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.PanicLevel)
	}
	return &FootballAPIClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		logger:     logger.WithField("component", "football_api"),
	}
}

// Name returns the data source name
func (c *FootballAPIClient) Name() string {
	return sourceName
}

// FetchChampionships lists the championships available to the API key
func (c *FootballAPIClient) FetchChampionships(ctx context.Context) ([]Championship, error) {
	var championships []Championship
	if err := c.getJSON(ctx, "/campeonatos", &championships); err != nil {
		return nil, err
	}
	return championships, nil
}

// FetchChampionshipMatches retrieves and flattens the phase/key/leg fixture tree
func (c *FootballAPIClient) FetchChampionshipMatches(ctx context.Context, championshipID int64) (*ChampionshipMatches, error) {
	var payload struct {
		Championship Championship    `json:"campeonato"`
		Matches      json.RawMessage `json:"partidas"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/campeonatos/%d/partidas", championshipID), &payload); err != nil {
		return nil, err
	}

	matches, err := flattenMatches(payload.Matches)
	if err != nil {
		return nil, NewDataSourceError(sourceName, ErrCodeInvalidData, "failed to parse fixture tree", err)
	}
	if payload.Championship.ID == 0 {
		payload.Championship.ID = championshipID
	}

	c.logger.WithFields(logrus.Fields{
		"championship_id": championshipID,
		"matches":         len(matches),
	}).Debug("Fetched championship matches")

	return &ChampionshipMatches{Championship: payload.Championship, Matches: matches}, nil
}

// FetchTeam retrieves a single team
func (c *FootballAPIClient) FetchTeam(ctx context.Context, teamID int64) (*APITeam, error) {
	var team APITeam
	if err := c.getJSON(ctx, fmt.Sprintf("/times/%d", teamID), &team); err != nil {
		return nil, err
	}
	return &team, nil
}

// FetchTable retrieves the championship's standings
func (c *FootballAPIClient) FetchTable(ctx context.Context, championshipID int64) ([]TableEntry, error) {
	var table []TableEntry
	if err := c.getJSON(ctx, fmt.Sprintf("/campeonatos/%d/tabela", championshipID), &table); err != nil {
		return nil, err
	}
	sort.SliceStable(table, func(i, j int) bool { return table[i].Position < table[j].Position })
	return table, nil
}

func (c *FootballAPIClient) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return NewDataSourceError(sourceName, ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return NewDataSourceError(sourceName, ErrCodeNetworkError, "request to "+path+" failed", err)
	}
	defer resp.Body.Close()

	if err := statusError(resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewDataSourceError(sourceName, ErrCodeInvalidData, "failed to parse response", err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return NewDataSourceError(sourceName, ErrCodeAuthenticationFailed, "invalid API key", nil)
	case resp.StatusCode == http.StatusNotFound:
		return NewDataSourceError(sourceName, ErrCodeNotFound, "resource not found", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return NewDataSourceError(sourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	code := ErrCodeUnknown
	if resp.StatusCode >= 500 {
		code = ErrCodeServerError
	}
	return NewDataSourceError(sourceName, code, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
}

// flattenMatches walks the nested phase/key/leg structure in key order and collects every
// object carrying a match id. The first occurrence of an id wins; output is ordered by id.
func flattenMatches(raw json.RawMessage) ([]APIMatch, error) {
	seen := make(map[int64]struct{})
	matches := []APIMatch{}

	var walk func(node json.RawMessage) error
	walk = func(node json.RawMessage) error {
		node = bytes.TrimSpace(node)
		if len(node) == 0 {
			return nil
		}
		switch node[0] {
		case '{':
			var obj map[string]json.RawMessage
			if err := json.Unmarshal(node, &obj); err != nil {
				return err
			}
			if _, ok := obj[matchKeyMarker]; ok {
				var m APIMatch
				if err := json.Unmarshal(node, &m); err != nil {
					return err
				}
				if _, dup := seen[m.ID]; !dup && m.ID != 0 {
					seen[m.ID] = struct{}{}
					matches = append(matches, m)
				}
				return nil
			}
			keys := make([]string, 0, len(obj))
			for k := range obj {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				if err := walk(obj[k]); err != nil {
					return err
				}
			}
		case '[':
			var arr []json.RawMessage
			if err := json.Unmarshal(node, &arr); err != nil {
				return err
			}
			for _, child := range arr {
				if err := walk(child); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := walk(raw); err != nil {
		return nil, err
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches, nil
}
