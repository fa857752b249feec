package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/goalline/internal/datasource"
	"github.com/yourusername/goalline/internal/models"
	"github.com/yourusername/goalline/internal/service"
	"github.com/yourusername/goalline/internal/strategy"
	"github.com/yourusername/goalline/internal/tracker"
)

type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) TeamAnalysis(ctx context.Context, teamID int64, asOf time.Time) (*service.TeamAnalysis, error) {
	args := m.Called(ctx, teamID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TeamAnalysis), args.Error(1)
}

func (m *MockAnalyzer) AnalyzeMatch(ctx context.Context, homeID, awayID int64, asOf time.Time) (*service.MatchAnalysis, error) {
	args := m.Called(ctx, homeID, awayID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MatchAnalysis), args.Error(1)
}

func (m *MockAnalyzer) FindOpportunities(ctx context.Context, championshipID *int64, from time.Time, daysAhead int) (*service.OpportunityReport, error) {
	args := m.Called(ctx, championshipID, from, daysAhead)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.OpportunityReport), args.Error(1)
}

func (m *MockAnalyzer) DailyRecommendations(ctx context.Context, bankroll float64, day time.Time) (*models.DailyRecommendations, *strategy.ScanReport, error) {
	args := m.Called(ctx, bankroll, day)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.DailyRecommendations), args.Get(1).(*strategy.ScanReport), args.Error(2)
}

func (m *MockAnalyzer) LeagueAnalysis(ctx context.Context, championshipID int64) (*service.LeagueAnalysis, error) {
	args := m.Called(ctx, championshipID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LeagueAnalysis), args.Error(1)
}

func (m *MockAnalyzer) Policy() strategy.Policy {
	return strategy.DefaultPolicy()
}

type stubSyncer struct {
	err error
}

func (s stubSyncer) SyncChampionship(_ context.Context, id int64) (*service.SyncMetrics, error) {
	if s.err != nil {
		return nil, s.err
	}
	m := service.NewSyncMetrics(id)
	m.MatchesFetched = 10
	m.MatchesWritten = 8
	return m, nil
}

var fixedNow = time.Date(2025, 4, 22, 12, 0, 0, 0, time.UTC)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestServer(analyzer Analyzer, syncer Syncer, perf PerformanceReporter, hub *Hub) http.Handler {
	s := NewServer(analyzer, syncer, perf, hub, Options{DefaultBankroll: 500, DefaultDaysAhead: 3}, quietLogger())
	s.now = func() time.Time { return fixedNow }
	return s.Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, reader))
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestAnalyzeMatch(t *testing.T) {
	analyzer := new(MockAnalyzer)
	analyzer.On("AnalyzeMatch", mock.Anything, int64(1), int64(2), fixedNow).
		Return(&service.MatchAnalysis{HomeTeam: &models.Team{ID: 1, Name: "Flamengo"}}, nil)
	analyzer.On("AnalyzeMatch", mock.Anything, int64(1), int64(99), fixedNow).
		Return(nil, models.MissingTeam(99))
	h := newTestServer(analyzer, nil, nil, nil)

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantErr  string
	}{
		{"ok", `{"home_team_id":1,"away_team_id":2}`, http.StatusOK, ""},
		{"unknown team", `{"home_team_id":1,"away_team_id":99}`, http.StatusNotFound, "not_found"},
		{"same team", `{"home_team_id":1,"away_team_id":1}`, http.StatusBadRequest, "validation_failed"},
		{"missing away", `{"home_team_id":1}`, http.StatusBadRequest, "validation_failed"},
		{"unknown field", `{"home_team_id":1,"away_team_id":2,"extra":true}`, http.StatusBadRequest, "invalid_json"},
		{"malformed", `{`, http.StatusBadRequest, "invalid_json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/advanced/analyze-match", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, decodeBody(t, rec)["code"])
			}
		})
	}
	analyzer.AssertNumberOfCalls(t, "AnalyzeMatch", 2)
}

func TestTeamAndLeagueAnalysis(t *testing.T) {
	analyzer := new(MockAnalyzer)
	asOf := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	analyzer.On("TeamAnalysis", mock.Anything, int64(7), asOf).
		Return(&service.TeamAnalysis{Team: &models.Team{ID: 7, Name: "Palmeiras"}, AsOf: asOf}, nil)
	analyzer.On("LeagueAnalysis", mock.Anything, int64(10)).
		Return(&service.LeagueAnalysis{}, nil)
	analyzer.On("LeagueAnalysis", mock.Anything, int64(11)).
		Return(nil, models.ErrNotFound)
	h := newTestServer(analyzer, nil, nil, nil)

	rec := do(t, h, http.MethodGet, "/api/advanced/teams/7?as_of=2025-03-01", "")
	require.Equal(t, http.StatusOK, rec.Code)
	team := decodeBody(t, rec)["team"].(map[string]interface{})
	assert.Equal(t, "Palmeiras", team["name"])

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/advanced/teams/abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/advanced/teams/7?as_of=01-03-2025", "").Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/advanced/leagues/10", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/advanced/leagues/11", "").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, do(t, h, http.MethodGet, "/api/odds/market-analysis/10", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodPost, "/api/advanced/leagues/10", "").Code)
}

func TestCalculators(t *testing.T) {
	h := newTestServer(new(MockAnalyzer), nil, nil, nil)

	rec := do(t, h, http.MethodPost, "/api/odds/bet-calculator", `{"stake":100,"confidence":90}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.InDelta(t, 25.0, body["potential_profit"], 1e-9)
	assert.InDelta(t, 1.25, body["odds"], 1e-9)
	assert.Equal(t, true, body["should_bet"])

	rec = do(t, h, http.MethodPost, "/api/odds/bet-calculator", `{"stake":0,"confidence":90}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/advanced/odds-calculator",
		`{"home_probability":60,"draw_probability":25,"away_probability":15}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decodeBody(t, rec), "fair_odds")

	rec = do(t, h, http.MethodPost, "/api/advanced/odds-calculator",
		`{"home_probability":60,"draw_probability":60,"away_probability":15}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_probabilities", decodeBody(t, rec)["code"])
}

func TestOpportunitiesAndDailyRecommendations(t *testing.T) {
	analyzer := new(MockAnalyzer)
	champ := int64(10)
	analyzer.On("FindOpportunities", mock.Anything, &champ, fixedNow, 3).
		Return(&service.OpportunityReport{Scan: &strategy.ScanReport{Scanned: 4}}, nil)
	day := time.Date(2025, 4, 23, 0, 0, 0, 0, time.UTC)
	analyzer.On("DailyRecommendations", mock.Anything, 2000.0, day).
		Return(&models.DailyRecommendations{Date: day, Bankroll: 2000}, &strategy.ScanReport{Scanned: 6}, nil)
	analyzer.On("DailyRecommendations", mock.Anything, -1.0, mock.Anything).
		Return(nil, nil, models.InvalidConfigf("bankroll must be positive"))
	h := newTestServer(analyzer, nil, nil, nil)

	rec := do(t, h, http.MethodPost, "/api/odds/opportunities", `{"championship_id":10}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/odds/opportunities", `{"days_ahead":90}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/odds/daily-recommendations?bankroll=2000&date=2025-04-23", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.InDelta(t, 2000.0, body["bankroll"], 1e-9)
	assert.InDelta(t, 6.0, body["scanned"], 1e-9)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/odds/daily-recommendations?bankroll=-1", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/odds/daily-recommendations?bankroll=lots", "").Code)
	analyzer.AssertExpectations(t)
}

func TestPerformance(t *testing.T) {
	h := newTestServer(new(MockAnalyzer), nil, nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodGet, "/api/odds/performance", "").Code)

	tr, err := tracker.NewPerformanceTracker(strategy.DefaultPolicy(), quietLogger())
	require.NoError(t, err)
	h = newTestServer(new(MockAnalyzer), nil, tr, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, do(t, h, http.MethodGet, "/api/odds/performance", "").Code)

	require.NoError(t, tr.Record(tracker.Prediction{ID: "p1", FixtureID: 1, Outcome: models.OutcomeHomeOrDraw, Confidence: 0.9}))
	require.NoError(t, tr.Settle("p1", "2-0", true))

	rec := do(t, h, http.MethodGet, "/api/odds/performance", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 25.0, decodeBody(t, rec)["profit_loss"], 1e-9)
}

func TestSync(t *testing.T) {
	h := newTestServer(new(MockAnalyzer), stubSyncer{}, nil, nil)
	rec := do(t, h, http.MethodPost, "/api/football/sync/10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 8.0, decodeBody(t, rec)["matches_written"], 1e-9)

	upstream := datasource.NewDataSourceError("api_futebol", datasource.ErrCodeServerError, "unexpected status 503", nil)
	h = newTestServer(new(MockAnalyzer), stubSyncer{err: upstream}, nil, nil)
	assert.Equal(t, http.StatusBadGateway, do(t, h, http.MethodPost, "/api/football/sync/10", "").Code)

	missing := datasource.NewDataSourceError("api_futebol", datasource.ErrCodeNotFound, "resource not found", nil)
	h = newTestServer(new(MockAnalyzer), stubSyncer{err: missing}, nil, nil)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/api/football/sync/10", "").Code)

	h = newTestServer(new(MockAnalyzer), nil, nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodPost, "/api/football/sync/10", "").Code)
}

func TestFeed(t *testing.T) {
	hub := NewHub(quietLogger())
	defer hub.Close()

	first := &models.DailyRecommendations{Date: fixedNow, Bankroll: 1000}
	require.NoError(t, hub.Publish(context.Background(), first))

	srv := httptest.NewServer(newTestServer(new(MockAnalyzer), nil, nil, hub))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/recommendations"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() FeedMessage {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var msg FeedMessage
		require.NoError(t, json.NewDecoder(bytes.NewReader(data)).Decode(&msg))
		return msg
	}

	msg := read()
	assert.Equal(t, feedMessageType, msg.Type)
	assert.InDelta(t, 1000.0, msg.Data.Bankroll, 1e-9)
	assert.Equal(t, 1, hub.Subscribers())

	require.NoError(t, hub.Publish(context.Background(), &models.DailyRecommendations{Date: fixedNow, Bankroll: 1500}))
	assert.InDelta(t, 1500.0, read().Data.Bankroll, 1e-9)

	assert.Error(t, hub.Publish(context.Background(), nil))
}
