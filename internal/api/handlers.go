package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/yourusername/goalline/internal/models"
	"github.com/yourusername/goalline/internal/prediction"
	"github.com/yourusername/goalline/internal/service"
	"github.com/yourusername/goalline/internal/strategy"
)

const dateLayout = "2006-01-02"

type analyzeMatchRequest struct {
	HomeTeamID int64      `json:"home_team_id" validate:"required,gt=0"`
	AwayTeamID int64      `json:"away_team_id" validate:"required,gt=0,nefield=HomeTeamID"`
	AsOf       *time.Time `json:"as_of,omitempty"`
}

type oddsCalculatorRequest struct {
	HomeProbability float64 `json:"home_probability" validate:"gte=0,lte=100"`
	DrawProbability float64 `json:"draw_probability" validate:"gte=0,lte=100"`
	AwayProbability float64 `json:"away_probability" validate:"gte=0,lte=100"`
	TargetOdds      float64 `json:"target_odds" validate:"omitempty,gt=1"`
}

type opportunitiesRequest struct {
	ChampionshipID *int64 `json:"championship_id,omitempty" validate:"omitempty,gt=0"`
	DaysAhead      int    `json:"days_ahead,omitempty" validate:"omitempty,gte=1,lte=60"`
}

type betCalculatorRequest struct {
	Stake      float64 `json:"stake" validate:"required,gt=0"`
	Confidence float64 `json:"confidence" validate:"gte=0,lte=100"`
	Odds       float64 `json:"odds" validate:"omitempty,gt=1"`
}

type dailyRecommendationsResponse struct {
	*models.DailyRecommendations
	Scanned int                       `json:"scanned"`
	Skipped []strategy.SkippedFixture `json:"skipped,omitempty"`
}

type syncResponse struct {
	ChampionshipID   int64  `json:"championship_id"`
	MatchesFetched   int    `json:"matches_fetched"`
	MatchesWritten   int    `json:"matches_written"`
	TeamsSynced      int    `json:"teams_synced"`
	ValidationErrors int    `json:"validation_errors"`
	Duration         string `json:"duration"`
}

func (s *Server) handleAnalyzeMatch(w http.ResponseWriter, r *http.Request) {
	var req analyzeMatchRequest
	if !s.decode(w, r, &req) {
		return
	}
	asOf := s.now()
	if req.AsOf != nil {
		asOf = *req.AsOf
	}

	analysis, err := s.analyzer.AnalyzeMatch(r.Context(), req.HomeTeamID, req.AwayTeamID, asOf)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleTeamAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	asOf, ok := s.queryDate(w, r, "as_of")
	if !ok {
		return
	}

	analysis, err := s.analyzer.TeamAnalysis(r.Context(), id, asOf)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleLeagueAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	analysis, err := s.analyzer.LeagueAnalysis(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleMarketAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	analysis, err := s.analyzer.LeagueAnalysis(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if analysis.Market == nil {
		writeError(w, http.StatusUnprocessableEntity, "insufficient_data", nil)
		return
	}
	writeJSON(w, http.StatusOK, analysis.Market)
}

func (s *Server) handleOddsCalculator(w http.ResponseWriter, r *http.Request) {
	var req oddsCalculatorRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.TargetOdds == 0 {
		req.TargetOdds = s.analyzer.Policy().TargetOdds
	}

	analysis, err := prediction.AnalyzeOdds(req.HomeProbability, req.DrawProbability, req.AwayProbability, req.TargetOdds)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleOpportunities(w http.ResponseWriter, r *http.Request) {
	var req opportunitiesRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.DaysAhead == 0 {
		req.DaysAhead = s.opts.DefaultDaysAhead
	}

	report, err := s.analyzer.FindOpportunities(r.Context(), req.ChampionshipID, s.now(), req.DaysAhead)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleDailyRecommendations(w http.ResponseWriter, r *http.Request) {
	bankroll := s.opts.DefaultBankroll
	if raw := r.URL.Query().Get("bankroll"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_bankroll", err)
			return
		}
		bankroll = v
	}
	day, ok := s.queryDate(w, r, "date")
	if !ok {
		return
	}

	recs, report, err := s.analyzer.DailyRecommendations(r.Context(), bankroll, day)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	resp := dailyRecommendationsResponse{DailyRecommendations: recs}
	if report != nil {
		resp.Scanned = report.Scanned
		resp.Skipped = report.Skipped
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBetCalculator(w http.ResponseWriter, r *http.Request) {
	var req betCalculatorRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Odds == 0 {
		req.Odds = s.analyzer.Policy().TargetOdds
	}

	calc, err := prediction.CalculateBet(req.Stake, req.Confidence, req.Odds)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, calc)
}

func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	if s.performance == nil {
		writeError(w, http.StatusServiceUnavailable, "tracking_disabled", nil)
		return
	}
	perf, err := s.performance.Metrics()
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, perf)
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if s.syncer == nil {
		writeError(w, http.StatusServiceUnavailable, "sync_disabled", nil)
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	m, err := s.syncer.SyncChampionship(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSyncResponse(m))
}

func toSyncResponse(m *service.SyncMetrics) syncResponse {
	return syncResponse{
		ChampionshipID:   m.ChampionshipID,
		MatchesFetched:   m.MatchesFetched,
		MatchesWritten:   m.MatchesWritten,
		TeamsSynced:      m.TeamsSynced,
		ValidationErrors: m.ValidationErrors,
		Duration:         m.Duration.String(),
	}
}

// queryDate parses an optional YYYY-MM-DD query parameter in the server's timezone,
// defaulting to now.
func (s *Server) queryDate(w http.ResponseWriter, r *http.Request, key string) (time.Time, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return s.now().In(s.opts.Location), true
	}
	day, err := time.ParseInLocation(dateLayout, raw, s.opts.Location)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_"+key, err)
		return time.Time{}, false
	}
	return day, true
}
