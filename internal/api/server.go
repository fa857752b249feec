// Package api serves the analysis engine over HTTP and pushes daily picks over websocket.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/goalline/internal/datasource"
	"github.com/yourusername/goalline/internal/metrics"
	"github.com/yourusername/goalline/internal/models"
	"github.com/yourusername/goalline/internal/service"
	"github.com/yourusername/goalline/internal/strategy"
	"github.com/yourusername/goalline/internal/tracker"
)

const maxBodyBytes = 1 << 20

// Analyzer is the read side of the engine
type Analyzer interface {
	TeamAnalysis(ctx context.Context, teamID int64, asOf time.Time) (*service.TeamAnalysis, error)
	AnalyzeMatch(ctx context.Context, homeID, awayID int64, asOf time.Time) (*service.MatchAnalysis, error)
	FindOpportunities(ctx context.Context, championshipID *int64, from time.Time, daysAhead int) (*service.OpportunityReport, error)
	DailyRecommendations(ctx context.Context, bankroll float64, day time.Time) (*models.DailyRecommendations, *strategy.ScanReport, error)
	LeagueAnalysis(ctx context.Context, championshipID int64) (*service.LeagueAnalysis, error)
	Policy() strategy.Policy
}

// Syncer refreshes a championship from the provider
type Syncer interface {
	SyncChampionship(ctx context.Context, championshipID int64) (*service.SyncMetrics, error)
}

// PerformanceReporter summarises tracked picks
type PerformanceReporter interface {
	Metrics() (tracker.Performance, error)
}

// Options holds request defaults
type Options struct {
	DefaultBankroll  float64
	DefaultDaysAhead int
	Location         *time.Location
}

// Server wires HTTP routes for the engine
type Server struct {
	analyzer    Analyzer
	syncer      Syncer
	performance PerformanceReporter
	feed        *Hub
	opts        Options
	validate    *validator.Validate
	logger      *logrus.Entry
	now         func() time.Time
}

// NewServer creates a new API server. syncer, performance and feed may be nil; their
// routes then answer 503.
func NewServer(analyzer Analyzer, syncer Syncer, performance PerformanceReporter, feed *Hub, opts Options, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if opts.DefaultBankroll <= 0 {
		opts.DefaultBankroll = 1000
	}
	if opts.DefaultDaysAhead <= 0 {
		opts.DefaultDaysAhead = 7
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Server{
		analyzer:    analyzer,
		syncer:      syncer,
		performance: performance,
		feed:        feed,
		opts:        opts,
		validate:    newValidator(),
		logger:      log.WithField("component", "api"),
		now:         time.Now,
	}
}

// Register attaches all routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/advanced/analyze-match", s.instrument("analyze_match", s.handleAnalyzeMatch))
	mux.HandleFunc("GET /api/advanced/teams/{id}", s.instrument("team_analysis", s.handleTeamAnalysis))
	mux.HandleFunc("GET /api/advanced/leagues/{id}", s.instrument("league_analysis", s.handleLeagueAnalysis))
	mux.HandleFunc("POST /api/advanced/odds-calculator", s.instrument("odds_calculator", s.handleOddsCalculator))
	mux.HandleFunc("POST /api/odds/opportunities", s.instrument("opportunities", s.handleOpportunities))
	mux.HandleFunc("GET /api/odds/daily-recommendations", s.instrument("daily_recommendations", s.handleDailyRecommendations))
	mux.HandleFunc("POST /api/odds/bet-calculator", s.instrument("bet_calculator", s.handleBetCalculator))
	mux.HandleFunc("GET /api/odds/performance", s.instrument("performance", s.handlePerformance))
	mux.HandleFunc("GET /api/odds/market-analysis/{id}", s.instrument("market_analysis", s.handleMarketAnalysis))
	mux.HandleFunc("POST /api/football/sync/{id}", s.instrument("sync", s.handleSync))
	if s.feed != nil {
		mux.Handle("GET /ws/recommendations", s.feed)
	}
}

// Handler returns a mux with every route registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return mux
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)

		metrics.RecordAPIRequest(route, strconv.Itoa(rec.status))
		s.logger.WithFields(logrus.Fields{
			"route":       route,
			"method":      r.Method,
			"status":      rec.status,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Debug("Request served")
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps engine errors onto HTTP statuses.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	var dserr datasource.DataSourceError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Code, errors.New(verr.Message))
	case errors.Is(err, models.ErrInvalidConfiguration), errors.Is(err, models.ErrInvalidID):
		writeError(w, http.StatusBadRequest, "invalid_request", err)
	case errors.Is(err, models.ErrMissingEntity), errors.Is(err, models.ErrNotFound), errors.Is(err, datasource.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, models.ErrInsufficientData):
		writeError(w, http.StatusUnprocessableEntity, "insufficient_data", err)
	case errors.As(err, &dserr):
		writeError(w, http.StatusBadGateway, "upstream_error", err)
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "timeout", err)
	default:
		s.logger.WithError(err).Error("Request failed")
		writeError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

// decode reads a JSON body into dst and validates it.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err)
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", validationMessage(err))
		return false
	}
	return true
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validationMessage(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	if fe.Param() != "" {
		return fmt.Errorf("%s failed on %s=%s", fe.Field(), fe.Tag(), fe.Param())
	}
	return fmt.Errorf("%s failed on %s", fe.Field(), fe.Tag())
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", models.ErrInvalidID, r.PathValue("id"))
	}
	return id, nil
}
