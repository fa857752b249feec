package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
	assert.Same(t, registry, InitRegistry())
}

func TestRecordFixtureScan(t *testing.T) {
	InitRegistry()
	before := testutil.ToFloat64(FixturesScannedTotal)

	RecordFixtureScan(12, 40*time.Millisecond)

	assert.Equal(t, before+12, testutil.ToFloat64(FixturesScannedTotal))
}

func TestRecordProfileCache(t *testing.T) {
	InitRegistry()
	hits := testutil.ToFloat64(ProfileCacheHitsTotal)
	misses := testutil.ToFloat64(ProfileCacheMissesTotal)

	RecordProfileCache(true)
	RecordProfileCache(false)
	RecordProfileCache(false)

	assert.Equal(t, hits+1, testutil.ToFloat64(ProfileCacheHitsTotal))
	assert.Equal(t, misses+2, testutil.ToFloat64(ProfileCacheMissesTotal))
}

func TestRecordAllocation(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name     string
		bankroll float64
		stake    float64
		roi      float64
		bets     int
	}{
		{name: "three bets", bankroll: 1000, stake: 150, roi: 8.2, bets: 3},
		{name: "no bets", bankroll: 500, stake: 0, roi: 0, bets: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordAllocation(tt.bankroll, tt.stake, tt.roi, tt.bets)
			assert.Equal(t, tt.bankroll, testutil.ToFloat64(CurrentBankroll))
			assert.Equal(t, tt.stake, testutil.ToFloat64(DailyStake))
			assert.Equal(t, tt.roi, testutil.ToFloat64(ExpectedROI))
		})
	}
}

func TestRecordScenario(t *testing.T) {
	InitRegistry()
	before := testutil.ToFloat64(ScenariosFoundTotal.WithLabelValues("home_win", "Low"))

	assert.NotPanics(t, func() {
		RecordScenario("home_win", "Low")
		RecordScenarioConfidence("home_win", 0.86)
	})
	assert.Equal(t, before+1, testutil.ToFloat64(ScenariosFoundTotal.WithLabelValues("home_win", "Low")))
}

func TestBacktestAndIngestionMetrics(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordBacktestRun("success", time.Second)
		UpdateBacktestROI("10", 4.5)
		RecordIngestion("match", 20)
		RecordIngestionError("fetch")
		RecordIngestionDuration(2 * time.Second)
	})
	assert.Equal(t, 4.5, testutil.ToFloat64(BacktestROI.WithLabelValues("10")))
}

func TestHandler(t *testing.T) {
	InitRegistry()
	RecordAPIRequest("/health", "200")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "goalline_api_requests_total"))
}
