// Package metrics provides the centralized Prometheus metrics registry.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "goalline"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	FixturesScannedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fixtures_scanned_total",
		Help:      "Total number of fixtures evaluated by the scenario scanner",
	})
	FixturesSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fixtures_skipped_total",
		Help:      "Total number of fixtures skipped because a team profile was missing",
	})
	RecommendationsIssuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recommendations_issued_total",
		Help:      "Total number of sized recommendations issued",
	})
	ProfileCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "profile_cache_hits_total",
		Help:      "Total number of team profile cache hits",
	})
	ProfileCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "profile_cache_misses_total",
		Help:      "Total number of team profile cache misses",
	})
	APIRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "Total number of API requests by route and status code",
	}, []string{"route", "status"})
)

// Gauge metrics
var (
	CurrentBankroll = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "current_bankroll",
		Help:      "Bankroll used for the latest allocation",
	})
	DailyStake = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "daily_stake",
		Help:      "Total stake of the latest daily recommendations",
	})
	ExpectedROI = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "expected_roi_percent",
		Help:      "Expected ROI of the latest daily recommendations",
	})
	FeedSubscribers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "feed_subscribers",
		Help:      "Number of connected recommendation feed clients",
	})
)

// Histogram metrics
var (
	ScanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "scan_duration_seconds",
		Help:      "Duration of batch fixture scans in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	ProfileBuildDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "profile_build_duration_seconds",
		Help:      "Duration of team profile computation in seconds",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(FixturesScannedTotal)
		registry.MustRegister(FixturesSkippedTotal)
		registry.MustRegister(RecommendationsIssuedTotal)
		registry.MustRegister(ProfileCacheHitsTotal)
		registry.MustRegister(ProfileCacheMissesTotal)
		registry.MustRegister(APIRequestsTotal)

		registry.MustRegister(CurrentBankroll)
		registry.MustRegister(DailyStake)
		registry.MustRegister(ExpectedROI)
		registry.MustRegister(FeedSubscribers)

		registry.MustRegister(ScanDuration)
		registry.MustRegister(ProfileBuildDuration)

		registry.MustRegister(ScenariosFoundTotal)
		registry.MustRegister(ScenarioConfidence)

		registry.MustRegister(BacktestRunsTotal)
		registry.MustRegister(BacktestROI)
		registry.MustRegister(BacktestDuration)

		registry.MustRegister(IngestionRecordsTotal)
		registry.MustRegister(IngestionErrorsTotal)
		registry.MustRegister(IngestionDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordFixtureScan records a batch scan of n fixtures.
func RecordFixtureScan(n int, elapsed time.Duration) {
	FixturesScannedTotal.Add(float64(n))
	ScanDuration.Observe(elapsed.Seconds())
}

// RecordProfileCache records a profile cache lookup.
func RecordProfileCache(hit bool) {
	if hit {
		ProfileCacheHitsTotal.Inc()
		return
	}
	ProfileCacheMissesTotal.Inc()
}

// RecordProfileBuild records the time spent computing one profile.
func RecordProfileBuild(elapsed time.Duration) {
	ProfileBuildDuration.Observe(elapsed.Seconds())
}

// RecordAllocation updates the allocation gauges for a day.
func RecordAllocation(bankroll, totalStake, roi float64, bets int) {
	CurrentBankroll.Set(bankroll)
	DailyStake.Set(totalStake)
	ExpectedROI.Set(roi)
	RecommendationsIssuedTotal.Add(float64(bets))
}

// RecordAPIRequest records a served API request.
func RecordAPIRequest(route, status string) {
	APIRequestsTotal.WithLabelValues(route, status).Inc()
}

// UpdateFeedSubscribers sets the connected feed client count.
func UpdateFeedSubscribers(n int) {
	FeedSubscribers.Set(float64(n))
}
