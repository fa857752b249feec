// Package metrics defines backtest and ingestion metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	BacktestRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backtest_runs_total",
		Help:      "Total number of backtest runs by status",
	}, []string{"status"})

	BacktestROI = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "backtest_roi_percent",
		Help:      "ROI of the latest backtest per championship",
	}, []string{"championship_id"})

	BacktestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backtest_duration_seconds",
		Help:      "Duration of backtest runs in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	})

	IngestionRecordsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingestion_records_total",
		Help:      "Total number of records upserted by kind",
	}, []string{"kind"})

	IngestionErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingestion_errors_total",
		Help:      "Total number of ingestion failures by stage",
	}, []string{"stage"})

	IngestionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ingestion_duration_seconds",
		Help:      "Duration of championship syncs in seconds",
		Buckets:   []float64{0.5, 1, 5, 10, 30, 60, 120},
	})
)

// RecordBacktestRun records a backtest run.
func RecordBacktestRun(status string, elapsed time.Duration) {
	BacktestRunsTotal.WithLabelValues(status).Inc()
	BacktestDuration.Observe(elapsed.Seconds())
}

// UpdateBacktestROI sets the ROI gauge for a championship.
func UpdateBacktestROI(championshipID string, roi float64) {
	BacktestROI.WithLabelValues(championshipID).Set(roi)
}

// RecordIngestion records upserted records of a kind.
func RecordIngestion(kind string, n int) {
	IngestionRecordsTotal.WithLabelValues(kind).Add(float64(n))
}

// RecordIngestionError records a failed ingestion stage.
func RecordIngestionError(stage string) {
	IngestionErrorsTotal.WithLabelValues(stage).Inc()
}

// RecordIngestionDuration records a sync duration.
func RecordIngestionDuration(elapsed time.Duration) {
	IngestionDuration.Observe(elapsed.Seconds())
}
