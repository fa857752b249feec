// Package metrics defines scenario-specific metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Scenario counter vectors
var (
	ScenariosFoundTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scenarios_found_total",
		Help:      "Total number of qualifying scenarios by outcome and risk level",
	}, []string{"outcome", "risk_level"})
)

// Scenario histogram vectors
var (
	ScenarioConfidence = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "scenario_confidence",
		Help:      "Confidence of qualifying scenarios",
		Buckets:   []float64{0.8, 0.82, 0.84, 0.86, 0.88, 0.9, 0.95, 1.0},
	}, []string{"outcome"})
)

// RecordScenario records a qualifying scenario.
func RecordScenario(outcome, riskLevel string) {
	ScenariosFoundTotal.WithLabelValues(outcome, riskLevel).Inc()
}

// RecordScenarioConfidence records the confidence of a qualifying scenario.
func RecordScenarioConfidence(outcome string, confidence float64) {
	ScenarioConfidence.WithLabelValues(outcome).Observe(confidence)
}
