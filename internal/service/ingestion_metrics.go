package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/yourusername/goalline/internal/metrics"
)

// SyncMetrics tracks statistics about a championship sync
type SyncMetrics struct {
	mu               sync.RWMutex
	ChampionshipID   int64         `json:"championship_id"`
	StartTime        time.Time     `json:"start_time"`
	Duration         time.Duration `json:"duration"`
	MatchesFetched   int           `json:"matches_fetched"`
	MatchesWritten   int           `json:"matches_written"`
	TeamsSynced      int           `json:"teams_synced"`
	ValidationErrors int           `json:"validation_errors"`
	Errors           int           `json:"errors"`
}

// NewSyncMetrics creates a new metrics tracker
func NewSyncMetrics(championshipID int64) *SyncMetrics {
	return &SyncMetrics{
		ChampionshipID: championshipID,
		StartTime:      time.Now(),
	}
}

// RecordFetched sets the number of fixtures returned by the provider
func (m *SyncMetrics) RecordFetched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MatchesFetched = n
}

// RecordWritten adds rows written by the store
func (m *SyncMetrics) RecordWritten(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MatchesWritten += n
}

// RecordTeam increments synced team count
func (m *SyncMetrics) RecordTeam() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TeamsSynced++
}

// RecordError increments error count
func (m *SyncMetrics) RecordError(stage string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors++
	metrics.RecordIngestionError(stage)
}

// RecordValidationError increments validation error count
func (m *SyncMetrics) RecordValidationError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ValidationErrors++
	metrics.RecordIngestionError("validation")
}

// Finish stamps the duration and publishes the totals to Prometheus
func (m *SyncMetrics) Finish() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Duration = time.Since(m.StartTime)
	metrics.RecordIngestion("matches", m.MatchesWritten)
	metrics.RecordIngestion("teams", m.TeamsSynced)
	metrics.RecordIngestionDuration(m.Duration)
}

// Failures returns validation plus system errors
func (m *SyncMetrics) Failures() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ValidationErrors + m.Errors
}

// String returns a formatted string representation of metrics
func (m *SyncMetrics) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return fmt.Sprintf(
		"SyncMetrics{Championship=%d, Fetched=%d, Written=%d, Teams=%d, ValidationErrors=%d, Errors=%d, Duration=%v}",
		m.ChampionshipID,
		m.MatchesFetched,
		m.MatchesWritten,
		m.TeamsSynced,
		m.ValidationErrors,
		m.Errors,
		m.Duration,
	)
}
