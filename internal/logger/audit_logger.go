// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogRecommendationIssued records a sized pick handed to a consumer.
func (al *AuditLogger) LogRecommendationIssued(recommendationID string, fixtureID int64, outcome string, confidence, stake, odds float64, issuedAt time.Time) {
	al.WithFields(logrus.Fields{
		"recommendation_id": recommendationID,
		"fixture_id":        fixtureID,
		"outcome":           outcome,
		"confidence":        confidence,
		"stake":             stake,
		"odds":              odds,
		"timestamp":         issuedAt.Unix(),
	}).Info("Recommendation issued")
}

// LogPredictionSettled records the result of a tracked prediction.
func (al *AuditLogger) LogPredictionSettled(predictionID, outcome, actualResult string, won bool, profitLoss float64) {
	al.WithFields(logrus.Fields{
		"prediction_id": predictionID,
		"outcome":       outcome,
		"actual_result": actualResult,
		"won":           won,
		"profit_loss":   profitLoss,
	}).Info("Prediction settled")
}

// LogNotificationSent records a delivery to an outbound channel.
func (al *AuditLogger) LogNotificationSent(channel string, recommendations int, err error) {
	entry := al.WithFields(logrus.Fields{
		"channel":         channel,
		"recommendations": recommendations,
	})
	if err != nil {
		entry.WithError(err).Warn("Notification delivery failed")
		return
	}
	entry.Info("Notification delivered")
}
