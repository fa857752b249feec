package notify

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/goalline/internal/config"
	"github.com/yourusername/goalline/internal/models"
)

type recordingSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (s *recordingSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if s.err != nil {
		return tgbotapi.Message{}, s.err
	}
	s.sent = append(s.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

type staticTeams map[int64]*models.Team

func (t staticTeams) GetByIDs(_ context.Context, ids []int64) (map[int64]*models.Team, error) {
	out := make(map[int64]*models.Team)
	for _, id := range ids {
		if team, ok := t[id]; ok {
			out[id] = team
		}
	}
	return out, nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func sampleRecommendations() *models.DailyRecommendations {
	kickoff := time.Date(2025, 4, 22, 19, 30, 0, 0, time.UTC)
	return &models.DailyRecommendations{
		Date:     kickoff,
		Bankroll: 1000,
		Recommendations: []models.Recommendation{
			{
				ID:      uuid.New(),
				Fixture: models.Fixture{ID: 100, HomeTeamID: 1, AwayTeamID: 2, MatchDate: kickoff, ChampionshipName: "Brasileirão"},
				Scenario: models.BettingScenario{
					Outcome:    models.OutcomeHomeOrDraw,
					Confidence: 0.91,
					RiskLevel:  models.RiskLow,
				},
				Odds:            1.25,
				Stake:           50,
				PotentialProfit: 12.5,
			},
		},
		Summary: models.PortfolioSummary{
			TotalBets:           1,
			TotalStake:          50,
			TotalExpectedProfit: 12.5,
			ROIExpectation:      25,
			RiskAssessment:      models.PortfolioRiskLow,
		},
	}
}

func TestFormatDailyRecommendations(t *testing.T) {
	text := FormatDailyRecommendations(sampleRecommendations(), map[int64]string{1: "Flamengo", 2: "Grêmio & Co"})

	assert.Contains(t, text, "Daily picks 2025-04-22")
	assert.Contains(t, text, "<b>Flamengo</b> vs <b>Grêmio &amp; Co</b> (Brasileirão) 19:30")
	assert.Contains(t, text, "home_or_draw @ 1.25 | confidence 91.0% | Low risk")
	assert.Contains(t, text, "stake 50.00 | profit 12.50")
	assert.Contains(t, text, "Portfolio risk: Low")

	text = FormatDailyRecommendations(sampleRecommendations(), nil)
	assert.Contains(t, text, "<b>#1</b> vs <b>#2</b>")

	empty := &models.DailyRecommendations{Date: time.Now(), Bankroll: 1000}
	assert.Contains(t, FormatDailyRecommendations(empty, nil), "No fixture cleared")
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitMessage("short", 10))

	chunks := splitMessage("aaaa\nbbbb\ncccc\n", 10)
	assert.Equal(t, []string{"aaaa\nbbbb\n", "cccc\n"}, chunks)

	chunks = splitMessage(strings.Repeat("x", 25), 10)
	require.Len(t, chunks, 3)
	assert.Equal(t, strings.Repeat("x", 10), chunks[0])
	assert.Equal(t, strings.Repeat("x", 5), chunks[2])
}

func TestPublish(t *testing.T) {
	sender := &recordingSender{}
	n := NewTelegramNotifierWithSender(sender, 42, staticTeams{1: {ID: 1, Name: "Clube de Regatas do Flamengo", PopularName: "Flamengo"}}, quietLogger())

	require.NoError(t, n.Publish(context.Background(), sampleRecommendations()))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(42), sender.sent[0].ChatID)
	assert.Equal(t, tgbotapi.ModeHTML, sender.sent[0].ParseMode)
	assert.Contains(t, sender.sent[0].Text, "<b>Flamengo</b> vs <b>#2</b>")

	assert.Error(t, n.Publish(context.Background(), nil))
}

func TestPublish_SendError(t *testing.T) {
	n := NewTelegramNotifierWithSender(&recordingSender{err: errors.New("429 too many requests")}, 42, nil, quietLogger())
	err := n.Publish(context.Background(), sampleRecommendations())
	assert.ErrorContains(t, err, "429")
}

func TestPublish_RespectsInterval(t *testing.T) {
	n := NewTelegramNotifierWithSender(&recordingSender{}, 42, nil, quietLogger())
	n.interval = time.Hour
	require.NoError(t, n.Publish(context.Background(), sampleRecommendations()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, n.Publish(ctx, sampleRecommendations()), context.Canceled)
}

func TestNewTelegramNotifier_RequiresCredentials(t *testing.T) {
	_, err := NewTelegramNotifier(config.TelegramConfig{Enabled: true}, nil, quietLogger())
	assert.ErrorIs(t, err, models.ErrInvalidConfiguration)
}
