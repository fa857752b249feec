// Package notify delivers daily recommendations to Telegram.
package notify

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/goalline/internal/config"
	"github.com/yourusername/goalline/internal/logger"
	"github.com/yourusername/goalline/internal/models"
)

const (
	channelName = "telegram"

	// Telegram rejects longer messages
	maxMessageLength = 4096

	// Minimum gap between two messages to the same chat (~30/min limit)
	sendInterval = 2 * time.Second
)

// Sender is the part of tgbotapi.BotAPI the notifier uses
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TeamDirectory resolves team labels
type TeamDirectory interface {
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*models.Team, error)
}

// TelegramNotifier posts each daily recommendation set to a chat
type TelegramNotifier struct {
	sender   Sender
	chatID   int64
	teams    TeamDirectory
	audit    *logger.AuditLogger
	logger   *logrus.Entry
	interval time.Duration
	mu       sync.Mutex
	lastSend time.Time
}

// NewTelegramNotifier connects to the Bot API with the configured token.
func NewTelegramNotifier(cfg config.TelegramConfig, teams TeamDirectory, log *logrus.Logger) (*TelegramNotifier, error) {
	if cfg.BotToken == "" || cfg.ChatID == 0 {
		return nil, models.InvalidConfigf("telegram notifier needs a bot token and chat id")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	bot.Debug = false
	return NewTelegramNotifierWithSender(bot, cfg.ChatID, teams, log), nil
}

// NewTelegramNotifierWithSender builds a notifier around an existing sender. teams may be nil.
func NewTelegramNotifierWithSender(sender Sender, chatID int64, teams TeamDirectory, log *logrus.Logger) *TelegramNotifier {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &TelegramNotifier{
		sender:   sender,
		chatID:   chatID,
		teams:    teams,
		audit:    logger.NewAuditLogger(log),
		logger:   log.WithField("component", "telegram"),
		interval: sendInterval,
	}
}

// Publish formats recs and sends them, split into as many messages as needed.
func (n *TelegramNotifier) Publish(ctx context.Context, recs *models.DailyRecommendations) (err error) {
	if recs == nil {
		return fmt.Errorf("%w: nil recommendations", models.ErrInsufficientData)
	}
	defer func() {
		n.audit.LogNotificationSent(channelName, len(recs.Recommendations), err)
	}()

	labels := n.labels(ctx, recs)
	for _, chunk := range splitMessage(FormatDailyRecommendations(recs, labels), maxMessageLength) {
		if err := n.send(ctx, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (n *TelegramNotifier) send(ctx context.Context, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if wait := n.interval - time.Since(n.lastSend); wait > 0 && !n.lastSend.IsZero() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	_, err := n.sender.Send(msg)
	n.lastSend = time.Now()
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

func (n *TelegramNotifier) labels(ctx context.Context, recs *models.DailyRecommendations) map[int64]string {
	labels := make(map[int64]string)
	if n.teams == nil || len(recs.Recommendations) == 0 {
		return labels
	}

	ids := make([]int64, 0, 2*len(recs.Recommendations))
	for _, r := range recs.Recommendations {
		ids = append(ids, r.Fixture.HomeTeamID, r.Fixture.AwayTeamID)
	}
	teams, err := n.teams.GetByIDs(ctx, ids)
	if err != nil {
		n.logger.WithError(err).Warn("Failed to resolve team names")
		return labels
	}
	for id, t := range teams {
		labels[id] = t.DisplayName()
	}
	return labels
}

// FormatDailyRecommendations renders recs as Telegram HTML. labels maps team IDs to
// display names; unknown teams are shown by ID.
func FormatDailyRecommendations(recs *models.DailyRecommendations, labels map[int64]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⚽ <b>Daily picks %s</b>\n", recs.Date.Format("2006-01-02"))
	fmt.Fprintf(&b, "Bankroll: %.2f\n\n", recs.Bankroll)

	if !recs.HasBets() {
		b.WriteString("No fixture cleared the confidence floor today.")
		return b.String()
	}

	picks := append([]models.Recommendation(nil), recs.Recommendations...)
	sort.SliceStable(picks, func(i, j int) bool {
		return picks[i].Fixture.MatchDate.Before(picks[j].Fixture.MatchDate)
	})

	for i, r := range picks {
		fmt.Fprintf(&b, "%d. <b>%s</b> vs <b>%s</b>", i+1,
			html.EscapeString(teamLabel(labels, r.Fixture.HomeTeamID)),
			html.EscapeString(teamLabel(labels, r.Fixture.AwayTeamID)))
		if r.Fixture.ChampionshipName != "" {
			fmt.Fprintf(&b, " (%s)", html.EscapeString(r.Fixture.ChampionshipName))
		}
		if !r.Fixture.MatchDate.IsZero() {
			fmt.Fprintf(&b, " %s", r.Fixture.MatchDate.Format("15:04"))
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "   %s @ %.2f | confidence %.1f%% | %s risk\n",
			r.Scenario.Outcome, r.Odds, r.Scenario.Confidence*100, r.Scenario.RiskLevel)
		fmt.Fprintf(&b, "   stake %.2f | profit %.2f\n", r.Stake, r.PotentialProfit)
	}

	s := recs.Summary
	fmt.Fprintf(&b, "\nTotal stake: %.2f | expected profit: %.2f | ROI %.1f%%\n",
		s.TotalStake, s.TotalExpectedProfit, s.ROIExpectation)
	fmt.Fprintf(&b, "Portfolio risk: %s", s.RiskAssessment)
	return b.String()
}

func teamLabel(labels map[int64]string, id int64) string {
	if name, ok := labels[id]; ok && name != "" {
		return name
	}
	return fmt.Sprintf("#%d", id)
}

// splitMessage breaks text on line boundaries into chunks of at most limit bytes.
// A single line longer than limit is cut.
func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var cur strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		for len(line) > limit {
			if cur.Len() > 0 {
				chunks = append(chunks, cur.String())
				cur.Reset()
			}
			chunks = append(chunks, line[:limit])
			line = line[limit:]
		}
		if cur.Len()+len(line) > limit {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
		cur.WriteString(line)
	}
	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}
