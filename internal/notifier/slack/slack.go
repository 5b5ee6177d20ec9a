package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"

	"github.com/beerdie/engine/internal/game"
	"github.com/beerdie/engine/internal/metrics"
	"github.com/beerdie/engine/internal/notifier"
	"github.com/beerdie/engine/internal/session"
	"github.com/beerdie/engine/internal/stats"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) error {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		s.metrics.IncNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return nil
}

// SendResultNotification announces a finished match with the final line for
// every seated player.
func (s *Notifier) SendResultNotification(summary *session.MatchSummary, dryRun bool) error {
	return s.sendMessage(s.formatResultNotification(summary), dryRun)
}

// SendLeaderboard posts the career leaderboard.
func (s *Notifier) SendLeaderboard(board []stats.UserStats, dryRun bool) error {
	return s.sendMessage(s.formatLeaderboard(board), dryRun)
}

func (s *Notifier) formatResultNotification(summary *session.MatchSummary) slack.Message {
	headline := fmt.Sprintf(":game_die: *%s* is over!", orDefault(summary.Title, "A match"))

	var resultLine string
	switch summary.Winner {
	case game.WinnerTie:
		resultLine = fmt.Sprintf("*%s* %d : %d *%s* — a tie!",
			summary.TeamNames[0], summary.TeamScores[0], summary.TeamScores[1], summary.TeamNames[1])
	case 1:
		resultLine = fmt.Sprintf(":trophy: *%s* beat *%s* %d : %d",
			summary.TeamNames[0], summary.TeamNames[1], summary.TeamScores[0], summary.TeamScores[1])
	default:
		resultLine = fmt.Sprintf(":trophy: *%s* beat *%s* %d : %d",
			summary.TeamNames[1], summary.TeamNames[0], summary.TeamScores[1], summary.TeamScores[0])
	}

	playerLines := ""
	var topPlayer *session.SummaryPlayer
	for i := range summary.Players {
		p := &summary.Players[i]
		playerLines += fmt.Sprintf("\n• *%s* — %d pts, %d/%d hits, rating %.1f",
			p.Name, p.Stats.Score, p.Stats.Hits, p.Stats.Throws, p.Rating)
		if topPlayer == nil || p.Rating > topPlayer.Rating {
			topPlayer = p
		}
	}
	if topPlayer != nil {
		playerLines += fmt.Sprintf("\n:star: Player of the match: *%s* (%.1f)", topPlayer.Name, topPlayer.Rating)
	}

	blocks := []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, headline, false, false), nil, nil),
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, resultLine+playerLines, false, false), nil, nil),
	}
	if summary.Arena != "" {
		blocks = append(blocks, slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("Played at %s | room %s", summary.Arena, summary.RoomCode), false, false)))
	}

	msg := slack.NewBlockMessage(blocks...)
	return msg
}

func (s *Notifier) formatLeaderboard(board []stats.UserStats) slack.Message {
	text := "*:beer: Career Leaderboard*"
	for i, st := range board {
		name := st.DisplayName
		if name == "" {
			name = st.UserID
		}
		text += fmt.Sprintf("\n%d. *%s* — %d wins / %d matches (%.0f%%), avg rating %.1f",
			i+1, name, st.MatchesWon, st.MatchesPlayed, st.WinPercentage, st.AvgRating)
	}
	if len(board) == 0 {
		text += "\nNo finished matches yet."
	}

	return slack.NewBlockMessage(
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil),
	)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
