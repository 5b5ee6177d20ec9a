package notifier

import (
	"github.com/beerdie/engine/internal/session"
	"github.com/beerdie/engine/internal/stats"
)

// Notifier defines a high-level interface for announcing business events.
// This decouples the rest of the application from the specific notification
// provider (e.g., Slack).
type Notifier interface {
	// SendResultNotification announces a finished match.
	SendResultNotification(summary *session.MatchSummary, dryRun bool) error
	// SendLeaderboard posts the career leaderboard.
	SendLeaderboard(board []stats.UserStats, dryRun bool) error
}
