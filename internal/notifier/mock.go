package notifier

import (
	"sync"

	"github.com/beerdie/engine/internal/session"
	"github.com/beerdie/engine/internal/stats"
)

// MockNotifier records notification calls for tests.
type MockNotifier struct {
	mu sync.Mutex

	SendResultNotificationFunc func(summary *session.MatchSummary, dryRun bool) error
	SendLeaderboardFunc        func(board []stats.UserStats, dryRun bool) error

	SendResultNotificationCalls []*session.MatchSummary
	SendLeaderboardCalls        [][]stats.UserStats
}

// NewMock creates a new mock notifier.
func NewMock() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) SendResultNotification(summary *session.MatchSummary, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendResultNotificationCalls = append(m.SendResultNotificationCalls, summary)
	if m.SendResultNotificationFunc != nil {
		return m.SendResultNotificationFunc(summary, dryRun)
	}
	return nil
}

func (m *MockNotifier) SendLeaderboard(board []stats.UserStats, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendLeaderboardCalls = append(m.SendLeaderboardCalls, board)
	if m.SendLeaderboardFunc != nil {
		return m.SendLeaderboardFunc(board, dryRun)
	}
	return nil
}
