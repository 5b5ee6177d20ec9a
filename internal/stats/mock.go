package stats

import "sync"

// MockAggregator is a mock implementation of Aggregator for testing.
type MockAggregator struct {
	mu sync.Mutex

	RecomputeUserStatsFunc func(userID string) error
	GetUserStatsFunc       func(userID string) (*UserStats, error)
	LeaderboardFunc        func(limit int) ([]UserStats, error)

	RecomputeUserStatsCalls []string
}

// NewMock creates a new mock aggregator.
func NewMock() *MockAggregator {
	return &MockAggregator{}
}

func (m *MockAggregator) RecomputeUserStats(userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecomputeUserStatsCalls = append(m.RecomputeUserStatsCalls, userID)
	if m.RecomputeUserStatsFunc != nil {
		return m.RecomputeUserStatsFunc(userID)
	}
	return nil
}

func (m *MockAggregator) GetUserStats(userID string) (*UserStats, error) {
	if m.GetUserStatsFunc != nil {
		return m.GetUserStatsFunc(userID)
	}
	return &UserStats{UserID: userID}, nil
}

func (m *MockAggregator) Leaderboard(limit int) ([]UserStats, error) {
	if m.LeaderboardFunc != nil {
		return m.LeaderboardFunc(limit)
	}
	return nil, nil
}
