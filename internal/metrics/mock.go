package metrics

import "sync"

// MockMetrics counts calls in memory for tests.
type MockMetrics struct {
	mu sync.Mutex

	MatchesStarted  int
	MatchesFinished int
	PlaysSubmitted  int
	PlaysRejected   int
	SlotClaims      int
	ClaimConflicts  int
	NotifSent       int
	NotifFailed     int
	FinishDurations []float64
	StartupTimes    []float64
}

// NewMock creates a new mock metrics recorder.
func NewMock() *MockMetrics {
	return &MockMetrics{}
}

func (m *MockMetrics) IncMatchesStarted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MatchesStarted++
}

func (m *MockMetrics) IncMatchesFinished() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MatchesFinished++
}

func (m *MockMetrics) ObserveFinishDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FinishDurations = append(m.FinishDurations, seconds)
}

func (m *MockMetrics) IncPlaysSubmitted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PlaysSubmitted++
}

func (m *MockMetrics) IncPlaysRejected() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PlaysRejected++
}

func (m *MockMetrics) IncSlotClaims() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SlotClaims++
}

func (m *MockMetrics) IncClaimConflicts() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClaimConflicts++
}

func (m *MockMetrics) IncNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotifSent++
}

func (m *MockMetrics) IncNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotifFailed++
}

func (m *MockMetrics) SetStartupTime(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartupTimes = append(m.StartupTimes, seconds)
}
