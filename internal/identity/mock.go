package identity

import "sync"

// MockResolver is an in-memory Resolver for testing.
type MockResolver struct {
	mu    sync.Mutex
	Names map[string]string

	GetDisplayNameFunc func(userID string) (string, error)

	GetDisplayNameCalls []string
}

// NewMock creates a new mock resolver.
func NewMock() *MockResolver {
	return &MockResolver{Names: make(map[string]string)}
}

func (m *MockResolver) GetDisplayName(userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetDisplayNameCalls = append(m.GetDisplayNameCalls, userID)
	if m.GetDisplayNameFunc != nil {
		return m.GetDisplayNameFunc(userID)
	}
	if name, ok := m.Names[userID]; ok {
		return name, nil
	}
	return GuestName(userID), nil
}

func (m *MockResolver) UpsertUser(userID, displayName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Names[userID] = displayName
	return nil
}
