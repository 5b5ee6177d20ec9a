package session

import (
	"sync"

	"github.com/beerdie/engine/internal/game"
)

// MockStore is a hand-rolled in-memory implementation of Store for testing.
// It is safe for concurrent use and records calls for assertions.
type MockStore struct {
	mu sync.Mutex

	sessions  map[string]*game.MatchSession
	summaries []*MatchSummary
	subs      map[string]map[int]func(*game.MatchSession)
	nextSub   int

	// Spies: set these to override the default in-memory behavior.
	InsertFunc        func(sess *game.MatchSession) error
	UpdateFunc        func(sess *game.MatchSession) error
	DeleteFunc        func(id string) error
	SetFinishedFunc   func(id string, winner int) (*game.MatchSession, error)
	InsertSummaryFunc func(summary *MatchSummary) error

	// Call records
	InsertCalls        []*game.MatchSession
	UpdateCalls        []*game.MatchSession
	DeleteCalls        []string
	ClaimSlotCalls     []ClaimSlotCall
	InsertSummaryCalls []*MatchSummary
}

// ClaimSlotCall holds the arguments of one ClaimSlot invocation.
type ClaimSlotCall struct {
	ID          string
	Slot        int
	UserID      string
	DisplayName string
}

// NewMock creates a new in-memory mock store.
func NewMock() *MockStore {
	return &MockStore{
		sessions: make(map[string]*game.MatchSession),
		subs:     make(map[string]map[int]func(*game.MatchSession)),
	}
}

func (m *MockStore) Insert(sess *game.MatchSession) error {
	m.mu.Lock()
	m.InsertCalls = append(m.InsertCalls, sess.Clone())
	if m.InsertFunc != nil {
		m.mu.Unlock()
		return m.InsertFunc(sess)
	}
	m.sessions[sess.ID] = sess.Clone()
	m.mu.Unlock()
	m.notify(sess)
	return nil
}

func (m *MockStore) Update(sess *game.MatchSession) error {
	m.mu.Lock()
	m.UpdateCalls = append(m.UpdateCalls, sess.Clone())
	if m.UpdateFunc != nil {
		m.mu.Unlock()
		return m.UpdateFunc(sess)
	}
	if _, ok := m.sessions[sess.ID]; !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	m.sessions[sess.ID] = sess.Clone()
	m.mu.Unlock()
	m.notify(sess)
	return nil
}

func (m *MockStore) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls = append(m.DeleteCalls, id)
	if m.DeleteFunc != nil {
		return m.DeleteFunc(id)
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockStore) Get(id string) (*game.MatchSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sess.Clone(), nil
}

func (m *MockStore) FindByRoomCode(code string, statusFilter game.MatchStatus) (*game.MatchSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sess := range m.sessions {
		if sess.RoomCode == code && (statusFilter == "" || sess.Status == statusFilter) {
			return sess.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MockStore) ClaimSlot(id string, slot int, userID, displayName string) (*game.MatchSession, error) {
	m.mu.Lock()
	m.ClaimSlotCalls = append(m.ClaimSlotCalls, ClaimSlotCall{ID: id, Slot: slot, UserID: userID, DisplayName: displayName})
	sess, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return nil, ErrNotFound
	}
	if sess.Status == game.StatusFinished {
		m.mu.Unlock()
		return nil, ErrMatchFinished
	}
	current := sess.Slots[slot-1]
	if current != "" && current != userID {
		m.mu.Unlock()
		return nil, ErrSlotTaken
	}
	if other := sess.SlotOf(userID); other != 0 && other != slot {
		m.mu.Unlock()
		return nil, ErrAlreadyAssigned
	}
	if current == userID {
		clone := sess.Clone()
		m.mu.Unlock()
		return clone, nil
	}
	sess.Slots[slot-1] = userID
	if !sess.HasParticipant(userID) {
		sess.Participants = append(sess.Participants, userID)
	}
	sess.Setup.PlayerNames[slot-1] = displayName
	if sess.Stats[slot-1].Name == "" {
		sess.Stats[slot-1].Name = displayName
	}
	clone := sess.Clone()
	m.mu.Unlock()
	m.notify(clone)
	return clone, nil
}

func (m *MockStore) SetFinished(id string, winner int) (*game.MatchSession, error) {
	m.mu.Lock()
	if m.SetFinishedFunc != nil {
		m.mu.Unlock()
		return m.SetFinishedFunc(id, winner)
	}
	sess, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return nil, ErrNotFound
	}
	sess.Status = game.StatusFinished
	sess.Winner = winner
	clone := sess.Clone()
	m.mu.Unlock()
	m.notify(clone)
	return clone, nil
}

func (m *MockStore) Subscribe(id string, onChange func(*game.MatchSession)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.subs[id] == nil {
		m.subs[id] = make(map[int]func(*game.MatchSession))
	}
	m.nextSub++
	token := m.nextSub
	m.subs[id][token] = onChange
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs[id], token)
	}
}

func (m *MockStore) notify(sess *game.MatchSession) {
	m.mu.Lock()
	callbacks := make([]func(*game.MatchSession), 0, len(m.subs[sess.ID]))
	for _, cb := range m.subs[sess.ID] {
		callbacks = append(callbacks, cb)
	}
	m.mu.Unlock()
	for _, cb := range callbacks {
		cb(sess.Clone())
	}
}

func (m *MockStore) InsertSummary(summary *MatchSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InsertSummaryCalls = append(m.InsertSummaryCalls, summary)
	if m.InsertSummaryFunc != nil {
		return m.InsertSummaryFunc(summary)
	}
	m.summaries = append(m.summaries, summary)
	return nil
}

func (m *MockStore) GetSummaries(limit int) ([]*MatchSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 || limit > len(m.summaries) {
		limit = len(m.summaries)
	}
	out := make([]*MatchSummary, limit)
	copy(out, m.summaries)
	return out, nil
}
