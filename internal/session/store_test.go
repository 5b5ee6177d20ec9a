package session_test

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beerdie/engine/internal/database"
	"github.com/beerdie/engine/internal/game"
	"github.com/beerdie/engine/internal/session"
)

// setupTestDB creates a temporary in-memory SQLite database for testing.
func setupTestDB(t *testing.T) (session.Store, *sql.DB, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	store := session.New(db)
	return store, db, dbTeardown
}

func newSession(id, code string) *game.MatchSession {
	s := &game.MatchSession{
		ID:       id,
		RoomCode: code,
		HostID:   "host1",
		Status:   game.StatusActive,
		Setup: game.MatchSetup{
			Title:          "Test Match",
			GameScoreLimit: 11,
			SinkPoints:     3,
			WinByTwo:       true,
		},
		Winner: game.WinnerNone,
	}
	return s
}

func TestInsertAndGet(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	sess := newSession("m1", "ABCDEF")
	sess.Stats[0].Score = 4
	require.NoError(t, store.Insert(sess))

	got, err := store.Get("m1")
	require.NoError(t, err)
	assert.Equal(t, "ABCDEF", got.RoomCode)
	assert.Equal(t, "host1", got.HostID)
	assert.Equal(t, 4, got.Stats[0].Score)
	assert.Equal(t, game.WinnerNone, got.Winner)

	_, err = store.Get("missing")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestUpdateReplacesWholeRecord(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	sess := newSession("m1", "ABCDEF")
	require.NoError(t, store.Insert(sess))

	sess.Stats[1].Score = 7
	sess.TeamPenalties[0] = 2
	sess.AdjustmentHistory = append(sess.AdjustmentHistory, game.Adjustment{Team: 1, Amount: -1, Timestamp: 42})
	sess.ManualAdjustments[0] = -1
	require.NoError(t, store.Update(sess))

	got, err := store.Get("m1")
	require.NoError(t, err)
	assert.Equal(t, 7, got.Stats[1].Score)
	assert.Equal(t, 2, got.TeamPenalties[0])
	assert.Equal(t, -1, got.ManualAdjustments[0])
	require.Len(t, got.AdjustmentHistory, 1)
	assert.Equal(t, int64(42), got.AdjustmentHistory[0].Timestamp)

	err = store.Update(newSession("ghost", "GHOSTX"))
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestFindByRoomCode(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	require.NoError(t, store.Insert(newSession("m1", "AAAAAA")))

	finished := newSession("m2", "BBBBBB")
	finished.Status = game.StatusFinished
	require.NoError(t, store.Insert(finished))

	got, err := store.FindByRoomCode("AAAAAA", game.StatusActive)
	require.NoError(t, err)
	assert.Equal(t, "m1", got.ID)

	_, err = store.FindByRoomCode("BBBBBB", game.StatusActive)
	assert.ErrorIs(t, err, session.ErrNotFound)

	got, err = store.FindByRoomCode("BBBBBB", "")
	require.NoError(t, err)
	assert.Equal(t, "m2", got.ID)
}

func TestClaimSlot(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	require.NoError(t, store.Insert(newSession("m1", "AAAAAA")))

	sess, err := store.ClaimSlot("m1", 2, "userA", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "userA", sess.Slots[1])
	assert.Equal(t, "Alice", sess.Setup.PlayerNames[1])
	assert.Equal(t, "Alice", sess.Stats[1].Name)
	assert.Equal(t, []string{"userA"}, sess.Participants)

	t.Run("same seat again is a no-op success", func(t *testing.T) {
		sess, err := store.ClaimSlot("m1", 2, "userA", "Alice")
		require.NoError(t, err)
		assert.Equal(t, []string{"userA"}, sess.Participants)
	})

	t.Run("occupied seat fails", func(t *testing.T) {
		_, err := store.ClaimSlot("m1", 2, "userB", "Bob")
		assert.ErrorIs(t, err, session.ErrSlotTaken)
	})

	t.Run("second seat for the same user fails", func(t *testing.T) {
		_, err := store.ClaimSlot("m1", 3, "userA", "Alice")
		assert.ErrorIs(t, err, session.ErrAlreadyAssigned)
	})

	t.Run("claimed name stays when seat holder renames", func(t *testing.T) {
		got, err := store.Get("m1")
		require.NoError(t, err)
		assert.Equal(t, "Alice", got.Stats[1].Name)
	})

	t.Run("finished match cannot be claimed", func(t *testing.T) {
		_, err := store.SetFinished("m1", game.WinnerTie)
		require.NoError(t, err)
		_, err = store.ClaimSlot("m1", 4, "userC", "Carol")
		assert.ErrorIs(t, err, session.ErrMatchFinished)
	})
}

// A host-entered name on the stat line survives the seat being claimed;
// only the setup name takes the claimer's display name.
func TestClaimSlotKeepsSeededStatName(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	seeded := newSession("m9", "ZZZZZZ")
	seeded.Setup.PlayerNames[1] = "Lefty"
	seeded.Stats[1].Name = "Lefty"
	require.NoError(t, store.Insert(seeded))

	sess, err := store.ClaimSlot("m9", 2, "userA", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "Lefty", sess.Stats[1].Name)
	assert.Equal(t, "Alice", sess.Setup.PlayerNames[1])

	got, err := store.Get("m9")
	require.NoError(t, err)
	assert.Equal(t, "Lefty", got.Stats[1].Name)
}

func TestClaimSlot_ConditionalWriteBlocksStaleClaims(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()

	require.NoError(t, store.Insert(newSession("m1", "AAAAAA")))

	// Simulate a second client that already won the seat behind our back,
	// without going through this store instance.
	_, err := db.Exec("UPDATE sessions SET slot2 = 'userB' WHERE id = 'm1'")
	require.NoError(t, err)

	_, err = store.ClaimSlot("m1", 2, "userA", "Alice")
	assert.ErrorIs(t, err, session.ErrSlotTaken)
}

func TestSubscribe(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	sess := newSession("m1", "AAAAAA")
	require.NoError(t, store.Insert(sess))

	var received []*game.MatchSession
	unsubscribe := store.Subscribe("m1", func(s *game.MatchSession) {
		received = append(received, s)
	})

	sess.Stats[0].Score = 2
	require.NoError(t, store.Update(sess))
	require.Len(t, received, 1)
	assert.Equal(t, 2, received[0].Stats[0].Score)

	// Subscriber copies are independent of later writes.
	sess.Stats[0].Score = 9
	require.NoError(t, store.Update(sess))
	assert.Equal(t, 2, received[0].Stats[0].Score)
	require.Len(t, received, 2)

	unsubscribe()
	require.NoError(t, store.Update(sess))
	assert.Len(t, received, 2, "no notifications after unsubscribe")

	// Writes to other sessions never reach this subscriber.
	other := newSession("m2", "CCCCCC")
	store.Subscribe("m1", func(s *game.MatchSession) {
		t.Errorf("unexpected notification for session %s", s.ID)
	})
	require.NoError(t, store.Insert(other))
}

func TestSummaries(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	sum := &session.MatchSummary{
		ID:         "s1",
		SessionID:  "m1",
		RoomCode:   "AAAAAA",
		Title:      "Finals",
		TeamNames:  [2]string{"Reds", "Blues"},
		TeamScores: [2]int{11, 9},
		Winner:     1,
		FinishedAt: 100,
		Players: []session.SummaryPlayer{
			{Slot: 1, UserID: "u1", Name: "Alice", Team: 1, Won: true, Stats: game.PlayerStats{Throws: 10, Hits: 8, Score: 6}, Rating: 81.5},
			{Slot: 3, UserID: "u2", Name: "Bob", Team: 2, Stats: game.PlayerStats{Throws: 12, Hits: 7, Score: 5}, Rating: 60.0},
		},
	}
	require.NoError(t, store.InsertSummary(sum))

	got, err := store.GetSummaries(10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, [2]int{11, 9}, got[0].TeamScores)
	require.Len(t, got[0].Players, 2)
	assert.Equal(t, "Alice", got[0].Players[0].Name)
	assert.True(t, got[0].Players[0].Won)
}
