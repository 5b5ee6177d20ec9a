package engine_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beerdie/engine/internal/engine"
	"github.com/beerdie/engine/internal/game"
	"github.com/beerdie/engine/internal/identity"
	"github.com/beerdie/engine/internal/metrics"
	"github.com/beerdie/engine/internal/notifier"
	"github.com/beerdie/engine/internal/pubsub"
	"github.com/beerdie/engine/internal/session"
)

type fixture struct {
	store    *session.MockStore
	identity *identity.MockResolver
	pubsub   *pubsub.MockPubSubClient
	notifier *notifier.MockNotifier
	metrics  *metrics.MockMetrics
	engine   *engine.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    session.NewMock(),
		identity: identity.NewMock(),
		pubsub:   pubsub.NewMock("test-project"),
		notifier: notifier.NewMock(),
		metrics:  metrics.NewMock(),
	}
	f.engine = engine.New(f.store, f.identity, f.pubsub, f.notifier, f.metrics)
	return f
}

func testSetup() game.MatchSetup {
	return game.MatchSetup{
		Title:          "Friday Night",
		Arena:          "The Garage",
		PlayerNames:    [4]string{"P1", "P2", "P3", "P4"},
		TeamNames:      [2]string{"Reds", "Blues"},
		GameScoreLimit: 11,
		SinkPoints:     3,
		WinByTwo:       true,
	}
}

func TestCreateMatch(t *testing.T) {
	f := newFixture(t)

	sess, err := f.engine.CreateMatch(testSetup(), "host1")
	require.NoError(t, err)

	assert.NotEmpty(t, sess.ID)
	assert.Len(t, sess.RoomCode, 6)
	assert.Equal(t, game.StatusActive, sess.Status)
	assert.Equal(t, "host1", sess.HostID)
	assert.Equal(t, game.WinnerNone, sess.Winner)
	assert.Equal(t, []string{"host1"}, sess.Participants)
	assert.NotZero(t, sess.MatchStartTime)
	for i, st := range sess.Stats {
		assert.Equal(t, sess.Setup.PlayerNames[i], st.Name)
		assert.Zero(t, st.Throws)
	}
	assert.Equal(t, 1, f.metrics.MatchesStarted)
	require.Len(t, f.store.InsertCalls, 1)

	t.Run("guest host has no participants", func(t *testing.T) {
		guest, err := f.engine.CreateMatch(testSetup(), "")
		require.NoError(t, err)
		assert.Empty(t, guest.HostID)
		assert.Empty(t, guest.Participants)
	})

	t.Run("setup limits are clamped", func(t *testing.T) {
		setup := testSetup()
		setup.GameScoreLimit = 500
		setup.SinkPoints = 0
		created, err := f.engine.CreateMatch(setup, "host1")
		require.NoError(t, err)
		assert.Equal(t, 99, created.Setup.GameScoreLimit)
		assert.Equal(t, 1, created.Setup.SinkPoints)
	})
}

func TestFindByRoomCode(t *testing.T) {
	f := newFixture(t)
	created, err := f.engine.CreateMatch(testSetup(), "host1")
	require.NoError(t, err)

	found, err := f.engine.FindByRoomCode(created.RoomCode)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = f.engine.FindByRoomCode("ZZZZZZ")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestClaimSlot(t *testing.T) {
	f := newFixture(t)
	f.identity.Names["userA"] = "Alice"
	created, err := f.engine.CreateMatch(testSetup(), "host1")
	require.NoError(t, err)

	sess, err := f.engine.ClaimSlot(created.ID, 2, "userA")
	require.NoError(t, err)
	assert.Equal(t, "userA", sess.Slots[1])
	assert.Equal(t, "Alice", sess.Setup.PlayerNames[1])
	// The stat line keeps the name the host seeded at creation.
	assert.Equal(t, "P2", sess.Stats[1].Name)
	assert.Equal(t, 1, f.metrics.SlotClaims)

	t.Run("blank seat takes the claimer's name", func(t *testing.T) {
		setup := testSetup()
		setup.PlayerNames = [4]string{}
		blank, err := f.engine.CreateMatch(setup, "host1")
		require.NoError(t, err)

		sess, err := f.engine.ClaimSlot(blank.ID, 1, "userA")
		require.NoError(t, err)
		assert.Equal(t, "Alice", sess.Stats[0].Name)
	})

	t.Run("bad inputs", func(t *testing.T) {
		_, err := f.engine.ClaimSlot(created.ID, 0, "userA")
		assert.ErrorIs(t, err, engine.ErrBadSlot)
		_, err = f.engine.ClaimSlot(created.ID, 5, "userA")
		assert.ErrorIs(t, err, engine.ErrBadSlot)
		_, err = f.engine.ClaimSlot(created.ID, 1, "")
		assert.ErrorIs(t, err, engine.ErrMissingUser)
	})

	t.Run("unknown user falls back to guest name", func(t *testing.T) {
		f.identity.GetDisplayNameFunc = func(userID string) (string, error) {
			return "", errors.New("lookup down")
		}
		defer func() { f.identity.GetDisplayNameFunc = nil }()

		sess, err := f.engine.ClaimSlot(created.ID, 3, "mystery99")
		require.NoError(t, err)
		assert.Equal(t, identity.GuestName("mystery99"), sess.Setup.PlayerNames[2])
	})

	t.Run("losing a race increments the conflict counter", func(t *testing.T) {
		f.identity.Names["userB"] = "Bob"
		_, err := f.engine.ClaimSlot(created.ID, 2, "userB")
		assert.ErrorIs(t, err, session.ErrSlotTaken)
		assert.Equal(t, 1, f.metrics.ClaimConflicts)
	})
}

// Two devices share a stale view with slot 4 open; only the first claim can
// win, the second gets a conflict instead of a silent overwrite.
func TestClaimSlotConcurrentSameSeat(t *testing.T) {
	f := newFixture(t)
	created, err := f.engine.CreateMatch(testSetup(), "host1")
	require.NoError(t, err)

	_, err = f.engine.ClaimSlot(created.ID, 4, "first")
	require.NoError(t, err)
	_, err = f.engine.ClaimSlot(created.ID, 4, "second")
	assert.ErrorIs(t, err, session.ErrSlotTaken)

	sess, err := f.engine.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", sess.Slots[3])
	assert.NotContains(t, sess.Participants, "second")
}

func TestSubmitPlay(t *testing.T) {
	f := newFixture(t)
	created, err := f.engine.CreateMatch(testSetup(), "host1")
	require.NoError(t, err)

	sess, reset, err := f.engine.SubmitPlay(created.ID, game.PlayEvent{
		ThrowerSlot: 1,
		Throw:       game.ThrowHit,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, sess.Stats[0].Score)
	assert.Equal(t, 1, sess.TeamScore(1))
	assert.True(t, reset.ClearThrower)
	assert.Equal(t, 1, f.metrics.PlaysSubmitted)

	// The update is persisted, not just returned.
	stored, err := f.engine.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Stats[0].Score)

	t.Run("invalid event is rejected before any read", func(t *testing.T) {
		_, _, err := f.engine.SubmitPlay(created.ID, game.PlayEvent{Throw: game.ThrowHit})
		assert.ErrorIs(t, err, game.ErrMissingThrower)
		assert.Equal(t, 1, f.metrics.PlaysRejected)
	})

	t.Run("unknown session", func(t *testing.T) {
		_, _, err := f.engine.SubmitPlay("nope", game.PlayEvent{ThrowerSlot: 1, Throw: game.ThrowHit})
		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("finished match rejects plays", func(t *testing.T) {
		finished, err := f.engine.CreateMatch(testSetup(), "host1")
		require.NoError(t, err)
		_, err = f.engine.FinishMatch(finished.ID)
		require.NoError(t, err)
		_, _, err = f.engine.SubmitPlay(finished.ID, game.PlayEvent{ThrowerSlot: 1, Throw: game.ThrowHit})
		assert.Error(t, err)
	})
}

// Concurrent submitters both work from the latest store snapshot, so neither
// play is lost even when the clients' local views were stale.
func TestSubmitPlayReadsLatestSnapshot(t *testing.T) {
	f := newFixture(t)
	created, err := f.engine.CreateMatch(testSetup(), "host1")
	require.NoError(t, err)

	_, _, err = f.engine.SubmitPlay(created.ID, game.PlayEvent{ThrowerSlot: 1, Throw: game.ThrowHit})
	require.NoError(t, err)
	_, _, err = f.engine.SubmitPlay(created.ID, game.PlayEvent{ThrowerSlot: 3, Throw: game.ThrowGoal})
	require.NoError(t, err)

	sess, err := f.engine.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, sess.TeamScore(1))
	assert.Equal(t, 2, sess.TeamScore(2))
	assert.Equal(t, 1, sess.Stats[0].Throws)
	assert.Equal(t, 1, sess.Stats[2].Throws)
}

func TestAdjustTeamScore(t *testing.T) {
	f := newFixture(t)
	created, err := f.engine.CreateMatch(testSetup(), "host1")
	require.NoError(t, err)

	sess, err := f.engine.AdjustTeamScore(created.ID, "host1", 1, 2)
	require.NoError(t, err)
	sess, err = f.engine.AdjustTeamScore(created.ID, "host1", 1, -1)
	require.NoError(t, err)

	assert.Equal(t, 1, sess.ManualAdjustments[0])
	assert.Equal(t, 1, sess.TeamScore(1))
	require.Len(t, sess.AdjustmentHistory, 2)
	assert.Equal(t, game.Adjustment{Team: 1, Amount: 2, Timestamp: sess.AdjustmentHistory[0].Timestamp}, sess.AdjustmentHistory[0])
	assert.Equal(t, -1, sess.AdjustmentHistory[1].Amount)

	t.Run("team score may go negative", func(t *testing.T) {
		sess, err := f.engine.AdjustTeamScore(created.ID, "host1", 2, -5)
		require.NoError(t, err)
		assert.Equal(t, -5, sess.TeamScore(2))
	})

	t.Run("non-host is refused", func(t *testing.T) {
		_, err := f.engine.AdjustTeamScore(created.ID, "rando", 1, 1)
		assert.ErrorIs(t, err, engine.ErrNotHost)
	})

	t.Run("bad team", func(t *testing.T) {
		_, err := f.engine.AdjustTeamScore(created.ID, "host1", 3, 1)
		assert.ErrorIs(t, err, engine.ErrBadTeam)
	})

	t.Run("guest-hosted match lets anyone adjust", func(t *testing.T) {
		guest, err := f.engine.CreateMatch(testSetup(), "")
		require.NoError(t, err)
		_, err = f.engine.AdjustTeamScore(guest.ID, "anyone", 1, 1)
		assert.NoError(t, err)
	})
}

func TestResetAdjustments(t *testing.T) {
	f := newFixture(t)
	created, err := f.engine.CreateMatch(testSetup(), "host1")
	require.NoError(t, err)

	_, err = f.engine.AdjustTeamScore(created.ID, "host1", 1, 3)
	require.NoError(t, err)
	_, err = f.engine.AdjustTeamScore(created.ID, "host1", 2, -2)
	require.NoError(t, err)

	sess, err := f.engine.ResetAdjustments(created.ID, "host1")
	require.NoError(t, err)
	assert.Equal(t, [2]int{}, sess.ManualAdjustments)
	assert.Empty(t, sess.AdjustmentHistory)
	assert.Zero(t, sess.TeamScore(1))

	_, err = f.engine.ResetAdjustments(created.ID, "rando")
	assert.ErrorIs(t, err, engine.ErrNotHost)
}

func TestUpdateSetup(t *testing.T) {
	f := newFixture(t)
	f.identity.Names["userA"] = "Alice"
	created, err := f.engine.CreateMatch(testSetup(), "host1")
	require.NoError(t, err)
	_, err = f.engine.ClaimSlot(created.ID, 1, "userA")
	require.NoError(t, err)

	t.Run("renaming an unclaimed slot works", func(t *testing.T) {
		setup := testSetup()
		setup.PlayerNames = [4]string{"Alice", "Benny", "P3", "P4"}
		sess, err := f.engine.UpdateSetup(created.ID, "host1", setup)
		require.NoError(t, err)
		assert.Equal(t, "Benny", sess.Setup.PlayerNames[1])
		assert.Equal(t, "Benny", sess.Stats[1].Name)
	})

	t.Run("renaming a claimed slot is refused", func(t *testing.T) {
		setup := testSetup()
		setup.PlayerNames = [4]string{"Impostor", "P2", "P3", "P4"}
		_, err := f.engine.UpdateSetup(created.ID, "host1", setup)
		assert.ErrorIs(t, err, engine.ErrSetupLocked)
	})

	t.Run("non-host is refused", func(t *testing.T) {
		_, err := f.engine.UpdateSetup(created.ID, "userA", testSetup())
		assert.ErrorIs(t, err, engine.ErrNotHost)
	})
}

func TestFinishMatch(t *testing.T) {
	f := newFixture(t)
	f.identity.Names["userA"] = "Alice"
	f.identity.Names["userB"] = "Bob"
	created, err := f.engine.CreateMatch(testSetup(), "host1")
	require.NoError(t, err)
	_, err = f.engine.ClaimSlot(created.ID, 1, "userA")
	require.NoError(t, err)
	_, err = f.engine.ClaimSlot(created.ID, 3, "userB")
	require.NoError(t, err)

	// Team 1 up 3-2.
	plays := []game.PlayEvent{
		{ThrowerSlot: 1, Throw: game.ThrowHit},
		{ThrowerSlot: 2, Throw: game.ThrowGoal},
		{ThrowerSlot: 3, Throw: game.ThrowDink},
	}
	for _, ev := range plays {
		_, _, err := f.engine.SubmitPlay(created.ID, ev)
		require.NoError(t, err)
	}

	summary, err := f.engine.FinishMatch(created.ID)
	require.NoError(t, err)

	assert.Equal(t, created.ID, summary.SessionID)
	assert.Equal(t, 1, summary.Winner)
	assert.Equal(t, [2]int{3, 2}, summary.TeamScores)
	assert.Equal(t, "Friday Night", summary.Title)
	require.Len(t, summary.Players, 4)
	assert.Equal(t, "userA", summary.Players[0].UserID)
	assert.Equal(t, "P1", summary.Players[0].Name)
	assert.True(t, summary.Players[0].Won)
	assert.False(t, summary.Players[2].Won)
	assert.False(t, summary.Players[0].Tied)
	assert.Greater(t, summary.Players[0].Rating, 0.0)

	assert.Equal(t, 1, f.metrics.MatchesFinished)
	require.Len(t, f.store.InsertSummaryCalls, 1)
	require.Len(t, f.notifier.SendResultNotificationCalls, 1)

	// One recompute per seated user plus the finish broadcast.
	var recomputes []string
	finishes := 0
	for _, call := range f.pubsub.SendMessageCalls {
		switch call.Topic {
		case pubsub.EventRecomputeUserStats:
			recomputes = append(recomputes, call.Data.(pubsub.RecomputeUserStatsPayload).UserID)
		case pubsub.EventMatchFinished:
			finishes++
		}
	}
	assert.ElementsMatch(t, []string{"userA", "userB"}, recomputes)
	assert.Equal(t, 1, finishes)

	// The live session is gone once flattened.
	_, err = f.engine.Get(created.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)

	t.Run("flattened match is gone", func(t *testing.T) {
		_, err := f.engine.FinishMatch(created.ID)
		assert.ErrorIs(t, err, session.ErrNotFound)
	})
}

func TestFinishMatchTie(t *testing.T) {
	f := newFixture(t)
	created, err := f.engine.CreateMatch(testSetup(), "host1")
	require.NoError(t, err)

	summary, err := f.engine.FinishMatch(created.ID)
	require.NoError(t, err)
	assert.Equal(t, game.WinnerTie, summary.Winner)
	for _, p := range summary.Players {
		assert.False(t, p.Won)
		assert.True(t, p.Tied)
	}
}

// A failed summary insert must not undo the finish, and must keep the live
// session around for a retry instead of deleting it.
func TestFinishMatchSummaryFailureKeepsSession(t *testing.T) {
	f := newFixture(t)
	created, err := f.engine.CreateMatch(testSetup(), "host1")
	require.NoError(t, err)

	f.store.InsertSummaryFunc = func(summary *session.MatchSummary) error {
		return errors.New("disk full")
	}

	summary, err := f.engine.FinishMatch(created.ID)
	require.NoError(t, err)
	assert.NotNil(t, summary)

	sess, err := f.engine.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, game.StatusFinished, sess.Status)
	assert.Empty(t, f.store.DeleteCalls)
	assert.Empty(t, f.pubsub.SendMessageCalls)
	assert.Empty(t, f.notifier.SendResultNotificationCalls)

	t.Run("finishing again resumes the flatten", func(t *testing.T) {
		f.store.InsertSummaryFunc = nil

		retried, err := f.engine.FinishMatch(created.ID)
		require.NoError(t, err)
		assert.Equal(t, summary.Winner, retried.Winner)

		// The retry completes the pipeline: summary stored, fan-out sent,
		// live record gone. The finish itself is counted only once.
		assert.Equal(t, []string{created.ID}, f.store.DeleteCalls)
		assert.NotEmpty(t, f.pubsub.SendMessageCalls)
		assert.Len(t, f.notifier.SendResultNotificationCalls, 1)
		assert.Equal(t, 1, f.metrics.MatchesFinished)
		_, err = f.engine.Get(created.ID)
		assert.ErrorIs(t, err, session.ErrNotFound)
	})
}

// A dead notifier is logged, everything else still happens.
func TestFinishMatchNotifierFailureIsNonFatal(t *testing.T) {
	f := newFixture(t)
	created, err := f.engine.CreateMatch(testSetup(), "host1")
	require.NoError(t, err)

	f.notifier.SendResultNotificationFunc = func(summary *session.MatchSummary, dryRun bool) error {
		return errors.New("slack is down")
	}

	_, err = f.engine.FinishMatch(created.ID)
	require.NoError(t, err)
	assert.Len(t, f.store.InsertSummaryCalls, 1)
	assert.Equal(t, []string{created.ID}, f.store.DeleteCalls)
}
