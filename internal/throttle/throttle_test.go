package throttle_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beerdie/engine/internal/game"
	"github.com/beerdie/engine/internal/throttle"
)

// view mimics a client's derived state: apply replaces it wholesale.
type view struct {
	mu      sync.Mutex
	current *game.MatchSession
	applies int
}

func (v *view) apply(s *game.MatchSession) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.current = s
	v.applies++
}

func (v *view) snapshot() (*game.MatchSession, int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current, v.applies
}

func sessionWithScore(score int) *game.MatchSession {
	s := &game.MatchSession{ID: "m1", Status: game.StatusActive, Winner: game.WinnerNone}
	s.Stats[0].Score = score
	return s
}

func TestFirstEventAppliesImmediately(t *testing.T) {
	v := &view{}
	c := throttle.New(time.Hour, v.apply)
	defer c.Stop()

	c.Offer(sessionWithScore(1))

	cur, applies := v.snapshot()
	require.NotNil(t, cur)
	assert.Equal(t, 1, cur.Stats[0].Score)
	assert.Equal(t, 1, applies)
}

func TestBurstCoalescesToLatestPayload(t *testing.T) {
	v := &view{}
	c := throttle.New(50*time.Millisecond, v.apply)
	defer c.Stop()

	c.Offer(sessionWithScore(1)) // applied immediately
	c.Offer(sessionWithScore(2)) // pending
	c.Offer(sessionWithScore(3)) // overwrites pending
	c.Offer(sessionWithScore(4)) // overwrites pending again

	_, applies := v.snapshot()
	assert.Equal(t, 1, applies, "burst must not apply before the interval")

	require.Eventually(t, func() bool {
		cur, applies := v.snapshot()
		return applies == 2 && cur.Stats[0].Score == 4
	}, time.Second, 5*time.Millisecond, "only the freshest payload is delivered")

	// Nothing left pending: no third apply shows up.
	time.Sleep(80 * time.Millisecond)
	_, applies = v.snapshot()
	assert.Equal(t, 2, applies)
}

func TestEventAfterQuietPeriodAppliesImmediately(t *testing.T) {
	v := &view{}
	c := throttle.New(20*time.Millisecond, v.apply)
	defer c.Stop()

	c.Offer(sessionWithScore(1))
	time.Sleep(40 * time.Millisecond)
	c.Offer(sessionWithScore(2))

	cur, applies := v.snapshot()
	assert.Equal(t, 2, applies)
	assert.Equal(t, 2, cur.Stats[0].Score)
}

func TestReapplySamePayloadIsIdempotent(t *testing.T) {
	v := &view{}
	c := throttle.New(time.Nanosecond, v.apply)
	defer c.Stop()

	payload := sessionWithScore(5)
	c.Offer(payload)
	time.Sleep(time.Millisecond)
	c.Offer(payload)

	// Apply replaces rather than accumulates: a stale duplicate changes
	// nothing about the derived totals.
	cur, _ := v.snapshot()
	total := 0
	for i := range cur.Stats {
		total += cur.Stats[i].Score
	}
	assert.Equal(t, 5, total)
}

func TestStopDropsPendingUpdate(t *testing.T) {
	v := &view{}
	c := throttle.New(30*time.Millisecond, v.apply)

	c.Offer(sessionWithScore(1))
	c.Offer(sessionWithScore(2)) // pending
	c.Stop()

	time.Sleep(60 * time.Millisecond)
	cur, applies := v.snapshot()
	assert.Equal(t, 1, applies, "pending payload is dropped on Stop")
	assert.Equal(t, 1, cur.Stats[0].Score)

	c.Offer(sessionWithScore(3))
	_, applies = v.snapshot()
	assert.Equal(t, 1, applies, "a stopped controller ignores new events")
}
