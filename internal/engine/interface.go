package engine

import (
	"github.com/beerdie/engine/internal/game"
	"github.com/beerdie/engine/internal/session"
)

// Store defines the persistence operations required by the engine. The live
// session store satisfies it; tests use the session mock.
type Store interface {
	Insert(sess *game.MatchSession) error
	Update(sess *game.MatchSession) error
	Delete(id string) error
	Get(id string) (*game.MatchSession, error)
	FindByRoomCode(code string, statusFilter game.MatchStatus) (*game.MatchSession, error)
	ClaimSlot(id string, slot int, userID, displayName string) (*game.MatchSession, error)
	SetFinished(id string, winner int) (*game.MatchSession, error)
	InsertSummary(summary *session.MatchSummary) error
}
