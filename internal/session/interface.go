package session

import "github.com/beerdie/engine/internal/game"

// Store is the persistence and change-notification collaborator for live
// match sessions. It is the single point of coordination between clients:
// every mutating call commits a full record and fans the fresh copy out to
// subscribers of that session id.
type Store interface {
	Insert(sess *game.MatchSession) error
	// Update replaces the entire stored record. Mutating operations read
	// the latest copy, apply their deltas and write the whole object back;
	// there are no partial-field patches.
	Update(sess *game.MatchSession) error
	Delete(id string) error
	Get(id string) (*game.MatchSession, error)
	// FindByRoomCode looks a session up globally by its 6-letter code.
	// statusFilter narrows the lookup; pass "" for any status.
	FindByRoomCode(code string, statusFilter game.MatchStatus) (*game.MatchSession, error)
	// ClaimSlot atomically seats userID in the given slot. The conditional
	// write serializes concurrent claims on the same slot: the check and
	// the write commit together, so a claim raced by another client fails
	// with ErrSlotTaken instead of silently overwriting it.
	ClaimSlot(id string, slot int, userID, displayName string) (*game.MatchSession, error)
	SetFinished(id string, winner int) (*game.MatchSession, error)
	// Subscribe registers a change callback for one session id. The
	// callback receives a clone of the record after every committed write.
	// The returned func unsubscribes; no further teardown is needed.
	Subscribe(id string, onChange func(*game.MatchSession)) func()

	InsertSummary(summary *MatchSummary) error
	GetSummaries(limit int) ([]*MatchSummary, error)
}
