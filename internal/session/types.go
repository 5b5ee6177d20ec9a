package session

import (
	"database/sql"
	"errors"
	"sync"

	"github.com/beerdie/engine/internal/game"
)

// Store errors surfaced to claim and update callers.
var (
	ErrNotFound        = errors.New("session not found")
	ErrSlotTaken       = errors.New("slot is already taken by another player")
	ErrAlreadyAssigned = errors.New("player already occupies a different slot")
	ErrMatchFinished   = errors.New("match is already finished")
)

// store handles all database operations for live sessions and their
// permanent summaries.
type store struct {
	db *sql.DB
	mu sync.RWMutex

	subMu   sync.Mutex
	subs    map[string]map[int]func(*game.MatchSession)
	nextSub int
}

// MatchSummary is the permanent record a finished session is flattened
// into before the live record is deleted.
type MatchSummary struct {
	ID         string          `json:"id"`
	SessionID  string          `json:"session_id"`
	RoomCode   string          `json:"room_code"`
	Title      string          `json:"title"`
	Arena      string          `json:"arena"`
	TeamNames  [2]string       `json:"team_names"`
	TeamScores [2]int          `json:"team_scores"`
	Winner     int             `json:"winner"`
	StartedAt  int64           `json:"started_at"`
	FinishedAt int64           `json:"finished_at"`
	Players    []SummaryPlayer `json:"players"`
}

// SummaryPlayer is one slot's final line in a match summary.
type SummaryPlayer struct {
	Slot   int              `json:"slot"`
	UserID string           `json:"user_id"`
	Name   string           `json:"name"`
	Team   int              `json:"team"`
	Won    bool             `json:"won"`
	Tied   bool             `json:"tied"`
	Stats  game.PlayerStats `json:"stats"`
	Rating float64          `json:"rating"`
}
