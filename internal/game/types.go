package game

// MatchStatus is the lifecycle state of a live session as persisted.
type MatchStatus string

const (
	StatusActive   MatchStatus = "ACTIVE"
	StatusFinished MatchStatus = "FINISHED"
)

// ThrowResult is the outcome of a single throw.
type ThrowResult string

const (
	ThrowLineTable ThrowResult = "line/table"
	ThrowHit       ThrowResult = "hit"
	ThrowGoal      ThrowResult = "goal"
	ThrowDink      ThrowResult = "dink"
	ThrowSink      ThrowResult = "sink"
	ThrowInvalid   ThrowResult = "invalid"
)

// DefenseResult is the defending player's outcome for a throw.
type DefenseResult string

const (
	DefenseCatch DefenseResult = "catch"
	DefenseMiss  DefenseResult = "miss"
)

// FifaAction is the kick attempt allowed after an invalid throw.
type FifaAction string

const (
	FifaGoodKick FifaAction = "goodKick"
	FifaBadKick  FifaAction = "badKick"
)

// GamePhase classifies the current score line for win-by-two games.
type GamePhase string

const (
	PhaseStandard   GamePhase = "standard"
	PhaseMatchPoint GamePhase = "matchPoint"
	PhaseAdvantage  GamePhase = "advantage"
	PhaseOvertime   GamePhase = "overtime"
)

// Winner values stored on a session. WinnerNone means the match is still live.
const (
	WinnerNone = -1
	WinnerTie  = 0
)

// DefenderSlot sentinel: the whole team defended, no individual gets credit.
const DefenderTeam = -1

// MatchSetup is the host-editable configuration for a match.
// A player name becomes read-only once its slot has been claimed.
type MatchSetup struct {
	Title          string    `json:"title"`
	Arena          string    `json:"arena"`
	PlayerNames    [4]string `json:"player_names"`
	TeamNames      [2]string `json:"team_names"`
	GameScoreLimit int       `json:"game_score_limit"`
	SinkPoints     int       `json:"sink_points"`
	WinByTwo       bool      `json:"win_by_two"`
}

// ThrowCounts tracks how often each named outcome occurred for one player.
type ThrowCounts struct {
	Line     int `json:"line"`
	Hit      int `json:"hit"`
	Goal     int `json:"goal"`
	Dink     int `json:"dink"`
	Sink     int `json:"sink"`
	Invalid  int `json:"invalid"`
	Miss     int `json:"miss"`
	GoodKick int `json:"good_kick"`
	BadKick  int `json:"bad_kick"`
}

// PlayerStats is the live stat line for one of the four slots.
// Every counter is non-negative. Score only ever decreases through the
// manual adjustment ledger, never through play submission.
type PlayerStats struct {
	Name              string      `json:"name"`
	Throws            int         `json:"throws"`
	Hits              int         `json:"hits"`
	Blunders          int         `json:"blunders"`
	Catches           int         `json:"catches"`
	Score             int         `json:"score"`
	Aura              int         `json:"aura"`
	FifaAttempts      int         `json:"fifa_attempts"`
	FifaSuccess       int         `json:"fifa_success"`
	HitStreak         int         `json:"hit_streak"`
	SpecialThrows     int         `json:"special_throws"`
	LineThrows        int         `json:"line_throws"`
	TableThrows       int         `json:"table_throws"`
	Goals             int         `json:"goals"`
	OnFireCount       int         `json:"on_fire_count"`
	CurrentlyOnFire   bool        `json:"currently_on_fire"`
	Outcomes          ThrowCounts `json:"outcomes"`
	ValidThrows       int         `json:"valid_throws"`
	CatchAttempts     int         `json:"catch_attempts"`
	SuccessfulCatches int         `json:"successful_catches"`
	RedemptionShots   int         `json:"redemption_shots"`
}

// Adjustment is one entry in the host's manual score correction log.
type Adjustment struct {
	Team      int   `json:"team"`
	Amount    int   `json:"amount"`
	Timestamp int64 `json:"timestamp"`
}

// MatchSession is the single shared mutable record for one live match.
// Slots 1-2 belong to team 1, slots 3-4 to team 2. Slot arrays are indexed
// by slot-1. An empty string in Slots means the seat is unclaimed; an empty
// HostID means the match is guest-hosted.
type MatchSession struct {
	ID                string         `json:"id"`
	RoomCode          string         `json:"room_code"`
	HostID            string         `json:"host_id"`
	Status            MatchStatus    `json:"status"`
	Setup             MatchSetup     `json:"setup"`
	Participants      []string       `json:"participants"`
	Slots             [4]string      `json:"slots"`
	Stats             [4]PlayerStats `json:"stats"`
	TeamPenalties     [2]int         `json:"team_penalties"`
	ManualAdjustments [2]int         `json:"manual_adjustments"`
	AdjustmentHistory []Adjustment   `json:"adjustment_history"`
	MatchStartTime    int64          `json:"match_start_time"`
	Winner            int            `json:"winner"`
}

// PlayEvent is one submitted throw, optionally with a defense and a FIFA
// kick. Slot fields use 0 for "not given".
type PlayEvent struct {
	ThrowerSlot  int           `json:"thrower_slot"`
	Throw        ThrowResult   `json:"throw"`
	DefenderSlot int           `json:"defender_slot"`
	Defense      DefenseResult `json:"defense"`
	FifaSlot     int           `json:"fifa_slot"`
	Fifa         FifaAction    `json:"fifa"`
}

// SelectionReset tells the submitting view which of its selections to clear
// after a play was applied. A line/table throw keeps the thrower and result
// selected so the same player can retoss; everything else clears fully.
type SelectionReset struct {
	ClearThrower bool `json:"clear_thrower"`
	ClearThrow   bool `json:"clear_throw"`
	ClearDefense bool `json:"clear_defense"`
	ClearFifa    bool `json:"clear_fifa"`
}

// TeamForSlot maps a slot (1-4) to its team (1 or 2).
func TeamForSlot(slot int) int {
	if slot <= 2 {
		return 1
	}
	return 2
}

// SlotsForTeam returns the two slots belonging to a team.
func SlotsForTeam(team int) [2]int {
	if team == 1 {
		return [2]int{1, 2}
	}
	return [2]int{3, 4}
}

// SlotOf returns the slot (1-4) occupied by userID, or 0 if the user is not
// seated.
func (s *MatchSession) SlotOf(userID string) int {
	if userID == "" {
		return 0
	}
	for i, id := range s.Slots {
		if id == userID {
			return i + 1
		}
	}
	return 0
}

// SeatedUsers returns the distinct non-empty user ids across all slots.
func (s *MatchSession) SeatedUsers() []string {
	seen := make(map[string]bool, 4)
	var users []string
	for _, id := range s.Slots {
		if id != "" && !seen[id] {
			seen[id] = true
			users = append(users, id)
		}
	}
	return users
}

// Clone returns an independent deep copy of the session. Change-feed
// subscribers receive clones so a slow consumer can never observe a write
// in progress.
func (s *MatchSession) Clone() *MatchSession {
	c := *s
	c.Participants = append([]string(nil), s.Participants...)
	c.AdjustmentHistory = append([]Adjustment(nil), s.AdjustmentHistory...)
	return &c
}

// HasParticipant reports whether userID is already in the participant set.
func (s *MatchSession) HasParticipant(userID string) bool {
	for _, id := range s.Participants {
		if id == userID {
			return true
		}
	}
	return false
}
