package stats

import (
	"database/sql"
	"sync"
)

// store handles database operations for career stats.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// UserStats is one user's career line across all finished matches.
type UserStats struct {
	UserID        string  `json:"user_id"`
	DisplayName   string  `json:"display_name"`
	MatchesPlayed int     `json:"matches_played"`
	MatchesWon    int     `json:"matches_won"`
	MatchesTied   int     `json:"matches_tied"`
	Throws        int     `json:"throws"`
	Hits          int     `json:"hits"`
	Catches       int     `json:"catches"`
	Blunders      int     `json:"blunders"`
	FifaAttempts  int     `json:"fifa_attempts"`
	FifaSuccess   int     `json:"fifa_success"`
	TotalScore    int     `json:"total_score"`
	HitPercentage float64 `json:"hit_percentage"`
	AvgRating     float64 `json:"avg_rating"`
	WinPercentage float64 `json:"win_percentage"`
}
