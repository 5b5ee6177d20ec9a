package stats

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// New creates a new stats Aggregator.
func New(db *sql.DB) Aggregator {
	return &store{db: db}
}

// RecomputeUserStats rebuilds one user's career row from all of their
// summary lines. A full rebuild keeps the operation idempotent: replaying
// the same finished match can never double-count.
func (s *store) RecomputeUserStats(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(won), 0),
			COALESCE(SUM(tied), 0),
			COALESCE(SUM(throws), 0),
			COALESCE(SUM(hits), 0),
			COALESCE(SUM(catches), 0),
			COALESCE(SUM(blunders), 0),
			COALESCE(SUM(fifa_attempts), 0),
			COALESCE(SUM(fifa_success), 0),
			COALESCE(SUM(score), 0),
			COALESCE(AVG(rating), 0)
		FROM summary_players
		WHERE user_id = ?`, userID)

	var st UserStats
	err := row.Scan(
		&st.MatchesPlayed, &st.MatchesWon, &st.MatchesTied,
		&st.Throws, &st.Hits, &st.Catches, &st.Blunders,
		&st.FifaAttempts, &st.FifaSuccess, &st.TotalScore, &st.AvgRating,
	)
	if err != nil {
		return fmt.Errorf("failed to aggregate summaries for %s: %w", userID, err)
	}

	_, err = s.db.Exec(`
		INSERT INTO user_stats (user_id, matches_played, matches_won, matches_tied,
			throws, hits, catches, blunders, fifa_attempts, fifa_success,
			total_score, avg_rating, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			matches_played = excluded.matches_played,
			matches_won = excluded.matches_won,
			matches_tied = excluded.matches_tied,
			throws = excluded.throws,
			hits = excluded.hits,
			catches = excluded.catches,
			blunders = excluded.blunders,
			fifa_attempts = excluded.fifa_attempts,
			fifa_success = excluded.fifa_success,
			total_score = excluded.total_score,
			avg_rating = excluded.avg_rating,
			updated_at = excluded.updated_at`,
		userID, st.MatchesPlayed, st.MatchesWon, st.MatchesTied,
		st.Throws, st.Hits, st.Catches, st.Blunders,
		st.FifaAttempts, st.FifaSuccess, st.TotalScore, st.AvgRating,
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to write user stats for %s: %w", userID, err)
	}

	log.Info("Recomputed user stats", "userID", userID, "matches", st.MatchesPlayed)
	return nil
}

func (s *store) GetUserStats(userID string) (*UserStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT us.user_id, COALESCE(u.display_name, ''),
			us.matches_played, us.matches_won, us.matches_tied,
			us.throws, us.hits, us.catches, us.blunders,
			us.fifa_attempts, us.fifa_success, us.total_score, us.avg_rating
		FROM user_stats us
		LEFT JOIN users u ON u.id = us.user_id
		WHERE us.user_id = ?`, userID)

	st, err := scanUserStats(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no stats for user %s", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user stats: %w", err)
	}
	return st, nil
}

func (s *store) Leaderboard(limit int) ([]UserStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(`
		SELECT us.user_id, COALESCE(u.display_name, ''),
			us.matches_played, us.matches_won, us.matches_tied,
			us.throws, us.hits, us.catches, us.blunders,
			us.fifa_attempts, us.fifa_success, us.total_score, us.avg_rating
		FROM user_stats us
		LEFT JOIN users u ON u.id = us.user_id
		ORDER BY us.matches_won DESC, us.avg_rating DESC, us.total_score DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var board []UserStats
	for rows.Next() {
		st, err := scanUserStats(rows)
		if err != nil {
			log.Error("Failed to scan user stats row", "error", err)
			continue
		}
		board = append(board, *st)
	}
	return board, nil
}

func scanUserStats(scanner interface{ Scan(...any) error }) (*UserStats, error) {
	var st UserStats
	err := scanner.Scan(
		&st.UserID, &st.DisplayName,
		&st.MatchesPlayed, &st.MatchesWon, &st.MatchesTied,
		&st.Throws, &st.Hits, &st.Catches, &st.Blunders,
		&st.FifaAttempts, &st.FifaSuccess, &st.TotalScore, &st.AvgRating,
	)
	if err != nil {
		return nil, err
	}
	if st.Throws > 0 {
		st.HitPercentage = float64(st.Hits) / float64(st.Throws) * 100
	}
	if st.MatchesPlayed > 0 {
		st.WinPercentage = float64(st.MatchesWon) / float64(st.MatchesPlayed) * 100
	}
	return &st, nil
}
