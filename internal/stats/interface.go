package stats

// Aggregator maintains per-user career stats derived from finished match
// summaries. Recomputes are fire-and-forget from the engine's point of
// view: a failed recompute costs freshness, not correctness, because the
// next one rebuilds from scratch.
type Aggregator interface {
	RecomputeUserStats(userID string) error
	GetUserStats(userID string) (*UserStats, error)
	Leaderboard(limit int) ([]UserStats, error)
}
