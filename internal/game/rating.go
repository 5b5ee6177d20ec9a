package game

// TeamScore derives a team's current score from the player stat lines,
// penalties and the manual adjustment ledger.
func (s *MatchSession) TeamScore(team int) int {
	slots := SlotsForTeam(team)
	total := 0
	for _, slot := range slots {
		total += s.Stats[slot-1].Score
	}
	return total - s.TeamPenalties[team-1] + s.ManualAdjustments[team-1]
}

// Phase classifies the current score line for the session's settings.
func (s *MatchSession) Phase() GamePhase {
	return ClassifyPhase(s.TeamScore(1), s.TeamScore(2), s.Setup.GameScoreLimit, s.Setup.WinByTwo)
}

// ClassifyPhase returns the game-state classification for a score line.
// Without win-by-two there is nothing to classify. With it, a tie at or
// beyond limit-1 is the deuce point and every deuce after it, so the game
// is in overtime; a one-point lead at or beyond the limit is advantage.
func ClassifyPhase(score1, score2, limit int, winByTwo bool) GamePhase {
	if !winByTwo {
		return PhaseStandard
	}
	hi, lo := score1, score2
	if hi < lo {
		hi, lo = lo, hi
	}
	switch {
	case hi == lo && hi >= limit-1:
		return PhaseOvertime
	case hi >= limit && lo == hi-1:
		return PhaseAdvantage
	case hi == limit-1 && lo < limit-1:
		return PhaseMatchPoint
	default:
		return PhaseStandard
	}
}

// Rating weights and bonus thresholds. A player's base rating blends hit,
// catch and FIFA rates; eight independent bonuses add a point each, capped
// at 105 overall.
const (
	ratingCap        = 105
	hitRateWeight    = 0.45
	catchRateWeight  = 0.45
	fifaRateWeight   = 0.15
	bonusRate        = 0.80
	bonusFifaRate    = 0.70
	bonusOnFireShare = 0.70
	bonusShare       = 0.15
	bonusGoals       = 2
	bonusAura        = 8
)

// PlayerRating computes the 0-105 performance rating for one stat line.
func PlayerRating(st PlayerStats) float64 {
	hitRate := ratio(st.Hits, st.Throws)
	catchRate := ratio(st.Catches, st.Catches+st.Blunders)
	fifaRate := ratio(st.FifaSuccess, st.FifaAttempts)

	rating := 100 * (hitRateWeight*hitRate + catchRateWeight*catchRate + fifaRateWeight*fifaRate)

	if st.Throws > 0 && hitRate >= bonusRate {
		rating++
	}
	if st.Goals >= bonusGoals {
		rating++
	}
	if st.Catches+st.Blunders > 0 && catchRate >= bonusRate {
		rating++
	}
	if st.Throws > 0 && ratio(st.OnFireCount, st.Throws) > bonusOnFireShare {
		rating++
	}
	if st.Throws > 0 && ratio(st.SpecialThrows, st.Throws) > bonusShare {
		rating++
	}
	if st.FifaAttempts > 0 && fifaRate >= bonusFifaRate {
		rating++
	}
	if st.Throws > 0 && ratio(st.LineThrows, st.Throws) > bonusShare {
		rating++
	}
	if st.Aura >= bonusAura {
		rating++
	}

	if rating > ratingCap {
		rating = ratingCap
	}
	return rating
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
