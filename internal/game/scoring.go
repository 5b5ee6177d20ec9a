package game

import "errors"

// Validation errors for play submission. These are local and never reach
// the store; callers surface them to the user as correctable messages.
var (
	ErrMissingThrower   = errors.New("a throwing player must be selected")
	ErrMissingResult    = errors.New("a throw result must be selected")
	ErrUnknownResult    = errors.New("unknown throw result")
	ErrMissingDefender  = errors.New("a line/table throw needs a defending player")
	ErrFifaWithoutSlot  = errors.New("a FIFA action needs a kicking player")
	ErrFifaOnValidThrow = errors.New("FIFA is only allowed on an invalid throw")
	ErrBadSlot          = errors.New("slot must be between 1 and 4")
)

// PointsFor returns the score value of a throw result. Sinks are worth the
// configurable sink value, everything else is fixed.
func PointsFor(result ThrowResult, sinkPoints int) int {
	switch result {
	case ThrowHit:
		return 1
	case ThrowGoal, ThrowDink:
		return 2
	case ThrowSink:
		return sinkPoints
	default: // line/table and invalid score nothing
		return 0
	}
}

func isValidThrow(r ThrowResult) bool {
	switch r {
	case ThrowLineTable, ThrowHit, ThrowGoal, ThrowDink, ThrowSink:
		return true
	}
	return false
}

func isScoringThrow(r ThrowResult) bool {
	switch r {
	case ThrowHit, ThrowGoal, ThrowDink, ThrowSink:
		return true
	}
	return false
}

func knownResult(r ThrowResult) bool {
	return isValidThrow(r) || r == ThrowInvalid
}

// ValidatePlay checks a play event without touching any state.
func ValidatePlay(ev PlayEvent) error {
	if ev.ThrowerSlot == 0 {
		return ErrMissingThrower
	}
	if ev.ThrowerSlot < 1 || ev.ThrowerSlot > 4 {
		return ErrBadSlot
	}
	if ev.Throw == "" {
		return ErrMissingResult
	}
	if !knownResult(ev.Throw) {
		return ErrUnknownResult
	}
	if ev.DefenderSlot != 0 && ev.DefenderSlot != DefenderTeam && (ev.DefenderSlot < 1 || ev.DefenderSlot > 4) {
		return ErrBadSlot
	}
	if ev.Throw == ThrowLineTable && ev.DefenderSlot == 0 {
		return ErrMissingDefender
	}
	if ev.Fifa != "" {
		if ev.Throw != ThrowInvalid {
			return ErrFifaOnValidThrow
		}
		if ev.FifaSlot < 1 || ev.FifaSlot > 4 {
			return ErrFifaWithoutSlot
		}
	}
	return nil
}

// ApplyPlay applies one play event to the session's stat lines and returns
// the selection-reset contract for the submitting view. It mutates the
// session in place and performs no I/O; persisting the updated record is
// the caller's job and must write the entire session back in one operation.
func ApplyPlay(s *MatchSession, ev PlayEvent) (SelectionReset, error) {
	if err := ValidatePlay(ev); err != nil {
		return SelectionReset{}, err
	}

	thrower := &s.Stats[ev.ThrowerSlot-1]
	thrower.Throws++
	countOutcome(&thrower.Outcomes, ev.Throw)

	if isValidThrow(ev.Throw) {
		thrower.ValidThrows++
	}

	// Read before any streak mutation: only throws made while already on a
	// streak of 3+ count toward on_fire_count, not the throw that starts it.
	wasOnFire := thrower.CurrentlyOnFire

	if isScoringThrow(ev.Throw) {
		thrower.Hits++
		thrower.HitStreak++
		if ev.Throw == ThrowDink || ev.Throw == ThrowSink {
			thrower.SpecialThrows++
		}
		if ev.Throw == ThrowGoal {
			thrower.Goals++
		}
	} else {
		thrower.HitStreak = 0
	}

	if ev.Throw == ThrowLineTable {
		thrower.LineThrows++
		thrower.TableThrows++
	}

	thrower.CurrentlyOnFire = thrower.HitStreak >= 3
	if wasOnFire {
		thrower.OnFireCount++
	}

	pointsToAdd := PointsFor(ev.Throw, s.Setup.SinkPoints)

	caught := false
	if ev.DefenderSlot >= 1 && ev.DefenderSlot <= 4 {
		defender := &s.Stats[ev.DefenderSlot-1]
		defender.CatchAttempts++
		switch ev.Defense {
		case DefenseCatch:
			defender.Catches++
			defender.SuccessfulCatches++
			caught = true
		case DefenseMiss:
			defender.Blunders++
			defender.Outcomes.Miss++
		}
	}

	// A caught throw scores nothing, whatever the table says.
	if caught {
		pointsToAdd = 0
	}
	thrower.Score += pointsToAdd

	if ev.Fifa != "" {
		kicker := &s.Stats[ev.FifaSlot-1]
		kicker.FifaAttempts++
		switch ev.Fifa {
		case FifaGoodKick:
			kicker.FifaSuccess++
			kicker.Outcomes.GoodKick++
			// The defender point is unconditional, independent of whether
			// they also caught or missed. Deliberately kept as-is.
			if ev.DefenderSlot >= 1 && ev.DefenderSlot <= 4 {
				s.Stats[ev.DefenderSlot-1].Score++
			}
		case FifaBadKick:
			kicker.Outcomes.BadKick++
		}
	}

	return resetFor(ev.Throw), nil
}

func countOutcome(c *ThrowCounts, r ThrowResult) {
	switch r {
	case ThrowLineTable:
		c.Line++
	case ThrowHit:
		c.Hit++
	case ThrowGoal:
		c.Goal++
	case ThrowDink:
		c.Dink++
	case ThrowSink:
		c.Sink++
	case ThrowInvalid:
		c.Invalid++
	}
}

// resetFor encodes the post-submit selection policy: a line/table result
// allows a retoss, so only the defense selection is cleared. Every other
// result clears thrower, result and defense. FIFA is always cleared.
func resetFor(result ThrowResult) SelectionReset {
	if result == ThrowLineTable {
		return SelectionReset{ClearDefense: true, ClearFifa: true}
	}
	return SelectionReset{ClearThrower: true, ClearThrow: true, ClearDefense: true, ClearFifa: true}
}
