package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/beerdie/engine/internal/game"
	"github.com/beerdie/engine/internal/identity"
	"github.com/beerdie/engine/internal/pubsub"
	"github.com/beerdie/engine/internal/session"
)

// CreateMatch normalizes the setup, mints a session id and room code, seeds
// the four stat lines with the setup names and persists the new live session.
// hostID may be empty for guest-hosted matches.
func (e *Engine) CreateMatch(setup game.MatchSetup, hostID string) (*game.MatchSession, error) {
	setup.Normalize()

	sess := &game.MatchSession{
		ID:             uuid.New().String(),
		RoomCode:       game.NewRoomCode(),
		HostID:         hostID,
		Status:         game.StatusActive,
		Setup:          setup,
		MatchStartTime: time.Now().Unix(),
		Winner:         game.WinnerNone,
	}
	for i := range sess.Stats {
		sess.Stats[i].Name = setup.PlayerNames[i]
	}
	if hostID != "" {
		sess.Participants = append(sess.Participants, hostID)
	}

	if err := e.store.Insert(sess); err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}
	e.metrics.IncMatchesStarted()
	log.Info("Match created", "sessionID", sess.ID, "roomCode", sess.RoomCode, "host", hostID)
	return sess, nil
}

// FindByRoomCode resolves an active session from its 6-letter room code.
func (e *Engine) FindByRoomCode(code string) (*game.MatchSession, error) {
	return e.store.FindByRoomCode(code, game.StatusActive)
}

// Get returns the current snapshot of a live session.
func (e *Engine) Get(sessionID string) (*game.MatchSession, error) {
	return e.store.Get(sessionID)
}

// ClaimSlot seats userID in the given slot. The display name is resolved up
// front so the stat line carries it; the store performs the claim as a
// compare-and-set, so a stale snapshot loses cleanly with ErrSlotTaken.
func (e *Engine) ClaimSlot(sessionID string, slot int, userID string) (*game.MatchSession, error) {
	if slot < 1 || slot > 4 {
		return nil, ErrBadSlot
	}
	if userID == "" {
		return nil, ErrMissingUser
	}

	name, err := e.identity.GetDisplayName(userID)
	if err != nil {
		log.Warn("Display name lookup failed, using guest name", "userID", userID, "error", err)
		name = identity.GuestName(userID)
	}

	sess, err := e.store.ClaimSlot(sessionID, slot, userID, name)
	if err != nil {
		if errors.Is(err, session.ErrSlotTaken) {
			e.metrics.IncClaimConflicts()
		}
		return nil, err
	}
	e.metrics.IncSlotClaims()
	log.Info("Slot claimed", "sessionID", sessionID, "slot", slot, "userID", userID)
	return sess, nil
}

// SubmitPlay validates a play event, applies it to the latest persisted
// snapshot and writes the whole session back. Working from the latest read
// rather than whatever the submitting client last saw keeps concurrent
// submitters from silently undoing each other.
func (e *Engine) SubmitPlay(sessionID string, ev game.PlayEvent) (*game.MatchSession, game.SelectionReset, error) {
	var none game.SelectionReset

	if err := game.ValidatePlay(ev); err != nil {
		e.metrics.IncPlaysRejected()
		return nil, none, err
	}

	sess, err := e.store.Get(sessionID)
	if err != nil {
		return nil, none, err
	}
	if sess.Status == game.StatusFinished {
		e.metrics.IncPlaysRejected()
		return nil, none, session.ErrMatchFinished
	}

	reset, err := game.ApplyPlay(sess, ev)
	if err != nil {
		e.metrics.IncPlaysRejected()
		return nil, none, err
	}

	if err := e.store.Update(sess); err != nil {
		return nil, none, fmt.Errorf("failed to persist play: %w", err)
	}
	e.metrics.IncPlaysSubmitted()
	return sess, reset, nil
}

// AdjustTeamScore applies a host-only manual score correction and records it
// in the adjustment ledger. Negative deltas are allowed; the team total may
// go below zero.
func (e *Engine) AdjustTeamScore(sessionID, actorID string, team, delta int) (*game.MatchSession, error) {
	if team != 1 && team != 2 {
		return nil, ErrBadTeam
	}

	sess, err := e.store.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := authorizeHost(sess, actorID); err != nil {
		return nil, err
	}
	if sess.Status == game.StatusFinished {
		return nil, session.ErrMatchFinished
	}

	sess.ManualAdjustments[team-1] += delta
	sess.AdjustmentHistory = append(sess.AdjustmentHistory, game.Adjustment{
		Team:      team,
		Amount:    delta,
		Timestamp: time.Now().Unix(),
	})

	if err := e.store.Update(sess); err != nil {
		return nil, fmt.Errorf("failed to persist adjustment: %w", err)
	}
	log.Info("Score adjusted", "sessionID", sessionID, "team", team, "delta", delta, "actor", actorID)
	return sess, nil
}

// ResetAdjustments zeroes both manual adjustment totals and clears the
// ledger. Host only.
func (e *Engine) ResetAdjustments(sessionID, actorID string) (*game.MatchSession, error) {
	sess, err := e.store.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := authorizeHost(sess, actorID); err != nil {
		return nil, err
	}
	if sess.Status == game.StatusFinished {
		return nil, session.ErrMatchFinished
	}

	sess.ManualAdjustments = [2]int{}
	sess.AdjustmentHistory = nil

	if err := e.store.Update(sess); err != nil {
		return nil, fmt.Errorf("failed to persist adjustment reset: %w", err)
	}
	log.Info("Adjustments reset", "sessionID", sessionID, "actor", actorID)
	return sess, nil
}

// UpdateSetup replaces the host-editable setup. Names of already-claimed
// slots are locked; an attempt to change one fails the whole update.
func (e *Engine) UpdateSetup(sessionID, actorID string, setup game.MatchSetup) (*game.MatchSession, error) {
	setup.Normalize()

	sess, err := e.store.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := authorizeHost(sess, actorID); err != nil {
		return nil, err
	}
	if sess.Status == game.StatusFinished {
		return nil, session.ErrMatchFinished
	}

	for i, uid := range sess.Slots {
		if uid != "" && setup.PlayerNames[i] != sess.Setup.PlayerNames[i] {
			return nil, ErrSetupLocked
		}
	}

	sess.Setup = setup
	for i := range sess.Stats {
		if sess.Slots[i] == "" {
			sess.Stats[i].Name = setup.PlayerNames[i]
		}
	}

	if err := e.store.Update(sess); err != nil {
		return nil, fmt.Errorf("failed to persist setup: %w", err)
	}
	return sess, nil
}

// FinishMatch derives the winner from the current team scores, marks the
// session finished and flattens it into a permanent summary. Everything after
// the finish write is best effort: a failed summary insert, fan-out or
// notification is logged but never un-finishes the match. A failed flatten
// leaves the finished session live, and calling FinishMatch again resumes
// the pipeline without recomputing the winner.
func (e *Engine) FinishMatch(sessionID string) (*session.MatchSummary, error) {
	start := time.Now()

	sess, err := e.store.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status == game.StatusFinished {
		// A finished session that is still live means an earlier flatten
		// failed after the finish write; resume it with the stored winner.
		log.Info("Resuming finish pipeline", "sessionID", sessionID, "winner", sess.Winner)
	} else {
		winner := game.WinnerTie
		switch score1, score2 := sess.TeamScore(1), sess.TeamScore(2); {
		case score1 > score2:
			winner = 1
		case score2 > score1:
			winner = 2
		}

		sess, err = e.store.SetFinished(sessionID, winner)
		if err != nil {
			return nil, fmt.Errorf("failed to finish match: %w", err)
		}
		e.metrics.IncMatchesFinished()
		log.Info("Match finished", "sessionID", sessionID, "winner", winner)
	}

	summary := buildSummary(sess)
	if err := e.store.InsertSummary(summary); err != nil {
		log.Error("Failed to store match summary", "sessionID", sessionID, "error", err)
	} else {
		for _, userID := range sess.SeatedUsers() {
			if err := e.pubsub.SendMessage(pubsub.EventRecomputeUserStats, pubsub.RecomputeUserStatsPayload{UserID: userID}); err != nil {
				log.Error("Failed to request stats recompute", "userID", userID, "error", err)
			}
		}
		if err := e.pubsub.SendMessage(pubsub.EventMatchFinished, pubsub.MatchFinishedPayload{
			SummaryID: summary.ID,
			SessionID: sessionID,
			Winner:    sess.Winner,
		}); err != nil {
			log.Error("Failed to publish match finish", "sessionID", sessionID, "error", err)
		}
		if err := e.notifier.SendResultNotification(summary, false); err != nil {
			log.Error("Failed to send result notification", "sessionID", sessionID, "error", err)
		}
		if err := e.store.Delete(sessionID); err != nil {
			log.Error("Failed to delete finished session", "sessionID", sessionID, "error", err)
		}
	}

	e.metrics.ObserveFinishDuration(time.Since(start).Seconds())
	return summary, nil
}

// authorizeHost enforces host-only operations. Guest-hosted matches have no
// host id on record, so any caller at the table is allowed.
func authorizeHost(sess *game.MatchSession, actorID string) error {
	if sess.HostID == "" {
		return nil
	}
	if actorID != sess.HostID {
		return ErrNotHost
	}
	return nil
}

// buildSummary flattens a finished session into its permanent record.
func buildSummary(sess *game.MatchSession) *session.MatchSummary {
	summary := &session.MatchSummary{
		ID:         uuid.New().String(),
		SessionID:  sess.ID,
		RoomCode:   sess.RoomCode,
		Title:      sess.Setup.Title,
		Arena:      sess.Setup.Arena,
		TeamNames:  sess.Setup.TeamNames,
		TeamScores: [2]int{sess.TeamScore(1), sess.TeamScore(2)},
		Winner:     sess.Winner,
		StartedAt:  sess.MatchStartTime,
		FinishedAt: time.Now().Unix(),
	}
	for i := range sess.Stats {
		slot := i + 1
		team := game.TeamForSlot(slot)
		summary.Players = append(summary.Players, session.SummaryPlayer{
			Slot:   slot,
			UserID: sess.Slots[i],
			Name:   sess.Stats[i].Name,
			Team:   team,
			Won:    sess.Winner == team,
			Tied:   sess.Winner == game.WinnerTie,
			Stats:  sess.Stats[i],
			Rating: game.PlayerRating(sess.Stats[i]),
		})
	}
	return summary
}
