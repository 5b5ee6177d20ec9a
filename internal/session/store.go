package session

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/beerdie/engine/internal/game"
)

// New creates a new session Store backed by the given database.
func New(db *sql.DB) Store {
	return &store{
		db:   db,
		subs: make(map[string]map[int]func(*game.MatchSession)),
	}
}

const sessionColumns = `id, room_code, host_id, status, setup_json, participants_json,
	slot1, slot2, slot3, slot4, stats_json,
	team1_penalty, team2_penalty, team1_adjustment, team2_adjustment,
	adjustments_json, match_start_time, winner`

func (s *store) Insert(sess *game.MatchSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	setupJSON, participantsJSON, statsJSON, adjustmentsJSON, err := marshalBlobs(sess)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.RoomCode, sess.HostID, sess.Status, setupJSON, participantsJSON,
		sess.Slots[0], sess.Slots[1], sess.Slots[2], sess.Slots[3], statsJSON,
		sess.TeamPenalties[0], sess.TeamPenalties[1], sess.ManualAdjustments[0], sess.ManualAdjustments[1],
		adjustmentsJSON, sess.MatchStartTime, sess.Winner,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	s.notify(sess)
	return nil
}

// Update writes the entire record back in one statement. Concurrent writers
// are serialized here; the last committed write wins wholesale.
func (s *store) Update(sess *game.MatchSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	setupJSON, participantsJSON, statsJSON, adjustmentsJSON, err := marshalBlobs(sess)
	if err != nil {
		return err
	}

	res, err := s.db.Exec(`
		UPDATE sessions SET
			room_code = ?, host_id = ?, status = ?, setup_json = ?, participants_json = ?,
			slot1 = ?, slot2 = ?, slot3 = ?, slot4 = ?, stats_json = ?,
			team1_penalty = ?, team2_penalty = ?, team1_adjustment = ?, team2_adjustment = ?,
			adjustments_json = ?, match_start_time = ?, winner = ?
		WHERE id = ?`,
		sess.RoomCode, sess.HostID, sess.Status, setupJSON, participantsJSON,
		sess.Slots[0], sess.Slots[1], sess.Slots[2], sess.Slots[3], statsJSON,
		sess.TeamPenalties[0], sess.TeamPenalties[1], sess.ManualAdjustments[0], sess.ManualAdjustments[1],
		adjustmentsJSON, sess.MatchStartTime, sess.Winner,
		sess.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	s.notify(sess)
	return nil
}

func (s *store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec("DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *store) Get(id string) (*game.MatchSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRow("SELECT "+sessionColumns+" FROM sessions WHERE id = ?", id)
	return scanSession(row)
}

func (s *store) FindByRoomCode(code string, statusFilter game.MatchStatus) (*game.MatchSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var row *sql.Row
	if statusFilter == "" {
		row = s.db.QueryRow("SELECT "+sessionColumns+" FROM sessions WHERE room_code = ?", code)
	} else {
		row = s.db.QueryRow("SELECT "+sessionColumns+" FROM sessions WHERE room_code = ? AND status = ?", code, statusFilter)
	}
	return scanSession(row)
}

// ClaimSlot seats a user with a conditional write. The slot column update
// only succeeds while the slot is still empty or already holds this user,
// so two clients racing for the same seat cannot both win.
func (s *store) ClaimSlot(id string, slot int, userID, displayName string) (*game.MatchSession, error) {
	if slot < 1 || slot > 4 {
		return nil, fmt.Errorf("slot %d out of range", slot)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	sess, err := scanSession(tx.QueryRow("SELECT "+sessionColumns+" FROM sessions WHERE id = ?", id))
	if err != nil {
		return nil, err
	}
	if sess.Status == game.StatusFinished {
		return nil, ErrMatchFinished
	}

	current := sess.Slots[slot-1]
	if current != "" && current != userID {
		return nil, ErrSlotTaken
	}
	if other := sess.SlotOf(userID); other != 0 && other != slot {
		return nil, ErrAlreadyAssigned
	}
	if current == userID {
		// Re-claiming one's own seat is a no-op success.
		return sess, nil
	}

	sess.Slots[slot-1] = userID
	if !sess.HasParticipant(userID) {
		sess.Participants = append(sess.Participants, userID)
	}
	sess.Setup.PlayerNames[slot-1] = displayName
	// A host-entered name on the stat line outranks the claimer's profile
	// name; the claim only fills seats that were left blank.
	if sess.Stats[slot-1].Name == "" {
		sess.Stats[slot-1].Name = displayName
	}

	setupJSON, participantsJSON, statsJSON, _, err := marshalBlobs(sess)
	if err != nil {
		return nil, err
	}

	slotCol := fmt.Sprintf("slot%d", slot)
	res, err := tx.Exec(`
		UPDATE sessions SET `+slotCol+` = ?, setup_json = ?, participants_json = ?, stats_json = ?
		WHERE id = ? AND (`+slotCol+` = '' OR `+slotCol+` = ?)`,
		userID, setupJSON, participantsJSON, statsJSON, id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to claim slot: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Another writer got the seat between our read and our write.
		return nil, ErrSlotTaken
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Info("Slot claimed", "sessionID", id, "slot", slot, "userID", userID)
	s.notify(sess)
	return sess, nil
}

func (s *store) SetFinished(id string, winner int) (*game.MatchSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("UPDATE sessions SET status = ?, winner = ? WHERE id = ?", game.StatusFinished, winner, id)
	if err != nil {
		return nil, fmt.Errorf("failed to finish session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	sess, err := scanSession(s.db.QueryRow("SELECT "+sessionColumns+" FROM sessions WHERE id = ?", id))
	if err != nil {
		return nil, err
	}
	s.notify(sess)
	return sess, nil
}

// Subscribe registers a change callback. Callbacks run synchronously on the
// writer's notify path and must return quickly; the throttle controller is
// the intended consumer.
func (s *store) Subscribe(id string, onChange func(*game.MatchSession)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	if s.subs[id] == nil {
		s.subs[id] = make(map[int]func(*game.MatchSession))
	}
	s.nextSub++
	token := s.nextSub
	s.subs[id][token] = onChange

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs[id], token)
		if len(s.subs[id]) == 0 {
			delete(s.subs, id)
		}
	}
}

func (s *store) notify(sess *game.MatchSession) {
	s.subMu.Lock()
	callbacks := make([]func(*game.MatchSession), 0, len(s.subs[sess.ID]))
	for _, cb := range s.subs[sess.ID] {
		callbacks = append(callbacks, cb)
	}
	s.subMu.Unlock()

	for _, cb := range callbacks {
		cb(sess.Clone())
	}
}

func marshalBlobs(sess *game.MatchSession) (setup, participants, stats, adjustments []byte, err error) {
	if setup, err = json.Marshal(sess.Setup); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to marshal setup: %w", err)
	}
	if participants, err = json.Marshal(sess.Participants); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to marshal participants: %w", err)
	}
	if stats, err = json.Marshal(sess.Stats); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to marshal stats: %w", err)
	}
	if adjustments, err = json.Marshal(sess.AdjustmentHistory); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to marshal adjustments: %w", err)
	}
	return setup, participants, stats, adjustments, nil
}

func scanSession(scanner interface{ Scan(...any) error }) (*game.MatchSession, error) {
	var sess game.MatchSession
	var setupJSON, participantsJSON, statsJSON, adjustmentsJSON sql.NullString

	err := scanner.Scan(
		&sess.ID, &sess.RoomCode, &sess.HostID, &sess.Status, &setupJSON, &participantsJSON,
		&sess.Slots[0], &sess.Slots[1], &sess.Slots[2], &sess.Slots[3], &statsJSON,
		&sess.TeamPenalties[0], &sess.TeamPenalties[1], &sess.ManualAdjustments[0], &sess.ManualAdjustments[1],
		&adjustmentsJSON, &sess.MatchStartTime, &sess.Winner,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if setupJSON.Valid && setupJSON.String != "" {
		if err := json.Unmarshal([]byte(setupJSON.String), &sess.Setup); err != nil {
			log.Error("Failed to unmarshal setup_json", "error", err, "sessionID", sess.ID)
		}
	}
	if participantsJSON.Valid && participantsJSON.String != "" {
		if err := json.Unmarshal([]byte(participantsJSON.String), &sess.Participants); err != nil {
			log.Error("Failed to unmarshal participants_json", "error", err, "sessionID", sess.ID)
		}
	}
	if statsJSON.Valid && statsJSON.String != "" {
		if err := json.Unmarshal([]byte(statsJSON.String), &sess.Stats); err != nil {
			log.Error("Failed to unmarshal stats_json", "error", err, "sessionID", sess.ID)
		}
	}
	if adjustmentsJSON.Valid && adjustmentsJSON.String != "" {
		if err := json.Unmarshal([]byte(adjustmentsJSON.String), &sess.AdjustmentHistory); err != nil {
			log.Error("Failed to unmarshal adjustments_json", "error", err, "sessionID", sess.ID)
		}
	}
	return &sess, nil
}

func (s *store) InsertSummary(summary *MatchSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	playersJSON, err := json.Marshal(summary.Players)
	if err != nil {
		return fmt.Errorf("failed to marshal summary players: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO match_summaries (id, session_id, room_code, title, arena, team1_name, team2_name,
			team1_score, team2_score, winner, started_at, finished_at, players_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.ID, summary.SessionID, summary.RoomCode, summary.Title, summary.Arena,
		summary.TeamNames[0], summary.TeamNames[1],
		summary.TeamScores[0], summary.TeamScores[1], summary.Winner,
		summary.StartedAt, summary.FinishedAt, playersJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to insert summary: %w", err)
	}

	for _, p := range summary.Players {
		_, err = tx.Exec(`
			INSERT INTO summary_players (summary_id, slot, user_id, name, team, won, tied,
				score, throws, hits, catches, blunders, fifa_attempts, fifa_success, rating)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			summary.ID, p.Slot, p.UserID, p.Name, p.Team, p.Won, p.Tied,
			p.Stats.Score, p.Stats.Throws, p.Stats.Hits, p.Stats.Catches, p.Stats.Blunders,
			p.Stats.FifaAttempts, p.Stats.FifaSuccess, p.Rating,
		)
		if err != nil {
			return fmt.Errorf("failed to insert summary player: %w", err)
		}
	}

	return tx.Commit()
}

func (s *store) GetSummaries(limit int) ([]*MatchSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, session_id, room_code, title, arena, team1_name, team2_name,
			team1_score, team2_score, winner, started_at, finished_at, players_json
		FROM match_summaries ORDER BY finished_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []*MatchSummary
	for rows.Next() {
		var sum MatchSummary
		var playersJSON sql.NullString
		err := rows.Scan(
			&sum.ID, &sum.SessionID, &sum.RoomCode, &sum.Title, &sum.Arena,
			&sum.TeamNames[0], &sum.TeamNames[1],
			&sum.TeamScores[0], &sum.TeamScores[1], &sum.Winner,
			&sum.StartedAt, &sum.FinishedAt, &playersJSON,
		)
		if err != nil {
			log.Error("Failed to scan summary row", "error", err)
			continue
		}
		if playersJSON.Valid && playersJSON.String != "" {
			if err := json.Unmarshal([]byte(playersJSON.String), &sum.Players); err != nil {
				log.Error("Failed to unmarshal players_json", "error", err, "summaryID", sum.ID)
			}
		}
		summaries = append(summaries, &sum)
	}
	return summaries, nil
}
