package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/beerdie/engine/internal/engine"
	"github.com/beerdie/engine/internal/game"
	"github.com/beerdie/engine/internal/pubsub"
	"github.com/beerdie/engine/internal/session"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

// respondJSON writes v as the JSON response body.
func respondJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}

// respondError maps domain errors to HTTP status codes.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrSlotTaken), errors.Is(err, session.ErrAlreadyAssigned):
		status = http.StatusConflict
	case errors.Is(err, session.ErrMatchFinished):
		status = http.StatusConflict
	case errors.Is(err, engine.ErrNotHost):
		status = http.StatusForbidden
	case errors.Is(err, engine.ErrBadSlot), errors.Is(err, engine.ErrBadTeam),
		errors.Is(err, engine.ErrMissingUser), errors.Is(err, engine.ErrSetupLocked):
		status = http.StatusBadRequest
	case errors.Is(err, game.ErrMissingThrower), errors.Is(err, game.ErrMissingResult),
		errors.Is(err, game.ErrUnknownResult), errors.Is(err, game.ErrMissingDefender),
		errors.Is(err, game.ErrFifaWithoutSlot), errors.Is(err, game.ErrFifaOnValidThrow),
		errors.Is(err, game.ErrBadSlot):
		status = http.StatusBadRequest
	}
	http.Error(w, err.Error(), status)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.Error("Failed to decode request body", "error", err)
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) CreateMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Setup  game.MatchSetup `json:"setup"`
			HostID string          `json:"host_id"`
		}
		if !decodeBody(w, r, &req) {
			return
		}

		sess, err := s.Engine.CreateMatch(req.Setup, req.HostID)
		if err != nil {
			log.Error("Failed to create match", "error", err)
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
		respondJSON(w, sess)
	}
}

// GetMatchHandler serves a live session by id or by room code.
func (s *Server) GetMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			sess *game.MatchSession
			err  error
		)
		if id := r.URL.Query().Get("id"); id != "" {
			sess, err = s.Engine.Get(id)
		} else if code := r.URL.Query().Get("code"); code != "" {
			sess, err = s.Engine.FindByRoomCode(code)
		} else {
			http.Error(w, "id or code query parameter is required", http.StatusBadRequest)
			return
		}
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, sess)
	}
}

func (s *Server) ClaimSlotHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SessionID string `json:"session_id"`
			Slot      int    `json:"slot"`
			UserID    string `json:"user_id"`
		}
		if !decodeBody(w, r, &req) {
			return
		}

		sess, err := s.Engine.ClaimSlot(req.SessionID, req.Slot, req.UserID)
		if err != nil {
			log.Warn("Slot claim refused", "sessionID", req.SessionID, "slot", req.Slot, "error", err)
			respondError(w, err)
			return
		}
		respondJSON(w, sess)
	}
}

func (s *Server) SubmitPlayHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SessionID string         `json:"session_id"`
			Play      game.PlayEvent `json:"play"`
		}
		if !decodeBody(w, r, &req) {
			return
		}

		sess, reset, err := s.Engine.SubmitPlay(req.SessionID, req.Play)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, struct {
			Session *game.MatchSession  `json:"session"`
			Reset   game.SelectionReset `json:"reset"`
		}{sess, reset})
	}
}

func (s *Server) AdjustScoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SessionID string `json:"session_id"`
			ActorID   string `json:"actor_id"`
			Team      int    `json:"team"`
			Delta     int    `json:"delta"`
		}
		if !decodeBody(w, r, &req) {
			return
		}

		sess, err := s.Engine.AdjustTeamScore(req.SessionID, req.ActorID, req.Team, req.Delta)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, sess)
	}
}

func (s *Server) ResetAdjustmentsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SessionID string `json:"session_id"`
			ActorID   string `json:"actor_id"`
		}
		if !decodeBody(w, r, &req) {
			return
		}

		sess, err := s.Engine.ResetAdjustments(req.SessionID, req.ActorID)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, sess)
	}
}

func (s *Server) UpdateSetupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SessionID string          `json:"session_id"`
			ActorID   string          `json:"actor_id"`
			Setup     game.MatchSetup `json:"setup"`
		}
		if !decodeBody(w, r, &req) {
			return
		}

		sess, err := s.Engine.UpdateSetup(req.SessionID, req.ActorID, req.Setup)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, sess)
	}
}

func (s *Server) FinishMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SessionID string `json:"session_id"`
		}
		if !decodeBody(w, r, &req) {
			return
		}

		summary, err := s.Engine.FinishMatch(req.SessionID)
		if err != nil {
			log.Error("Failed to finish match", "sessionID", req.SessionID, "error", err)
			respondError(w, err)
			return
		}
		respondJSON(w, summary)
	}
}

// LeaderboardHandler serves the career leaderboard as JSON.
func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 10
		if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
			parsed, err := strconv.Atoi(limitStr)
			if err != nil || parsed <= 0 {
				http.Error(w, "Invalid limit parameter", http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		board, err := s.Stats.Leaderboard(limit)
		if err != nil {
			http.Error(w, "Failed to get leaderboard", http.StatusInternalServerError)
			log.Error("Failed to get leaderboard", "error", err)
			return
		}
		respondJSON(w, board)
	}
}

// MatchHistoryHandler serves the most recent flattened match summaries.
func (s *Server) MatchHistoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 20
		if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
			parsed, err := strconv.Atoi(limitStr)
			if err != nil || parsed <= 0 {
				http.Error(w, "Invalid limit parameter", http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		summaries, err := s.Sessions.GetSummaries(limit)
		if err != nil {
			http.Error(w, "Failed to get match history", http.StatusInternalServerError)
			log.Error("Failed to get match history", "error", err)
			return
		}
		respondJSON(w, summaries)
	}
}

// NotifyLeaderboardHandler posts the career leaderboard to the notifier.
func (s *Server) NotifyLeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		isDryRun := isDryRunFromContext(r)

		board, err := s.Stats.Leaderboard(10)
		if err != nil {
			http.Error(w, "Failed to get leaderboard", http.StatusInternalServerError)
			log.Error("Failed to get leaderboard", "error", err)
			return
		}
		if err := s.Notifier.SendLeaderboard(board, isDryRun); err != nil {
			http.Error(w, "Failed to send leaderboard", http.StatusInternalServerError)
			log.Error("Failed to send leaderboard", "error", err)
			return
		}
		w.Write([]byte("OK"))
	}
}

func (s *Server) PlayerStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			http.Error(w, "user_id query parameter is required", http.StatusBadRequest)
			return
		}

		userStats, err := s.Stats.GetUserStats(userID)
		if err != nil {
			http.Error(w, "Failed to get user stats", http.StatusInternalServerError)
			log.Error("Failed to get user stats", "userID", userID, "error", err)
			return
		}
		respondJSON(w, userStats)
	}
}

// RecomputeStatsHandler is the Pub/Sub push endpoint for stat recomputes.
// The push envelope wraps a base64-encoded MessagePack payload.
func (s *Server) RecomputeStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received recompute stats message", "body", string(bodyBytes))

		var pubsubMsg struct {
			Subscription string `json:"subscription"`
			Message      struct {
				Data string `json:"data"` // base64-encoded message payload
			} `json:"message"`
		}
		if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}

		payload := pubsub.RecomputeUserStatsPayload{}
		if err := s.pubsub.ProcessMessage(rawData, &payload); err != nil {
			log.Error("Failed to decode payload", "error", err)
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		if err := s.Stats.RecomputeUserStats(payload.UserID); err != nil {
			log.Error("Failed to recompute user stats", "userID", payload.UserID, "error", err)
			http.Error(w, "Failed to recompute stats", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}
