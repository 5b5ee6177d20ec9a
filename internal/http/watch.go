package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/beerdie/engine/internal/game"
	"github.com/beerdie/engine/internal/throttle"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The scoreboard is shared by room code, not by origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WatchHandler streams live session updates over a websocket. Each
// connection gets its own throttle controller so a burst of plays reaches
// the client as at most one frame per interval, always carrying the
// freshest snapshot. The client picks its own freshness with the interval
// query parameter.
func (s *Server) WatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("id")
		if sessionID == "" {
			http.Error(w, "id query parameter is required", http.StatusBadRequest)
			return
		}

		interval := s.Cfg.BroadcastInterval
		if intervalStr := r.URL.Query().Get("interval"); intervalStr != "" {
			parsed, err := time.ParseDuration(intervalStr)
			if err != nil || parsed <= 0 {
				http.Error(w, "Invalid interval parameter", http.StatusBadRequest)
				return
			}
			interval = parsed
		}

		sess, err := s.Engine.Get(sessionID)
		if err != nil {
			respondError(w, err)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error("Failed to upgrade watch connection", "sessionID", sessionID, "error", err)
			return
		}
		defer conn.Close()

		// The controller's apply can run from a timer goroutine while an
		// Offer delivers directly; gorilla allows only one writer at a time.
		var writeMu sync.Mutex
		writeSession := func(payload *game.MatchSession) {
			writeMu.Lock()
			defer writeMu.Unlock()
			if err := conn.WriteJSON(payload); err != nil {
				log.Debug("Watch write failed, client likely gone", "sessionID", sessionID, "error", err)
			}
		}

		ctrl := throttle.New(interval, writeSession)
		defer ctrl.Stop()

		unsubscribe := s.Sessions.Subscribe(sessionID, ctrl.Offer)
		defer unsubscribe()

		// Initial snapshot goes out immediately; it also starts the
		// controller's interval clock.
		ctrl.Offer(sess)

		log.Info("Watch started", "sessionID", sessionID, "interval", interval)

		// Reads only serve to detect disconnects; clients do not send
		// anything meaningful upstream.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				log.Info("Watch ended", "sessionID", sessionID)
				return
			}
		}
	}
}
