package http

import (
	"net/http"

	"github.com/beerdie/engine/internal/config"
	"github.com/beerdie/engine/internal/engine"
	"github.com/beerdie/engine/internal/metrics"
	"github.com/beerdie/engine/internal/notifier"
	"github.com/beerdie/engine/internal/pubsub"
	"github.com/beerdie/engine/internal/session"
	"github.com/beerdie/engine/internal/stats"
)

func NewServer(sessions session.Store, eng *engine.Engine, aggregator stats.Aggregator, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, notifier notifier.Notifier, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Sessions:       sessions,
		Engine:         eng,
		Stats:          aggregator,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Notifier:       notifier,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// This makes it easy to add more middlewares in the future, like an authentication middleware.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/match/create", Chain(s.CreateMatchHandler(), paramsMiddleware))
	s.Router.Handle("/match", Chain(s.GetMatchHandler(), paramsMiddleware))
	s.Router.Handle("/match/claim", Chain(s.ClaimSlotHandler(), paramsMiddleware))
	s.Router.Handle("/match/throw", Chain(s.SubmitPlayHandler(), paramsMiddleware))
	s.Router.Handle("/match/adjust", Chain(s.AdjustScoreHandler(), paramsMiddleware))
	s.Router.Handle("/match/adjust/reset", Chain(s.ResetAdjustmentsHandler(), paramsMiddleware))
	s.Router.Handle("/match/setup", Chain(s.UpdateSetupHandler(), paramsMiddleware))
	s.Router.Handle("/match/finish", Chain(s.FinishMatchHandler(), paramsMiddleware))
	s.Router.Handle("/match/watch", s.WatchHandler())
	s.Router.Handle("/matches", Chain(s.MatchHistoryHandler(), paramsMiddleware))
	s.Router.Handle("/leaderboard", Chain(s.LeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("/notify-leaderboard", Chain(s.NotifyLeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("/player-stats", Chain(s.PlayerStatsHandler(), paramsMiddleware))
	s.Router.Handle("/pubsub/recompute-stats", Chain(s.RecomputeStatsHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
