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

type Server struct {
	Sessions       session.Store
	Engine         *engine.Engine
	Stats          stats.Aggregator
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Notifier       notifier.Notifier
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}
