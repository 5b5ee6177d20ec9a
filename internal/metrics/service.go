package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		MatchesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beerdie_matches_started_total",
			Help: "The total number of live matches started.",
		}),
		MatchesFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beerdie_matches_finished_total",
			Help: "The total number of matches finished and summarized.",
		}),
		FinishDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "beerdie_match_finish_duration_seconds",
			Help:    "The duration of the finish sequence, summary write included.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		PlaysSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beerdie_plays_submitted_total",
			Help: "The total number of plays applied to a live session.",
		}),
		PlaysRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beerdie_plays_rejected_total",
			Help: "The total number of plays rejected by validation.",
		}),
		SlotClaims: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beerdie_slot_claims_total",
			Help: "The total number of successful slot claims.",
		}),
		ClaimConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beerdie_slot_claim_conflicts_total",
			Help: "The total number of slot claims lost to another player.",
		}),
		NotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beerdie_notifications_sent_total",
			Help: "The total number of result notifications successfully sent.",
		}),
		NotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beerdie_notifications_failed_total",
			Help: "The total number of result notifications that failed to send.",
		}),
		StartupSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "beerdie_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.MatchesStarted,
		s.MatchesFinished,
		s.FinishDuration,
		s.PlaysSubmitted,
		s.PlaysRejected,
		s.SlotClaims,
		s.ClaimConflicts,
		s.NotifSent,
		s.NotifFailed,
		s.StartupSeconds,
	)

	return s
}

func (s *Service) IncMatchesStarted()  { s.MatchesStarted.Inc() }
func (s *Service) IncMatchesFinished() { s.MatchesFinished.Inc() }

func (s *Service) ObserveFinishDuration(seconds float64) {
	s.FinishDuration.Observe(seconds)
}

func (s *Service) IncPlaysSubmitted() { s.PlaysSubmitted.Inc() }
func (s *Service) IncPlaysRejected()  { s.PlaysRejected.Inc() }
func (s *Service) IncSlotClaims()     { s.SlotClaims.Inc() }
func (s *Service) IncClaimConflicts() { s.ClaimConflicts.Inc() }
func (s *Service) IncNotifSent()      { s.NotifSent.Inc() }
func (s *Service) IncNotifFailed()    { s.NotifFailed.Inc() }

func (s *Service) SetStartupTime(seconds float64) {
	s.StartupSeconds.Set(seconds)
}
