package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service is the Prometheus-backed Metrics implementation.
type Service struct {
	MatchesStarted  prometheus.Counter
	MatchesFinished prometheus.Counter
	FinishDuration  prometheus.Histogram
	PlaysSubmitted  prometheus.Counter
	PlaysRejected   prometheus.Counter
	SlotClaims      prometheus.Counter
	ClaimConflicts  prometheus.Counter
	NotifSent       prometheus.Counter
	NotifFailed     prometheus.Counter
	StartupSeconds  prometheus.Gauge
}
