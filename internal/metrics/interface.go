package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the rest of the engine from the concrete metrics backend.
type Metrics interface {
	IncMatchesStarted()
	IncMatchesFinished()
	ObserveFinishDuration(seconds float64)
	IncPlaysSubmitted()
	IncPlaysRejected()
	IncSlotClaims()
	IncClaimConflicts()
	IncNotifSent()
	IncNotifFailed()
	SetStartupTime(seconds float64)
}
