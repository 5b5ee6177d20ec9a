package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	// EventRecomputeUserStats asks the aggregation worker to rebuild one
	// user's career stats after a match finished.
	EventRecomputeUserStats EventType = "recompute-user-stats"
	// EventMatchFinished fans out a finished match summary id.
	EventMatchFinished EventType = "match-finished"
)

// RecomputeUserStatsPayload is the body of an EventRecomputeUserStats message.
type RecomputeUserStatsPayload struct {
	UserID string `msgpack:"user_id"`
}

// MatchFinishedPayload is the body of an EventMatchFinished message.
type MatchFinishedPayload struct {
	SummaryID string `msgpack:"summary_id"`
	SessionID string `msgpack:"session_id"`
	Winner    int    `msgpack:"winner"`
}
