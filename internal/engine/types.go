package engine

import (
	"errors"

	"github.com/beerdie/engine/internal/identity"
	"github.com/beerdie/engine/internal/metrics"
	"github.com/beerdie/engine/internal/notifier"
	"github.com/beerdie/engine/internal/pubsub"
)

var (
	// ErrNotHost is returned when a non-host user attempts a host-only
	// operation such as a manual score adjustment.
	ErrNotHost = errors.New("engine: only the host can perform this action")
	// ErrBadTeam is returned when a team index is not 1 or 2.
	ErrBadTeam = errors.New("engine: team must be 1 or 2")
	// ErrBadSlot is returned when a slot index is not 1 through 4.
	ErrBadSlot = errors.New("engine: slot must be between 1 and 4")
	// ErrMissingUser is returned when an operation requires a user id.
	ErrMissingUser = errors.New("engine: user id is required")
	// ErrSetupLocked is returned when a setup change would rename a seat
	// that has already been claimed.
	ErrSetupLocked = errors.New("engine: cannot rename a claimed slot")
)

// Engine coordinates match lifecycle, slot claims, play scoring and manual
// adjustments on top of the session store. All mutations go through the
// store so that subscribers observe every change.
type Engine struct {
	store    Store
	identity identity.Resolver
	pubsub   pubsub.PubSubClient
	notifier notifier.Notifier
	metrics  metrics.Metrics
}

func New(store Store, ident identity.Resolver, ps pubsub.PubSubClient, notif notifier.Notifier, metr metrics.Metrics) *Engine {
	return &Engine{
		store:    store,
		identity: ident,
		pubsub:   ps,
		notifier: notif,
		metrics:  metr,
	}
}
