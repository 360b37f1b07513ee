package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/admin-console-api/internal/events"
)

// Collections that can be invalidated
const (
	CollectionUsers = "users"
)

// Invalidation signals that a collection snapshot is stale
type Invalidation struct {
	Collection string    `json:"collection"`
	Reason     string    `json:"reason"`
	At         time.Time `json:"at"`
}

// Invalidator drops cached snapshots after a write and tells subscribers to reload
type Invalidator struct {
	snapshots SnapshotCache
	hub       *events.Hub[Invalidation]
	log       zerolog.Logger
	now       func() time.Time
}

// NewInvalidator creates an invalidator over the snapshot cache
func NewInvalidator(snapshots SnapshotCache, log zerolog.Logger) *Invalidator {
	return &Invalidator{
		snapshots: snapshots,
		hub:       events.NewHub[Invalidation](events.DefaultBuffer),
		log:       log.With().Str("service", "invalidator").Logger(),
		now:       time.Now,
	}
}

// Invalidate deletes the snapshot of collection and broadcasts the signal.
// A failed delete is logged; readers that reload with refresh still see fresh data.
func (i *Invalidator) Invalidate(ctx context.Context, collection, reason string) Invalidation {
	if err := i.snapshots.Delete(ctx, collection); err != nil {
		i.log.Warn().Err(err).Str("collection", collection).Msg("Failed to drop snapshot")
	}

	inv := Invalidation{Collection: collection, Reason: reason, At: i.now()}
	delivered := i.hub.Publish(inv)
	i.log.Debug().
		Str("collection", collection).
		Str("reason", reason).
		Int("subscribers", delivered).
		Msg("Snapshot invalidated")
	return inv
}

// Subscribe streams invalidations until cancel is called
func (i *Invalidator) Subscribe() (<-chan Invalidation, func()) {
	return i.hub.Subscribe()
}

// Close ends every subscription
func (i *Invalidator) Close() {
	i.hub.Close()
}
