// Broadcast dispatcher of the live update subsystem in Eventide.

package live

import (
	"Eventide/internal/entity"
	"Eventide/pkg/log"
	"context"
	"encoding/json"
	"sync"
)

// Dispatcher fans out live frames to every viewer channel subscribed to an
// event, pruning channels whose transport turns out to be closed.
type Dispatcher struct {
	registry *Registry
	// One lock per event ID serializes the fetch-and-push phase, so two
	// broadcasts for the same event reach every viewer in issue order.
	locks  sync.Map
	logger log.Logger
}

// Returns a new dispatcher fanning out over the given registry.
func NewDispatcher(registry *Registry, logger log.Logger) *Dispatcher {
	return &Dispatcher{registry: registry, logger: logger}
}

// Broadcast serializes the frame once and pushes it to every channel
// subscribed to the event. Broadcasting to an event nobody is watching is a
// normal, silent case. Channels reporting a closed transport are removed from
// the registry after all pushes were attempted. Delivery is best-effort,
// Broadcast never reports failure to mutation callers.
func (d *Dispatcher) Broadcast(ctx context.Context, eventID string, frame entity.LiveFrame) {
	data, mrsherr := json.Marshal(frame)
	if mrsherr != nil {
		d.logger.WithCtx(ctx).Error().Err(mrsherr).Msgf("Couldn't serialize %s frame for event %s", frame.Type, eventID)
		return
	}

	mu := d.lockFor(eventID)
	mu.Lock()
	defer mu.Unlock()

	channels := d.registry.ChannelsFor(eventID)
	if len(channels) == 0 {
		// Nobody is viewing this event right now. The lock entry stays: removing
		// it while another broadcast holds the mutex would alias a second mutex
		// for the same event and let two dispatch phases interleave.
		return
	}

	var dead []*Channel
	for _, ch := range channels {
		switch ch.Push(data) {
		case PushClosed:
			dead = append(dead, ch)
		case PushDropped:
			d.logger.WithCtx(ctx).Warn().Msgf("Dropped %s frame for a slow viewer of event %s", frame.Type, eventID)
		}
	}
	for _, ch := range dead {
		d.registry.Unsubscribe(ch)
	}
	if len(dead) != 0 {
		d.logger.WithCtx(ctx).Info().Msgf("Pruned %d dead viewer channel(s) of event %s", len(dead), eventID)
	}
}

// lockFor returns the dispatch lock of an event, creating it on first use.
// The same event always maps to the same mutex for the process lifetime.
func (d *Dispatcher) lockFor(eventID string) *sync.Mutex {
	mu, _ := d.locks.LoadOrStore(eventID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
