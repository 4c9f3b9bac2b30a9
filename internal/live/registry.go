// Subscription registry of the live update subsystem in Eventide.

package live

import (
	"sync"
)

// Registry is the process-wide mapping from event ID to the set of currently
// connected viewer channels. It owns no persistent data, its lifetime is a
// single process run.
type Registry struct {
	mu   sync.Mutex
	subs map[string]map[*Channel]struct{}
}

// Returns a new empty subscription registry.
func NewRegistry() *Registry {
	return &Registry{subs: make(map[string]map[*Channel]struct{})}
}

// Subscribe registers a viewer channel under the event it was created for,
// creating the event's channel set if this is its first viewer. A channel is
// bound to exactly one event for its whole lifetime.
func (r *Registry) Subscribe(ch *Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.subs[ch.EventID]
	if !ok {
		set = make(map[*Channel]struct{})
		r.subs[ch.EventID] = set
	}
	set[ch] = struct{}{}
}

// Unsubscribe removes a viewer channel from its event's set. Removing an
// already-absent channel is a no-op. An event whose set becomes empty is
// dropped from the registry entirely so no empty entries linger.
func (r *Registry) Unsubscribe(ch *Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.subs[ch.EventID]
	if !ok {
		return
	}
	delete(set, ch)
	if len(set) == 0 {
		delete(r.subs, ch.EventID)
	}
}

// ChannelsFor returns a snapshot of the channels currently subscribed to an
// event, or an empty slice if nobody is watching it.
func (r *Registry) ChannelsFor(eventID string) []*Channel {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := r.subs[eventID]
	channels := make([]*Channel, 0, len(set))
	for ch := range set {
		channels = append(channels, ch)
	}
	return channels
}

// Len returns the number of channels subscribed to an event.
func (r *Registry) Len(eventID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs[eventID])
}

// Events returns the number of event entries currently held by the registry.
func (r *Registry) Events() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}
