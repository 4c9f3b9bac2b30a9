// Viewer channel primitive of the live update subsystem in Eventide.

package live

import (
	"sync"
)

// Number of frames a viewer channel buffers before pushes start getting dropped.
// Keeps one stalled viewer from delaying broadcasts to everyone else.
const channelBuffer = 16

// PushStatus classifies the outcome of a push attempt on a viewer channel.
type PushStatus int

const (
	// PushDelivered means the frame was enqueued for the viewer.
	PushDelivered PushStatus = iota
	// PushClosed means the viewer's transport is gone, the channel must be pruned.
	PushClosed
	// PushDropped means the viewer's buffer was full, this frame was skipped for them.
	PushDropped
)

// Channel is one long-lived, one-directional push connection from the server
// to a single viewer of one event's page. Only the transport handler which
// created a Channel is allowed to close it.
type Channel struct {
	// ID of the event this viewer is watching.
	EventID string

	mu     sync.Mutex
	closed bool
	frames chan []byte
}

// Returns a new viewer channel scoped to one event.
func NewChannel(eventID string) *Channel {
	return &Channel{
		EventID: eventID,
		frames:  make(chan []byte, channelBuffer),
	}
}

// Frames exposes the receive side of the channel to the transport handler.
func (c *Channel) Frames() <-chan []byte {
	return c.frames
}

// Push enqueues one serialized frame for the viewer without ever blocking.
// The returned status lets the dispatcher decide whether to prune the channel.
func (c *Channel) Push(frame []byte) PushStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return PushClosed
	}
	select {
	case c.frames <- frame:
		return PushDelivered
	default:
		// Viewer isn't draining its buffer, skip this frame for them
		return PushDropped
	}
}

// Close marks the channel dead and releases the transport handler's read loop.
// Safe to call more than once.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.frames)
}
