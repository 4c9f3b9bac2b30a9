// Broadcast dispatcher tests in Eventide.

package live

import (
	"Eventide/internal/entity"
	"Eventide/pkg/log"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Decodes the next buffered frame of a channel, failing the test when none is there.
func nextFrame(t *testing.T, ch *Channel) entity.LiveFrame {
	t.Helper()
	var frame entity.LiveFrame
	select {
	case data := <-ch.Frames():
		require.NoError(t, json.Unmarshal(data, &frame))
	default:
		t.Fatal("Expected a buffered frame but the channel is empty")
	}
	return frame
}

func TestBroadcastToNobodyIsSilent(t *testing.T) {
	registry := NewRegistry()
	dispatcher := NewDispatcher(registry, log.New("test"))

	assert.NotPanics(t, func() {
		dispatcher.Broadcast(context.Background(), "ev1", entity.LiveFrame{Type: entity.FrameDelete, EventID: "ev1"})
	})
	assert.Equal(t, 0, registry.Events())
}

func TestBroadcastDeliversToEveryViewer(t *testing.T) {
	registry := NewRegistry()
	dispatcher := NewDispatcher(registry, log.New("test"))
	one, two, three := NewChannel("ev1"), NewChannel("ev1"), NewChannel("ev1")
	registry.Subscribe(one)
	registry.Subscribe(two)
	registry.Subscribe(three)

	event := entity.Event{ID: "ev1", Name: "GopherMeet"}
	dispatcher.Broadcast(context.Background(), "ev1", entity.LiveFrame{
		Type:   entity.FrameAttendance,
		Event:  &event,
		Action: entity.ActionRegister,
		UserID: "alice",
	})

	for _, ch := range []*Channel{one, two, three} {
		frame := nextFrame(t, ch)
		assert.Equal(t, entity.FrameAttendance, frame.Type)
		assert.Equal(t, entity.ActionRegister, frame.Action)
		assert.Equal(t, "alice", frame.UserID)
		require.NotNil(t, frame.Event)
		assert.Equal(t, "GopherMeet", frame.Event.Name)
	}
}

func TestBroadcastSkipsOtherEvents(t *testing.T) {
	registry := NewRegistry()
	dispatcher := NewDispatcher(registry, log.New("test"))
	watching, elsewhere := NewChannel("ev1"), NewChannel("ev2")
	registry.Subscribe(watching)
	registry.Subscribe(elsewhere)

	dispatcher.Broadcast(context.Background(), "ev1", entity.LiveFrame{Type: entity.FrameDelete, EventID: "ev1"})

	assert.Len(t, watching.Frames(), 1)
	assert.Len(t, elsewhere.Frames(), 0)
}

func TestBroadcastPrunesClosedChannels(t *testing.T) {
	registry := NewRegistry()
	dispatcher := NewDispatcher(registry, log.New("test"))
	alive1, dead, alive2 := NewChannel("ev1"), NewChannel("ev1"), NewChannel("ev1")
	registry.Subscribe(alive1)
	registry.Subscribe(dead)
	registry.Subscribe(alive2)
	dead.Close()

	dispatcher.Broadcast(context.Background(), "ev1", entity.LiveFrame{Type: entity.FrameDelete, EventID: "ev1"})

	// The live viewers got the frame, the dead one lost its subscription
	assert.Equal(t, entity.FrameDelete, nextFrame(t, alive1).Type)
	assert.Equal(t, entity.FrameDelete, nextFrame(t, alive2).Type)
	assert.Equal(t, 2, registry.Len("ev1"))
	assert.NotContains(t, registry.ChannelsFor("ev1"), dead)
}

func TestBroadcastOrderPerEvent(t *testing.T) {
	registry := NewRegistry()
	dispatcher := NewDispatcher(registry, log.New("test"))
	ch := NewChannel("ev1")
	registry.Subscribe(ch)

	dispatcher.Broadcast(context.Background(), "ev1", entity.LiveFrame{Type: entity.FrameUpdate, Event: &entity.Event{ID: "ev1"}})
	dispatcher.Broadcast(context.Background(), "ev1", entity.LiveFrame{Type: entity.FrameDelete, EventID: "ev1"})

	// Frames arrive in the order they were issued
	assert.Equal(t, entity.FrameUpdate, nextFrame(t, ch).Type)
	assert.Equal(t, entity.FrameDelete, nextFrame(t, ch).Type)
}

func TestDispatchLockStableAcrossEmptyBroadcast(t *testing.T) {
	registry := NewRegistry()
	dispatcher := NewDispatcher(registry, log.New("test"))

	// A broadcast to an empty event must not replace the event's dispatch
	// lock, otherwise two later broadcasts could serialize on different
	// mutexes and interleave their fetch-and-push phases.
	before := dispatcher.lockFor("ev1")
	dispatcher.Broadcast(context.Background(), "ev1", entity.LiveFrame{Type: entity.FrameDelete, EventID: "ev1"})
	after := dispatcher.lockFor("ev1")
	assert.Same(t, before, after)
}

func TestBroadcastWaitsForDispatchLock(t *testing.T) {
	registry := NewRegistry()
	dispatcher := NewDispatcher(registry, log.New("test"))
	ch := NewChannel("ev1")
	registry.Subscribe(ch)

	// Hold the event's dispatch lock and fire a broadcast from the side,
	// like an in-flight broadcast of the same event would
	mu := dispatcher.lockFor("ev1")
	mu.Lock()
	done := make(chan struct{})
	go func() {
		defer close(done)
		dispatcher.Broadcast(context.Background(), "ev1", entity.LiveFrame{Type: entity.FrameDelete, EventID: "ev1"})
	}()

	// Nothing may reach the viewer while the lock is held
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, ch.Frames(), 0)

	mu.Unlock()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Broadcast never acquired the dispatch lock")
	}
	assert.Len(t, ch.Frames(), 1)
}

func TestNotifierBroadcastsThroughDispatcher(t *testing.T) {
	registry := NewRegistry()
	dispatcher := NewDispatcher(registry, log.New("test"))
	ch := NewChannel("ev1")
	registry.Subscribe(ch)
	bridge := NewNotifier(dispatcher, nil)

	event := entity.Event{ID: "ev1", Name: "GopherMeet"}
	bridge.NotifyAttendanceChange(context.Background(), event, entity.ActionUnregister, "bob")
	bridge.NotifyEventUpdated(context.Background(), event)
	bridge.NotifyEventDeleted(context.Background(), "ev1")

	first := nextFrame(t, ch)
	assert.Equal(t, entity.FrameAttendance, first.Type)
	assert.Equal(t, entity.ActionUnregister, first.Action)
	assert.Equal(t, "bob", first.UserID)

	second := nextFrame(t, ch)
	assert.Equal(t, entity.FrameUpdate, second.Type)
	require.NotNil(t, second.Event)
	assert.Equal(t, "GopherMeet", second.Event.Name)

	third := nextFrame(t, ch)
	assert.Equal(t, entity.FrameDelete, third.Type)
	assert.Equal(t, "ev1", third.EventID)
}
