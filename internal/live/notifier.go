// Bridge between event mutations and the live broadcast layer in Eventide.

package live

import (
	"Eventide/internal/entity"
	"context"
)

// Notifier is the narrow interface mutation services use to announce a
// successfully persisted event change to everyone viewing that event's page.
// All methods are strictly best-effort, they never fail the mutation.
type Notifier interface {
	// Announces a register/unregister attendance change along with the fresh event snapshot.
	NotifyAttendanceChange(ctx context.Context, event entity.Event, action string, userID string)
	// Announces an edit of the event's details along with the fresh snapshot.
	NotifyEventUpdated(ctx context.Context, event entity.Event)
	// Announces that the event was deleted.
	NotifyEventDeleted(ctx context.Context, eventID string)
}

type notifier struct {
	dispatcher *Dispatcher
	// backplane is nil when cross-instance fan-out is disabled, frames then go
	// straight to the local dispatcher.
	backplane *Backplane
}

// Returns a Notifier publishing through the backplane when one is configured,
// otherwise broadcasting to this instance's registry only.
func NewNotifier(dispatcher *Dispatcher, backplane *Backplane) Notifier {
	return notifier{dispatcher: dispatcher, backplane: backplane}
}

func (n notifier) NotifyAttendanceChange(ctx context.Context, event entity.Event, action string, userID string) {
	n.publish(ctx, event.ID, entity.LiveFrame{
		Type:   entity.FrameAttendance,
		Event:  &event,
		Action: action,
		UserID: userID,
	})
}

func (n notifier) NotifyEventUpdated(ctx context.Context, event entity.Event) {
	n.publish(ctx, event.ID, entity.LiveFrame{
		Type:  entity.FrameUpdate,
		Event: &event,
	})
}

func (n notifier) NotifyEventDeleted(ctx context.Context, eventID string) {
	n.publish(ctx, eventID, entity.LiveFrame{
		Type:    entity.FrameDelete,
		EventID: eventID,
	})
}

func (n notifier) publish(ctx context.Context, eventID string, frame entity.LiveFrame) {
	if n.backplane != nil {
		n.backplane.Publish(ctx, eventID, frame)
		return
	}
	n.dispatcher.Broadcast(ctx, eventID, frame)
}
