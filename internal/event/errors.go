// Typed failures surfaced by the attendance and ownership preconditions in Eventide.

package event

import (
	"Eventide/internal/errors"
)

var (
	// Acting user is already in the event's attendee list.
	ErrAlreadyRegistered = errors.BadRequest("Already registered for this event")
	// Event reached its attendance cap.
	ErrEventFull = errors.BadRequest("Event is full")
	// Acting user isn't in the event's attendee list.
	ErrNotRegistered = errors.BadRequest("Not registered for this event")
	// Attend request carried something other than register/unregister.
	ErrInvalidAction = errors.BadRequest("Invalid action")
	// Only the event's creator may update or delete it.
	ErrNotAuthorized = errors.Forbidden("Not authorized to modify this event")
	// Guests may read and attend events but never create, modify or delete them.
	ErrGuestForbidden = errors.Forbidden("Guest users cannot modify events. Please register for a full account.")
	// No event with the requested ID.
	ErrEventNotFound = errors.NotFound("Event not found")
)
