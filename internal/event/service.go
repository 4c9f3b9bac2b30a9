// Service layer of the internal package event.
//
// Every state-changing operation here follows the same shape: precondition
// checks first, then the storage mutation, then a best-effort live broadcast.
// A failed precondition or a failed write means no broadcast at all, a failed
// broadcast never rolls back a persisted mutation.

package event

import (
	"Eventide/internal/entity"
	"Eventide/internal/errors"
	"Eventide/internal/live"
	"Eventide/internal/user"
	"Eventide/pkg/log"
	"context"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"
	"github.com/xeonx/timeago"
)

// Service layer of internal package event which encapsulates event CRUD and
// attendance logic of Eventide.
type Service interface {
	// Creates an event in Eventide.
	createevent(ctx context.Context, username string, event *entity.Event) error
	// Fetches one event with attendance and live viewer details.
	getevent(ctx context.Context, eventID string) (map[string]any, error)
	// Fetches a page of events.
	listevents(ctx context.Context, cursor uint64) ([]entity.Event, uint64, error)
	// Applies an edit to an event owned by the acting user.
	updateevent(ctx context.Context, username string, event entity.Event) (entity.Event, error)
	// Deletes an event owned by the acting user.
	deleteevent(ctx context.Context, username string, eventID string) error
	// Registers or unregisters the acting user's attendance.
	attend(ctx context.Context, username string, eventID string, action string) (entity.Event, error)
}

// Object of this will be passed around from main to routers to API.
// Helps to access the service layer interface and call methods.
// Also helps to pass objects to be used from outer layer.
type service struct {
	eventRepo Repository
	userRepo  user.Repository
	liveRepo  live.Repository
	notifier  live.Notifier
	logger    log.Logger
}

// Helps to access the service layer interface and call methods. Service object is passed from main.
func NewService(eventRepo Repository, userRepo user.Repository, liveRepo live.Repository, notifier live.Notifier, logger log.Logger) Service {
	return service{eventRepo, userRepo, liveRepo, notifier, logger}
}

func (s service) createevent(ctx context.Context, username string, event *entity.Event) error {
	valerr := s.validateEventData(ctx, event)
	if valerr != nil {
		// Error occured during validation
		return valerr
	}
	// Guests browse and attend, they don't own events
	actor, usrerr := s.userRepo.GetUser(ctx, s.logger, username)
	if usrerr != nil {
		return usrerr
	} else if actor.IsGuest {
		return ErrGuestForbidden
	}

	event.ID = uuid.NewString()
	event.Creator = username
	event.Created = time.Now().Unix()
	event.AttendeesKey = "event-attendees:" + event.ID
	if event.Status == "" {
		event.Status = "upcoming"
	}

	// Save event details in the DB, ID is fresh so no existence check needed
	_, dberr := s.eventRepo.SetEvent(ctx, s.logger, *event, true)
	if dberr != nil {
		return dberr
	}
	return nil
}

func (s service) getevent(ctx context.Context, eventID string) (map[string]any, error) {
	response := make(map[string]any)
	event, dberr := s.eventRepo.GetEvent(ctx, s.logger, eventID)
	if dberr != nil {
		// Error occured in GetEvent()
		return response, dberr
	}
	viewers, dberr := s.liveRepo.ViewerCount(ctx, s.logger, eventID)
	if dberr != nil {
		// Presence is cosmetic, don't fail the read over it
		viewers = 0
	}
	response["event"] = event
	response["is_full"] = event.IsFull()
	response["viewers"] = viewers
	response["created_timeago"] = timeago.English.Format(time.Unix(event.Created, 0))
	return response, nil
}

func (s service) listevents(ctx context.Context, cursor uint64) ([]entity.Event, uint64, error) {
	return s.eventRepo.GetEvents(ctx, s.logger, cursor)
}

func (s service) updateevent(ctx context.Context, username string, incoming entity.Event) (entity.Event, error) {
	valerr := s.validateEventData(ctx, &incoming)
	if valerr != nil {
		// Error occured during validation
		return entity.Event{}, valerr
	}
	event, autherr := s.authorizeOwnerAction(ctx, username, incoming.ID)
	if autherr != nil {
		return entity.Event{}, autherr
	}

	// Only the editable fields move over, ownership and attendance stay untouched
	event.Name = incoming.Name
	event.Description = incoming.Description
	event.Date = incoming.Date
	event.Location = incoming.Location
	event.Category = incoming.Category
	event.ImageURL = incoming.ImageURL
	event.MaxAttendees = incoming.MaxAttendees
	if incoming.Status != "" {
		event.Status = incoming.Status
	}

	_, dberr := s.eventRepo.SetEvent(ctx, s.logger, event, true)
	if dberr != nil {
		// Persistence failed, nothing gets broadcast
		return entity.Event{}, dberr
	}
	s.notifier.NotifyEventUpdated(ctx, event)
	return event, nil
}

func (s service) deleteevent(ctx context.Context, username string, eventID string) error {
	event, autherr := s.authorizeOwnerAction(ctx, username, eventID)
	if autherr != nil {
		return autherr
	}
	dberr := s.eventRepo.DeleteEvent(ctx, s.logger, event)
	if dberr != nil {
		// Persistence failed, nothing gets broadcast
		return dberr
	}
	s.notifier.NotifyEventDeleted(ctx, eventID)
	return nil
}

func (s service) attend(ctx context.Context, username string, eventID string, action string) (entity.Event, error) {
	if action != entity.ActionRegister && action != entity.ActionUnregister {
		return entity.Event{}, ErrInvalidAction
	}
	event, dberr := s.eventRepo.GetEvent(ctx, s.logger, eventID)
	if dberr != nil {
		// Error occured in GetEvent()
		return entity.Event{}, dberr
	}
	// Guests may attend, but the account still has to exist
	_, usrerr := s.userRepo.GetUser(ctx, s.logger, username)
	if usrerr != nil {
		return entity.Event{}, usrerr
	}

	if action == entity.ActionRegister {
		// Cheap pre-checks on the snapshot before touching the attendee set
		for _, attendee := range event.Attendees {
			if attendee == username {
				return entity.Event{}, ErrAlreadyRegistered
			}
		}
		if !event.CanAcceptMoreAttendees() {
			return entity.Event{}, ErrEventFull
		}
		// AddAttendee re-checks both invariants atomically against the DB
		dberr = s.eventRepo.AddAttendee(ctx, s.logger, event, username)
		if dberr != nil {
			return entity.Event{}, dberr
		}
		dberr = s.userRepo.AddAttendingEvent(ctx, s.logger, username, eventID)
	} else {
		dberr = s.eventRepo.RemoveAttendee(ctx, s.logger, event, username)
		if dberr != nil {
			return entity.Event{}, dberr
		}
		dberr = s.userRepo.RemoveAttendingEvent(ctx, s.logger, username, eventID)
	}
	if dberr != nil {
		return entity.Event{}, dberr
	}

	// Re-read so the broadcast snapshot carries the fresh attendee list
	event, dberr = s.eventRepo.GetEvent(ctx, s.logger, eventID)
	if dberr != nil {
		return entity.Event{}, dberr
	}
	s.notifier.NotifyAttendanceChange(ctx, event, action, username)
	return event, nil
}

// Helper enforcing the two ownership preconditions shared by update and delete:
// the acting user must not be a guest and must be the event's creator.
// Returns the stored event on success.
func (s service) authorizeOwnerAction(ctx context.Context, username string, eventID string) (entity.Event, error) {
	actor, usrerr := s.userRepo.GetUser(ctx, s.logger, username)
	if usrerr != nil {
		return entity.Event{}, usrerr
	} else if actor.IsGuest {
		// Guest check comes first, a guest gets the same answer for any event
		return entity.Event{}, ErrGuestForbidden
	}
	event, dberr := s.eventRepo.GetEvent(ctx, s.logger, eventID)
	if dberr != nil {
		return entity.Event{}, dberr
	}
	if event.Creator != username {
		return entity.Event{}, ErrNotAuthorized
	}
	return event, nil
}

// Helper to validate the event data against validation-tags mentioned in its entity.
func (s service) validateEventData(ctx context.Context, event *entity.Event) error {
	_, valerr := govalidator.ValidateStruct(event)
	if valerr != nil {
		valerr := valerr.(govalidator.Errors).Errors()
		return errors.GenerateValidationErrorResponse(valerr)
	}
	return nil
}
