// Event repository encapsulates the data access logic (interactions with the DB) related to Event CRUD in Eventide.

package event

import (
	"Eventide/internal/entity"
	"Eventide/internal/errors"
	"Eventide/pkg/db"
	"Eventide/pkg/log"
	"context"

	"github.com/go-redis/redis/v8"
)

type Repository interface {
	// HasEvent returns a boolean depending on the event's availability.
	HasEvent(ctx context.Context, logger log.Logger, eventID string) (bool, error)
	// GetEvent fetches one event with its attendee list populated.
	GetEvent(ctx context.Context, logger log.Logger, eventID string) (entity.Event, error)
	// GetEvents fetches a page of events from the index, attendee lists populated.
	GetEvents(ctx context.Context, logger log.Logger, cursor uint64) ([]entity.Event, uint64, error)
	// SetEvent adds or overwrites the event hash in the DB.
	SetEvent(ctx context.Context, logger log.Logger, event entity.Event, eventExistCheck bool) (bool, error)
	// DeleteEvent removes the event hash, its attendee set and its index entry.
	DeleteEvent(ctx context.Context, logger log.Logger, event entity.Event) error
	// AddAttendee atomically re-checks capacity and duplicate registration
	// before adding the username to the event's attendee set.
	AddAttendee(ctx context.Context, logger log.Logger, event entity.Event, username string) error
	// RemoveAttendee drops the username from the event's attendee set.
	RemoveAttendee(ctx context.Context, logger log.Logger, event entity.Event, username string) error
}

// repository struct of event Repository.
// Object of this will be passed around from main to internal.
// Helps to access the repository layer interface and call methods.
type repository struct {
	db *db.RedisDB
}

// Returns a new instance of event repository for other packages to access its interface.
func NewRepository(dbwrp *db.RedisDB) Repository {
	return repository{db: dbwrp}
}

// Returns true if event:<eventID> exists in Eventide.
func (r repository) HasEvent(ctx context.Context, logger log.Logger, eventID string) (bool, error) {
	available, dberr := r.db.Client().Exists(ctx, "event:"+eventID).Result()
	if dberr != nil && dberr != redis.Nil {
		// Error during interacting with DB
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.Exists() in event.HasEvent")
		return false, errors.InternalServerError("")
	} else if available == 0 {
		// Event not available
		return false, nil
	}
	return true, nil
}

// Returns the event data object with attendees if an event with the given ID is found in the DB.
func (r repository) GetEvent(ctx context.Context, logger log.Logger, eventID string) (entity.Event, error) {
	event := entity.Event{}
	available, dberr := r.HasEvent(ctx, logger, eventID)
	if dberr != nil {
		// Issues in HasEvent()
		return event, dberr
	} else if !available {
		return event, ErrEventNotFound
	}
	if dberr := r.db.Client().HGetAll(ctx, "event:"+eventID).Scan(&event); dberr != nil {
		// Error during interacting with DB
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.HGetAll() in event.GetEvent")
		return event, errors.InternalServerError("")
	}
	attendees, dberr := r.db.Client().SMembers(ctx, event.AttendeesKey).Result()
	if dberr != nil && dberr != redis.Nil {
		// Error during interacting with DB
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.SMembers() in event.GetEvent")
		return event, errors.InternalServerError("")
	}
	event.Attendees = attendees
	return event, nil
}

// Returns a page of events indexed under event:index along with the next cursor.
func (r repository) GetEvents(ctx context.Context, logger log.Logger, cursor uint64) ([]entity.Event, uint64, error) {
	events := []entity.Event{}
	ids, newCursor, dberr := r.db.Client().SScan(ctx, "event:index", cursor, "", 10).Result()
	if dberr != nil && dberr != redis.Nil {
		// Error during interacting with DB
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.SScan() in event.GetEvents")
		return events, 0, errors.InternalServerError("")
	}
	for _, eventID := range ids {
		event, geterr := r.GetEvent(ctx, logger, eventID)
		if geterr == ErrEventNotFound {
			// Index entry outlived the event hash, skip it
			continue
		} else if geterr != nil {
			return events, 0, geterr
		}
		events = append(events, event)
	}
	return events, newCursor, nil
}

// Returns true if the event got successfully added or updated in the DB.
func (r repository) SetEvent(ctx context.Context, logger log.Logger, event entity.Event, eventExistCheck bool) (bool, error) {
	if !eventExistCheck {
		// Checking if an event with ID event.ID exists in the DB
		available, dberr := r.HasEvent(ctx, logger, event.ID)
		if dberr != nil {
			// Issues in HasEvent()
			return false, dberr
		} else if available {
			return false, errors.BadRequest("Event already exists")
		}
	}
	key := "event:" + event.ID
	if _, dberr := r.db.Client().Pipelined(ctx, func(client redis.Pipeliner) error {
		client.HSet(ctx, key, "event_id", event.ID)
		client.HSet(ctx, key, "event_name", event.Name)
		client.HSet(ctx, key, "event_description", event.Description)
		client.HSet(ctx, key, "event_date", event.Date)
		client.HSet(ctx, key, "event_location", event.Location)
		client.HSet(ctx, key, "event_category", event.Category)
		client.HSet(ctx, key, "event_image_url", event.ImageURL)
		client.HSet(ctx, key, "event_creator", event.Creator)
		client.HSet(ctx, key, "event_max_attendees", uint64(event.MaxAttendees))
		client.HSet(ctx, key, "event_status", event.Status)
		client.HSet(ctx, key, "event_attendees_key", event.AttendeesKey)
		client.HSet(ctx, key, "event_created", event.Created)
		return nil
	}); dberr != nil {
		// Error during interacting with DB
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.Pipelined() in event.SetEvent")
		return false, errors.InternalServerError("")
	}
	// Add event to event:index for listing
	_, dberr := r.db.Client().SAdd(ctx, "event:index", event.ID).Result()
	if dberr != nil {
		// Issues in SAdd()
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during setting event index")
		return false, errors.InternalServerError("")
	}
	return true, nil
}

// Returns nil if the event with every key attached to it got removed from the DB.
func (r repository) DeleteEvent(ctx context.Context, logger log.Logger, event entity.Event) error {
	if _, dberr := r.db.Client().Pipelined(ctx, func(client redis.Pipeliner) error {
		client.Del(ctx, "event:"+event.ID)
		client.Del(ctx, event.AttendeesKey)
		client.SRem(ctx, "event:index", event.ID)
		return nil
	}); dberr != nil {
		// Error during interacting with DB
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.Pipelined() in event.DeleteEvent")
		return errors.InternalServerError("")
	}
	return nil
}

// Re-checks both attendance invariants inside a watched transaction so two
// concurrent registrations can't push an event past its cap, then adds the
// username to the attendee set.
func (r repository) AddAttendee(ctx context.Context, logger log.Logger, event entity.Event, username string) error {
	key := event.AttendeesKey
	txferr := func(key string) error {
		txf := func(tx *redis.Tx) error {
			already, dberr := tx.SIsMember(ctx, key, username).Result()
			if dberr != nil && dberr != redis.Nil {
				return dberr
			} else if already {
				return ErrAlreadyRegistered
			}
			count, dberr := tx.SCard(ctx, key).Result()
			if dberr != nil && dberr != redis.Nil {
				return dberr
			}
			if event.MaxAttendees > 0 && uint(count) >= event.MaxAttendees {
				return ErrEventFull
			}
			// Operation is commited only if the watched key remains unchanged
			_, dberr = tx.TxPipelined(ctx, func(client redis.Pipeliner) error {
				client.SAdd(ctx, key, username)
				return nil
			})
			return dberr
		}
		for i := 0; i < r.db.GetMaxRetries(); i++ {
			dberr := r.db.Client().Watch(ctx, txf, key)
			if dberr == nil {
				return nil
			} else if dberr == redis.TxFailedErr {
				// Optimistic lock lost. Retry.
				continue
			}
			// Return any other error.
			return dberr
		}
		return errors.New("registration reached maximum number of retries")
	}(key)
	if txferr == ErrAlreadyRegistered || txferr == ErrEventFull {
		return txferr
	} else if txferr != nil {
		logger.WithCtx(ctx).Error().Err(txferr).Msg("Error occured in AddAttendee transaction")
		return errors.InternalServerError("")
	}
	return nil
}

// Returns nil if the username got removed from the event's attendee set,
// ErrNotRegistered if it wasn't in there to begin with.
func (r repository) RemoveAttendee(ctx context.Context, logger log.Logger, event entity.Event, username string) error {
	removed, dberr := r.db.Client().SRem(ctx, event.AttendeesKey, username).Result()
	if dberr != nil {
		// Issue in SRem()
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.SRem() in event.RemoveAttendee")
		return errors.InternalServerError("")
	} else if removed == 0 {
		return ErrNotRegistered
	}
	return nil
}
