// live repository encapsulates the data access logic (interactions with the DB) related to viewer presence in Eventide.

package live

import (
	"Eventide/internal/errors"
	"Eventide/pkg/db"
	"Eventide/pkg/log"
	"context"

	"github.com/go-redis/redis/v8"
)

type Repository interface {
	// AddViewer bumps the live viewer count of an event when a channel opens.
	AddViewer(ctx context.Context, logger log.Logger, eventID string) error
	// RemoveViewer drops the live viewer count of an event when a channel closes.
	RemoveViewer(ctx context.Context, logger log.Logger, eventID string) error
	// ViewerCount returns how many viewers currently have the event's page open,
	// across every server instance.
	ViewerCount(ctx context.Context, logger log.Logger, eventID string) (int64, error)
}

// repository struct of live Repository.
// Object of this will be passed around from main to internal.
// Helps to access the repository layer interface and call methods.
type repository struct {
	db *db.RedisDB
}

// Returns a new instance of live repository for other packages to access its interface.
func NewRepository(dbwrp *db.RedisDB) Repository {
	return repository{db: dbwrp}
}

// Returns nil if the viewer count of the event got successfully incremented.
func (r repository) AddViewer(ctx context.Context, logger log.Logger, eventID string) error {
	dberr := r.db.Client().Incr(ctx, "event-viewers:"+eventID).Err()
	if dberr != nil {
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.Incr in live.AddViewer")
		return errors.InternalServerError("")
	}
	return nil
}

// Returns nil if the viewer count of the event got successfully decremented.
// The key is dropped once the last viewer leaves so counts of dead events don't pile up.
func (r repository) RemoveViewer(ctx context.Context, logger log.Logger, eventID string) error {
	left, dberr := r.db.Client().Decr(ctx, "event-viewers:"+eventID).Result()
	if dberr != nil {
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.Decr in live.RemoveViewer")
		return errors.InternalServerError("")
	}
	if left <= 0 {
		dberr = r.db.Client().Del(ctx, "event-viewers:"+eventID).Err()
		if dberr != nil {
			logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.Del in live.RemoveViewer")
			return errors.InternalServerError("")
		}
	}
	return nil
}

// Returns the current live viewer count of an event, 0 if nobody has it open.
func (r repository) ViewerCount(ctx context.Context, logger log.Logger, eventID string) (int64, error) {
	count, dberr := r.db.Client().Get(ctx, "event-viewers:"+eventID).Int64()
	if dberr != nil && dberr != redis.Nil {
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.Get in live.ViewerCount")
		return 0, errors.InternalServerError("")
	} else if dberr == redis.Nil || count < 0 {
		return 0, nil
	}
	return count, nil
}
