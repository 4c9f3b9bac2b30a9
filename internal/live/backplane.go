// Cross-instance fan-out for the live update subsystem in Eventide.
//
// The in-memory registry only reaches viewers connected to this process. With
// several server instances behind a load balancer, a mutation handled by one
// instance would silently miss viewers connected to the others. The backplane
// routes every frame through redis pub/sub: mutations publish to
// live:<event_id> and every instance forwards what it receives to its own
// local dispatcher, this instance included.

package live

import (
	"Eventide/internal/entity"
	"Eventide/pkg/db"
	"Eventide/pkg/log"
	"context"
	"encoding/json"
	"strings"

	"github.com/go-redis/redis/v8"
)

// Prefix of the redis pub/sub channels carrying live frames.
const backplanePrefix = "live:"

// Backplane relays live frames between Eventide server instances over redis pub/sub.
type Backplane struct {
	db         *db.RedisDB
	dispatcher *Dispatcher
	pubsub     *redis.PubSub
	logger     log.Logger
}

// Returns a new backplane relaying frames to the given dispatcher.
func NewBackplane(dbwrp *db.RedisDB, dispatcher *Dispatcher, logger log.Logger) *Backplane {
	return &Backplane{db: dbwrp, dispatcher: dispatcher, logger: logger}
}

// Publish sends one frame towards every instance, falling back to a local
// broadcast if redis is unreachable so viewers on this instance still get it.
func (b *Backplane) Publish(ctx context.Context, eventID string, frame entity.LiveFrame) {
	data, mrsherr := json.Marshal(frame)
	if mrsherr != nil {
		b.logger.WithCtx(ctx).Error().Err(mrsherr).Msgf("Couldn't serialize %s frame for event %s", frame.Type, eventID)
		return
	}
	puberr := b.db.Client().Publish(ctx, backplanePrefix+eventID, data).Err()
	if puberr != nil {
		b.logger.WithCtx(ctx).Error().Err(puberr).Msg("Error occured during execution of redis.Publish in live.Backplane")
		b.dispatcher.Broadcast(ctx, eventID, frame)
	}
}

// Listen subscribes to every live:* channel and forwards incoming frames to
// the local dispatcher, preferably launched in a goroutine from main.
// Returns when the backplane gets closed or ctx is cancelled.
func (b *Backplane) Listen(ctx context.Context) {
	b.pubsub = b.db.Client().PSubscribe(ctx, backplanePrefix+"*")
	b.logger.Info().Msg("Live backplane subscribed to redis pub/sub.")
	for {
		select {
		case msg, ok := <-b.pubsub.Channel():
			if !ok {
				return
			}
			eventID := strings.TrimPrefix(msg.Channel, backplanePrefix)
			var frame entity.LiveFrame
			if mrsherr := json.Unmarshal([]byte(msg.Payload), &frame); mrsherr != nil {
				b.logger.Error().Err(mrsherr).Msgf("Dropped malformed backplane frame for event %s", eventID)
				continue
			}
			b.dispatcher.Broadcast(ctx, eventID, frame)
		case <-ctx.Done():
			return
		}
	}
}

// Close tears the pub/sub subscription down, should be called before server shutdown.
func (b *Backplane) Close() error {
	if b.pubsub == nil {
		return nil
	}
	return b.pubsub.Close()
}
