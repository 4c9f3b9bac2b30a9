// Exposes the live update streaming API of Eventide.

package live

import (
	"Eventide/internal/entity"
	"Eventide/pkg/log"
	"Eventide/pkg/middlewares"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Registers the streaming handler of internal package live onto the gin server.
// No auth middleware here, live updates are public just like event details.
func APIHandlers(router *gin.Engine, registry *Registry, liveRepo Repository, logger log.Logger) {
	liveGroup := router.Group("/api/events", middlewares.SSEMiddleware())
	{
		liveGroup.GET("/:id/live", streamHandler(registry, liveRepo, logger))
	}
}

// streamHandler returns a handler which keeps one SSE connection open per
// viewer of an event's page. The channel is subscribed for the whole lifetime
// of the request and unconditionally unsubscribed the moment the viewer
// disconnects, no grace period, no buffering of missed frames for reconnects.
func streamHandler(registry *Registry, liveRepo Repository, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		eventID := gctx.Param("id")
		if eventID == "" {
			gctx.Status(http.StatusBadRequest)
			return
		}

		client := NewChannel(eventID)
		registry.Subscribe(client)
		liveRepo.AddViewer(gctx, logger, eventID)

		// The connected acknowledgement goes out first so the viewer can tell
		// "subscribed" apart from "still connecting".
		ack, mrsherr := json.Marshal(entity.LiveFrame{Type: entity.FrameConnected})
		if mrsherr == nil {
			client.Push(ack)
		}

		defer func() {
			registry.Unsubscribe(client)
			client.Close()
			liveRepo.RemoveViewer(gctx, logger, eventID)
			logger.WithCtx(gctx).Info().Msgf("Closed live channel of a viewer of event %s", client.EventID)
		}()

		gctx.Stream(func(w io.Writer) bool {
			select {
			// Forward the next frame to the viewer, one JSON object per message
			case frame, ok := <-client.Frames():
				if !ok {
					return false
				}
				gctx.SSEvent("message", string(frame))
				return true
			// Viewer navigated away, dropped the network or closed the tab
			case <-gctx.Request.Context().Done():
				return false
			}
		})
	}
}
