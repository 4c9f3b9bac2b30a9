// Exposes all of the REST APIs related to Event CRUD and attendance in Eventide.

package event

import (
	"Eventide/internal/entity"
	"Eventide/internal/errors"
	"Eventide/pkg/log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Registers all of the REST API handlers related to internal package event onto the gin server.
// Reads are public, every mutation goes through the access-token middleware.
func APIHandlers(router *gin.Engine, service Service, AuthWithAcc gin.HandlerFunc, logger log.Logger) {
	eventGroup := router.Group("/api/events")
	{
		eventGroup.GET("", listEvents(service, logger))
		eventGroup.GET("/:id", getEvent(service, logger))
		eventGroup.POST("", AuthWithAcc, createEvent(service, logger))
		eventGroup.PUT("/:id", AuthWithAcc, updateEvent(service, logger))
		eventGroup.DELETE("/:id", AuthWithAcc, deleteEvent(service, logger))
		eventGroup.POST("/:id/attend", AuthWithAcc, attendEvent(service, logger))
	}
}

// createEvent returns a handler which takes care of creating events in Eventide.
func createEvent(service Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		var event entity.Event

		// Serialize received data into Event struct
		if binderr := gctx.ShouldBindJSON(&event); binderr != nil {
			// Error occured during serialization
			logger.WithCtx(gctx).Error().Err(binderr).Msg("Binding error occured with Event struct.")
			gctx.JSON(http.StatusUnprocessableEntity, errors.UnprocessableEntity(""))
			return
		}

		// Fetch username from context which will be used as the event creator
		username, ok := gctx.Value("Username").(string)
		if !ok {
			// Type assertion error
			logger.WithCtx(gctx).Error().Msg("Type assertion error in create_event")
			gctx.JSON(http.StatusInternalServerError, errors.InternalServerError(""))
			return
		}

		// Apply the service logic for Create Event in Eventide
		err := service.createevent(gctx, username, &event)
		if err != nil {
			// Error occured, might be validation or server error
			err, ok := err.(errors.ErrorResponse)
			if !ok {
				// Type assertion error
				gctx.JSON(http.StatusInternalServerError, errors.InternalServerError(""))
				return
			}
			gctx.JSON(err.Status, err)
			return
		}
		gctx.JSON(http.StatusOK, gin.H{
			"event": event,
		})
	}
}

// getEvent returns a handler which takes care of fetching one event's details in Eventide.
func getEvent(service Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		eventID := gctx.Param("id")
		data, err := service.getevent(gctx, eventID)
		if err != nil {
			// Error occured, might be validation or server error
			err, ok := err.(errors.ErrorResponse)
			if !ok {
				// Type assertion error
				gctx.JSON(http.StatusInternalServerError, errors.InternalServerError(""))
				return
			}
			gctx.JSON(err.Status, err)
			return
		}
		gctx.JSON(http.StatusOK, data)
	}
}

// listEvents returns a handler which takes care of paginated event listing in Eventide.
func listEvents(service Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		cursor, converr := strconv.ParseUint(gctx.DefaultQuery("cursor", "0"), 10, 64)
		if converr != nil {
			// Invalid cursor input
			gctx.Status(http.StatusBadRequest)
			return
		}
		events, newCursor, err := service.listevents(gctx, cursor)
		if err != nil {
			// Error occured, might be validation or server error
			err, ok := err.(errors.ErrorResponse)
			if !ok {
				// Type assertion error
				gctx.JSON(http.StatusInternalServerError, errors.InternalServerError(""))
				return
			}
			gctx.JSON(err.Status, err)
			return
		}
		gctx.JSON(http.StatusOK, gin.H{
			"result": events,
			"page":   newCursor,
		})
	}
}

// updateEvent returns a handler which takes care of editing owned events in Eventide.
func updateEvent(service Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		var event entity.Event

		// Serialize received data into Event struct
		if binderr := gctx.ShouldBindJSON(&event); binderr != nil {
			// Error occured during serialization
			logger.WithCtx(gctx).Error().Err(binderr).Msg("Binding error occured with Event struct.")
			gctx.JSON(http.StatusUnprocessableEntity, errors.UnprocessableEntity(""))
			return
		}
		event.ID = gctx.Param("id")

		// Fetch username from context which will be matched against the event creator
		username, ok := gctx.Value("Username").(string)
		if !ok {
			// Type assertion error
			logger.WithCtx(gctx).Error().Msg("Type assertion error in update_event")
			gctx.JSON(http.StatusInternalServerError, errors.InternalServerError(""))
			return
		}

		updated, err := service.updateevent(gctx, username, event)
		if err != nil {
			// Error occured, might be validation or server error
			err, ok := err.(errors.ErrorResponse)
			if !ok {
				// Type assertion error
				gctx.JSON(http.StatusInternalServerError, errors.InternalServerError(""))
				return
			}
			gctx.JSON(err.Status, err)
			return
		}
		gctx.JSON(http.StatusOK, gin.H{
			"event": updated,
		})
	}
}

// deleteEvent returns a handler which takes care of deleting owned events in Eventide.
func deleteEvent(service Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		// Fetch username from context which will be matched against the event creator
		username, ok := gctx.Value("Username").(string)
		if !ok {
			// Type assertion error
			logger.WithCtx(gctx).Error().Msg("Type assertion error in delete_event")
			gctx.JSON(http.StatusInternalServerError, errors.InternalServerError(""))
			return
		}

		err := service.deleteevent(gctx, username, gctx.Param("id"))
		if err != nil {
			// Error occured, might be validation or server error
			err, ok := err.(errors.ErrorResponse)
			if !ok {
				// Type assertion error
				gctx.JSON(http.StatusInternalServerError, errors.InternalServerError(""))
				return
			}
			gctx.JSON(err.Status, err)
			return
		}
		gctx.Status(http.StatusOK)
	}
}

// attendEvent returns a handler which takes care of attendance registration in Eventide.
func attendEvent(service Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		var request struct {
			Action string `json:"action"`
		}
		// Serialize received data into the attendance request
		if binderr := gctx.ShouldBindJSON(&request); binderr != nil {
			// Error occured during serialization
			gctx.JSON(http.StatusUnprocessableEntity, errors.UnprocessableEntity(""))
			return
		}

		// Fetch username from context which will be used as the attendee
		username, ok := gctx.Value("Username").(string)
		if !ok {
			// Type assertion error
			logger.WithCtx(gctx).Error().Msg("Type assertion error in attend_event")
			gctx.JSON(http.StatusInternalServerError, errors.InternalServerError(""))
			return
		}

		event, err := service.attend(gctx, username, gctx.Param("id"), request.Action)
		if err != nil {
			// Error occured, might be validation or server error
			err, ok := err.(errors.ErrorResponse)
			if !ok {
				// Type assertion error
				gctx.JSON(http.StatusInternalServerError, errors.InternalServerError(""))
				return
			}
			gctx.JSON(err.Status, err)
			return
		}
		gctx.JSON(http.StatusOK, gin.H{
			"event": event,
		})
	}
}
