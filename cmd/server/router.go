// List of all REST API endpoints being used by Eventide can be found here.

package main

import (
	"Eventide/internal/auth"
	"Eventide/internal/event"
	"Eventide/internal/live"
	"Eventide/internal/user"
	"Eventide/pkg/db"
	"Eventide/pkg/log"
	"Eventide/pkg/middlewares"
	"Eventide/pkg/validations"
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

// Router wires every repository, service and API handler onto the gin server.
// Returns a closer for the live backplane so shutdown can tear it down.
func Router(ctx context.Context, router *gin.Engine, dbConnWrp *db.RedisDB, logger log.Logger) func() error {
	// Middlewares used by every route
	router.Use(middlewares.CORSMiddleware(os.Getenv("FRONTEND_ORIGIN")))
	router.Use(middlewares.CorrelationMiddleware())

	// Custom validations used by the entities
	validations.RegisterCustomValidations(ctx, logger)
	user.RegisterCustomValidations(ctx, logger)

	// This is the route to default path
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Welcome to Eventide!")
	})

	// Repositories needed by the services below
	authRepo := auth.NewRepository(dbConnWrp)
	userRepo := user.NewRepository(dbConnWrp)
	eventRepo := event.NewRepository(dbConnWrp)
	liveRepo := live.NewRepository(dbConnWrp)

	// The live broadcast core: one registry and dispatcher per process,
	// optionally fanning out across instances through the redis backplane
	registry := live.NewRegistry()
	dispatcher := live.NewDispatcher(registry, logger)
	var backplane *live.Backplane
	closeBackplane := func() error { return nil }
	if strings.EqualFold(os.Getenv("LIVE_BACKPLANE"), "true") {
		backplane = live.NewBackplane(dbConnWrp, dispatcher, logger)
		go backplane.Listen(ctx)
		closeBackplane = backplane.Close
	}
	notifier := live.NewNotifier(dispatcher, backplane)

	// Auth middlewares guarding every mutation route
	accSecret, refSecret := os.Getenv("ACCESS_SECRET_KEY"), os.Getenv("REFRESH_SECRET_KEY")
	authWithAcc := auth.AuthMiddleware(logger, authRepo, "access_token", accSecret)
	authWithRef := auth.AuthMiddleware(logger, authRepo, "refresh_token", refSecret)

	// Services and their API handlers
	authService := auth.NewService(accSecret, refSecret, userRepo, authRepo, logger)
	auth.APIHandlers(router, authService, authWithAcc, authWithRef, logger)

	userService := user.NewService(userRepo, logger)
	user.APIHandlers(router, userService, authWithAcc, logger)

	eventService := event.NewService(eventRepo, userRepo, liveRepo, notifier, logger)
	event.APIHandlers(router, eventService, authWithAcc, logger)

	live.APIHandlers(router, registry, liveRepo, logger)

	return closeBackplane
}
