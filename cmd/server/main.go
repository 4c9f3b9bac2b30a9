// The main file of Eventide.

package main

import (
	"Eventide/internal/config"
	"Eventide/pkg/cleanup"
	"Eventide/pkg/db"
	"Eventide/pkg/log"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	// Indicates the current version of Eventide.
	Version = "1.0.0"
	// Address and Port to be used by gin.
	srvaddr, srvport string
)

func main() {
	// Load up dev environment variables before anything needs them
	if os.Getenv("ENV") == "DEV" {
		config.LoadDevConfig()
	}

	logger := log.New(Version)
	if len(os.Getenv("ENV")) == 0 {
		logger.Fatal().Err(errors.New("os couldn't load ENV.")).Msg("")
	}
	logger.Info().Msg(fmt.Sprintf("Welcome to Eventide: v%s", Version))
	logger.Info().Msg(fmt.Sprintf("Eventide Environment: %s", os.Getenv("ENV")))

	ctx := context.Background()

	// Opening a connection to the DB and checking it with a PING
	dbConnWrp := db.NewDbConnection(ctx, logger)
	if pingerr := dbConnWrp.CheckDbConnection(ctx, logger); pingerr != nil {
		logger.Fatal().Err(pingerr).Msg("Redis client couldn't PING the redis-server.")
	}

	// Fetching addr and port depending upon env flag.
	srvaddr, srvport = os.Getenv("SRV_ADDR"), os.Getenv("SRV_PORT")
	// This is the preferred mode used by gin server in DEV environment.
	if os.Getenv("ENV") == "DEV" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initializing the gin server.
	server := gin.New()

	// Forcing gin to use custom Logger instead of the default one.
	server.Use(log.LoggerGinExtension(logger))
	server.Use(gin.Recovery())

	// Running Router() which routes all of the REST API groups and paths.
	closeBackplane := Router(ctx, server, dbConnWrp, logger)

	// Running the server with defined addr and port.
	srv := &http.Server{
		Addr:    srvaddr + ":" + srvport,
		Handler: server,
	}

	// ListenAndServe is a blocking operation, putting it a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Error in ListenAndServe()")
		}
	}()

	// Graceful shutdown of Eventide server triggered due to system interruptions.
	wait := cleanup.GracefulShutdown(ctx, logger, 5*time.Second, map[string]cleanup.Operation{
		"Live-backplane": func(ctx context.Context) error {
			return closeBackplane()
		},
		"Redis-server": func(ctx context.Context) error {
			return dbConnWrp.CloseDbConnection(ctx)
		},
		"Gin": func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
	<-wait
}
