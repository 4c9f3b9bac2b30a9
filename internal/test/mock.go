// Mock methods required in Eventide tests are all here.

package test

import (
	"Eventide/pkg/log"
	"Eventide/pkg/middlewares"
	"net/http"
	"os"
	"sync"

	"github.com/gin-gonic/gin"
)

// Global instance of gin MockRouter to be used during API testing.
var testRouter *gin.Engine

// Singleton to make sure testRouter is initialized only once.
var once sync.Once

func MockRouter() *gin.Engine {
	once.Do(func() {
		// Initializing the gin test server
		ginMode := os.Getenv("GIN_MODE")
		gin.SetMode(ginMode)
		testRouter = gin.Default()
		testRouter.Use(middlewares.CORSMiddleware("*")) // CORS middleware which allows request from all origin
	})
	return testRouter
}

// Headers to be set in tests to pass MockAuthMiddleware as a given user.
func MockAuthHeaders(username string) map[string]string {
	return map[string]string{
		"Authorization": "Bearer test",
		"X-Test-User":   username,
	}
}

// MockAuthMiddleware stands in for the JWT middleware during API tests.
// It trusts the X-Test-User header instead of parsing a real token.
func MockAuthMiddleware(logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		if gctx.GetHeader("Authorization") != "Bearer test" {
			gctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		username := gctx.GetHeader("X-Test-User")
		if username == "" {
			gctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		// Set Username in request's context
		// This pair will be used further down in the handler chain
		gctx.Set("Username", username)
		gctx.Next()
	}
}
