// Tests for the bearer-token auth middleware of Eventide.

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Spins up a tiny gin router with one guarded probe route echoing the
// username the middleware resolved.
func newGuardedRouter(authRepo Repository, tokenType string, secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/probe", AuthMiddleware(testLogger, authRepo, tokenType, secret), func(gctx *gin.Context) {
		gctx.String(http.StatusOK, gctx.GetString("Username"))
	})
	return router
}

func probe(router *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/probe", nil)
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareAcceptsValidAccessToken(t *testing.T) {
	svc, _, authRepo := newTestService()
	tokens, err := svc.register(context.Background(), registerPayload())
	require.NoError(t, err)

	router := newGuardedRouter(authRepo, "access_token", testAccSecret)
	w := probe(router, map[string]string{"Authorization": "Bearer " + tokens["access_token"]})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice123", w.Body.String())
}

func TestAuthMiddlewareRejectsBadCredentials(t *testing.T) {
	svc, _, authRepo := newTestService()
	tokens, err := svc.register(context.Background(), registerPayload())
	require.NoError(t, err)

	router := newGuardedRouter(authRepo, "access_token", testAccSecret)

	// A token that skipped signing altogether must bounce on the method check
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"username": "alice123",
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	// No header, a non-bearer header and a forged token all bounce
	for name, headers := range map[string]map[string]string{
		"missing header":   {},
		"not a bearer":     {"Authorization": tokens["access_token"]},
		"garbage token":    {"Authorization": "Bearer not.a.jwt"},
		"unsigned token":   {"Authorization": "Bearer " + unsigned},
		"wrong token type": {"Authorization": "Bearer " + tokens["refresh_token"]},
	} {
		w := probe(router, headers)
		assert.Equal(t, http.StatusUnauthorized, w.Code, name)
	}
}

func TestAuthMiddlewareRejectsRevokedToken(t *testing.T) {
	svc, _, authRepo := newTestService()
	tokens, err := svc.register(context.Background(), registerPayload())
	require.NoError(t, err)

	// Invalidate every stored token uuid, like a logout would
	for uuid := range authRepo.tokens {
		delete(authRepo.tokens, uuid)
	}

	router := newGuardedRouter(authRepo, "access_token", testAccSecret)
	w := probe(router, map[string]string{"Authorization": "Bearer " + tokens["access_token"]})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRotatesRefreshToken(t *testing.T) {
	svc, _, authRepo := newTestService()
	tokens, err := svc.register(context.Background(), registerPayload())
	require.NoError(t, err)

	router := newGuardedRouter(authRepo, "refresh_token", testRefSecret)

	// First use passes and burns the stored refresh token uuid
	w := probe(router, map[string]string{"X-Refresh-Token": tokens["refresh_token"]})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice123", w.Body.String())

	// Replaying the same refresh token is refused
	w = probe(router, map[string]string{"X-Refresh-Token": tokens["refresh_token"]})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
