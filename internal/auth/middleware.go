// Auth middleware is used to validate the JWT sent as a bearer credential.
// This verification is needed for endpoints which mutate event or user state.

package auth

import (
	"Eventide/internal/errors"
	"Eventide/pkg/log"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// This middleware is used to verify and validate an incoming JWT, TokenType can either be "access_token" or "refresh_token".
// Access-Secret and Refresh-Secret will be used to parse access_token and refresh_token respectively.
// Blocks the request to go further into other handlers if the token is invalid.
func AuthMiddleware(logger log.Logger, authRepo Repository, tokenType string, secret string) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		// Extract token from the Authorization header
		token := fetchBearerToken(gctx, tokenType)
		if token == "" {
			gctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		// Parse the token with secret if the token is valid
		vrftoken, valerr := parseIntoJWT(gctx, logger, secret, token)
		if valerr != nil {
			// Abort the call chain for the request here as the user is unauthenticated
			gctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		// Check the parsed token for validity
		if !vrftoken.Valid {
			gctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		// Extract TokenUUID and Username from token claims
		tokenclaims, ok := vrftoken.Claims.(jwt.MapClaims)
		if !ok {
			// Type assertion error
			gctx.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		tokenUUID, ok := tokenclaims[tokenType+"_uuid"].(string)
		if !ok {
			// Type assertion error
			logger.WithCtx(gctx).Error().Msg("Type assertion error in AuthMiddleware")
			gctx.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		username, ok := tokenclaims["username"].(string)
		if !ok {
			// Type assertion error
			gctx.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		// Verify if TokenUUID:username is available in DB
		valid, dberr := authRepo.TokenExists(gctx, logger, tokenUUID, username)
		if dberr != nil {
			// Error in TokenExists
			gctx.AbortWithStatus(http.StatusInternalServerError)
			return
		} else if !valid {
			// token missing in DB or mismatch with username
			gctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		// In case of tokenType = "refresh_token", delete the previous refresh_token first
		if tokenType == "refresh_token" {
			dberr = authRepo.DelToken(gctx, logger, tokenUUID)
			if dberr != nil {
				err, ok := dberr.(errors.ErrorResponse)
				if !ok || err.Status != 404 {
					// Error during DB interaction
					gctx.AbortWithStatus(http.StatusInternalServerError)
					return
				}
				// Maybe the key wasn't present in the DB at all
				gctx.AbortWithStatus(http.StatusUnauthorized)
				return
			}
		}
		// Set Username in request's context
		// This pair will be used further down in the handler chain
		gctx.Set("Username", username)
		// Set the token's UUID which might be useful during logout
		gctx.Set(tokenType+"_uuid", tokenUUID)
		gctx.Next()
	}
}

// Helper to fetch the token string sent with the request.
// The access token rides the Authorization header as a bearer credential,
// the refresh token gets its own header so both can travel in one request.
func fetchBearerToken(gctx *gin.Context, tokenType string) string {
	if tokenType == "refresh_token" {
		return gctx.GetHeader("X-Refresh-Token")
	}
	header := gctx.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// Helper to parse and return the token string fetched from the request.
// secret can be either Access-Secret for accessToken parsing or Refresh-Secret for refreshToken.
func parseIntoJWT(gctx *gin.Context, logger log.Logger, secret string, token string) (*jwt.Token, error) {
	return jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		// Check the signing method
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			err := errors.New(fmt.Sprintf("Unexpected signing method found: %s", t.Header["alg"]))
			logger.WithCtx(gctx).Error().Err(err).Msg("")
			return nil, err
		}
		return []byte(secret), nil
	})
}
