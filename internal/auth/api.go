// Exposes all of the REST APIs related to User authentication in Eventide.

package auth

import (
	"Eventide/internal/entity"
	"Eventide/internal/errors"
	"Eventide/pkg/log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Registers all of the REST API handlers related to internal package auth onto the gin server.
func APIHandlers(router *gin.Engine, authService Service, AuthWithAcc gin.HandlerFunc, AuthWithRef gin.HandlerFunc, logger log.Logger) {
	authGroup := router.Group("/api/auth")
	{
		authGroup.GET("/validate_token", AuthWithAcc, validateToken())
		authGroup.POST("/register", register(authService, logger))
		authGroup.POST("/login", login(authService, logger))
		authGroup.POST("/guest", guestLogin(authService, logger))
		authGroup.POST("/logout", AuthWithAcc, logout(authService, logger))
		authGroup.POST("/refresh_token", AuthWithRef, refreshToken(authService, logger))
	}
}

// validateToken lets clients probe whether their access token is still good.
func validateToken() gin.HandlerFunc {
	return func(gctx *gin.Context) {
		gctx.Status(http.StatusOK)
	}
}

// register returns a handler which takes care of user registration in Eventide.
func register(authService Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		var user entity.User

		// Serialize received data into User struct
		if binderr := gctx.ShouldBindJSON(&user); binderr != nil {
			// Error occured during serialization
			logger.WithCtx(gctx).Error().Err(binderr).Msg("Binding error occured with User struct.")
			gctx.AbortWithStatusJSON(http.StatusUnprocessableEntity, errors.UnprocessableEntity(""))
			return
		}

		// Apply the service logic for User registration in Eventide
		token, err := authService.register(gctx, user)
		if err != nil {
			// Error occured, might be validation or server error
			err, ok := err.(errors.ErrorResponse)
			if !ok {
				// Type assertion error
				gctx.AbortWithStatusJSON(http.StatusInternalServerError, errors.InternalServerError(""))
				return
			}
			gctx.AbortWithStatusJSON(err.Status, err)
			return
		}

		gctx.JSON(http.StatusOK, token)
	}
}

// login returns a handler which takes care of user login in Eventide.
func login(authService Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		var user entity.UserLogin

		// Serialize received data into UserLogin struct
		if binderr := gctx.ShouldBindJSON(&user); binderr != nil {
			// Error occured during serialization
			logger.WithCtx(gctx).Error().Err(binderr).Msg("Binding error occured with UserLogin struct.")
			gctx.AbortWithStatusJSON(http.StatusUnprocessableEntity, errors.UnprocessableEntity(""))
			return
		}

		// Apply the service logic for User login in Eventide
		token, err := authService.login(gctx, user)
		if err != nil {
			// Error occured, might be validation or server error
			err, ok := err.(errors.ErrorResponse)
			if !ok {
				// Type assertion error
				gctx.AbortWithStatusJSON(http.StatusInternalServerError, errors.InternalServerError(""))
				return
			}
			gctx.AbortWithStatusJSON(err.Status, err)
			return
		}

		gctx.JSON(http.StatusOK, token)
	}
}

// guestLogin returns a handler which hands out throwaway guest sessions in Eventide.
// Guests can browse and attend events but never create, modify or delete them.
func guestLogin(authService Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		token, err := authService.guest(gctx)
		if err != nil {
			// Error occured, might be validation or server error
			err, ok := err.(errors.ErrorResponse)
			if !ok {
				// Type assertion error
				gctx.AbortWithStatusJSON(http.StatusInternalServerError, errors.InternalServerError(""))
				return
			}
			gctx.AbortWithStatusJSON(err.Status, err)
			return
		}

		gctx.JSON(http.StatusOK, token)
	}
}

// logout returns a handler which invalidates the acting user's access token in Eventide.
func logout(authService Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		err := authService.logout(gctx)
		if err != nil {
			// Error occured, might be validation or server error
			err, ok := err.(errors.ErrorResponse)
			if !ok {
				// Type assertion error
				gctx.AbortWithStatusJSON(http.StatusInternalServerError, errors.InternalServerError(""))
				return
			}
			gctx.AbortWithStatusJSON(err.Status, err)
			return
		}
		gctx.Status(http.StatusOK)
	}
}

// refreshToken returns a handler which rotates the user's token pair in Eventide.
// The refresh middleware already dropped the old refresh token at this point.
func refreshToken(authService Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		token, err := authService.refreshtoken(gctx)
		if err != nil {
			// Error occured, might be validation or server error
			err, ok := err.(errors.ErrorResponse)
			if !ok {
				// Type assertion error
				gctx.AbortWithStatusJSON(http.StatusInternalServerError, errors.InternalServerError(""))
				return
			}
			gctx.AbortWithStatusJSON(err.Status, err)
			return
		}
		gctx.JSON(http.StatusOK, token)
	}
}
