// Service layer of the internal package user.

package user

import (
	"Eventide/internal/entity"
	"Eventide/internal/errors"
	"Eventide/pkg/log"
	"context"
)

// Service layer of internal package user which encapsulates UserModel logic of Eventide.
type Service interface {
	// Fetches user data based on the username stored in the request context.
	getuser(context.Context) (entity.User, error)
	// Fetches the IDs of every event the acting user attends.
	getattending(context.Context) ([]string, error)
}

// Object of this will be passed around from main to routers to API.
// Helps to access the service layer interface and call methods.
// Also helps to pass objects to be used from outer layer.
type service struct {
	userRepo Repository
	logger   log.Logger
}

func NewService(userRepo Repository, logger log.Logger) Service {
	return service{userRepo, logger}
}

func (s service) getuser(ctx context.Context) (entity.User, error) {
	// get username from context
	username, ok := ctx.Value("Username").(string)
	if !ok {
		// username missing from context
		return entity.User{}, errors.InternalServerError("")
	}
	user, dberr := s.userRepo.GetUser(ctx, s.logger, username)
	if dberr != nil {
		// Error occured in GetUser()
		return entity.User{}, dberr
	}
	// Password hash never leaves the service layer
	user.Password = ""
	return user, nil
}

func (s service) getattending(ctx context.Context) ([]string, error) {
	username, ok := ctx.Value("Username").(string)
	if !ok {
		// username missing from context
		return nil, errors.InternalServerError("")
	}
	return s.userRepo.GetAttendingEvents(ctx, s.logger, username)
}
