// Auth repository encapsulates the data access logic (interactions with the DB) related to Authentication in Eventide.

package auth

import (
	"Eventide/internal/errors"
	"Eventide/pkg/db"
	"Eventide/pkg/log"
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

type Repository interface {
	// SetToken adds the user's AccessTokenUUID:username and RefreshTokenUUID:username in the DB.
	SetToken(context.Context, log.Logger, *JWTdata) error
	// TokenExists checks whether tokenUUID:username exists in the DB.
	TokenExists(context.Context, log.Logger, string, string) (bool, error)
	// DelToken removes the tokenUUID key from the DB, used during logout and refresh rotation.
	DelToken(context.Context, log.Logger, string) error
}

// repository struct of auth Repository.
// Object of this will be passed around from main to internal.
// Helps to access the repository layer interface and call methods.
type repository struct {
	db *db.RedisDB
}

// Returns a new instance of auth repository for other packages to access its interface.
func NewRepository(dbwrp *db.RedisDB) Repository {
	return repository{db: dbwrp}
}

// Returns nil if Token got successfully added into the DB else error.
func (r repository) SetToken(ctx context.Context, logger log.Logger, jwtData *JWTdata) error {
	now := time.Now()
	// Set AccessTokenUUID:username in the DB
	accTokenExp := time.Unix(jwtData.AccTokenExp, 0)
	_, dberr := r.db.Client().Set(ctx, jwtData.AccessTokenUUID, jwtData.Username, accTokenExp.Sub(now)).Result()
	if dberr != nil {
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.Set in auth.SetToken")
		return errors.InternalServerError("")
	}
	// Set RefreshTokenUUID:username in the DB
	refTokenExp := time.Unix(jwtData.RefTokenExp, 0)
	_, dberr = r.db.Client().Set(ctx, jwtData.RefTokenUUID, jwtData.Username, refTokenExp.Sub(now)).Result()
	if dberr != nil {
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.Set in auth.SetToken")
		return errors.InternalServerError("")
	}
	return nil
}

// Returns boolean if tokenUUID:username exists in the DB or not.
// tokenUUID can be both AccessToken or RefreshToken.
func (r repository) TokenExists(ctx context.Context, logger log.Logger, tokenUUID string, username string) (bool, error) {
	val, dberr := r.db.Client().Get(ctx, tokenUUID).Result()
	if dberr != nil && dberr != redis.Nil {
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.Get in auth.TokenExists")
		return false, errors.InternalServerError("")
	} else if dberr == redis.Nil {
		// Key doesn't exist, maybe got expired
		return false, nil
	}
	return val == username, nil
}

// Returns nil if the tokenUUID key got removed from the DB.
func (r repository) DelToken(ctx context.Context, logger log.Logger, tokenUUID string) error {
	removed, dberr := r.db.Client().Del(ctx, tokenUUID).Result()
	if dberr != nil {
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.Del in auth.DelToken")
		return errors.InternalServerError("")
	} else if removed == 0 {
		return errors.NotFound("")
	}
	return nil
}
