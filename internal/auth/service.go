// Service layer of the internal package authentication.

package auth

import (
	"Eventide/internal/entity"
	"Eventide/internal/errors"
	"Eventide/internal/user"
	"Eventide/pkg/log"
	"context"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/rs/xid"

	"golang.org/x/crypto/bcrypt"
)

// Guest sessions are short-lived, the account is meant to be thrown away.
const (
	accessTokenValidity       = time.Minute * 15
	refreshTokenValidity      = time.Hour * 24 * 7
	guestRefreshTokenValidity = time.Hour * 24
)

// Service layer of internal package auth which encapsulates authentication logic of Eventide.
type Service interface {
	// Registers an user in Eventide with valid user credentials.
	register(context.Context, entity.User) (map[string]string, error)
	// Verifies credentials of an existing user and hands out a fresh token pair.
	login(context.Context, entity.UserLogin) (map[string]string, error)
	// Creates a throwaway guest account and hands out a short-lived token pair.
	guest(context.Context) (map[string]string, error)
	// Invalidates the acting user's tokens.
	logout(context.Context) error
	// Hands out a fresh token pair after the refresh middleware rotated the old one.
	refreshtoken(context.Context) (map[string]string, error)
}

// Object of this will be passed around from main to routers to API.
// Helps to access the service layer interface and call methods.
// Also helps to pass objects to be used from outer layer.
type service struct {
	accSigningKey string
	refSigningKey string
	userRepo      user.Repository
	authRepo      Repository
	logger        log.Logger
}

// Helps to access the service layer interface and call methods. Service object is passed from main.
func NewService(accSigningKey string, refSigningKey string, userRepo user.Repository, authRepo Repository, logger log.Logger) Service {
	return service{accSigningKey, refSigningKey, userRepo, authRepo, logger}
}

func (s service) register(ctx context.Context, ue entity.User) (map[string]string, error) {
	token := make(map[string]string)

	// Validate the received user data which is serialized to entity.User struct
	valerr := s.validateUserData(ctx, ue)
	if valerr != nil {
		// Error occured during validation
		return token, valerr
	}

	// Check for user availability against user.Username
	available, dberr := s.userRepo.HasUser(ctx, s.logger, ue.Username)
	if dberr != nil {
		// Error occured in HasUser()
		return token, errors.InternalServerError("")
	} else if available {
		// User by the received username is already available in the platform
		valerr := errors.New("username:username is already taken")
		return token, errors.GenerateValidationErrorResponse([]error{valerr})
	}

	// Hash user password and save the credentials in the user object
	hasheduserpwd, hasherr := s.generatePwDHash(ctx, ue.Password)
	if hasherr != nil {
		return token, errors.InternalServerError("")
	}
	ue.Password = hasheduserpwd
	ue.IsGuest = false

	// Save the user in the DB
	_, dberr = s.userRepo.SetOrUpdateUser(ctx, s.logger, ue, true)
	if dberr != nil {
		// Error occured in SetOrUpdateUser()
		return token, dberr
	}

	return s.issueTokens(ctx, ue.Username, false)
}

func (s service) login(ctx context.Context, ue entity.UserLogin) (map[string]string, error) {
	token := make(map[string]string)

	// Validate the received credentials which are serialized to entity.UserLogin struct
	_, valerr := govalidator.ValidateStruct(ue)
	if valerr != nil {
		valerr := valerr.(govalidator.Errors).Errors()
		return token, errors.GenerateValidationErrorResponse(valerr)
	}

	stored, dberr := s.userRepo.GetUser(ctx, s.logger, ue.Username)
	if dberr != nil {
		// Don't leak whether the username or the password was wrong
		return token, errors.Unauthorized("Incorrect username or password")
	}
	if !s.verifyPwDHash(ue.Password, stored.Password) {
		return token, errors.Unauthorized("Incorrect username or password")
	}

	return s.issueTokens(ctx, stored.Username, stored.IsGuest)
}

func (s service) guest(ctx context.Context) (map[string]string, error) {
	token := make(map[string]string)

	// Random throwaway credentials, nobody is ever expected to log back in
	guestUser := entity.User{
		Username: "guest_" + xid.New().String(),
		FullName: "Guest",
		IsGuest:  true,
	}
	hashedpwd, hasherr := s.generatePwDHash(ctx, uuid.NewString())
	if hasherr != nil {
		return token, errors.InternalServerError("")
	}
	guestUser.Password = hashedpwd

	_, dberr := s.userRepo.SetOrUpdateUser(ctx, s.logger, guestUser, true)
	if dberr != nil {
		// Error occured in SetOrUpdateUser()
		return token, dberr
	}
	s.logger.WithCtx(ctx).Info().Msgf("Created guest account %s", guestUser.Username)

	tokens, jwterr := s.issueTokens(ctx, guestUser.Username, true)
	if jwterr != nil {
		return token, jwterr
	}
	tokens["username"] = guestUser.Username
	return tokens, nil
}

func (s service) logout(ctx context.Context) error {
	accTokenUUID, ok := ctx.Value("access_token_uuid").(string)
	if !ok {
		// token uuid missing from context
		return errors.InternalServerError("")
	}
	dberr := s.authRepo.DelToken(ctx, s.logger, accTokenUUID)
	if dberr != nil {
		err, ok := dberr.(errors.ErrorResponse)
		if ok && err.Status == 404 {
			// Token already gone, logout is idempotent
			return nil
		}
		return dberr
	}
	return nil
}

func (s service) refreshtoken(ctx context.Context) (map[string]string, error) {
	token := make(map[string]string)
	username, ok := ctx.Value("Username").(string)
	if !ok {
		// username missing from context
		return token, errors.InternalServerError("")
	}
	stored, dberr := s.userRepo.GetUser(ctx, s.logger, username)
	if dberr != nil {
		return token, dberr
	}
	return s.issueTokens(ctx, stored.Username, stored.IsGuest)
}

// Helper which creates a token pair for the user and persists it in the DB.
func (s service) issueTokens(ctx context.Context, username string, guest bool) (map[string]string, error) {
	token := make(map[string]string)
	userJWTData, jwterr := s.createToken(ctx, username, guest)
	if jwterr != nil {
		// Error during generating user's jwtData
		return token, errors.InternalServerError("")
	}
	// Save generated tokens with expiration into the DB
	dberr := s.authRepo.SetToken(ctx, s.logger, userJWTData)
	if dberr != nil {
		// Error during saving user's JWT
		return token, errors.InternalServerError("")
	}
	token["access_token"] = userJWTData.AccessToken
	token["refresh_token"] = userJWTData.RefreshToken
	return token, nil
}

// Helper to validate the user data against validation-tags mentioned in its entity.
func (s service) validateUserData(ctx context.Context, ue entity.User) error {
	_, valerr := govalidator.ValidateStruct(ue)
	if valerr != nil {
		valerr := valerr.(govalidator.Errors).Errors()
		return errors.GenerateValidationErrorResponse(valerr)
	}
	return nil
}

// Helper to generate password hash and return in string type.
// Uses external package "bcrypt" and its function GenerateFromPassword.
func (s service) generatePwDHash(ctx context.Context, password string) (string, error) {
	pwdbyte, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.WithCtx(ctx).Error().Err(err).Msg("Error occured during Password encryption.")
		return "", errors.InternalServerError("")
	}
	return string(pwdbyte), nil
}

// Helper to verify incoming password with the actual hash of user's set password.
// Helpful during login verification of an user in Eventide.
func (s service) verifyPwDHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

type JWTdata struct {
	Username        string `json:"username"`
	AccessToken     string `json:"access_token"`
	AccTokenExp     int64  `json:"access_token_expiry"`
	AccessTokenUUID string `json:"access_token_uuid"`
	RefreshToken    string `json:"refresh_token"`
	RefTokenExp     int64  `json:"refresh_token_expiry"`
	RefTokenUUID    string `json:"refresh_token_uuid"`
}

// Helper to generate a JWT for an user given the claims data.
func (s service) generateJWT(ctx context.Context, claims jwt.Claims, signingKey string) (string, error) {
	token, jwterr := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingKey))
	if jwterr != nil {
		s.logger.Error().Err(jwterr).Msg("Error occured during JWT generation")
		return "", jwterr
	}
	return token, nil
}

// Helper to create and return jwtData for an user with username passed as param.
func (s service) createToken(ctx context.Context, username string, guest bool) (*JWTdata, error) {
	jd := &JWTdata{}
	var jwterr error

	refValidity := refreshTokenValidity
	if guest {
		refValidity = guestRefreshTokenValidity
	}

	jd.Username = username
	jd.AccessTokenUUID = uuid.NewString()
	jd.AccTokenExp = time.Now().Add(accessTokenValidity).Unix()
	jd.RefTokenUUID = uuid.NewString()
	jd.RefTokenExp = time.Now().Add(refValidity).Unix()

	// Generate AccessToken using above data as claims
	// Pass AccessTokenSigningKey fetched from env to service
	jd.AccessToken, jwterr = s.generateJWT(ctx, jwt.MapClaims{
		"authorized":        true,
		"access_token_uuid": jd.AccessTokenUUID,
		"username":          username,
		"exp":               jd.AccTokenExp,
	}, s.accSigningKey)
	if jwterr != nil {
		// Error in generateJWT
		return nil, jwterr
	}
	// Generate RefreshToken using above data as claims
	// Pass RefreshTokenSigningKey fetched from env to service
	jd.RefreshToken, jwterr = s.generateJWT(ctx, jwt.MapClaims{
		"refresh_token_uuid": jd.RefTokenUUID,
		"username":           username,
		"exp":                jd.RefTokenExp,
	}, s.refSigningKey)
	if jwterr != nil {
		// Error in generateJWT
		return nil, jwterr
	}

	return jd, nil
}
