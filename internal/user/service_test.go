// Tests for the user service layer of Eventide.

package user

import (
	"Eventide/internal/entity"
	"Eventide/internal/errors"
	"Eventide/pkg/log"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// In-memory stand-in for the user repository.
type memRepo struct {
	users     map[string]entity.User
	attending map[string][]string
}

func (r *memRepo) GetUser(ctx context.Context, logger log.Logger, username string) (entity.User, error) {
	stored, ok := r.users[username]
	if !ok {
		return entity.User{}, errors.NotFound("User not available")
	}
	return stored, nil
}

func (r *memRepo) SetOrUpdateUser(ctx context.Context, logger log.Logger, ue entity.User, userExistCheck bool) (bool, error) {
	r.users[ue.Username] = ue
	return true, nil
}

func (r *memRepo) HasUser(ctx context.Context, logger log.Logger, username string) (bool, error) {
	_, ok := r.users[username]
	return ok, nil
}

func (r *memRepo) AddAttendingEvent(ctx context.Context, logger log.Logger, username string, eventID string) error {
	r.attending[username] = append(r.attending[username], eventID)
	return nil
}

func (r *memRepo) RemoveAttendingEvent(ctx context.Context, logger log.Logger, username string, eventID string) error {
	ids := r.attending[username]
	for i, id := range ids {
		if id == eventID {
			r.attending[username] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

func (r *memRepo) GetAttendingEvents(ctx context.Context, logger log.Logger, username string) ([]string, error) {
	return r.attending[username], nil
}

func TestGetUserHidesPasswordHash(t *testing.T) {
	repo := &memRepo{
		users: map[string]entity.User{
			"alice123": {Username: "alice123", FullName: "Alice Wonder", Password: "some-bcrypt-hash"},
		},
		attending: map[string][]string{},
	}
	svc := NewService(repo, log.New("test"))

	ctx := context.WithValue(context.Background(), "Username", "alice123")
	fetched, err := svc.getuser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice123", fetched.Username)
	assert.Equal(t, "Alice Wonder", fetched.FullName)
	assert.Empty(t, fetched.Password)

	// Without the middleware-provided username there is nothing to fetch
	_, err = svc.getuser(context.Background())
	assert.Error(t, err)
}

func TestGetAttendingEvents(t *testing.T) {
	repo := &memRepo{
		users:     map[string]entity.User{"alice123": {Username: "alice123"}},
		attending: map[string][]string{"alice123": {"ev1", "ev2"}},
	}
	svc := NewService(repo, log.New("test"))

	ctx := context.WithValue(context.Background(), "Username", "alice123")
	ids, err := svc.getattending(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ev1", "ev2"}, ids)
}
