// Tests for the event REST APIs of Eventide.

package event

import (
	"Eventide/internal/entity"
	"Eventide/internal/test"
	"bytes"
	"encoding/json"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Shared fakes behind the API test router, reset before every test.
var (
	apiEventRepo *stubEventRepo
	apiNotifier  *recordingNotifier
	apiOnce      sync.Once
)

// Registers the event handlers onto the shared mock router exactly once,
// guarded by the header-trusting stand-in auth middleware.
func apiRouter() *gin.Engine {
	router := test.MockRouter()
	apiOnce.Do(func() {
		apiEventRepo = newStubEventRepo()
		apiNotifier = &recordingNotifier{}
		svc := NewService(apiEventRepo, newStubUserRepo(fixtureUsers()...), &stubLiveRepo{viewers: map[string]int64{}}, apiNotifier, testLogger)
		APIHandlers(router, svc, test.MockAuthMiddleware(testLogger), testLogger)
	})
	apiEventRepo.events = map[string]entity.Event{}
	apiEventRepo.attendees = map[string]map[string]struct{}{}
	apiNotifier.calls = nil
	return router
}

func seedEvent(maxAttendees uint) entity.Event {
	event := fixtureEvent(maxAttendees)
	apiEventRepo.events[event.ID] = event
	apiEventRepo.attendees[event.ID] = make(map[string]struct{})
	return event
}

func eventBody(t *testing.T, event entity.Event) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(event)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func TestEventAPICreateAndGet(t *testing.T) {
	router := apiRouter()

	payload := fixtureEvent(10)
	payload.ID, payload.Creator, payload.AttendeesKey, payload.Status, payload.Created = "", "", "", "", 0
	w := test.ExecuteAPITest(testLogger, t, router, test.RequestAPITest{
		Method:       "POST",
		Path:         "/api/events",
		Body:         eventBody(t, payload),
		WantResponse: []int{200},
		Headers:      test.MockAuthHeaders("carol"),
	})

	var created struct {
		Event entity.Event `json:"event"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.Event.ID)
	assert.Equal(t, "carol", created.Event.Creator)

	w = test.ExecuteAPITest(testLogger, t, router, test.RequestAPITest{
		Method:       "GET",
		Path:         "/api/events/" + created.Event.ID,
		Body:         bytes.NewReader(nil),
		WantResponse: []int{200},
	})
	assert.Contains(t, w.Body.String(), "Gopher Meetup")

	test.ExecuteAPITest(testLogger, t, router, test.RequestAPITest{
		Method:       "GET",
		Path:         "/api/events/ev404",
		Body:         bytes.NewReader(nil),
		WantResponse: []int{404},
	})
}

func TestEventAPICreateRequiresAuth(t *testing.T) {
	router := apiRouter()

	test.ExecuteAPITest(testLogger, t, router, test.RequestAPITest{
		Method:       "POST",
		Path:         "/api/events",
		Body:         eventBody(t, fixtureEvent(10)),
		WantResponse: []int{401},
	})
}

func TestEventAPIAttendFlow(t *testing.T) {
	router := apiRouter()
	event := seedEvent(2)

	attendPath := "/api/events/" + event.ID + "/attend"
	registerBody := func() *bytes.Reader {
		return bytes.NewReader([]byte(`{"action":"register"}`))
	}

	w := test.ExecuteAPITest(testLogger, t, router, test.RequestAPITest{
		Method:       "POST",
		Path:         attendPath,
		Body:         registerBody(),
		WantResponse: []int{200},
		Headers:      test.MockAuthHeaders("alice"),
	})
	assert.Contains(t, w.Body.String(), "alice")

	// Registering twice is a client error
	w = test.ExecuteAPITest(testLogger, t, router, test.RequestAPITest{
		Method:       "POST",
		Path:         attendPath,
		Body:         registerBody(),
		WantResponse: []int{400},
		Headers:      test.MockAuthHeaders("alice"),
	})
	assert.Contains(t, w.Body.String(), "Already registered")

	// Unknown actions are refused before touching anything
	test.ExecuteAPITest(testLogger, t, router, test.RequestAPITest{
		Method:       "POST",
		Path:         attendPath,
		Body:         bytes.NewReader([]byte(`{"action":"rsvp"}`)),
		WantResponse: []int{400},
		Headers:      test.MockAuthHeaders("alice"),
	})

	// Each successful attendance change also went out as a broadcast
	assert.Len(t, apiNotifier.calls, 1)
}

func TestEventAPIOwnershipRules(t *testing.T) {
	router := apiRouter()
	event := seedEvent(10)

	// Someone else's event can't be edited
	test.ExecuteAPITest(testLogger, t, router, test.RequestAPITest{
		Method:       "PUT",
		Path:         "/api/events/" + event.ID,
		Body:         eventBody(t, event),
		WantResponse: []int{403},
		Headers:      test.MockAuthHeaders("bob"),
	})

	// Guests can't delete anything
	test.ExecuteAPITest(testLogger, t, router, test.RequestAPITest{
		Method:       "DELETE",
		Path:         "/api/events/" + event.ID,
		Body:         bytes.NewReader(nil),
		WantResponse: []int{403},
		Headers:      test.MockAuthHeaders("guest_x1"),
	})

	// The creator can
	test.ExecuteAPITest(testLogger, t, router, test.RequestAPITest{
		Method:       "DELETE",
		Path:         "/api/events/" + event.ID,
		Body:         bytes.NewReader(nil),
		WantResponse: []int{200},
		Headers:      test.MockAuthHeaders("carol"),
	})
	assert.NotContains(t, apiEventRepo.events, event.ID)
}
