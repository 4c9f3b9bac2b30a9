// Structure of live update frames pushed to event page viewers in Eventide.

package entity

// Frame type tags, one per kind of live update.
const (
	FrameConnected  = "connected"
	FrameAttendance = "attendance"
	FrameUpdate     = "update"
	FrameDelete     = "delete"
)

// Attendance mutation actions accepted by the attend endpoint and echoed in frames.
const (
	ActionRegister   = "register"
	ActionUnregister = "unregister"
)

// LiveFrame is one message pushed to every viewer of an event's page.
// Type decides which of the optional fields are set:
//
//	connected  -> none
//	attendance -> Event, Action, UserID
//	update     -> Event
//	delete     -> EventID
type LiveFrame struct {
	Type    string `json:"type"`
	Event   *Event `json:"event,omitempty"`
	Action  string `json:"action,omitempty"`
	UserID  string `json:"userId,omitempty"`
	EventID string `json:"eventId,omitempty"`
}
