// Structure of Event Model in Eventide.

package entity

// Saved in DB as event:<this.ID>, attendee usernames live in a separate
// set keyed by this.AttendeesKey so membership and cardinality checks stay cheap.
type Event struct {
	ID           string   `json:"event_id,omitempty" redis:"event_id" valid:"-"`
	Name         string   `json:"event_name" redis:"event_name" valid:"required,type(string),printableascii,stringlength(3|60),nospaceonly~event_name:Event Name cannot contain only spaces"`
	Description  string   `json:"event_description" redis:"event_description" valid:"required,type(string),stringlength(3|500)"`
	Date         int64    `json:"event_date" redis:"event_date" valid:"required"`
	Location     string   `json:"event_location" redis:"event_location" valid:"required,type(string),stringlength(3|100)"`
	Category     string   `json:"event_category" redis:"event_category" valid:"required,in(music|sports|technology|business|arts|other)"`
	ImageURL     string   `json:"event_image_url,omitempty" redis:"event_image_url" valid:"url,optional"`
	Creator      string   `json:"event_creator,omitempty" redis:"event_creator" valid:"-"`
	MaxAttendees uint     `json:"event_max_attendees,omitempty" redis:"event_max_attendees" valid:"range(0|100000),optional"`
	Status       string   `json:"event_status,omitempty" redis:"event_status" valid:"in(upcoming|ongoing|completed|cancelled),optional"`
	AttendeesKey string   `json:"event_attendees_key,omitempty" redis:"event_attendees_key" valid:"-"`
	Created      int64    `json:"event_created,omitempty" redis:"event_created" valid:"-"`
	Attendees    []string `json:"event_attendees,omitempty" valid:"-"`
}

// MaxAttendees = 0 means the event has no attendance cap.
// IsFull is always derived from the current attendee list, never stored.
func (e Event) IsFull() bool {
	return e.MaxAttendees > 0 && uint(len(e.Attendees)) >= e.MaxAttendees
}

// Returns true if one more attendee can register for this event.
func (e Event) CanAcceptMoreAttendees() bool {
	return e.MaxAttendees == 0 || uint(len(e.Attendees)) < e.MaxAttendees
}
