package entities

import "time"

// RSVPStatus is a member's declared intention for a meeting.
type RSVPStatus string

const (
	RSVPYes        RSVPStatus = "yes"
	RSVPNo         RSVPStatus = "no"
	RSVPMaybe      RSVPStatus = "maybe"
	RSVPNoResponse RSVPStatus = "no_response"
)

// AttendanceMode distinguishes how a member attends.
type AttendanceMode string

const (
	AttendInPerson AttendanceMode = "in_person"
	AttendVideo    AttendanceMode = "video"
)

// Attendee is one member's participation record for one meeting.
type Attendee struct {
	ID          uint
	MeetingID   uint
	UserID      string
	RSVP        RSVPStatus
	CheckedInAt time.Time // zero = not checked in
	Mode        AttendanceMode
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CheckedIn reports whether the member has checked in. Only checked-in
// attendees count toward phase-completion requirements.
func (a *Attendee) CheckedIn() bool {
	return !a.CheckedInAt.IsZero()
}
