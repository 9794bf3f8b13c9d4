package entities

// MeetingState is the full observable state of a meeting: the document
// returned by the snapshot endpoint and broadcast to observers after
// every mutation.
type MeetingState struct {
	Meeting   Meeting
	Attendees []Attendee
	TimeLog   []TimeLogEntry
	Responses []Response
	// NextUp is the participant next in the turn queue for the current
	// phase; empty when the phase has no queue or is exhausted.
	NextUp string
	// Missing lists the participants still outstanding for the current
	// phase's completion predicate.
	Missing []string
}
