package entities

import "time"

// TimeLogEntry records one unit of timed participation: a member's turn in
// a timed segment, or a section-level bracket around a whole phase.
type TimeLogEntry struct {
	ID        uint
	MeetingID uint
	Phase     Phase
	UserID    string    // empty = section-level entry
	StartTime time.Time
	EndTime   time.Time // zero = entry is still open
	Duration  time.Duration
	Overtime  time.Duration
	Priority  string // optional lightning-round category tag
	Skipped   bool
	CreatedAt time.Time
}

// Open reports whether the entry is still running. At most one open entry
// exists per meeting: whoever currently holds the floor.
func (e *TimeLogEntry) Open() bool {
	return e.EndTime.IsZero()
}

// SectionLevel reports whether the entry brackets a phase rather than a
// specific participant's turn.
func (e *TimeLogEntry) SectionLevel() bool {
	return e.UserID == ""
}

// Close sets the end time and derives duration and overtime against the
// phase's allotted budget. Overtime is never negative; section-level
// entries have no overtime.
func (e *TimeLogEntry) Close(end time.Time) {
	e.EndTime = end
	e.Duration = end.Sub(e.StartTime)
	if e.Duration < 0 {
		e.Duration = 0
	}
	allotted := e.Phase.Allotted()
	if e.SectionLevel() || allotted == 0 {
		e.Overtime = 0
		return
	}
	e.Overtime = e.Duration - allotted
	if e.Overtime < 0 {
		e.Overtime = 0
	}
}
