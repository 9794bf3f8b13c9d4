package entities

import "time"

// Phase is one ordered stage of a meeting's fixed lifecycle.
type Phase string

const (
	PhaseNotStarted        Phase = "not_started"
	PhaseOpeningMeditation Phase = "opening_meditation"
	PhaseOpeningEthos      Phase = "opening_ethos"
	PhaseLightningRound    Phase = "lightning_round"
	PhaseFullCheckins      Phase = "full_checkins"
	PhaseCurriculum        Phase = "curriculum"
	PhaseClosing           Phase = "closing"
	PhaseEnded             Phase = "ended"
)

// phaseOrder is the fixed forward-only sequence every meeting follows.
var phaseOrder = []Phase{
	PhaseNotStarted,
	PhaseOpeningMeditation,
	PhaseOpeningEthos,
	PhaseLightningRound,
	PhaseFullCheckins,
	PhaseCurriculum,
	PhaseClosing,
	PhaseEnded,
}

// Phases returns the full ordered phase sequence.
func Phases() []Phase {
	out := make([]Phase, len(phaseOrder))
	copy(out, phaseOrder)
	return out
}

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	for _, q := range phaseOrder {
		if p == q {
			return true
		}
	}
	return false
}

// Next returns the phase that follows p. ok is false when p is the last
// phase (or unknown).
func (p Phase) Next() (next Phase, ok bool) {
	for i, q := range phaseOrder {
		if p == q && i+1 < len(phaseOrder) {
			return phaseOrder[i+1], true
		}
	}
	return "", false
}

// RequiresTurns reports whether the phase completes by turn-queue
// exhaustion (one time-log entry per checked-in attendee).
func (p Phase) RequiresTurns() bool {
	return p == PhaseLightningRound || p == PhaseFullCheckins
}

// RequiresResponses reports whether the phase completes by per-attendee
// response coverage (curriculum reflections, session ratings).
func (p Phase) RequiresResponses() bool {
	return p == PhaseCurriculum || p == PhaseClosing
}

// Allotted returns the per-speaker time budget for the phase. Zero means
// the phase has no overtime concept (section-level phases).
func (p Phase) Allotted() time.Duration {
	switch p {
	case PhaseLightningRound:
		return 60 * time.Second
	case PhaseFullCheckins:
		return 600 * time.Second
	default:
		return 0
	}
}

// RequiredPhases lists the phases whose per-attendee coverage is mandatory
// for a meeting to count as truly complete.
func RequiredPhases() []Phase {
	return []Phase{PhaseLightningRound, PhaseFullCheckins}
}
