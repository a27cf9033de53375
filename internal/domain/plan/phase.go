package plan

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/intakehq/intake-api/internal/platform/apperr"
)

// Phase is a single block of a treatment plan: a name, a length in weeks and
// a visit frequency, plus free-text clinical detail. Order is 1-based and
// contiguous within a plan.
type Phase struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Order         int       `db:"phase_order" json:"order"`
	Name          string    `db:"name" json:"name"`
	DurationWeeks int       `db:"duration_weeks" json:"duration_weeks"`
	VisitsPerWeek int       `db:"visits_per_week" json:"visits_per_week"`
	Description   *string   `db:"description" json:"description,omitempty"`
	Goals         *string   `db:"goals" json:"goals,omitempty"`
	Notes         *string   `db:"notes" json:"notes,omitempty"`
}

// VisitCount is the number of visits this phase schedules. It is always
// derived, never stored.
func (p Phase) VisitCount() int {
	return p.DurationWeeks * p.VisitsPerWeek
}

// PhaseSet is the ordered collection of phases in a plan. All mutation
// helpers return a new set and leave the receiver untouched, so callers can
// roll back by keeping the previous value.
type PhaseSet []Phase

// Direction selects a neighbor for MovePhase.
type Direction int

const (
	MoveUp Direction = iota
	MoveDown
)

// Totals aggregates a phase set for display and for the save payload.
type Totals struct {
	TotalDurationWeeks int `json:"total_duration_weeks"`
	TotalVisits        int `json:"total_visits"`
	PhaseCount         int `json:"phase_count"`
}

func phaseErrors(p Phase) *apperr.ValidationError {
	v := &apperr.ValidationError{}
	if p.Name == "" {
		v.Add("name", "is required")
	}
	if p.DurationWeeks < 1 {
		v.Add("duration_weeks", "must be at least 1")
	}
	if p.VisitsPerWeek < 1 {
		v.Add("visits_per_week", "must be at least 1")
	}
	if v.HasErrors() {
		return v
	}
	return nil
}

// AddPhase validates the phase and appends it at the end of the set with the
// next order number. The phase is assigned an id if it does not carry one.
func AddPhase(set PhaseSet, p Phase) (PhaseSet, error) {
	if v := phaseErrors(p); v != nil {
		return nil, v
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	out := make(PhaseSet, len(set), len(set)+1)
	copy(out, set)
	p.Order = len(out) + 1
	return append(out, p), nil
}

// RemovePhase deletes the phase with the given id and renumbers the
// remainder so that order stays contiguous from 1.
func RemovePhase(set PhaseSet, id uuid.UUID) (PhaseSet, error) {
	idx := indexOf(set, id)
	if idx < 0 {
		return nil, apperr.NewNotFound("phase", id.String())
	}
	out := make(PhaseSet, 0, len(set)-1)
	out = append(out, set[:idx]...)
	out = append(out, set[idx+1:]...)
	return renumber(out), nil
}

// MovePhase swaps the phase with its neighbor in the given direction. Moving
// the first phase up or the last phase down is a no-op, not an error.
func MovePhase(set PhaseSet, id uuid.UUID, dir Direction) (PhaseSet, error) {
	idx := indexOf(set, id)
	if idx < 0 {
		return nil, apperr.NewNotFound("phase", id.String())
	}

	out := make(PhaseSet, len(set))
	copy(out, set)

	switch dir {
	case MoveUp:
		if idx == 0 {
			return out, nil
		}
		out[idx-1], out[idx] = out[idx], out[idx-1]
	case MoveDown:
		if idx == len(out)-1 {
			return out, nil
		}
		out[idx], out[idx+1] = out[idx+1], out[idx]
	default:
		return nil, fmt.Errorf("unknown direction: %d", dir)
	}

	return renumber(out), nil
}

// ComputeTotals sums the set. An empty set yields zeros; the result does not
// depend on phase order.
func ComputeTotals(set PhaseSet) Totals {
	t := Totals{PhaseCount: len(set)}
	for _, p := range set {
		t.TotalDurationWeeks += p.DurationWeeks
		t.TotalVisits += p.VisitCount()
	}
	return t
}

func indexOf(set PhaseSet, id uuid.UUID) int {
	for i, p := range set {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func renumber(set PhaseSet) PhaseSet {
	for i := range set {
		set[i].Order = i + 1
	}
	return set
}
