package plan

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/intakehq/intake-api/internal/platform/apperr"
)

// EditorState tracks where a plan draft is in its edit/save lifecycle.
type EditorState int

const (
	StateEmpty EditorState = iota
	StateEditing
	StateSaving
	StateSaved
	StateError
)

func (s EditorState) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateEditing:
		return "editing"
	case StateSaving:
		return "saving"
	case StateSaved:
		return "saved"
	case StateError:
		return "error"
	}
	return "unknown"
}

// SaveRef records whether a draft has ever been persisted. Once a create
// succeeds the assigned id is captured and every later save is an update;
// the reference never reverts to unsaved.
type SaveRef struct {
	saved bool
	id    uuid.UUID
}

func Unsaved() SaveRef { return SaveRef{} }

func SavedRef(id uuid.UUID) SaveRef { return SaveRef{saved: true, id: id} }

func (r SaveRef) IsSaved() bool { return r.saved }

func (r SaveRef) ID() uuid.UUID { return r.id }

// PlanDraft is the in-memory working copy an editor mutates before saving.
type PlanDraft struct {
	IncidentID      uuid.UUID
	Diagnosis       string
	OverallGoal     string
	AdditionalNotes string
	Phases          PhaseSet
}

// PlanStore is the persistence collaborator an editor saves through.
type PlanStore interface {
	CreatePlan(ctx context.Context, draft PlanDraft, totals Totals) (uuid.UUID, error)
	UpdatePlan(ctx context.Context, id uuid.UUID, draft PlanDraft, totals Totals) error
}

// Validate checks a draft for saveability. It returns ok plus field-keyed
// messages; an invalid draft is a normal outcome, not an error.
func Validate(draft PlanDraft) (bool, map[string][]string) {
	fields := map[string][]string{}
	if draft.Diagnosis == "" {
		fields["diagnosis"] = append(fields["diagnosis"], "is required")
	}
	if draft.OverallGoal == "" {
		fields["overall_goal"] = append(fields["overall_goal"], "is required")
	}
	if len(draft.Phases) == 0 {
		fields["phases"] = append(fields["phases"], "at least one phase is required")
	}
	for i, p := range draft.Phases {
		if v := phaseErrors(p); v != nil {
			for field, msgs := range v.Fields {
				key := fmt.Sprintf("phases[%d].%s", i, field)
				fields[key] = append(fields[key], msgs...)
			}
		}
	}
	return len(fields) == 0, fields
}

// Editor drives a single plan draft through the edit/save lifecycle. It is
// safe for concurrent use; while a save is in flight every mutation of the
// draft is rejected.
type Editor struct {
	mu      sync.Mutex
	state   EditorState
	draft   PlanDraft
	ref     SaveRef
	lastErr error
	store   PlanStore
}

func NewEditor(store PlanStore, incidentID uuid.UUID) *Editor {
	return &Editor{
		state: StateEmpty,
		draft: PlanDraft{IncidentID: incidentID},
		ref:   Unsaved(),
		store: store,
	}
}

// LoadExisting seeds the editor with a previously persisted plan so that
// subsequent saves update it instead of creating a duplicate.
func (e *Editor) LoadExisting(id uuid.UUID, draft PlanDraft) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft = draft
	e.ref = SavedRef(id)
	e.state = StateSaved
}

func (e *Editor) State() EditorState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Editor) Draft() PlanDraft {
	e.mu.Lock()
	defer e.mu.Unlock()
	d := e.draft
	d.Phases = append(PhaseSet(nil), e.draft.Phases...)
	return d
}

func (e *Editor) Ref() SaveRef {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ref
}

// Err returns the failure from the most recent save attempt, if any.
func (e *Editor) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// ErrSaveInFlight is returned when a mutation or save arrives while a save
// is already running for this editor.
var ErrSaveInFlight = fmt.Errorf("a save is already in progress for this plan")

// mutate applies fn to the draft under the lock, rejecting mutations while a
// save is running. Any accepted edit moves the editor to Editing.
func (e *Editor) mutate(fn func(*PlanDraft) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateSaving {
		return ErrSaveInFlight
	}
	if err := fn(&e.draft); err != nil {
		return err
	}
	e.state = StateEditing
	return nil
}

func (e *Editor) SetDiagnosis(v string) error {
	return e.mutate(func(d *PlanDraft) error { d.Diagnosis = v; return nil })
}

func (e *Editor) SetOverallGoal(v string) error {
	return e.mutate(func(d *PlanDraft) error { d.OverallGoal = v; return nil })
}

func (e *Editor) SetAdditionalNotes(v string) error {
	return e.mutate(func(d *PlanDraft) error { d.AdditionalNotes = v; return nil })
}

func (e *Editor) AddPhase(p Phase) error {
	return e.mutate(func(d *PlanDraft) error {
		next, err := AddPhase(d.Phases, p)
		if err != nil {
			return err
		}
		d.Phases = next
		return nil
	})
}

func (e *Editor) RemovePhase(id uuid.UUID) error {
	return e.mutate(func(d *PlanDraft) error {
		next, err := RemovePhase(d.Phases, id)
		if err != nil {
			return err
		}
		d.Phases = next
		return nil
	})
}

func (e *Editor) MovePhase(id uuid.UUID, dir Direction) error {
	return e.mutate(func(d *PlanDraft) error {
		next, err := MovePhase(d.Phases, id, dir)
		if err != nil {
			return err
		}
		d.Phases = next
		return nil
	})
}

// Save validates the draft and persists it, creating on first success and
// updating ever after. On a store failure the editor enters Error with the
// draft intact; the caller decides whether to retry.
func (e *Editor) Save(ctx context.Context) error {
	e.mu.Lock()
	if e.state == StateSaving {
		e.mu.Unlock()
		return ErrSaveInFlight
	}
	if ok, fields := Validate(e.draft); !ok {
		e.mu.Unlock()
		return &apperr.ValidationError{Fields: fields}
	}

	draft := e.draft
	draft.Phases = append(PhaseSet(nil), e.draft.Phases...)
	ref := e.ref
	incident := e.draft.IncidentID
	e.state = StateSaving
	e.mu.Unlock()

	totals := ComputeTotals(draft.Phases)

	var saveErr error
	var newID uuid.UUID
	if ref.IsSaved() {
		saveErr = e.store.UpdatePlan(ctx, ref.ID(), draft, totals)
		newID = ref.ID()
	} else {
		newID, saveErr = e.store.CreatePlan(ctx, draft, totals)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// The result only applies if the editor still refers to the same plan.
	if e.draft.IncidentID != incident {
		e.state = StateEditing
		return nil
	}

	if saveErr != nil {
		e.state = StateError
		e.lastErr = saveErr
		return saveErr
	}

	e.ref = SavedRef(newID)
	e.state = StateSaved
	e.lastErr = nil
	return nil
}
