package intake

import (
	"context"

	"github.com/google/uuid"
)

// SectionStore is the persistence collaborator the orchestrator writes
// sections through.
type SectionStore interface {
	CreateSection(ctx context.Context, incidentID uuid.UUID, key string, data map[string]any) (uuid.UUID, error)
	UpdateSection(ctx context.Context, id uuid.UUID, data map[string]any) error
}

// SubmitResult carries the form set after a section submission. When the
// submitted section was the last one, Done is set and Aggregate holds every
// section's accumulated data keyed by section key.
type SubmitResult struct {
	FormSet   FormSet
	Done      bool
	Aggregate map[string]map[string]any
}

// Readiness is the submit gate for an incident's intake, recomputed on every
// call rather than cached.
type Readiness struct {
	CanSubmit            bool     `json:"can_submit"`
	MissingRequired      []string `json:"missing_required"`
	CompletionPercentage int      `json:"completion_percentage"`
}

// Orchestrator drives a FormSet through the wizard: it decides create versus
// update per section and advances the cursor on success. It holds no wizard
// state of its own; the FormSet value is the state.
type Orchestrator struct {
	store SectionStore
}

func NewOrchestrator(store SectionStore) *Orchestrator {
	return &Orchestrator{store: store}
}

// SubmitSection merges data into the current section and persists it. A
// section with no persisted id is created; afterwards every submission of
// that section is an update. On a store failure the returned form set keeps
// the merged edits and the cursor stays put so the user can retry.
func (o *Orchestrator) SubmitSection(ctx context.Context, fs FormSet, data map[string]any) (SubmitResult, error) {
	idx := fs.Cursor
	section := fs.Sections[idx]
	section.Data = mergeData(section.Data, data)

	if section.Persisted() {
		if err := o.store.UpdateSection(ctx, section.PersistedID, section.Data); err != nil {
			return SubmitResult{FormSet: fs.WithSection(idx, section)}, err
		}
	} else {
		id, err := o.store.CreateSection(ctx, fs.IncidentID, section.Key, section.Data)
		if err != nil {
			return SubmitResult{FormSet: fs.WithSection(idx, section)}, err
		}
		section.PersistedID = id
	}
	section.Completed = true

	fs = fs.WithSection(idx, section)
	if fs.OnLastSection() {
		aggregate := make(map[string]map[string]any, len(fs.Sections))
		for _, s := range fs.Sections {
			aggregate[s.Key] = s.Data
		}
		return SubmitResult{FormSet: fs, Done: true, Aggregate: aggregate}, nil
	}

	fs.Cursor++
	return SubmitResult{FormSet: fs}, nil
}

// ComputeReadiness evaluates the submit gate. A section counts as complete
// only when it has a persisted id and the server completion flag; data that
// exists client-side but was never successfully written does not count.
func ComputeReadiness(fs FormSet) Readiness {
	var completed int
	missing := []string{}
	for _, s := range fs.Sections {
		done := s.Persisted() && s.Completed
		if done {
			completed++
		}
		if s.Required && !done {
			missing = append(missing, s.Key)
		}
	}
	pct := 0
	if len(fs.Sections) > 0 {
		pct = 100 * completed / len(fs.Sections)
	}
	return Readiness{
		CanSubmit:            len(missing) == 0,
		MissingRequired:      missing,
		CompletionPercentage: pct,
	}
}
