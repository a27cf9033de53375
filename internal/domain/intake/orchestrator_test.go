package intake

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

type mockSectionStore struct {
	creates int
	updates int
	fail    bool
}

func (m *mockSectionStore) CreateSection(ctx context.Context, incidentID uuid.UUID, key string, data map[string]any) (uuid.UUID, error) {
	if m.fail {
		return uuid.Nil, errors.New("store unavailable")
	}
	m.creates++
	return uuid.New(), nil
}

func (m *mockSectionStore) UpdateSection(ctx context.Context, id uuid.UUID, data map[string]any) error {
	if m.fail {
		return errors.New("store unavailable")
	}
	m.updates++
	return nil
}

func TestFormSet_GoBack(t *testing.T) {
	fs := NewFormSet(uuid.New(), GeneralCondition)
	fs.Cursor = 2

	fs = fs.GoBack()
	if fs.Cursor != 1 {
		t.Errorf("expected cursor 1, got %d", fs.Cursor)
	}
	fs = fs.GoBack()
	fs = fs.GoBack()
	if fs.Cursor != 0 {
		t.Errorf("expected cursor to stay at 0, got %d", fs.Cursor)
	}
}

func TestFormSet_CurrentSection(t *testing.T) {
	fs := NewFormSet(uuid.New(), VehicleIncident)
	if got := fs.CurrentSection().Key; got != "patient-identification" {
		t.Errorf("expected patient-identification, got %s", got)
	}
	fs.Cursor = 1
	if got := fs.CurrentSection().Key; got != "accident-details" {
		t.Errorf("expected accident-details, got %s", got)
	}
}

func TestSubmitSection_CreatesThenUpdates(t *testing.T) {
	store := &mockSectionStore{}
	o := NewOrchestrator(store)
	fs := NewFormSet(uuid.New(), GeneralCondition)

	res, err := o.SubmitSection(context.Background(), fs, map[string]any{"name": "Pat"})
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	first := res.FormSet.Sections[0]
	if !first.Persisted() {
		t.Fatal("expected persisted id after first submit")
	}
	if res.FormSet.Cursor != 1 {
		t.Errorf("expected cursor to advance to 1, got %d", res.FormSet.Cursor)
	}

	// Resubmit the same section after going back: must update, not create.
	back := res.FormSet.GoBack()
	res2, err := o.SubmitSection(context.Background(), back, map[string]any{"dob": "1990-04-01"})
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if store.creates != 1 || store.updates != 1 {
		t.Errorf("expected 1 create and 1 update, got %d and %d", store.creates, store.updates)
	}
	second := res2.FormSet.Sections[0]
	if second.PersistedID != first.PersistedID {
		t.Error("persisted id must never change once assigned")
	}
	if second.Data["name"] != "Pat" || second.Data["dob"] != "1990-04-01" {
		t.Errorf("expected shallow merge to keep earlier keys, got %v", second.Data)
	}
}

func TestSubmitSection_ShallowMergeOverwrites(t *testing.T) {
	o := NewOrchestrator(&mockSectionStore{})
	fs := NewFormSet(uuid.New(), GeneralCondition)

	res, err := o.SubmitSection(context.Background(), fs, map[string]any{"name": "Pat", "phone": "555"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	res2, err := o.SubmitSection(context.Background(), res.FormSet.GoBack(), map[string]any{"name": "Patricia"})
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	data := res2.FormSet.Sections[0].Data
	if data["name"] != "Patricia" {
		t.Errorf("expected new value to overwrite, got %v", data["name"])
	}
	if data["phone"] != "555" {
		t.Errorf("expected untouched key to survive, got %v", data["phone"])
	}
}

func TestSubmitSection_FailureKeepsCursorAndEdits(t *testing.T) {
	store := &mockSectionStore{fail: true}
	o := NewOrchestrator(store)
	fs := NewFormSet(uuid.New(), GeneralCondition)

	res, err := o.SubmitSection(context.Background(), fs, map[string]any{"name": "Pat"})
	if err == nil {
		t.Fatal("expected store error")
	}
	if res.FormSet.Cursor != 0 {
		t.Errorf("cursor must not advance on failure, got %d", res.FormSet.Cursor)
	}
	section := res.FormSet.Sections[0]
	if section.Data["name"] != "Pat" {
		t.Error("in-memory edits must survive a failed submit")
	}
	if section.Persisted() {
		t.Error("no persisted id may be assigned on failure")
	}

	// User-initiated retry against a recovered store succeeds as a create.
	store.fail = false
	res2, err := o.SubmitSection(context.Background(), res.FormSet, nil)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if !res2.FormSet.Sections[0].Persisted() {
		t.Error("expected persisted id after retry")
	}
	if store.creates != 1 {
		t.Errorf("expected one create, got %d", store.creates)
	}
}

func TestSubmitSection_LastSectionCompletes(t *testing.T) {
	o := NewOrchestrator(&mockSectionStore{})
	fs := NewFormSet(uuid.New(), GeneralCondition)

	var res SubmitResult
	var err error
	for i := range fs.Sections {
		res, err = o.SubmitSection(context.Background(), fs, map[string]any{"step": i})
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		fs = res.FormSet
	}

	if !res.Done {
		t.Fatal("expected wizard completion after last section")
	}
	if fs.Cursor != len(fs.Sections)-1 {
		t.Errorf("cursor must not move past the last section, got %d", fs.Cursor)
	}
	if len(res.Aggregate) != len(fs.Sections) {
		t.Errorf("expected aggregate for all %d sections, got %d", len(fs.Sections), len(res.Aggregate))
	}
	if res.Aggregate["patient-identification"]["step"] != 0 {
		t.Errorf("unexpected aggregate payload: %v", res.Aggregate["patient-identification"])
	}
}

func TestComputeReadiness_Scenario(t *testing.T) {
	// Six sections, one required; two persisted including the required one.
	fs := NewFormSet(uuid.New(), GeneralCondition)
	for _, idx := range []int{0, 2} {
		s := fs.Sections[idx]
		s.PersistedID = uuid.New()
		s.Completed = true
		fs = fs.WithSection(idx, s)
	}

	r := ComputeReadiness(fs)
	if !r.CanSubmit {
		t.Error("expected canSubmit with the required section complete")
	}
	if r.CompletionPercentage != 33 {
		t.Errorf("expected 33%%, got %d", r.CompletionPercentage)
	}
	if len(r.MissingRequired) != 0 {
		t.Errorf("expected no missing required, got %v", r.MissingRequired)
	}
}

func TestComputeReadiness_RequiredNotPersisted(t *testing.T) {
	fs := NewFormSet(uuid.New(), GeneralCondition)
	// Data exists client-side, but the section was never written.
	s := fs.Sections[0]
	s.Data = map[string]any{"name": "Pat"}
	fs = fs.WithSection(0, s)

	r := ComputeReadiness(fs)
	if r.CanSubmit {
		t.Error("unpersisted required section must block submission")
	}
	if len(r.MissingRequired) != 1 || r.MissingRequired[0] != "patient-identification" {
		t.Errorf("expected patient-identification missing, got %v", r.MissingRequired)
	}
	if r.CompletionPercentage != 0 {
		t.Errorf("expected 0%%, got %d", r.CompletionPercentage)
	}
}

func TestComputeReadiness_PersistedButNotFlagged(t *testing.T) {
	fs := NewFormSet(uuid.New(), GeneralCondition)
	s := fs.Sections[0]
	s.PersistedID = uuid.New()
	fs = fs.WithSection(0, s)

	r := ComputeReadiness(fs)
	if r.CanSubmit {
		t.Error("a persisted row without the completion flag does not count")
	}
}

func TestComputeReadiness_RoundsDown(t *testing.T) {
	fs := NewFormSet(uuid.New(), GeneralCondition)
	for _, idx := range []int{0, 1, 2, 3, 4} {
		s := fs.Sections[idx]
		s.PersistedID = uuid.New()
		s.Completed = true
		fs = fs.WithSection(idx, s)
	}
	if r := ComputeReadiness(fs); r.CompletionPercentage != 83 {
		t.Errorf("expected floor(500/6)=83, got %d", r.CompletionPercentage)
	}
}
