package intake

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/intakehq/intake-api/internal/platform/apperr"
)

// ClassifierSource resolves an incident's type classifier string. The
// incident service implements it.
type ClassifierSource interface {
	Classifier(ctx context.Context, incidentID uuid.UUID) (string, error)
}

// ErrSubmitInFlight is returned when a section submission arrives while an
// earlier one for the same incident and section is still being written.
var ErrSubmitInFlight = fmt.Errorf("a submission is already in progress for this section")

type Service struct {
	sections   Repository
	classifier ClassifierSource

	mu       sync.Mutex
	inFlight map[string]bool
}

func NewService(sections Repository, classifier ClassifierSource) *Service {
	return &Service{
		sections:   sections,
		classifier: classifier,
		inFlight:   make(map[string]bool),
	}
}

// FetchIncidentSections builds the hydrated form set for an incident: the
// registry list for its classified type, with persisted data, ids and
// completion flags filled in from storage.
func (s *Service) FetchIncidentSections(ctx context.Context, incidentID uuid.UUID) (FormSet, error) {
	classifier, err := s.classifier.Classifier(ctx, incidentID)
	if err != nil {
		return FormSet{}, err
	}
	fs := NewFormSet(incidentID, ParseIncidentType(classifier))

	records, err := s.sections.ListByIncident(ctx, incidentID)
	if err != nil {
		return FormSet{}, apperr.NewPersistence("list intake sections", err)
	}
	for _, rec := range records {
		idx := fs.SectionIndex(rec.SectionKey)
		if idx < 0 {
			continue
		}
		section := fs.Sections[idx]
		section.Data = rec.Data
		section.PersistedID = rec.ID
		section.Completed = rec.Completed
		fs = fs.WithSection(idx, section)
	}
	return fs, nil
}

// SubmitSection writes one section's data for an incident, creating the row
// on first submission and shallow-merging into it afterwards. It reports
// whether the call created the row. At most one submission per section is in
// flight at a time.
func (s *Service) SubmitSection(ctx context.Context, incidentID uuid.UUID, key string, data map[string]any) (*SectionRecord, bool, error) {
	if len(data) == 0 {
		return nil, false, apperr.NewValidation("data", "is required")
	}
	classifier, err := s.classifier.Classifier(ctx, incidentID)
	if err != nil {
		return nil, false, err
	}
	if !knownSection(ParseIncidentType(classifier), key) {
		return nil, false, apperr.NewNotFound("intake section", key)
	}

	guard := incidentID.String() + "/" + key
	s.mu.Lock()
	if s.inFlight[guard] {
		s.mu.Unlock()
		return nil, false, ErrSubmitInFlight
	}
	s.inFlight[guard] = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.inFlight, guard)
		s.mu.Unlock()
	}()

	existing, err := s.sections.GetByIncidentAndKey(ctx, incidentID, key)
	switch {
	case err == nil:
		existing.Data = mergeData(existing.Data, data)
		existing.Completed = true
		if err := s.sections.Update(ctx, existing); err != nil {
			return nil, false, apperr.NewPersistence("update intake section", err)
		}
		return existing, false, nil
	case !errors.Is(err, pgx.ErrNoRows):
		// Only a confirmed miss may fall through to create; anything else
		// is a storage fault and creating now could duplicate the row.
		return nil, false, apperr.NewPersistence("fetch intake section", err)
	}

	rec := &SectionRecord{
		IncidentID: incidentID,
		SectionKey: key,
		Data:       data,
		Completed:  true,
	}
	if err := s.sections.Create(ctx, rec); err != nil {
		return nil, false, apperr.NewPersistence("create intake section", err)
	}
	return rec, true, nil
}

// Readiness recomputes the submit gate for an incident from current storage.
func (s *Service) Readiness(ctx context.Context, incidentID uuid.UUID) (Readiness, error) {
	fs, err := s.FetchIncidentSections(ctx, incidentID)
	if err != nil {
		return Readiness{}, err
	}
	return ComputeReadiness(fs), nil
}

func knownSection(t IncidentType, key string) bool {
	for _, d := range SectionsFor(t) {
		if d.Key == key {
			return true
		}
	}
	return false
}

// CreateSection implements SectionStore for orchestrators backed by this
// service.
func (s *Service) CreateSection(ctx context.Context, incidentID uuid.UUID, key string, data map[string]any) (uuid.UUID, error) {
	rec, _, err := s.SubmitSection(ctx, incidentID, key, data)
	if err != nil {
		return uuid.Nil, err
	}
	return rec.ID, nil
}

// UpdateSection implements SectionStore for orchestrators backed by this
// service.
func (s *Service) UpdateSection(ctx context.Context, id uuid.UUID, data map[string]any) error {
	rec, err := s.sections.GetByID(ctx, id)
	if err != nil {
		return apperr.NewNotFound("intake section", id.String())
	}
	rec.Data = mergeData(rec.Data, data)
	rec.Completed = true
	if err := s.sections.Update(ctx, rec); err != nil {
		return apperr.NewPersistence("update intake section", err)
	}
	return nil
}

var _ SectionStore = (*Service)(nil)
