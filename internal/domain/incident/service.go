package incident

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/intakehq/intake-api/internal/platform/apperr"
)

type Service struct {
	incidents Repository
}

func NewService(incidents Repository) *Service {
	return &Service{incidents: incidents}
}

var validStatuses = map[string]bool{
	"open": true, "closed": true,
}

func (s *Service) Create(ctx context.Context, inc *Incident) error {
	if inc.PatientID == uuid.Nil {
		return apperr.NewValidation("patient_id", "is required")
	}
	if inc.Type == "" {
		inc.Type = "general_condition"
	}
	if inc.Status == "" {
		inc.Status = "open"
	}
	if !validStatuses[inc.Status] {
		return apperr.NewValidation("status", fmt.Sprintf("invalid status: %s", inc.Status))
	}
	if err := s.incidents.Create(ctx, inc); err != nil {
		return apperr.NewPersistence("create incident", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Incident, error) {
	inc, err := s.incidents.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NewNotFound("incident", id.String())
	}
	return inc, nil
}

// Classifier returns the raw incident type string used to select intake
// sections. Unknown classifier values are passed through unchanged; mapping
// to a known form set happens at parse time.
func (s *Service) Classifier(ctx context.Context, id uuid.UUID) (string, error) {
	inc, err := s.incidents.GetByID(ctx, id)
	if err != nil {
		return "", apperr.NewNotFound("incident", id.String())
	}
	return inc.Type, nil
}

func (s *Service) Update(ctx context.Context, inc *Incident) error {
	if inc.Status != "" && !validStatuses[inc.Status] {
		return apperr.NewValidation("status", fmt.Sprintf("invalid status: %s", inc.Status))
	}
	existing, err := s.incidents.GetByID(ctx, inc.ID)
	if err != nil {
		return apperr.NewNotFound("incident", inc.ID.String())
	}
	if inc.Type == "" {
		inc.Type = existing.Type
	}
	if inc.Status == "" {
		inc.Status = existing.Status
	}
	inc.PatientID = existing.PatientID
	if err := s.incidents.Update(ctx, inc); err != nil {
		return apperr.NewPersistence("update incident", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Incident, int, error) {
	return s.incidents.List(ctx, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Incident, int, error) {
	return s.incidents.ListByPatient(ctx, patientID, limit, offset)
}
