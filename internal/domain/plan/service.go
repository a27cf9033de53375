package plan

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/intakehq/intake-api/internal/platform/apperr"
)

type Service struct {
	plans Repository
}

func NewService(plans Repository) *Service {
	return &Service{plans: plans}
}

var validStatuses = map[string]bool{
	"active": true, "completed": true, "paused": true, "cancelled": true,
}

// Save persists a plan against its incident. An incident holds at most one
// plan: saving against an incident that already has one updates that plan
// in place, regardless of whether the caller intended a create.
func (s *Service) Save(ctx context.Context, p *TreatmentPlan) error {
	if p.IncidentID == uuid.Nil {
		return apperr.NewValidation("incident_id", "is required")
	}
	if p.Status == "" {
		p.Status = "active"
	}
	if !validStatuses[p.Status] {
		return apperr.NewValidation("status", fmt.Sprintf("invalid status: %s", p.Status))
	}
	if ok, fields := Validate(draftOf(p)); !ok {
		return &apperr.ValidationError{Fields: fields}
	}
	p.Phases = renumber(append(PhaseSet(nil), p.Phases...))

	if p.ID == uuid.Nil {
		existing, err := s.plans.GetByIncident(ctx, p.IncidentID)
		switch {
		case err == nil:
			p.ID = existing.ID
			p.CreatedAt = existing.CreatedAt
			if err := s.plans.Update(ctx, p); err != nil {
				return apperr.NewPersistence("update plan", err)
			}
			return nil
		case !errors.Is(err, pgx.ErrNoRows):
			// A lookup fault is not "no plan yet"; creating here could leave
			// the incident with two plans once storage recovers.
			return apperr.NewPersistence("fetch plan for incident", err)
		}
		if err := s.plans.Create(ctx, p); err != nil {
			return apperr.NewPersistence("create plan", err)
		}
		return nil
	}

	if _, err := s.plans.GetByID(ctx, p.ID); err != nil {
		return apperr.NewNotFound("plan", p.ID.String())
	}
	if err := s.plans.Update(ctx, p); err != nil {
		return apperr.NewPersistence("update plan", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*TreatmentPlan, error) {
	p, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NewNotFound("plan", id.String())
	}
	return p, nil
}

func (s *Service) GetByIncident(ctx context.Context, incidentID uuid.UUID) (*TreatmentPlan, error) {
	p, err := s.plans.GetByIncident(ctx, incidentID)
	if err != nil {
		return nil, apperr.NewNotFound("plan for incident", incidentID.String())
	}
	return p, nil
}

// Totals recomputes the schedule aggregates for a stored plan.
func (s *Service) Totals(ctx context.Context, id uuid.UUID) (Totals, error) {
	p, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return Totals{}, apperr.NewNotFound("plan", id.String())
	}
	return ComputeTotals(p.Phases), nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*TreatmentPlan, int, error) {
	return s.plans.List(ctx, limit, offset)
}

func draftOf(p *TreatmentPlan) PlanDraft {
	notes := ""
	if p.AdditionalNotes != nil {
		notes = *p.AdditionalNotes
	}
	return PlanDraft{
		IncidentID:      p.IncidentID,
		Diagnosis:       p.Diagnosis,
		OverallGoal:     p.OverallGoal,
		AdditionalNotes: notes,
		Phases:          p.Phases,
	}
}

// CreatePlan implements PlanStore for editors backed by this service.
func (s *Service) CreatePlan(ctx context.Context, draft PlanDraft, totals Totals) (uuid.UUID, error) {
	p := planOf(draft)
	if err := s.Save(ctx, p); err != nil {
		return uuid.Nil, err
	}
	return p.ID, nil
}

// UpdatePlan implements PlanStore for editors backed by this service.
func (s *Service) UpdatePlan(ctx context.Context, id uuid.UUID, draft PlanDraft, totals Totals) error {
	p := planOf(draft)
	p.ID = id
	return s.Save(ctx, p)
}

func planOf(draft PlanDraft) *TreatmentPlan {
	p := &TreatmentPlan{
		IncidentID:  draft.IncidentID,
		Diagnosis:   draft.Diagnosis,
		OverallGoal: draft.OverallGoal,
		Phases:      draft.Phases,
	}
	if draft.AdditionalNotes != "" {
		notes := draft.AdditionalNotes
		p.AdditionalNotes = &notes
	}
	return p
}

var _ PlanStore = (*Service)(nil)
