package visits

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/intakehq/intake-api/internal/domain/plan"
	"github.com/intakehq/intake-api/internal/platform/apperr"
)

// PlanSource resolves treatment plans for request validation. The plan
// service implements it.
type PlanSource interface {
	Get(ctx context.Context, id uuid.UUID) (*plan.TreatmentPlan, error)
}

type Service struct {
	visits Repository
	plans  PlanSource
}

func NewService(visits Repository, plans PlanSource) *Service {
	return &Service{visits: visits, plans: plans}
}

var validStatuses = map[string]bool{
	"requested": true, "confirmed": true, "declined": true, "cancelled": true,
}

// terminalStatuses are final; a request in one of these never changes again.
var terminalStatuses = map[string]bool{
	"declined": true, "cancelled": true,
}

// Create files a visit request against a plan. The plan must exist and be
// active; the incident reference is taken from the plan, never the caller.
func (s *Service) Create(ctx context.Context, planID uuid.UUID, req *VisitRequest) error {
	if req.PreferredDate.IsZero() {
		return apperr.NewValidation("preferred_date", "is required")
	}
	p, err := s.plans.Get(ctx, planID)
	if err != nil {
		return err
	}
	if p.Status != "active" {
		return apperr.NewValidation("plan", fmt.Sprintf("visits can only be requested against an active plan, status is %s", p.Status))
	}
	if req.PhaseID != nil {
		if indexOfPhase(p.Phases, *req.PhaseID) < 0 {
			return apperr.NewNotFound("phase", req.PhaseID.String())
		}
	}

	req.PlanID = p.ID
	req.IncidentID = p.IncidentID
	req.Status = "requested"
	if err := s.visits.Create(ctx, req); err != nil {
		return apperr.NewPersistence("create visit request", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*VisitRequest, error) {
	v, err := s.visits.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NewNotFound("visit request", id.String())
	}
	return v, nil
}

// UpdateStatus moves a request to a new status. Declined and cancelled are
// terminal.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*VisitRequest, error) {
	if !validStatuses[status] {
		return nil, apperr.NewValidation("status", fmt.Sprintf("invalid status: %s", status))
	}
	v, err := s.visits.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NewNotFound("visit request", id.String())
	}
	if terminalStatuses[v.Status] {
		return nil, apperr.NewValidation("status", fmt.Sprintf("request is already %s", v.Status))
	}
	if err := s.visits.UpdateStatus(ctx, id, status); err != nil {
		return nil, apperr.NewPersistence("update visit request status", err)
	}
	v.Status = status
	return v, nil
}

func (s *Service) ListByIncident(ctx context.Context, incidentID uuid.UUID, limit, offset int) ([]*VisitRequest, int, error) {
	return s.visits.ListByIncident(ctx, incidentID, limit, offset)
}

func (s *Service) ListByPlan(ctx context.Context, planID uuid.UUID, limit, offset int) ([]*VisitRequest, int, error) {
	return s.visits.ListByPlan(ctx, planID, limit, offset)
}

func indexOfPhase(set plan.PhaseSet, id uuid.UUID) int {
	for i, ph := range set {
		if ph.ID == id {
			return i
		}
	}
	return -1
}
