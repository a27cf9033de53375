package visits

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, req *VisitRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*VisitRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	ListByIncident(ctx context.Context, incidentID uuid.UUID, limit, offset int) ([]*VisitRequest, int, error)
	ListByPlan(ctx context.Context, planID uuid.UUID, limit, offset int) ([]*VisitRequest, int, error)
}
