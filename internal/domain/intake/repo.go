package intake

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, rec *SectionRecord) error
	Update(ctx context.Context, rec *SectionRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*SectionRecord, error)
	GetByIncidentAndKey(ctx context.Context, incidentID uuid.UUID, key string) (*SectionRecord, error)
	ListByIncident(ctx context.Context, incidentID uuid.UUID) ([]*SectionRecord, error)
}
