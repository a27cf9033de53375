package visits

import (
	"time"

	"github.com/google/uuid"
)

// VisitRequest is a patient's ask for an appointment under a treatment plan
// phase. It carries no calendar slot; scheduling happens outside this system.
type VisitRequest struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	IncidentID    uuid.UUID  `db:"incident_id" json:"incident_id"`
	PlanID        uuid.UUID  `db:"plan_id" json:"plan_id"`
	PhaseID       *uuid.UUID `db:"phase_id" json:"phase_id,omitempty"`
	PreferredDate time.Time  `db:"preferred_date" json:"preferred_date"`
	Note          *string    `db:"note" json:"note,omitempty"`
	Status        string     `db:"status" json:"status"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}
