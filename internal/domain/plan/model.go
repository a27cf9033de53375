package plan

import (
	"time"

	"github.com/google/uuid"
)

// TreatmentPlan maps to the treatment_plan table. A plan belongs to exactly
// one incident; its phases live in treatment_phase and are replaced as a
// whole on every update.
type TreatmentPlan struct {
	ID              uuid.UUID `db:"id" json:"id"`
	IncidentID      uuid.UUID `db:"incident_id" json:"incident_id"`
	Diagnosis       string    `db:"diagnosis" json:"diagnosis"`
	OverallGoal     string    `db:"overall_goal" json:"overall_goal"`
	Status          string    `db:"status" json:"status"`
	AdditionalNotes *string   `db:"additional_notes" json:"additional_notes,omitempty"`
	Phases          PhaseSet  `json:"phases"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
