package incident

import (
	"time"

	"github.com/google/uuid"
)

// Incident maps to the incident table. An incident is the patient episode
// that intake forms and treatment plans attach to: a car accident, a
// workplace injury, or a general condition being treated.
type Incident struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	PatientID   uuid.UUID  `db:"patient_id" json:"patient_id"`
	Type        string     `db:"type" json:"type"`
	Description *string    `db:"description" json:"description,omitempty"`
	OccurredAt  *time.Time `db:"occurred_at" json:"occurred_at,omitempty"`
	Status      string     `db:"status" json:"status"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}
