package intake

import (
	"time"

	"github.com/google/uuid"
)

// SectionRecord is the persisted form of one intake section. Rows are keyed
// by (incident_id, section_key); the data payload is stored as JSONB.
type SectionRecord struct {
	ID         uuid.UUID      `db:"id" json:"id"`
	IncidentID uuid.UUID      `db:"incident_id" json:"incident_id"`
	SectionKey string         `db:"section_key" json:"section_key"`
	Data       map[string]any `db:"data" json:"data"`
	Completed  bool           `db:"completed" json:"completed"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updated_at"`
}
