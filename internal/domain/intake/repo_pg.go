package intake

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/intakehq/intake-api/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const sectionCols = `id, incident_id, section_key, data, completed, created_at, updated_at`

func scanSection(row pgx.Row) (*SectionRecord, error) {
	var rec SectionRecord
	err := row.Scan(&rec.ID, &rec.IncidentID, &rec.SectionKey, &rec.Data,
		&rec.Completed, &rec.CreatedAt, &rec.UpdatedAt)
	return &rec, err
}

func (r *repoPG) Create(ctx context.Context, rec *SectionRecord) error {
	rec.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO intake_section (id, incident_id, section_key, data, completed)
		VALUES ($1,$2,$3,$4,$5)`,
		rec.ID, rec.IncidentID, rec.SectionKey, rec.Data, rec.Completed)
	return err
}

func (r *repoPG) Update(ctx context.Context, rec *SectionRecord) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE intake_section SET data=$2, completed=$3, updated_at=NOW() WHERE id=$1`,
		rec.ID, rec.Data, rec.Completed)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*SectionRecord, error) {
	return scanSection(r.conn(ctx).QueryRow(ctx,
		`SELECT `+sectionCols+` FROM intake_section WHERE id = $1`, id))
}

func (r *repoPG) GetByIncidentAndKey(ctx context.Context, incidentID uuid.UUID, key string) (*SectionRecord, error) {
	return scanSection(r.conn(ctx).QueryRow(ctx,
		`SELECT `+sectionCols+` FROM intake_section WHERE incident_id = $1 AND section_key = $2`,
		incidentID, key))
}

func (r *repoPG) ListByIncident(ctx context.Context, incidentID uuid.UUID) ([]*SectionRecord, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+sectionCols+` FROM intake_section WHERE incident_id = $1 ORDER BY created_at`, incidentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*SectionRecord
	for rows.Next() {
		rec, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rec)
	}
	return items, rows.Err()
}
