package incident

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

const incCols = `id, patient_id, type, description, occurred_at, status, created_at, updated_at`

func (r *repoPG) scan(row pgx.Row) (*Incident, error) {
	var inc Incident
	err := row.Scan(&inc.ID, &inc.PatientID, &inc.Type, &inc.Description,
		&inc.OccurredAt, &inc.Status, &inc.CreatedAt, &inc.UpdatedAt)
	return &inc, err
}

func (r *repoPG) Create(ctx context.Context, inc *Incident) error {
	inc.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO incident (id, patient_id, type, description, occurred_at, status)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		inc.ID, inc.PatientID, inc.Type, inc.Description, inc.OccurredAt, inc.Status)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Incident, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+incCols+` FROM incident WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, inc *Incident) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE incident SET type=$2, description=$3, occurred_at=$4, status=$5, updated_at=NOW()
		WHERE id = $1`,
		inc.ID, inc.Type, inc.Description, inc.OccurredAt, inc.Status)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Incident, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM incident`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+incCols+` FROM incident ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Incident
	for rows.Next() {
		inc, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, inc)
	}
	return items, total, nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Incident, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM incident WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+incCols+` FROM incident WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Incident
	for rows.Next() {
		inc, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, inc)
	}
	return items, total, nil
}
