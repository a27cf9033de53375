package visits

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

const visitCols = `id, incident_id, plan_id, phase_id, preferred_date, note, status, created_at, updated_at`

func scanVisit(row pgx.Row) (*VisitRequest, error) {
	var v VisitRequest
	err := row.Scan(&v.ID, &v.IncidentID, &v.PlanID, &v.PhaseID,
		&v.PreferredDate, &v.Note, &v.Status, &v.CreatedAt, &v.UpdatedAt)
	return &v, err
}

func (r *repoPG) Create(ctx context.Context, req *VisitRequest) error {
	req.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO visit_request (id, incident_id, plan_id, phase_id, preferred_date, note, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		req.ID, req.IncidentID, req.PlanID, req.PhaseID, req.PreferredDate, req.Note, req.Status)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*VisitRequest, error) {
	return scanVisit(r.conn(ctx).QueryRow(ctx, `SELECT `+visitCols+` FROM visit_request WHERE id = $1`, id))
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE visit_request SET status=$2, updated_at=NOW() WHERE id=$1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) list(ctx context.Context, where string, arg any, limit, offset int) ([]*VisitRequest, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM visit_request WHERE `+where, arg).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+visitCols+` FROM visit_request WHERE `+where+` ORDER BY preferred_date LIMIT $2 OFFSET $3`,
		arg, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*VisitRequest
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, v)
	}
	return items, total, rows.Err()
}

func (r *repoPG) ListByIncident(ctx context.Context, incidentID uuid.UUID, limit, offset int) ([]*VisitRequest, int, error) {
	return r.list(ctx, `incident_id = $1`, incidentID, limit, offset)
}

func (r *repoPG) ListByPlan(ctx context.Context, planID uuid.UUID, limit, offset int) ([]*VisitRequest, int, error) {
	return r.list(ctx, `plan_id = $1`, planID, limit, offset)
}
