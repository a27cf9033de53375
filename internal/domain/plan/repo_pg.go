package plan

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

// inTx runs fn inside the ambient transaction when one is present, or a new
// one otherwise. Plan header and phases must always change together.
func (r *repoPG) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if db.TxFromContext(ctx) != nil {
		return fn(ctx)
	}
	return db.RunInTx(ctx, r.pool, fn)
}

const planCols = `id, incident_id, diagnosis, overall_goal, status, additional_notes, created_at, updated_at`

func (r *repoPG) scanPlan(row pgx.Row) (*TreatmentPlan, error) {
	var p TreatmentPlan
	err := row.Scan(&p.ID, &p.IncidentID, &p.Diagnosis, &p.OverallGoal,
		&p.Status, &p.AdditionalNotes, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *TreatmentPlan) error {
	p.ID = uuid.New()
	return r.inTx(ctx, func(ctx context.Context) error {
		q := r.conn(ctx)
		_, err := q.Exec(ctx, `
			INSERT INTO treatment_plan (id, incident_id, diagnosis, overall_goal, status, additional_notes)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			p.ID, p.IncidentID, p.Diagnosis, p.OverallGoal, p.Status, p.AdditionalNotes)
		if err != nil {
			return err
		}
		return r.insertPhases(ctx, q, p.ID, p.Phases)
	})
}

func (r *repoPG) insertPhases(ctx context.Context, q queryable, planID uuid.UUID, phases PhaseSet) error {
	for _, ph := range phases {
		if ph.ID == uuid.Nil {
			ph.ID = uuid.New()
		}
		_, err := q.Exec(ctx, `
			INSERT INTO treatment_phase (id, plan_id, phase_order, name, duration_weeks,
				visits_per_week, description, goals, notes)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			ph.ID, planID, ph.Order, ph.Name, ph.DurationWeeks,
			ph.VisitsPerWeek, ph.Description, ph.Goals, ph.Notes)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) loadPhases(ctx context.Context, planID uuid.UUID) (PhaseSet, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, phase_order, name, duration_weeks, visits_per_week, description, goals, notes
		FROM treatment_phase WHERE plan_id = $1 ORDER BY phase_order`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var phases PhaseSet
	for rows.Next() {
		var ph Phase
		if err := rows.Scan(&ph.ID, &ph.Order, &ph.Name, &ph.DurationWeeks,
			&ph.VisitsPerWeek, &ph.Description, &ph.Goals, &ph.Notes); err != nil {
			return nil, err
		}
		phases = append(phases, ph)
	}
	return phases, rows.Err()
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*TreatmentPlan, error) {
	p, err := r.scanPlan(r.conn(ctx).QueryRow(ctx, `SELECT `+planCols+` FROM treatment_plan WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	p.Phases, err = r.loadPhases(ctx, p.ID)
	return p, err
}

func (r *repoPG) GetByIncident(ctx context.Context, incidentID uuid.UUID) (*TreatmentPlan, error) {
	p, err := r.scanPlan(r.conn(ctx).QueryRow(ctx, `SELECT `+planCols+` FROM treatment_plan WHERE incident_id = $1`, incidentID))
	if err != nil {
		return nil, err
	}
	p.Phases, err = r.loadPhases(ctx, p.ID)
	return p, err
}

func (r *repoPG) Update(ctx context.Context, p *TreatmentPlan) error {
	return r.inTx(ctx, func(ctx context.Context) error {
		q := r.conn(ctx)
		_, err := q.Exec(ctx, `
			UPDATE treatment_plan SET diagnosis=$2, overall_goal=$3, status=$4,
				additional_notes=$5, updated_at=NOW()
			WHERE id = $1`,
			p.ID, p.Diagnosis, p.OverallGoal, p.Status, p.AdditionalNotes)
		if err != nil {
			return err
		}
		if _, err := q.Exec(ctx, `DELETE FROM treatment_phase WHERE plan_id = $1`, p.ID); err != nil {
			return err
		}
		return r.insertPhases(ctx, q, p.ID, p.Phases)
	})
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*TreatmentPlan, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM treatment_plan`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+planCols+` FROM treatment_plan ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*TreatmentPlan
	for rows.Next() {
		p, err := r.scanPlan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for _, p := range items {
		if p.Phases, err = r.loadPhases(ctx, p.ID); err != nil {
			return nil, 0, err
		}
	}
	return items, total, nil
}
