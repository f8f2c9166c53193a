package checklist

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/otms/otms/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type checklistRepoPG struct{ pool *pgxpool.Pool }

func NewChecklistRepoPG(pool *pgxpool.Pool) ChecklistRepository {
	return &checklistRepoPG{pool: pool}
}

func (r *checklistRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const checklistCols = `id, request_id, items, status, created_at, updated_at`

func scanChecklist(row pgx.Row) (*OTChecklist, error) {
	var c OTChecklist
	err := row.Scan(&c.ID, &c.RequestID, &c.Items, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &c, err
}

func (r *checklistRepoPG) Create(ctx context.Context, c *OTChecklist) error {
	c.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO ot_checklist (id, request_id, items, status)
		VALUES ($1,$2,$3,$4)`,
		c.ID, c.RequestID, c.Items, c.Status)
	return err
}

func (r *checklistRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*OTChecklist, error) {
	return scanChecklist(r.conn(ctx).QueryRow(ctx,
		`SELECT `+checklistCols+` FROM ot_checklist WHERE id = $1`, id))
}

func (r *checklistRepoPG) GetByRequest(ctx context.Context, requestID uuid.UUID) (*OTChecklist, error) {
	return scanChecklist(r.conn(ctx).QueryRow(ctx,
		`SELECT `+checklistCols+` FROM ot_checklist WHERE request_id = $1`, requestID))
}

func (r *checklistRepoPG) Update(ctx context.Context, c *OTChecklist) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE ot_checklist SET items = $2, status = $3, updated_at = NOW()
		WHERE id = $1`,
		c.ID, c.Items, c.Status)
	return err
}
