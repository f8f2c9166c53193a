package progress

import (
	"context"
	"time"

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

type progressRepoPG struct{ pool *pgxpool.Pool }

func NewProgressRepoPG(pool *pgxpool.Pool) ProgressRepository {
	return &progressRepoPG{pool: pool}
}

func (r *progressRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const progressCols = `id, request_id, status, timestamp, notes, updated_by, tags`

func scanProgressRows(rows pgx.Rows) ([]*SurgeryProgress, error) {
	defer rows.Close()
	var out []*SurgeryProgress
	for rows.Next() {
		var p SurgeryProgress
		if err := rows.Scan(&p.ID, &p.RequestID, &p.Status, &p.Timestamp, &p.Notes, &p.UpdatedBy, &p.Tags); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (r *progressRepoPG) Create(ctx context.Context, p *SurgeryProgress) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO surgery_progress (id, request_id, status, timestamp, notes, updated_by, tags)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.RequestID, p.Status, p.Timestamp, p.Notes, p.UpdatedBy, p.Tags)
	return err
}

func (r *progressRepoPG) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*SurgeryProgress, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+progressCols+` FROM surgery_progress WHERE request_id = $1 ORDER BY timestamp`, requestID)
	if err != nil {
		return nil, err
	}
	return scanProgressRows(rows)
}

func (r *progressRepoPG) ListWindow(ctx context.Context, from, to time.Time) ([]*SurgeryProgress, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+progressCols+` FROM surgery_progress
		 WHERE timestamp >= $1 AND timestamp < $2 ORDER BY timestamp`, from, to)
	if err != nil {
		return nil, err
	}
	return scanProgressRows(rows)
}
