package report

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

type reportRepoPG struct{ pool *pgxpool.Pool }

func NewReportRepoPG(pool *pgxpool.Pool) ReportRepository {
	return &reportRepoPG{pool: pool}
}

func (r *reportRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const reportCols = `id, period_type, start_date, end_date, metrics, summaries, generated_at`

func scanReport(row pgx.Row) (*OTReport, error) {
	var rep OTReport
	err := row.Scan(&rep.ID, &rep.PeriodType, &rep.StartDate, &rep.EndDate,
		&rep.Metrics, &rep.Summaries, &rep.GeneratedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &rep, err
}

func (r *reportRepoPG) Create(ctx context.Context, rep *OTReport) error {
	rep.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO ot_report (id, period_type, start_date, end_date, metrics, summaries, generated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		rep.ID, rep.PeriodType, rep.StartDate, rep.EndDate, rep.Metrics, rep.Summaries, rep.GeneratedAt)
	return err
}

func (r *reportRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*OTReport, error) {
	return scanReport(r.conn(ctx).QueryRow(ctx,
		`SELECT `+reportCols+` FROM ot_report WHERE id = $1`, id))
}

func (r *reportRepoPG) List(ctx context.Context, limit, offset int) ([]*OTReport, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM ot_report`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+reportCols+` FROM ot_report ORDER BY generated_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*OTReport
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rep)
	}
	return items, total, rows.Err()
}
