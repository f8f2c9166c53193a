package catalog

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

type resourceRepoPG struct{ pool *pgxpool.Pool }

func NewResourceRepoPG(pool *pgxpool.Pool) ResourceRepository {
	return &resourceRepoPG{pool: pool}
}

func (r *resourceRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const resourceCols = `id, kind, name, specialty, notes, created_at, updated_at`

func scanResource(row pgx.Row) (*OTResource, error) {
	var o OTResource
	err := row.Scan(&o.ID, &o.Kind, &o.Name, &o.Specialty, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &o, err
}

func (r *resourceRepoPG) Create(ctx context.Context, o *OTResource) error {
	o.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO ot_resource (id, kind, name, specialty, notes)
		VALUES ($1,$2,$3,$4,$5)`,
		o.ID, o.Kind, o.Name, o.Specialty, o.Notes)
	return err
}

func (r *resourceRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*OTResource, error) {
	return scanResource(r.conn(ctx).QueryRow(ctx,
		`SELECT `+resourceCols+` FROM ot_resource WHERE id = $1`, id))
}

func (r *resourceRepoPG) Update(ctx context.Context, o *OTResource) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE ot_resource SET name=$2, specialty=$3, notes=$4, updated_at=NOW()
		WHERE id = $1`,
		o.ID, o.Name, o.Specialty, o.Notes)
	return err
}

func (r *resourceRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM ot_resource WHERE id = $1`, id)
	return err
}

func (r *resourceRepoPG) List(ctx context.Context, kind Kind, limit, offset int) ([]*OTResource, int, error) {
	var (
		total int
		rows  pgx.Rows
		err   error
	)
	if kind == "" {
		if err = r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM ot_resource`).Scan(&total); err != nil {
			return nil, 0, err
		}
		rows, err = r.conn(ctx).Query(ctx,
			`SELECT `+resourceCols+` FROM ot_resource ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	} else {
		if err = r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM ot_resource WHERE kind = $1`, kind).Scan(&total); err != nil {
			return nil, 0, err
		}
		rows, err = r.conn(ctx).Query(ctx,
			`SELECT `+resourceCols+` FROM ot_resource WHERE kind = $1 ORDER BY name LIMIT $2 OFFSET $3`, kind, limit, offset)
	}
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*OTResource
	for rows.Next() {
		o, err := scanResource(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, o)
	}
	return items, total, rows.Err()
}

func (r *resourceRepoPG) SetAvailability(ctx context.Context, id uuid.UUID, date string, windows []Window) error {
	conn := r.conn(ctx)
	if _, err := conn.Exec(ctx,
		`DELETE FROM ot_resource_window WHERE resource_id = $1 AND date = $2`, id, date); err != nil {
		return err
	}
	for _, w := range windows {
		if _, err := conn.Exec(ctx, `
			INSERT INTO ot_resource_window (id, resource_id, date, start_time, end_time, status)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			uuid.New(), id, date, w.Start, w.End, w.Status); err != nil {
			return err
		}
	}
	return nil
}

func (r *resourceRepoPG) GetAvailability(ctx context.Context, id uuid.UUID, date string) ([]Window, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT start_time, end_time, status FROM ot_resource_window
		WHERE resource_id = $1 AND date = $2 ORDER BY start_time`, id, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var windows []Window
	for rows.Next() {
		var w Window
		if err := rows.Scan(&w.Start, &w.End, &w.Status); err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}
