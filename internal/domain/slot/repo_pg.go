package slot

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

type slotRepoPG struct{ pool *pgxpool.Pool }

func NewSlotRepoPG(pool *pgxpool.Pool) SlotRepository {
	return &slotRepoPG{pool: pool}
}

func (r *slotRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const slotCols = `id, date, start_time, end_time, room_id, resource_ids, request_id, status, notes, created_at, updated_at`

func scanSlot(row pgx.Row) (*OTSlot, error) {
	var s OTSlot
	err := row.Scan(&s.ID, &s.Date, &s.Start, &s.End, &s.RoomID, &s.ResourceIDs,
		&s.RequestID, &s.Status, &s.Notes, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &s, err
}

func scanSlots(rows pgx.Rows) ([]*OTSlot, error) {
	defer rows.Close()
	var out []*OTSlot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *slotRepoPG) Create(ctx context.Context, s *OTSlot) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO ot_slot (id, date, start_time, end_time, room_id, resource_ids, request_id, status, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		s.ID, s.Date, s.Start, s.End, s.RoomID, s.ResourceIDs, s.RequestID, s.Status, s.Notes)
	return err
}

func (r *slotRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*OTSlot, error) {
	return scanSlot(r.conn(ctx).QueryRow(ctx,
		`SELECT `+slotCols+` FROM ot_slot WHERE id = $1`, id))
}

func (r *slotRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE ot_slot SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *slotRepoPG) ListByDate(ctx context.Context, date string) ([]*OTSlot, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+slotCols+` FROM ot_slot WHERE date = $1 ORDER BY start_time`, date)
	if err != nil {
		return nil, err
	}
	return scanSlots(rows)
}

func (r *slotRepoPG) ListActive(ctx context.Context) ([]*OTSlot, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+slotCols+` FROM ot_slot WHERE status IN ('booked','blocked','maintenance')`)
	if err != nil {
		return nil, err
	}
	return scanSlots(rows)
}

func (r *slotRepoPG) ListBookedForRequest(ctx context.Context, requestID uuid.UUID) ([]*OTSlot, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+slotCols+` FROM ot_slot WHERE request_id = $1 AND status = 'booked'`, requestID)
	if err != nil {
		return nil, err
	}
	return scanSlots(rows)
}

func (r *slotRepoPG) AnyActiveForResource(ctx context.Context, resourceID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM ot_slot
			WHERE status IN ('booked','blocked','maintenance')
			  AND (room_id = $1 OR $1 = ANY(resource_ids))
		)`, resourceID).Scan(&exists)
	return exists, err
}
