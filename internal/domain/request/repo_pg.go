package request

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

type requestRepoPG struct{ pool *pgxpool.Pool }

func NewRequestRepoPG(pool *pgxpool.Pool) RequestRepository {
	return &requestRepoPG{pool: pool}
}

func (r *requestRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const requestCols = `id, patient_id, requesting_doctor_id, surgery_type, urgency, diagnosis, status,
	scheduled_date, scheduled_start, scheduled_end, room_id, assigned_staff,
	pre_op_assessment, required_resources, consent_obtained, created_at, updated_at`

func scanRequest(row pgx.Row) (*SurgeryRequest, error) {
	var sr SurgeryRequest
	err := row.Scan(&sr.ID, &sr.PatientID, &sr.RequestingDoctorID, &sr.SurgeryType,
		&sr.Urgency, &sr.Diagnosis, &sr.Status,
		&sr.ScheduledDate, &sr.ScheduledStart, &sr.ScheduledEnd, &sr.RoomID, &sr.AssignedStaff,
		&sr.PreOpAssessment, &sr.RequiredResources, &sr.ConsentObtained,
		&sr.CreatedAt, &sr.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &sr, err
}

func (r *requestRepoPG) Create(ctx context.Context, sr *SurgeryRequest) error {
	sr.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO surgery_request
			(id, patient_id, requesting_doctor_id, surgery_type, urgency, diagnosis, status,
			 assigned_staff, pre_op_assessment, required_resources, consent_obtained)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		sr.ID, sr.PatientID, sr.RequestingDoctorID, sr.SurgeryType, sr.Urgency, sr.Diagnosis,
		sr.Status, sr.AssignedStaff, sr.PreOpAssessment, sr.RequiredResources, sr.ConsentObtained)
	return err
}

func (r *requestRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*SurgeryRequest, error) {
	return scanRequest(r.conn(ctx).QueryRow(ctx,
		`SELECT `+requestCols+` FROM surgery_request WHERE id = $1`, id))
}

func (r *requestRepoPG) Update(ctx context.Context, sr *SurgeryRequest) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE surgery_request SET
			status=$2, scheduled_date=$3, scheduled_start=$4, scheduled_end=$5, room_id=$6,
			assigned_staff=$7, pre_op_assessment=$8, required_resources=$9, consent_obtained=$10,
			updated_at=NOW()
		WHERE id = $1`,
		sr.ID, sr.Status, sr.ScheduledDate, sr.ScheduledStart, sr.ScheduledEnd, sr.RoomID,
		sr.AssignedStaff, sr.PreOpAssessment, sr.RequiredResources, sr.ConsentObtained)
	return err
}

func (r *requestRepoPG) List(ctx context.Context, status Status, urgency Urgency, limit, offset int) ([]*SurgeryRequest, int, error) {
	where := ` WHERE ($1 = '' OR status = $1) AND ($2 = '' OR urgency = $2)`
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM surgery_request`+where, status, urgency).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+requestCols+` FROM surgery_request`+where+
			` ORDER BY created_at DESC LIMIT $3 OFFSET $4`, status, urgency, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*SurgeryRequest
	for rows.Next() {
		sr, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, sr)
	}
	return items, total, rows.Err()
}

func (r *requestRepoPG) ListByStatuses(ctx context.Context, statuses []Status) ([]*SurgeryRequest, error) {
	ss := make([]string, len(statuses))
	for i, s := range statuses {
		ss[i] = string(s)
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+requestCols+` FROM surgery_request WHERE status = ANY($1) ORDER BY created_at`, ss)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*SurgeryRequest
	for rows.Next() {
		sr, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, sr)
	}
	return items, rows.Err()
}
