package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"noahs-ark/internal/domain/appointments"
	"noahs-ark/internal/platform/apperr"
)

type AppointmentsRepo struct {
	db *sql.DB
}

func NewAppointmentsRepo(db *sql.DB) *AppointmentsRepo {
	return &AppointmentsRepo{db: db}
}

const appointmentColumns = `
	id, adoption_request_id, date, time, notes, status, reason, created_at, updated_at`

func (r *AppointmentsRepo) Create(ctx context.Context, a appointments.Appointment) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO appointments (`+appointmentColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		a.ID,
		a.AdoptionRequestID,
		a.Date,
		a.Time,
		a.Notes,
		string(a.Status),
		toNullString(a.Reason),
		a.CreatedAt,
		a.UpdatedAt,
	)
	return err
}

func (r *AppointmentsRepo) Update(ctx context.Context, a appointments.Appointment) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `
		UPDATE appointments
		SET date = $2, time = $3, notes = $4, status = $5, reason = $6, updated_at = $7
		WHERE id = $1
	`,
		a.ID,
		a.Date,
		a.Time,
		a.Notes,
		string(a.Status),
		toNullString(a.Reason),
		a.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if rowsAffected(res) == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *AppointmentsRepo) Delete(ctx context.Context, id string) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rowsAffected(res) == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *AppointmentsRepo) GetByID(ctx context.Context, id string) (appointments.Appointment, error) {
	return r.get(ctx, id, "")
}

func (r *AppointmentsRepo) GetForUpdate(ctx context.Context, id string) (appointments.Appointment, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *AppointmentsRepo) get(ctx context.Context, id, lock string) (appointments.Appointment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return appointments.Appointment{}, apperr.ErrNotFound
	}

	row := conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`+lock, id)
	a, err := scanAppointment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return appointments.Appointment{}, apperr.ErrNotFound
	}
	return a, err
}

func (r *AppointmentsRepo) List(ctx context.Context, filter appointments.ListFilter) ([]appointments.Appointment, error) {
	q := `SELECT ` + appointmentColumns + ` FROM appointments WHERE 1=1`
	args := []any{}
	if len(filter.AdoptionRequestIDs) > 0 {
		ph := make([]string, len(filter.AdoptionRequestIDs))
		for i, id := range filter.AdoptionRequestIDs {
			args = append(args, id)
			ph[i] = fmt.Sprintf("$%d", len(args))
		}
		q += ` AND adoption_request_id IN (` + strings.Join(ph, ",") + `)`
	}
	if filter.ActiveOnly {
		args = append(args, string(appointments.StatusPending), string(appointments.StatusConfirmed))
		q += fmt.Sprintf(` AND status IN ($%d,$%d)`, len(args)-1, len(args))
	}
	q += ` ORDER BY date ASC, time ASC`

	rows, err := conn(ctx, r.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]appointments.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAppointment(s rowScanner) (appointments.Appointment, error) {
	var (
		a      appointments.Appointment
		status string
		reason sql.NullString
	)
	if err := s.Scan(
		&a.ID,
		&a.AdoptionRequestID,
		&a.Date,
		&a.Time,
		&a.Notes,
		&status,
		&reason,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return appointments.Appointment{}, err
	}
	a.Status = appointments.Status(status)
	a.Reason = fromNullString(reason)
	return a, nil
}
