package postgres

import (
	"context"
	"database/sql"
	"time"

	"noahs-ark/internal/domain/notifications"
	"noahs-ark/internal/platform/apperr"
)

type NotificationsRepo struct {
	db *sql.DB
}

func NewNotificationsRepo(db *sql.DB) *NotificationsRepo {
	return &NotificationsRepo{db: db}
}

func (r *NotificationsRepo) Create(ctx context.Context, n notifications.Notification) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO notifications (
			id, user_id, message, type, image_ref, read_at,
			appointment_date, appointment_time, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		n.ID,
		n.UserID,
		n.Message,
		string(n.Type),
		toNullString(n.ImageRef),
		toNullTime(n.ReadAt),
		toNullTime(n.AppointmentDate),
		toNullString(n.AppointmentTime),
		n.CreatedAt,
	)
	return err
}

func (r *NotificationsRepo) ListByUser(ctx context.Context, userID string) ([]notifications.Notification, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, `
		SELECT
			id, user_id, message, type, image_ref, read_at,
			appointment_date, appointment_time, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]notifications.Notification, 0)
	for rows.Next() {
		var (
			n       notifications.Notification
			typ     string
			image   sql.NullString
			readAt  sql.NullTime
			apptDay sql.NullTime
			apptAt  sql.NullString
		)
		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.Message,
			&typ,
			&image,
			&readAt,
			&apptDay,
			&apptAt,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		n.Type = notifications.Type(typ)
		n.ImageRef = fromNullString(image)
		n.ReadAt = fromNullTime(readAt)
		n.AppointmentDate = fromNullTime(apptDay)
		n.AppointmentTime = fromNullString(apptAt)
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *NotificationsRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	var n int
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read_at IS NULL`, userID,
	).Scan(&n)
	return n, err
}

// MarkRead es idempotente: una ya leída conserva su read_at.
func (r *NotificationsRepo) MarkRead(ctx context.Context, userID, id string, at time.Time) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `
		UPDATE notifications
		SET read_at = COALESCE(read_at, $3)
		WHERE id = $1 AND user_id = $2
	`, id, userID, at.UTC())
	if err != nil {
		return err
	}
	if rowsAffected(res) == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *NotificationsRepo) MarkAllRead(ctx context.Context, userID string, at time.Time) (int, error) {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE notifications SET read_at = $2 WHERE user_id = $1 AND read_at IS NULL`, userID, at.UTC())
	if err != nil {
		return 0, err
	}
	return rowsAffected(res), nil
}

func (r *NotificationsRepo) Delete(ctx context.Context, userID, id string) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if rowsAffected(res) == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *NotificationsRepo) DeleteAll(ctx context.Context, userID string) (int, error) {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM notifications WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return rowsAffected(res), nil
}
