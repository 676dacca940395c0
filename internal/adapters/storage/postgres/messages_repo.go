package postgres

import (
	"context"
	"database/sql"
	"errors"

	"noahs-ark/internal/domain/chat"
	"noahs-ark/internal/platform/apperr"
)

type MessagesRepo struct {
	db *sql.DB
}

func NewMessagesRepo(db *sql.DB) *MessagesRepo {
	return &MessagesRepo{db: db}
}

const messageColumns = `id, sender_id, receiver_id, body, image_ref, video_ref, unread, seen, created_at`

// pairClause: mensajes entre $1 y $2 en cualquier dirección.
const pairClause = `((sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1))`

func (r *MessagesRepo) Create(ctx context.Context, m chat.Message) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO messages (`+messageColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		m.ID,
		m.SenderID,
		m.ReceiverID,
		m.Body,
		m.ImageRef,
		m.VideoRef,
		m.Unread,
		m.Seen,
		m.CreatedAt,
	)
	return err
}

func (r *MessagesRepo) Thread(ctx context.Context, a, b string) ([]chat.Message, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE `+pairClause+` ORDER BY created_at ASC, id ASC`, a, b)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]chat.Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MessagesRepo) Last(ctx context.Context, a, b string) (chat.Message, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE `+pairClause+` ORDER BY created_at DESC, id DESC LIMIT 1`, a, b)
	m, err := scanMessage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return chat.Message{}, apperr.ErrNotFound
	}
	return m, err
}

func (r *MessagesRepo) MarkRead(ctx context.Context, from, to string) (int, error) {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE messages SET unread = FALSE WHERE sender_id = $1 AND receiver_id = $2 AND unread`, from, to)
	if err != nil {
		return 0, err
	}
	return rowsAffected(res), nil
}

func (r *MessagesRepo) CountUnread(ctx context.Context, from, to string) (int, error) {
	var n int
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE sender_id = $1 AND receiver_id = $2 AND unread`, from, to,
	).Scan(&n)
	return n, err
}

func (r *MessagesRepo) CountUnreadTotal(ctx context.Context, to string) (int, error) {
	var n int
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE receiver_id = $1 AND unread`, to,
	).Scan(&n)
	return n, err
}

func scanMessage(s rowScanner) (chat.Message, error) {
	var m chat.Message
	err := s.Scan(
		&m.ID,
		&m.SenderID,
		&m.ReceiverID,
		&m.Body,
		&m.ImageRef,
		&m.VideoRef,
		&m.Unread,
		&m.Seen,
		&m.CreatedAt,
	)
	return m, err
}
