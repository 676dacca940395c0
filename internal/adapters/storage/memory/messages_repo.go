package memory

import (
	"context"
	"errors"
	"strings"

	"noahs-ark/internal/domain/chat"
	"noahs-ark/internal/platform/apperr"
)

// messageRepo guarda los mensajes en orden de inserción (= created_at asc).
type messageRepo struct {
	db *DB
}

func NewMessageRepo(db *DB) chat.Repository {
	return &messageRepo{db: db}
}

func between(m chat.Message, a, b string) bool {
	return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
}

func (r *messageRepo) Create(ctx context.Context, m chat.Message) error {
	defer r.db.lockWrite(ctx)()

	if strings.TrimSpace(m.ID) == "" {
		return errors.New("message id required")
	}
	r.db.messages = append(r.db.messages, m)
	return nil
}

func (r *messageRepo) Thread(ctx context.Context, a, b string) ([]chat.Message, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]chat.Message, 0)
	for _, m := range r.db.messages {
		if between(m, a, b) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *messageRepo) Last(ctx context.Context, a, b string) (chat.Message, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for i := len(r.db.messages) - 1; i >= 0; i-- {
		if m := r.db.messages[i]; between(m, a, b) {
			return m, nil
		}
	}
	return chat.Message{}, apperr.ErrNotFound
}

func (r *messageRepo) MarkRead(ctx context.Context, from, to string) (int, error) {
	defer r.db.lockWrite(ctx)()

	changed := 0
	for i := range r.db.messages {
		m := &r.db.messages[i]
		if m.SenderID == from && m.ReceiverID == to && m.Unread {
			m.Unread = false
			changed++
		}
	}
	return changed, nil
}

func (r *messageRepo) CountUnread(ctx context.Context, from, to string) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	n := 0
	for _, m := range r.db.messages {
		if m.SenderID == from && m.ReceiverID == to && m.Unread {
			n++
		}
	}
	return n, nil
}

func (r *messageRepo) CountUnreadTotal(ctx context.Context, to string) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	n := 0
	for _, m := range r.db.messages {
		if m.ReceiverID == to && m.Unread {
			n++
		}
	}
	return n, nil
}
