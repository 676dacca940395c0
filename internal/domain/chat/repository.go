package chat

import "context"

type Repository interface {
	Create(ctx context.Context, m Message) error
	// Thread: mensajes entre a y b en ambas direcciones, por created_at asc.
	Thread(ctx context.Context, a, b string) ([]Message, error)
	// Last devuelve apperr.ErrNotFound si no hay mensajes entre a y b.
	Last(ctx context.Context, a, b string) (Message, error)
	// MarkRead pone unread=false en los mensajes from -> to. Devuelve cuántos cambió.
	MarkRead(ctx context.Context, from, to string) (int, error)
	CountUnread(ctx context.Context, from, to string) (int, error)
	CountUnreadTotal(ctx context.Context, to string) (int, error)
}
