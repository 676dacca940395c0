package notifications

import (
	"context"
	"time"
)

// Repository: todas las operaciones están acotadas al dueño (userID).
// Un id que no pertenece al usuario se trata como inexistente.
type Repository interface {
	Create(ctx context.Context, n Notification) error
	ListByUser(ctx context.Context, userID string) ([]Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID, id string, at time.Time) error
	MarkAllRead(ctx context.Context, userID string, at time.Time) (int, error)
	Delete(ctx context.Context, userID, id string) error
	DeleteAll(ctx context.Context, userID string) (int, error)
}
