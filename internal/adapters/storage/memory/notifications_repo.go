package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"noahs-ark/internal/domain/notifications"
	"noahs-ark/internal/platform/apperr"
)

type notificationRepo struct {
	db *DB
}

func NewNotificationRepo(db *DB) notifications.Repository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, n notifications.Notification) error {
	defer r.db.lockWrite(ctx)()

	if strings.TrimSpace(n.ID) == "" {
		return errors.New("notification id required")
	}
	if _, exists := r.db.notifications[n.ID]; exists {
		return apperr.ErrConflict
	}
	r.db.notifications[n.ID] = n
	return nil
}

func (r *notificationRepo) ListByUser(ctx context.Context, userID string) ([]notifications.Notification, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]notifications.Notification, 0)
	for _, n := range r.db.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *notificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	n := 0
	for _, it := range r.db.notifications {
		if it.UserID == userID && it.ReadAt == nil {
			n++
		}
	}
	return n, nil
}

func (r *notificationRepo) MarkRead(ctx context.Context, userID, id string, at time.Time) error {
	defer r.db.lockWrite(ctx)()

	n, ok := r.db.notifications[id]
	if !ok || n.UserID != userID {
		return apperr.ErrNotFound
	}
	if n.ReadAt == nil {
		t := at.UTC()
		n.ReadAt = &t
		r.db.notifications[id] = n
	}
	return nil
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, userID string, at time.Time) (int, error) {
	defer r.db.lockWrite(ctx)()

	t := at.UTC()
	changed := 0
	for id, n := range r.db.notifications {
		if n.UserID == userID && n.ReadAt == nil {
			n.ReadAt = &t
			r.db.notifications[id] = n
			changed++
		}
	}
	return changed, nil
}

func (r *notificationRepo) Delete(ctx context.Context, userID, id string) error {
	defer r.db.lockWrite(ctx)()

	n, ok := r.db.notifications[id]
	if !ok || n.UserID != userID {
		return apperr.ErrNotFound
	}
	delete(r.db.notifications, id)
	return nil
}

func (r *notificationRepo) DeleteAll(ctx context.Context, userID string) (int, error) {
	defer r.db.lockWrite(ctx)()

	deleted := 0
	for id, n := range r.db.notifications {
		if n.UserID == userID {
			delete(r.db.notifications, id)
			deleted++
		}
	}
	return deleted, nil
}
