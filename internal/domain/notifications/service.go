package notifications

import (
	"context"
	"strings"
	"time"

	"noahs-ark/internal/platform/apperr"
)

// Service expone las consultas del dueño sobre sus notificaciones.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// List devuelve las notificaciones del usuario, más nuevas primero.
func (s *Service) List(ctx context.Context, userID string) ([]Notification, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperr.ErrForbidden
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, apperr.ErrForbidden
	}
	return s.repo.CountUnread(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, id string) error {
	userID = strings.TrimSpace(userID)
	id = strings.TrimSpace(id)
	if userID == "" {
		return apperr.ErrForbidden
	}
	if id == "" {
		return apperr.ErrNotFound
	}
	return s.repo.MarkRead(ctx, userID, id, s.now().UTC())
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) (int, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, apperr.ErrForbidden
	}
	return s.repo.MarkAllRead(ctx, userID, s.now().UTC())
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	userID = strings.TrimSpace(userID)
	id = strings.TrimSpace(id)
	if userID == "" {
		return apperr.ErrForbidden
	}
	if id == "" {
		return apperr.ErrNotFound
	}
	return s.repo.Delete(ctx, userID, id)
}

func (s *Service) DeleteAll(ctx context.Context, userID string) (int, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, apperr.ErrForbidden
	}
	return s.repo.DeleteAll(ctx, userID)
}
