package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"noahs-ark/internal/domain/users"
	"noahs-ark/internal/platform/apperr"
)

type userRepo struct {
	db *DB
}

func NewUserRepo(db *DB) users.Repository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, u users.User) error {
	defer r.db.lockWrite(ctx)()

	if strings.TrimSpace(u.ID) == "" {
		return errors.New("user id required")
	}
	if _, exists := r.db.users[u.ID]; exists {
		return apperr.ErrConflict
	}
	r.db.users[u.ID] = u
	return nil
}

func (r *userRepo) Update(ctx context.Context, u users.User) error {
	defer r.db.lockWrite(ctx)()

	if _, exists := r.db.users[u.ID]; !exists {
		return apperr.ErrNotFound
	}
	r.db.users[u.ID] = u
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	u, ok := r.db.users[id]
	if !ok {
		return users.User{}, apperr.ErrNotFound
	}
	return u, nil
}

func (r *userRepo) List(ctx context.Context) ([]users.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]users.User, 0, len(r.db.users))
	for _, u := range r.db.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *userRepo) TouchActivity(ctx context.Context, id string, at time.Time) error {
	defer r.db.lockWrite(ctx)()

	u, ok := r.db.users[id]
	if !ok {
		return apperr.ErrNotFound
	}
	t := at.UTC()
	u.LastActivityAt = &t
	r.db.users[id] = u
	return nil
}
