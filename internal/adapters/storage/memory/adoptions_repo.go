package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"noahs-ark/internal/domain/adoptions"
	"noahs-ark/internal/platform/apperr"
)

type adoptionRepo struct {
	db *DB
}

func NewAdoptionRepo(db *DB) adoptions.Repository {
	return &adoptionRepo{db: db}
}

func (r *adoptionRepo) Create(ctx context.Context, req adoptions.Request) error {
	defer r.db.lockWrite(ctx)()

	if strings.TrimSpace(req.ID) == "" {
		return errors.New("adoption request id required")
	}
	if _, exists := r.db.requests[req.ID]; exists {
		return apperr.ErrConflict
	}
	r.db.requests[req.ID] = req
	return nil
}

func (r *adoptionRepo) Update(ctx context.Context, req adoptions.Request) error {
	defer r.db.lockWrite(ctx)()

	if _, exists := r.db.requests[req.ID]; !exists {
		return apperr.ErrNotFound
	}
	r.db.requests[req.ID] = req
	return nil
}

func (r *adoptionRepo) GetByID(ctx context.Context, id string) (adoptions.Request, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	req, ok := r.db.requests[id]
	if !ok {
		return adoptions.Request{}, apperr.ErrNotFound
	}
	return req, nil
}

func (r *adoptionRepo) GetForUpdate(ctx context.Context, id string) (adoptions.Request, error) {
	return r.GetByID(ctx, id)
}

func (r *adoptionRepo) List(ctx context.Context, filter adoptions.ListFilter) ([]adoptions.Request, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]adoptions.Request, 0)
	for _, req := range r.db.requests {
		if filter.UserID != "" && req.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
