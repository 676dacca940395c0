package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"noahs-ark/internal/domain/animals"
	"noahs-ark/internal/platform/apperr"
)

type animalRepo struct {
	db *DB
}

func NewAnimalRepo(db *DB) animals.Repository {
	return &animalRepo{db: db}
}

func (r *animalRepo) Create(ctx context.Context, a animals.Animal) error {
	defer r.db.lockWrite(ctx)()

	if strings.TrimSpace(a.ID) == "" {
		return errors.New("animal id required")
	}
	if _, exists := r.db.animals[a.ID]; exists {
		return apperr.ErrConflict
	}
	r.db.animals[a.ID] = a
	return nil
}

func (r *animalRepo) Update(ctx context.Context, a animals.Animal) error {
	defer r.db.lockWrite(ctx)()

	if _, exists := r.db.animals[a.ID]; !exists {
		return apperr.ErrNotFound
	}
	r.db.animals[a.ID] = a
	return nil
}

func (r *animalRepo) Delete(ctx context.Context, id string) error {
	defer r.db.lockWrite(ctx)()

	if _, exists := r.db.animals[id]; !exists {
		return apperr.ErrNotFound
	}
	delete(r.db.animals, id)
	return nil
}

func (r *animalRepo) GetByID(ctx context.Context, id string) (animals.Animal, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	a, ok := r.db.animals[id]
	if !ok {
		return animals.Animal{}, apperr.ErrNotFound
	}
	return a, nil
}

// GetForUpdate: el TxRunner ya serializa las transacciones.
func (r *animalRepo) GetForUpdate(ctx context.Context, id string) (animals.Animal, error) {
	return r.GetByID(ctx, id)
}

func (r *animalRepo) List(ctx context.Context, filter animals.ListFilter) ([]animals.Animal, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(filter.Query))
	out := make([]animals.Animal, 0)
	for _, a := range r.db.animals {
		if filter.AvailableOnly && !a.Available() {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(a.Name), q) && !strings.Contains(strings.ToLower(a.Breed), q) {
			continue
		}
		out = append(out, a)
	}
	// más recientes primero
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
