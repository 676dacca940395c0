package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"noahs-ark/internal/domain/appointments"
	"noahs-ark/internal/platform/apperr"
)

type appointmentRepo struct {
	db *DB
}

func NewAppointmentRepo(db *DB) appointments.Repository {
	return &appointmentRepo{db: db}
}

func (r *appointmentRepo) Create(ctx context.Context, a appointments.Appointment) error {
	defer r.db.lockWrite(ctx)()

	if strings.TrimSpace(a.ID) == "" {
		return errors.New("appointment id required")
	}
	if _, exists := r.db.appointments[a.ID]; exists {
		return apperr.ErrConflict
	}
	r.db.appointments[a.ID] = a
	return nil
}

func (r *appointmentRepo) Update(ctx context.Context, a appointments.Appointment) error {
	defer r.db.lockWrite(ctx)()

	if _, exists := r.db.appointments[a.ID]; !exists {
		return apperr.ErrNotFound
	}
	r.db.appointments[a.ID] = a
	return nil
}

func (r *appointmentRepo) Delete(ctx context.Context, id string) error {
	defer r.db.lockWrite(ctx)()

	if _, exists := r.db.appointments[id]; !exists {
		return apperr.ErrNotFound
	}
	delete(r.db.appointments, id)
	return nil
}

func (r *appointmentRepo) GetByID(ctx context.Context, id string) (appointments.Appointment, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	a, ok := r.db.appointments[id]
	if !ok {
		return appointments.Appointment{}, apperr.ErrNotFound
	}
	return a, nil
}

func (r *appointmentRepo) GetForUpdate(ctx context.Context, id string) (appointments.Appointment, error) {
	return r.GetByID(ctx, id)
}

func (r *appointmentRepo) List(ctx context.Context, filter appointments.ListFilter) ([]appointments.Appointment, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var ids map[string]struct{}
	if len(filter.AdoptionRequestIDs) > 0 {
		ids = make(map[string]struct{}, len(filter.AdoptionRequestIDs))
		for _, id := range filter.AdoptionRequestIDs {
			ids[id] = struct{}{}
		}
	}

	out := make([]appointments.Appointment, 0)
	for _, a := range r.db.appointments {
		if ids != nil {
			if _, ok := ids[a.AdoptionRequestID]; !ok {
				continue
			}
		}
		if filter.ActiveOnly && !a.Status.Active() {
			continue
		}
		out = append(out, a)
	}
	// por fecha y hora de la cita
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}
