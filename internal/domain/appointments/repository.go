package appointments

import "context"

type Repository interface {
	Create(ctx context.Context, a Appointment) error
	Update(ctx context.Context, a Appointment) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Appointment, error)
	GetForUpdate(ctx context.Context, id string) (Appointment, error)
	List(ctx context.Context, filter ListFilter) ([]Appointment, error)
}

type ListFilter struct {
	// Vacío = todas.
	AdoptionRequestIDs []string
	ActiveOnly         bool
}
