package adoptions

import "context"

type Repository interface {
	Create(ctx context.Context, req Request) error
	Update(ctx context.Context, req Request) error
	GetByID(ctx context.Context, id string) (Request, error)
	// GetForUpdate bloquea la fila cuando ctx lleva una transacción.
	GetForUpdate(ctx context.Context, id string) (Request, error)
	List(ctx context.Context, filter ListFilter) ([]Request, error)
}

type ListFilter struct {
	// Vacío = todas (vista de staff).
	UserID string
	Status Status
}
