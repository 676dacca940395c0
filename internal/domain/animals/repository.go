package animals

import "context"

type Repository interface {
	Create(ctx context.Context, a Animal) error
	Update(ctx context.Context, a Animal) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Animal, error)
	// GetForUpdate bloquea la fila cuando ctx lleva una transacción.
	GetForUpdate(ctx context.Context, id string) (Animal, error)
	List(ctx context.Context, filter ListFilter) ([]Animal, error)
}

type ListFilter struct {
	// Solo no adoptados y no reservados.
	AvailableOnly bool
	// Búsqueda libre en nombre/raza (case-insensitive).
	Query string
}
