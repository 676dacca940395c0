package abusereports

import "context"

type Repository interface {
	Create(ctx context.Context, r Report) error
	Update(ctx context.Context, r Report) error
	GetByID(ctx context.Context, id string) (Report, error)
	GetForUpdate(ctx context.Context, id string) (Report, error)
	List(ctx context.Context, filter ListFilter) ([]Report, error)
}

type ListFilter struct {
	UserID string
	Status Status
}
