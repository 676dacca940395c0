package store

import "context"

// TxRunner ejecuta fn dentro de una transacción. Los repos que reciben el ctx
// de fn participan de la misma transacción; si fn devuelve error se hace rollback.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// NoTx corre fn sin transacción. Solo para tests de servicios con repos fake.
type NoTx struct{}

func (NoTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
