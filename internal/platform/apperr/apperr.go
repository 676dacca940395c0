// Package apperr agrupa los errores de dominio compartidos por todos los módulos.
// Los servicios devuelven estos sentinels (o los envuelven con %w) y la capa HTTP
// los traduce a status codes en httpx.
package apperr

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrMissingReason     = errors.New("rejection reason is required")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrConflict          = errors.New("conflict")
	ErrDependency        = errors.New("dependency failure")
	ErrEmptyMessage      = errors.New("message requires a body or an attachment")
)

// ValidationError lleva el detalle por campo. errors.Is(err, ErrValidation) es true.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Fields acumula errores por campo; Err devuelve nil si no hubo ninguno.
type Fields map[string]string

func (f Fields) Add(field, msg string) {
	if _, exists := f[field]; exists {
		return
	}
	f[field] = msg
}

func (f Fields) Err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: map[string]string(f)}
}

// Invalid es un atajo para un ValidationError de un solo campo.
func Invalid(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}
