// Package httpx junta los helpers HTTP que antes estaban duplicados por módulo
// (writeJSON) y el mapeo de errores de dominio a status codes.
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"noahs-ark/internal/middleware"
	"noahs-ark/internal/platform/apperr"
	"noahs-ark/internal/ports/auth"
)

// ErrorResponse es el body de error de toda la API.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// DecodeJSON decodifica el body rechazando campos desconocidos.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.Invalid("body", "invalid json")
	}
	return nil
}

// WriteError traduce un error de dominio a su status y lo escribe como JSON.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusFor(err)

	resp := ErrorResponse{Error: err.Error()}
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		resp.Error = apperr.ErrValidation.Error()
		resp.Fields = ve.Fields
	}
	if status == http.StatusInternalServerError {
		// no filtrar detalles internos
		resp.Error = "internal error"
	}
	WriteJSON(w, status, resp)
}

func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, apperr.ErrValidation),
		errors.Is(err, apperr.ErrInvalidStatus),
		errors.Is(err, apperr.ErrMissingReason),
		errors.Is(err, apperr.ErrEmptyMessage):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrInvalidTransition),
		errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrDependency):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Principal devuelve los claims del request o escribe 401.
func Principal(w http.ResponseWriter, r *http.Request) (auth.Claims, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return auth.Claims{}, false
	}
	return claims, true
}
