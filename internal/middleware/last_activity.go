package middleware

import (
	"context"
	"net/http"

	"noahs-ark/internal/platform/logger"
	"noahs-ark/internal/ports/auth"
)

// ActivityRecorder provisiona el usuario local y sella su última actividad.
type ActivityRecorder interface {
	RecordActivity(ctx context.Context, claims auth.Claims) error
}

// LastActivity sella la actividad de cada request autenticado. Un fallo se loguea
// y el request sigue: la presencia es eventual.
func LastActivity(rec ActivityRecorder, log logger.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, ok := GetClaims(r.Context()); ok && claims.UserID != "" && rec != nil {
				if err := rec.RecordActivity(r.Context(), claims); err != nil {
					log.Warn("record activity failed", map[string]any{"user_id": claims.UserID, "error": err})
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
