package workflow

import (
	"net/http"

	"noahs-ark/internal/domain/abusereports"
	"noahs-ark/internal/domain/adoptions"
	"noahs-ark/internal/domain/appointments"
	"noahs-ark/internal/middleware"
	"noahs-ark/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta un PATCH .../status por Kind bajo /admin.
// Va en un Group (no Route) porque /admin/appointments ya está montado por appointments.
func RegisterRoutes(r chi.Router, engine *Engine) {
	r.Group(func(ar chi.Router) {
		ar.Use(middleware.RequireStaff)
		ar.Patch("/admin/adoption-requests/{id}/status", transitionHandler(engine, KindAdoptionRequest))
		ar.Patch("/admin/appointments/{id}/status", transitionHandler(engine, KindAppointment))
		ar.Patch("/admin/abuse-reports/{id}/status", transitionHandler(engine, KindAbuseReport))
	})
}

type transitionRequest struct {
	Status          string `json:"status"`
	RejectionReason string `json:"rejection_reason"`
}

// transitionHandler godoc
// @Summary Cambiar estado (solicitud, cita o reporte)
// @Description `rejection_reason` es obligatorio si status=rejected. approved/rejected (y cancelled/completed en citas) son terminales.
// @Tags workflow
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-User-Role header string false "Solo en modo dev: user, staff o admin"
// @Param Authorization header string false "Bearer token en producción"
// @Param id path string true "ID de la entidad"
// @Param payload body transitionRequest true "Nuevo estado"
// @Success 200 {object} adoptions.RequestResponse "citas y reportes devuelven AppointmentResponse / ReportResponse"
// @Failure 400 {object} httpx.ErrorResponse "invalid status / missing reason"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse "transición no permitida"
// @Router /admin/adoption-requests/{id}/status [patch]
// @Router /admin/appointments/{id}/status [patch]
// @Router /admin/abuse-reports/{id}/status [patch]
func transitionHandler(engine *Engine, kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req transitionRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, err)
			return
		}

		res, err := engine.Transition(r.Context(), claims, TransitionRequest{
			Kind:   kind,
			ID:     chi.URLParam(r, "id"),
			Status: req.Status,
			Reason: req.RejectionReason,
		})
		if err != nil {
			httpx.WriteError(w, err)
			return
		}

		switch {
		case res.AdoptionRequest != nil:
			httpx.WriteJSON(w, http.StatusOK, adoptions.ToResponse(*res.AdoptionRequest))
		case res.Appointment != nil:
			httpx.WriteJSON(w, http.StatusOK, appointments.ToResponse(*res.Appointment))
		case res.AbuseReport != nil:
			httpx.WriteJSON(w, http.StatusOK, abusereports.ToResponse(*res.AbuseReport))
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	}
}
