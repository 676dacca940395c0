package appointments

import (
	"net/http"
	"time"

	"noahs-ark/internal/middleware"
	"noahs-ark/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/appointments", listMyAppointmentsHandler(svc))

	r.Route("/admin/appointments", func(ar chi.Router) {
		ar.Use(middleware.RequireStaff)
		ar.Get("/", overviewHandler(svc))
		ar.Post("/", scheduleHandler(svc))
		ar.Delete("/{appointmentID}", deleteAppointmentHandler(svc))
	})
}

type scheduleRequest struct {
	AdoptionRequestID string `json:"adoption_request_id"`
	AppointmentDate   string `json:"appointment_date"` // YYYY-MM-DD
	AppointmentTime   string `json:"appointment_time"` // HH:MM
	Notes             string `json:"notes"`
}

type AppointmentResponse struct {
	ID                string    `json:"id"`
	AdoptionRequestID string    `json:"adoption_request_id"`
	AppointmentDate   string    `json:"appointment_date"`
	AppointmentTime   string    `json:"appointment_time"`
	Notes             string    `json:"notes,omitempty"`
	Status            Status    `json:"status"`
	Reason            *string   `json:"rejection_reason"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type partyResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	ImageRef string `json:"image_ref,omitempty"`
}

type entryResponse struct {
	Appointment       *AppointmentResponse `json:"appointment,omitempty"`
	AdoptionRequestID string               `json:"adoption_request_id"`
	Adopter           partyResponse        `json:"adopter"`
	Animal            partyResponse        `json:"animal"`
}

type overviewResponse struct {
	Appointments     []entryResponse `json:"appointments"`
	ApprovedRequests []entryResponse `json:"approved_requests_without_appointment"`
}

// scheduleHandler godoc
// @Summary Agendar cita de adopción
// @Description La solicitud debe estar aprobada y sin otra cita activa (pending/confirmed). Notifica al adoptante en user.<id>.
// @Tags appointments
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-User-Role header string false "Solo en modo dev: user, staff o admin"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body scheduleRequest true "Fecha >= hoy y hora HH:MM"
// @Success 201 {object} AppointmentResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 403 {string} string "forbidden"
// @Failure 409 {object} httpx.ErrorResponse
// @Router /admin/appointments [post]
func scheduleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req scheduleRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, err)
			return
		}
		a, err := svc.Schedule(r.Context(), claims, ScheduleInput{
			AdoptionRequestID: req.AdoptionRequestID,
			Date:              req.AppointmentDate,
			Time:              req.AppointmentTime,
			Notes:             req.Notes,
		})
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, ToResponse(a))
	}
}

// overviewHandler godoc
// @Summary Citas agendadas y solicitudes aprobadas sin cita
// @Tags appointments
// @Produce json
// @Success 200 {object} overviewResponse
// @Failure 403 {string} string "forbidden"
// @Router /admin/appointments [get]
func overviewHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())
		ov, err := svc.Overview(r.Context(), claims)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, overviewResponse{
			Appointments:     toEntryResponses(ov.Appointments),
			ApprovedRequests: toEntryResponses(ov.Unscheduled),
		})
	}
}

// listMyAppointmentsHandler godoc
// @Summary Mis citas
// @Tags appointments
// @Produce json
// @Success 200 {array} entryResponse
// @Failure 401 {string} string "unauthorized"
// @Router /appointments [get]
func listMyAppointmentsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := httpx.Principal(w, r)
		if !ok {
			return
		}
		items, err := svc.ListMine(r.Context(), claims)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toEntryResponses(items))
	}
}

// deleteAppointmentHandler godoc
// @Summary Borrar cita
// @Tags appointments
// @Param appointmentID path string true "ID de la cita"
// @Success 204
// @Failure 404 {object} httpx.ErrorResponse
// @Router /admin/appointments/{appointmentID} [delete]
func deleteAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())
		if err := svc.Delete(r.Context(), claims, chi.URLParam(r, "appointmentID")); err != nil {
			httpx.WriteError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func toEntryResponses(items []Entry) []entryResponse {
	out := make([]entryResponse, 0, len(items))
	for _, e := range items {
		er := entryResponse{
			AdoptionRequestID: e.Request.ID,
			Adopter:           partyResponse(e.Adopter),
			Animal:            partyResponse(e.Animal),
		}
		if e.Appointment.ID != "" {
			a := ToResponse(e.Appointment)
			er.Appointment = &a
		}
		out = append(out, er)
	}
	return out
}

func ToResponse(a Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:                a.ID,
		AdoptionRequestID: a.AdoptionRequestID,
		AppointmentDate:   a.Date.Format("2006-01-02"),
		AppointmentTime:   a.Time,
		Notes:             a.Notes,
		Status:            a.Status,
		Reason:            a.Reason,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}
