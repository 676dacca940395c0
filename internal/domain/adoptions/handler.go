package adoptions

import (
	"net/http"
	"time"

	"noahs-ark/internal/platform/apperr"
	"noahs-ark/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/adoption-requests", func(ar chi.Router) {
		ar.Post("/", submitRequestHandler(svc))
		ar.Get("/", listRequestsHandler(svc))
		ar.Get("/{requestID}", getRequestHandler(svc))
	})
}

type submitRequest struct {
	AnimalID        string    `json:"animal_id"`
	Answers         [3]string `json:"answers"`
	ValidIDRef      string    `json:"valid_id_ref"`
	SelfieWithIDRef string    `json:"selfie_with_id_ref"`
}

type RequestResponse struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	AnimalID        string    `json:"animal_id"`
	Answers         [3]string `json:"answers"`
	ValidIDRef      string    `json:"valid_id_ref"`
	SelfieWithIDRef string    `json:"selfie_with_id_ref"`
	Status          Status    `json:"status"`
	RejectionReason *string   `json:"rejection_reason"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// submitRequestHandler godoc
// @Summary Enviar solicitud de adopción
// @Description Requiere perfil completo. El animal queda reservado (is_temporarily_adopted) hasta que el staff decida.
// @Tags adoptions
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body submitRequest true "Solicitud; valid_id_ref y selfie_with_id_ref vienen de POST /uploads"
// @Success 201 {object} RequestResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {string} string "unauthorized"
// @Router /adoption-requests [post]
func submitRequestHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := httpx.Principal(w, r)
		if !ok {
			return
		}
		var req submitRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, err)
			return
		}

		out, err := svc.Submit(r.Context(), claims, SubmitInput{
			AnimalID:        req.AnimalID,
			Answers:         req.Answers,
			ValidIDRef:      req.ValidIDRef,
			SelfieWithIDRef: req.SelfieWithIDRef,
		})
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, ToResponse(out))
	}
}

// listRequestsHandler godoc
// @Summary Listar solicitudes de adopción
// @Description El adoptante ve solo las suyas; el staff ve todas.
// @Tags adoption-requests
// @Produce json
// @Param status query string false "pending, approved o rejected"
// @Success 200 {array} RequestResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /adoption-requests [get]
func listRequestsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := httpx.Principal(w, r)
		if !ok {
			return
		}

		var status Status
		if raw := r.URL.Query().Get("status"); raw != "" {
			st, ok := ParseStatus(raw)
			if !ok {
				httpx.WriteError(w, apperr.ErrInvalidStatus)
				return
			}
			status = st
		}

		items, err := svc.List(r.Context(), claims, status)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		out := make([]RequestResponse, 0, len(items))
		for _, it := range items {
			out = append(out, ToResponse(it))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

// getRequestHandler godoc
// @Summary Detalle de solicitud de adopción
// @Tags adoption-requests
// @Produce json
// @Param requestID path string true "ID de la solicitud"
// @Success 200 {object} RequestResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /adoption-requests/{requestID} [get]
func getRequestHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := httpx.Principal(w, r)
		if !ok {
			return
		}
		out, err := svc.Get(r.Context(), claims, chi.URLParam(r, "requestID"))
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, ToResponse(out))
	}
}

// ToResponse también lo usa el handler de transiciones.
func ToResponse(req Request) RequestResponse {
	return RequestResponse{
		ID:              req.ID,
		UserID:          req.UserID,
		AnimalID:        req.AnimalID,
		Answers:         req.Answers,
		ValidIDRef:      req.ValidIDRef,
		SelfieWithIDRef: req.SelfieWithIDRef,
		Status:          req.Status,
		RejectionReason: req.RejectionReason,
		CreatedAt:       req.CreatedAt,
		UpdatedAt:       req.UpdatedAt,
	}
}
