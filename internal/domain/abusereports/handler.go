package abusereports

import (
	"net/http"
	"time"

	"noahs-ark/internal/platform/apperr"
	"noahs-ark/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/abuse-reports", func(ar chi.Router) {
		ar.Post("/", submitReportHandler(svc))
		ar.Get("/", listReportsHandler(svc))
		ar.Get("/{reportID}", getReportHandler(svc))
	})
}

type submitRequest struct {
	Description string   `json:"description"`
	PhotoRefs   []string `json:"photo_refs"`
	VideoRefs   []string `json:"video_refs"`
}

type ReportResponse struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Description     string    `json:"description"`
	PhotoRefs       []string  `json:"photos"`
	VideoRefs       []string  `json:"videos"`
	Status          Status    `json:"status"`
	RejectionReason *string   `json:"rejection_reason"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// submitReportHandler godoc
// @Summary Reportar maltrato animal
// @Tags abuse-reports
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body submitRequest true "Descripción (máx 2000) y referencias de fotos/videos"
// @Success 201 {object} ReportResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {string} string "unauthorized"
// @Router /abuse-reports [post]
func submitReportHandler(svc *Service) http.HandlerFunc {
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
		rep, err := svc.Submit(r.Context(), claims, SubmitInput{
			Description: req.Description,
			PhotoRefs:   req.PhotoRefs,
			VideoRefs:   req.VideoRefs,
		})
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, ToResponse(rep))
	}
}

// listReportsHandler godoc
// @Summary Listar denuncias
// @Description El denunciante ve solo las suyas; el staff ve todas.
// @Tags abuse-reports
// @Produce json
// @Param status query string false "pending, approved o rejected"
// @Success 200 {array} ReportResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /abuse-reports [get]
func listReportsHandler(svc *Service) http.HandlerFunc {
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
		out := make([]ReportResponse, 0, len(items))
		for _, it := range items {
			out = append(out, ToResponse(it))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

// getReportHandler godoc
// @Summary Detalle de denuncia
// @Tags abuse-reports
// @Produce json
// @Param reportID path string true "ID de la denuncia"
// @Success 200 {object} ReportResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /abuse-reports/{reportID} [get]
func getReportHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := httpx.Principal(w, r)
		if !ok {
			return
		}
		rep, err := svc.Get(r.Context(), claims, chi.URLParam(r, "reportID"))
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, ToResponse(rep))
	}
}

func ToResponse(rep Report) ReportResponse {
	photos := rep.PhotoRefs
	if photos == nil {
		photos = []string{}
	}
	videos := rep.VideoRefs
	if videos == nil {
		videos = []string{}
	}
	return ReportResponse{
		ID:              rep.ID,
		UserID:          rep.UserID,
		Description:     rep.Description,
		PhotoRefs:       photos,
		VideoRefs:       videos,
		Status:          rep.Status,
		RejectionReason: rep.RejectionReason,
		CreatedAt:       rep.CreatedAt,
		UpdatedAt:       rep.UpdatedAt,
	}
}
