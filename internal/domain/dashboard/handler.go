package dashboard

import (
	"net/http"
	"strconv"

	"noahs-ark/internal/middleware"
	"noahs-ark/internal/platform/apperr"
	"noahs-ark/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/admin/dashboard", func(dr chi.Router) {
		dr.Use(middleware.RequireStaff)
		dr.Get("/", statsHandler(svc))
		dr.Get("/export", exportHandler(svc))
	})
}

// statsHandler godoc
// @Summary Dashboard del refugio
// @Tags dashboard
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-User-Role header string false "Solo en modo dev: user, staff o admin"
// @Param year query int false "Año de las series mensuales (default: año actual)"
// @Success 200 {object} Stats
// @Failure 403 {string} string "forbidden"
// @Router /admin/dashboard [get]
func statsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, err := parseYear(r)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		st, err := svc.Stats(r.Context(), year)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, st)
	}
}

// exportHandler godoc
// @Summary Dashboard en xlsx
// @Tags dashboard
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param year query int false "Año (default: actual)"
// @Success 200 {file} file
// @Failure 400 {object} httpx.ErrorResponse
// @Router /admin/dashboard/export [get]
func exportHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, err := parseYear(r)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		b, err := svc.Export(r.Context(), year)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		w.Header().Set("Content-Type", XLSXContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="dashboard.xlsx"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
	}
}

func parseYear(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return 0, nil
	}
	y, err := strconv.Atoi(raw)
	if err != nil || y < 1900 || y > 9999 {
		return 0, apperr.Invalid("year", "must be a 4-digit year")
	}
	return y, nil
}
