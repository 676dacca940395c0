package animals

import (
	"net/http"
	"strings"
	"time"

	"noahs-ark/internal/middleware"
	"noahs-ark/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	// Catálogo para adoptantes
	r.Route("/animals", func(ar chi.Router) {
		ar.Get("/", listAvailableHandler(svc))
		ar.Get("/{animalID}", getAnimalHandler(svc))
	})

	// Gestión (staff/admin)
	r.Route("/admin/animals", func(ar chi.Router) {
		ar.Use(middleware.RequireStaff)
		ar.Get("/", listAllHandler(svc))
		ar.Post("/", createAnimalHandler(svc))
		ar.Put("/{animalID}", updateAnimalHandler(svc))
		ar.Delete("/{animalID}", deleteAnimalHandler(svc))
		ar.Post("/{animalID}/adopted", markAdoptedHandler(svc))
		ar.Get("/{animalID}/location", locationHandler(svc))
	})
}

type animalRequest struct {
	Name           string `json:"name"`
	Age            int    `json:"age"`
	Species        string `json:"species"`
	Breed          string `json:"breed"`
	BirthDate      string `json:"birth_date"` // YYYY-MM-DD opcional
	Color          string `json:"color"`
	Gender         string `json:"gender"`
	Description    string `json:"description"`
	ImageRef       string `json:"image_ref"`
	MedicalRecords string `json:"medical_records"`
	DeviceID       string `json:"device_id"`
}

type animalResponse struct {
	ID                   string     `json:"id"`
	Name                 string     `json:"name"`
	Age                  int        `json:"age"`
	Species              string     `json:"species"`
	Breed                string     `json:"breed"`
	BirthDate            *time.Time `json:"birth_date,omitempty"`
	Color                string     `json:"color"`
	Gender               string     `json:"gender"`
	Description          string     `json:"description"`
	ImageRef             string     `json:"image_ref,omitempty"`
	MedicalRecords       string     `json:"medical_records,omitempty"`
	IsTemporarilyAdopted bool       `json:"is_temporarily_adopted"`
	IsAdopted            bool       `json:"is_adopted"`
	DeviceID             string     `json:"device_id,omitempty"`
	TrackingRef          string     `json:"tracking_ref,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

type positionResponse struct {
	DeviceRef string    `json:"device_ref"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Speed     float64   `json:"speed"`
	FixTime   time.Time `json:"fix_time"`
}

func (req animalRequest) toInput() (ProfileInput, error) {
	var bd *time.Time
	if strings.TrimSpace(req.BirthDate) != "" {
		t, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			return ProfileInput{}, errBirthDate
		}
		bd = &t
	}
	return ProfileInput{
		Name:           req.Name,
		Age:            req.Age,
		Species:        req.Species,
		Breed:          req.Breed,
		BirthDate:      bd,
		Color:          req.Color,
		Gender:         req.Gender,
		Description:    req.Description,
		ImageRef:       req.ImageRef,
		MedicalRecords: req.MedicalRecords,
		DeviceID:       req.DeviceID,
	}, nil
}

// listAvailableHandler godoc
// @Summary Listar animales disponibles
// @Description Animales no adoptados ni reservados. `q` filtra por nombre o raza.
// @Tags animals
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param q query string false "Texto de búsqueda libre en nombre/raza"
// @Success 200 {array} animalResponse
// @Failure 401 {string} string "unauthorized"
// @Router /animals [get]
func listAvailableHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := httpx.Principal(w, r); !ok {
			return
		}
		items, err := svc.List(r.Context(), ListFilter{AvailableOnly: true, Query: r.URL.Query().Get("q")})
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toAnimalResponses(items))
	}
}

// listAllHandler godoc
// @Summary Listar todos los animales (staff)
// @Tags animals
// @Produce json
// @Param q query string false "Texto de búsqueda libre en nombre/raza"
// @Success 200 {array} animalResponse
// @Failure 403 {string} string "forbidden"
// @Router /admin/animals [get]
func listAllHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context(), ListFilter{Query: r.URL.Query().Get("q")})
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toAnimalResponses(items))
	}
}

// getAnimalHandler godoc
// @Summary Detalle de animal
// @Tags animals
// @Produce json
// @Param animalID path string true "ID del animal"
// @Success 200 {object} animalResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /animals/{animalID} [get]
func getAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := httpx.Principal(w, r); !ok {
			return
		}
		a, err := svc.Get(r.Context(), chi.URLParam(r, "animalID"))
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toAnimalResponse(a))
	}
}

// createAnimalHandler godoc
// @Summary Crear perfil de animal
// @Description Si viene `device_id`, primero se registra el collar en el servicio de tracking; si falla, el perfil no se crea (502).
// @Tags animals
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-User-Role header string false "Solo en modo dev: user, staff o admin"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body animalRequest true "Perfil del animal"
// @Success 201 {object} animalResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 403 {string} string "forbidden"
// @Failure 502 {object} httpx.ErrorResponse
// @Router /admin/animals [post]
func createAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req animalRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, err)
			return
		}
		in, err := req.toInput()
		if err != nil {
			httpx.WriteError(w, err)
			return
		}

		a, err := svc.Create(r.Context(), in)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, toAnimalResponse(a))
	}
}

// updateAnimalHandler godoc
// @Summary Actualizar perfil de animal
// @Description Si cambia `device_id`, se actualiza el device en el tracker antes de guardar.
// @Tags animals
// @Accept json
// @Produce json
// @Param animalID path string true "ID del animal"
// @Param payload body animalRequest true "Perfil del animal"
// @Success 200 {object} animalResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 502 {object} httpx.ErrorResponse
// @Router /admin/animals/{animalID} [put]
func updateAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req animalRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, err)
			return
		}
		in, err := req.toInput()
		if err != nil {
			httpx.WriteError(w, err)
			return
		}

		a, err := svc.Update(r.Context(), chi.URLParam(r, "animalID"), in)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toAnimalResponse(a))
	}
}

// deleteAnimalHandler godoc
// @Summary Borrar animal
// @Tags animals
// @Param animalID path string true "ID del animal"
// @Success 204
// @Failure 404 {object} httpx.ErrorResponse
// @Router /admin/animals/{animalID} [delete]
func deleteAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "animalID")); err != nil {
			httpx.WriteError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// markAdoptedHandler godoc
// @Summary Marcar animal como adoptado
// @Tags animals
// @Produce json
// @Param animalID path string true "ID del animal"
// @Success 200 {object} animalResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /admin/animals/{animalID}/adopted [post]
func markAdoptedHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := svc.MarkAdopted(r.Context(), chi.URLParam(r, "animalID"))
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toAnimalResponse(a))
	}
}

// locationHandler godoc
// @Summary Última posición del collar
// @Tags animals
// @Produce json
// @Param animalID path string true "ID del animal"
// @Success 200 {object} positionResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 502 {object} httpx.ErrorResponse
// @Router /admin/animals/{animalID}/location [get]
func locationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pos, err := svc.Location(r.Context(), chi.URLParam(r, "animalID"))
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, positionResponse{
			DeviceRef: pos.DeviceRef,
			Latitude:  pos.Latitude,
			Longitude: pos.Longitude,
			Speed:     pos.Speed,
			FixTime:   pos.FixTime,
		})
	}
}

func toAnimalResponses(items []Animal) []animalResponse {
	out := make([]animalResponse, 0, len(items))
	for _, a := range items {
		out = append(out, toAnimalResponse(a))
	}
	return out
}

func toAnimalResponse(a Animal) animalResponse {
	return animalResponse{
		ID:                   a.ID,
		Name:                 a.Name,
		Age:                  a.Age,
		Species:              a.Species,
		Breed:                a.Breed,
		BirthDate:            a.BirthDate,
		Color:                a.Color,
		Gender:               a.Gender,
		Description:          a.Description,
		ImageRef:             a.ImageRef,
		MedicalRecords:       a.MedicalRecords,
		IsTemporarilyAdopted: a.IsTemporarilyAdopted,
		IsAdopted:            a.IsAdopted,
		DeviceID:             a.DeviceID,
		TrackingRef:          a.TrackingRef,
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            a.UpdatedAt,
	}
}
