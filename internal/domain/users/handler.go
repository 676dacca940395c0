package users

import (
	"net/http"
	"time"

	"noahs-ark/internal/platform/httpx"
	"noahs-ark/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/me", func(mr chi.Router) {
		mr.Get("/", getMeHandler(svc))
		mr.Put("/profile", updateProfileHandler(svc))
	})
}

type profileRequest struct {
	Name            string `json:"name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Address         string `json:"address"`
	PhoneNumber     string `json:"phone_number"`
	Age             *int   `json:"age"`
	Gender          Gender `json:"gender"`
	CivilStatus     string `json:"civil_status"`
	ProfilePhotoRef string `json:"profile_photo_ref"`
}

type userResponse struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	LastName        string     `json:"last_name,omitempty"`
	Email           string     `json:"email"`
	Role            auth.Role  `json:"role"`
	Address         string     `json:"address,omitempty"`
	PhoneNumber     string     `json:"phone_number,omitempty"`
	Age             *int       `json:"age,omitempty"`
	Gender          Gender     `json:"gender,omitempty"`
	CivilStatus     string     `json:"civil_status,omitempty"`
	ProfilePhotoRef string     `json:"profile_photo_ref,omitempty"`
	ProfileComplete bool       `json:"profile_complete"`
	LastActivityAt  *time.Time `json:"last_activity_at,omitempty"`
}

// getMeHandler godoc
// @Summary Mi usuario
// @Description Lo crea en el primer acceso a partir de la identidad autenticada.
// @Tags users
// @Produce json
// @Success 200 {object} userResponse
// @Failure 401 {string} string "unauthorized"
// @Router /me [get]
func getMeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := httpx.Principal(w, r)
		if !ok {
			return
		}
		u, err := svc.Get(r.Context(), claims.UserID)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
	}
}

// updateProfileHandler godoc
// @Summary Actualizar mi perfil
// @Description El perfil completo (dirección, teléfono, edad, género, estado civil) es requisito para pedir una adopción.
// @Tags users
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body profileRequest true "Perfil"
// @Success 200 {object} userResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {string} string "unauthorized"
// @Router /me/profile [put]
func updateProfileHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := httpx.Principal(w, r)
		if !ok {
			return
		}
		var req profileRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, err)
			return
		}

		u, err := svc.UpdateProfile(r.Context(), claims.UserID, ProfileInput{
			Name:            req.Name,
			LastName:        req.LastName,
			Email:           req.Email,
			Address:         req.Address,
			PhoneNumber:     req.PhoneNumber,
			Age:             req.Age,
			Gender:          req.Gender,
			CivilStatus:     req.CivilStatus,
			ProfilePhotoRef: req.ProfilePhotoRef,
		})
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
	}
}

func toUserResponse(u User) userResponse {
	return userResponse{
		ID:              u.ID,
		Name:            u.Name,
		LastName:        u.LastName,
		Email:           u.Email,
		Role:            u.Role,
		Address:         u.Address,
		PhoneNumber:     u.PhoneNumber,
		Age:             u.Age,
		Gender:          u.Gender,
		CivilStatus:     u.CivilStatus,
		ProfilePhotoRef: u.ProfilePhotoRef,
		ProfileComplete: len(u.MissingProfileFields()) == 0,
		LastActivityAt:  u.LastActivityAt,
	}
}
