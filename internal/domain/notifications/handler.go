package notifications

import (
	"net/http"
	"time"

	"noahs-ark/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/notifications", func(nr chi.Router) {
		nr.Get("/", listNotificationsHandler(svc))
		nr.Get("/unread-count", unreadCountHandler(svc))
		nr.Post("/read-all", markAllReadHandler(svc))
		nr.Post("/{notificationID}/read", markReadHandler(svc))
		nr.Delete("/{notificationID}", deleteNotificationHandler(svc))
		nr.Delete("/", clearAllHandler(svc))
	})
}

type notificationResponse struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	Message         string     `json:"message"`
	Type            Type       `json:"type"`
	ImagePath       *string    `json:"image_path,omitempty"`
	ReadAt          *time.Time `json:"read_at,omitempty"`
	AppointmentDate string     `json:"appointment_date,omitempty"`
	AppointmentTime *string    `json:"appointment_time,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type countResponse struct {
	Count int `json:"count"`
}

// listNotificationsHandler godoc
// @Summary Listar mis notificaciones
// @Description Ordenadas por fecha de creación descendente.
// @Tags notifications
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {array} notificationResponse
// @Failure 401 {string} string "unauthorized"
// @Router /notifications [get]
func listNotificationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := httpx.Principal(w, r)
		if !ok {
			return
		}
		items, err := svc.List(r.Context(), claims.UserID)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		out := make([]notificationResponse, 0, len(items))
		for _, n := range items {
			out = append(out, toNotificationResponse(n))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

// unreadCountHandler godoc
// @Summary Notificaciones sin leer
// @Tags notifications
// @Produce json
// @Success 200 {object} countResponse
// @Router /notifications/unread-count [get]
func unreadCountHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := httpx.Principal(w, r)
		if !ok {
			return
		}
		n, err := svc.UnreadCount(r.Context(), claims.UserID)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, countResponse{Count: n})
	}
}

// markReadHandler godoc
// @Summary Marcar notificación como leída
// @Tags notifications
// @Param notificationID path string true "ID de la notificación"
// @Success 204
// @Failure 404 {object} httpx.ErrorResponse
// @Router /notifications/{notificationID}/read [post]
func markReadHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := httpx.Principal(w, r)
		if !ok {
			return
		}
		if err := svc.MarkRead(r.Context(), claims.UserID, chi.URLParam(r, "notificationID")); err != nil {
			httpx.WriteError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// markAllReadHandler godoc
// @Summary Marcar todas como leídas
// @Tags notifications
// @Produce json
// @Success 200 {object} countResponse
// @Router /notifications/read-all [post]
func markAllReadHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := httpx.Principal(w, r)
		if !ok {
			return
		}
		n, err := svc.MarkAllRead(r.Context(), claims.UserID)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, countResponse{Count: n})
	}
}

// deleteNotificationHandler godoc
// @Summary Borrar notificación
// @Tags notifications
// @Param notificationID path string true "ID de la notificación"
// @Success 204
// @Failure 404 {object} httpx.ErrorResponse
// @Router /notifications/{notificationID} [delete]
func deleteNotificationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := httpx.Principal(w, r)
		if !ok {
			return
		}
		if err := svc.Delete(r.Context(), claims.UserID, chi.URLParam(r, "notificationID")); err != nil {
			httpx.WriteError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// clearAllHandler godoc
// @Summary Borrar todas mis notificaciones
// @Tags notifications
// @Produce json
// @Success 200 {object} countResponse
// @Router /notifications [delete]
func clearAllHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := httpx.Principal(w, r)
		if !ok {
			return
		}
		n, err := svc.DeleteAll(r.Context(), claims.UserID)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, countResponse{Count: n})
	}
}

func toNotificationResponse(n Notification) notificationResponse {
	out := notificationResponse{
		ID:              n.ID,
		UserID:          n.UserID,
		Message:         n.Message,
		Type:            n.Type,
		ImagePath:       n.ImageRef,
		ReadAt:          n.ReadAt,
		AppointmentTime: n.AppointmentTime,
		CreatedAt:       n.CreatedAt,
	}
	if n.AppointmentDate != nil {
		out.AppointmentDate = n.AppointmentDate.Format("2006-01-02")
	}
	return out
}
