package chat

import (
	"net/http"
	"time"

	"noahs-ark/internal/platform/httpx"
	"noahs-ark/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/chats", func(cr chi.Router) {
		cr.Get("/contacts", listContactsHandler(svc))
		cr.Get("/unread-count", unreadCountHandler(svc))
		cr.Post("/mark-as-read/{contactID}", markAsReadHandler(svc))
		cr.Get("/{contactID}/messages", getMessagesHandler(svc))
		cr.Post("/{contactID}/messages", sendMessageHandler(svc))
	})
}

type sendRequest struct {
	Message       string `json:"message"`
	AttachmentRef string `json:"attachment_ref"`
}

type messageResponse struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Message    string    `json:"message"`
	ImagePath  string    `json:"image_path,omitempty"`
	VideoPath  string    `json:"video_path,omitempty"`
	Unread     bool      `json:"unread"`
	Seen       bool      `json:"seen"`
	CreatedAt  time.Time `json:"created_at"`
}

type contactResponse struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Role            auth.Role        `json:"role"`
	ProfilePhotoRef string           `json:"profile_photo_ref,omitempty"`
	LastMessage     *messageResponse `json:"last_message,omitempty"`
	Preview         string           `json:"preview"`
	UnreadCount     int              `json:"unread_count"`
	Online          bool             `json:"online"`
}

type countResponse struct {
	Count int `json:"count"`
}

// listContactsHandler godoc
// @Summary Contactos con último mensaje, no leídos y presencia
// @Tags chat
// @Produce json
// @Success 200 {array} contactResponse
// @Router /chats/contacts [get]
func listContactsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := httpx.Principal(w, r)
		if !ok {
			return
		}
		items, err := svc.ListContacts(r.Context(), claims)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		out := make([]contactResponse, 0, len(items))
		for _, c := range items {
			cr := contactResponse{
				ID:              c.User.ID,
				Name:            c.User.FullName(),
				Role:            c.User.Role,
				ProfilePhotoRef: c.User.ProfilePhotoRef,
				Preview:         c.Preview,
				UnreadCount:     c.UnreadCount,
				Online:          c.Online,
			}
			if c.LastMessage != nil {
				m := toMessageResponse(*c.LastMessage)
				cr.LastMessage = &m
			}
			out = append(out, cr)
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

// getMessagesHandler godoc
// @Summary Conversación con un contacto
// @Description Devuelve el hilo en orden cronológico y marca como leídos los mensajes del contacto hacia mí.
// @Tags chat
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param contactID path string true "ID del contacto"
// @Success 200 {array} messageResponse
// @Failure 401 {string} string "unauthorized"
// @Router /chats/{contactID}/messages [get]
func getMessagesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := httpx.Principal(w, r)
		if !ok {
			return
		}
		contactID := chi.URLParam(r, "contactID")

		items, err := svc.FetchThread(r.Context(), claims, contactID)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		if _, err := svc.MarkThreadRead(r.Context(), claims, contactID); err != nil {
			httpx.WriteError(w, err)
			return
		}

		out := make([]messageResponse, 0, len(items))
		for _, m := range items {
			out = append(out, toMessageResponse(m))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

// sendMessageHandler godoc
// @Summary Enviar mensaje
// @Description Requiere `message` o `attachment_ref` (imagen: jpeg/jpg/png/gif, video: mp4/avi/mkv/mov). Se publica en chat.<contactID>.
// @Tags chat
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param contactID path string true "ID del receptor"
// @Param payload body sendRequest true "Mensaje"
// @Success 201 {object} messageResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 403 {string} string "forbidden"
// @Failure 404 {object} httpx.ErrorResponse
// @Router /chats/{contactID}/messages [post]
func sendMessageHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := httpx.Principal(w, r)
		if !ok {
			return
		}
		var req sendRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, err)
			return
		}
		m, err := svc.Send(r.Context(), claims, SendInput{
			ReceiverID:    chi.URLParam(r, "contactID"),
			Body:          req.Message,
			AttachmentRef: req.AttachmentRef,
		})
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, toMessageResponse(m))
	}
}

// markAsReadHandler godoc
// @Summary Marcar como leídos los mensajes de un contacto
// @Tags chat
// @Produce json
// @Param contactID path string true "ID del contacto"
// @Success 200 {object} countResponse
// @Router /chats/mark-as-read/{contactID} [post]
func markAsReadHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := httpx.Principal(w, r)
		if !ok {
			return
		}
		n, err := svc.MarkThreadRead(r.Context(), claims, chi.URLParam(r, "contactID"))
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, countResponse{Count: n})
	}
}

// unreadCountHandler godoc
// @Summary Mensajes sin leer
// @Tags chat
// @Produce json
// @Success 200 {object} countResponse
// @Router /chats/unread-count [get]
func unreadCountHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := httpx.Principal(w, r)
		if !ok {
			return
		}
		n, err := svc.UnreadCount(r.Context(), claims)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, countResponse{Count: n})
	}
}

func toMessageResponse(m Message) messageResponse {
	return messageResponse{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Message:    m.Body,
		ImagePath:  m.ImageRef,
		VideoPath:  m.VideoRef,
		Unread:     m.Unread,
		Seen:       m.Seen,
		CreatedAt:  m.CreatedAt,
	}
}
