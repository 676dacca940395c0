package realtime

import (
	"net/http"
	"time"

	"noahs-ark/internal/platform/httpx"
	"noahs-ark/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	"golang.org/x/net/websocket"
)

const writeWait = 10 * time.Second

func RegisterRoutes(r chi.Router, hub *Hub, log logger.Logger) {
	r.Get("/ws", Handler(hub, log))
}

// Handler godoc
// @Summary Stream de eventos en tiempo real
// @Description Upgrade a websocket. Cada frame es {channel, event, payload}. Sin ?channel se suscriben user.<id> y chat.<id>.
// @Tags realtime
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param channel query []string false "Canales (repetible)" collectionFormat(multi)
// @Success 101 {string} string "switching protocols"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {object} httpx.ErrorResponse
// @Router /ws [get]
func Handler(hub *Hub, log logger.Logger) http.HandlerFunc {
	if log == nil {
		log = logger.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := httpx.Principal(w, r)
		if !ok {
			return
		}

		channels := r.URL.Query()["channel"]
		if len(channels) == 0 {
			channels = OwnChannels(claims)
		}
		// Se valida antes del upgrade para poder responder 403.
		for _, c := range channels {
			if err := Authorize(claims, c); err != nil {
				httpx.WriteError(w, err)
				return
			}
		}

		l := log.With(map[string]any{"user_id": claims.UserID})
		srv := websocket.Server{
			// El origen no se valida: la autorización ya se hizo sobre el principal.
			Handshake: func(*websocket.Config, *http.Request) error { return nil },
			Handler: func(conn *websocket.Conn) {
				serve(conn, hub, channels, l)
			},
		}
		srv.ServeHTTP(w, r)
	}
}

func serve(conn *websocket.Conn, hub *Hub, channels []string, log logger.Logger) {
	defer func() { _ = conn.Close() }()

	// el conn hijackeado hereda el ReadTimeout del http.Server
	_ = conn.SetReadDeadline(time.Time{})

	sub := hub.Subscribe(channels...)
	defer sub.Close()

	log.Debug("websocket subscribed", map[string]any{"channels": channels})

	// El cliente no manda nada útil; leemos sólo para detectar el cierre.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		var discard []byte
		for {
			if err := websocket.Message.Receive(conn, &discard); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case msg, ok := <-sub.C:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := websocket.JSON.Send(conn, msg); err != nil {
				log.Warn("websocket write failed", map[string]any{
					"channel": msg.Channel,
					"event":   msg.Event,
					"error":   err,
				})
				return
			}
		}
	}
}
