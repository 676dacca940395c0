package realtime

import (
	"context"
	"encoding/json"
)

// Message es lo que viaja por el transporte: canal, nombre del evento y payload JSON.
type Message struct {
	Channel string          `json:"channel"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// Publisher entrega un mensaje a los suscriptores del canal. Best-effort.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

func UserChannel(userID string) string { return "user." + userID }

func ChatChannel(userID string) string { return "chat." + userID }
