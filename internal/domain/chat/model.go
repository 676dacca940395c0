package chat

import (
	"time"

	"noahs-ark/internal/domain/users"
)

type Message struct {
	ID         string
	SenderID   string
	ReceiverID string

	// Body puede venir vacío si hay adjunto.
	Body     string
	ImageRef string
	VideoRef string

	Unread bool
	Seen   bool

	CreatedAt time.Time
}

// Preview es el texto de la última línea en la lista de contactos.
func (m Message) Preview() string {
	switch {
	case m.Body != "":
		return m.Body
	case m.ImageRef != "":
		return "[image]"
	case m.VideoRef != "":
		return "[video]"
	default:
		return ""
	}
}

const noMessagesPreview = "No messages yet"

// Contact es un resumen por contraparte visible para el usuario.
type Contact struct {
	User        users.User
	LastMessage *Message
	Preview     string
	UnreadCount int
	Online      bool
}
