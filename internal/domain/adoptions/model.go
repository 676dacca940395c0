package adoptions

import "time"

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusPending, StatusApproved, StatusRejected:
		return st, true
	default:
		return "", false
	}
}

// Request es la solicitud de adopción de un adoptante sobre un animal.
type Request struct {
	ID       string
	UserID   string
	AnimalID string

	// Respuestas al cuestionario (las 3 son obligatorias).
	Answers [3]string

	// Referencias devueltas por el file store.
	ValidIDRef      string
	SelfieWithIDRef string

	Status Status
	// Solo con Status == rejected.
	RejectionReason *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
