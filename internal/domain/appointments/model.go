package appointments

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return st, true
	default:
		return "", false
	}
}

// Active: cuenta para la regla de "una cita activa por solicitud".
func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Appointment es la cita virtual agendada para una solicitud aprobada.
type Appointment struct {
	ID                string
	AdoptionRequestID string

	// Date es solo fecha (medianoche UTC); Time es "HH:MM".
	Date  time.Time
	Time  string
	Notes string

	Status Status
	// Motivo opcional de cancelación.
	Reason *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
