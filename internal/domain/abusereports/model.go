package abusereports

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

type Report struct {
	ID          string
	UserID      string
	Description string

	// Nunca nil: sin adjuntos => slices vacíos.
	PhotoRefs []string
	VideoRefs []string

	Status          Status
	RejectionReason *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
