package workflow

import (
	"noahs-ark/internal/domain/abusereports"
	"noahs-ark/internal/domain/adoptions"
	"noahs-ark/internal/domain/appointments"
)

// Kind identifica la entidad sobre la que se pide la transición.
type Kind string

const (
	KindAdoptionRequest Kind = "adoption_request"
	KindAppointment     Kind = "appointment"
	KindAbuseReport     Kind = "abuse_report"
)

type TransitionRequest struct {
	Kind   Kind
	ID     string
	Status string
	// Obligatorio si Status == "rejected".
	Reason string
}

// Result lleva la entidad ya actualizada; solo uno de los punteros viene seteado.
type Result struct {
	Kind   Kind
	ID     string
	Status string

	AdoptionRequest *adoptions.Request
	Appointment     *appointments.Appointment
	AbuseReport     *abusereports.Report
}
