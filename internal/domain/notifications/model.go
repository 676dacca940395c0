package notifications

import "time"

type Type string

const (
	TypeAdoptionStatusUpdated        Type = "AdoptionStatusUpdated"
	TypeAnimalAbuseStatusUpdated     Type = "AnimalAbuseStatusUpdated"
	TypeAdoptionAppointmentScheduled Type = "AdoptionAppointmentScheduled"
)

// Nombre del evento en el canal realtime, por tipo.
var eventNames = map[Type]string{
	TypeAdoptionStatusUpdated:        "adoption.status.updated",
	TypeAnimalAbuseStatusUpdated:     "animal.abuse.status.updated",
	TypeAdoptionAppointmentScheduled: "adoption.appointment.scheduled",
}

func (t Type) EventName() string {
	return eventNames[t]
}

// DefaultAbuseImage se usa cuando el reporte no trae fotos.
const DefaultAbuseImage = "images/default-abuse.png"

type Notification struct {
	ID      string
	UserID  string
	Message string
	Type    Type

	ImageRef *string
	ReadAt   *time.Time

	// Solo para TypeAdoptionAppointmentScheduled.
	AppointmentDate *time.Time
	AppointmentTime *string

	CreatedAt time.Time
}

func (n Notification) IsRead() bool {
	return n.ReadAt != nil
}

// Event es la señal que emite un flujo (transición o agenda) ya persistido.
// Lleva todo lo necesario para armar el mensaje sin volver a leer el store.
type Event struct {
	Type   Type
	UserID string

	// Estado resultante y motivo (si fue rechazo).
	Status string
	Reason string

	AnimalName  string
	AnimalImage string

	// Fotos del reporte de maltrato; la primera se usa como imagen.
	PhotoRefs []string

	AppointmentDate *time.Time
	AppointmentTime string
}
