package animals

import "time"

type Animal struct {
	ID string

	Name        string
	Age         int
	Species     string
	Breed       string
	BirthDate   *time.Time
	Color       string
	Gender      string
	Description string

	ImageRef       string
	MedicalRecords string

	// Reservado mientras hay una solicitud pendiente que lo referencia.
	IsTemporarilyAdopted bool
	IsAdopted            bool

	// DeviceID es el uniqueId del collar; TrackingRef es el id que devuelve el servicio de tracking.
	DeviceID    string
	TrackingRef string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Available: se puede pedir en adopción.
func (a Animal) Available() bool {
	return !a.IsAdopted && !a.IsTemporarilyAdopted
}

// DisplayName se usa en los mensajes de notificación.
func (a Animal) DisplayName() string {
	if a.Name == "" {
		return "an animal"
	}
	return a.Name
}
