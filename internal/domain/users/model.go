package users

import (
	"time"

	"noahs-ark/internal/ports/auth"
)

// Gender del perfil del adoptante.
// @Enum male, female, other
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// User es la copia local del principal. Se provisiona desde los claims en el primer request.
type User struct {
	ID       string
	Name     string
	LastName string
	Email    string
	Role     auth.Role

	Address         string
	PhoneNumber     string
	Age             *int
	Gender          Gender
	CivilStatus     string
	ProfilePhotoRef string

	// Sellado en cada request autenticado; alimenta el "online" del chat.
	LastActivityAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// MissingProfileFields lista lo que falta para poder enviar una solicitud de adopción.
func (u User) MissingProfileFields() []string {
	var missing []string
	if u.Address == "" {
		missing = append(missing, "address")
	}
	if u.PhoneNumber == "" {
		missing = append(missing, "phone_number")
	}
	if u.Age == nil {
		missing = append(missing, "age")
	}
	if u.Gender == "" {
		missing = append(missing, "gender")
	}
	if u.CivilStatus == "" {
		missing = append(missing, "civil_status")
	}
	return missing
}

// IsOnline: última actividad dentro de la ventana.
func (u User) IsOnline(now time.Time, window time.Duration) bool {
	if u.LastActivityAt == nil {
		return false
	}
	return u.LastActivityAt.After(now.Add(-window))
}

func (u User) FullName() string {
	if u.LastName == "" {
		return u.Name
	}
	return u.Name + " " + u.LastName
}
