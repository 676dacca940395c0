package animals

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"noahs-ark/internal/platform/apperr"
	"noahs-ark/internal/platform/logger"
	"noahs-ark/internal/ports/tracking"

	"github.com/google/uuid"
)

type Service struct {
	repo    Repository
	tracker tracking.DeviceTracker // puede ser nil: se guarda el device id sin registrarlo
	log     logger.Logger
	now     func() time.Time
}

func NewService(repo Repository, tracker tracking.DeviceTracker, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		repo:    repo,
		tracker: tracker,
		log:     log.With(map[string]any{"component": "animals"}),
		now:     time.Now,
	}
}

type ProfileInput struct {
	Name           string
	Age            int
	Species        string
	Breed          string
	BirthDate      *time.Time
	Color          string
	Gender         string
	Description    string
	ImageRef       string
	MedicalRecords string
	DeviceID       string
}

func (in ProfileInput) normalize() ProfileInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Species = strings.TrimSpace(in.Species)
	in.Breed = strings.TrimSpace(in.Breed)
	in.Color = strings.TrimSpace(in.Color)
	in.Gender = strings.TrimSpace(in.Gender)
	in.Description = strings.TrimSpace(in.Description)
	in.ImageRef = strings.TrimSpace(in.ImageRef)
	in.MedicalRecords = strings.TrimSpace(in.MedicalRecords)
	in.DeviceID = strings.TrimSpace(in.DeviceID)
	return in
}

func (in ProfileInput) validate() error {
	f := apperr.Fields{}
	required := map[string]string{
		"name":        in.Name,
		"species":     in.Species,
		"breed":       in.Breed,
		"color":       in.Color,
		"gender":      in.Gender,
		"description": in.Description,
	}
	for field, v := range required {
		if v == "" {
			f.Add(field, "required")
		} else if len(v) > 255 && field != "description" {
			f.Add(field, "max 255 chars")
		}
	}
	if in.Age < 0 {
		f.Add("age", "must be >= 0")
	}
	if len(in.MedicalRecords) > 1000 {
		f.Add("medical_records", "max 1000 chars")
	}
	return f.Err()
}

// Create registra el collar en el servicio de tracking ANTES de guardar el perfil.
// Si el registro falla, el perfil no se crea.
func (s *Service) Create(ctx context.Context, in ProfileInput) (Animal, error) {
	in = in.normalize()
	if err := in.validate(); err != nil {
		return Animal{}, err
	}

	var trackingRef string
	if in.DeviceID != "" && s.tracker != nil {
		ref, err := s.tracker.Register(ctx, tracking.Device{Name: in.Name, UniqueID: in.DeviceID})
		if err != nil {
			s.log.Error("tracking register failed", map[string]any{"device_id": in.DeviceID, "error": err})
			return Animal{}, fmt.Errorf("%w: register tracking device: %v", apperr.ErrDependency, err)
		}
		trackingRef = ref
	}

	now := s.now().UTC()
	a := Animal{
		ID:             uuid.NewString(),
		Name:           in.Name,
		Age:            in.Age,
		Species:        in.Species,
		Breed:          in.Breed,
		BirthDate:      in.BirthDate,
		Color:          in.Color,
		Gender:         in.Gender,
		Description:    in.Description,
		ImageRef:       in.ImageRef,
		MedicalRecords: in.MedicalRecords,
		DeviceID:       in.DeviceID,
		TrackingRef:    trackingRef,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return Animal{}, err
	}
	return a, nil
}

// Update reemplaza el perfil. Si cambió el device id y ya hay un id externo,
// se actualiza el device en el tracker antes de escribir.
func (s *Service) Update(ctx context.Context, id string, in ProfileInput) (Animal, error) {
	in = in.normalize()
	if err := in.validate(); err != nil {
		return Animal{}, err
	}

	a, err := s.Get(ctx, id)
	if err != nil {
		return Animal{}, err
	}

	if in.DeviceID != "" && in.DeviceID != a.DeviceID && a.TrackingRef != "" && s.tracker != nil {
		if err := s.tracker.Update(ctx, a.TrackingRef, tracking.Device{Name: in.Name, UniqueID: in.DeviceID}); err != nil {
			s.log.Error("tracking update failed", map[string]any{"animal_id": a.ID, "error": err})
			return Animal{}, fmt.Errorf("%w: update tracking device: %v", apperr.ErrDependency, err)
		}
	}

	a.Name = in.Name
	a.Age = in.Age
	a.Species = in.Species
	a.Breed = in.Breed
	a.BirthDate = in.BirthDate
	a.Color = in.Color
	a.Gender = in.Gender
	a.Description = in.Description
	a.MedicalRecords = in.MedicalRecords
	if in.ImageRef != "" {
		a.ImageRef = in.ImageRef
	}
	if in.DeviceID != "" {
		a.DeviceID = in.DeviceID
	}
	a.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, a); err != nil {
		return Animal{}, err
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, id string) (Animal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Animal{}, apperr.ErrNotFound
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Animal{}, apperr.ErrNotFound
		}
		return Animal{}, err
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Animal, error) {
	filter.Query = strings.TrimSpace(filter.Query)
	return s.repo.List(ctx, filter)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// MarkAdopted es la acción manual del staff (fuera del flujo de solicitudes).
func (s *Service) MarkAdopted(ctx context.Context, id string) (Animal, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return Animal{}, err
	}
	a.IsAdopted = true
	a.IsTemporarilyAdopted = false
	a.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, a); err != nil {
		return Animal{}, err
	}
	return a, nil
}

// Location consulta la última posición conocida del collar.
func (s *Service) Location(ctx context.Context, id string) (tracking.Position, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return tracking.Position{}, err
	}
	if a.TrackingRef == "" || s.tracker == nil {
		return tracking.Position{}, apperr.Invalid("device_id", "animal has no registered tracking device")
	}
	pos, err := s.tracker.LatestPosition(ctx, a.TrackingRef)
	if err != nil {
		if errors.Is(err, tracking.ErrNoPosition) {
			return tracking.Position{}, apperr.ErrNotFound
		}
		return tracking.Position{}, fmt.Errorf("%w: tracking position: %v", apperr.ErrDependency, err)
	}
	return pos, nil
}

var errBirthDate = apperr.Invalid("birth_date", "must be YYYY-MM-DD")
