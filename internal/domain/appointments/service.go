package appointments

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"noahs-ark/internal/domain/adoptions"
	"noahs-ark/internal/domain/animals"
	"noahs-ark/internal/domain/notifications"
	"noahs-ark/internal/domain/users"
	"noahs-ark/internal/platform/apperr"
	"noahs-ark/internal/platform/logger"
	"noahs-ark/internal/ports/auth"
	"noahs-ark/internal/ports/store"

	"github.com/google/uuid"
)

// Notifier es el dispatcher de notificaciones visto desde acá.
type Notifier interface {
	Dispatch(ctx context.Context, ev notifications.Event) (notifications.Notification, error)
}

type ProfileLookup interface {
	GetByID(ctx context.Context, id string) (users.User, error)
}

type Service struct {
	repo     Repository
	requests adoptions.Repository
	animals  animals.Repository
	profiles ProfileLookup
	notifier Notifier
	tx       store.TxRunner
	log      logger.Logger
	now      func() time.Time
}

type Deps struct {
	Repo     Repository
	Requests adoptions.Repository
	Animals  animals.Repository
	Profiles ProfileLookup
	Notifier Notifier
	Tx       store.TxRunner
	Log      logger.Logger
}

func NewService(d Deps) *Service {
	if d.Tx == nil {
		d.Tx = store.NoTx{}
	}
	if d.Log == nil {
		d.Log = logger.NewNop()
	}
	return &Service{
		repo:     d.Repo,
		requests: d.Requests,
		animals:  d.Animals,
		profiles: d.Profiles,
		notifier: d.Notifier,
		tx:       d.Tx,
		log:      d.Log.With(map[string]any{"component": "appointments"}),
		now:      time.Now,
	}
}

type ScheduleInput struct {
	AdoptionRequestID string
	Date              string // YYYY-MM-DD
	Time              string // HH:MM
	Notes             string
}

// Schedule agenda la cita para una solicitud aprobada sin otra cita activa.
// La notificación se despacha después del commit; si falla, la cita queda igual.
func (s *Service) Schedule(ctx context.Context, actor auth.Claims, in ScheduleInput) (Appointment, error) {
	if !actor.Role.IsStaff() {
		return Appointment{}, apperr.ErrForbidden
	}

	in.AdoptionRequestID = strings.TrimSpace(in.AdoptionRequestID)
	in.Time = strings.TrimSpace(in.Time)

	f := apperr.Fields{}
	if in.AdoptionRequestID == "" {
		f.Add("adoption_request_id", "required")
	}
	date, err := time.Parse("2006-01-02", strings.TrimSpace(in.Date))
	if err != nil {
		f.Add("appointment_date", "must be YYYY-MM-DD")
	} else {
		today := truncateDay(s.now().UTC())
		if date.Before(today) {
			f.Add("appointment_date", "must be today or later")
		}
	}
	if _, err := time.Parse("15:04", in.Time); err != nil {
		f.Add("appointment_time", "must be HH:MM")
	}
	if err := f.Err(); err != nil {
		return Appointment{}, err
	}

	now := s.now().UTC()
	appt := Appointment{
		ID:                uuid.NewString(),
		AdoptionRequestID: in.AdoptionRequestID,
		Date:              date,
		Time:              in.Time,
		Notes:             strings.TrimSpace(in.Notes),
		Status:            StatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	var req adoptions.Request
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		// El lock sobre la solicitud serializa dos agendas concurrentes.
		r, err := s.requests.GetForUpdate(ctx, in.AdoptionRequestID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return apperr.Invalid("adoption_request_id", "adoption request does not exist")
			}
			return err
		}
		if r.Status != adoptions.StatusApproved {
			return apperr.Invalid("adoption_request_id", "adoption request is not approved")
		}
		active, err := s.repo.List(ctx, ListFilter{AdoptionRequestIDs: []string{r.ID}, ActiveOnly: true})
		if err != nil {
			return err
		}
		if len(active) > 0 {
			return apperr.ErrConflict
		}
		req = r
		return s.repo.Create(ctx, appt)
	})
	if err != nil {
		return Appointment{}, err
	}

	s.notifyScheduled(ctx, req, appt)
	return appt, nil
}

func (s *Service) notifyScheduled(ctx context.Context, req adoptions.Request, appt Appointment) {
	if s.notifier == nil {
		return
	}
	ev := notifications.Event{
		Type:            notifications.TypeAdoptionAppointmentScheduled,
		UserID:          req.UserID,
		Status:          string(appt.Status),
		AppointmentDate: &appt.Date,
		AppointmentTime: appt.Time,
	}
	if a, err := s.animals.GetByID(ctx, req.AnimalID); err == nil {
		ev.AnimalName = a.Name
		ev.AnimalImage = a.ImageRef
	}
	if _, err := s.notifier.Dispatch(ctx, ev); err != nil {
		s.log.Error("dispatch appointment notification failed", map[string]any{
			"appointment_id": appt.ID,
			"user_id":        req.UserID,
			"error":          err,
		})
	}
}

func (s *Service) Delete(ctx context.Context, actor auth.Claims, id string) error {
	if !actor.Role.IsStaff() {
		return apperr.ErrForbidden
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return apperr.ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

// Party resume a una de las partes para la vista de citas.
type Party struct {
	ID       string
	Name     string
	ImageRef string
}

type Entry struct {
	Appointment Appointment
	Request     adoptions.Request
	Adopter     Party
	Animal      Party
}

// Overview es la vista del staff: citas existentes y solicitudes aprobadas
// que todavía no tienen cita activa.
type Overview struct {
	Appointments []Entry
	Unscheduled  []Entry
}

func (s *Service) Overview(ctx context.Context, actor auth.Claims) (Overview, error) {
	if !actor.Role.IsStaff() {
		return Overview{}, apperr.ErrForbidden
	}

	approved, err := s.requests.List(ctx, adoptions.ListFilter{Status: adoptions.StatusApproved})
	if err != nil {
		return Overview{}, err
	}
	all, err := s.repo.List(ctx, ListFilter{})
	if err != nil {
		return Overview{}, err
	}

	byReq := make(map[string]adoptions.Request, len(approved))
	for _, r := range approved {
		byReq[r.ID] = r
	}

	out := Overview{Appointments: make([]Entry, 0, len(all)), Unscheduled: make([]Entry, 0)}
	hasActive := map[string]bool{}
	for _, a := range all {
		req, ok := byReq[a.AdoptionRequestID]
		if !ok {
			// Solicitud que ya no está aprobada: la buscamos igual para mostrarla.
			r, err := s.requests.GetByID(ctx, a.AdoptionRequestID)
			if err != nil {
				continue
			}
			req = r
		}
		if a.Status.Active() {
			hasActive[a.AdoptionRequestID] = true
		}
		out.Appointments = append(out.Appointments, s.entry(ctx, a, req))
	}
	for _, r := range approved {
		if hasActive[r.ID] {
			continue
		}
		out.Unscheduled = append(out.Unscheduled, s.entry(ctx, Appointment{}, r))
	}

	sort.SliceStable(out.Appointments, func(i, j int) bool {
		ai, aj := out.Appointments[i].Appointment, out.Appointments[j].Appointment
		if !ai.Date.Equal(aj.Date) {
			return ai.Date.Before(aj.Date)
		}
		return ai.Time < aj.Time
	})
	return out, nil
}

// ListMine devuelve las citas de las solicitudes del adoptante.
func (s *Service) ListMine(ctx context.Context, actor auth.Claims) ([]Entry, error) {
	if strings.TrimSpace(actor.UserID) == "" {
		return nil, apperr.ErrForbidden
	}
	reqs, err := s.requests.List(ctx, adoptions.ListFilter{UserID: actor.UserID})
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return []Entry{}, nil
	}
	byReq := make(map[string]adoptions.Request, len(reqs))
	ids := make([]string, 0, len(reqs))
	for _, r := range reqs {
		byReq[r.ID] = r
		ids = append(ids, r.ID)
	}
	items, err := s.repo.List(ctx, ListFilter{AdoptionRequestIDs: ids})
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(items))
	for _, a := range items {
		out = append(out, s.entry(ctx, a, byReq[a.AdoptionRequestID]))
	}
	return out, nil
}

func (s *Service) entry(ctx context.Context, a Appointment, req adoptions.Request) Entry {
	e := Entry{Appointment: a, Request: req}
	e.Adopter.ID = req.UserID
	if s.profiles != nil {
		if u, err := s.profiles.GetByID(ctx, req.UserID); err == nil {
			e.Adopter.Name = u.FullName()
			e.Adopter.ImageRef = u.ProfilePhotoRef
		}
	}
	e.Animal.ID = req.AnimalID
	if an, err := s.animals.GetByID(ctx, req.AnimalID); err == nil {
		e.Animal.Name = an.Name
		e.Animal.ImageRef = an.ImageRef
	}
	return e
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
