package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"noahs-ark/internal/platform/apperr"
	"noahs-ark/internal/platform/logger"
	"noahs-ark/internal/platform/metrics"
	"noahs-ark/internal/ports/realtime"

	"github.com/google/uuid"
)

// Dispatcher arma el texto, persiste la Notification y la publica en user.<id>.
// Persistir va primero; si publicar falla se loguea y la notificación queda igual.
type Dispatcher struct {
	repo      Repository
	publisher realtime.Publisher // puede ser nil
	log       logger.Logger
	now       func() time.Time
}

func NewDispatcher(repo Repository, publisher realtime.Publisher, log logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.NewNop()
	}
	return &Dispatcher{
		repo:      repo,
		publisher: publisher,
		log:       log.With(map[string]any{"component": "notifications.dispatcher"}),
		now:       time.Now,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) (Notification, error) {
	userID := strings.TrimSpace(ev.UserID)
	if userID == "" {
		return Notification{}, apperr.Invalid("user_id", "required")
	}
	if ev.Type.EventName() == "" {
		return Notification{}, fmt.Errorf("%w: unknown notification type %q", apperr.ErrValidation, ev.Type)
	}

	n := Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Message:   BuildMessage(ev),
		Type:      ev.Type,
		ImageRef:  resolveImage(ev),
		CreatedAt: d.now().UTC(),
	}
	if ev.Type == TypeAdoptionAppointmentScheduled {
		n.AppointmentDate = ev.AppointmentDate
		if ev.AppointmentTime != "" {
			t := ev.AppointmentTime
			n.AppointmentTime = &t
		}
	}

	if err := d.repo.Create(ctx, n); err != nil {
		return Notification{}, err
	}
	metrics.NotificationsDispatched.WithLabelValues(string(n.Type)).Inc()

	d.publish(ctx, n, ev)
	return n, nil
}

func (d *Dispatcher) publish(ctx context.Context, n Notification, ev Event) {
	if d.publisher == nil {
		return
	}
	event := n.Type.EventName()

	payload, err := json.Marshal(toPayload(n, ev))
	if err != nil {
		d.log.Error("marshal notification payload", map[string]any{"notification_id": n.ID, "error": err})
		return
	}

	err = d.publisher.Publish(ctx, realtime.Message{
		Channel: realtime.UserChannel(n.UserID),
		Event:   event,
		Payload: payload,
	})
	if err != nil {
		metrics.RealtimePublishFailures.WithLabelValues(event).Inc()
		d.log.Warn("realtime publish failed", map[string]any{
			"notification_id": n.ID,
			"user_id":         n.UserID,
			"event":           event,
			"error":           err,
		})
	}
}

// Payload que reciben los clientes suscritos a user.<id>.
type Payload struct {
	ID              string  `json:"id"`
	Message         string  `json:"message"`
	UserID          string  `json:"userId"`
	Type            Type    `json:"type"`
	Status          string  `json:"status,omitempty"`
	AnimalName      string  `json:"animal_name,omitempty"`
	AnimalImage     string  `json:"animal_image,omitempty"`
	AppointmentDate string  `json:"appointment_date,omitempty"`
	AppointmentTime string  `json:"appointment_time,omitempty"`
	ImagePath       *string `json:"image_path,omitempty"`
}

func toPayload(n Notification, ev Event) Payload {
	p := Payload{
		ID:        n.ID,
		Message:   n.Message,
		UserID:    n.UserID,
		Type:      n.Type,
		ImagePath: n.ImageRef,
	}
	switch n.Type {
	case TypeAdoptionStatusUpdated:
		p.Status = ev.Status
		p.AnimalName = ev.AnimalName
		p.AnimalImage = ev.AnimalImage
	case TypeAnimalAbuseStatusUpdated:
		p.Status = ev.Status
	case TypeAdoptionAppointmentScheduled:
		if n.AppointmentDate != nil {
			p.AppointmentDate = n.AppointmentDate.Format("2006-01-02")
		}
		if n.AppointmentTime != nil {
			p.AppointmentTime = *n.AppointmentTime
		}
	}
	return p
}

// BuildMessage arma el texto por tipo y estado. Un rechazo incluye el motivo tal cual.
func BuildMessage(ev Event) string {
	animal := strings.TrimSpace(ev.AnimalName)
	if animal == "" {
		animal = "an animal"
	}

	switch ev.Type {
	case TypeAdoptionStatusUpdated:
		switch ev.Status {
		case "approved":
			return fmt.Sprintf("Your adoption request for %s has been approved.", animal)
		case "rejected":
			return fmt.Sprintf("Your adoption request for %s was rejected. Reason: %s", animal, ev.Reason)
		default:
			return fmt.Sprintf("Your adoption request for %s is now pending.", animal)
		}
	case TypeAnimalAbuseStatusUpdated:
		switch ev.Status {
		case "approved":
			return "Your animal abuse report has been approved."
		case "rejected":
			return "Your animal abuse report was rejected. Reason: " + ev.Reason
		default:
			return "Your animal abuse report is now pending."
		}
	case TypeAdoptionAppointmentScheduled:
		when := ""
		if ev.AppointmentDate != nil {
			when = ev.AppointmentDate.Format("January 2, 2006")
		}
		if t, err := time.Parse("15:04", ev.AppointmentTime); err == nil {
			when += " at " + t.Format("3:04 PM")
		}
		return fmt.Sprintf("Your virtual appointment for adopting %s has been scheduled on %s.", animal, when)
	default:
		return ""
	}
}

// resolveImage: imagen del animal si hay; para maltrato, primera foto o el placeholder.
func resolveImage(ev Event) *string {
	switch ev.Type {
	case TypeAnimalAbuseStatusUpdated:
		img := DefaultAbuseImage
		if len(ev.PhotoRefs) > 0 && strings.TrimSpace(ev.PhotoRefs[0]) != "" {
			img = ev.PhotoRefs[0]
		}
		return &img
	default:
		if img := strings.TrimSpace(ev.AnimalImage); img != "" {
			return &img
		}
		return nil
	}
}
