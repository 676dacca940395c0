package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"noahs-ark/internal/platform/apperr"
	"noahs-ark/internal/platform/logger"
	"noahs-ark/internal/ports/realtime"
)

type testRepo struct {
	created []Notification
	err     error
}

func (r *testRepo) Create(_ context.Context, n Notification) error {
	if r.err != nil {
		return r.err
	}
	r.created = append(r.created, n)
	return nil
}

func (r *testRepo) ListByUser(context.Context, string) ([]Notification, error) {
	return r.created, nil
}
func (r *testRepo) CountUnread(context.Context, string) (int, error) { return len(r.created), nil }
func (r *testRepo) MarkRead(context.Context, string, string, time.Time) error {
	return nil
}
func (r *testRepo) MarkAllRead(context.Context, string, time.Time) (int, error) { return 0, nil }
func (r *testRepo) Delete(context.Context, string, string) error                { return nil }
func (r *testRepo) DeleteAll(context.Context, string) (int, error)              { return 0, nil }

// publisher que verifica que la notificación ya esté persistida al publicar.
type checkingPublisher struct {
	repo *testRepo
	msgs []realtime.Message
	// persisted cuenta cuántas notificaciones había al momento de cada Publish.
	persisted []int
	err       error
}

func (p *checkingPublisher) Publish(_ context.Context, msg realtime.Message) error {
	p.persisted = append(p.persisted, len(p.repo.created))
	p.msgs = append(p.msgs, msg)
	return p.err
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *testRepo, *checkingPublisher) {
	t.Helper()
	repo := &testRepo{}
	pub := &checkingPublisher{repo: repo}
	d := NewDispatcher(repo, pub, logger.NewTest(t))
	d.now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	return d, repo, pub
}

func TestDispatcher_PersistsBeforePublishing(t *testing.T) {
	d, repo, pub := newTestDispatcher(t)

	n, err := d.Dispatch(context.Background(), Event{
		Type:        TypeAdoptionStatusUpdated,
		UserID:      "u-1",
		Status:      "approved",
		AnimalName:  "Luna",
		AnimalImage: "animal/luna.png",
	})
	if err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}
	if len(repo.created) != 1 || repo.created[0].ID != n.ID {
		t.Fatalf("expected notification persisted, got %+v", repo.created)
	}
	if len(pub.persisted) != 1 || pub.persisted[0] != 1 {
		t.Fatalf("publish must happen after persistence, got %v", pub.persisted)
	}

	msg := pub.msgs[0]
	if msg.Channel != "user.u-1" || msg.Event != "adoption.status.updated" {
		t.Fatalf("unexpected message routing: %+v", msg)
	}
	var p Payload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if p.Status != "approved" || p.AnimalName != "Luna" || p.ID != n.ID {
		t.Fatalf("unexpected payload: %+v", p)
	}
}

func TestDispatcher_PublishFailureKeepsNotification(t *testing.T) {
	d, repo, pub := newTestDispatcher(t)
	pub.err = errors.New("broker down")

	if _, err := d.Dispatch(context.Background(), Event{Type: TypeAnimalAbuseStatusUpdated, UserID: "u-1", Status: "approved"}); err != nil {
		t.Fatalf("publish failure must not surface, got %v", err)
	}
	if len(repo.created) != 1 {
		t.Fatalf("notification must stay persisted")
	}
}

func TestDispatcher_PersistFailureSkipsPublish(t *testing.T) {
	d, repo, pub := newTestDispatcher(t)
	repo.err = errors.New("db down")

	if _, err := d.Dispatch(context.Background(), Event{Type: TypeAdoptionStatusUpdated, UserID: "u-1", Status: "approved"}); err == nil {
		t.Fatalf("expected error")
	}
	if len(pub.msgs) != 0 {
		t.Fatalf("nothing must be published when persistence fails")
	}
}

func TestDispatcher_RejectsMissingUserAndUnknownType(t *testing.T) {
	d, _, _ := newTestDispatcher(t)

	if _, err := d.Dispatch(context.Background(), Event{Type: TypeAdoptionStatusUpdated}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error for missing user, got %v", err)
	}
	if _, err := d.Dispatch(context.Background(), Event{Type: "Unknown", UserID: "u-1"}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error for unknown type, got %v", err)
	}
}

func TestDispatcher_AppointmentCarriesDateAndTime(t *testing.T) {
	d, _, pub := newTestDispatcher(t)
	date := time.Date(2026, 6, 3, 0, 0, 0, 0, time.UTC)

	n, err := d.Dispatch(context.Background(), Event{
		Type:            TypeAdoptionAppointmentScheduled,
		UserID:          "u-1",
		AnimalName:      "Rocky",
		AppointmentDate: &date,
		AppointmentTime: "14:30",
	})
	if err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}
	if n.AppointmentDate == nil || n.AppointmentTime == nil || *n.AppointmentTime != "14:30" {
		t.Fatalf("expected appointment fields, got %+v", n)
	}
	if want := "Your virtual appointment for adopting Rocky has been scheduled on June 3, 2026 at 2:30 PM."; n.Message != want {
		t.Fatalf("message = %q, want %q", n.Message, want)
	}

	var p Payload
	_ = json.Unmarshal(pub.msgs[0].Payload, &p)
	if p.AppointmentDate != "2026-06-03" || p.AppointmentTime != "14:30" {
		t.Fatalf("unexpected payload: %+v", p)
	}
}

func TestBuildMessage(t *testing.T) {
	cases := []struct {
		name string
		ev   Event
		want string
	}{
		{"adoption approved", Event{Type: TypeAdoptionStatusUpdated, Status: "approved", AnimalName: "Luna"}, "Your adoption request for Luna has been approved."},
		{"adoption rejected keeps reason verbatim", Event{Type: TypeAdoptionStatusUpdated, Status: "rejected", AnimalName: "Luna", Reason: "No yard."}, "Your adoption request for Luna was rejected. Reason: No yard."},
		{"adoption without animal", Event{Type: TypeAdoptionStatusUpdated, Status: "pending"}, "Your adoption request for an animal is now pending."},
		{"abuse approved", Event{Type: TypeAnimalAbuseStatusUpdated, Status: "approved"}, "Your animal abuse report has been approved."},
		{"abuse rejected", Event{Type: TypeAnimalAbuseStatusUpdated, Status: "rejected", Reason: "duplicate"}, "Your animal abuse report was rejected. Reason: duplicate"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := BuildMessage(tc.ev); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestResolveImage(t *testing.T) {
	if img := resolveImage(Event{Type: TypeAnimalAbuseStatusUpdated}); img == nil || *img != DefaultAbuseImage {
		t.Fatalf("abuse without photos must use placeholder, got %v", img)
	}
	if img := resolveImage(Event{Type: TypeAnimalAbuseStatusUpdated, PhotoRefs: []string{"abuse_photo/a.jpg", "abuse_photo/b.jpg"}}); img == nil || *img != "abuse_photo/a.jpg" {
		t.Fatalf("abuse must use first photo, got %v", img)
	}
	if img := resolveImage(Event{Type: TypeAdoptionStatusUpdated}); img != nil {
		t.Fatalf("adoption without animal image must be nil, got %q", *img)
	}
	if img := resolveImage(Event{Type: TypeAdoptionStatusUpdated, AnimalImage: " animal/x.png "}); img == nil || !strings.HasSuffix(*img, "x.png") {
		t.Fatalf("adoption must use animal image, got %v", img)
	}
}
