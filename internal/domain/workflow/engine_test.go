package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	mem "noahs-ark/internal/adapters/storage/memory"
	"noahs-ark/internal/domain/abusereports"
	"noahs-ark/internal/domain/adoptions"
	"noahs-ark/internal/domain/animals"
	"noahs-ark/internal/domain/appointments"
	"noahs-ark/internal/domain/notifications"
	"noahs-ark/internal/platform/apperr"
	"noahs-ark/internal/platform/logger"
	"noahs-ark/internal/ports/auth"
)

var staff = auth.Claims{UserID: "staff-1", Role: auth.RoleStaff}

type recordingNotifier struct {
	events []notifications.Event
	err    error
}

func (n *recordingNotifier) Dispatch(_ context.Context, ev notifications.Event) (notifications.Notification, error) {
	n.events = append(n.events, ev)
	if n.err != nil {
		return notifications.Notification{}, n.err
	}
	return notifications.Notification{ID: "n-1", UserID: ev.UserID, Type: ev.Type}, nil
}

// animalRepo que falla al actualizar, para probar el rollback.
type failingAnimals struct {
	animals.Repository
}

func (failingAnimals) Update(context.Context, animals.Animal) error {
	return errors.New("disk full")
}

type fixture struct {
	engine       *Engine
	notifier     *recordingNotifier
	animals      animals.Repository
	requests     adoptions.Repository
	appointments appointments.Repository
	reports      abusereports.Repository
	now          time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := mem.NewDB()
	f := &fixture{
		notifier:     &recordingNotifier{},
		animals:      mem.NewAnimalRepo(db),
		requests:     mem.NewAdoptionRepo(db),
		appointments: mem.NewAppointmentRepo(db),
		reports:      mem.NewAbuseReportRepo(db),
		now:          time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC),
	}
	f.engine = NewEngine(Deps{
		Requests:     f.requests,
		Appointments: f.appointments,
		Reports:      f.reports,
		Animals:      f.animals,
		Notifier:     f.notifier,
		Tx:           mem.NewTxRunner(db),
		Log:          logger.NewTest(t),
	})
	f.engine.now = func() time.Time { return f.now }
	return f
}

// seedPendingRequest crea un animal reservado y su solicitud pendiente.
func (f *fixture) seedPendingRequest(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	if err := f.animals.Create(ctx, animals.Animal{ID: "a-1", Name: "Luna", ImageRef: "animal/luna.png", IsTemporarilyAdopted: true}); err != nil {
		t.Fatalf("seed animal: %v", err)
	}
	if err := f.requests.Create(ctx, adoptions.Request{ID: "r-1", UserID: "u-1", AnimalID: "a-1", Status: adoptions.StatusPending}); err != nil {
		t.Fatalf("seed request: %v", err)
	}
}

func TestEngine_ApproveAdoption_AdoptsAnimalAndNotifies(t *testing.T) {
	f := newFixture(t)
	f.seedPendingRequest(t)

	res, err := f.engine.Transition(context.Background(), staff, TransitionRequest{
		Kind: KindAdoptionRequest, ID: "r-1", Status: "approved",
	})
	if err != nil {
		t.Fatalf("Transition error: %v", err)
	}
	if res.Status != "approved" || res.AdoptionRequest == nil || res.AdoptionRequest.RejectionReason != nil {
		t.Fatalf("unexpected result: %+v", res)
	}

	a, _ := f.animals.GetByID(context.Background(), "a-1")
	if !a.IsAdopted || a.IsTemporarilyAdopted {
		t.Fatalf("expected adopted and not reserved, got %+v", a)
	}

	if len(f.notifier.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(f.notifier.events))
	}
	ev := f.notifier.events[0]
	if ev.Type != notifications.TypeAdoptionStatusUpdated || ev.UserID != "u-1" || ev.AnimalName != "Luna" || ev.AnimalImage != "animal/luna.png" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestEngine_RejectAdoption_RequiresReasonAndLeavesStateUntouched(t *testing.T) {
	f := newFixture(t)
	f.seedPendingRequest(t)

	_, err := f.engine.Transition(context.Background(), staff, TransitionRequest{
		Kind: KindAdoptionRequest, ID: "r-1", Status: "rejected", Reason: "   ",
	})
	if !errors.Is(err, apperr.ErrMissingReason) {
		t.Fatalf("expected ErrMissingReason, got %v", err)
	}

	req, _ := f.requests.GetByID(context.Background(), "r-1")
	if req.Status != adoptions.StatusPending {
		t.Fatalf("request must stay pending, got %s", req.Status)
	}
	if len(f.notifier.events) != 0 {
		t.Fatalf("no event expected")
	}
}

func TestEngine_RejectAdoption_ReleasesAnimalAndStoresReason(t *testing.T) {
	f := newFixture(t)
	f.seedPendingRequest(t)

	res, err := f.engine.Transition(context.Background(), staff, TransitionRequest{
		Kind: KindAdoptionRequest, ID: "r-1", Status: "rejected", Reason: "incomplete documents",
	})
	if err != nil {
		t.Fatalf("Transition error: %v", err)
	}
	if res.AdoptionRequest.RejectionReason == nil || *res.AdoptionRequest.RejectionReason != "incomplete documents" {
		t.Fatalf("expected stored reason, got %+v", res.AdoptionRequest.RejectionReason)
	}

	a, _ := f.animals.GetByID(context.Background(), "a-1")
	if a.IsAdopted || a.IsTemporarilyAdopted {
		t.Fatalf("animal must be available again, got %+v", a)
	}
	if got := f.notifier.events[0].Reason; got != "incomplete documents" {
		t.Fatalf("event reason = %q", got)
	}
}

func TestEngine_TerminalStatusRejectsFurtherTransitions(t *testing.T) {
	f := newFixture(t)
	f.seedPendingRequest(t)
	ctx := context.Background()

	if _, err := f.engine.Transition(ctx, staff, TransitionRequest{Kind: KindAdoptionRequest, ID: "r-1", Status: "approved"}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	_, err := f.engine.Transition(ctx, staff, TransitionRequest{Kind: KindAdoptionRequest, ID: "r-1", Status: "rejected", Reason: "changed my mind"})
	if !errors.Is(err, apperr.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if len(f.notifier.events) != 1 {
		t.Fatalf("rejected transition must not notify")
	}
}

func TestEngine_ValidationOrder(t *testing.T) {
	f := newFixture(t)
	f.seedPendingRequest(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		actor auth.Claims
		req   TransitionRequest
		want  error
	}{
		{"adopter is forbidden", auth.Claims{UserID: "u-1", Role: auth.RoleUser}, TransitionRequest{Kind: KindAdoptionRequest, ID: "r-1", Status: "approved"}, apperr.ErrForbidden},
		{"unknown status", staff, TransitionRequest{Kind: KindAdoptionRequest, ID: "r-1", Status: "archived"}, apperr.ErrInvalidStatus},
		{"unknown status on missing entity", staff, TransitionRequest{Kind: KindAdoptionRequest, ID: "nope", Status: "archived"}, apperr.ErrInvalidStatus},
		{"missing entity", staff, TransitionRequest{Kind: KindAdoptionRequest, ID: "nope", Status: "approved"}, apperr.ErrNotFound},
		{"unknown kind", staff, TransitionRequest{Kind: "pet", ID: "r-1", Status: "approved"}, apperr.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.engine.Transition(ctx, tc.actor, tc.req)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestEngine_DispatchFailureDoesNotRollBack(t *testing.T) {
	f := newFixture(t)
	f.seedPendingRequest(t)
	f.notifier.err = errors.New("smtp down")

	if _, err := f.engine.Transition(context.Background(), staff, TransitionRequest{
		Kind: KindAdoptionRequest, ID: "r-1", Status: "approved",
	}); err != nil {
		t.Fatalf("transition must succeed even if dispatch fails, got %v", err)
	}

	req, _ := f.requests.GetByID(context.Background(), "r-1")
	if req.Status != adoptions.StatusApproved {
		t.Fatalf("expected approved, got %s", req.Status)
	}
}

func TestEngine_AnimalUpdateFailureRollsBackRequest(t *testing.T) {
	f := newFixture(t)
	f.seedPendingRequest(t)
	f.engine.animals = failingAnimals{Repository: f.animals}

	_, err := f.engine.Transition(context.Background(), staff, TransitionRequest{
		Kind: KindAdoptionRequest, ID: "r-1", Status: "approved",
	})
	if err == nil {
		t.Fatalf("expected error")
	}

	req, _ := f.requests.GetByID(context.Background(), "r-1")
	if req.Status != adoptions.StatusPending {
		t.Fatalf("request update must be rolled back, got %s", req.Status)
	}
	if len(f.notifier.events) != 0 {
		t.Fatalf("failed transition must not notify")
	}
}

func TestEngine_ApproveWithDeletedAnimalIsInvalid(t *testing.T) {
	f := newFixture(t)
	f.seedPendingRequest(t)
	_ = f.animals.Delete(context.Background(), "a-1")

	_, err := f.engine.Transition(context.Background(), staff, TransitionRequest{
		Kind: KindAdoptionRequest, ID: "r-1", Status: "approved",
	})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestEngine_AppointmentTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_ = f.appointments.Create(ctx, appointments.Appointment{ID: "ap-1", AdoptionRequestID: "r-1", Status: appointments.StatusPending})

	if _, err := f.engine.Transition(ctx, staff, TransitionRequest{Kind: KindAppointment, ID: "ap-1", Status: "completed"}); !errors.Is(err, apperr.ErrInvalidTransition) {
		t.Fatalf("pending -> completed must be invalid, got %v", err)
	}

	if _, err := f.engine.Transition(ctx, staff, TransitionRequest{Kind: KindAppointment, ID: "ap-1", Status: "confirmed"}); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	res, err := f.engine.Transition(ctx, staff, TransitionRequest{Kind: KindAppointment, ID: "ap-1", Status: "cancelled", Reason: "adopter unavailable"})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if res.Appointment.Reason == nil || *res.Appointment.Reason != "adopter unavailable" {
		t.Fatalf("expected cancel reason, got %+v", res.Appointment.Reason)
	}
	if len(f.notifier.events) != 0 {
		t.Fatalf("appointment transitions do not notify")
	}

	if _, err := f.engine.Transition(ctx, staff, TransitionRequest{Kind: KindAppointment, ID: "ap-1", Status: "confirmed"}); !errors.Is(err, apperr.ErrInvalidTransition) {
		t.Fatalf("cancelled is terminal, got %v", err)
	}
}

func TestEngine_AbuseReportEventCarriesPhotos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_ = f.reports.Create(ctx, abusereports.Report{
		ID: "ar-1", UserID: "u-2", Status: abusereports.StatusPending,
		PhotoRefs: []string{"abuse_photo/1.jpg"}, VideoRefs: []string{},
	})

	if _, err := f.engine.Transition(ctx, staff, TransitionRequest{Kind: KindAbuseReport, ID: "ar-1", Status: "approved"}); err != nil {
		t.Fatalf("approve report: %v", err)
	}

	ev := f.notifier.events[0]
	if ev.Type != notifications.TypeAnimalAbuseStatusUpdated || ev.UserID != "u-2" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if len(ev.PhotoRefs) != 1 || ev.PhotoRefs[0] != "abuse_photo/1.jpg" {
		t.Fatalf("expected photo refs on event, got %+v", ev.PhotoRefs)
	}
}
