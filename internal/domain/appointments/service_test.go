package appointments_test

import (
	"context"
	"errors"
	"testing"

	mem "noahs-ark/internal/adapters/storage/memory"
	"noahs-ark/internal/domain/adoptions"
	"noahs-ark/internal/domain/animals"
	"noahs-ark/internal/domain/appointments"
	"noahs-ark/internal/domain/notifications"
	"noahs-ark/internal/domain/users"
	"noahs-ark/internal/platform/apperr"
	"noahs-ark/internal/platform/logger"
	"noahs-ark/internal/ports/auth"
)

var staff = auth.Claims{UserID: "s-1", Role: auth.RoleStaff}

type recordingNotifier struct {
	events []notifications.Event
	err    error
}

func (n *recordingNotifier) Dispatch(_ context.Context, ev notifications.Event) (notifications.Notification, error) {
	n.events = append(n.events, ev)
	return notifications.Notification{}, n.err
}

type fixture struct {
	svc      *appointments.Service
	repo     appointments.Repository
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := mem.NewDB()
	requests := mem.NewAdoptionRepo(db)
	animalRepo := mem.NewAnimalRepo(db)
	userRepo := mem.NewUserRepo(db)
	f := &fixture{repo: mem.NewAppointmentRepo(db), notifier: &recordingNotifier{}}
	f.svc = appointments.NewService(appointments.Deps{
		Repo:     f.repo,
		Requests: requests,
		Animals:  animalRepo,
		Profiles: userRepo,
		Notifier: f.notifier,
		Tx:       mem.NewTxRunner(db),
		Log:      logger.NewTest(t),
	})

	ctx := context.Background()
	_ = userRepo.Create(ctx, users.User{ID: "u-1", Name: "Ana", LastName: "Paz", Role: auth.RoleUser})
	_ = animalRepo.Create(ctx, animals.Animal{ID: "a-1", Name: "Luna", ImageRef: "animal/luna.png", IsAdopted: true})
	_ = requests.Create(ctx, adoptions.Request{ID: "r-approved", UserID: "u-1", AnimalID: "a-1", Status: adoptions.StatusApproved})
	_ = requests.Create(ctx, adoptions.Request{ID: "r-pending", UserID: "u-1", AnimalID: "a-1", Status: adoptions.StatusPending})
	return f
}

func TestService_Schedule_NotifiesAdopter(t *testing.T) {
	f := newFixture(t)

	appt, err := f.svc.Schedule(context.Background(), staff, appointments.ScheduleInput{
		AdoptionRequestID: "r-approved", Date: "2999-01-15", Time: "10:30", Notes: " bring ID ",
	})
	if err != nil {
		t.Fatalf("Schedule error: %v", err)
	}
	if appt.Status != appointments.StatusPending || appt.Notes != "bring ID" || appt.Date.Format("2006-01-02") != "2999-01-15" {
		t.Fatalf("unexpected appointment: %+v", appt)
	}

	if len(f.notifier.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(f.notifier.events))
	}
	ev := f.notifier.events[0]
	if ev.Type != notifications.TypeAdoptionAppointmentScheduled || ev.UserID != "u-1" || ev.AnimalName != "Luna" || ev.AppointmentTime != "10:30" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestService_Schedule_OnlyApprovedRequests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Schedule(ctx, staff, appointments.ScheduleInput{AdoptionRequestID: "r-pending", Date: "2999-01-15", Time: "10:30"}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error for pending request, got %v", err)
	}
	if _, err := f.svc.Schedule(ctx, staff, appointments.ScheduleInput{AdoptionRequestID: "nope", Date: "2999-01-15", Time: "10:30"}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error for missing request, got %v", err)
	}
	if len(f.notifier.events) != 0 {
		t.Fatalf("no event expected")
	}
}

func TestService_Schedule_RejectsSecondActiveAppointment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := appointments.ScheduleInput{AdoptionRequestID: "r-approved", Date: "2999-01-15", Time: "10:30"}

	first, err := f.svc.Schedule(ctx, staff, in)
	if err != nil {
		t.Fatalf("first Schedule error: %v", err)
	}
	if _, err := f.svc.Schedule(ctx, staff, in); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// Una cita cancelada libera la solicitud.
	first.Status = appointments.StatusCancelled
	_ = f.repo.Update(ctx, first)
	if _, err := f.svc.Schedule(ctx, staff, in); err != nil {
		t.Fatalf("schedule after cancel: %v", err)
	}
}

func TestService_Schedule_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		actor auth.Claims
		in    appointments.ScheduleInput
		want  error
	}{
		{"adopter", auth.Claims{UserID: "u-1", Role: auth.RoleUser}, appointments.ScheduleInput{AdoptionRequestID: "r-approved", Date: "2999-01-15", Time: "10:30"}, apperr.ErrForbidden},
		{"past date", staff, appointments.ScheduleInput{AdoptionRequestID: "r-approved", Date: "2000-01-01", Time: "10:30"}, apperr.ErrValidation},
		{"bad date", staff, appointments.ScheduleInput{AdoptionRequestID: "r-approved", Date: "15/01/2999", Time: "10:30"}, apperr.ErrValidation},
		{"bad time", staff, appointments.ScheduleInput{AdoptionRequestID: "r-approved", Date: "2999-01-15", Time: "25:00"}, apperr.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.Schedule(ctx, tc.actor, tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestService_Schedule_DispatchFailureKeepsAppointment(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("down")

	appt, err := f.svc.Schedule(context.Background(), staff, appointments.ScheduleInput{AdoptionRequestID: "r-approved", Date: "2999-01-15", Time: "10:30"})
	if err != nil {
		t.Fatalf("Schedule error: %v", err)
	}
	if _, err := f.repo.GetByID(context.Background(), appt.ID); err != nil {
		t.Fatalf("appointment must be stored: %v", err)
	}
}

func TestService_Overview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ov, err := f.svc.Overview(ctx, staff)
	if err != nil {
		t.Fatalf("Overview error: %v", err)
	}
	if len(ov.Appointments) != 0 || len(ov.Unscheduled) != 1 || ov.Unscheduled[0].Request.ID != "r-approved" {
		t.Fatalf("unexpected overview: %+v", ov)
	}
	if ov.Unscheduled[0].Adopter.Name != "Ana Paz" || ov.Unscheduled[0].Animal.Name != "Luna" {
		t.Fatalf("unexpected parties: %+v", ov.Unscheduled[0])
	}

	if _, err := f.svc.Schedule(ctx, staff, appointments.ScheduleInput{AdoptionRequestID: "r-approved", Date: "2999-01-15", Time: "10:30"}); err != nil {
		t.Fatalf("Schedule error: %v", err)
	}
	ov, _ = f.svc.Overview(ctx, staff)
	if len(ov.Appointments) != 1 || len(ov.Unscheduled) != 0 {
		t.Fatalf("expected scheduled request to leave the unscheduled list, got %+v", ov)
	}

	mine, err := f.svc.ListMine(ctx, auth.Claims{UserID: "u-1", Role: auth.RoleUser})
	if err != nil || len(mine) != 1 {
		t.Fatalf("ListMine = %d, %v", len(mine), err)
	}
}
