package animals_test

import (
	"context"
	"errors"
	"testing"
	"time"

	mem "noahs-ark/internal/adapters/storage/memory"
	"noahs-ark/internal/domain/animals"
	"noahs-ark/internal/platform/apperr"
	"noahs-ark/internal/platform/logger"
	"noahs-ark/internal/ports/tracking"
)

type fakeTracker struct {
	registered []tracking.Device
	updated    map[string]tracking.Device
	pos        tracking.Position
	err        error
	posErr     error
}

func (f *fakeTracker) Register(_ context.Context, d tracking.Device) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.registered = append(f.registered, d)
	return "77", nil
}

func (f *fakeTracker) Update(_ context.Context, ref string, d tracking.Device) error {
	if f.err != nil {
		return f.err
	}
	if f.updated == nil {
		f.updated = map[string]tracking.Device{}
	}
	f.updated[ref] = d
	return nil
}

func (f *fakeTracker) LatestPosition(_ context.Context, ref string) (tracking.Position, error) {
	if f.posErr != nil {
		return tracking.Position{}, f.posErr
	}
	p := f.pos
	p.DeviceRef = ref
	return p, nil
}

func profile() animals.ProfileInput {
	return animals.ProfileInput{
		Name: "Luna", Age: 2, Species: "dog", Breed: "mixed", Color: "brown",
		Gender: "female", Description: "calm", DeviceID: "collar-1",
	}
}

func newService(t *testing.T, tr tracking.DeviceTracker) (*animals.Service, animals.Repository) {
	t.Helper()
	repo := mem.NewAnimalRepo(mem.NewDB())
	return animals.NewService(repo, tr, logger.NewTest(t)), repo
}

func TestService_Create_RegistersDeviceFirst(t *testing.T) {
	tr := &fakeTracker{}
	svc, _ := newService(t, tr)

	a, err := svc.Create(context.Background(), profile())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if a.TrackingRef != "77" || a.DeviceID != "collar-1" {
		t.Fatalf("unexpected tracking fields: %+v", a)
	}
	if len(tr.registered) != 1 || tr.registered[0].UniqueID != "collar-1" || tr.registered[0].Name != "Luna" {
		t.Fatalf("unexpected registration: %+v", tr.registered)
	}
	if !a.Available() {
		t.Fatalf("new animal must be available")
	}
}

func TestService_Create_TrackerFailureStoresNothing(t *testing.T) {
	tr := &fakeTracker{err: errors.New("traccar down")}
	svc, repo := newService(t, tr)

	if _, err := svc.Create(context.Background(), profile()); !errors.Is(err, apperr.ErrDependency) {
		t.Fatalf("expected ErrDependency, got %v", err)
	}
	list, _ := repo.List(context.Background(), animals.ListFilter{})
	if len(list) != 0 {
		t.Fatalf("profile must not be stored, got %d", len(list))
	}
}

func TestService_Create_WithoutTrackerKeepsDeviceID(t *testing.T) {
	svc, _ := newService(t, nil)

	a, err := svc.Create(context.Background(), profile())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if a.DeviceID != "collar-1" || a.TrackingRef != "" {
		t.Fatalf("unexpected tracking fields: %+v", a)
	}

	if _, err := svc.Location(context.Background(), a.ID); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("location without tracker must be invalid, got %v", err)
	}
}

func TestService_Create_Validation(t *testing.T) {
	svc, _ := newService(t, nil)

	in := profile()
	in.Name = "  "
	in.Age = -1
	_, err := svc.Create(context.Background(), in)
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := ve.Fields["name"]; !ok {
		t.Fatalf("expected name error in %v", ve.Fields)
	}
	if _, ok := ve.Fields["age"]; !ok {
		t.Fatalf("expected age error in %v", ve.Fields)
	}
}

func TestService_Update_ChangedDeviceUpdatesTracker(t *testing.T) {
	tr := &fakeTracker{}
	svc, _ := newService(t, tr)
	ctx := context.Background()

	a, err := svc.Create(ctx, profile())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	in := profile()
	in.DeviceID = "collar-2"
	in.ImageRef = ""
	updated, err := svc.Update(ctx, a.ID, in)
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.DeviceID != "collar-2" || tr.updated["77"].UniqueID != "collar-2" {
		t.Fatalf("tracker must see the new device, got %+v", tr.updated)
	}

	if _, err := svc.Update(ctx, "missing", profile()); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_Location(t *testing.T) {
	fix := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	tr := &fakeTracker{pos: tracking.Position{Latitude: -34.6, Longitude: -58.4, FixTime: fix}}
	svc, _ := newService(t, tr)
	ctx := context.Background()

	a, _ := svc.Create(ctx, profile())
	pos, err := svc.Location(ctx, a.ID)
	if err != nil {
		t.Fatalf("Location error: %v", err)
	}
	if pos.DeviceRef != "77" || pos.Latitude != -34.6 || !pos.FixTime.Equal(fix) {
		t.Fatalf("unexpected position: %+v", pos)
	}

	tr.posErr = tracking.ErrNoPosition
	if _, err := svc.Location(ctx, a.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("no position must map to not found, got %v", err)
	}

	tr.posErr = errors.New("timeout")
	if _, err := svc.Location(ctx, a.ID); !errors.Is(err, apperr.ErrDependency) {
		t.Fatalf("tracker failure must map to dependency error, got %v", err)
	}
}

func TestService_MarkAdoptedAndDelete(t *testing.T) {
	svc, _ := newService(t, nil)
	ctx := context.Background()

	a, _ := svc.Create(ctx, profile())
	adopted, err := svc.MarkAdopted(ctx, a.ID)
	if err != nil || !adopted.IsAdopted {
		t.Fatalf("MarkAdopted = %+v, %v", adopted, err)
	}
	if list, _ := svc.List(ctx, animals.ListFilter{AvailableOnly: true}); len(list) != 0 {
		t.Fatalf("adopted animal must not be listed as available")
	}

	if err := svc.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := svc.Get(ctx, a.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}
