package workflow

import (
	"context"
	"errors"
	"strings"

	"noahs-ark/internal/domain/abusereports"
	"noahs-ark/internal/domain/adoptions"
	"noahs-ark/internal/domain/appointments"
	"noahs-ark/internal/domain/notifications"
	"noahs-ark/internal/platform/apperr"
)

const statusRejected = "rejected"

// rule es la entrada de la tabla de despacho por Kind.
type rule struct {
	// Estados válidos (enum cerrado).
	statuses []string
	// Transiciones permitidas desde cada estado. Los estados sin entrada son terminales.
	next map[string][]string
	// apply corre dentro de la transacción: lee con lock, valida, escribe y aplica efectos.
	// El Event (si hay) se despacha después del commit.
	apply func(ctx context.Context, e *Engine, req TransitionRequest) (Result, *notifications.Event, error)
}

func (r rule) valid(status string) bool {
	for _, s := range r.statuses {
		if s == status {
			return true
		}
	}
	return false
}

func (r rule) allowed(from, to string) bool {
	for _, s := range r.next[from] {
		if s == to {
			return true
		}
	}
	return false
}

func defaultRules() map[Kind]rule {
	return map[Kind]rule{
		KindAdoptionRequest: {
			statuses: []string{
				string(adoptions.StatusPending),
				string(adoptions.StatusApproved),
				string(adoptions.StatusRejected),
			},
			next: map[string][]string{
				string(adoptions.StatusPending): {
					string(adoptions.StatusPending),
					string(adoptions.StatusApproved),
					string(adoptions.StatusRejected),
				},
			},
			apply: applyAdoptionRequest,
		},
		KindAppointment: {
			statuses: []string{
				string(appointments.StatusPending),
				string(appointments.StatusConfirmed),
				string(appointments.StatusCancelled),
				string(appointments.StatusCompleted),
			},
			next: map[string][]string{
				string(appointments.StatusPending): {
					string(appointments.StatusPending),
					string(appointments.StatusConfirmed),
					string(appointments.StatusCancelled),
				},
				string(appointments.StatusConfirmed): {
					string(appointments.StatusConfirmed),
					string(appointments.StatusCompleted),
					string(appointments.StatusCancelled),
				},
			},
			apply: applyAppointment,
		},
		KindAbuseReport: {
			statuses: []string{
				string(abusereports.StatusPending),
				string(abusereports.StatusApproved),
				string(abusereports.StatusRejected),
			},
			next: map[string][]string{
				string(abusereports.StatusPending): {
					string(abusereports.StatusPending),
					string(abusereports.StatusApproved),
					string(abusereports.StatusRejected),
				},
			},
			apply: applyAbuseReport,
		},
	}
}

func applyAdoptionRequest(ctx context.Context, e *Engine, tr TransitionRequest) (Result, *notifications.Event, error) {
	req, err := e.requests.GetForUpdate(ctx, tr.ID)
	if err != nil {
		return Result{}, nil, err
	}
	if !e.rules[KindAdoptionRequest].allowed(string(req.Status), tr.Status) {
		return Result{}, nil, transitionErr(string(req.Status), tr.Status)
	}

	now := e.now().UTC()
	req.Status = adoptions.Status(tr.Status)
	req.RejectionReason = reasonFor(tr)
	req.UpdatedAt = now

	animal, err := e.animals.GetForUpdate(ctx, req.AnimalID)
	animalFound := err == nil
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return Result{}, nil, err
	}

	switch req.Status {
	case adoptions.StatusApproved:
		if !animalFound {
			return Result{}, nil, apperr.Invalid("animal_id", "animal no longer exists")
		}
		animal.IsAdopted = true
		animal.IsTemporarilyAdopted = false
	case adoptions.StatusRejected:
		animal.IsTemporarilyAdopted = false
	}

	if err := e.requests.Update(ctx, req); err != nil {
		return Result{}, nil, err
	}
	if animalFound && req.Status != adoptions.StatusPending {
		animal.UpdatedAt = now
		if err := e.animals.Update(ctx, animal); err != nil {
			return Result{}, nil, err
		}
	}

	ev := &notifications.Event{
		Type:   notifications.TypeAdoptionStatusUpdated,
		UserID: req.UserID,
		Status: string(req.Status),
	}
	if req.RejectionReason != nil {
		ev.Reason = *req.RejectionReason
	}
	if animalFound {
		ev.AnimalName = animal.Name
		ev.AnimalImage = animal.ImageRef
	}

	return Result{
		Kind:            KindAdoptionRequest,
		ID:              req.ID,
		Status:          string(req.Status),
		AdoptionRequest: &req,
	}, ev, nil
}

// Las citas no tocan el animal ni notifican al cambiar de estado.
func applyAppointment(ctx context.Context, e *Engine, tr TransitionRequest) (Result, *notifications.Event, error) {
	appt, err := e.appointments.GetForUpdate(ctx, tr.ID)
	if err != nil {
		return Result{}, nil, err
	}
	if !e.rules[KindAppointment].allowed(string(appt.Status), tr.Status) {
		return Result{}, nil, transitionErr(string(appt.Status), tr.Status)
	}

	appt.Status = appointments.Status(tr.Status)
	appt.Reason = nil
	if appt.Status == appointments.StatusCancelled {
		if r := strings.TrimSpace(tr.Reason); r != "" {
			appt.Reason = &r
		}
	}
	appt.UpdatedAt = e.now().UTC()

	if err := e.appointments.Update(ctx, appt); err != nil {
		return Result{}, nil, err
	}
	return Result{
		Kind:        KindAppointment,
		ID:          appt.ID,
		Status:      string(appt.Status),
		Appointment: &appt,
	}, nil, nil
}

func applyAbuseReport(ctx context.Context, e *Engine, tr TransitionRequest) (Result, *notifications.Event, error) {
	rep, err := e.reports.GetForUpdate(ctx, tr.ID)
	if err != nil {
		return Result{}, nil, err
	}
	if !e.rules[KindAbuseReport].allowed(string(rep.Status), tr.Status) {
		return Result{}, nil, transitionErr(string(rep.Status), tr.Status)
	}

	rep.Status = abusereports.Status(tr.Status)
	rep.RejectionReason = reasonFor(tr)
	rep.UpdatedAt = e.now().UTC()

	if err := e.reports.Update(ctx, rep); err != nil {
		return Result{}, nil, err
	}

	ev := &notifications.Event{
		Type:      notifications.TypeAnimalAbuseStatusUpdated,
		UserID:    rep.UserID,
		Status:    string(rep.Status),
		PhotoRefs: rep.PhotoRefs,
	}
	if rep.RejectionReason != nil {
		ev.Reason = *rep.RejectionReason
	}
	return Result{
		Kind:        KindAbuseReport,
		ID:          rep.ID,
		Status:      string(rep.Status),
		AbuseReport: &rep,
	}, ev, nil
}

// reasonFor: el motivo solo se guarda en un rechazo; cualquier otro estado lo limpia.
func reasonFor(tr TransitionRequest) *string {
	if tr.Status != statusRejected {
		return nil
	}
	r := strings.TrimSpace(tr.Reason)
	return &r
}

func transitionErr(from, to string) error {
	return &TransitionError{From: from, To: to}
}

// TransitionError: errors.Is(err, apperr.ErrInvalidTransition) es true.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return apperr.ErrInvalidTransition.Error() + ": " + e.From + " -> " + e.To
}

func (e *TransitionError) Is(target error) bool {
	return target == apperr.ErrInvalidTransition
}
