package workflow

import (
	"context"
	"strings"
	"time"

	"noahs-ark/internal/domain/abusereports"
	"noahs-ark/internal/domain/adoptions"
	"noahs-ark/internal/domain/animals"
	"noahs-ark/internal/domain/appointments"
	"noahs-ark/internal/domain/notifications"
	"noahs-ark/internal/platform/apperr"
	"noahs-ark/internal/platform/logger"
	"noahs-ark/internal/platform/metrics"
	"noahs-ark/internal/ports/auth"
	"noahs-ark/internal/ports/store"
)

type Notifier interface {
	Dispatch(ctx context.Context, ev notifications.Event) (notifications.Notification, error)
}

// Engine aplica las transiciones de estado. Cada una corre en una transacción
// (lectura con lock + escritura + efectos sobre el animal) y el evento se
// despacha recién después del commit.
type Engine struct {
	requests     adoptions.Repository
	appointments appointments.Repository
	reports      abusereports.Repository
	animals      animals.Repository
	notifier     Notifier
	tx           store.TxRunner
	log          logger.Logger
	now          func() time.Time

	rules map[Kind]rule
}

type Deps struct {
	Requests     adoptions.Repository
	Appointments appointments.Repository
	Reports      abusereports.Repository
	Animals      animals.Repository
	Notifier     Notifier
	Tx           store.TxRunner
	Log          logger.Logger
}

func NewEngine(d Deps) *Engine {
	if d.Tx == nil {
		d.Tx = store.NoTx{}
	}
	if d.Log == nil {
		d.Log = logger.NewNop()
	}
	return &Engine{
		requests:     d.Requests,
		appointments: d.Appointments,
		reports:      d.Reports,
		animals:      d.Animals,
		notifier:     d.Notifier,
		tx:           d.Tx,
		log:          d.Log.With(map[string]any{"component": "workflow"}),
		now:          time.Now,
		rules:        defaultRules(),
	}
}

// Transition valida el pedido contra la tabla del Kind y lo aplica.
// Orden de validación: permisos, estado válido, motivo, existencia, transición permitida.
func (e *Engine) Transition(ctx context.Context, actor auth.Claims, req TransitionRequest) (Result, error) {
	if strings.TrimSpace(actor.UserID) == "" || !actor.Role.IsStaff() {
		return Result{}, apperr.ErrForbidden
	}

	r, ok := e.rules[req.Kind]
	if !ok {
		return Result{}, apperr.Invalid("kind", "unknown entity kind")
	}

	req.ID = strings.TrimSpace(req.ID)
	req.Status = strings.TrimSpace(req.Status)
	if req.ID == "" {
		return Result{}, apperr.ErrNotFound
	}
	if !r.valid(req.Status) {
		return Result{}, apperr.ErrInvalidStatus
	}
	if req.Status == statusRejected && strings.TrimSpace(req.Reason) == "" {
		return Result{}, apperr.ErrMissingReason
	}

	var (
		res Result
		ev  *notifications.Event
	)
	err := e.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		res, ev, err = r.apply(ctx, e, req)
		return err
	})
	if err != nil {
		return Result{}, err
	}

	metrics.WorkflowTransitions.WithLabelValues(string(req.Kind), res.Status).Inc()
	e.log.Info("status transition", map[string]any{
		"kind":     req.Kind,
		"id":       res.ID,
		"status":   res.Status,
		"actor_id": actor.UserID,
	})

	if ev != nil {
		e.dispatch(ctx, *ev, res)
	}
	return res, nil
}

// dispatch: la transición ya está commiteada; un fallo acá se loguea y nada más.
func (e *Engine) dispatch(ctx context.Context, ev notifications.Event, res Result) {
	if e.notifier == nil {
		return
	}
	if _, err := e.notifier.Dispatch(ctx, ev); err != nil {
		e.log.Error("dispatch notification failed", map[string]any{
			"kind":    res.Kind,
			"id":      res.ID,
			"user_id": ev.UserID,
			"error":   err,
		})
	}
}
