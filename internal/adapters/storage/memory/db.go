package memory

import (
	"context"
	"maps"
	"sync"

	"noahs-ark/internal/domain/abusereports"
	"noahs-ark/internal/domain/adoptions"
	"noahs-ark/internal/domain/animals"
	"noahs-ark/internal/domain/appointments"
	"noahs-ark/internal/domain/chat"
	"noahs-ark/internal/domain/notifications"
	"noahs-ark/internal/domain/users"
)

// DB es el store en memoria para dev y tests: todas las tablas comparten un lock.
type DB struct {
	mu sync.RWMutex

	users         map[string]users.User
	animals       map[string]animals.Animal
	requests      map[string]adoptions.Request
	appointments  map[string]appointments.Appointment
	reports       map[string]abusereports.Report
	notifications map[string]notifications.Notification
	messages      []chat.Message

	// serializa transacciones (no hay locks por fila)
	txMu sync.Mutex
}

func NewDB() *DB {
	return &DB{
		users:         make(map[string]users.User),
		animals:       make(map[string]animals.Animal),
		requests:      make(map[string]adoptions.Request),
		appointments:  make(map[string]appointments.Appointment),
		reports:       make(map[string]abusereports.Report),
		notifications: make(map[string]notifications.Notification),
	}
}

type snapshot struct {
	users         map[string]users.User
	animals       map[string]animals.Animal
	requests      map[string]adoptions.Request
	appointments  map[string]appointments.Appointment
	reports       map[string]abusereports.Report
	notifications map[string]notifications.Notification
	messages      []chat.Message
}

func (db *DB) snapshot() snapshot {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return snapshot{
		users:         maps.Clone(db.users),
		animals:       maps.Clone(db.animals),
		requests:      maps.Clone(db.requests),
		appointments:  maps.Clone(db.appointments),
		reports:       maps.Clone(db.reports),
		notifications: maps.Clone(db.notifications),
		messages:      append([]chat.Message(nil), db.messages...),
	}
}

func (db *DB) restore(s snapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.users = s.users
	db.animals = s.animals
	db.requests = s.requests
	db.appointments = s.appointments
	db.reports = s.reports
	db.notifications = s.notifications
	db.messages = s.messages
}

type txKey struct{}

// lockWrite toma el lock de escritura. Fuera de una transacción espera además a txMu:
// así un rollback nunca pisa una escritura hecha mientras la transacción estaba abierta.
func (db *DB) lockWrite(ctx context.Context) (unlock func()) {
	if ctx.Value(txKey{}) != nil {
		db.mu.Lock()
		return db.mu.Unlock
	}
	db.txMu.Lock()
	db.mu.Lock()
	return func() {
		db.mu.Unlock()
		db.txMu.Unlock()
	}
}

// TxRunner: una transacción a la vez; si fn falla se restaura la foto tomada al inicio.
type TxRunner struct {
	db *DB
}

func NewTxRunner(db *DB) *TxRunner {
	return &TxRunner{db: db}
}

func (t *TxRunner) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	// anidada: se une a la transacción externa
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	t.db.txMu.Lock()
	defer t.db.txMu.Unlock()

	snap := t.db.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		t.db.restore(snap)
		return err
	}
	return nil
}
