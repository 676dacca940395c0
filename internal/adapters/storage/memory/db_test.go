package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"noahs-ark/internal/domain/animals"
	"noahs-ark/internal/domain/chat"
	"noahs-ark/internal/domain/notifications"
	"noahs-ark/internal/platform/apperr"
)

func TestTxRunner_RollbackRestoresState(t *testing.T) {
	db := NewDB()
	repo := NewAnimalRepo(db)
	ctx := context.Background()

	if err := repo.Create(ctx, animals.Animal{ID: "a1", Name: "Luna"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	boom := errors.New("boom")
	err := NewTxRunner(db).InTx(ctx, func(ctx context.Context) error {
		a, err := repo.GetForUpdate(ctx, "a1")
		if err != nil {
			return err
		}
		a.IsTemporarilyAdopted = true
		if err := repo.Update(ctx, a); err != nil {
			return err
		}
		if err := repo.Create(ctx, animals.Animal{ID: "a2", Name: "Max"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	a, _ := repo.GetByID(ctx, "a1")
	if a.IsTemporarilyAdopted {
		t.Fatalf("update should have been rolled back")
	}
	if _, err := repo.GetByID(ctx, "a2"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("create should have been rolled back, got %v", err)
	}
}

func TestTxRunner_NestedJoinsOuter(t *testing.T) {
	db := NewDB()
	tx := NewTxRunner(db)

	// si la anidada tomara el lock otra vez, esto no terminaría
	err := tx.InTx(context.Background(), func(ctx context.Context) error {
		return tx.InTx(ctx, func(context.Context) error { return nil })
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTxRunner_RollbackKeepsWritesOutsideTx(t *testing.T) {
	db := NewDB()
	notes := NewNotificationRepo(db)
	ctx := context.Background()

	done := make(chan error, 1)
	boom := errors.New("boom")
	err := NewTxRunner(db).InTx(ctx, func(context.Context) error {
		go func() {
			done <- notes.Create(ctx, notifications.Notification{ID: "n1", UserID: "u1", Type: notifications.TypeAdoptionStatusUpdated})
		}()
		// la escritura externa espera a que termine la transacción
		select {
		case err := <-done:
			t.Errorf("write outside tx finished inside the tx window: %v", err)
		case <-time.After(50 * time.Millisecond):
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("create: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("write outside tx never completed")
	}
	list, err := notes.ListByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("notification written during the tx window was lost, got %d", len(list))
	}
}

func TestAnimalRepo_ListAvailableAndQuery(t *testing.T) {
	db := NewDB()
	repo := NewAnimalRepo(db)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	_ = repo.Create(ctx, animals.Animal{ID: "1", Name: "Max", Breed: "Labrador", CreatedAt: base})
	_ = repo.Create(ctx, animals.Animal{ID: "2", Name: "Luna", Breed: "Beagle", IsAdopted: true, CreatedAt: base.Add(time.Hour)})
	_ = repo.Create(ctx, animals.Animal{ID: "3", Name: "Rocky", Breed: "labrador mix", IsTemporarilyAdopted: true, CreatedAt: base.Add(2 * time.Hour)})
	_ = repo.Create(ctx, animals.Animal{ID: "4", Name: "Toby", Breed: "LABRADOR", CreatedAt: base.Add(3 * time.Hour)})

	out, err := repo.List(ctx, animals.ListFilter{AvailableOnly: true, Query: "labrador"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 2 || out[0].ID != "4" || out[1].ID != "1" {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestNotificationRepo_ScopedToOwner(t *testing.T) {
	db := NewDB()
	repo := NewNotificationRepo(db)
	ctx := context.Background()
	now := time.Now()

	_ = repo.Create(ctx, notifications.Notification{ID: "n1", UserID: "u1", CreatedAt: now})
	_ = repo.Create(ctx, notifications.Notification{ID: "n2", UserID: "u2", CreatedAt: now})

	if err := repo.MarkRead(ctx, "u1", "n2", now); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for foreign id, got %v", err)
	}
	if err := repo.Delete(ctx, "u1", "n2"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for foreign delete, got %v", err)
	}
	n, _ := repo.DeleteAll(ctx, "u1")
	if n != 1 {
		t.Fatalf("deleted = %d, want 1", n)
	}
	left, _ := repo.ListByUser(ctx, "u2")
	if len(left) != 1 {
		t.Fatalf("other user's notification must survive")
	}
}

func TestMessageRepo_ThreadOrderAndMarkRead(t *testing.T) {
	db := NewDB()
	repo := NewMessageRepo(db)
	ctx := context.Background()
	base := time.Now()

	_ = repo.Create(ctx, chat.Message{ID: "m1", SenderID: "s", ReceiverID: "u", Unread: true, CreatedAt: base})
	_ = repo.Create(ctx, chat.Message{ID: "m2", SenderID: "u", ReceiverID: "s", Unread: true, CreatedAt: base.Add(time.Second)})
	_ = repo.Create(ctx, chat.Message{ID: "m3", SenderID: "s", ReceiverID: "u", Unread: true, CreatedAt: base.Add(2 * time.Second)})
	_ = repo.Create(ctx, chat.Message{ID: "m4", SenderID: "x", ReceiverID: "u", Unread: true, CreatedAt: base.Add(3 * time.Second)})

	thread, _ := repo.Thread(ctx, "u", "s")
	if len(thread) != 3 || thread[0].ID != "m1" || thread[2].ID != "m3" {
		t.Fatalf("unexpected thread: %+v", thread)
	}

	n, _ := repo.MarkRead(ctx, "s", "u")
	if n != 2 {
		t.Fatalf("marked = %d, want 2", n)
	}
	if c, _ := repo.CountUnread(ctx, "u", "s"); c != 1 {
		t.Fatalf("u->s unread must be untouched, got %d", c)
	}
	if c, _ := repo.CountUnreadTotal(ctx, "u"); c != 1 {
		t.Fatalf("total unread for u = %d, want 1", c)
	}

	last, err := repo.Last(ctx, "s", "u")
	if err != nil || last.ID != "m3" {
		t.Fatalf("last = %+v, err = %v", last, err)
	}
	if _, err := repo.Last(ctx, "u", "nobody"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
