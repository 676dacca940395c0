package chat

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"noahs-ark/internal/domain/users"
	"noahs-ark/internal/platform/apperr"
	"noahs-ark/internal/platform/logger"
	"noahs-ark/internal/ports/auth"
	"noahs-ark/internal/ports/realtime"
)

// -------------------------
// Fakes
// -------------------------

type testRepo struct {
	msgs []Message
}

func (r *testRepo) Create(_ context.Context, m Message) error {
	r.msgs = append(r.msgs, m)
	return nil
}

func between(m Message, a, b string) bool {
	return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
}

func (r *testRepo) Thread(_ context.Context, a, b string) ([]Message, error) {
	out := make([]Message, 0)
	for _, m := range r.msgs {
		if between(m, a, b) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *testRepo) Last(ctx context.Context, a, b string) (Message, error) {
	th, _ := r.Thread(ctx, a, b)
	if len(th) == 0 {
		return Message{}, apperr.ErrNotFound
	}
	return th[len(th)-1], nil
}

func (r *testRepo) MarkRead(_ context.Context, from, to string) (int, error) {
	n := 0
	for i := range r.msgs {
		if r.msgs[i].SenderID == from && r.msgs[i].ReceiverID == to && r.msgs[i].Unread {
			r.msgs[i].Unread = false
			n++
		}
	}
	return n, nil
}

func (r *testRepo) CountUnread(_ context.Context, from, to string) (int, error) {
	n := 0
	for _, m := range r.msgs {
		if m.SenderID == from && m.ReceiverID == to && m.Unread {
			n++
		}
	}
	return n, nil
}

func (r *testRepo) CountUnreadTotal(_ context.Context, to string) (int, error) {
	n := 0
	for _, m := range r.msgs {
		if m.ReceiverID == to && m.Unread {
			n++
		}
	}
	return n, nil
}

type testDirectory map[string]users.User

func (d testDirectory) GetByID(_ context.Context, id string) (users.User, error) {
	u, ok := d[id]
	if !ok {
		return users.User{}, apperr.ErrNotFound
	}
	return u, nil
}

func (d testDirectory) List(context.Context) ([]users.User, error) {
	out := make([]users.User, 0, len(d))
	for _, u := range d {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type testPublisher struct {
	msgs []realtime.Message
}

func (p *testPublisher) Publish(_ context.Context, m realtime.Message) error {
	p.msgs = append(p.msgs, m)
	return nil
}

var (
	adopter  = auth.Claims{UserID: "u-1", Role: auth.RoleUser}
	adopter2 = auth.Claims{UserID: "u-2", Role: auth.RoleUser}
	staffer  = auth.Claims{UserID: "s-1", Role: auth.RoleStaff}
)

type fixture struct {
	svc  *Service
	repo *testRepo
	pub  *testPublisher
	now  time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	recent := base.Add(-30 * time.Second)
	dir := testDirectory{
		"u-1": {ID: "u-1", Name: "Ana", Role: auth.RoleUser},
		"u-2": {ID: "u-2", Name: "Beto", Role: auth.RoleUser},
		"s-1": {ID: "s-1", Name: "Sara", Role: auth.RoleStaff, LastActivityAt: &recent},
		"a-1": {ID: "a-1", Name: "Root", Role: auth.RoleAdmin},
	}
	f := &fixture{repo: &testRepo{}, pub: &testPublisher{}, now: base}
	f.svc = NewService(f.repo, dir, Options{Publisher: f.pub, Log: logger.NewTest(t)})
	f.svc.now = func() time.Time {
		f.now = f.now.Add(time.Second)
		return f.now
	}
	return f
}

// -------------------------
// Tests
// -------------------------

func TestService_Send_RequiresBodyOrAttachment(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Send(context.Background(), adopter, SendInput{ReceiverID: "s-1", Body: "   "})
	if !errors.Is(err, apperr.ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if len(f.repo.msgs) != 0 || len(f.pub.msgs) != 0 {
		t.Fatalf("nothing must be stored or published")
	}
}

func TestService_Send_ClassifiesAttachment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m, err := f.svc.Send(ctx, adopter, SendInput{ReceiverID: "s-1", AttachmentRef: "chat/abc.PNG"})
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if m.ImageRef != "chat/abc.PNG" || m.VideoRef != "" || m.Preview() != "[image]" {
		t.Fatalf("expected image attachment, got %+v", m)
	}

	m, err = f.svc.Send(ctx, adopter, SendInput{ReceiverID: "s-1", AttachmentRef: "chat/clip.mov"})
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if m.VideoRef != "chat/clip.mov" {
		t.Fatalf("expected video attachment, got %+v", m)
	}

	if _, err := f.svc.Send(ctx, adopter, SendInput{ReceiverID: "s-1", AttachmentRef: "chat/doc.pdf"}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error for pdf, got %v", err)
	}
}

func TestService_Send_PublishesOnReceiverChannel(t *testing.T) {
	f := newFixture(t)

	m, err := f.svc.Send(context.Background(), adopter, SendInput{ReceiverID: "s-1", Body: "hola"})
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if !m.Unread || m.Seen {
		t.Fatalf("new message must be unread and unseen, got %+v", m)
	}
	if len(f.pub.msgs) != 1 || f.pub.msgs[0].Channel != "chat.s-1" || f.pub.msgs[0].Event != EventMessageSent {
		t.Fatalf("unexpected publish: %+v", f.pub.msgs)
	}
}

func TestService_Send_AdopterCannotMessageAdopter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Send(ctx, adopter, SendInput{ReceiverID: "u-2", Body: "hi"}); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := f.svc.Send(ctx, staffer, SendInput{ReceiverID: "u-2", Body: "hi"}); err != nil {
		t.Fatalf("staff can message anyone, got %v", err)
	}
	if _, err := f.svc.Send(ctx, adopter, SendInput{ReceiverID: "ghost", Body: "hi"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for unknown receiver, got %v", err)
	}
	if _, err := f.svc.Send(ctx, adopter, SendInput{ReceiverID: "u-1", Body: "me"}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error for self message, got %v", err)
	}
}

func TestService_FetchThread_DoesNotMarkRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _ = f.svc.Send(ctx, staffer, SendInput{ReceiverID: "u-1", Body: "first"})
	_, _ = f.svc.Send(ctx, adopter, SendInput{ReceiverID: "s-1", Body: "second"})
	_, _ = f.svc.Send(ctx, staffer, SendInput{ReceiverID: "u-1", Body: "third"})

	thread, err := f.svc.FetchThread(ctx, adopter, "s-1")
	if err != nil {
		t.Fatalf("FetchThread error: %v", err)
	}
	if len(thread) != 3 || thread[0].Body != "first" || thread[2].Body != "third" {
		t.Fatalf("unexpected thread: %+v", thread)
	}
	if n, _ := f.svc.UnreadCount(ctx, adopter); n != 2 {
		t.Fatalf("fetch must not change unread, got %d", n)
	}

	changed, err := f.svc.MarkThreadRead(ctx, adopter, "s-1")
	if err != nil || changed != 2 {
		t.Fatalf("MarkThreadRead = %d, %v", changed, err)
	}
	if n, _ := f.svc.UnreadCount(ctx, adopter); n != 0 {
		t.Fatalf("expected 0 unread after mark, got %d", n)
	}
	// El mensaje del adoptante sigue sin leer para el staff.
	if n, _ := f.svc.UnreadCount(ctx, staffer); n != 1 {
		t.Fatalf("staff unread must stay 1, got %d", n)
	}

	empty, err := f.svc.FetchThread(ctx, adopter, "a-1")
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty thread must be empty, got %v %v", empty, err)
	}
}

func TestService_ListContacts_ScopesAndOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	contacts, err := f.svc.ListContacts(ctx, adopter)
	if err != nil {
		t.Fatalf("ListContacts error: %v", err)
	}
	if len(contacts) != 2 {
		t.Fatalf("adopter must only see staff/admin, got %d contacts", len(contacts))
	}
	for _, c := range contacts {
		if !c.User.Role.IsStaff() {
			t.Fatalf("adopter sees non-staff contact %s", c.User.ID)
		}
		if c.Preview != "No messages yet" || c.LastMessage != nil {
			t.Fatalf("expected empty preview, got %+v", c)
		}
	}

	_, _ = f.svc.Send(ctx, adopter2, SendInput{ReceiverID: "s-1", Body: "older"})
	_, _ = f.svc.Send(ctx, adopter, SendInput{ReceiverID: "s-1", Body: "newer"})
	_, _ = f.svc.Send(ctx, adopter, SendInput{ReceiverID: "s-1", Body: "newest"})

	contacts, err = f.svc.ListContacts(ctx, staffer)
	if err != nil {
		t.Fatalf("ListContacts error: %v", err)
	}
	if len(contacts) != 3 {
		t.Fatalf("staff must see everyone else, got %d", len(contacts))
	}
	if contacts[0].User.ID != "u-1" || contacts[1].User.ID != "u-2" || contacts[2].User.ID != "a-1" {
		t.Fatalf("unexpected order: %s, %s, %s", contacts[0].User.ID, contacts[1].User.ID, contacts[2].User.ID)
	}
	if contacts[0].Preview != "newest" || contacts[0].UnreadCount != 2 {
		t.Fatalf("unexpected first contact: %+v", contacts[0])
	}
	if contacts[2].Preview != "No messages yet" {
		t.Fatalf("contact without messages goes last with placeholder, got %+v", contacts[2])
	}
}

func TestService_ListContacts_Online(t *testing.T) {
	f := newFixture(t)

	contacts, err := f.svc.ListContacts(context.Background(), adopter)
	if err != nil {
		t.Fatalf("ListContacts error: %v", err)
	}
	online := map[string]bool{}
	for _, c := range contacts {
		online[c.User.ID] = c.Online
	}
	if !online["s-1"] || online["a-1"] {
		t.Fatalf("unexpected presence: %v", online)
	}
}
