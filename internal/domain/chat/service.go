package chat

import (
	"context"
	"encoding/json"
	"errors"
	"path"
	"sort"
	"strings"
	"time"

	"noahs-ark/internal/domain/users"
	"noahs-ark/internal/platform/apperr"
	"noahs-ark/internal/platform/logger"
	"noahs-ark/internal/platform/metrics"
	"noahs-ark/internal/ports/auth"
	"noahs-ark/internal/ports/realtime"

	"github.com/google/uuid"
)

const (
	EventMessageSent = "message.sent"

	DefaultOnlineWindow = 2 * time.Minute
)

var (
	imageExt = map[string]struct{}{".jpeg": {}, ".jpg": {}, ".png": {}, ".gif": {}}
	videoExt = map[string]struct{}{".mp4": {}, ".avi": {}, ".mkv": {}, ".mov": {}}
)

// Directory es lo que chat necesita de users.
type Directory interface {
	GetByID(ctx context.Context, id string) (users.User, error)
	List(ctx context.Context) ([]users.User, error)
}

type Service struct {
	repo         Repository
	users        Directory
	publisher    realtime.Publisher // puede ser nil
	log          logger.Logger
	now          func() time.Time
	onlineWindow time.Duration
}

type Options struct {
	Publisher    realtime.Publisher
	Log          logger.Logger
	OnlineWindow time.Duration
}

func NewService(repo Repository, dir Directory, opts Options) *Service {
	if opts.Log == nil {
		opts.Log = logger.NewNop()
	}
	if opts.OnlineWindow <= 0 {
		opts.OnlineWindow = DefaultOnlineWindow
	}
	return &Service{
		repo:         repo,
		users:        dir,
		publisher:    opts.Publisher,
		log:          opts.Log.With(map[string]any{"component": "chat"}),
		now:          time.Now,
		onlineWindow: opts.OnlineWindow,
	}
}

type SendInput struct {
	ReceiverID string
	Body       string
	// Referencia devuelta por POST /uploads; el tipo se decide por extensión.
	AttachmentRef string
}

// Send guarda el mensaje (unread=true, seen=false) y lo publica en chat.<receiverId>.
func (s *Service) Send(ctx context.Context, actor auth.Claims, in SendInput) (Message, error) {
	senderID := strings.TrimSpace(actor.UserID)
	if senderID == "" {
		return Message{}, apperr.ErrForbidden
	}
	receiverID := strings.TrimSpace(in.ReceiverID)
	body := strings.TrimSpace(in.Body)
	attachment := strings.TrimSpace(in.AttachmentRef)

	if body == "" && attachment == "" {
		return Message{}, apperr.ErrEmptyMessage
	}
	if receiverID == "" || receiverID == senderID {
		return Message{}, apperr.Invalid("receiver_id", "must be another user")
	}

	m := Message{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       body,
		Unread:     true,
		Seen:       false,
		CreatedAt:  s.now().UTC(),
	}
	if attachment != "" {
		ext := strings.ToLower(path.Ext(attachment))
		if _, ok := imageExt[ext]; ok {
			m.ImageRef = attachment
		} else if _, ok := videoExt[ext]; ok {
			m.VideoRef = attachment
		} else {
			return Message{}, apperr.Invalid("attachment_ref", "must be jpeg, jpg, png, gif, mp4, avi, mkv or mov")
		}
	}

	receiver, err := s.users.GetByID(ctx, receiverID)
	if err != nil {
		return Message{}, err
	}
	if !canTalk(actor.Role, receiver.Role) {
		return Message{}, apperr.ErrForbidden
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return Message{}, err
	}
	metrics.ChatMessagesSent.Inc()

	s.publish(ctx, m)
	return m, nil
}

// BroadcastPayload es lo que recibe el suscriptor de chat.<receiverId>.
type BroadcastPayload struct {
	ID         string `json:"id"`
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
	Message    string `json:"message"`
	Timestamp  string `json:"timestamp"`
	ImagePath  string `json:"image_path,omitempty"`
	VideoPath  string `json:"video_path,omitempty"`
}

func (s *Service) publish(ctx context.Context, m Message) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(BroadcastPayload{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Message:    m.Body,
		Timestamp:  m.CreatedAt.Format(time.RFC3339),
		ImagePath:  m.ImageRef,
		VideoPath:  m.VideoRef,
	})
	if err != nil {
		s.log.Error("marshal message payload", map[string]any{"message_id": m.ID, "error": err})
		return
	}
	err = s.publisher.Publish(ctx, realtime.Message{
		Channel: realtime.ChatChannel(m.ReceiverID),
		Event:   EventMessageSent,
		Payload: payload,
	})
	if err != nil {
		metrics.RealtimePublishFailures.WithLabelValues(EventMessageSent).Inc()
		s.log.Warn("realtime publish failed", map[string]any{
			"message_id":  m.ID,
			"receiver_id": m.ReceiverID,
			"error":       err,
		})
	}
}

// FetchThread es una lectura pura; no toca los flags de leído.
func (s *Service) FetchThread(ctx context.Context, actor auth.Claims, contactID string) ([]Message, error) {
	userID := strings.TrimSpace(actor.UserID)
	contactID = strings.TrimSpace(contactID)
	if userID == "" {
		return nil, apperr.ErrForbidden
	}
	if contactID == "" {
		return nil, apperr.ErrNotFound
	}
	return s.repo.Thread(ctx, userID, contactID)
}

// MarkThreadRead marca como leídos los mensajes contact -> actor.
func (s *Service) MarkThreadRead(ctx context.Context, actor auth.Claims, contactID string) (int, error) {
	userID := strings.TrimSpace(actor.UserID)
	contactID = strings.TrimSpace(contactID)
	if userID == "" {
		return 0, apperr.ErrForbidden
	}
	if contactID == "" {
		return 0, apperr.ErrNotFound
	}
	return s.repo.MarkRead(ctx, contactID, userID)
}

func (s *Service) UnreadCount(ctx context.Context, actor auth.Claims) (int, error) {
	userID := strings.TrimSpace(actor.UserID)
	if userID == "" {
		return 0, apperr.ErrForbidden
	}
	return s.repo.CountUnreadTotal(ctx, userID)
}

// ListContacts: un user ve solo staff/admin; staff/admin ven a todos los demás.
// Orden: último mensaje más reciente primero; los contactos sin mensajes al final.
func (s *Service) ListContacts(ctx context.Context, actor auth.Claims) ([]Contact, error) {
	userID := strings.TrimSpace(actor.UserID)
	if userID == "" {
		return nil, apperr.ErrForbidden
	}

	all, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]Contact, 0, len(all))
	for _, u := range all {
		if u.ID == userID || !canTalk(actor.Role, u.Role) {
			continue
		}

		c := Contact{
			User:    u,
			Preview: noMessagesPreview,
			Online:  u.IsOnline(now, s.onlineWindow),
		}

		last, err := s.repo.Last(ctx, userID, u.ID)
		switch {
		case err == nil:
			c.LastMessage = &last
			c.Preview = last.Preview()
		case errors.Is(err, apperr.ErrNotFound):
		default:
			return nil, err
		}

		c.UnreadCount, err = s.repo.CountUnread(ctx, u.ID, userID)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		li, lj := out[i].LastMessage, out[j].LastMessage
		switch {
		case li == nil:
			return false
		case lj == nil:
			return true
		default:
			return li.CreatedAt.After(lj.CreatedAt)
		}
	})
	return out, nil
}

func canTalk(actor, other auth.Role) bool {
	if actor.IsStaff() {
		return true
	}
	return other.IsStaff()
}
