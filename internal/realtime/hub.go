package realtime

import (
	"context"
	"sync"

	"noahs-ark/internal/platform/logger"
	"noahs-ark/internal/ports/realtime"
)

const defaultBuffer = 32

// Hub reparte mensajes a los suscriptores locales de cada canal.
// Publish nunca bloquea: si el buffer de un suscriptor está lleno, el mensaje se descarta para él.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*Subscription]struct{}
	buffer int
	log    logger.Logger
}

type Subscription struct {
	C <-chan realtime.Message

	ch       chan realtime.Message
	hub      *Hub
	channels []string
	once     sync.Once
}

func NewHub(buffer int, log logger.Logger) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Hub{
		subs:   make(map[string]map[*Subscription]struct{}),
		buffer: buffer,
		log:    log,
	}
}

func (h *Hub) Subscribe(channels ...string) *Subscription {
	ch := make(chan realtime.Message, h.buffer)
	s := &Subscription{C: ch, ch: ch, hub: h, channels: channels}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range channels {
		set, ok := h.subs[c]
		if !ok {
			set = make(map[*Subscription]struct{})
			h.subs[c] = set
		}
		set[s] = struct{}{}
	}
	return s
}

// Close da de baja la suscripción y cierra C. Idempotente.
func (s *Subscription) Close() {
	s.once.Do(func() {
		h := s.hub
		h.mu.Lock()
		for _, c := range s.channels {
			if set, ok := h.subs[c]; ok {
				delete(set, s)
				if len(set) == 0 {
					delete(h.subs, c)
				}
			}
		}
		close(s.ch)
		h.mu.Unlock()
	})
}

func (h *Hub) Publish(_ context.Context, msg realtime.Message) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for s := range h.subs[msg.Channel] {
		select {
		case s.ch <- msg:
		default:
			h.log.Warn("realtime subscriber buffer full, message dropped", map[string]any{
				"channel": msg.Channel,
				"event":   msg.Event,
			})
		}
	}
	return nil
}

// Subscribers devuelve cuántos suscriptores locales tiene el canal.
func (h *Hub) Subscribers(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[channel])
}
