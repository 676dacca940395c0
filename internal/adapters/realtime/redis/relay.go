package redis

import (
	"context"
	"encoding/json"
	"strings"

	"noahs-ark/internal/platform/logger"
	"noahs-ark/internal/ports/realtime"

	goredis "github.com/redis/go-redis/v9"
)

// Relay escucha los canales del refugio en Redis y los entrega al publisher local (el hub).
type Relay struct {
	client *goredis.Client
	local  realtime.Publisher
	log    logger.Logger
}

func NewRelay(client *goredis.Client, local realtime.Publisher, log logger.Logger) *Relay {
	if log == nil {
		log = logger.NewNop()
	}
	return &Relay{client: client, local: local, log: log}
}

// Run bloquea hasta que ctx se cancele. ready (opcional) se cierra cuando la suscripción está activa.
func (r *Relay) Run(ctx context.Context, ready chan<- struct{}) error {
	sub := r.client.PSubscribe(ctx, channelPrefix+"*")
	defer sub.Close()

	// confirma la suscripción antes de empezar a consumir
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	if ready != nil {
		close(ready)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			r.forward(ctx, m)
		}
	}
}

func (r *Relay) forward(ctx context.Context, m *goredis.Message) {
	var msg realtime.Message
	if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
		r.log.Warn("realtime relay: invalid payload", map[string]any{
			"channel": m.Channel,
			"error":   err,
		})
		return
	}
	// el canal de Redis manda sobre el del payload
	msg.Channel = strings.TrimPrefix(m.Channel, channelPrefix)

	if err := r.local.Publish(ctx, msg); err != nil {
		r.log.Warn("realtime relay: local publish failed", map[string]any{
			"channel": msg.Channel,
			"event":   msg.Event,
			"error":   err,
		})
	}
}
