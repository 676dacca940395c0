package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"noahs-ark/internal/platform/apperr"
	"noahs-ark/internal/ports/realtime"

	goredis "github.com/redis/go-redis/v9"
)

// Prefijo de los canales en Redis; el resto es el canal lógico (user.<id>, chat.<id>).
const channelPrefix = "shelter:"

type Config struct {
	Addr     string
	Password string
	DB       int
}

func NewClient(cfg Config) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
}

func Ping(ctx context.Context, c *goredis.Client) error {
	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Publisher publica el mensaje completo (JSON) para que cualquier réplica lo reenvíe a sus sockets.
type Publisher struct {
	client *goredis.Client
}

func NewPublisher(client *goredis.Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) Publish(ctx context.Context, msg realtime.Message) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := p.client.Publish(ctx, channelPrefix+msg.Channel, b).Err(); err != nil {
		return fmt.Errorf("%w: redis publish: %v", apperr.ErrDependency, err)
	}
	return nil
}
