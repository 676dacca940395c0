package realtime

import (
	"context"
	"sync"
	"time"

	"noahs-ark/internal/platform/logger"
	"noahs-ark/internal/platform/metrics"
	"noahs-ark/internal/ports/realtime"
)

// AsyncPublisher desacopla la publicación del request: el llamador nunca espera al transporte
// y un fallo sólo queda en logs y métricas.
type AsyncPublisher struct {
	next    realtime.Publisher
	timeout time.Duration
	log     logger.Logger
	wg      sync.WaitGroup
}

func NewAsyncPublisher(next realtime.Publisher, timeout time.Duration, log logger.Logger) *AsyncPublisher {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &AsyncPublisher{next: next, timeout: timeout, log: log}
}

func (p *AsyncPublisher) Publish(_ context.Context, msg realtime.Message) error {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()

		if err := p.next.Publish(ctx, msg); err != nil {
			metrics.RealtimePublishFailures.WithLabelValues(msg.Event).Inc()
			p.log.Warn("realtime publish failed", map[string]any{
				"channel": msg.Channel,
				"event":   msg.Event,
				"error":   err,
			})
		}
	}()
	return nil
}

// Wait bloquea hasta que terminen las publicaciones en curso (shutdown y tests).
func (p *AsyncPublisher) Wait() {
	p.wg.Wait()
}
