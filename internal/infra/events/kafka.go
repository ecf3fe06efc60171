// Package events publishes order lifecycle events for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"storefront-core/internal/pkg/errs"
	"storefront-core/internal/usecase/shared"

	"github.com/segmentio/kafka-go"
)

var (
	ErrBufferFull = errs.Define("event buffer full", errs.ErrDependencyFailure)
	ErrClosed     = errs.Define("event publisher closed", errs.ErrDependencyFailure)
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher queues events in memory and writes them from a single
// goroutine. Publishing never waits on the broker; a full buffer drops the event.
type KafkaPublisher struct {
	w       messageWriter
	logger  *slog.Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	inbox  chan kafka.Message
	done   chan struct{}
}

func NewKafkaPublisher(brokers []string, topic string, buf int, logger *slog.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
	return newKafkaPublisher(w, buf, logger)
}

func newKafkaPublisher(w messageWriter, buf int, logger *slog.Logger) *KafkaPublisher {
	if buf <= 0 {
		buf = 256
	}
	p := &KafkaPublisher{
		w:       w,
		logger:  logger,
		timeout: 10 * time.Second,
		inbox:   make(chan kafka.Message, buf),
		done:    make(chan struct{}),
	}
	go p.loop()
	return p
}

var _ shared.EventPublisher = (*KafkaPublisher)(nil)

func (p *KafkaPublisher) PublishOrderStatusChanged(_ context.Context, evt shared.OrderStatusChanged) error {
	value, err := json.Marshal(evt)
	if err != nil {
		return errs.Wrap(err, "marshal order event")
	}
	msg := kafka.Message{
		Key:   []byte(evt.OrderID.String()),
		Value: value,
		Time:  evt.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("order.status_changed")},
		},
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.inbox <- msg:
		return nil
	default:
		return ErrBufferFull
	}
}

func (p *KafkaPublisher) loop() {
	defer close(p.done)
	for m := range p.inbox {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		if err := p.w.WriteMessages(ctx, m); err != nil {
			p.logger.Error("failed to write order event",
				slog.String("key", string(m.Key)),
				slog.String("error", err.Error()))
		}
		cancel()
	}
}

// Close stops accepting events, flushes the buffer and closes the writer.
func (p *KafkaPublisher) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.inbox)
	}
	p.mu.Unlock()

	select {
	case <-p.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return p.w.Close()
}

// NoopPublisher discards events.
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderStatusChanged(context.Context, shared.OrderStatusChanged) error {
	return nil
}
