package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"storefront-core/internal/pkg/errs"
	"storefront-core/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	gate   chan struct{}
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.gate != nil {
		<-w.gate
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestKafkaPublisher_FlushesOnClose(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, 8, quiet)

	evt := shared.OrderStatusChanged{
		OrderID:    uuid.New(),
		OwnerID:    uuid.New(),
		From:       "pending",
		To:         "shipped",
		Total:      125000,
		OccurredAt: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
	}
	require.NoError(t, p.PublishOrderStatusChanged(context.Background(), evt))
	require.NoError(t, p.Close(context.Background()))

	require.Len(t, w.msgs, 1)
	assert.True(t, w.closed)
	assert.Equal(t, evt.OrderID.String(), string(w.msgs[0].Key))

	var decoded shared.OrderStatusChanged
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, evt, decoded)

	err := p.PublishOrderStatusChanged(context.Background(), evt)
	assert.True(t, errs.Is(err, ErrClosed))
}

func TestKafkaPublisher_DropsWhenBufferFull(t *testing.T) {
	w := &fakeWriter{gate: make(chan struct{})}
	p := newKafkaPublisher(w, 1, quiet)
	evt := shared.OrderStatusChanged{OrderID: uuid.New()}

	// first event is taken by the writer goroutine and blocks on the gate
	require.NoError(t, p.PublishOrderStatusChanged(context.Background(), evt))
	require.Eventually(t, func() bool { return len(p.inbox) == 0 }, time.Second, time.Millisecond)
	require.NoError(t, p.PublishOrderStatusChanged(context.Background(), evt))

	err := p.PublishOrderStatusChanged(context.Background(), evt)
	assert.True(t, errs.Is(err, ErrBufferFull))
	assert.True(t, errs.Is(err, errs.ErrDependencyFailure))

	close(w.gate)
	require.NoError(t, p.Close(context.Background()))
	assert.Len(t, w.msgs, 2)
}

func TestKafkaPublisher_WriteErrorsAreLoggedNotReturned(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker unavailable")}
	p := newKafkaPublisher(w, 4, quiet)

	require.NoError(t, p.PublishOrderStatusChanged(context.Background(), shared.OrderStatusChanged{OrderID: uuid.New()}))
	require.NoError(t, p.Close(context.Background()))
	assert.Len(t, w.msgs, 1)
}
