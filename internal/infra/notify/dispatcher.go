// Package notify delivers outbound email off the request path.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"storefront-core/internal/pkg/errs"
	"storefront-core/internal/usecase/shared"
)

var ErrDispatcherClosed = errs.Define("notification dispatcher closed", errs.ErrDependencyFailure)

// Dispatcher sends every email on its own goroutine with a bounded timeout.
// Wait drains in-flight sends during shutdown and refuses new ones.
type Dispatcher struct {
	mailer  shared.Mailer
	timeout time.Duration
	logger  *slog.Logger
	wg      sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func NewDispatcher(mailer shared.Mailer, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Dispatcher{mailer: mailer, timeout: timeout, logger: logger}
}

var _ shared.NotificationDispatcher = (*Dispatcher)(nil)

func (d *Dispatcher) Dispatch(email shared.Email, onFailure func(error)) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.Warn("email dropped after shutdown",
			slog.String("to", email.To),
			slog.String("subject", email.Subject))
		if onFailure != nil {
			onFailure(ErrDispatcherClosed)
		}
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.mailer.Send(ctx, email); err != nil {
			d.logger.Error("email delivery failed",
				slog.String("to", email.To),
				slog.String("subject", email.Subject),
				slog.String("error", err.Error()))
			if onFailure != nil {
				onFailure(err)
			}
		}
	}()
}

// Wait closes the dispatcher and blocks until in-flight sends finish or ctx ends.
func (d *Dispatcher) Wait(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
