package commands_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"storefront-core/internal/domain/order"
	"storefront-core/internal/domain/review"
	"storefront-core/internal/domain/user"
	"storefront-core/internal/infra/memstore"
	"storefront-core/internal/pkg/clock"
	"storefront-core/internal/usecase/shared"
	"storefront-core/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

// syncDispatcher delivers inline so tests can assert on the outbox.
type syncDispatcher struct {
	mu      sync.Mutex
	sent    []shared.Email
	failing error
}

func (d *syncDispatcher) Dispatch(email shared.Email, onFailure func(error)) {
	d.mu.Lock()
	failing := d.failing
	if failing == nil {
		d.sent = append(d.sent, email)
	}
	d.mu.Unlock()

	if failing != nil && onFailure != nil {
		onFailure(failing)
	}
}

func (d *syncDispatcher) outbox() []shared.Email {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]shared.Email(nil), d.sent...)
}

func (d *syncDispatcher) last(t *testing.T) shared.Email {
	t.Helper()
	box := d.outbox()
	require.NotEmpty(t, box, "no email was dispatched")
	return box[len(box)-1]
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.OrderStatusChanged
	err    error
}

func (p *recordingPublisher) PublishOrderStatusChanged(_ context.Context, evt shared.OrderStatusChanged) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}

// fakeStorage names uploads after their filename.
type fakeStorage struct {
	mu        sync.Mutex
	stored    map[string]bool
	deleted   []string
	failOn    string
	deleteErr error
}

func newFakeStorage(existing ...string) *fakeStorage {
	s := &fakeStorage{stored: make(map[string]bool)}
	for _, id := range existing {
		s.stored[id] = true
	}
	return s
}

func (s *fakeStorage) Upload(ctx context.Context, u shared.Upload) (review.Image, error) {
	if err := ctx.Err(); err != nil {
		return review.Image{}, err
	}
	if u.Filename == s.failOn {
		return review.Image{}, errors.New("bucket unavailable")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stored[u.Filename] = true
	return review.Image{ExternalID: u.Filename, URL: "/media/" + u.Filename}, nil
}

func (s *fakeStorage) Delete(_ context.Context, externalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, externalID)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.stored, externalID)
	return nil
}

func (s *fakeStorage) has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stored[id]
}

type maskingFilter struct{}

// Clean masks the word "darn" so filtering is observable.
func (maskingFilter) Clean(text string) string {
	return strings.ReplaceAll(text, "darn", "****")
}

func seedUser(t *testing.T, uow shared.UnitOfWork, b *builder.UserBuilder) *user.User {
	t.Helper()
	u := b.MustBuild()
	require.NoError(t, uow.WithDB(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		return tx.Users().Create(ctx, u)
	}))
	return u
}

func seedOrder(t *testing.T, uow shared.UnitOfWork, o *order.Order) *order.Order {
	t.Helper()
	require.NoError(t, uow.WithDB(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		return tx.Orders().Create(ctx, o)
	}))
	return o
}

func loadOrder(t *testing.T, uow shared.UnitOfWork, id uuid.UUID) *order.Order {
	t.Helper()
	var o *order.Order
	require.NoError(t, uow.WithDB(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		var err error
		o, err = tx.Orders().FindByID(ctx, id)
		return err
	}))
	return o
}

func loadUser(t *testing.T, uow shared.UnitOfWork, id uuid.UUID) *user.User {
	t.Helper()
	var u *user.User
	require.NoError(t, uow.WithDB(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		var err error
		u, err = tx.Users().FindByID(ctx, id)
		return err
	}))
	return u
}

func actorOf(u *user.User) *user.Actor {
	a := u.Actor()
	return &a
}

func newMemUoW() shared.UnitOfWork {
	return memstore.New().UnitOfWork()
}

func newClock() *clock.MockClock {
	return clock.NewMockClock(testNow)
}

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
