// Package memstore is an in-process implementation of the persistence port.
// Writes apply immediately under the store lock and are undone when the
// surrounding unit of work fails, so concurrent units can observe each other's
// pending writes. Uniqueness of (product, user) reviews holds at all times.
package memstore

import (
	"bytes"
	"context"
	"slices"
	"sync"
	"time"

	"storefront-core/internal/domain/credential"
	"storefront-core/internal/domain/order"
	"storefront-core/internal/domain/review"
	"storefront-core/internal/domain/user"
	"storefront-core/internal/infra"
	"storefront-core/internal/usecase/shared"

	"github.com/google/uuid"
)

type reviewKey struct {
	productID uuid.UUID
	userID    uuid.UUID
}

type Store struct {
	mu         sync.Mutex
	orders     map[uuid.UUID]*order.Order
	reviews    map[uuid.UUID]*review.Review
	reviewKeys map[reviewKey]uuid.UUID
	users      map[uuid.UUID]*user.User
}

func New() *Store {
	return &Store{
		orders:     make(map[uuid.UUID]*order.Order),
		reviews:    make(map[uuid.UUID]*review.Review),
		reviewKeys: make(map[reviewKey]uuid.UUID),
		users:      make(map[uuid.UUID]*user.User),
	}
}

// UnitOfWork returns the store's shared.UnitOfWork.
func (s *Store) UnitOfWork() shared.UnitOfWork {
	return &memUoW{store: s}
}

type memUoW struct {
	store *Store
}

func (u *memUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	tx := &memTx{store: u.store, journal: &journal{}}
	if err := fn(ctx, tx); err != nil {
		tx.journal.rollback(&u.store.mu)
		return err
	}
	return nil
}

// WithinReadOnly discards anything fn wrote.
func (u *memUoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	tx := &memTx{store: u.store, journal: &journal{}}
	defer tx.journal.rollback(&u.store.mu)
	return fn(ctx, tx)
}

func (u *memUoW) WithDB(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, &memTx{store: u.store})
}

// journal records undo steps; a nil journal means autocommit.
type journal struct {
	undo []func()
}

func (j *journal) record(step func()) {
	if j != nil {
		j.undo = append(j.undo, step)
	}
}

func (j *journal) rollback(mu *sync.Mutex) {
	mu.Lock()
	defer mu.Unlock()
	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i]()
	}
	j.undo = nil
}

type memTx struct {
	store   *Store
	journal *journal
}

func (t *memTx) Orders() shared.OrderRepository   { return &orderRepo{tx: t} }
func (t *memTx) Reviews() shared.ReviewRepository { return &reviewRepo{tx: t} }
func (t *memTx) Users() shared.UserRepository     { return &userRepo{tx: t} }

// -----------------------------------------------------------------------------
// Orders
// -----------------------------------------------------------------------------

type orderRepo struct {
	tx *memTx
}

func cloneOrder(o *order.Order) *order.Order {
	return order.Reconstruct(
		o.ID(), o.OwnerID(), o.Items(), o.ShippingRegion(), o.ShippingFee(), o.TotalAmount(),
		o.Status(), clonePtr(o.CancellationReason()), clonePtr(o.CancelledAt()),
		o.CreatedAt(), o.UpdatedAt(),
	)
}

func (r *orderRepo) Create(_ context.Context, o *order.Order) error {
	s := r.tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[o.ID()]; ok {
		return infra.Duplicate("order already exists")
	}
	s.orders[o.ID()] = cloneOrder(o)
	id := o.ID()
	r.tx.journal.record(func() { delete(s.orders, id) })
	return nil
}

func (r *orderRepo) FindByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	s := r.tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, infra.NotFound("order not found")
	}
	return cloneOrder(o), nil
}

func (r *orderRepo) Update(_ context.Context, o *order.Order) error {
	s := r.tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.orders[o.ID()]
	if !ok {
		return infra.NotFound("order not found")
	}
	r.put(prev, o)
	return nil
}

func (r *orderRepo) UpdateIfStatus(_ context.Context, o *order.Order, expected order.Status) (bool, error) {
	s := r.tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.orders[o.ID()]
	if !ok || prev.Status() != expected {
		return false, nil
	}
	r.put(prev, o)
	return true, nil
}

// put must be called with the store lock held.
func (r *orderRepo) put(prev, next *order.Order) {
	s := r.tx.store
	s.orders[next.ID()] = cloneOrder(next)
	r.tx.journal.record(func() { s.orders[prev.ID()] = prev })
}

func (r *orderRepo) HasCompletedWithProduct(_ context.Context, userID, productID uuid.UUID) (bool, error) {
	s := r.tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.orders {
		if o.OwnedBy(userID) && o.Status() == order.StatusCompleted && o.ContainsProduct(productID) {
			return true, nil
		}
	}
	return false, nil
}

func (r *orderRepo) List(_ context.Context, filter shared.OrderFilter) ([]*order.Order, error) {
	s := r.tx.store
	s.mu.Lock()
	matched := make([]*order.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if filter.OwnerID != nil && o.OwnerID() != *filter.OwnerID {
			continue
		}
		if filter.Status != nil && o.Status() != *filter.Status {
			continue
		}
		matched = append(matched, cloneOrder(o))
	}
	s.mu.Unlock()

	slices.SortFunc(matched, func(a, b *order.Order) int {
		return newestFirst(a.CreatedAt(), b.CreatedAt(), a.ID(), b.ID())
	})
	return page(matched, filter.Limit, filter.Offset), nil
}

// -----------------------------------------------------------------------------
// Reviews
// -----------------------------------------------------------------------------

type reviewRepo struct {
	tx *memTx
}

func cloneReview(rv *review.Review) *review.Review {
	return review.Reconstruct(
		rv.ID(), rv.ProductID(), rv.UserID(), rv.Rating(), rv.Comment(), rv.Images(),
		rv.CreatedAt(), rv.UpdatedAt(),
	)
}

func (r *reviewRepo) Create(_ context.Context, rv *review.Review) error {
	s := r.tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	key := reviewKey{productID: rv.ProductID(), userID: rv.UserID()}
	if _, taken := s.reviewKeys[key]; taken {
		return infra.Duplicate("review already exists for product and user")
	}
	s.reviews[rv.ID()] = cloneReview(rv)
	s.reviewKeys[key] = rv.ID()
	id := rv.ID()
	r.tx.journal.record(func() {
		delete(s.reviews, id)
		delete(s.reviewKeys, key)
	})
	return nil
}

func (r *reviewRepo) Update(_ context.Context, rv *review.Review) error {
	s := r.tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.reviews[rv.ID()]
	if !ok {
		return infra.NotFound("review not found")
	}
	s.reviews[rv.ID()] = cloneReview(rv)
	r.tx.journal.record(func() { s.reviews[prev.ID()] = prev })
	return nil
}

func (r *reviewRepo) FindByProductAndUser(_ context.Context, productID, userID uuid.UUID) (*review.Review, error) {
	s := r.tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.reviewKeys[reviewKey{productID: productID, userID: userID}]
	if !ok {
		return nil, infra.NotFound("review not found")
	}
	return cloneReview(s.reviews[id]), nil
}

func (r *reviewRepo) ListByProduct(_ context.Context, productID uuid.UUID, limit, offset int) ([]*review.Review, error) {
	s := r.tx.store
	s.mu.Lock()
	var matched []*review.Review
	for _, rv := range s.reviews {
		if rv.ProductID() == productID {
			matched = append(matched, cloneReview(rv))
		}
	}
	s.mu.Unlock()

	slices.SortFunc(matched, func(a, b *review.Review) int {
		return newestFirst(a.CreatedAt(), b.CreatedAt(), a.ID(), b.ID())
	})
	return page(matched, limit, offset), nil
}

// -----------------------------------------------------------------------------
// Users
// -----------------------------------------------------------------------------

type userRepo struct {
	tx *memTx
}

func cloneUser(u *user.User, passwordHash string, ticket *credential.Ticket, updatedAt time.Time) *user.User {
	return user.Reconstruct(
		u.ID(), u.Email(), passwordHash, u.Role(), u.IsActive(), clonePtr(ticket),
		u.CreatedAt(), updatedAt,
	)
}

func (r *userRepo) Create(_ context.Context, u *user.User) error {
	s := r.tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.ID() == u.ID() || existing.Email() == u.Email() {
			return infra.Duplicate("user already exists")
		}
	}
	s.users[u.ID()] = cloneUser(u, u.PasswordHash(), u.RotationTicket(), u.UpdatedAt())
	id := u.ID()
	r.tx.journal.record(func() { delete(s.users, id) })
	return nil
}

func (r *userRepo) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	s := r.tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, infra.NotFound("user not found")
	}
	return cloneUser(u, u.PasswordHash(), u.RotationTicket(), u.UpdatedAt()), nil
}

func (r *userRepo) SaveRotationTicket(_ context.Context, userID uuid.UUID, t credential.Ticket) error {
	s := r.tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return infra.NotFound("user not found")
	}
	t.AttemptsUsed = 0
	r.replace(u, cloneUser(u, u.PasswordHash(), &t, u.UpdatedAt()))
	return nil
}

func (r *userRepo) ClearRotationTicketIfDigest(_ context.Context, userID uuid.UUID, digest string) (bool, error) {
	s := r.tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok || !holdsDigest(u, digest) {
		return false, nil
	}
	r.replace(u, cloneUser(u, u.PasswordHash(), nil, u.UpdatedAt()))
	return true, nil
}

func (r *userRepo) IncrementRotationAttemptsIfDigest(_ context.Context, userID uuid.UUID, digest string) (bool, error) {
	s := r.tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok || !holdsDigest(u, digest) || u.RotationTicket().Exhausted() {
		return false, nil
	}
	t := *u.RotationTicket()
	t.AttemptsUsed++
	r.replace(u, cloneUser(u, u.PasswordHash(), &t, u.UpdatedAt()))
	return true, nil
}

func (r *userRepo) RotatePasswordIfDigest(_ context.Context, userID uuid.UUID, digest, newHash string, now time.Time) (bool, error) {
	s := r.tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok || !holdsDigest(u, digest) || !u.RotationTicket().Live(now) {
		return false, nil
	}
	r.replace(u, cloneUser(u, newHash, nil, now))
	return true, nil
}

// replace must be called with the store lock held.
func (r *userRepo) replace(prev, next *user.User) {
	s := r.tx.store
	s.users[next.ID()] = next
	r.tx.journal.record(func() { s.users[prev.ID()] = prev })
}

func holdsDigest(u *user.User, digest string) bool {
	t := u.RotationTicket()
	return t != nil && t.CodeDigest == digest
}

// -----------------------------------------------------------------------------
// helpers
// -----------------------------------------------------------------------------

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func newestFirst(ta, tb time.Time, ia, ib uuid.UUID) int {
	if c := tb.Compare(ta); c != 0 {
		return c
	}
	return bytes.Compare(ib[:], ia[:])
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
