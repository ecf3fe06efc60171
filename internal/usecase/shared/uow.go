package shared

import (
	"context"
	"time"

	"storefront-core/internal/domain/credential"
	"storefront-core/internal/domain/order"
	"storefront-core/internal/domain/review"
	"storefront-core/internal/domain/user"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: Read-only transaction for multi-table consistent reads
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithDB: Single statements that rely on their own atomicity
	WithDB(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx hands out repositories bound to the current transaction or connection.
type Tx interface {
	Orders() OrderRepository
	Reviews() ReviewRepository
	Users() UserRepository
}

type OrderFilter struct {
	OwnerID *uuid.UUID
	Status  *order.Status
	Limit   int
	Offset  int
}

type OrderRepository interface {
	Create(ctx context.Context, o *order.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error)
	// Update is last-writer-wins.
	Update(ctx context.Context, o *order.Order) error
	// UpdateIfStatus persists o only while the stored status still equals expected.
	UpdateIfStatus(ctx context.Context, o *order.Order, expected order.Status) (bool, error)
	HasCompletedWithProduct(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	List(ctx context.Context, filter OrderFilter) ([]*order.Order, error)
}

type ReviewRepository interface {
	// Create fails with infra.KindDuplicateKey when (product, user) already has a review.
	Create(ctx context.Context, r *review.Review) error
	Update(ctx context.Context, r *review.Review) error
	FindByProductAndUser(ctx context.Context, productID, userID uuid.UUID) (*review.Review, error)
	ListByProduct(ctx context.Context, productID uuid.UUID, limit, offset int) ([]*review.Review, error)
}

// UserRepository guards every ticket transition on the digest that was read,
// so a newer ticket is never touched by a stale caller.
type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	SaveRotationTicket(ctx context.Context, userID uuid.UUID, t credential.Ticket) error
	ClearRotationTicketIfDigest(ctx context.Context, userID uuid.UUID, digest string) (bool, error)
	IncrementRotationAttemptsIfDigest(ctx context.Context, userID uuid.UUID, digest string) (bool, error)
	RotatePasswordIfDigest(ctx context.Context, userID uuid.UUID, digest, newHash string, now time.Time) (bool, error)
}
