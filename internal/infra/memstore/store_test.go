package memstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront-core/internal/domain/credential"
	"storefront-core/internal/domain/order"
	"storefront-core/internal/infra"
	"storefront-core/internal/infra/memstore"
	"storefront-core/internal/usecase/shared"
	"storefront-core/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithin_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	uow := memstore.New().UnitOfWork()
	o := builder.NewOrderBuilder().MustBuild()
	rv := builder.NewReviewBuilder().MustBuild()
	boom := errors.New("boom")

	err := uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		require.NoError(t, tx.Orders().Create(ctx, o))
		require.NoError(t, tx.Reviews().Create(ctx, rv))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_ = uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		_, ferr := tx.Orders().FindByID(ctx, o.ID())
		assert.True(t, infra.IsKind(ferr, infra.KindNotFound))
		_, ferr = tx.Reviews().FindByProductAndUser(ctx, rv.ProductID(), rv.UserID())
		assert.True(t, infra.IsKind(ferr, infra.KindNotFound))
		// the unique key was released as well
		assert.NoError(t, tx.Reviews().Create(ctx, rv))
		return nil
	})
}

func TestWithin_RestoresPreviousOrderState(t *testing.T) {
	ctx := context.Background()
	uow := memstore.New().UnitOfWork()
	o := builder.NewOrderBuilder().MustBuild()
	require.NoError(t, uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Orders().Create(ctx, o)
	}))

	_ = uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		loaded, _ := tx.Orders().FindByID(ctx, o.ID())
		require.NoError(t, loaded.Cancel(o.OwnerID(), "", time.Now()))
		applied, err := tx.Orders().UpdateIfStatus(ctx, loaded, order.StatusPending)
		require.NoError(t, err)
		require.True(t, applied)
		return errors.New("abort")
	})

	_ = uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		loaded, err := tx.Orders().FindByID(ctx, o.ID())
		require.NoError(t, err)
		assert.Equal(t, order.StatusPending, loaded.Status())
		assert.Nil(t, loaded.CancellationReason())
		return nil
	})
}

func TestReviews_UniquePerProductAndUser(t *testing.T) {
	ctx := context.Background()
	uow := memstore.New().UnitOfWork()
	productID, userID := uuid.New(), uuid.New()

	first := builder.NewReviewBuilder().WithProductID(productID).WithUserID(userID).MustBuild()
	second := builder.NewReviewBuilder().WithProductID(productID).WithUserID(userID).WithRating(1).MustBuild()

	_ = uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		require.NoError(t, tx.Reviews().Create(ctx, first))
		err := tx.Reviews().Create(ctx, second)
		assert.True(t, infra.IsKind(err, infra.KindDuplicateKey))
		return nil
	})
}

func TestOrders_UpdateIfStatusRejectsStaleExpectation(t *testing.T) {
	ctx := context.Background()
	uow := memstore.New().UnitOfWork()
	o := builder.NewOrderBuilder().AsDelivered().MustBuild()

	_ = uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		require.NoError(t, tx.Orders().Create(ctx, o))
		applied, err := tx.Orders().UpdateIfStatus(ctx, o, order.StatusPending)
		require.NoError(t, err)
		assert.False(t, applied)
		return nil
	})
}

func TestOrders_ListFiltersAndPages(t *testing.T) {
	ctx := context.Background()
	uow := memstore.New().UnitOfWork()
	owner := uuid.New()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	var ids []uuid.UUID
	_ = uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		for i := 0; i < 3; i++ {
			o := builder.NewOrderBuilder().WithOwnerID(owner).With(func(b *builder.OrderBuilder) {
				b.CreatedAt = base.Add(time.Duration(i) * time.Hour)
			}).MustBuild()
			ids = append(ids, o.ID())
			require.NoError(t, tx.Orders().Create(ctx, o))
		}
		require.NoError(t, tx.Orders().Create(ctx, builder.NewOrderBuilder().AsCompleted().MustBuild()))
		return nil
	})

	_ = uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		got, err := tx.Orders().List(ctx, shared.OrderFilter{OwnerID: &owner, Limit: 2})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, ids[2], got[0].ID(), "newest first")
		assert.Equal(t, ids[1], got[1].ID())

		got, err = tx.Orders().List(ctx, shared.OrderFilter{OwnerID: &owner, Limit: 2, Offset: 2})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, ids[0], got[0].ID())

		completed := order.StatusCompleted
		got, err = tx.Orders().List(ctx, shared.OrderFilter{Status: &completed, Limit: 10})
		require.NoError(t, err)
		assert.Len(t, got, 1)
		return nil
	})
}

func TestUsers_TicketTransitionsKeyedOnDigest(t *testing.T) {
	ctx := context.Background()
	uow := memstore.New().UnitOfWork()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	u := builder.NewUserBuilder().MustBuild()

	_ = uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		users := tx.Users()
		require.NoError(t, users.Create(ctx, u))
		require.NoError(t, users.SaveRotationTicket(ctx, u.ID(), credential.NewTicket("digest-1", now, 10*time.Minute, 2)))

		ok, err := users.IncrementRotationAttemptsIfDigest(ctx, u.ID(), "other")
		require.NoError(t, err)
		assert.False(t, ok, "foreign digest is ignored")

		for i := 0; i < 2; i++ {
			ok, err = users.IncrementRotationAttemptsIfDigest(ctx, u.ID(), "digest-1")
			require.NoError(t, err)
			assert.True(t, ok)
		}
		ok, _ = users.IncrementRotationAttemptsIfDigest(ctx, u.ID(), "digest-1")
		assert.False(t, ok, "attempts are capped")

		ok, _ = users.RotatePasswordIfDigest(ctx, u.ID(), "digest-1", "new-hash", now)
		assert.False(t, ok, "exhausted ticket cannot rotate")

		require.NoError(t, users.SaveRotationTicket(ctx, u.ID(), credential.NewTicket("digest-2", now, 10*time.Minute, 5)))
		ok, _ = users.ClearRotationTicketIfDigest(ctx, u.ID(), "digest-1")
		assert.False(t, ok, "stale clear keeps the newer ticket")

		ok, err = users.RotatePasswordIfDigest(ctx, u.ID(), "digest-2", "new-hash", now.Add(time.Minute))
		require.NoError(t, err)
		assert.True(t, ok)

		loaded, err := users.FindByID(ctx, u.ID())
		require.NoError(t, err)
		assert.Equal(t, "new-hash", loaded.PasswordHash())
		assert.Nil(t, loaded.RotationTicket())

		ok, _ = users.RotatePasswordIfDigest(ctx, u.ID(), "digest-2", "again", now.Add(time.Minute))
		assert.False(t, ok, "a ticket is consumed at most once")
		return nil
	})
}
