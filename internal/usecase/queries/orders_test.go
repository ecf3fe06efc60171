package queries_test

import (
	"context"
	"testing"

	"storefront-core/internal/domain/order"
	"storefront-core/internal/domain/user"
	"storefront-core/internal/infra/memstore"
	"storefront-core/internal/pkg/errs"
	"storefront-core/internal/usecase/queries"
	"storefront-core/internal/usecase/shared"
	"storefront-core/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, uow shared.UnitOfWork, orders ...*order.Order) {
	t.Helper()
	require.NoError(t, uow.WithDB(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		for _, o := range orders {
			if err := tx.Orders().Create(ctx, o); err != nil {
				return err
			}
		}
		return nil
	}))
}

func ptr[T any](v T) *T { return &v }

func TestOrderQueries_Get(t *testing.T) {
	ctx := context.Background()
	uow := memstore.New().UnitOfWork()
	q := queries.NewOrderQueries(uow)

	owner := builder.NewUserBuilder().BuildActor()
	admin := builder.NewUserBuilder().AsAdmin().BuildActor()
	stranger := builder.NewUserBuilder().BuildActor()
	o := builder.NewOrderBuilder().WithOwnerID(owner.ID).MustBuild()
	seed(t, uow, o)

	testCases := []struct {
		name      string
		actor     *user.Actor
		id        uuid.UUID
		wantClass error
	}{
		{name: "success: owner", actor: &owner, id: o.ID()},
		{name: "success: administrator", actor: &admin, id: o.ID()},
		{name: "error: another customer", actor: &stranger, id: o.ID(), wantClass: errs.ErrForbidden},
		{name: "error: unknown order", actor: &owner, id: uuid.New(), wantClass: errs.ErrNotFound},
		{name: "error: anonymous", id: o.ID(), wantClass: errs.ErrUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			view, err := q.Get(ctx, tc.actor, tc.id)

			if tc.wantClass != nil {
				assert.True(t, errs.Is(err, tc.wantClass), "got %v", err)
				assert.Nil(t, view)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, o.ID(), view.ID)
			assert.Equal(t, "pending", view.Status)
			assert.Equal(t, o.TotalAmount(), view.TotalAmount)
			require.Len(t, view.Items, 1)
			assert.Equal(t, "Barako Coffee 250g", view.Items[0].Name)
		})
	}
}

func TestOrderQueries_List(t *testing.T) {
	ctx := context.Background()
	uow := memstore.New().UnitOfWork()
	q := queries.NewOrderQueries(uow)

	owner := builder.NewUserBuilder().BuildActor()
	admin := builder.NewUserBuilder().AsAdmin().BuildActor()
	seed(t, uow,
		builder.NewOrderBuilder().WithOwnerID(owner.ID).MustBuild(),
		builder.NewOrderBuilder().WithOwnerID(owner.ID).AsCompleted().MustBuild(),
		builder.NewOrderBuilder().AsDelivered().MustBuild(),
	)

	mine, err := q.List(ctx, &owner, queries.OrderListFilter{})
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	for _, v := range mine {
		assert.Equal(t, owner.ID, v.OwnerID)
	}

	all, err := q.List(ctx, &admin, queries.OrderListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	completed, err := q.List(ctx, &owner, queries.OrderListFilter{Status: ptr("completed")})
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, "completed", completed[0].Status)

	paged, err := q.List(ctx, &admin, queries.OrderListFilter{Limit: ptr(0), Offset: ptr(-5)})
	require.NoError(t, err)
	assert.Len(t, paged, 1, "limit is clamped to at least one and offset to zero")

	_, err = q.List(ctx, &owner, queries.OrderListFilter{Status: ptr("lost")})
	assert.True(t, errs.Is(err, errs.ErrInvalidInput))

	_, err = q.List(ctx, nil, queries.OrderListFilter{})
	assert.True(t, errs.Is(err, errs.ErrUnauthorized))
}
