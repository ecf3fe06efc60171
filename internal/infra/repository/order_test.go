package repository_test

import (
	"context"
	"errors"
	"testing"

	"storefront-core/internal/domain/order"
	"storefront-core/internal/infra"
	"storefront-core/internal/infra/repository"
	"storefront-core/tests/common/builder"
	dbmock "storefront-core/tests/mock/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestOrderRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success: order row then item rows", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockDB := dbmock.NewMockDBTX(ctrl)
		repo := repository.NewOrderRepository(mockDB, discardLogger)
		o := builder.NewOrderBuilder().MustBuild()

		gomock.InOrder(
			mockDB.EXPECT().Exec(ctx, gomock.Any(), anyArgs(10)...).Return(pgconn.NewCommandTag("INSERT 0 1"), nil),
			mockDB.EXPECT().Exec(ctx, gomock.Any(), anyArgs(6)...).Return(pgconn.NewCommandTag("INSERT 0 2"), nil),
		)

		require.NoError(t, repo.Create(ctx, o))
	})

	t.Run("error: item insert fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockDB := dbmock.NewMockDBTX(ctrl)
		repo := repository.NewOrderRepository(mockDB, discardLogger)
		o := builder.NewOrderBuilder().MustBuild()

		gomock.InOrder(
			mockDB.EXPECT().Exec(ctx, gomock.Any(), anyArgs(10)...).Return(pgconn.NewCommandTag("INSERT 0 1"), nil),
			mockDB.EXPECT().Exec(ctx, gomock.Any(), anyArgs(6)...).Return(pgconn.CommandTag{}, errors.New("disk full")),
		)

		err := repo.Create(ctx, o)

		require.Error(t, err)
		assert.True(t, infra.IsKind(err, infra.KindDBFailure))
	})
}

func TestOrderRepository_FindByID_NotFound(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	mockDB := dbmock.NewMockDBTX(ctrl)
	repo := repository.NewOrderRepository(mockDB, discardLogger)
	id := uuid.New()

	mockDB.EXPECT().QueryRow(ctx, gomock.Any(), id).Return(fakeRow{err: pgx.ErrNoRows})

	o, err := repo.FindByID(ctx, id)

	assert.Nil(t, o)
	assert.True(t, infra.IsKind(err, infra.KindNotFound))
}

func TestOrderRepository_UpdateIfStatus(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name    string
		tag     string
		applied bool
	}{
		{name: "success: status still matched", tag: "UPDATE 1", applied: true},
		{name: "lost race: status changed underneath", tag: "UPDATE 0", applied: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockDB := dbmock.NewMockDBTX(ctrl)
			repo := repository.NewOrderRepository(mockDB, discardLogger)
			o := builder.NewOrderBuilder().WithStatus(order.StatusCancelled).MustBuild()

			mockDB.EXPECT().
				Exec(ctx, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), "pending").
				Return(pgconn.NewCommandTag(tc.tag), nil)

			applied, err := repo.UpdateIfStatus(ctx, o, order.StatusPending)

			require.NoError(t, err)
			assert.Equal(t, tc.applied, applied)
		})
	}
}

func TestOrderRepository_HasCompletedWithProduct(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	mockDB := dbmock.NewMockDBTX(ctrl)
	repo := repository.NewOrderRepository(mockDB, discardLogger)
	userID, productID := uuid.New(), uuid.New()

	mockDB.EXPECT().
		QueryRow(ctx, gomock.Any(), userID, "completed", productID).
		Return(fakeRow{values: []any{true}})

	ok, err := repo.HasCompletedWithProduct(ctx, userID, productID)

	require.NoError(t, err)
	assert.True(t, ok)
}
