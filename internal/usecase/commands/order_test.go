package commands_test

import (
	"context"
	"sync"
	"testing"

	"storefront-core/internal/domain/order"
	"storefront-core/internal/pkg/errs"
	"storefront-core/internal/usecase/commands"
	"storefront-core/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceOrder(t *testing.T) {
	ctx := context.Background()
	uow := newMemUoW()
	events := &recordingPublisher{}
	cmds := commands.NewOrderCommands(uow, &syncDispatcher{}, events, newClock())
	customer := seedUser(t, uow, builder.NewUserBuilder())

	t.Run("success: totals include the regional shipping fee", func(t *testing.T) {
		o, err := cmds.PlaceOrder(ctx, actorOf(customer), commands.PlaceOrderRequest{
			Region: "visayas",
			Items: []commands.PlaceOrderItem{
				{ProductID: uuid.New(), Name: "Barako Coffee 250g", UnitPrice: 45000, Quantity: 2},
			},
		})

		require.NoError(t, err)
		assert.Equal(t, order.StatusPending, o.Status())
		assert.Equal(t, int64(15000), o.ShippingFee())
		assert.Equal(t, int64(105000), o.TotalAmount())
		assert.Equal(t, customer.ID(), loadOrder(t, uow, o.ID()).OwnerID())

		require.NotEmpty(t, events.events)
		evt := events.events[len(events.events)-1]
		assert.Equal(t, "", evt.From)
		assert.Equal(t, "pending", evt.To)
	})

	t.Run("error: unknown region", func(t *testing.T) {
		_, err := cmds.PlaceOrder(ctx, actorOf(customer), commands.PlaceOrderRequest{
			Region: "mars",
			Items:  []commands.PlaceOrderItem{{ProductID: uuid.New(), Name: "x", UnitPrice: 1, Quantity: 1}},
		})
		assert.True(t, errs.Is(err, order.ErrInvalidRegion))
		assert.True(t, errs.Is(err, errs.ErrInvalidInput))
	})

	t.Run("error: no items", func(t *testing.T) {
		_, err := cmds.PlaceOrder(ctx, actorOf(customer), commands.PlaceOrderRequest{Region: "luzon"})
		assert.True(t, errs.Is(err, order.ErrNoItems))
	})

	t.Run("error: anonymous caller", func(t *testing.T) {
		_, err := cmds.PlaceOrder(ctx, nil, commands.PlaceOrderRequest{Region: "luzon"})
		assert.True(t, errs.Is(err, errs.ErrUnauthorized))
	})
}

func TestCancelOrder(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name        string
		status      order.Status
		byStranger  bool
		reason      string
		wantClass   error
		wantReason  string
		missingOnly bool
	}{
		{name: "success: owner cancels pending order", status: order.StatusPending, wantReason: order.DefaultCustomerCancelReason},
		{name: "success: custom reason kept", status: order.StatusPending, reason: "Changed my mind", wantReason: "Changed my mind"},
		{name: "error: shipped order", status: order.StatusShipped, wantClass: errs.ErrInvalidTransition},
		{name: "error: already cancelled", status: order.StatusCancelled, wantClass: errs.ErrInvalidTransition},
		{name: "error: somebody else's order", status: order.StatusPending, byStranger: true, wantClass: errs.ErrForbidden},
		{name: "error: order does not exist", missingOnly: true, wantClass: errs.ErrNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			uow := newMemUoW()
			cmds := commands.NewOrderCommands(uow, &syncDispatcher{}, &recordingPublisher{}, newClock())
			owner := seedUser(t, uow, builder.NewUserBuilder())
			stranger := seedUser(t, uow, builder.NewUserBuilder().WithEmail("stranger@example.com"))

			orderID := uuid.New()
			if !tc.missingOnly {
				orderID = seedOrder(t, uow, builder.NewOrderBuilder().WithOwnerID(owner.ID()).WithStatus(tc.status).MustBuild()).ID()
			}
			caller := actorOf(owner)
			if tc.byStranger {
				caller = actorOf(stranger)
			}

			o, err := cmds.Cancel(ctx, caller, orderID, tc.reason)

			if tc.wantClass != nil {
				require.Error(t, err)
				assert.True(t, errs.Is(err, tc.wantClass), "got %v", err)
				if !tc.missingOnly {
					assert.Equal(t, tc.status, loadOrder(t, uow, orderID).Status(), "stored order untouched")
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, order.StatusCancelled, o.Status())
			stored := loadOrder(t, uow, orderID)
			assert.Equal(t, order.StatusCancelled, stored.Status())
			require.NotNil(t, stored.CancellationReason())
			assert.Equal(t, tc.wantReason, *stored.CancellationReason())
			assert.NotNil(t, stored.CancelledAt())
		})
	}
}

func TestCancelOrder_ConcurrentCallsSucceedOnce(t *testing.T) {
	ctx := context.Background()
	uow := newMemUoW()
	cmds := commands.NewOrderCommands(uow, &syncDispatcher{}, &recordingPublisher{}, newClock())
	owner := seedUser(t, uow, builder.NewUserBuilder())
	o := seedOrder(t, uow, builder.NewOrderBuilder().WithOwnerID(owner.ID()).MustBuild())

	const callers = 8
	results := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, results[i] = cmds.Cancel(ctx, actorOf(owner), o.ID(), "")
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, errs.Is(err, errs.ErrInvalidTransition), "got %v", err)
	}
	assert.Equal(t, 1, succeeded)
}

func TestConfirmReceipt(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name      string
		status    order.Status
		wantClass error
	}{
		{name: "success: delivered order completes", status: order.StatusDelivered},
		{name: "error: still pending", status: order.StatusPending, wantClass: errs.ErrInvalidTransition},
		{name: "error: shipped but not delivered", status: order.StatusShipped, wantClass: errs.ErrInvalidTransition},
		{name: "error: already completed", status: order.StatusCompleted, wantClass: errs.ErrInvalidTransition},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			uow := newMemUoW()
			events := &recordingPublisher{}
			cmds := commands.NewOrderCommands(uow, &syncDispatcher{}, events, newClock())
			owner := seedUser(t, uow, builder.NewUserBuilder())
			o := seedOrder(t, uow, builder.NewOrderBuilder().WithOwnerID(owner.ID()).WithStatus(tc.status).MustBuild())

			got, err := cmds.ConfirmReceipt(ctx, actorOf(owner), o.ID())

			if tc.wantClass != nil {
				assert.True(t, errs.Is(err, tc.wantClass), "got %v", err)
				assert.Empty(t, events.events)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, order.StatusCompleted, got.Status())
			assert.Equal(t, order.StatusCompleted, loadOrder(t, uow, o.ID()).Status())
			require.Len(t, events.events, 1)
			assert.Equal(t, "delivered", events.events[0].From)
			assert.Equal(t, "completed", events.events[0].To)
		})
	}

	t.Run("error: only the owner confirms", func(t *testing.T) {
		uow := newMemUoW()
		cmds := commands.NewOrderCommands(uow, &syncDispatcher{}, &recordingPublisher{}, newClock())
		owner := seedUser(t, uow, builder.NewUserBuilder())
		admin := seedUser(t, uow, builder.NewUserBuilder().AsAdmin())
		o := seedOrder(t, uow, builder.NewOrderBuilder().WithOwnerID(owner.ID()).AsDelivered().MustBuild())

		_, err := cmds.ConfirmReceipt(ctx, actorOf(admin), o.ID())

		assert.True(t, errs.Is(err, errs.ErrForbidden))
	})
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("success: shipping notifies the owner", func(t *testing.T) {
		uow := newMemUoW()
		dispatcher := &syncDispatcher{}
		cmds := commands.NewOrderCommands(uow, dispatcher, &recordingPublisher{}, newClock())
		owner := seedUser(t, uow, builder.NewUserBuilder())
		admin := seedUser(t, uow, builder.NewUserBuilder().AsAdmin())
		o := seedOrder(t, uow, builder.NewOrderBuilder().WithOwnerID(owner.ID()).MustBuild())

		got, err := cmds.SetStatus(ctx, actorOf(admin), o.ID(), "shipped")

		require.NoError(t, err)
		assert.Equal(t, order.StatusShipped, got.Status())
		mail := dispatcher.last(t)
		assert.Equal(t, "shopper@example.com", mail.To)
		assert.Contains(t, mail.Subject, "shipped")
	})

	t.Run("success: other statuses are silent", func(t *testing.T) {
		uow := newMemUoW()
		dispatcher := &syncDispatcher{}
		cmds := commands.NewOrderCommands(uow, dispatcher, &recordingPublisher{}, newClock())
		owner := seedUser(t, uow, builder.NewUserBuilder())
		admin := seedUser(t, uow, builder.NewUserBuilder().AsAdmin())
		o := seedOrder(t, uow, builder.NewOrderBuilder().WithOwnerID(owner.ID()).AsDelivered().MustBuild())

		got, err := cmds.SetStatus(ctx, actorOf(admin), o.ID(), "cancelled")

		require.NoError(t, err)
		assert.Equal(t, order.StatusCancelled, got.Status())
		require.NotNil(t, got.CancellationReason())
		assert.Equal(t, order.DefaultAdminCancelReason, *got.CancellationReason())
		assert.Empty(t, dispatcher.outbox())
	})

	t.Run("success: status change survives a missing owner", func(t *testing.T) {
		uow := newMemUoW()
		dispatcher := &syncDispatcher{}
		cmds := commands.NewOrderCommands(uow, dispatcher, &recordingPublisher{}, newClock())
		admin := seedUser(t, uow, builder.NewUserBuilder().AsAdmin())
		o := seedOrder(t, uow, builder.NewOrderBuilder().MustBuild())

		_, err := cmds.SetStatus(ctx, actorOf(admin), o.ID(), "delivered")

		require.NoError(t, err)
		assert.Equal(t, order.StatusDelivered, loadOrder(t, uow, o.ID()).Status())
		assert.Empty(t, dispatcher.outbox())
	})

	t.Run("error: customers cannot force a status", func(t *testing.T) {
		uow := newMemUoW()
		cmds := commands.NewOrderCommands(uow, &syncDispatcher{}, &recordingPublisher{}, newClock())
		owner := seedUser(t, uow, builder.NewUserBuilder())
		o := seedOrder(t, uow, builder.NewOrderBuilder().WithOwnerID(owner.ID()).MustBuild())

		_, err := cmds.SetStatus(ctx, actorOf(owner), o.ID(), "completed")

		assert.True(t, errs.Is(err, commands.ErrAdminRequired))
		assert.True(t, errs.Is(err, errs.ErrForbidden))
		assert.Equal(t, order.StatusPending, loadOrder(t, uow, o.ID()).Status())
	})

	t.Run("error: unknown status", func(t *testing.T) {
		uow := newMemUoW()
		cmds := commands.NewOrderCommands(uow, &syncDispatcher{}, &recordingPublisher{}, newClock())
		admin := seedUser(t, uow, builder.NewUserBuilder().AsAdmin())

		_, err := cmds.SetStatus(ctx, actorOf(admin), uuid.New(), "lost")

		assert.True(t, errs.Is(err, order.ErrInvalidStatus))
	})

	t.Run("error: inactive administrator", func(t *testing.T) {
		uow := newMemUoW()
		cmds := commands.NewOrderCommands(uow, &syncDispatcher{}, &recordingPublisher{}, newClock())
		admin := seedUser(t, uow, builder.NewUserBuilder().AsAdmin().AsInactive())

		_, err := cmds.SetStatus(ctx, actorOf(admin), uuid.New(), "shipped")

		assert.True(t, errs.Is(err, commands.ErrAccountInactive))
	})
}
