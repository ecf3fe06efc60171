package commands

import (
	"context"
	"log/slog"

	"storefront-core/internal/domain/order"
	"storefront-core/internal/domain/user"
	"storefront-core/internal/infra"
	"storefront-core/internal/pkg/clock"
	"storefront-core/internal/pkg/errs"
	"storefront-core/internal/pkg/mailtmpl"
	"storefront-core/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound = errs.Define("order not found", errs.ErrNotFound)
	ErrOrderChanged  = errs.Define("order status changed concurrently", errs.ErrInvalidTransition)
)

type PlaceOrderItem struct {
	ProductID uuid.UUID
	Name      string
	UnitPrice int64
	Quantity  int
}

type PlaceOrderRequest struct {
	Items  []PlaceOrderItem
	Region string
}

type OrderCommands interface {
	PlaceOrder(ctx context.Context, actor *user.Actor, req PlaceOrderRequest) (*order.Order, error)
	SetStatus(ctx context.Context, actor *user.Actor, orderID uuid.UUID, rawStatus string) (*order.Order, error)
	Cancel(ctx context.Context, actor *user.Actor, orderID uuid.UUID, reason string) (*order.Order, error)
	ConfirmReceipt(ctx context.Context, actor *user.Actor, orderID uuid.UUID) (*order.Order, error)
}

type orderCommandsImpl struct {
	uow        shared.UnitOfWork
	dispatcher shared.NotificationDispatcher
	events     shared.EventPublisher
	clock      clock.Clock
}

func NewOrderCommands(
	uow shared.UnitOfWork,
	dispatcher shared.NotificationDispatcher,
	events shared.EventPublisher,
	clk clock.Clock,
) OrderCommands {
	return &orderCommandsImpl{
		uow:        uow,
		dispatcher: dispatcher,
		events:     events,
		clock:      clk,
	}
}

func (c *orderCommandsImpl) PlaceOrder(ctx context.Context, actor *user.Actor, req PlaceOrderRequest) (*order.Order, error) {
	a, err := requireActor(actor)
	if err != nil {
		return nil, err
	}

	region, err := order.ParseRegion(req.Region)
	if err != nil {
		return nil, err
	}

	items := make([]order.Item, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, order.Item(it))
	}

	o, err := order.NewOrder(a.ID, items, region, c.clock.Now())
	if err != nil {
		return nil, err
	}

	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Orders().Create(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	c.publish(ctx, o, a.ID, "")
	return o, nil
}

// SetStatus is the administrator override. Any status may be forced.
func (c *orderCommandsImpl) SetStatus(ctx context.Context, actor *user.Actor, orderID uuid.UUID, rawStatus string) (*order.Order, error) {
	a, err := requireAdmin(actor)
	if err != nil {
		return nil, err
	}

	status, err := order.ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	var (
		o        *order.Order
		previous order.Status
	)
	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var ferr error
		o, ferr = c.findOrder(ctx, tx, orderID)
		if ferr != nil {
			return ferr
		}
		previous = o.Status()

		if ferr = o.ForceStatus(status, c.clock.Now()); ferr != nil {
			return ferr
		}
		return tx.Orders().Update(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	if status.NotifiesCustomer() {
		c.notifyOwner(ctx, o)
	}
	c.publish(ctx, o, a.ID, previous)
	return o, nil
}

func (c *orderCommandsImpl) Cancel(ctx context.Context, actor *user.Actor, orderID uuid.UUID, reason string) (*order.Order, error) {
	a, err := requireActor(actor)
	if err != nil {
		return nil, err
	}

	o, err := c.transition(ctx, orderID, order.StatusPending, func(o *order.Order) error {
		return o.Cancel(a.ID, reason, c.clock.Now())
	})
	if err != nil {
		return nil, err
	}

	c.publish(ctx, o, a.ID, order.StatusPending)
	return o, nil
}

func (c *orderCommandsImpl) ConfirmReceipt(ctx context.Context, actor *user.Actor, orderID uuid.UUID) (*order.Order, error) {
	a, err := requireActor(actor)
	if err != nil {
		return nil, err
	}

	o, err := c.transition(ctx, orderID, order.StatusDelivered, func(o *order.Order) error {
		return o.ConfirmReceipt(a.ID, c.clock.Now())
	})
	if err != nil {
		return nil, err
	}

	c.publish(ctx, o, a.ID, order.StatusDelivered)
	return o, nil
}

// transition applies a customer transition and persists it only if the stored
// status is still the one the precondition was checked against.
func (c *orderCommandsImpl) transition(
	ctx context.Context,
	orderID uuid.UUID,
	from order.Status,
	apply func(o *order.Order) error,
) (*order.Order, error) {
	var o *order.Order
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var ferr error
		o, ferr = c.findOrder(ctx, tx, orderID)
		if ferr != nil {
			return ferr
		}
		if ferr = apply(o); ferr != nil {
			return ferr
		}

		updated, ferr := tx.Orders().UpdateIfStatus(ctx, o, from)
		if ferr != nil {
			return ferr
		}
		if !updated {
			return ErrOrderChanged
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (c *orderCommandsImpl) findOrder(ctx context.Context, tx shared.Tx, orderID uuid.UUID) (*order.Order, error) {
	o, err := tx.Orders().FindByID(ctx, orderID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

// notifyOwner never fails the status change it reports on.
func (c *orderCommandsImpl) notifyOwner(ctx context.Context, o *order.Order) {
	var owner *user.User
	err := c.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		var ferr error
		owner, ferr = tx.Users().FindByID(ctx, o.OwnerID())
		return ferr
	})
	if err != nil {
		slog.Warn("order owner lookup failed", "order_id", o.ID(), "owner_id", o.OwnerID(), "error", err.Error())
		return
	}

	items := make([]mailtmpl.OrderItem, 0, len(o.Items()))
	for _, it := range o.Items() {
		items = append(items, mailtmpl.OrderItem{Name: it.Name, Quantity: it.Quantity})
	}

	msg, err := mailtmpl.RenderOrderStatus(mailtmpl.OrderStatus{
		OrderID:    o.ID().String(),
		Status:     o.Status().String(),
		Region:     o.ShippingRegion().String(),
		TotalMinor: o.TotalAmount(),
		Items:      items,
	})
	if err != nil {
		slog.Error("failed to render order status email", "order_id", o.ID(), "error", err.Error())
		return
	}

	orderID := o.ID()
	c.dispatcher.Dispatch(shared.Email{
		To:      owner.Email().Value(),
		Subject: msg.Subject,
		Body:    msg.Body,
	}, func(err error) {
		slog.Warn("order status email not delivered", "order_id", orderID, "error", err.Error())
	})
}

func (c *orderCommandsImpl) publish(ctx context.Context, o *order.Order, actorID uuid.UUID, from order.Status) {
	evt := shared.OrderStatusChanged{
		OrderID:    o.ID(),
		OwnerID:    o.OwnerID(),
		ActorID:    actorID,
		From:       from.String(),
		To:         o.Status().String(),
		Total:      o.TotalAmount(),
		OccurredAt: c.clock.Now(),
	}
	if err := c.events.PublishOrderStatusChanged(ctx, evt); err != nil {
		slog.Warn("order status event dropped", "order_id", o.ID(), "to", evt.To, "error", err.Error())
	}
}
