package queries

import (
	"context"
	"time"

	"storefront-core/internal/domain/order"
	"storefront-core/internal/domain/user"
	"storefront-core/internal/infra"
	"storefront-core/internal/pkg/errs"
	"storefront-core/internal/pkg/patch"
	"storefront-core/internal/usecase/shared"

	"github.com/google/uuid"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

var (
	ErrOrderNotFound = errs.Define("order does not exist", errs.ErrNotFound)
	ErrOrderAccess   = errs.Define("order access denied", errs.ErrForbidden)
	ErrLoginRequired = errs.Define("login required", errs.ErrUnauthorized)
)

type OrderItemView struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	UnitPrice int64     `json:"unit_price"`
	Quantity  int       `json:"quantity"`
}

type OrderView struct {
	ID                 uuid.UUID       `json:"id"`
	OwnerID            uuid.UUID       `json:"owner_id"`
	Items              []OrderItemView `json:"items"`
	ShippingRegion     string          `json:"shipping_region"`
	ShippingFee        int64           `json:"shipping_fee"`
	TotalAmount        int64           `json:"total_amount"`
	Status             string          `json:"status"`
	CancellationReason *string         `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

type OrderListFilter struct {
	Status *string
	Limit  *int
	Offset *int
}

type OrderQueries interface {
	Get(ctx context.Context, actor *user.Actor, id uuid.UUID) (*OrderView, error)
	// List returns the caller's orders, or every order for an administrator.
	List(ctx context.Context, actor *user.Actor, filter OrderListFilter) ([]*OrderView, error)
}

type orderQueriesImpl struct {
	uow shared.UnitOfWork
}

func NewOrderQueries(uow shared.UnitOfWork) OrderQueries {
	return &orderQueriesImpl{uow: uow}
}

func (q *orderQueriesImpl) Get(ctx context.Context, actor *user.Actor, id uuid.UUID) (*OrderView, error) {
	if actor == nil {
		return nil, ErrLoginRequired
	}

	var o *order.Order
	err := q.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		var ferr error
		o, ferr = tx.Orders().FindByID(ctx, id)
		return ferr
	})
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if !actor.IsAdmin() && !o.OwnedBy(actor.ID) {
		return nil, ErrOrderAccess
	}
	return ToOrderView(o), nil
}

func (q *orderQueriesImpl) List(ctx context.Context, actor *user.Actor, filter OrderListFilter) ([]*OrderView, error) {
	if actor == nil {
		return nil, ErrLoginRequired
	}

	f := shared.OrderFilter{
		Limit:  patch.Clamp(patch.Coalesce(filter.Limit, DefaultListLimit), 1, MaxListLimit),
		Offset: max(patch.Coalesce(filter.Offset, 0), 0),
	}
	if !actor.IsAdmin() {
		f.OwnerID = &actor.ID
	}
	if filter.Status != nil {
		s, err := order.ParseStatus(*filter.Status)
		if err != nil {
			return nil, err
		}
		f.Status = &s
	}

	var orders []*order.Order
	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		var ferr error
		orders, ferr = tx.Orders().List(ctx, f)
		return ferr
	})
	if err != nil {
		return nil, err
	}

	views := make([]*OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, ToOrderView(o))
	}
	return views, nil
}

func ToOrderView(o *order.Order) *OrderView {
	items := make([]OrderItemView, 0, len(o.Items()))
	for _, it := range o.Items() {
		items = append(items, OrderItemView(it))
	}
	return &OrderView{
		ID:                 o.ID(),
		OwnerID:            o.OwnerID(),
		Items:              items,
		ShippingRegion:     o.ShippingRegion().String(),
		ShippingFee:        o.ShippingFee(),
		TotalAmount:        o.TotalAmount(),
		Status:             o.Status().String(),
		CancellationReason: o.CancellationReason(),
		CancelledAt:        o.CancelledAt(),
		CreatedAt:          o.CreatedAt(),
		UpdatedAt:          o.UpdatedAt(),
	}
}
