package builder

import (
	"time"

	"storefront-core/internal/domain/order"
	reqdto "storefront-core/internal/handler/dto/request"

	"github.com/google/uuid"
)

type OrderBuilder struct {
	OwnerID   uuid.UUID
	Items     []order.Item
	Region    order.Region
	Status    order.Status
	CreatedAt time.Time
}

func NewOrderBuilder() *OrderBuilder {
	return &OrderBuilder{
		OwnerID: uuid.New(),
		Items: []order.Item{
			{ProductID: uuid.New(), Name: "Barako Coffee 250g", UnitPrice: 45000, Quantity: 2},
		},
		Region:    order.RegionLuzon,
		Status:    order.StatusPending,
		CreatedAt: time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC),
	}
}

func (b *OrderBuilder) With(mutate func(*OrderBuilder)) *OrderBuilder {
	mutate(b)
	return b
}

// BuildDomain places the order and then forces it into the configured status.
func (b *OrderBuilder) BuildDomain() (*order.Order, error) {
	o, err := order.NewOrder(b.OwnerID, b.Items, b.Region, b.CreatedAt)
	if err != nil {
		return nil, err
	}
	if b.Status != order.StatusPending {
		if err := o.ForceStatus(b.Status, b.CreatedAt); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (b *OrderBuilder) MustBuild() *order.Order {
	o, err := b.BuildDomain()
	if err != nil {
		panic(err)
	}
	return o
}

func (b *OrderBuilder) WithOwnerID(id uuid.UUID) *OrderBuilder {
	b.OwnerID = id
	return b
}

func (b *OrderBuilder) WithItems(items ...order.Item) *OrderBuilder {
	b.Items = items
	return b
}

func (b *OrderBuilder) WithProduct(productID uuid.UUID) *OrderBuilder {
	b.Items = append(b.Items, order.Item{ProductID: productID, Name: "Dried Mangoes", UnitPrice: 20000, Quantity: 1})
	return b
}

func (b *OrderBuilder) WithRegion(r order.Region) *OrderBuilder {
	b.Region = r
	return b
}

func (b *OrderBuilder) WithStatus(s order.Status) *OrderBuilder {
	b.Status = s
	return b
}

func (b *OrderBuilder) AsDelivered() *OrderBuilder {
	b.Status = order.StatusDelivered
	return b
}

func (b *OrderBuilder) AsCompleted() *OrderBuilder {
	b.Status = order.StatusCompleted
	return b
}

func (b *OrderBuilder) BuildPlaceOrderRequestDTO() reqdto.PlaceOrderRequest {
	items := make([]reqdto.PlaceOrderItemRequest, 0, len(b.Items))
	for _, it := range b.Items {
		items = append(items, reqdto.PlaceOrderItemRequest(it))
	}
	return reqdto.PlaceOrderRequest{Items: items, ShippingRegion: b.Region.String()}
}
