package request

import (
	"storefront-core/internal/usecase/commands"

	"github.com/google/uuid"
)

type PlaceOrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Name      string    `json:"name" binding:"required,max=200"`
	UnitPrice int64     `json:"unit_price" binding:"min=0,max=1000000000000"`
	Quantity  int       `json:"quantity" binding:"required,min=1,max=1000"`
}

type PlaceOrderRequest struct {
	Items          []PlaceOrderItemRequest `json:"items" binding:"required,min=1,max=100,dive"`
	ShippingRegion string                  `json:"shipping_region" binding:"required"`
}

func (r *PlaceOrderRequest) ToCommand() commands.PlaceOrderRequest {
	items := make([]commands.PlaceOrderItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, commands.PlaceOrderItem(it))
	}
	return commands.PlaceOrderRequest{Items: items, Region: r.ShippingRegion}
}

type SetOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CancelOrderRequest body is optional; an empty reason gets the default text.
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

type OrderListQuery struct {
	Status *string `form:"status"`
	Limit  *int    `form:"limit" binding:"omitempty,min=1"`
	Offset *int    `form:"offset" binding:"omitempty,min=0"`
}
