package response

import (
	"time"

	"storefront-core/internal/usecase/queries"
)

type OrderItemResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// Amounts are minor units (centavos).
type OrderResponse struct {
	ID                 string              `json:"id"`
	OwnerID            string              `json:"owner_id"`
	Items              []OrderItemResponse `json:"items"`
	ShippingRegion     string              `json:"shipping_region"`
	ShippingFee        int64               `json:"shipping_fee"`
	TotalAmount        int64               `json:"total_amount"`
	Status             string              `json:"status"`
	CancellationReason *string             `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time          `json:"cancelled_at,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

type OrderListResponse struct {
	Orders []*OrderResponse `json:"orders"`
}

func FromOrderView(v *queries.OrderView) (*OrderResponse, error) {
	var res OrderResponse
	if err := mapInto(&res, v); err != nil {
		return nil, err
	}
	if res.Items == nil {
		res.Items = []OrderItemResponse{}
	}
	return &res, nil
}

func FromOrderViews(views []*queries.OrderView) (*OrderListResponse, error) {
	res := &OrderListResponse{Orders: make([]*OrderResponse, 0, len(views))}
	for _, v := range views {
		o, err := FromOrderView(v)
		if err != nil {
			return nil, err
		}
		res.Orders = append(res.Orders, o)
	}
	return res, nil
}
