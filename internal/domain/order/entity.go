package order

import (
	"math"
	"strings"
	"time"

	"storefront-core/internal/pkg/errs"

	"github.com/google/uuid"
)

const (
	DefaultCustomerCancelReason = "Cancelled by customer"
	DefaultAdminCancelReason    = "Cancelled by administrator"
)

var (
	ErrNoItems      = errs.Define("order must contain at least one item", errs.ErrInvalidInput)
	ErrInvalidItem  = errs.Define("order item is invalid", errs.ErrInvalidInput)
	ErrNotOwner     = errs.Define("order belongs to another user", errs.ErrForbidden)
	ErrNotPending   = errs.Define("only pending orders can be cancelled", errs.ErrInvalidTransition)
	ErrNotDelivered = errs.Define("only delivered orders can be confirmed", errs.ErrInvalidTransition)
)

// Item is a snapshot of a catalog product taken when the order was placed.
type Item struct {
	ProductID uuid.UUID
	Name      string
	UnitPrice int64
	Quantity  int
}

func (i Item) LineTotal() int64 {
	return i.UnitPrice * int64(i.Quantity)
}

// addAmount sums two non-negative amounts, reporting false on int64 overflow.
func addAmount(a, b int64) (int64, bool) {
	if a > math.MaxInt64-b {
		return 0, false
	}
	return a + b, true
}

func (i Item) checkedLineTotal() (int64, bool) {
	if i.UnitPrice != 0 && int64(i.Quantity) > math.MaxInt64/i.UnitPrice {
		return 0, false
	}
	return i.LineTotal(), true
}

type Order struct {
	id                 uuid.UUID
	ownerID            uuid.UUID
	items              []Item
	shippingRegion     Region
	shippingFee        int64
	totalAmount        int64
	status             Status
	cancellationReason *string
	cancelledAt        *time.Time
	createdAt          time.Time
	updatedAt          time.Time
}

func NewOrder(ownerID uuid.UUID, items []Item, region Region, now time.Time) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	if _, ok := shippingFees[region]; !ok {
		return nil, ErrInvalidRegion
	}

	snapshot := make([]Item, len(items))
	var subtotal int64
	for i, it := range items {
		if it.ProductID == uuid.Nil || strings.TrimSpace(it.Name) == "" || it.Quantity < 1 || it.UnitPrice < 0 {
			return nil, ErrInvalidItem
		}
		it.Name = strings.TrimSpace(it.Name)
		snapshot[i] = it
		line, ok := it.checkedLineTotal()
		if !ok {
			return nil, ErrInvalidItem
		}
		if subtotal, ok = addAmount(subtotal, line); !ok {
			return nil, ErrInvalidItem
		}
	}

	fee := region.ShippingFee()
	total, ok := addAmount(subtotal, fee)
	if !ok {
		return nil, ErrInvalidItem
	}
	return &Order{
		id:             uuid.New(),
		ownerID:        ownerID,
		items:          snapshot,
		shippingRegion: region,
		shippingFee:    fee,
		totalAmount:    total,
		status:         StatusPending,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

func Reconstruct(
	id, ownerID uuid.UUID,
	items []Item,
	region Region,
	shippingFee, totalAmount int64,
	status Status,
	cancellationReason *string,
	cancelledAt *time.Time,
	createdAt, updatedAt time.Time,
) *Order {
	return &Order{
		id:                 id,
		ownerID:            ownerID,
		items:              items,
		shippingRegion:     region,
		shippingFee:        shippingFee,
		totalAmount:        totalAmount,
		status:             status,
		cancellationReason: cancellationReason,
		cancelledAt:        cancelledAt,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}
}

// ForceStatus is the administrator override: any target is accepted.
// The cancellation fields follow the status so that a reason exists exactly
// when the order is cancelled.
func (o *Order) ForceStatus(s Status, now time.Time) error {
	if !s.IsValid() {
		return ErrInvalidStatus
	}
	o.status = s
	if s == StatusCancelled {
		if o.cancellationReason == nil {
			reason := DefaultAdminCancelReason
			o.cancellationReason = &reason
		}
		if o.cancelledAt == nil {
			at := now
			o.cancelledAt = &at
		}
	} else {
		o.cancellationReason = nil
		o.cancelledAt = nil
	}
	o.updatedAt = now
	return nil
}

func (o *Order) Cancel(actorID uuid.UUID, reason string, now time.Time) error {
	if !o.OwnedBy(actorID) {
		return ErrNotOwner
	}
	if o.status != StatusPending {
		return ErrNotPending
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultCustomerCancelReason
	}
	at := now
	o.status = StatusCancelled
	o.cancellationReason = &reason
	o.cancelledAt = &at
	o.updatedAt = now
	return nil
}

func (o *Order) ConfirmReceipt(actorID uuid.UUID, now time.Time) error {
	if !o.OwnedBy(actorID) {
		return ErrNotOwner
	}
	if o.status != StatusDelivered {
		return ErrNotDelivered
	}
	o.status = StatusCompleted
	o.updatedAt = now
	return nil
}

func (o *Order) OwnedBy(userID uuid.UUID) bool {
	return o.ownerID == userID
}

func (o *Order) ContainsProduct(productID uuid.UUID) bool {
	for _, it := range o.items {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}

func (o *Order) Subtotal() int64 {
	return o.totalAmount - o.shippingFee
}

func (o *Order) ID() uuid.UUID               { return o.id }
func (o *Order) OwnerID() uuid.UUID          { return o.ownerID }
func (o *Order) Items() []Item               { return append([]Item(nil), o.items...) }
func (o *Order) ShippingRegion() Region      { return o.shippingRegion }
func (o *Order) ShippingFee() int64          { return o.shippingFee }
func (o *Order) TotalAmount() int64          { return o.totalAmount }
func (o *Order) Status() Status              { return o.status }
func (o *Order) CancellationReason() *string { return o.cancellationReason }
func (o *Order) CancelledAt() *time.Time     { return o.cancelledAt }
func (o *Order) CreatedAt() time.Time        { return o.createdAt }
func (o *Order) UpdatedAt() time.Time        { return o.updatedAt }
