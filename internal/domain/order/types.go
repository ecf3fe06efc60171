package order

import (
	"strings"

	"storefront-core/internal/pkg/errs"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

var ErrInvalidStatus = errs.Define("unknown order status", errs.ErrInvalidInput)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusShipped, StatusDelivered, StatusCancelled, StatusCompleted:
		return true
	default:
		return false
	}
}

// NotifiesCustomer reports whether reaching this status sends the owner an email.
func (s Status) NotifiesCustomer() bool {
	return s == StatusShipped || s == StatusDelivered
}

func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

type Region string

const (
	RegionLuzon         Region = "luzon"
	RegionVisayas       Region = "visayas"
	RegionMindanao      Region = "mindanao"
	RegionInternational Region = "international"
)

var ErrInvalidRegion = errs.Define("unknown shipping region", errs.ErrInvalidInput)

// shippingFees in minor units.
var shippingFees = map[Region]int64{
	RegionLuzon:         10000,
	RegionVisayas:       15000,
	RegionMindanao:      20000,
	RegionInternational: 100000,
}

func (r Region) String() string {
	return string(r)
}

func (r Region) ShippingFee() int64 {
	return shippingFees[r]
}

func ParseRegion(raw string) (Region, error) {
	r := Region(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := shippingFees[r]; !ok {
		return "", ErrInvalidRegion
	}
	return r, nil
}
