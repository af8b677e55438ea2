package orders

import (
	"github.com/google/uuid"

	"github.com/rafaelquintero/bazario-backend/pkg/enums"
)

// Actor is the authenticated caller as the services see it. SellerID is set
// only for seller tokens.
type Actor struct {
	UserID   uuid.UUID
	Role     enums.ActorRole
	SellerID *uuid.UUID
}

// CartItem is a single product plus quantity from the checkout payload.
type CartItem struct {
	ProductID uuid.UUID
	Qty       int
}

// PlaceOrderInput carries everything needed to place a checkout. A cart that
// spans fulfillers produces one order per fulfiller.
type PlaceOrderInput struct {
	CustomerID      uuid.UUID
	PaymentMethod   enums.PaymentMethod
	ShippingAddress string
	CouponCents     int64
	// GatewayTransactionID is the opaque capture reference from the payment
	// gateway. Required for online payments, ignored otherwise.
	GatewayTransactionID string
	Items                []CartItem
}

// ListOrdersFilter narrows ListOrders beyond the actor's own scope.
type ListOrdersFilter struct {
	Status *enums.OrderStatus
}
