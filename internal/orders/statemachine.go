package orders

import (
	"fmt"

	"github.com/rafaelquintero/bazario-backend/pkg/enums"
	apperrors "github.com/rafaelquintero/bazario-backend/pkg/errors"
)

// statusTransitions is the full lifecycle graph. delivered -> returned exists
// in the graph but is reachable only through the return workflow, and
// cancellation only through CancelOrder.
var statusTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:    {enums.OrderStatusConfirmed, enums.OrderStatusCancelled},
	enums.OrderStatusConfirmed:  {enums.OrderStatusProcessing, enums.OrderStatusCancelled},
	enums.OrderStatusProcessing: {enums.OrderStatusShipped},
	enums.OrderStatusShipped:    {enums.OrderStatusDelivered},
	enums.OrderStatusDelivered:  {enums.OrderStatusReturned},
	enums.OrderStatusCancelled:  {},
	enums.OrderStatusReturned:   {},
}

// advanceableStatuses are the targets AdvanceStatus accepts. Cancellation and
// returns have dedicated entry points with their own side effects.
var advanceableStatuses = map[enums.OrderStatus]bool{
	enums.OrderStatusConfirmed:  true,
	enums.OrderStatusProcessing: true,
	enums.OrderStatusShipped:    true,
	enums.OrderStatusDelivered:  true,
}

// CanTransition reports whether the lifecycle graph has an edge from -> to.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns a state-conflict error when the edge is missing.
func ValidateTransition(from, to enums.OrderStatus) error {
	if !from.IsValid() {
		return apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid order status %q", from))
	}
	if !to.IsValid() {
		return apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid order status %q", to))
	}
	if !CanTransition(from, to) {
		return apperrors.New(apperrors.CodeStateConflict,
			fmt.Sprintf("order cannot move from %s to %s", from, to))
	}
	return nil
}
