package orders

import (
	"testing"

	"github.com/rafaelquintero/bazario-backend/pkg/enums"
	pkgerrors "github.com/rafaelquintero/bazario-backend/pkg/errors"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct {
		from, to enums.OrderStatus
	}{
		{enums.OrderStatusPending, enums.OrderStatusConfirmed},
		{enums.OrderStatusPending, enums.OrderStatusCancelled},
		{enums.OrderStatusConfirmed, enums.OrderStatusProcessing},
		{enums.OrderStatusConfirmed, enums.OrderStatusCancelled},
		{enums.OrderStatusProcessing, enums.OrderStatusShipped},
		{enums.OrderStatusShipped, enums.OrderStatusDelivered},
		{enums.OrderStatusDelivered, enums.OrderStatusReturned},
	}
	for _, edge := range allowed {
		if !CanTransition(edge.from, edge.to) {
			t.Fatalf("expected %s -> %s to be allowed", edge.from, edge.to)
		}
	}

	denied := []struct {
		from, to enums.OrderStatus
	}{
		{enums.OrderStatusPending, enums.OrderStatusShipped},
		{enums.OrderStatusPending, enums.OrderStatusDelivered},
		{enums.OrderStatusProcessing, enums.OrderStatusCancelled},
		{enums.OrderStatusShipped, enums.OrderStatusCancelled},
		{enums.OrderStatusDelivered, enums.OrderStatusPending},
		{enums.OrderStatusCancelled, enums.OrderStatusConfirmed},
		{enums.OrderStatusReturned, enums.OrderStatusDelivered},
		{enums.OrderStatusDelivered, enums.OrderStatusShipped},
	}
	for _, edge := range denied {
		if CanTransition(edge.from, edge.to) {
			t.Fatalf("expected %s -> %s to be denied", edge.from, edge.to)
		}
	}
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	for _, terminal := range []enums.OrderStatus{enums.OrderStatusCancelled, enums.OrderStatusReturned} {
		for _, to := range []enums.OrderStatus{
			enums.OrderStatusPending,
			enums.OrderStatusConfirmed,
			enums.OrderStatusProcessing,
			enums.OrderStatusShipped,
			enums.OrderStatusDelivered,
			enums.OrderStatusCancelled,
			enums.OrderStatusReturned,
		} {
			if CanTransition(terminal, to) {
				t.Fatalf("terminal state %s must not transition to %s", terminal, to)
			}
		}
	}
}

func TestValidateTransition(t *testing.T) {
	if err := ValidateTransition(enums.OrderStatusPending, enums.OrderStatusConfirmed); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	err := ValidateTransition(enums.OrderStatusShipped, enums.OrderStatusConfirmed)
	if err == nil {
		t.Fatal("expected state conflict")
	}
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict code, got %v", err)
	}

	err = ValidateTransition(enums.OrderStatus("archived"), enums.OrderStatusConfirmed)
	if err == nil {
		t.Fatal("expected validation error for unknown status")
	}
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation code, got %v", err)
	}
}
