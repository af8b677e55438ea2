package settlement

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rafaelquintero/bazario-backend/pkg/enums"
)

var hundred = decimal.NewFromInt(100)

// Split is the cent-exact division of an order total between the seller and
// the platform. PlatformCents + SellerCents always equals the order total.
type Split struct {
	GoodsCents      int64
	DeliveryCents   int64
	CommissionCents int64
	SellerCents     int64
	PlatformCents   int64
}

// ComputeSplit divides an order total. The total includes the delivery charge;
// commission applies to the goods portion only. Platform-fulfilled orders have
// no commission, the platform keeps the whole total.
func ComputeSplit(totalCents, deliveryCents int64, fulfiller enums.FulfillerKind, commissionPct decimal.Decimal) (Split, error) {
	if !fulfiller.IsValid() {
		return Split{}, fmt.Errorf("invalid fulfiller kind %q", fulfiller)
	}
	if totalCents <= 0 {
		return Split{}, fmt.Errorf("total must be positive, got %d", totalCents)
	}
	if deliveryCents < 0 || deliveryCents > totalCents {
		return Split{}, fmt.Errorf("delivery charge %d out of range for total %d", deliveryCents, totalCents)
	}
	if commissionPct.IsNegative() || commissionPct.GreaterThan(hundred) {
		return Split{}, fmt.Errorf("commission percent %s out of range", commissionPct)
	}

	goods := totalCents - deliveryCents

	if fulfiller == enums.FulfillerKindPlatform {
		return Split{
			GoodsCents:    goods,
			DeliveryCents: deliveryCents,
			PlatformCents: totalCents,
		}, nil
	}

	commission := decimal.NewFromInt(goods).
		Mul(commissionPct).
		Div(hundred).
		Round(0).
		IntPart()

	return Split{
		GoodsCents:      goods,
		DeliveryCents:   deliveryCents,
		CommissionCents: commission,
		SellerCents:     goods - commission,
		PlatformCents:   commission + deliveryCents,
	}, nil
}
