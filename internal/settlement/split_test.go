package settlement

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rafaelquintero/bazario-backend/pkg/enums"
)

func TestComputeSplitSellerOrder(t *testing.T) {
	pct := decimal.NewFromInt(10)

	split, err := ComputeSplit(1180, 50, enums.FulfillerKindSeller, pct)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if split.GoodsCents != 1130 {
		t.Fatalf("expected goods 1130, got %d", split.GoodsCents)
	}
	if split.CommissionCents != 113 {
		t.Fatalf("expected commission 113, got %d", split.CommissionCents)
	}
	if split.SellerCents != 1017 {
		t.Fatalf("expected seller 1017, got %d", split.SellerCents)
	}
	if split.PlatformCents != 163 {
		t.Fatalf("expected platform 163, got %d", split.PlatformCents)
	}
	if split.SellerCents+split.PlatformCents != 1180 {
		t.Fatalf("split does not conserve the total: %d + %d != 1180", split.SellerCents, split.PlatformCents)
	}
}

func TestComputeSplitRoundsHalfUp(t *testing.T) {
	// goods 1005 at 10% is 100.5, which rounds to 101.
	split, err := ComputeSplit(1055, 50, enums.FulfillerKindSeller, decimal.NewFromInt(10))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if split.CommissionCents != 101 {
		t.Fatalf("expected commission 101, got %d", split.CommissionCents)
	}
	if split.SellerCents != 904 {
		t.Fatalf("expected seller 904, got %d", split.SellerCents)
	}
	if split.SellerCents+split.PlatformCents != 1055 {
		t.Fatalf("split does not conserve the total")
	}
}

func TestComputeSplitPlatformOrder(t *testing.T) {
	split, err := ComputeSplit(1180, 50, enums.FulfillerKindPlatform, decimal.NewFromInt(10))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if split.CommissionCents != 0 {
		t.Fatalf("platform orders carry no commission, got %d", split.CommissionCents)
	}
	if split.SellerCents != 0 {
		t.Fatalf("platform orders pay no seller, got %d", split.SellerCents)
	}
	if split.PlatformCents != 1180 {
		t.Fatalf("expected the platform to keep the whole total, got %d", split.PlatformCents)
	}
}

func TestComputeSplitConservesAcrossRates(t *testing.T) {
	totals := []int64{1, 99, 100, 101, 999, 123457, 99999999}
	rates := []string{"0", "2.5", "7", "10", "33.33", "100"}

	for _, total := range totals {
		for _, rate := range rates {
			pct, err := decimal.NewFromString(rate)
			if err != nil {
				t.Fatalf("bad rate %q: %v", rate, err)
			}
			delivery := int64(0)
			if total > 50 {
				delivery = 50
			}
			split, err := ComputeSplit(total, delivery, enums.FulfillerKindSeller, pct)
			if err != nil {
				t.Fatalf("total %d rate %s: %v", total, rate, err)
			}
			if split.SellerCents+split.PlatformCents != total {
				t.Fatalf("total %d rate %s: seller %d + platform %d != total",
					total, rate, split.SellerCents, split.PlatformCents)
			}
			if split.CommissionCents < 0 || split.SellerCents < 0 {
				t.Fatalf("total %d rate %s: negative component %+v", total, rate, split)
			}
		}
	}
}

func TestComputeSplitRejectsBadInput(t *testing.T) {
	pct := decimal.NewFromInt(10)

	if _, err := ComputeSplit(0, 0, enums.FulfillerKindSeller, pct); err == nil {
		t.Fatal("expected error for zero total")
	}
	if _, err := ComputeSplit(-5, 0, enums.FulfillerKindSeller, pct); err == nil {
		t.Fatal("expected error for negative total")
	}
	if _, err := ComputeSplit(100, 150, enums.FulfillerKindSeller, pct); err == nil {
		t.Fatal("expected error for delivery above the total")
	}
	if _, err := ComputeSplit(100, -1, enums.FulfillerKindSeller, pct); err == nil {
		t.Fatal("expected error for negative delivery")
	}
	if _, err := ComputeSplit(100, 0, enums.FulfillerKindSeller, decimal.NewFromInt(-1)); err == nil {
		t.Fatal("expected error for negative commission rate")
	}
	if _, err := ComputeSplit(100, 0, enums.FulfillerKindSeller, decimal.NewFromInt(101)); err == nil {
		t.Fatal("expected error for commission rate above 100")
	}
	if _, err := ComputeSplit(100, 0, enums.FulfillerKind("courier"), pct); err == nil {
		t.Fatal("expected error for unknown fulfiller kind")
	}
}
