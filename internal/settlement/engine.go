package settlement

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rafaelquintero/bazario-backend/internal/wallet"
	"github.com/rafaelquintero/bazario-backend/pkg/config"
	"github.com/rafaelquintero/bazario-backend/pkg/db/models"
	"github.com/rafaelquintero/bazario-backend/pkg/enums"
	apperrors "github.com/rafaelquintero/bazario-backend/pkg/errors"
	"github.com/rafaelquintero/bazario-backend/pkg/logger"
	"github.com/rafaelquintero/bazario-backend/pkg/metrics"
)

// Reversal triggers, recorded on metrics.
const (
	TriggerCancel = "cancel"
	TriggerReturn = "return"
)

// Engine moves money for an order exactly once in each direction. Both
// operations run inside the caller's transaction; the payment-status guard
// makes retries and concurrent calls safe.
type Engine interface {
	Settle(ctx context.Context, tx *gorm.DB, order *models.Order, externalTxnID string) (*Split, error)
	Reverse(ctx context.Context, tx *gorm.DB, order *models.Order, trigger string) error
}

type engine struct {
	repo     Repository
	wallets  wallet.Service
	business config.BusinessConfig
	metrics  *metrics.SettlementMetrics
	logg     *logger.Logger
}

// NewEngine wires a settlement engine.
func NewEngine(repo Repository, wallets wallet.Service, business config.BusinessConfig, m *metrics.SettlementMetrics, logg *logger.Logger) (Engine, error) {
	if repo == nil {
		return nil, fmt.Errorf("settlement repository required")
	}
	if wallets == nil {
		return nil, fmt.Errorf("wallet service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &engine{
		repo:     repo,
		wallets:  wallets,
		business: business,
		metrics:  m,
		logg:     logg,
	}, nil
}

func (e *engine) Settle(ctx context.Context, tx *gorm.DB, order *models.Order, externalTxnID string) (*Split, error) {
	if order == nil {
		return nil, fmt.Errorf("order is required")
	}
	if order.FulfillerKind == enums.FulfillerKindSeller && order.SellerID == nil {
		return nil, fmt.Errorf("seller order %s has no seller id", order.ID)
	}

	split, err := ComputeSplit(order.TotalCents, order.DeliveryCents, order.FulfillerKind, e.business.Commission())
	if err != nil {
		return nil, fmt.Errorf("computing split: %w", err)
	}

	repo := e.repo.WithTx(tx)

	var commission *int64
	if order.FulfillerKind == enums.FulfillerKindSeller {
		commission = &split.CommissionCents
	}

	ok, err := repo.MarkOrderPaid(ctx, order.ID, commission, externalTxnID)
	if err != nil {
		return nil, fmt.Errorf("marking order paid: %w", err)
	}
	if !ok {
		e.metrics.IncRejected("already_settled")
		return nil, apperrors.New(apperrors.CodeAlreadySettled, fmt.Sprintf("order %s is already settled", order.ID))
	}

	switch order.FulfillerKind {
	case enums.FulfillerKindSeller:
		if split.SellerCents > 0 {
			if _, err := e.wallets.Apply(ctx, tx, wallet.ApplyInput{
				HolderKind:      enums.HolderKindSeller,
				HolderID:        *order.SellerID,
				Direction:       enums.EntryDirectionCredit,
				AmountCents:     split.SellerCents,
				Reason:          wallet.ReasonSellerEarning,
				OrderID:         &order.ID,
				CreateIfMissing: true,
			}); err != nil {
				return nil, fmt.Errorf("crediting seller: %w", err)
			}
		}
		if split.PlatformCents > 0 {
			if _, err := e.wallets.Apply(ctx, tx, wallet.ApplyInput{
				HolderKind:           enums.HolderKindPlatform,
				HolderID:             e.business.PlatformHolderID(),
				Direction:            enums.EntryDirectionCredit,
				AmountCents:          split.PlatformCents,
				Reason:               wallet.ReasonCommission,
				OrderID:              &order.ID,
				CommissionDeltaCents: split.CommissionCents,
			}); err != nil {
				return nil, fmt.Errorf("crediting platform: %w", err)
			}
		}
	case enums.FulfillerKindPlatform:
		if _, err := e.wallets.Apply(ctx, tx, wallet.ApplyInput{
			HolderKind:  enums.HolderKindPlatform,
			HolderID:    e.business.PlatformHolderID(),
			Direction:   enums.EntryDirectionCredit,
			AmountCents: split.PlatformCents,
			Reason:      wallet.ReasonPlatformEarning,
			OrderID:     &order.ID,
		}); err != nil {
			return nil, fmt.Errorf("crediting platform: %w", err)
		}
	}

	txn := &models.OrderTransaction{
		OrderID:     order.ID,
		PaidByID:    order.CustomerID,
		PaidToKind:  paidToKind(order.FulfillerKind),
		PaidToID:    e.paidToID(order),
		AmountCents: order.TotalCents,
		Status:      enums.TransactionStatusPaid,
	}
	if err := repo.CreateTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("recording transaction: %w", err)
	}

	order.PaymentStatus = enums.PaymentStatusPaid
	order.AdminCommissionCents = commission

	e.metrics.IncSettlement(order.FulfillerKind.String())
	e.logg.Info(e.logg.WithOrderID(ctx, order.ID.String()), "order settled")
	return &split, nil
}

func (e *engine) Reverse(ctx context.Context, tx *gorm.DB, order *models.Order, trigger string) error {
	if order == nil {
		return fmt.Errorf("order is required")
	}

	repo := e.repo.WithTx(tx)

	ok, err := repo.MarkOrderRefunded(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("marking order refunded: %w", err)
	}
	if !ok {
		status, statusErr := repo.GetPaymentStatus(ctx, order.ID)
		if statusErr != nil {
			return fmt.Errorf("reading payment status: %w", statusErr)
		}
		if status == enums.PaymentStatusRefunded {
			e.metrics.IncRejected("already_reversed")
			return apperrors.New(apperrors.CodeAlreadyReversed, fmt.Sprintf("order %s is already reversed", order.ID))
		}
		e.metrics.IncRejected("reverse_unpaid")
		return apperrors.New(apperrors.CodeStateConflict, fmt.Sprintf("order %s was never settled", order.ID))
	}

	switch order.FulfillerKind {
	case enums.FulfillerKindSeller:
		if order.SellerID == nil {
			return fmt.Errorf("seller order %s has no seller id", order.ID)
		}
		// The snapshot written at settle time, never recomputed.
		if order.AdminCommissionCents == nil {
			return fmt.Errorf("settled order %s missing commission snapshot", order.ID)
		}
		commission := *order.AdminCommissionCents
		sellerCents := order.TotalCents - order.DeliveryCents - commission
		platformCents := commission + order.DeliveryCents

		if sellerCents > 0 {
			if _, err := e.wallets.Apply(ctx, tx, wallet.ApplyInput{
				HolderKind:    enums.HolderKindSeller,
				HolderID:      *order.SellerID,
				Direction:     enums.EntryDirectionDebit,
				AmountCents:   sellerCents,
				Reason:        wallet.ReasonEarningReversal,
				OrderID:       &order.ID,
				AllowNegative: true,
			}); err != nil {
				return fmt.Errorf("debiting seller: %w", err)
			}
		}
		if platformCents > 0 {
			if _, err := e.wallets.Apply(ctx, tx, wallet.ApplyInput{
				HolderKind:           enums.HolderKindPlatform,
				HolderID:             e.business.PlatformHolderID(),
				Direction:            enums.EntryDirectionDebit,
				AmountCents:          platformCents,
				Reason:               wallet.ReasonCommissionRefund,
				OrderID:              &order.ID,
				AllowNegative:        true,
				CommissionDeltaCents: -commission,
			}); err != nil {
				return fmt.Errorf("debiting platform: %w", err)
			}
		}
	case enums.FulfillerKindPlatform:
		if _, err := e.wallets.Apply(ctx, tx, wallet.ApplyInput{
			HolderKind:    enums.HolderKindPlatform,
			HolderID:      e.business.PlatformHolderID(),
			Direction:     enums.EntryDirectionDebit,
			AmountCents:   order.TotalCents,
			Reason:        wallet.ReasonEarningReversal,
			OrderID:       &order.ID,
			AllowNegative: true,
		}); err != nil {
			return fmt.Errorf("debiting platform: %w", err)
		}
	}

	// Refunds always land on the customer wallet, regardless of how the
	// order was originally paid.
	if _, err := e.wallets.Apply(ctx, tx, wallet.ApplyInput{
		HolderKind:      enums.HolderKindCustomer,
		HolderID:        order.CustomerID,
		Direction:       enums.EntryDirectionCredit,
		AmountCents:     order.TotalCents,
		Reason:          wallet.ReasonRefund,
		OrderID:         &order.ID,
		CreateIfMissing: true,
	}); err != nil {
		return fmt.Errorf("crediting customer refund: %w", err)
	}

	if err := repo.MarkTransactionRefunded(ctx, order.ID); err != nil {
		return fmt.Errorf("marking transaction refunded: %w", err)
	}

	order.PaymentStatus = enums.PaymentStatusRefunded

	e.metrics.IncReversal(trigger)
	e.logg.Info(e.logg.WithOrderID(ctx, order.ID.String()), "order settlement reversed")
	return nil
}

func paidToKind(fulfiller enums.FulfillerKind) enums.HolderKind {
	if fulfiller == enums.FulfillerKindSeller {
		return enums.HolderKindSeller
	}
	return enums.HolderKindPlatform
}

func (e *engine) paidToID(order *models.Order) uuid.UUID {
	if order.FulfillerKind == enums.FulfillerKindSeller && order.SellerID != nil {
		return *order.SellerID
	}
	return e.business.PlatformHolderID()
}
