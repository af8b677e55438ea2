package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rafaelquintero/bazario-backend/pkg/db"
	"github.com/rafaelquintero/bazario-backend/pkg/db/models"
	"github.com/rafaelquintero/bazario-backend/pkg/enums"
	apperrors "github.com/rafaelquintero/bazario-backend/pkg/errors"
	"github.com/rafaelquintero/bazario-backend/pkg/pagination"
)

// Reasons recorded on ledger entries. The reason plus the order reference is
// what makes the ledger replayable for audits.
const (
	ReasonOrderPayment     = "order_payment"
	ReasonSellerEarning    = "seller_earning"
	ReasonPlatformEarning  = "platform_earning"
	ReasonCommission       = "commission"
	ReasonRefund           = "refund"
	ReasonEarningReversal  = "earning_reversal"
	ReasonCommissionRefund = "commission_reversal"
	ReasonWithdrawal       = "withdrawal"
	ReasonDeposit          = "deposit"
)

// Service defines wallet operations. Apply is the only balance mutator in the
// codebase; every other money movement goes through it.
type Service interface {
	Apply(ctx context.Context, tx *gorm.DB, input ApplyInput) (*models.WalletLedgerEntry, error)
	Balance(ctx context.Context, kind enums.HolderKind, holderID uuid.UUID) (*models.WalletAccount, error)
	Entries(ctx context.Context, kind enums.HolderKind, holderID uuid.UUID, page pagination.Params) ([]models.WalletLedgerEntry, string, error)
	Withdraw(ctx context.Context, kind enums.HolderKind, holderID uuid.UUID, amountCents int64) (*models.WalletLedgerEntry, error)
	Deposit(ctx context.Context, kind enums.HolderKind, holderID uuid.UUID, amountCents int64) (*models.WalletLedgerEntry, error)
}

// ApplyInput describes a single ledger movement.
type ApplyInput struct {
	HolderKind  enums.HolderKind
	HolderID    uuid.UUID
	Direction   enums.EntryDirection
	AmountCents int64
	Reason      string
	OrderID     *uuid.UUID

	// AllowNegative permits a debit to push the balance below zero. Reversals
	// set this; a refund must never be clamped because the holder spent the
	// settled funds already.
	AllowNegative bool

	// CreateIfMissing lazily opens the account on first movement. Customer and
	// seller accounts are created this way; the platform account must already
	// exist.
	CreateIfMissing bool

	// CommissionDeltaCents additionally adjusts the account's lifetime
	// commission counter. Only the platform account uses this.
	CommissionDeltaCents int64
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService wires a wallet service with the provided repository and tx runner.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) Apply(ctx context.Context, tx *gorm.DB, input ApplyInput) (*models.WalletLedgerEntry, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	repo := s.repo.WithTx(tx)

	account, err := s.ensureAccount(ctx, repo, input)
	if err != nil {
		return nil, err
	}

	delta := input.AmountCents
	if input.Direction == enums.EntryDirectionDebit {
		delta = -input.AmountCents
	}

	if input.Direction == enums.EntryDirectionDebit && !input.AllowNegative {
		ok, err := repo.AdjustBalanceGuarded(ctx, account.ID, delta)
		if err != nil {
			return nil, fmt.Errorf("adjusting balance: %w", err)
		}
		if !ok {
			return nil, apperrors.New(apperrors.CodeInsufficientFunds, "wallet balance is insufficient")
		}
	} else {
		if err := repo.AdjustBalance(ctx, account.ID, delta); err != nil {
			return nil, fmt.Errorf("adjusting balance: %w", err)
		}
	}

	if input.CommissionDeltaCents != 0 {
		if err := repo.AddCommissionCollected(ctx, account.ID, input.CommissionDeltaCents); err != nil {
			return nil, fmt.Errorf("adjusting commission counter: %w", err)
		}
	}

	// Re-read inside the same tx so balance_after reflects this movement.
	updated, err := repo.GetAccountByID(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("reloading account: %w", err)
	}

	entry := &models.WalletLedgerEntry{
		AccountID:         account.ID,
		HolderKind:        input.HolderKind,
		HolderID:          input.HolderID,
		Direction:         input.Direction,
		AmountCents:       input.AmountCents,
		BalanceAfterCents: updated.BalanceCents,
		Reason:            input.Reason,
		OrderID:           input.OrderID,
	}
	if err := repo.CreateEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("recording ledger entry: %w", err)
	}
	return entry, nil
}

func (s *service) ensureAccount(ctx context.Context, repo Repository, input ApplyInput) (*models.WalletAccount, error) {
	account, err := repo.GetAccountByHolder(ctx, input.HolderKind, input.HolderID)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("looking up wallet account: %w", err)
	}
	if !input.CreateIfMissing {
		return nil, apperrors.New(apperrors.CodeMissingAccount,
			fmt.Sprintf("wallet account for %s %s does not exist", input.HolderKind, input.HolderID))
	}

	created := &models.WalletAccount{
		HolderKind: input.HolderKind,
		HolderID:   input.HolderID,
	}
	if err := repo.CreateAccount(ctx, created); err != nil {
		// Lost the creation race; the winner's row is the account.
		if db.IsUniqueViolation(err, "") {
			return repo.GetAccountByHolder(ctx, input.HolderKind, input.HolderID)
		}
		return nil, fmt.Errorf("creating wallet account: %w", err)
	}
	return created, nil
}

func (s *service) Balance(ctx context.Context, kind enums.HolderKind, holderID uuid.UUID) (*models.WalletAccount, error) {
	if !kind.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid holder kind %q", kind))
	}
	if holderID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "holder id is required")
	}

	account, err := s.repo.GetAccountByHolder(ctx, kind, holderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// An account with no movements reads as a zero balance.
			return &models.WalletAccount{HolderKind: kind, HolderID: holderID}, nil
		}
		return nil, fmt.Errorf("looking up wallet account: %w", err)
	}
	return account, nil
}

func (s *service) Entries(ctx context.Context, kind enums.HolderKind, holderID uuid.UUID, page pagination.Params) ([]models.WalletLedgerEntry, string, error) {
	if !kind.IsValid() {
		return nil, "", apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid holder kind %q", kind))
	}
	if holderID == uuid.Nil {
		return nil, "", apperrors.New(apperrors.CodeValidation, "holder id is required")
	}

	account, err := s.repo.GetAccountByHolder(ctx, kind, holderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []models.WalletLedgerEntry{}, "", nil
		}
		return nil, "", fmt.Errorf("looking up wallet account: %w", err)
	}

	cursor, err := pagination.ParseCursor(page.Cursor)
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(page.Limit)

	var entries []models.WalletLedgerEntry
	if cursor != nil {
		entries, err = s.repo.ListEntries(ctx, account.ID, &cursor.CreatedAt, &cursor.ID, limit+1)
	} else {
		entries, err = s.repo.ListEntries(ctx, account.ID, nil, nil, limit+1)
	}
	if err != nil {
		return nil, "", fmt.Errorf("listing ledger entries: %w", err)
	}

	next := ""
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return entries, next, nil
}

func (s *service) Withdraw(ctx context.Context, kind enums.HolderKind, holderID uuid.UUID, amountCents int64) (*models.WalletLedgerEntry, error) {
	if amountCents <= 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "withdrawal amount must be positive")
	}

	var entry *models.WalletLedgerEntry
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var applyErr error
		entry, applyErr = s.Apply(ctx, tx, ApplyInput{
			HolderKind:  kind,
			HolderID:    holderID,
			Direction:   enums.EntryDirectionDebit,
			AmountCents: amountCents,
			Reason:      ReasonWithdrawal,
		})
		return applyErr
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) Deposit(ctx context.Context, kind enums.HolderKind, holderID uuid.UUID, amountCents int64) (*models.WalletLedgerEntry, error) {
	if amountCents <= 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "deposit amount must be positive")
	}

	var entry *models.WalletLedgerEntry
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var applyErr error
		entry, applyErr = s.Apply(ctx, tx, ApplyInput{
			HolderKind:      kind,
			HolderID:        holderID,
			Direction:       enums.EntryDirectionCredit,
			AmountCents:     amountCents,
			Reason:          ReasonDeposit,
			CreateIfMissing: true,
		})
		return applyErr
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (input ApplyInput) validate() error {
	if !input.HolderKind.IsValid() {
		return apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid holder kind %q", input.HolderKind))
	}
	if input.HolderID == uuid.Nil {
		return apperrors.New(apperrors.CodeValidation, "holder id is required")
	}
	if !input.Direction.IsValid() {
		return apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid entry direction %q", input.Direction))
	}
	if input.AmountCents <= 0 {
		return apperrors.New(apperrors.CodeValidation, "amount must be positive")
	}
	if strings.TrimSpace(input.Reason) == "" {
		return apperrors.New(apperrors.CodeValidation, "reason is required")
	}
	return nil
}
