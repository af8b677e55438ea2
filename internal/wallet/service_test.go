package wallet

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgdb "github.com/rafaelquintero/bazario-backend/pkg/db"
	"github.com/rafaelquintero/bazario-backend/pkg/db/models"
	"github.com/rafaelquintero/bazario-backend/pkg/enums"
	pkgerrors "github.com/rafaelquintero/bazario-backend/pkg/errors"
	"github.com/rafaelquintero/bazario-backend/pkg/pagination"
)

func setupWalletTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	accounts := `
CREATE TABLE IF NOT EXISTS wallet_accounts (
  id TEXT PRIMARY KEY,
  holder_kind TEXT NOT NULL,
  holder_id TEXT NOT NULL,
  balance_cents INTEGER NOT NULL DEFAULT 0,
  commission_collected_cents INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (holder_kind, holder_id)
);`
	entries := `
CREATE TABLE IF NOT EXISTS wallet_ledger_entries (
  id TEXT PRIMARY KEY,
  account_id TEXT NOT NULL,
  holder_kind TEXT NOT NULL,
  holder_id TEXT NOT NULL,
  direction TEXT NOT NULL,
  amount_cents INTEGER NOT NULL,
  balance_after_cents INTEGER NOT NULL,
  reason TEXT NOT NULL,
  order_id TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(accounts).Error)
	require.NoError(t, db.Exec(entries).Error)
	return db
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()

	svc, err := NewService(NewRepository(db), pkgdb.FromConn(db))
	require.NoError(t, err)
	return svc
}

func TestApplyCreditCreatesAccountLazily(t *testing.T) {
	db := setupWalletTestDB(t)
	svc := newTestService(t, db)
	holderID := uuid.New()

	entry, err := svc.Apply(context.Background(), db, ApplyInput{
		HolderKind:      enums.HolderKindCustomer,
		HolderID:        holderID,
		Direction:       enums.EntryDirectionCredit,
		AmountCents:     500,
		Reason:          ReasonDeposit,
		CreateIfMissing: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(500), entry.BalanceAfterCents)

	account, err := svc.Balance(context.Background(), enums.HolderKindCustomer, holderID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), account.BalanceCents)
}

func TestApplyWithoutAccountFails(t *testing.T) {
	db := setupWalletTestDB(t)
	svc := newTestService(t, db)

	_, err := svc.Apply(context.Background(), db, ApplyInput{
		HolderKind:  enums.HolderKindPlatform,
		HolderID:    uuid.New(),
		Direction:   enums.EntryDirectionCredit,
		AmountCents: 500,
		Reason:      ReasonCommission,
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeMissingAccount), "got %v", err)
}

func TestApplyDebitEnforcesFunds(t *testing.T) {
	db := setupWalletTestDB(t)
	svc := newTestService(t, db)
	holderID := uuid.New()

	_, err := svc.Deposit(context.Background(), enums.HolderKindCustomer, holderID, 300)
	require.NoError(t, err)

	_, err = svc.Apply(context.Background(), db, ApplyInput{
		HolderKind:  enums.HolderKindCustomer,
		HolderID:    holderID,
		Direction:   enums.EntryDirectionDebit,
		AmountCents: 400,
		Reason:      ReasonOrderPayment,
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientFunds), "got %v", err)

	// The rejected debit left no trace.
	account, err := svc.Balance(context.Background(), enums.HolderKindCustomer, holderID)
	require.NoError(t, err)
	assert.Equal(t, int64(300), account.BalanceCents)

	var count int64
	require.NoError(t, db.Model(&models.WalletLedgerEntry{}).
		Where("holder_id = ?", holderID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestApplyAllowNegativeSkipsTheGuard(t *testing.T) {
	db := setupWalletTestDB(t)
	svc := newTestService(t, db)
	holderID := uuid.New()

	_, err := svc.Deposit(context.Background(), enums.HolderKindSeller, holderID, 300)
	require.NoError(t, err)

	entry, err := svc.Apply(context.Background(), db, ApplyInput{
		HolderKind:    enums.HolderKindSeller,
		HolderID:      holderID,
		Direction:     enums.EntryDirectionDebit,
		AmountCents:   400,
		Reason:        ReasonEarningReversal,
		AllowNegative: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(-100), entry.BalanceAfterCents)
}

func TestApplyKeepsRunningBalance(t *testing.T) {
	db := setupWalletTestDB(t)
	svc := newTestService(t, db)
	holderID := uuid.New()

	amounts := []struct {
		direction enums.EntryDirection
		cents     int64
		after     int64
	}{
		{enums.EntryDirectionCredit, 1000, 1000},
		{enums.EntryDirectionDebit, 250, 750},
		{enums.EntryDirectionCredit, 50, 800},
		{enums.EntryDirectionDebit, 800, 0},
	}
	for i, step := range amounts {
		entry, err := svc.Apply(context.Background(), db, ApplyInput{
			HolderKind:      enums.HolderKindCustomer,
			HolderID:        holderID,
			Direction:       step.direction,
			AmountCents:     step.cents,
			Reason:          ReasonDeposit,
			CreateIfMissing: true,
		})
		require.NoError(t, err, "step %d", i)
		assert.Equal(t, step.after, entry.BalanceAfterCents, "step %d", i)
	}
}

func TestApplyAdjustsCommissionCounter(t *testing.T) {
	db := setupWalletTestDB(t)
	svc := newTestService(t, db)
	holderID := uuid.New()

	require.NoError(t, db.Create(&models.WalletAccount{
		HolderKind: enums.HolderKindPlatform,
		HolderID:   holderID,
	}).Error)

	_, err := svc.Apply(context.Background(), db, ApplyInput{
		HolderKind:           enums.HolderKindPlatform,
		HolderID:             holderID,
		Direction:            enums.EntryDirectionCredit,
		AmountCents:          163,
		Reason:               ReasonCommission,
		CommissionDeltaCents: 113,
	})
	require.NoError(t, err)

	account, err := svc.Balance(context.Background(), enums.HolderKindPlatform, holderID)
	require.NoError(t, err)
	assert.Equal(t, int64(163), account.BalanceCents)
	assert.Equal(t, int64(113), account.CommissionCollectedCents)
}

func TestApplyRejectsBadInput(t *testing.T) {
	db := setupWalletTestDB(t)
	svc := newTestService(t, db)

	cases := []ApplyInput{
		{HolderKind: "bank", HolderID: uuid.New(), Direction: enums.EntryDirectionCredit, AmountCents: 10, Reason: ReasonDeposit},
		{HolderKind: enums.HolderKindCustomer, Direction: enums.EntryDirectionCredit, AmountCents: 10, Reason: ReasonDeposit},
		{HolderKind: enums.HolderKindCustomer, HolderID: uuid.New(), Direction: "sideways", AmountCents: 10, Reason: ReasonDeposit},
		{HolderKind: enums.HolderKindCustomer, HolderID: uuid.New(), Direction: enums.EntryDirectionCredit, AmountCents: 0, Reason: ReasonDeposit},
		{HolderKind: enums.HolderKindCustomer, HolderID: uuid.New(), Direction: enums.EntryDirectionCredit, AmountCents: 10, Reason: "  "},
	}
	for i, input := range cases {
		_, err := svc.Apply(context.Background(), db, input)
		require.Error(t, err, "case %d", i)
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "case %d: got %v", i, err)
	}
}

func TestBalanceForUnknownHolderReadsZero(t *testing.T) {
	db := setupWalletTestDB(t)
	svc := newTestService(t, db)
	holderID := uuid.New()

	account, err := svc.Balance(context.Background(), enums.HolderKindSeller, holderID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), account.BalanceCents)
	assert.Equal(t, holderID, account.HolderID)
}

func TestWithdrawRoundTrip(t *testing.T) {
	db := setupWalletTestDB(t)
	svc := newTestService(t, db)
	holderID := uuid.New()

	_, err := svc.Deposit(context.Background(), enums.HolderKindSeller, holderID, 1000)
	require.NoError(t, err)

	entry, err := svc.Withdraw(context.Background(), enums.HolderKindSeller, holderID, 400)
	require.NoError(t, err)
	assert.Equal(t, int64(600), entry.BalanceAfterCents)
	assert.Equal(t, ReasonWithdrawal, entry.Reason)

	_, err = svc.Withdraw(context.Background(), enums.HolderKindSeller, holderID, 700)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientFunds), "got %v", err)
}

func TestEntriesForUnknownHolderIsEmpty(t *testing.T) {
	db := setupWalletTestDB(t)
	svc := newTestService(t, db)

	entries, next, err := svc.Entries(context.Background(), enums.HolderKindCustomer, uuid.New(), pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, next)
}
