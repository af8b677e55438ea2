package wallet

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rafaelquintero/bazario-backend/pkg/db/models"
	"github.com/rafaelquintero/bazario-backend/pkg/enums"
)

// Repository manages persistence for wallet accounts and their ledger entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetAccountByHolder(ctx context.Context, kind enums.HolderKind, holderID uuid.UUID) (*models.WalletAccount, error)
	GetAccountByID(ctx context.Context, id uuid.UUID) (*models.WalletAccount, error)
	CreateAccount(ctx context.Context, account *models.WalletAccount) error
	AdjustBalance(ctx context.Context, accountID uuid.UUID, deltaCents int64) error
	AdjustBalanceGuarded(ctx context.Context, accountID uuid.UUID, deltaCents int64) (bool, error)
	AddCommissionCollected(ctx context.Context, accountID uuid.UUID, deltaCents int64) error
	CreateEntry(ctx context.Context, entry *models.WalletLedgerEntry) error
	ListEntries(ctx context.Context, accountID uuid.UUID, before *time.Time, beforeID *uuid.UUID, limit int) ([]models.WalletLedgerEntry, error)
	ListEntriesByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.WalletLedgerEntry, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a wallet repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) GetAccountByHolder(ctx context.Context, kind enums.HolderKind, holderID uuid.UUID) (*models.WalletAccount, error) {
	var account models.WalletAccount
	if err := r.db.WithContext(ctx).
		Where("holder_kind = ? AND holder_id = ?", kind, holderID).
		First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) GetAccountByID(ctx context.Context, id uuid.UUID) (*models.WalletAccount, error) {
	var account models.WalletAccount
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) CreateAccount(ctx context.Context, account *models.WalletAccount) error {
	return r.db.WithContext(ctx).Create(account).Error
}

// AdjustBalance applies the delta in a single UPDATE so the row write is
// atomic and holds the row lock until the surrounding tx commits.
func (r *repository) AdjustBalance(ctx context.Context, accountID uuid.UUID, deltaCents int64) error {
	return r.db.WithContext(ctx).
		Model(&models.WalletAccount{}).
		Where("id = ?", accountID).
		UpdateColumn("balance_cents", gorm.Expr("balance_cents + ?", deltaCents)).Error
}

// AdjustBalanceGuarded applies the delta only when the resulting balance stays
// non-negative. Returns false when the guard rejected the update.
func (r *repository) AdjustBalanceGuarded(ctx context.Context, accountID uuid.UUID, deltaCents int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.WalletAccount{}).
		Where("id = ? AND balance_cents + ? >= 0", accountID, deltaCents).
		UpdateColumn("balance_cents", gorm.Expr("balance_cents + ?", deltaCents))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) AddCommissionCollected(ctx context.Context, accountID uuid.UUID, deltaCents int64) error {
	return r.db.WithContext(ctx).
		Model(&models.WalletAccount{}).
		Where("id = ?", accountID).
		UpdateColumn("commission_collected_cents", gorm.Expr("commission_collected_cents + ?", deltaCents)).Error
}

func (r *repository) CreateEntry(ctx context.Context, entry *models.WalletLedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListEntries(ctx context.Context, accountID uuid.UUID, before *time.Time, beforeID *uuid.UUID, limit int) ([]models.WalletLedgerEntry, error) {
	query := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if before != nil && beforeID != nil {
		query = query.Where("(created_at, id) < (?, ?)", *before, *beforeID)
	}

	var entries []models.WalletLedgerEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) ListEntriesByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.WalletLedgerEntry, error) {
	var entries []models.WalletLedgerEntry
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
