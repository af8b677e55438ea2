package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rafaelquintero/bazario-backend/pkg/enums"
)

// WalletLedgerEntry records one immutable credit or debit against a wallet
// account, with the holder's balance immediately after it was applied.
// Entries are append-only; they are never edited or deleted.
type WalletLedgerEntry struct {
	ID                uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID         uuid.UUID            `gorm:"column:account_id;type:uuid;not null;index"`
	HolderKind        enums.HolderKind     `gorm:"column:holder_kind;type:text;not null"`
	HolderID          uuid.UUID            `gorm:"column:holder_id;type:uuid;not null;index"`
	Direction         enums.EntryDirection `gorm:"column:direction;type:text;not null"`
	AmountCents       int64                `gorm:"column:amount_cents;not null"`
	BalanceAfterCents int64                `gorm:"column:balance_after_cents;not null"`
	Reason            string               `gorm:"column:reason;not null"`
	OrderID           *uuid.UUID           `gorm:"column:order_id;type:uuid;index"`
	CreatedAt         time.Time            `gorm:"column:created_at;autoCreateTime"`
}

func (e *WalletLedgerEntry) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
