package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rafaelquintero/bazario-backend/pkg/enums"
)

// WalletAccount is a balance holder. The spendable balance must always equal
// the replay-sum of the holder's ledger entries; the wallet service's Apply
// is the only writer. CommissionCollectedCents is a bookkeeping counter on
// the platform row, distinct from its spendable balance.
type WalletAccount struct {
	ID                       uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	HolderKind               enums.HolderKind `gorm:"column:holder_kind;type:text;not null;uniqueIndex:idx_wallet_holder"`
	HolderID                 uuid.UUID        `gorm:"column:holder_id;type:uuid;not null;uniqueIndex:idx_wallet_holder"`
	BalanceCents             int64            `gorm:"column:balance_cents;not null;default:0"`
	CommissionCollectedCents int64            `gorm:"column:commission_collected_cents;not null;default:0"`
	CreatedAt                time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt                time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (a *WalletAccount) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
