package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rafaelquintero/bazario-backend/pkg/enums"
)

// OrderTransaction is the order-level payment record written at settlement:
// who paid, who was paid, and for how much.
type OrderTransaction struct {
	ID          uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID               `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	PaidByID    uuid.UUID               `gorm:"column:paid_by_id;type:uuid;not null"`
	PaidToKind  enums.HolderKind        `gorm:"column:paid_to_kind;type:text;not null"`
	PaidToID    uuid.UUID               `gorm:"column:paid_to_id;type:uuid;not null"`
	AmountCents int64                   `gorm:"column:amount_cents;not null"`
	Status      enums.TransactionStatus `gorm:"column:status;type:text;not null"`
	CreatedAt   time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

func (t *OrderTransaction) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
