package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rafaelquintero/bazario-backend/pkg/enums"
)

// Order is the order aggregate header. Money columns are snapshotted at
// creation and never recomputed from live catalog data; the only mutations
// allowed afterwards go through the order state machine.
type Order struct {
	ID                   uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber          int64               `gorm:"column:order_number;not null;uniqueIndex"`
	CustomerID           uuid.UUID           `gorm:"column:customer_id;type:uuid;not null"`
	FulfillerKind        enums.FulfillerKind `gorm:"column:fulfiller_kind;type:text;not null"`
	SellerID             *uuid.UUID          `gorm:"column:seller_id;type:uuid"`
	Status               enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentStatus        enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'unpaid'"`
	PaymentMethod        enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	TotalCents           int64               `gorm:"column:total_cents;not null"`
	DeliveryCents        int64               `gorm:"column:delivery_cents;not null;default:0"`
	CouponCents          int64               `gorm:"column:coupon_cents;not null;default:0"`
	AdminCommissionCents *int64              `gorm:"column:admin_commission_cents"`
	TransactionID        *string             `gorm:"column:transaction_id"`
	ShippingAddress      string              `gorm:"column:shipping_address;not null"`
	Items                []OrderLineItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	DeliveredAt          *time.Time          `gorm:"column:delivered_at"`
	CancelledAt          *time.Time          `gorm:"column:cancelled_at"`
	ReturnedAt           *time.Time          `gorm:"column:returned_at"`
	CreatedAt            time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
