package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rafaelquintero/bazario-backend/pkg/enums"
)

// ReturnRequest is a customer's post-delivery refund request. Only an
// admin resolution to returned moves money; approved/denied are
// administrative annotations.
type ReturnRequest struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID          `gorm:"column:order_id;type:uuid;not null;index"`
	CustomerID    uuid.UUID          `gorm:"column:customer_id;type:uuid;not null;index"`
	SellerID      *uuid.UUID         `gorm:"column:seller_id;type:uuid;index"`
	Reason        string             `gorm:"column:reason;not null"`
	Description   *string            `gorm:"column:description"`
	ProofImages   []string           `gorm:"column:proof_images;type:jsonb;serializer:json"`
	Status        enums.ReturnStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	AdminResponse *string            `gorm:"column:admin_response"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (r *ReturnRequest) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
