package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is the catalog row read at order placement. A nil SellerID means
// the platform fulfills the product itself. Catalog management is owned by
// another service; this model is read-only here.
type Product struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID      *uuid.UUID `gorm:"column:seller_id;type:uuid;index"`
	Name          string     `gorm:"column:name;not null"`
	PriceCents    int64      `gorm:"column:price_cents;not null"`
	TaxCents      int64      `gorm:"column:tax_cents;not null;default:0"`
	DiscountCents int64      `gorm:"column:discount_cents;not null;default:0"`
	ThumbnailURL  string     `gorm:"column:thumbnail_url"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
