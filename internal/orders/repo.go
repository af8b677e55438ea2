package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rafaelquintero/bazario-backend/pkg/db/models"
	"github.com/rafaelquintero/bazario-backend/pkg/enums"
)

// Repository manages persistence for orders and their line items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, scope ListScope, before *time.Time, beforeID *uuid.UUID, limit int) ([]models.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus) (bool, error)
	NextOrderNumber(ctx context.Context) (int64, error)
}

// ListScope restricts a listing to one perspective. Exactly one of CustomerID
// or SellerID is set for non-admin callers.
type ListScope struct {
	CustomerID *uuid.UUID
	SellerID   *uuid.UUID
	Status     *enums.OrderStatus
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an orders repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, scope ListScope, before *time.Time, beforeID *uuid.UUID, limit int) ([]models.Order, error) {
	query := r.db.WithContext(ctx).
		Preload("Items").
		Order("created_at DESC, id DESC").
		Limit(limit)
	if scope.CustomerID != nil {
		query = query.Where("customer_id = ?", *scope.CustomerID)
	}
	if scope.SellerID != nil {
		query = query.Where("seller_id = ?", *scope.SellerID)
	}
	if scope.Status != nil {
		query = query.Where("status = ?", *scope.Status)
	}
	if before != nil && beforeID != nil {
		query = query.Where("(created_at, id) < (?, ?)", *before, *beforeID)
	}

	var list []models.Order
	if err := query.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateStatus performs the guarded lifecycle write. The WHERE on the current
// status makes concurrent transitions lose cleanly with zero rows affected.
func (r *repository) UpdateStatus(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus) (bool, error) {
	now := time.Now().UTC()
	updates := map[string]any{
		"status":     to,
		"updated_at": now,
	}
	switch to {
	case enums.OrderStatusDelivered:
		updates["delivered_at"] = now
	case enums.OrderStatusCancelled:
		updates["cancelled_at"] = now
	case enums.OrderStatusReturned:
		updates["returned_at"] = now
	}

	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) NextOrderNumber(ctx context.Context) (int64, error) {
	var number int64
	if err := r.db.WithContext(ctx).
		Raw("SELECT nextval('order_number_seq')").
		Scan(&number).Error; err != nil {
		return 0, err
	}
	return number, nil
}
