package returns

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rafaelquintero/bazario-backend/pkg/db/models"
	"github.com/rafaelquintero/bazario-backend/pkg/enums"
)

// Repository manages persistence for return requests.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, request *models.ReturnRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ReturnRequest, error)
	HasOpenRequest(ctx context.Context, orderID, customerID uuid.UUID) (bool, error)
	List(ctx context.Context, scope ListScope, before *time.Time, beforeID *uuid.UUID, limit int) ([]models.ReturnRequest, error)
	Resolve(ctx context.Context, id uuid.UUID, status enums.ReturnStatus, adminResponse string) (bool, error)
}

// ListScope restricts a listing to one perspective.
type ListScope struct {
	CustomerID *uuid.UUID
	SellerID   *uuid.UUID
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a returns repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, request *models.ReturnRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.ReturnRequest, error) {
	var request models.ReturnRequest
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) HasOpenRequest(ctx context.Context, orderID, customerID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ReturnRequest{}).
		Where("order_id = ? AND customer_id = ? AND status <> ?", orderID, customerID, enums.ReturnStatusReturned).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) List(ctx context.Context, scope ListScope, before *time.Time, beforeID *uuid.UUID, limit int) ([]models.ReturnRequest, error) {
	query := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if scope.CustomerID != nil {
		query = query.Where("customer_id = ?", *scope.CustomerID)
	}
	if scope.SellerID != nil {
		query = query.Where("seller_id = ?", *scope.SellerID)
	}
	if before != nil && beforeID != nil {
		query = query.Where("(created_at, id) < (?, ?)", *before, *beforeID)
	}

	var list []models.ReturnRequest
	if err := query.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Resolve writes the decision with a guard that excludes already-returned
// requests, so the money-moving decision can only land once.
func (r *repository) Resolve(ctx context.Context, id uuid.UUID, status enums.ReturnStatus, adminResponse string) (bool, error) {
	updates := map[string]any{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	if adminResponse != "" {
		updates["admin_response"] = adminResponse
	}

	res := r.db.WithContext(ctx).
		Model(&models.ReturnRequest{}).
		Where("id = ? AND status <> ?", id, enums.ReturnStatusReturned).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
