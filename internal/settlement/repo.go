package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rafaelquintero/bazario-backend/pkg/db/models"
	"github.com/rafaelquintero/bazario-backend/pkg/enums"
)

// Repository owns the payment-status guards and transaction rows. The two
// conditional updates are the idempotency mechanism for settle and reverse.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	MarkOrderPaid(ctx context.Context, orderID uuid.UUID, commissionCents *int64, transactionID string) (bool, error)
	MarkOrderRefunded(ctx context.Context, orderID uuid.UUID) (bool, error)
	GetPaymentStatus(ctx context.Context, orderID uuid.UUID) (enums.PaymentStatus, error)
	CreateTransaction(ctx context.Context, txn *models.OrderTransaction) error
	MarkTransactionRefunded(ctx context.Context, orderID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a settlement repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// MarkOrderPaid flips unpaid to paid and snapshots the commission in one
// guarded UPDATE. Zero rows affected means another caller settled first.
func (r *repository) MarkOrderPaid(ctx context.Context, orderID uuid.UUID, commissionCents *int64, transactionID string) (bool, error) {
	updates := map[string]any{
		"payment_status": enums.PaymentStatusPaid,
		"updated_at":     time.Now().UTC(),
	}
	if commissionCents != nil {
		updates["admin_commission_cents"] = *commissionCents
	}
	if transactionID != "" {
		updates["transaction_id"] = transactionID
	}

	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", orderID, enums.PaymentStatusUnpaid).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkOrderRefunded flips paid to refunded. Zero rows affected means the
// order was never paid or was already reversed.
func (r *repository) MarkOrderRefunded(ctx context.Context, orderID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", orderID, enums.PaymentStatusPaid).
		Updates(map[string]any{
			"payment_status": enums.PaymentStatusRefunded,
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) GetPaymentStatus(ctx context.Context, orderID uuid.UUID) (enums.PaymentStatus, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Select("payment_status").
		Where("id = ?", orderID).
		First(&order).Error; err != nil {
		return "", err
	}
	return order.PaymentStatus, nil
}

func (r *repository) CreateTransaction(ctx context.Context, txn *models.OrderTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) MarkTransactionRefunded(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderTransaction{}).
		Where("order_id = ?", orderID).
		Updates(map[string]any{
			"status":     enums.TransactionStatusRefunded,
			"updated_at": time.Now().UTC(),
		}).Error
}
