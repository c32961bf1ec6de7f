package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	CreateTransaction(ctx context.Context, txn *Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	GetByExternalRef(ctx context.Context, ref string) (*Transaction, error)
	SetExternalRef(ctx context.Context, id uuid.UUID, ref string) error

	// ClaimCompleted flips PENDING -> COMPLETED atomically and reports
	// whether this caller won the transition. Losing the claim is not an
	// error; it means another finalizer got there first.
	ClaimCompleted(ctx context.Context, id uuid.UUID) (bool, error)
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) (bool, error)
	LinkBooking(ctx context.Context, id, bookingID uuid.UUID) error

	FindStalePending(ctx context.Context, olderThan time.Time) ([]Transaction, error)

	// ListPending returns transactions awaiting resolution: PENDING ones
	// plus COMPLETED ones whose booking was never linked.
	ListPending(ctx context.Context, query PendingListQuery) ([]Transaction, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateTransaction(ctx context.Context, txn *Transaction) error {
	if err := r.db.WithContext(ctx).Create(txn).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	var txn Transaction
	err := r.db.WithContext(ctx).First(&txn, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &txn, nil
}

func (r *repository) GetByExternalRef(ctx context.Context, ref string) (*Transaction, error) {
	var txn Transaction
	err := r.db.WithContext(ctx).First(&txn, "external_ref = ?", ref).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction by external ref: %w", err)
	}
	return &txn, nil
}

func (r *repository) SetExternalRef(ctx context.Context, id uuid.UUID, ref string) error {
	result := r.db.WithContext(ctx).Model(&Transaction{}).
		Where("id = ?", id).
		Update("external_ref", ref)
	if result.Error != nil {
		return fmt.Errorf("failed to set external ref: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

func (r *repository) ClaimCompleted(ctx context.Context, id uuid.UUID) (bool, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&Transaction{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(map[string]interface{}{
			"status":       StatusCompleted,
			"processed_at": now,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to complete transaction: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) (bool, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&Transaction{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(map[string]interface{}{
			"status":         StatusFailed,
			"failure_reason": reason,
			"processed_at":   now,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark transaction failed: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) LinkBooking(ctx context.Context, id, bookingID uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&Transaction{}).
		Where("id = ?", id).
		Update("booking_id", bookingID)
	if result.Error != nil {
		return fmt.Errorf("failed to link booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

func (r *repository) FindStalePending(ctx context.Context, olderThan time.Time) ([]Transaction, error) {
	var txns []Transaction
	err := r.db.WithContext(ctx).
		Where("status = ? AND method IN ? AND created_at < ?",
			StatusPending, []Method{MethodRazorpay, MethodEKQR}, olderThan).
		Order("created_at ASC").
		Find(&txns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find stale pending transactions: %w", err)
	}
	return txns, nil
}

func (r *repository) ListPending(ctx context.Context, query PendingListQuery) ([]Transaction, int64, error) {
	// Completed transactions that never got a booking linked need operator
	// attention too; they are only reachable through this list.
	db := r.db.WithContext(ctx).Model(&Transaction{}).
		Where("(status = ? OR (status = ? AND booking_id IS NULL))", StatusPending, StatusCompleted)

	if query.Method != "" {
		db = db.Where("method = ?", query.Method)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count pending transactions: %w", err)
	}

	offset := (query.Page - 1) * query.Limit
	var txns []Transaction
	err := db.Order("created_at ASC").Offset(offset).Limit(query.Limit).Find(&txns).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list pending transactions: %w", err)
	}
	return txns, total, nil
}
