package repositories

import (
	"context"
	"errors"
	"fmt"

	"pasar/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentRepository defines the interface for payment records.
type PaymentRepository interface {
	GetByOrder(ctx context.Context, orderID string) (*models.Payment, error)
	UpsertPending(ctx context.Context, payment *models.Payment) error
	MarkSucceeded(ctx context.Context, externalID, orderID string) (payment *models.Payment, applied bool, err error)
	MarkFailed(ctx context.Context, externalID, orderID string) (*models.Payment, error)
}

// GORMPaymentRepository is a GORM implementation of PaymentRepository.
type GORMPaymentRepository struct {
	db *gorm.DB
}

// NewGORMPaymentRepository creates a new instance of GORMPaymentRepository.
func NewGORMPaymentRepository(db *gorm.DB) *GORMPaymentRepository {
	return &GORMPaymentRepository{db: db}
}

// GetByOrder retrieves the payment of an order.
func (r *GORMPaymentRepository) GetByOrder(ctx context.Context, orderID string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).First(&payment, "order_id = ?", orderID).Error; err != nil {
		return nil, fmt.Errorf("payment of order %s: %w", orderID, translate(err))
	}
	return &payment, nil
}

// UpsertPending stores a new processor payment for the order, replacing an
// earlier unpaid attempt.
func (r *GORMPaymentRepository) UpsertPending(ctx context.Context, payment *models.Payment) error {
	payment.Status = models.PaymentPending
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"provider", "method", "external_id", "amount", "currency", "status", "updated_at"}),
	}).Create(payment).Error
	if err != nil {
		return fmt.Errorf("failed to store payment: %w", err)
	}
	return nil
}

// findForEvent loads the payment a processor event refers to. An intent that
// no longer matches external_id (the customer paid with an earlier intent of
// the same order) falls back to the order's payment row.
func findForEvent(tx *gorm.DB, payment *models.Payment, externalID, orderID string) error {
	err := tx.First(payment, "external_id = ?", externalID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) && orderID != "" {
		err = tx.First(payment, "order_id = ?", orderID).Error
	}
	if err != nil {
		return fmt.Errorf("payment %s: %w", externalID, translate(err))
	}
	return nil
}

// MarkSucceeded records the intent that paid and sets the payment PAID,
// moving a PENDING order to PROCESSING. A payment for an order cancelled in
// the meantime is set REFUNDED instead and the order is left untouched.
// applied is false when the payment was already settled.
func (r *GORMPaymentRepository) MarkSucceeded(ctx context.Context, externalID, orderID string) (payment *models.Payment, applied bool, err error) {
	payment = &models.Payment{}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findForEvent(tx, payment, externalID, orderID); err != nil {
			return err
		}
		if payment.Status == models.PaymentPaid || payment.Status == models.PaymentRefunded {
			return nil
		}
		var order models.Order
		if err := tx.Select("id", "status").First(&order, "id = ?", payment.OrderID).Error; err != nil {
			return fmt.Errorf("order %s: %w", payment.OrderID, translate(err))
		}
		status := models.PaymentPaid
		if order.Status == models.OrderCancelled {
			status = models.PaymentRefunded
		}
		applied = true
		payment.Status = status
		payment.ExternalID = externalID
		err := tx.Model(payment).Updates(map[string]any{"status": status, "external_id": externalID}).Error
		if err != nil {
			return fmt.Errorf("failed to settle payment: %w", err)
		}
		if status != models.PaymentPaid {
			return nil
		}
		err = tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", payment.OrderID, models.OrderPending).
			Update("status", models.OrderProcessing).Error
		if err != nil {
			return fmt.Errorf("failed to advance order %s: %w", payment.OrderID, err)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return payment, applied, nil
}

// MarkFailed sets an unsettled payment FAILED. A failure of an intent that
// was superseded by a newer one of the same order leaves the payment alone.
func (r *GORMPaymentRepository) MarkFailed(ctx context.Context, externalID, orderID string) (*models.Payment, error) {
	var payment models.Payment
	if err := findForEvent(r.db.WithContext(ctx), &payment, externalID, orderID); err != nil {
		return nil, err
	}
	if payment.ExternalID != externalID || payment.Status != models.PaymentPending {
		return &payment, nil
	}
	if err := r.db.WithContext(ctx).Model(&payment).Update("status", models.PaymentFailed).Error; err != nil {
		return nil, fmt.Errorf("failed to mark payment failed: %w", err)
	}
	return &payment, nil
}
