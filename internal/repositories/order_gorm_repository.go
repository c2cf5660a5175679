package repositories

import (
	"context"
	"fmt"
	"time"

	"pasar/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var terminalStatuses = []models.OrderStatus{models.OrderDelivered, models.OrderCancelled}

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

// CreateOrders stores the orders of one checkout with their items, codes and
// notifications, reserving stock in the same transaction.
func (r *GORMOrderRepository) CreateOrders(ctx context.Context, orders []*models.Order, notifications []*models.Notification) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, order := range orders {
			for _, item := range order.Items {
				if err := reserveStock(tx, item.VariantID, item.Quantity); err != nil {
					return err
				}
			}
			if err := tx.Create(order).Error; err != nil {
				return fmt.Errorf("failed to create order: %w", err)
			}
			for _, item := range order.Items {
				err := tx.Where("user_id = ? AND product_id = ? AND variant_id = ?", order.UserID, item.ProductID, item.VariantID).
					Delete(&models.CartItem{}).Error
				if err != nil {
					return fmt.Errorf("failed to clear cart line: %w", err)
				}
			}
		}
		if len(notifications) > 0 {
			if err := tx.Create(&notifications).Error; err != nil {
				return fmt.Errorf("failed to create notifications: %w", err)
			}
		}
		return nil
	})
}

// reserveStock takes quantity units from the variant and hides it once sold out.
func reserveStock(tx *gorm.DB, variantID string, quantity int) error {
	res := tx.Model(&models.ProductVariant{}).
		Where("id = ? AND stock >= ?", variantID, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return fmt.Errorf("failed to reserve stock for variant %s: %w", variantID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("variant %s: %w", variantID, ErrInsufficientStock)
	}
	err := tx.Model(&models.ProductVariant{}).
		Where("id = ? AND stock = 0", variantID).
		Update("in_order", models.InOrderReserved).Error
	if err != nil {
		return fmt.Errorf("failed to mark variant %s reserved: %w", variantID, err)
	}
	return nil
}

// GetByID retrieves an order with its items, code and payment.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items.Product").
		Preload("Items.Variant").
		Preload("Otp").
		Preload("Payment").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, fmt.Errorf("order with ID %s: %w", id, translate(err))
	}
	return &order, nil
}

// ListByUser returns the orders of a user, newest first.
func (r *GORMOrderRepository) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items.Product").
		Preload("Items.Variant").
		Preload("Otp").
		Preload("Payment").
		Preload("Vendor").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list user orders: %w", err)
	}
	return orders, nil
}

// ListByVendor lists the vendor's orders, optionally only those in status.
func (r *GORMOrderRepository) ListByVendor(ctx context.Context, vendorID string, status models.OrderStatus) ([]models.Order, error) {
	q := r.db.WithContext(ctx).
		Preload("Items.Product").
		Preload("Items.Variant").
		Preload("Payment").
		Preload("User").
		Where("vendor_id = ?", vendorID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var orders []models.Order
	if err := q.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list vendor orders: %w", err)
	}
	return orders, nil
}

// ListByVendorBetween returns the vendor's orders created in [from, to).
func (r *GORMOrderRepository) ListByVendorBetween(ctx context.Context, vendorID string, from, to time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Select("id", "vendor_id", "user_id", "total", "status", "created_at").
		Where("vendor_id = ? AND created_at >= ? AND created_at < ?", vendorID, from, to).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list vendor orders in range: %w", err)
	}
	return orders, nil
}

// ConfirmDelivery consumes the code and marks the order DELIVERED.
func (r *GORMOrderRepository) ConfirmDelivery(ctx context.Context, orderID string, payment *models.Payment, notification *models.Notification) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.OrderOtp{}).
			Where("order_id = ? AND verified = ?", orderID, false).
			Update("verified", true)
		if res.Error != nil {
			return fmt.Errorf("failed to consume otp: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("otp of order %s: %w", orderID, ErrStateChanged)
		}

		res = tx.Model(&models.Order{}).
			Where("id = ? AND status NOT IN ?", orderID, terminalStatuses).
			Update("status", models.OrderDelivered)
		if res.Error != nil {
			return fmt.Errorf("failed to mark order delivered: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("order %s: %w", orderID, ErrStateChanged)
		}

		if payment != nil {
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "order_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"provider", "method", "amount", "currency", "status", "updated_at"}),
			}).Create(payment).Error
			if err != nil {
				return fmt.Errorf("failed to record payment: %w", err)
			}
		}
		if notification != nil {
			if err := tx.Create(notification).Error; err != nil {
				return fmt.Errorf("failed to create notification: %w", err)
			}
		}
		return nil
	})
}

// Cancel marks the order CANCELLED and restores the stock of its items.
func (r *GORMOrderRepository) Cancel(ctx context.Context, orderID string, notification *models.Notification) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status NOT IN ?", orderID, terminalStatuses).
			Update("status", models.OrderCancelled)
		if res.Error != nil {
			return fmt.Errorf("failed to cancel order: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("order %s: %w", orderID, ErrStateChanged)
		}

		var items []models.OrderItem
		if err := tx.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
			return fmt.Errorf("failed to load order items: %w", err)
		}
		for _, item := range items {
			err := tx.Model(&models.ProductVariant{}).
				Where("id = ?", item.VariantID).
				Updates(map[string]interface{}{
					"stock":    gorm.Expr("stock + ?", item.Quantity),
					"in_order": models.InOrderRestored,
				}).Error
			if err != nil {
				return fmt.Errorf("failed to restore stock for variant %s: %w", item.VariantID, err)
			}
		}

		if notification != nil {
			if err := tx.Create(notification).Error; err != nil {
				return fmt.Errorf("failed to create notification: %w", err)
			}
		}
		return nil
	})
}

// UpdateStatus moves the order to status `to` if it is currently in one of `from`.
func (r *GORMOrderRepository) UpdateStatus(ctx context.Context, id string, from []models.OrderStatus, to models.OrderStatus, notification *models.Notification) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).Where("id = ? AND status IN ?", id, from).Update("status", to)
		if res.Error != nil {
			return fmt.Errorf("failed to update order status: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("order %s: %w", id, ErrStateChanged)
		}
		if notification != nil {
			if err := tx.Create(notification).Error; err != nil {
				return fmt.Errorf("failed to create notification: %w", err)
			}
		}
		return nil
	})
}

// Customers summarizes the users who ordered from a vendor.
func (r *GORMOrderRepository) Customers(ctx context.Context, vendorID string) ([]CustomerSummary, error) {
	var customers []CustomerSummary
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("orders.user_id AS user_id, users.name AS name, users.email AS email, "+
			"COUNT(orders.id) AS order_count, "+
			"COALESCE(SUM(CASE WHEN orders.status <> ? THEN orders.total ELSE 0 END), 0) AS total_spent", models.OrderCancelled).
		Joins("JOIN users ON users.id = orders.user_id").
		Where("orders.vendor_id = ?", vendorID).
		Group("orders.user_id, users.name, users.email").
		Order("order_count DESC").
		Scan(&customers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate customers: %w", err)
	}
	return customers, nil
}

// HasDeliveredProduct reports whether the user received the product.
func (r *GORMOrderRepository) HasDeliveredProduct(ctx context.Context, userID, productID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND orders.status = ? AND order_items.product_id = ?", userID, models.OrderDelivered, productID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check purchase history: %w", err)
	}
	return count > 0, nil
}
