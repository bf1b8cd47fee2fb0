package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/ovenfresh/internal/models"
)

type OrderStore struct{ db *gorm.DB }

func (s *Store) Orders() *OrderStore { return &OrderStore{db: s.DB} }

func (o *OrderStore) Create(ctx context.Context, order *models.Order) error {
	return o.db.WithContext(ctx).Create(order).Error
}

func (o *OrderStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := o.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// ListByUser returns a user's orders newest first.
func (o *OrderStore) ListByUser(ctx context.Context, userID uuid.UUID, status string, limit, offset int) ([]models.Order, int64, error) {
	query := o.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)
	return o.list(query, status, limit, offset)
}

// ListAll returns every order newest first, for the admin surface.
func (o *OrderStore) ListAll(ctx context.Context, status string, limit, offset int) ([]models.Order, int64, error) {
	query := o.db.WithContext(ctx).Model(&models.Order{})
	return o.list(query, status, limit, offset)
}

func (o *OrderStore) list(query *gorm.DB, status string, limit, offset int) ([]models.Order, int64, error) {
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	if err := query.Preload("Items").
		Order("created_at desc").
		Limit(limit).Offset(offset).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// SaveGuarded writes the order's mutable fields only if nobody else has
// bumped the version since it was read. The caller passes the version the
// order carried when loaded; on success the in-memory order is advanced to
// the new version.
func (o *OrderStore) SaveGuarded(ctx context.Context, order *models.Order, expected int64) error {
	res := o.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND version = ?", order.ID, expected).
		Updates(map[string]interface{}{
			"status":             order.Status,
			"status_history":     order.StatusHistory,
			"tracking_number":    order.TrackingNumber,
			"estimated_delivery": order.EstimatedDelivery,
			"notes":              order.Notes,
			"address":            order.Address,
			"phone":              order.Phone,
			"version":            expected + 1,
			"updated_at":         time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	order.Version = expected + 1
	return nil
}

// SaveGuardedWithItems applies a guarded save and an item replacement as a
// single transaction, so a concurrent writer cannot land between the two
// writes and neither change commits without the other. A nil items slice
// leaves the lines untouched.
func (o *OrderStore) SaveGuardedWithItems(ctx context.Context, order *models.Order, expected int64, items []models.OrderItem) error {
	st := &Store{DB: o.db}
	return st.WithTx(ctx, func(tx *Store) error {
		if err := tx.Orders().SaveGuarded(ctx, order, expected); err != nil {
			return err
		}
		if items == nil {
			return nil
		}
		return tx.Orders().ReplaceItems(ctx, order.ID, items)
	})
}

// ReplaceItems swaps the order's line items for a new snapshot.
func (o *OrderStore) ReplaceItems(ctx context.Context, orderID uuid.UUID, items []models.OrderItem) error {
	return o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = orderID
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}
