package gormstore

import (
	"context"
	"time"

	"water-delivery-api/models"
	"water-delivery-api/store"

	"gorm.io/gorm"
)

// PlaceOrder runs the conditional stock decrement and the order insert in one
// transaction. The WHERE clause makes the decrement itself the stock check,
// so a racing request sees the reduced stock and matches zero rows.
func (s *Store) PlaceOrder(ctx context.Context, order *models.Order) error {
	if order.ChangeLog == nil {
		order.ChangeLog = []models.ChangeLogEntry{}
	}
	productID := order.Request.ProductID
	qty := order.Request.Quantity

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Product{}).
			Where("product_id = ? AND stock >= ?", productID, qty).
			Updates(map[string]interface{}{
				"stock":      gorm.Expr("stock - ?", qty),
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Model(&models.Product{}).Where("product_id = ?", productID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return store.ErrNotFound
			}
			return store.ErrInsufficientStock
		}
		return tx.Create(order).Error
	})
	return wrapError(err)
}

func changeLogOrder(db *gorm.DB) *gorm.DB {
	return db.Order("id asc")
}

func (s *Store) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("ChangeLog", changeLogOrder).
		First(&order, "order_id = ?", orderID).Error
	if err != nil {
		return nil, wrapError(err)
	}
	if order.ChangeLog == nil {
		order.ChangeLog = []models.ChangeLogEntry{}
	}
	return &order, nil
}

func (s *Store) ListOrders(ctx context.Context, customerID string) ([]models.Order, error) {
	query := s.db.WithContext(ctx).Preload("ChangeLog", changeLogOrder)
	if customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}

	orders := []models.Order{}
	if err := query.Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, wrapError(err)
	}
	for i := range orders {
		if orders[i].ChangeLog == nil {
			orders[i].ChangeLog = []models.ChangeLogEntry{}
		}
	}
	return orders, nil
}

func (s *Store) AppendStatusChange(ctx context.Context, orderID string, status models.OrderStatus, entry models.ChangeLogEntry) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("order_id = ?", orderID).
			Updates(map[string]interface{}{"status": status, "updated_at": entry.ChangedAt})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return store.ErrNotFound
		}
		entry.ID = 0
		entry.OrderID = orderID
		return tx.Create(&entry).Error
	})
	return wrapError(err)
}
