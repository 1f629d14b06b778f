package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/asafonov/ecombot/internal/models"
)

func (r *GormRepo) Order(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).
		Preload("User").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id ASC") }).
		Preload("Items.Product").
		First(&order, orderID).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) OrdersByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) OrdersByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	var orders []models.Order
	err := r.DB.WithContext(ctx).
		Preload("User").
		Preload("Items").
		Preload("Items.Product").
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// OrderForUpdateTx reads an order with its items under an exclusive row lock
// held by tx, so concurrent status transitions on the same order serialize.
func (r *GormRepo) OrderForUpdateTx(tx *gorm.DB, orderID uint) (*models.Order, error) {
	var order models.Order
	err := forUpdate(tx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id ASC") }).
		First(&order, orderID).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}
