package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/asafonov/ecombot/internal/models"
)

// CartByUser returns the user's cart with items and their products loaded,
// creating the cart row if the user never had one.
func (r *GormRepo) CartByUser(ctx context.Context, userID uint) (*models.Cart, error) {
	var cart models.Cart
	err := r.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("cart_items.id ASC") }).
		Preload("Items.Product").
		Where("user_id = ?", userID).
		First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart = models.Cart{UserID: userID}
	if err := r.DB.WithContext(ctx).Create(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddCartItem merges the quantity into an existing line for the same product
// or creates a new line, in one transaction.
func (r *GormRepo) AddCartItem(ctx context.Context, cartID, productID uint, quantity int) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartItem{}).
			Where("cart_id = ? AND product_id = ?", cartID, productID).
			Update("quantity", gorm.Expr("quantity + ?", quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		item := models.CartItem{CartID: cartID, ProductID: productID, Quantity: quantity}
		return tx.Create(&item).Error
	})
}

func (r *GormRepo) CartItemByID(ctx context.Context, itemID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.DB.WithContext(ctx).First(&item, itemID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// SetCartItemQuantity overwrites a line's quantity; zero or less deletes the line.
func (r *GormRepo) SetCartItemQuantity(ctx context.Context, itemID uint, quantity int) error {
	if quantity > 0 {
		return r.DB.WithContext(ctx).
			Model(&models.CartItem{}).
			Where("id = ?", itemID).
			Update("quantity", quantity).Error
	}
	return r.DB.WithContext(ctx).Delete(&models.CartItem{}, itemID).Error
}

func (r *GormRepo) ClearCart(ctx context.Context, cartID uint) error {
	return r.DB.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}
