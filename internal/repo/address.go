package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/asafonov/ecombot/internal/models"
)

func (r *GormRepo) AddressesByUser(ctx context.Context, userID uint) ([]models.DeliveryAddress, error) {
	var addrs []models.DeliveryAddress
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&addrs).Error; err != nil {
		return nil, err
	}
	return addrs, nil
}

func (r *GormRepo) AddressByID(ctx context.Context, addressID uint) (*models.DeliveryAddress, error) {
	var addr models.DeliveryAddress
	if err := r.DB.WithContext(ctx).First(&addr, addressID).Error; err != nil {
		return nil, err
	}
	return &addr, nil
}

func (r *GormRepo) CreateAddress(ctx context.Context, addr *models.DeliveryAddress) error {
	return r.DB.WithContext(ctx).Create(addr).Error
}

// DeleteAddress removes an address only when it belongs to userID. Returns
// false when nothing matched (missing or foreign address).
func (r *GormRepo) DeleteAddress(ctx context.Context, addressID, userID uint) (bool, error) {
	res := r.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", addressID, userID).
		Delete(&models.DeliveryAddress{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SetDefaultAddress atomically makes addressID the user's only default: all
// other rows for the user are unset and the target is set in one transaction.
// Returns false when the address is missing or belongs to another user.
func (r *GormRepo) SetDefaultAddress(ctx context.Context, userID, addressID uint) (bool, error) {
	ok := false
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.DeliveryAddress{}).
			Where("id = ? AND user_id = ?", addressID, userID).
			Update("is_default", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		if err := tx.Model(&models.DeliveryAddress{}).
			Where("user_id = ? AND id <> ?", userID, addressID).
			Update("is_default", false).Error; err != nil {
			return err
		}
		ok = true
		return nil
	})
	return ok, err
}
