package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/asafonov/ecombot/internal/models"
	"github.com/asafonov/ecombot/internal/ordernum"
	"github.com/asafonov/ecombot/internal/repo"
)

// Notifier receives finalized orders after the enclosing transaction has
// committed. Implementations decide whether and what to send; their failures
// must never propagate back into order processing.
type Notifier interface {
	OrderPlaced(ctx context.Context, order *models.Order)
	OrderStatusChanged(ctx context.Context, order *models.Order)
}

type OrderService struct {
	Repo     *repo.GormRepo
	Notifier Notifier

	// newOrderNumber overrides ordernum.Generate in tests.
	newOrderNumber func() string
}

func (s *OrderService) orderNumber() string {
	if s.newOrderNumber != nil {
		return s.newOrderNumber()
	}
	return ordernum.Generate()
}

// PlaceOrderInput carries the delivery snapshot fields for a checkout.
type PlaceOrderInput struct {
	ContactName    string
	Phone          string
	Address        string
	DeliveryMethod string
}

// PlaceOrder converts the user's cart into an order as one atomic unit:
// order shell, per-line stock check and decrement under row locks, item
// snapshots, cart clearing. Any line failure rolls the whole thing back.
//
// Lines are processed in ascending product ID order so that two checkouts
// sharing more than one product always acquire locks in the same order and
// cannot deadlock each other.
func (s *OrderService) PlaceOrder(ctx context.Context, userID uint, in PlaceOrderInput) (*models.Order, error) {
	if in.ContactName == "" || in.Phone == "" || in.Address == "" {
		return nil, fmt.Errorf("%w: contact name, phone and address are required", ErrValidation)
	}
	if in.DeliveryMethod == "" {
		in.DeliveryMethod = "Standard"
	}

	cart, err := s.Repo.CartByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	lines := make([]models.CartItem, len(cart.Items))
	copy(lines, cart.Items)
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })

	var orderID uint
	err = s.Repo.Transaction(ctx, func(tx *gorm.DB) error {
		order := models.Order{
			OrderNumber:    s.orderNumber(),
			UserID:         userID,
			ContactName:    in.ContactName,
			Phone:          in.Phone,
			Address:        in.Address,
			DeliveryMethod: in.DeliveryMethod,
			Status:         models.StatusPending,
		}
		// the unique index stays authoritative for order numbers; a collision
		// gets one retry. Postgres aborts the transaction on the failed
		// insert, so the retry must roll back to a savepoint first.
		if err := tx.SavePoint("order_create").Error; err != nil {
			return err
		}
		if err := tx.Create(&order).Error; err != nil {
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				return err
			}
			if err := tx.RollbackTo("order_create").Error; err != nil {
				return err
			}
			order.ID = 0
			order.OrderNumber = s.orderNumber()
			if err := tx.Create(&order).Error; err != nil {
				return err
			}
		}

		for _, line := range lines {
			if line.Quantity <= 0 {
				return fmt.Errorf("%w: quantity must be positive", ErrValidation)
			}

			product, err := s.Repo.ProductForUpdate(tx, line.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: product %d", ErrProductNotFound, line.ProductID)
				}
				return err
			}
			if product.Stock < line.Quantity {
				return &InsufficientStockError{
					ProductID:   product.ID,
					ProductName: product.Name,
					Requested:   line.Quantity,
					Available:   product.Stock,
				}
			}

			item := models.OrderItem{
				OrderID:   order.ID,
				ProductID: product.ID,
				Quantity:  line.Quantity,
				Price:     product.Price,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}

			// safe read-modify-write: the row lock is held until commit
			if err := tx.Model(&models.Product{}).
				Where("id = ?", product.ID).
				Update("stock", product.Stock-line.Quantity).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}

		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := s.Repo.Order(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("reload order after placement: %w", err)
	}

	if s.Notifier != nil {
		s.Notifier.OrderPlaced(ctx, order)
	}
	return order, nil
}

// ChangeStatus moves an order along its lifecycle. Transitioning into
// cancelled restores stock for every order item, under the same row-locking
// discipline as placement and inside the same transaction as the status write.
func (s *OrderService) ChangeStatus(ctx context.Context, orderID uint, target models.OrderStatus) (*models.Order, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, target)
	}

	err := s.Repo.Transaction(ctx, func(tx *gorm.DB) error {
		order, err := s.Repo.OrderForUpdateTx(tx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		if !order.Status.CanTransitionTo(target) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, target)
		}

		if target == models.StatusCancelled {
			if err := s.restockItems(tx, order.Items); err != nil {
				return err
			}
		}

		return tx.Model(&models.Order{}).
			Where("id = ?", order.ID).
			Update("status", target).Error
	})
	if err != nil {
		return nil, err
	}

	order, err := s.Repo.Order(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("reload order after status change: %w", err)
	}

	if s.Notifier != nil {
		s.Notifier.OrderStatusChanged(ctx, order)
	}
	return order, nil
}

// restockItems returns every item's quantity to its product's stock. Items
// are processed in ascending product ID order, matching the lock order used
// at placement. Products deleted from the catalog since the order was placed
// have no row left to restock and are skipped.
func (s *OrderService) restockItems(tx *gorm.DB, items []models.OrderItem) error {
	sorted := make([]models.OrderItem, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProductID < sorted[j].ProductID })

	for _, item := range sorted {
		product, err := s.Repo.ProductForUpdate(tx, item.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return err
		}
		if err := tx.Model(&models.Product{}).
			Where("id = ?", product.ID).
			Update("stock", product.Stock+item.Quantity).Error; err != nil {
			return err
		}
	}
	return nil
}

// OrderForUser fetches one order and verifies ownership.
func (s *OrderService) OrderForUser(ctx context.Context, orderID, userID uint) (*models.Order, error) {
	order, err := s.Repo.Order(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) ListUserOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	return s.Repo.OrdersByUser(ctx, userID)
}

func (s *OrderService) ListOrdersByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	return s.Repo.OrdersByStatus(ctx, status)
}
