package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/asafonov/ecombot/internal/models"
	"github.com/asafonov/ecombot/internal/repo"
)

type CartService struct {
	Repo *repo.GormRepo
}

// quantity actions for AlterQuantity
const (
	ActionIncrease = "increase"
	ActionDecrease = "decrease"
	ActionRemove   = "remove"
)

func (s *CartService) GetCart(ctx context.Context, userID uint) (*models.Cart, error) {
	return s.Repo.CartByUser(ctx, userID)
}

// Add puts quantity units of a product into the user's cart, merging into an
// existing line for the same product. The stock check here is advisory only;
// the authoritative check happens at checkout under row locks.
func (s *CartService) Add(ctx context.Context, userID, productID uint, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}

	product, err := s.Repo.Product(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrProductNotFound, productID)
		}
		return nil, err
	}
	if product.Stock < quantity {
		return nil, &InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   quantity,
			Available:   product.Stock,
		}
	}

	cart, err := s.Repo.CartByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.AddCartItem(ctx, cart.ID, productID, quantity); err != nil {
		return nil, err
	}

	return s.Repo.CartByUser(ctx, userID)
}

// AlterQuantity bumps a line up or down by one, or removes it. A decrease
// that reaches zero deletes the line.
func (s *CartService) AlterQuantity(ctx context.Context, userID, itemID uint, action string) (*models.Cart, error) {
	cart, err := s.Repo.CartByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var line *models.CartItem
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			line = &cart.Items[i]
			break
		}
	}
	if line == nil {
		return nil, fmt.Errorf("%w: item %d", ErrCartItemNotFound, itemID)
	}

	quantity := line.Quantity
	switch action {
	case ActionIncrease:
		quantity++
	case ActionDecrease:
		quantity--
	case ActionRemove:
		quantity = 0
	default:
		return nil, fmt.Errorf("%w: unknown action %q", ErrValidation, action)
	}

	return s.setQuantity(ctx, userID, itemID, quantity)
}

// SetQuantity overwrites a line's quantity; zero or less deletes the line.
// Ownership is checked against the user's cart first.
func (s *CartService) SetQuantity(ctx context.Context, userID, itemID uint, quantity int) (*models.Cart, error) {
	cart, err := s.Repo.CartByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: item %d", ErrCartItemNotFound, itemID)
	}

	return s.setQuantity(ctx, userID, itemID, quantity)
}

func (s *CartService) setQuantity(ctx context.Context, userID, itemID uint, quantity int) (*models.Cart, error) {
	if err := s.Repo.SetCartItemQuantity(ctx, itemID, quantity); err != nil {
		return nil, err
	}
	return s.Repo.CartByUser(ctx, userID)
}

func (s *CartService) Clear(ctx context.Context, userID uint) error {
	cart, err := s.Repo.CartByUser(ctx, userID)
	if err != nil {
		return err
	}
	return s.Repo.ClearCart(ctx, cart.ID)
}
