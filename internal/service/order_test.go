package service

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/asafonov/ecombot/internal/models"
)

var checkoutInput = PlaceOrderInput{
	ContactName: "Alice",
	Phone:       "+15550001111",
	Address:     "12 Main St",
}

func TestPlaceOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser("alice")
	tea := env.createProduct("Green Tea", "10.00", 5)
	press := env.createProduct("French Press", "25.00", 3)

	env.fillCart(user.ID, tea.ID, 2)
	env.fillCart(user.ID, press.ID, 1)

	order, err := env.Orders.PlaceOrder(ctx, user.ID, checkoutInput)
	require.NoError(t, err)

	require.Equal(t, models.StatusPending, order.Status)
	require.Equal(t, user.ID, order.UserID)
	require.Equal(t, "Alice", order.ContactName)
	require.Equal(t, "Standard", order.DeliveryMethod)
	require.Regexp(t, regexp.MustCompile(`^ECO-\d{6}-[A-HJ-NP-Z2-9]{4}$`), order.OrderNumber)

	require.Len(t, order.Items, 2)
	require.True(t, order.Total().Equal(decimal.RequireFromString("45.00")),
		"total = %s", order.Total())

	require.Equal(t, 3, env.productStock(tea.ID))
	require.Equal(t, 2, env.productStock(press.ID))
	require.Empty(t, env.cartLines(user.ID))

	require.Equal(t, []uint{order.ID}, env.Notifier.Placed)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("alice")

	_, err := env.Orders.PlaceOrder(context.Background(), user.ID, checkoutInput)
	require.ErrorIs(t, err, ErrEmptyCart)
	require.Zero(t, env.orderCount())
}

func TestPlaceOrderValidation(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("alice")
	tea := env.createProduct("Green Tea", "10.00", 5)
	env.fillCart(user.ID, tea.ID, 1)

	in := checkoutInput
	in.Phone = ""
	_, err := env.Orders.PlaceOrder(context.Background(), user.ID, in)
	require.ErrorIs(t, err, ErrValidation)
}

func TestPlaceOrderInsufficientStockRollsBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser("alice")
	tea := env.createProduct("Green Tea", "10.00", 5)
	press := env.createProduct("French Press", "25.00", 1)

	// the first line succeeds before the second one fails; everything must
	// roll back together
	env.fillCart(user.ID, tea.ID, 2)
	env.fillCart(user.ID, press.ID, 3)

	_, err := env.Orders.PlaceOrder(ctx, user.ID, checkoutInput)

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, press.ID, stockErr.ProductID)
	require.Equal(t, "French Press", stockErr.ProductName)
	require.Equal(t, 3, stockErr.Requested)
	require.Equal(t, 1, stockErr.Available)
	require.Contains(t, err.Error(), "French Press")

	require.Zero(t, env.orderCount())
	require.Equal(t, 5, env.productStock(tea.ID))
	require.Equal(t, 1, env.productStock(press.ID))
	require.Len(t, env.cartLines(user.ID), 2)
	require.Empty(t, env.Notifier.Placed)
}

func TestPlaceOrderProductDeleted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser("alice")
	tea := env.createProduct("Green Tea", "10.00", 5)
	env.fillCart(user.ID, tea.ID, 1)

	require.NoError(t, env.DB.Delete(&models.Product{}, tea.ID).Error)

	_, err := env.Orders.PlaceOrder(ctx, user.ID, checkoutInput)
	require.ErrorIs(t, err, ErrProductNotFound)
	require.Zero(t, env.orderCount())
}

func TestPlaceOrderConcurrent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser("alice")
	bob := env.createUser("bob")
	tea := env.createProduct("Green Tea", "10.00", 5)

	env.fillCart(alice.ID, tea.ID, 3)
	env.fillCart(bob.ID, tea.ID, 3)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, userID := range []uint{alice.ID, bob.ID} {
		wg.Add(1)
		go func(i int, userID uint) {
			defer wg.Done()
			_, errs[i] = env.Orders.PlaceOrder(ctx, userID, checkoutInput)
		}(i, userID)
	}
	wg.Wait()

	// exactly one checkout wins; the loser sees the decremented stock
	var won, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		default:
			var stockErr *InsufficientStockError
			require.ErrorAs(t, err, &stockErr)
			require.Equal(t, 3, stockErr.Requested)
			require.Equal(t, 2, stockErr.Available)
			lost++
		}
	}
	require.Equal(t, 1, won)
	require.Equal(t, 1, lost)
	require.Equal(t, 2, env.productStock(tea.ID))
	require.EqualValues(t, 1, env.orderCount())
}

func TestChangeStatusLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser("alice")
	tea := env.createProduct("Green Tea", "10.00", 5)
	env.fillCart(user.ID, tea.ID, 1)

	order, err := env.Orders.PlaceOrder(ctx, user.ID, checkoutInput)
	require.NoError(t, err)

	for _, next := range []models.OrderStatus{
		models.StatusProcessing,
		models.StatusShipped,
		models.StatusCompleted,
	} {
		order, err = env.Orders.ChangeStatus(ctx, order.ID, next)
		require.NoError(t, err)
		require.Equal(t, next, order.Status)
	}

	require.Equal(t, []models.OrderStatus{
		models.StatusProcessing,
		models.StatusShipped,
		models.StatusCompleted,
	}, env.Notifier.StatusChanges)

	// completed is terminal
	_, err = env.Orders.ChangeStatus(ctx, order.ID, models.StatusCancelled)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestChangeStatusRejectsSkips(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser("alice")
	tea := env.createProduct("Green Tea", "10.00", 5)
	env.fillCart(user.ID, tea.ID, 1)

	order, err := env.Orders.PlaceOrder(ctx, user.ID, checkoutInput)
	require.NoError(t, err)

	_, err = env.Orders.ChangeStatus(ctx, order.ID, models.StatusShipped)
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.Contains(t, err.Error(), "pending -> shipped")

	_, err = env.Orders.ChangeStatus(ctx, order.ID, models.OrderStatus("teleported"))
	require.ErrorIs(t, err, ErrValidation)

	_, err = env.Orders.ChangeStatus(ctx, order.ID+100, models.StatusProcessing)
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCancelRestocks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser("alice")
	tea := env.createProduct("Green Tea", "10.00", 5)
	press := env.createProduct("French Press", "25.00", 3)

	env.fillCart(user.ID, tea.ID, 3)
	env.fillCart(user.ID, press.ID, 2)

	order, err := env.Orders.PlaceOrder(ctx, user.ID, checkoutInput)
	require.NoError(t, err)
	require.Equal(t, 2, env.productStock(tea.ID))
	require.Equal(t, 1, env.productStock(press.ID))

	order, err = env.Orders.ChangeStatus(ctx, order.ID, models.StatusCancelled)
	require.NoError(t, err)
	require.Equal(t, models.StatusCancelled, order.Status)

	require.Equal(t, 5, env.productStock(tea.ID))
	require.Equal(t, 3, env.productStock(press.ID))

	// a cancelled order cannot be cancelled again, so no double restock
	_, err = env.Orders.ChangeStatus(ctx, order.ID, models.StatusCancelled)
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.Equal(t, 5, env.productStock(tea.ID))
}

func TestCancelWithInterleavedSales(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser("alice")
	bob := env.createUser("bob")
	tea := env.createProduct("Green Tea", "10.00", 10)

	env.fillCart(alice.ID, tea.ID, 4)
	aliceOrder, err := env.Orders.PlaceOrder(ctx, alice.ID, checkoutInput)
	require.NoError(t, err)

	env.fillCart(bob.ID, tea.ID, 3)
	_, err = env.Orders.PlaceOrder(ctx, bob.ID, checkoutInput)
	require.NoError(t, err)
	require.Equal(t, 3, env.productStock(tea.ID))

	// cancelling alice returns exactly her 4 units, not a snapshot of old stock
	_, err = env.Orders.ChangeStatus(ctx, aliceOrder.ID, models.StatusCancelled)
	require.NoError(t, err)
	require.Equal(t, 7, env.productStock(tea.ID))
}

func TestCancelSkipsDeletedProduct(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser("alice")
	tea := env.createProduct("Green Tea", "10.00", 5)
	press := env.createProduct("French Press", "25.00", 3)

	env.fillCart(user.ID, tea.ID, 2)
	env.fillCart(user.ID, press.ID, 1)

	order, err := env.Orders.PlaceOrder(ctx, user.ID, checkoutInput)
	require.NoError(t, err)

	require.NoError(t, env.DB.Delete(&models.Product{}, press.ID).Error)

	order, err = env.Orders.ChangeStatus(ctx, order.ID, models.StatusCancelled)
	require.NoError(t, err)
	require.Equal(t, models.StatusCancelled, order.Status)
	require.Equal(t, 5, env.productStock(tea.ID))
}

func TestOrderPriceSnapshot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser("alice")
	tea := env.createProduct("Green Tea", "10.00", 5)
	env.fillCart(user.ID, tea.ID, 2)

	order, err := env.Orders.PlaceOrder(ctx, user.ID, checkoutInput)
	require.NoError(t, err)

	_, err = env.Catalog.UpdateProduct(ctx, tea.ID, ProductUpdate{
		Price: decimalPtr("99.00"),
	})
	require.NoError(t, err)

	order, err = env.Orders.OrderForUser(ctx, order.ID, user.ID)
	require.NoError(t, err)
	require.True(t, order.Items[0].Price.Equal(decimal.RequireFromString("10.00")))
	require.True(t, order.Total().Equal(decimal.RequireFromString("20.00")))
}

func TestOrderForUserOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser("alice")
	bob := env.createUser("bob")
	tea := env.createProduct("Green Tea", "10.00", 5)
	env.fillCart(alice.ID, tea.ID, 1)

	order, err := env.Orders.PlaceOrder(ctx, alice.ID, checkoutInput)
	require.NoError(t, err)

	_, err = env.Orders.OrderForUser(ctx, order.ID, bob.ID)
	require.ErrorIs(t, err, ErrOrderNotFound)

	got, err := env.Orders.OrderForUser(ctx, order.ID, alice.ID)
	require.NoError(t, err)
	require.Equal(t, order.ID, got.ID)
}

func TestListOrdersByStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser("alice")
	tea := env.createProduct("Green Tea", "10.00", 10)

	env.fillCart(user.ID, tea.ID, 1)
	first, err := env.Orders.PlaceOrder(ctx, user.ID, checkoutInput)
	require.NoError(t, err)

	env.fillCart(user.ID, tea.ID, 1)
	_, err = env.Orders.PlaceOrder(ctx, user.ID, checkoutInput)
	require.NoError(t, err)

	_, err = env.Orders.ChangeStatus(ctx, first.ID, models.StatusProcessing)
	require.NoError(t, err)

	pending, err := env.Orders.ListOrdersByStatus(ctx, models.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	processing, err := env.Orders.ListOrdersByStatus(ctx, models.StatusProcessing)
	require.NoError(t, err)
	require.Len(t, processing, 1)
	require.Equal(t, first.ID, processing[0].ID)

	_, err = env.Orders.ListOrdersByStatus(ctx, models.OrderStatus("bogus"))
	require.ErrorIs(t, err, ErrValidation)
}

func TestPlaceOrderNumberCollisionRetries(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser("alice")
	tea := env.createProduct("Green Tea", "10.00", 5)
	env.fillCart(user.ID, tea.ID, 1)

	taken := models.Order{
		OrderNumber:    "ECO-250829-AAAA",
		UserID:         user.ID,
		ContactName:    "Earlier",
		Phone:          "+15550002222",
		Address:        "1 Old St",
		DeliveryMethod: "Standard",
		Status:         models.StatusPending,
	}
	require.NoError(t, env.DB.Create(&taken).Error)

	// first draw collides with the existing order, second is free
	draws := []string{"ECO-250829-AAAA", "ECO-250829-BBBB"}
	env.Orders.newOrderNumber = func() string {
		n := draws[0]
		draws = draws[1:]
		return n
	}

	order, err := env.Orders.PlaceOrder(ctx, user.ID, checkoutInput)
	require.NoError(t, err)
	require.Equal(t, "ECO-250829-BBBB", order.OrderNumber)
	require.Empty(t, draws)

	require.Equal(t, 4, env.productStock(tea.ID))
	require.Len(t, order.Items, 1)
}

func TestPlaceOrderWithoutNotifier(t *testing.T) {
	env := newTestEnv(t)
	env.Orders.Notifier = nil
	ctx := context.Background()

	user := env.createUser("alice")
	tea := env.createProduct("Green Tea", "10.00", 5)
	env.fillCart(user.ID, tea.ID, 1)

	order, err := env.Orders.PlaceOrder(ctx, user.ID, checkoutInput)
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, order.Status)
}

func decimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
