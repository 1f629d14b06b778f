package service

import (
	"context"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/asafonov/ecombot/internal/models"
	"github.com/asafonov/ecombot/internal/repo"
)

type testEnv struct {
	T        *testing.T
	DB       *gorm.DB
	Repo     *repo.GormRepo
	Users    *UserService
	Carts    *CartService
	Catalog  *CatalogService
	Orders   *OrderService
	Notifier *notifierRecorder

	category models.Category
}

// notifierRecorder captures order events in-process so tests can assert
// that notifications fire after commit without a broker.
type notifierRecorder struct {
	mu            sync.Mutex
	Placed        []uint
	StatusChanges []models.OrderStatus
}

func (n *notifierRecorder) OrderPlaced(_ context.Context, order *models.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Placed = append(n.Placed, order.ID)
}

func (n *notifierRecorder) OrderStatusChanged(_ context.Context, order *models.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.StatusChanges = append(n.StatusChanges, order.Status)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// one connection so concurrent transactions queue at the pool instead of
	// hitting SQLITE_BUSY
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.DeliveryAddress{},
		&models.Category{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	))

	r := repo.New(db)
	notifier := &notifierRecorder{}

	env := &testEnv{
		T:        t,
		DB:       db,
		Repo:     r,
		Users:    &UserService{Repo: r},
		Carts:    &CartService{Repo: r},
		Catalog:  &CatalogService{Repo: r},
		Orders:   &OrderService{Repo: r, Notifier: notifier},
		Notifier: notifier,
		category: models.Category{Name: "General"},
	}
	require.NoError(t, db.Create(&env.category).Error)
	return env
}

func (env *testEnv) createUser(username string) *models.User {
	env.T.Helper()
	user := models.User{Username: username, PasswordHash: "x", Role: "user"}
	require.NoError(env.T, env.DB.Create(&user).Error)
	return &user
}

func (env *testEnv) createProduct(name, price string, stock int) *models.Product {
	env.T.Helper()
	product := models.Product{
		Name:        name,
		Description: name,
		Price:       decimal.RequireFromString(price),
		Stock:       stock,
		CategoryID:  env.category.ID,
	}
	require.NoError(env.T, env.DB.Create(&product).Error)
	return &product
}

// fillCart puts a line into the user's cart directly through the repo,
// bypassing the advisory stock check so tests can stage overdrawn carts.
func (env *testEnv) fillCart(userID, productID uint, quantity int) {
	env.T.Helper()
	ctx := context.Background()
	cart, err := env.Repo.CartByUser(ctx, userID)
	require.NoError(env.T, err)
	require.NoError(env.T, env.Repo.AddCartItem(ctx, cart.ID, productID, quantity))
}

func (env *testEnv) productStock(productID uint) int {
	env.T.Helper()
	product, err := env.Repo.Product(context.Background(), productID)
	require.NoError(env.T, err)
	return product.Stock
}

func (env *testEnv) cartLines(userID uint) []models.CartItem {
	env.T.Helper()
	cart, err := env.Repo.CartByUser(context.Background(), userID)
	require.NoError(env.T, err)
	return cart.Items
}

func (env *testEnv) orderCount() int64 {
	env.T.Helper()
	var n int64
	require.NoError(env.T, env.DB.Model(&models.Order{}).Count(&n).Error)
	return n
}
