package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/asafonov/ecombot/internal/models"
	"github.com/asafonov/ecombot/internal/repo"
	"github.com/asafonov/ecombot/internal/service"
)

var testSecret = []byte("test-secret")

type testEnv struct {
	T    *testing.T
	E    *echo.Echo
	DB   *gorm.DB
	Repo *repo.GormRepo

	Users *service.UserService

	category models.Category
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
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
	users := &service.UserService{Repo: r}
	catalog := &service.CatalogService{Repo: r}
	carts := &service.CartService{Repo: r}
	orders := &service.OrderService{Repo: r}

	e := echo.New()
	Register(e, &Deps{
		Auth:      &AuthHTTP{Svc: users, JWTSecret: testSecret},
		Catalog:   &CatalogHTTP{Svc: catalog},
		Cart:      &CartHTTP{Svc: carts},
		Checkout:  &CheckoutHTTP{Orders: orders, Users: users},
		Profile:   &ProfileHTTP{Svc: users},
		Admin:     &AdminHTTP{Catalog: catalog, Orders: orders},
		JWTSecret: testSecret,
	})

	env := &testEnv{
		T:        t,
		E:        e,
		DB:       db,
		Repo:     r,
		Users:    users,
		category: models.Category{Name: "General"},
	}
	require.NoError(t, db.Create(&env.category).Error)
	return env
}

// doJSON drives a request through the full router and middleware chain.
func (env *testEnv) doJSON(method, path string, body any, token string) *httptest.ResponseRecorder {
	env.T.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) createUserWithToken(username, role string) (*models.User, string) {
	env.T.Helper()
	user := models.User{
		Username:     username,
		PasswordHash: "x",
		Role:         role,
		FirstName:    "Test",
		Phone:        "+15550001111",
	}
	require.NoError(env.T, env.DB.Create(&user).Error)

	token, err := SignAccessToken(user.ID, user.Role, testSecret)
	require.NoError(env.T, err)
	return &user, token
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

func (env *testEnv) createDefaultAddress(userID uint) *models.DeliveryAddress {
	env.T.Helper()
	addr := models.DeliveryAddress{
		UserID:      userID,
		Label:       "home",
		FullAddress: "12 Main St",
		IsDefault:   true,
	}
	require.NoError(env.T, env.DB.Create(&addr).Error)
	return &addr
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}
