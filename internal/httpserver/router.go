package httpserver

import (
	"github.com/labstack/echo/v4"
)

type Deps struct {
	Auth      *AuthHTTP
	Catalog   *CatalogHTTP
	Cart      *CartHTTP
	Checkout  *CheckoutHTTP
	Profile   *ProfileHTTP
	Admin     *AdminHTTP
	Search    *SearchHTTP // nil when search is disabled
	JWTSecret []byte
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/register", d.Auth.Register)
	v1.POST("/login", d.Auth.Login)

	v1.GET("/categories", d.Catalog.GetCategories)
	v1.GET("/categories/:id/products", d.Catalog.GetProductsByCategory)
	v1.GET("/products/:id", d.Catalog.GetProduct)
	if d.Search != nil {
		v1.GET("/search", d.Search.Search)
	}

	user := v1.Group("", RequireLogin(d.JWTSecret))

	user.GET("/cart", d.Cart.GetCart)
	user.POST("/cart", d.Cart.AddToCart)
	user.PATCH("/cart/items/:id", d.Cart.PatchItem)
	user.DELETE("/cart", d.Cart.ClearCart)

	user.POST("/checkout", d.Checkout.Checkout)
	user.GET("/orders", d.Checkout.ListOrders)
	user.GET("/orders/:id", d.Checkout.GetOrder)

	user.GET("/profile", d.Profile.GetProfile)
	user.PATCH("/profile", d.Profile.UpdateProfile)
	user.GET("/addresses", d.Profile.ListAddresses)
	user.POST("/addresses", d.Profile.AddAddress)
	user.DELETE("/addresses/:id", d.Profile.DeleteAddress)
	user.POST("/addresses/:id/default", d.Profile.SetDefaultAddress)

	admin := v1.Group("/admin", AdminOnly(d.JWTSecret))

	admin.POST("/categories", d.Admin.CreateCategory)
	admin.DELETE("/categories/:id", d.Admin.DeleteCategory)
	admin.POST("/products", d.Admin.CreateProduct)
	admin.PATCH("/products/:id", d.Admin.PatchProduct)
	admin.DELETE("/products/:id", d.Admin.DeleteProduct)
	admin.GET("/orders", d.Admin.ListOrdersByStatus)
	admin.PATCH("/orders/:id/status", d.Admin.ChangeOrderStatus)
}
