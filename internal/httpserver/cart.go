package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/asafonov/ecombot/internal/models"
	"github.com/asafonov/ecombot/internal/service"
	"github.com/asafonov/ecombot/pkg/logging"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	uid, err := userID(c)
	if err != nil {
		return err
	}

	cart, err := h.Svc.GetCart(ctx, uid)
	if err != nil {
		return mapServiceError(l, "get_cart", err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	uid, err := userID(c)
	if err != nil {
		return err
	}

	var req struct {
		ProductID uint `json:"product_id"`
		Quantity  int  `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("add_to_cart_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	cart, err := h.Svc.Add(ctx, uid, req.ProductID, req.Quantity)
	if err != nil {
		return mapServiceError(l, "add_to_cart", err)
	}

	l.Info("add_to_cart_success", "product_id", req.ProductID, "quantity", req.Quantity)
	return c.JSON(http.StatusOK, cart)
}

// PatchItem applies an increase/decrease/remove action or an explicit
// quantity to one cart line.
func (h *CartHTTP) PatchItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.patch_item")

	uid, err := userID(c)
	if err != nil {
		return err
	}

	itemID, err := parseID(c, "id")
	if err != nil {
		l.Warn("patch_item_failed", "status", 400, "reason", "invalid id")
		return err
	}

	var req struct {
		Action   string `json:"action"`
		Quantity *int   `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("patch_item_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var cart *models.Cart
	if req.Quantity != nil {
		cart, err = h.Svc.SetQuantity(ctx, uid, itemID, *req.Quantity)
	} else {
		cart, err = h.Svc.AlterQuantity(ctx, uid, itemID, req.Action)
	}
	if err != nil {
		return mapServiceError(l, "patch_item", err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	uid, err := userID(c)
	if err != nil {
		return err
	}

	if err := h.Svc.Clear(ctx, uid); err != nil {
		return mapServiceError(l, "clear_cart", err)
	}
	return c.NoContent(http.StatusNoContent)
}
