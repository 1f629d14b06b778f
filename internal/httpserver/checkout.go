package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/asafonov/ecombot/internal/models"
	"github.com/asafonov/ecombot/internal/service"
	"github.com/asafonov/ecombot/pkg/logging"
)

type CheckoutHTTP struct {
	Orders *service.OrderService
	Users  *service.UserService
}

type orderView struct {
	ID             uint               `json:"id"`
	OrderNumber    string             `json:"order_number"`
	Status         models.OrderStatus `json:"status"`
	ContactName    string             `json:"contact_name"`
	Phone          string             `json:"phone"`
	Address        string             `json:"address"`
	DeliveryMethod string             `json:"delivery_method"`
	Total          string             `json:"total"`
	Items          []models.OrderItem `json:"items"`
}

func viewOf(order *models.Order) orderView {
	return orderView{
		ID:             order.ID,
		OrderNumber:    order.OrderNumber,
		Status:         order.Status,
		ContactName:    order.ContactName,
		Phone:          order.Phone,
		Address:        order.Address,
		DeliveryMethod: order.DeliveryMethod,
		Total:          order.Total().StringFixed(2),
		Items:          order.Items,
	}
}

// Checkout converts the caller's cart into an order. The delivery snapshot is
// resolved from the user's profile and address book: an explicit address_id
// when given, the default address otherwise.
func (h *CheckoutHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout")

	uid, err := userID(c)
	if err != nil {
		return err
	}

	var req struct {
		AddressID      uint   `json:"address_id"`
		DeliveryMethod string `json:"delivery_method"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("checkout_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Users.Profile(ctx, uid)
	if err != nil {
		return mapServiceError(l, "checkout", err)
	}

	var addr *models.DeliveryAddress
	if req.AddressID != 0 {
		a, err := h.Users.Repo.AddressByID(ctx, req.AddressID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return mapServiceError(l, "checkout", service.ErrAddressNotFound)
		case err != nil:
			return mapServiceError(l, "checkout", err)
		case a.UserID != uid:
			return mapServiceError(l, "checkout", service.ErrAddressNotFound)
		}
		addr = a
	} else {
		a, err := h.Users.DefaultAddress(ctx, uid)
		if err != nil {
			return mapServiceError(l, "checkout", err)
		}
		addr = a
	}

	contactName := user.FirstName
	if contactName == "" {
		contactName = user.Username
	}

	order, err := h.Orders.PlaceOrder(ctx, uid, service.PlaceOrderInput{
		ContactName:    contactName,
		Phone:          user.Phone,
		Address:        addr.FullAddress,
		DeliveryMethod: req.DeliveryMethod,
	})
	if err != nil {
		return mapServiceError(l, "checkout", err)
	}

	l.Info("checkout_success", "order_number", order.OrderNumber, "total", order.Total().StringFixed(2))
	return c.JSON(http.StatusCreated, viewOf(order))
}

func (h *CheckoutHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.list")

	uid, err := userID(c)
	if err != nil {
		return err
	}

	orders, err := h.Orders.ListUserOrders(ctx, uid)
	if err != nil {
		return mapServiceError(l, "list_orders", err)
	}

	views := make([]orderView, len(orders))
	for i := range orders {
		views[i] = viewOf(&orders[i])
	}
	return c.JSON(http.StatusOK, views)
}

func (h *CheckoutHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.get")

	uid, err := userID(c)
	if err != nil {
		return err
	}

	id, err := parseID(c, "id")
	if err != nil {
		l.Warn("get_order_failed", "status", 400, "reason", "invalid id")
		return err
	}

	order, err := h.Orders.OrderForUser(ctx, id, uid)
	if err != nil {
		return mapServiceError(l, "get_order", err)
	}
	return c.JSON(http.StatusOK, viewOf(order))
}
