package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/asafonov/ecombot/internal/service"
)

// mapServiceError converts typed service failures into distinct HTTP
// responses. Anything unrecognized is logged with full context and returned
// as a generic 500 so internal detail never leaks to the user.
func mapServiceError(l *slog.Logger, op string, err error) error {
	var stockErr *service.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		l.Warn(op+"_failed", "status", 409, "reason", "insufficient_stock",
			"product", stockErr.ProductName, "requested", stockErr.Requested, "available", stockErr.Available)
		return echo.NewHTTPError(http.StatusConflict, stockErr.Error())
	case errors.Is(err, service.ErrEmptyCart):
		l.Warn(op+"_failed", "status", 400, "reason", "empty_cart")
		return echo.NewHTTPError(http.StatusBadRequest, "cannot place an order with an empty cart")
	case errors.Is(err, service.ErrProductNotFound):
		l.Warn(op+"_failed", "status", 404, "reason", "product_not_found", "error", err)
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrCartItemNotFound):
		l.Warn(op+"_failed", "status", 404, "reason", "cart_item_not_found", "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "item not found in your cart")
	case errors.Is(err, service.ErrOrderNotFound):
		l.Warn(op+"_failed", "status", 404, "reason", "order_not_found")
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	case errors.Is(err, service.ErrAddressNotFound):
		l.Warn(op+"_failed", "status", 404, "reason", "address_not_found")
		return echo.NewHTTPError(http.StatusNotFound, "address not found or permission denied")
	case errors.Is(err, service.ErrInvalidTransition):
		l.Warn(op+"_failed", "status", 409, "reason", "invalid_transition", "error", err)
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrCategoryExists):
		l.Warn(op+"_failed", "status", 409, "reason", "category_exists", "error", err)
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrCategoryNotEmpty):
		l.Warn(op+"_failed", "status", 409, "reason", "category_not_empty", "error", err)
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrUserExists):
		l.Warn(op+"_failed", "status", 409, "reason", "user_exists")
		return echo.NewHTTPError(http.StatusConflict, "user already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		l.Warn(op+"_failed", "status", 401, "reason", "invalid_credentials")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
	case errors.Is(err, service.ErrValidation):
		l.Warn(op+"_failed", "status", 400, "reason", "validation", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		l.Error(op+"_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
