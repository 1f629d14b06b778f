package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/asafonov/ecombot/internal/service"
	"github.com/asafonov/ecombot/pkg/logging"
)

type ProfileHTTP struct {
	Svc *service.UserService
}

func (h *ProfileHTTP) GetProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "profile.get")

	uid, err := userID(c)
	if err != nil {
		return err
	}

	user, err := h.Svc.Profile(ctx, uid)
	if err != nil {
		return mapServiceError(l, "get_profile", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *ProfileHTTP) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "profile.update")

	uid, err := userID(c)
	if err != nil {
		return err
	}

	var req struct {
		FirstName *string `json:"first_name"`
		Phone     *string `json:"phone"`
		Email     *string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("update_profile_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.UpdateProfile(ctx, uid, service.ProfileUpdate{
		FirstName: req.FirstName,
		Phone:     req.Phone,
		Email:     req.Email,
	})
	if err != nil {
		return mapServiceError(l, "update_profile", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *ProfileHTTP) ListAddresses(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "profile.addresses")

	uid, err := userID(c)
	if err != nil {
		return err
	}

	addrs, err := h.Svc.ListAddresses(ctx, uid)
	if err != nil {
		return mapServiceError(l, "list_addresses", err)
	}
	return c.JSON(http.StatusOK, addrs)
}

func (h *ProfileHTTP) AddAddress(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "profile.add_address")

	uid, err := userID(c)
	if err != nil {
		return err
	}

	var req struct {
		Label       string `json:"label"`
		FullAddress string `json:"full_address"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("add_address_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	addr, err := h.Svc.AddAddress(ctx, uid, req.Label, req.FullAddress)
	if err != nil {
		return mapServiceError(l, "add_address", err)
	}
	return c.JSON(http.StatusCreated, addr)
}

func (h *ProfileHTTP) DeleteAddress(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "profile.delete_address")

	uid, err := userID(c)
	if err != nil {
		return err
	}

	id, err := parseID(c, "id")
	if err != nil {
		l.Warn("delete_address_failed", "status", 400, "reason", "invalid id")
		return err
	}

	if err := h.Svc.DeleteAddress(ctx, uid, id); err != nil {
		return mapServiceError(l, "delete_address", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ProfileHTTP) SetDefaultAddress(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "profile.set_default_address")

	uid, err := userID(c)
	if err != nil {
		return err
	}

	id, err := parseID(c, "id")
	if err != nil {
		l.Warn("set_default_address_failed", "status", 400, "reason", "invalid id")
		return err
	}

	if err := h.Svc.SetDefaultAddress(ctx, uid, id); err != nil {
		return mapServiceError(l, "set_default_address", err)
	}
	return c.NoContent(http.StatusNoContent)
}
