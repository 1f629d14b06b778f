package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/asafonov/ecombot/internal/models"
	"github.com/asafonov/ecombot/internal/search"
	"github.com/asafonov/ecombot/internal/service"
	"github.com/asafonov/ecombot/pkg/logging"
)

type AdminHTTP struct {
	Catalog *service.CatalogService
	Orders  *service.OrderService
	Search  *search.Service // nil when search is disabled
}

func (h *AdminHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.create_category")

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("create_category_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	cat, err := h.Catalog.CreateCategory(ctx, req.Name, req.Description)
	if err != nil {
		return mapServiceError(l, "create_category", err)
	}

	l.Info("create_category_success", "category_id", cat.ID)
	return c.JSON(http.StatusCreated, cat)
}

func (h *AdminHTTP) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.delete_category")

	id, err := parseID(c, "id")
	if err != nil {
		l.Warn("delete_category_failed", "status", 400, "reason", "invalid id")
		return err
	}

	if err := h.Catalog.DeleteCategory(ctx, id); err != nil {
		return mapServiceError(l, "delete_category", err)
	}
	return c.NoContent(http.StatusNoContent)
}

type productRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImageURL    string          `json:"image_url"`
	CategoryID  uint            `json:"category_id"`
}

func (h *AdminHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.create_product")

	var req productRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_product_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	product := models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		CategoryID:  req.CategoryID,
	}
	if err := h.Catalog.CreateProduct(ctx, &product); err != nil {
		return mapServiceError(l, "create_product", err)
	}

	if h.Search != nil {
		h.Search.IndexProduct(ctx, &product)
	}

	l.Info("create_product_success", "product_id", product.ID)
	return c.JSON(http.StatusCreated, product)
}

func (h *AdminHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.patch_product")

	id, err := parseID(c, "id")
	if err != nil {
		l.Warn("patch_product_failed", "status", 400, "reason", "invalid id")
		return err
	}

	var req struct {
		Name        *string          `json:"name"`
		Description *string          `json:"description"`
		Price       *decimal.Decimal `json:"price"`
		Stock       *int             `json:"stock"`
		ImageURL    *string          `json:"image_url"`
		CategoryID  *uint            `json:"category_id"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("patch_product_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	product, err := h.Catalog.UpdateProduct(ctx, id, service.ProductUpdate{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		return mapServiceError(l, "patch_product", err)
	}

	if h.Search != nil {
		h.Search.IndexProduct(ctx, product)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *AdminHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.delete_product")

	id, err := parseID(c, "id")
	if err != nil {
		l.Warn("delete_product_failed", "status", 400, "reason", "invalid id")
		return err
	}

	if err := h.Catalog.DeleteProduct(ctx, id); err != nil {
		return mapServiceError(l, "delete_product", err)
	}

	if h.Search != nil {
		h.Search.RemoveProduct(ctx, id)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHTTP) ListOrdersByStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.list_orders")

	status := models.OrderStatus(c.QueryParam("status"))
	orders, err := h.Orders.ListOrdersByStatus(ctx, status)
	if err != nil {
		return mapServiceError(l, "list_orders", err)
	}

	views := make([]orderView, len(orders))
	for i := range orders {
		views[i] = viewOf(&orders[i])
	}
	return c.JSON(http.StatusOK, views)
}

// ChangeOrderStatus drives the order lifecycle; cancellation restocks
// inventory inside the same transaction as the status write.
func (h *AdminHTTP) ChangeOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.change_order_status")

	id, err := parseID(c, "id")
	if err != nil {
		l.Warn("change_order_status_failed", "status", 400, "reason", "invalid id")
		return err
	}

	var req struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("change_order_status_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Orders.ChangeStatus(ctx, id, req.Status)
	if err != nil {
		return mapServiceError(l, "change_order_status", err)
	}

	l.Info("change_order_status_success", "order_number", order.OrderNumber, "new_status", order.Status)
	return c.JSON(http.StatusOK, viewOf(order))
}
