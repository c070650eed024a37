package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/hanayashop/backend/internal/middleware/auth"
	"github.com/hanayashop/backend/internal/models"
	"github.com/hanayashop/backend/internal/service"
	"github.com/hanayashop/backend/internal/util"
	"github.com/hanayashop/backend/pkg/logging"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, orders, err := h.Svc.ListOrders(ctx, userID, limit, offset)
	if err != nil {
		logging.FromContext(ctx).Error("list_orders_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list orders")
	}

	return c.JSON(http.StatusOK, pagedResponse(orders, page, limit, offset, total))
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	orderID := uint(util.ParseIntDefault(c.Param("id"), 0))
	if orderID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var order *models.Order
	if authmw.Role(c) == "admin" {
		order, err = h.Svc.GetOrder(ctx, orderID)
	} else {
		order, err = h.Svc.GetUserOrder(ctx, orderID, userID)
	}
	if err != nil {
		l.Warn("get_order_failed", "status", statusOf(err), "order_id", orderID, "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, order)
}

// Receive is the customer confirming delivery of a shipped order.
func (h *OrderHTTP) Receive(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.receive")

	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	orderID := uint(util.ParseIntDefault(c.Param("id"), 0))
	if orderID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	order, err := h.Svc.Receive(ctx, orderID, userID, requestLocale(c))
	if err != nil {
		l.Warn("receive_failed", "status", statusOf(err), "order_id", orderID, "error", err)
		return httpError(err)
	}

	l.Info("receive_success", "order_id", order.ID)
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) Cancel(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.cancel")

	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	orderID := uint(util.ParseIntDefault(c.Param("id"), 0))
	if orderID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	order, err := h.Svc.Cancel(ctx, orderID, userID, requestLocale(c))
	if err != nil {
		l.Warn("cancel_failed", "status", statusOf(err), "order_id", orderID, "error", err)
		return httpError(err)
	}

	l.Info("cancel_success", "order_id", order.ID)
	return c.JSON(http.StatusOK, order)
}
