package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/hanayashop/backend/internal/middleware/auth"
	"github.com/hanayashop/backend/internal/service"
	"github.com/hanayashop/backend/internal/util"
	"github.com/hanayashop/backend/pkg/logging"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	items, err := h.Svc.GetCart(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).Error("get_cart_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot read cart")
	}

	return c.JSON(http.StatusOK, items)
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	var req struct {
		ProductID uint `json:"product_id"`
		Quantity  int  `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	item, err := h.Svc.AddToCart(ctx, userID, req.ProductID, req.Quantity)
	if err != nil {
		l.Warn("add_to_cart_failed", "status", statusOf(err), "product_id", req.ProductID, "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, item)
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	itemID := uint(util.ParseIntDefault(c.Param("id"), 0))
	if itemID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.Svc.RemoveItem(ctx, userID, itemID); err != nil {
		l.Warn("remove_cart_item_failed", "status", statusOf(err), "item_id", itemID, "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{"deleted_item": itemID})
}

func (h *CartHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.checkout")

	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	var req service.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Svc.Checkout(ctx, userID, req, requestLocale(c))
	if err != nil {
		l.Warn("checkout_failed", "status", statusOf(err), "error", err)
		return httpError(err)
	}

	l.Info("checkout_success", "order_id", order.ID, "total", order.TotalPrice)
	return c.JSON(http.StatusCreated, order)
}
