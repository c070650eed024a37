package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	authmw "github.com/hanayashop/backend/internal/middleware/auth"
	"github.com/hanayashop/backend/internal/models"
	"github.com/hanayashop/backend/internal/repo"
	"github.com/hanayashop/backend/internal/service"
	"github.com/hanayashop/backend/internal/util"
	"github.com/hanayashop/backend/pkg/logging"
)

// AdminHTTP carries the back-office endpoints: order lifecycle
// actions, user listing, categories and posts.
type AdminHTTP struct {
	Orders *service.OrderService
	Repo   *repo.GormRepo
}

func (h *AdminHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.list_orders")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)
	status := models.OrderStatus(c.QueryParam("status"))

	total, orders, err := h.Orders.ListAllOrders(ctx, status, limit, offset)
	if err != nil {
		l.Warn("list_orders_failed", "status", statusOf(err), "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, pagedResponse(orders, page, limit, offset, total))
}

func (h *AdminHTTP) ConfirmOrder(c echo.Context) error {
	return h.transition(c, "admin.confirm_order", h.Orders.Confirm)
}

func (h *AdminHTTP) ShipOrder(c echo.Context) error {
	return h.transition(c, "admin.ship_order", h.Orders.Ship)
}

func (h *AdminHTTP) CancelOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.cancel_order")

	orderID := uint(util.ParseIntDefault(c.Param("id"), 0))
	if orderID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	// Zero userID skips the ownership check.
	order, err := h.Orders.Cancel(ctx, orderID, 0, requestLocale(c))
	if err != nil {
		l.Warn("cancel_order_failed", "status", statusOf(err), "order_id", orderID, "error", err)
		return httpError(err)
	}

	l.Info("cancel_order_success", "order_id", order.ID)
	return c.JSON(http.StatusOK, order)
}

func (h *AdminHTTP) transition(c echo.Context, handler string, fn func(ctx context.Context, orderID uint, locale string) (*models.Order, error)) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", handler)

	orderID := uint(util.ParseIntDefault(c.Param("id"), 0))
	if orderID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	order, err := fn(ctx, orderID, requestLocale(c))
	if err != nil {
		l.Warn("transition_failed", "status", statusOf(err), "order_id", orderID, "error", err)
		return httpError(err)
	}

	l.Info("transition_success", "order_id", order.ID, "new_status", order.Status)
	return c.JSON(http.StatusOK, order)
}

func (h *AdminHTTP) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, users, err := h.Repo.ListUsers(ctx, limit, offset)
	if err != nil {
		logging.FromContext(ctx).Error("list_users_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list users")
	}

	return c.JSON(http.StatusOK, pagedResponse(users, page, limit, offset, total))
}

func (h *AdminHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.Category
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name required")
	}
	req.ID = 0

	cat, err := h.Repo.CreateCategory(ctx, &req)
	if err != nil {
		logging.FromContext(ctx).Error("create_category_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create category")
	}
	return c.JSON(http.StatusCreated, cat)
}

func (h *AdminHTTP) UpdateCategory(c echo.Context) error {
	ctx := c.Request().Context()

	id := uint(util.ParseIntDefault(c.Param("id"), 0))
	if id == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	cat, err := h.Repo.GetCategory(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "category not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot read category")
	}

	var req models.Category
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name != "" {
		cat.Name = req.Name
	}
	if req.Description != "" {
		cat.Description = req.Description
	}

	updated, err := h.Repo.UpdateCategory(ctx, cat)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update category")
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *AdminHTTP) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()

	id := uint(util.ParseIntDefault(c.Param("id"), 0))
	if id == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.Repo.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "category not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete category")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHTTP) CreatePost(c echo.Context) error {
	ctx := c.Request().Context()

	authorID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	var req models.Post
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Title == "" || req.Slug == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title and slug required")
	}
	req.ID = 0
	req.AuthorID = authorID

	post, err := h.Repo.CreatePost(ctx, &req)
	if err != nil {
		logging.FromContext(ctx).Error("create_post_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create post")
	}
	return c.JSON(http.StatusCreated, post)
}

func (h *AdminHTTP) UpdatePost(c echo.Context) error {
	ctx := c.Request().Context()

	slug := c.Param("slug")
	post, err := h.Repo.GetPostBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot read post")
	}

	var req struct {
		Title     *string `json:"title"`
		Content   *string `json:"content"`
		Published *bool   `json:"published"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.Published != nil {
		post.Published = *req.Published
	}

	updated, err := h.Repo.UpdatePost(ctx, post)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update post")
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *AdminHTTP) DeletePost(c echo.Context) error {
	ctx := c.Request().Context()

	slug := c.Param("slug")
	post, err := h.Repo.GetPostBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot read post")
	}

	if err := h.Repo.DeletePost(ctx, post.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete post")
	}
	return c.NoContent(http.StatusNoContent)
}
