package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	authmw "github.com/hanayashop/backend/internal/middleware/auth"
	"github.com/hanayashop/backend/internal/models"
	"github.com/hanayashop/backend/internal/repo"
	"github.com/hanayashop/backend/internal/util"
	"github.com/hanayashop/backend/pkg/logging"
)

// AccountHTTP serves the customer-facing bits that need no service
// logic: addresses, notifications, public categories and posts.
type AccountHTTP struct {
	Repo *repo.GormRepo
}

func (h *AccountHTTP) GetCategories(c echo.Context) error {
	ctx := c.Request().Context()

	cats, err := h.Repo.GetCategories(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("get_categories_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list categories")
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *AccountHTTP) GetPosts(c echo.Context) error {
	ctx := c.Request().Context()

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	publishedOnly := authmw.Role(c) != "admin"

	total, posts, err := h.Repo.GetPosts(ctx, publishedOnly, limit, offset)
	if err != nil {
		logging.FromContext(ctx).Error("get_posts_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list posts")
	}
	return c.JSON(http.StatusOK, pagedResponse(posts, page, limit, offset, total))
}

func (h *AccountHTTP) GetPost(c echo.Context) error {
	ctx := c.Request().Context()

	post, err := h.Repo.GetPostBySlug(ctx, c.Param("slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot read post")
	}
	if !post.Published && authmw.Role(c) != "admin" {
		return echo.NewHTTPError(http.StatusNotFound, "post not found")
	}
	return c.JSON(http.StatusOK, post)
}

func (h *AccountHTTP) GetAddresses(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	addrs, err := h.Repo.GetAddresses(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).Error("get_addresses_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list addresses")
	}
	return c.JSON(http.StatusOK, addrs)
}

func (h *AccountHTTP) CreateAddress(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	var req models.Address
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.FullName == "" || req.Line == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "full_name and line required")
	}
	req.ID = 0
	req.UserID = userID

	addr, err := h.Repo.CreateAddress(ctx, &req)
	if err != nil {
		logging.FromContext(ctx).Error("create_address_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create address")
	}
	return c.JSON(http.StatusCreated, addr)
}

func (h *AccountHTTP) GetNotifications(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, notes, err := h.Repo.GetNotifications(ctx, userID, limit, offset)
	if err != nil {
		logging.FromContext(ctx).Error("get_notifications_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list notifications")
	}
	return c.JSON(http.StatusOK, pagedResponse(notes, page, limit, offset, total))
}

func (h *AccountHTTP) MarkNotificationRead(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	id := uint(util.ParseIntDefault(c.Param("id"), 0))
	if id == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.Repo.MarkNotificationRead(ctx, userID, id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update notification")
	}
	return c.NoContent(http.StatusNoContent)
}
