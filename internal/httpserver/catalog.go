package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/hanayashop/backend/internal/middleware/auth"
	"github.com/hanayashop/backend/internal/models"
	"github.com/hanayashop/backend/internal/repo"
	"github.com/hanayashop/backend/internal/service"
	"github.com/hanayashop/backend/internal/util"
	"github.com/hanayashop/backend/pkg/logging"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_product")

	id := uint(util.ParseIntDefault(c.Param("id"), 0))
	if id == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		l.Warn("get_product_failed", "status", statusOf(err), "id", id, "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_products")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	categoryID := uint(util.ParseIntDefault(c.QueryParam("category_id"), 0))

	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.GetProducts(ctx, categoryID, offset, limit)
	if err != nil {
		l.Error("get_products_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list products")
	}

	return c.JSON(http.StatusOK, pagedResponse(items, page, limit, offset, total))
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.search_products")

	q := c.QueryParam("q")
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.SearchProducts(ctx, q, offset, limit)
	if err != nil {
		l.Warn("search_failed", "status", statusOf(err), "q", q, "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, pagedResponse(items, page, limit, offset, total))
}

type productRequest struct {
	Name            *string  `json:"name"`
	Description     *string  `json:"description"`
	Price           *float64 `json:"price"`
	DiscountPercent *int     `json:"discount_percent"`
	StockQuantity   *int     `json:"stock_quantity"`
	CategoryID      *uint    `json:"category_id"`
	ImageURL        *string  `json:"image_url"`
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_product")

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	prod := &models.Product{}
	if req.Name != nil {
		prod.Name = *req.Name
	}
	if req.Description != nil {
		prod.Description = *req.Description
	}
	if req.Price != nil {
		prod.Price = *req.Price
	}
	if req.DiscountPercent != nil {
		prod.DiscountPercent = *req.DiscountPercent
	}
	if req.StockQuantity != nil {
		prod.StockQuantity = *req.StockQuantity
	}
	if req.CategoryID != nil {
		prod.CategoryID = *req.CategoryID
	}
	if req.ImageURL != nil {
		prod.ImageURL = *req.ImageURL
	}

	created, err := h.Svc.CreateProduct(ctx, prod)
	if err != nil {
		l.Warn("create_product_failed", "status", statusOf(err), "error", err)
		return httpError(err)
	}

	l.Info("create_product_success", "product_id", created.ID)
	return c.JSON(http.StatusCreated, created)
}

func (h *CatalogHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.patch_product")

	id := uint(util.ParseIntDefault(c.Param("id"), 0))
	if id == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	updated, err := h.Svc.PatchProduct(ctx, id, repo.ProductPatch{
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		DiscountPercent: req.DiscountPercent,
		StockQuantity:   req.StockQuantity,
		CategoryID:      req.CategoryID,
		ImageURL:        req.ImageURL,
	})
	if err != nil {
		l.Warn("patch_product_failed", "status", statusOf(err), "id", id, "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, updated)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete_product")

	id := uint(util.ParseIntDefault(c.Param("id"), 0))
	if id == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		l.Warn("delete_product_failed", "status", statusOf(err), "id", id, "error", err)
		return httpError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHTTP) GetReviews(c echo.Context) error {
	ctx := c.Request().Context()

	productID := uint(util.ParseIntDefault(c.Param("id"), 0))
	if productID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, reviews, err := h.Svc.GetReviews(ctx, productID, offset, limit)
	if err != nil {
		logging.FromContext(ctx).Error("get_reviews_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list reviews")
	}

	return c.JSON(http.StatusOK, pagedResponse(reviews, page, limit, offset, total))
}

func (h *CatalogHTTP) CreateReview(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_review")

	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	productID := uint(util.ParseIntDefault(c.Param("id"), 0))
	if productID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	review, err := h.Svc.CreateReview(ctx, &models.Review{
		UserID:    userID,
		ProductID: productID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		l.Warn("create_review_failed", "status", statusOf(err), "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, review)
}

func pagedResponse(items any, page, limit, offset int, total int64) map[string]any {
	return map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	}
}
