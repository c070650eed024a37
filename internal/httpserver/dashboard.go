package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/hanayashop/backend/internal/repo"
	"github.com/hanayashop/backend/internal/service"
	"github.com/hanayashop/backend/pkg/logging"
)

type DashboardHTTP struct {
	Svc               *service.DashboardService
	LowStockThreshold int

	validate *validator.Validate
}

func NewDashboardHTTP(svc *service.DashboardService, lowStockThreshold int) *DashboardHTTP {
	return &DashboardHTTP{
		Svc:               svc,
		LowStockThreshold: lowStockThreshold,
		validate:          validator.New(),
	}
}

type dashboardQuery struct {
	Period    string `query:"period"     validate:"omitempty,oneof=day week month year"`
	StartDate string `query:"start_date" validate:"omitempty,datetime=2006-01-02,required_with=EndDate"`
	EndDate   string `query:"end_date"   validate:"omitempty,datetime=2006-01-02,required_with=StartDate"`
	By        string `query:"by"         validate:"omitempty,oneof=date category payment_method"`
	Sort      string `query:"sort"       validate:"omitempty,oneof=quantity revenue"`
	Limit     int    `query:"limit"      validate:"omitempty,min=1,max=100"`
	Threshold int    `query:"threshold"  validate:"omitempty,min=1,max=100000"`
	NoCache   bool   `query:"no_cache"`
}

// bindQuery validates the filters and resolves the date window.
// Explicit start/end dates win over the period shorthand.
func (h *DashboardHTTP) bindQuery(c echo.Context) (*dashboardQuery, repo.DateRange, map[string]string) {
	var q dashboardQuery
	if err := c.Bind(&q); err != nil {
		return nil, repo.DateRange{}, map[string]string{"query": "malformed query parameters"}
	}

	if err := h.validate.Struct(&q); err != nil {
		fieldErrors := map[string]string{}
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			for _, fe := range vErrs {
				fieldErrors[queryName(fe.Field())] = fieldMessage(fe)
			}
		} else {
			fieldErrors["query"] = err.Error()
		}
		return nil, repo.DateRange{}, fieldErrors
	}

	now := time.Now().UTC()
	rng := repo.DateRange{To: now}

	if q.StartDate != "" {
		from, _ := time.Parse("2006-01-02", q.StartDate)
		to, _ := time.Parse("2006-01-02", q.EndDate)
		to = to.Add(24*time.Hour - time.Nanosecond)
		if to.Before(from) {
			return nil, repo.DateRange{}, map[string]string{"end_date": "must not be before start_date"}
		}
		rng = repo.DateRange{From: from, To: to}
		return &q, rng, nil
	}

	switch q.Period {
	case "day":
		rng.From = now.AddDate(0, 0, -1)
	case "week":
		rng.From = now.AddDate(0, 0, -7)
	case "year":
		rng.From = now.AddDate(-1, 0, 0)
	default: // month
		rng.From = now.AddDate(0, -1, 0)
	}
	return &q, rng, nil
}

func (h *DashboardHTTP) Summary(c echo.Context) error {
	q, rng, fieldErrors := h.bindQuery(c)
	if fieldErrors != nil {
		return respondFieldErrors(c, fieldErrors)
	}
	return h.serve(c, "dashboard.summary", func() (any, error) {
		return h.Svc.Summary(c.Request().Context(), rng, q.NoCache)
	})
}

func (h *DashboardHTTP) Revenue(c echo.Context) error {
	q, rng, fieldErrors := h.bindQuery(c)
	if fieldErrors != nil {
		return respondFieldErrors(c, fieldErrors)
	}

	ctx := c.Request().Context()
	switch q.By {
	case "category":
		return h.serve(c, "dashboard.revenue_by_category", func() (any, error) {
			return h.Svc.RevenueByCategory(ctx, rng, q.NoCache)
		})
	case "payment_method":
		return h.serve(c, "dashboard.revenue_by_payment_method", func() (any, error) {
			return h.Svc.RevenueByPaymentMethod(ctx, rng, q.NoCache)
		})
	default:
		return h.serve(c, "dashboard.revenue_by_date", func() (any, error) {
			return h.Svc.RevenueByDate(ctx, rng, q.NoCache)
		})
	}
}

func (h *DashboardHTTP) OrdersByStatus(c echo.Context) error {
	q, rng, fieldErrors := h.bindQuery(c)
	if fieldErrors != nil {
		return respondFieldErrors(c, fieldErrors)
	}
	return h.serve(c, "dashboard.orders_by_status", func() (any, error) {
		return h.Svc.OrderCountsByStatus(c.Request().Context(), rng, q.NoCache)
	})
}

func (h *DashboardHTTP) OrderHistogram(c echo.Context) error {
	q, rng, fieldErrors := h.bindQuery(c)
	if fieldErrors != nil {
		return respondFieldErrors(c, fieldErrors)
	}
	return h.serve(c, "dashboard.order_histogram", func() (any, error) {
		return h.Svc.OrderValueHistogram(c.Request().Context(), rng, q.NoCache)
	})
}

func (h *DashboardHTTP) Cancellations(c echo.Context) error {
	q, rng, fieldErrors := h.bindQuery(c)
	if fieldErrors != nil {
		return respondFieldErrors(c, fieldErrors)
	}
	return h.serve(c, "dashboard.cancellations", func() (any, error) {
		return h.Svc.Cancellations(c.Request().Context(), rng, q.NoCache)
	})
}

func (h *DashboardHTTP) TopProducts(c echo.Context) error {
	q, rng, fieldErrors := h.bindQuery(c)
	if fieldErrors != nil {
		return respondFieldErrors(c, fieldErrors)
	}

	by := q.Sort
	if by == "" {
		by = "quantity"
	}
	limit := q.Limit
	if limit == 0 {
		limit = 10
	}

	return h.serve(c, "dashboard.top_products", func() (any, error) {
		return h.Svc.TopProducts(c.Request().Context(), rng, by, limit, q.NoCache)
	})
}

func (h *DashboardHTTP) StockLevels(c echo.Context) error {
	q, _, fieldErrors := h.bindQuery(c)
	if fieldErrors != nil {
		return respondFieldErrors(c, fieldErrors)
	}

	threshold := q.Threshold
	if threshold == 0 {
		threshold = h.LowStockThreshold
	}

	return h.serve(c, "dashboard.stock_levels", func() (any, error) {
		return h.Svc.StockLevels(c.Request().Context(), threshold, q.NoCache)
	})
}

func (h *DashboardHTTP) Customers(c echo.Context) error {
	q, rng, fieldErrors := h.bindQuery(c)
	if fieldErrors != nil {
		return respondFieldErrors(c, fieldErrors)
	}
	return h.serve(c, "dashboard.customers", func() (any, error) {
		return h.Svc.CustomerStats(c.Request().Context(), rng, q.NoCache)
	})
}

func (h *DashboardHTTP) Retention(c echo.Context) error {
	q, rng, fieldErrors := h.bindQuery(c)
	if fieldErrors != nil {
		return respondFieldErrors(c, fieldErrors)
	}
	return h.serve(c, "dashboard.retention", func() (any, error) {
		return h.Svc.Retention(c.Request().Context(), rng, q.NoCache)
	})
}

func (h *DashboardHTTP) CategoryPerformance(c echo.Context) error {
	q, rng, fieldErrors := h.bindQuery(c)
	if fieldErrors != nil {
		return respondFieldErrors(c, fieldErrors)
	}
	return h.serve(c, "dashboard.category_performance", func() (any, error) {
		return h.Svc.CategoryPerformance(c.Request().Context(), rng, q.NoCache)
	})
}

func (h *DashboardHTTP) ReviewRatings(c echo.Context) error {
	q, rng, fieldErrors := h.bindQuery(c)
	if fieldErrors != nil {
		return respondFieldErrors(c, fieldErrors)
	}
	return h.serve(c, "dashboard.review_ratings", func() (any, error) {
		return h.Svc.ReviewRatings(c.Request().Context(), rng, q.NoCache)
	})
}

func (h *DashboardHTTP) ClearCache(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "dashboard.clear_cache")

	deleted, err := h.Svc.ClearCache(ctx)
	if err != nil {
		l.Error("clear_cache_failed", "error", err)
		return respondError(c, http.StatusInternalServerError, "cannot clear cache")
	}

	l.Info("clear_cache_success", "deleted", deleted)
	return respondOK(c, http.StatusOK, map[string]any{"deleted_keys": deleted})
}

func (h *DashboardHTTP) serve(c echo.Context, handler string, fn func() (any, error)) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", handler)

	data, err := fn()
	if err != nil {
		status := statusOf(err)
		if status == http.StatusInternalServerError {
			l.Error("dashboard_query_failed", "status", status, "error", err)
			return respondError(c, status, "internal error")
		}
		l.Warn("dashboard_query_failed", "status", status, "error", err)
		return respondError(c, status, err.Error())
	}

	return respondOK(c, http.StatusOK, data)
}

func queryName(field string) string {
	switch field {
	case "StartDate":
		return "start_date"
	case "EndDate":
		return "end_date"
	case "NoCache":
		return "no_cache"
	}
	return strings.ToLower(field)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "required_with":
		return "required together with the other date bound"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	}
	return "invalid value"
}
